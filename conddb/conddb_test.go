// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conddb

import (
	"context"
	"database/sql/driver"
	"math"
	"strings"
	"testing"

	"github.com/go-lpc/jetana/internal/fakedb"
	"github.com/go-lpc/jetana/jet"
	"github.com/go-lpc/jetana/weight"
	"github.com/google/go-cmp/cmp"
)

func init() {
	drvName = "fakedb"
}

func TestOpen(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open conddb: %+v", err)
	}
	defer db.Close()
}

func TestLastSample(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open conddb: %+v", err)
	}
	defer db.Close()

	_, err = fakedb.Run(context.Background(), func(ctx context.Context) error {
		smp, err := db.LastSample(ctx)
		if err != nil {
			t.Fatalf("could not retrieve last sample: %+v", err)
		}

		want := Sample{
			Name:    "pPb8160_embedded",
			System:  jet.LightHeavy,
			Energy:  8160,
			NEvents: 9725512,
		}
		if got := smp; got != want {
			t.Fatalf("invalid last sample: got=%+v, want=%+v", got, want)
		}
		return nil
	}, fakedb.Rows{
		Names: []string{"name", "system", "energy", "nevents"},
		Values: [][]driver.Value{
			{"pPb8160_embedded", "pPb", 8160.0, int64(9725512)},
		},
	})
	if err != nil {
		t.Fatalf("could not run fakedb: %+v", err)
	}
}

func TestLastSampleEmpty(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open conddb: %+v", err)
	}
	defer db.Close()

	_, err = fakedb.Run(context.Background(), func(ctx context.Context) error {
		_, err := db.LastSample(ctx)
		return err
	}, fakedb.Rows{
		Names: []string{"name", "system", "energy", "nevents"},
	})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if got, want := err.Error(), `conddb: no sample in "fakedb" db`; got != want {
		t.Fatalf("invalid error: got=%q, want=%q", got, want)
	}
}

func TestSamples(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open conddb: %+v", err)
	}
	defer db.Close()

	for _, tc := range []struct {
		name string
		rows [][]driver.Value
		want []Sample
		err  string
	}{
		{
			name: "ok",
			rows: [][]driver.Value{
				{"pp5020", "pp", 5020.0, int64(1000)},
				{"PbPb5020", "PbPb", 5020.0, int64(2000)},
			},
			want: []Sample{
				{Name: "pp5020", System: jet.PP, Energy: 5020, NEvents: 1000},
				{Name: "PbPb5020", System: jet.HeavyHeavy, Energy: 5020, NEvents: 2000},
			},
		},
		{
			name: "empty",
		},
		{
			name: "bad-system",
			rows: [][]driver.Value{
				{"xx", "AuAu", 200.0, int64(1)},
			},
			err: `conddb: could not scan sample 0: jet: unknown collision system "AuAu"`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fakedb.Run(context.Background(), func(ctx context.Context) error {
				got, err := db.Samples(ctx)
				if err != nil {
					return err
				}
				if diff := cmp.Diff(tc.want, got); diff != "" {
					t.Fatalf("invalid samples: (-want +got)\n%s", diff)
				}
				return nil
			}, fakedb.Rows{
				Names:  []string{"name", "system", "energy", "nevents"},
				Values: tc.rows,
			})
			switch {
			case err != nil && tc.err == "":
				t.Fatalf("could not retrieve samples: %+v", err)
			case err != nil && tc.err != "":
				if got, want := err.Error(), tc.err; got != want {
					t.Fatalf("invalid error: got=%q, want=%q", got, want)
				}
			case err == nil && tc.err != "":
				t.Fatalf("expected an error (%s)", tc.err)
			}
		})
	}
}

func TestXsecBands(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open conddb: %+v", err)
	}
	defer db.Close()

	names := []string{"pthat_lo", "pthat_hi", "xsec", "ngen"}

	for _, tc := range []struct {
		name string
		rows [][]driver.Value
		want []weight.Band
		err  string
	}{
		{
			name: "ok",
			rows: [][]driver.Value{
				{15.0, 30.0, 1.0404701e-06, int64(961104)},
				{30.0, 50.0, 7.7966624e-08, int64(952110)},
				{50.0, nil, 1.0016052e-08, int64(952554)},
			},
			want: []weight.Band{
				{Lo: 15, Hi: 30, Xsec: 1.0404701e-06, NGen: 961104},
				{Lo: 30, Hi: 50, Xsec: 7.7966624e-08, NGen: 952110},
				{Lo: 50, Hi: math.Inf(+1), Xsec: 1.0016052e-08, NGen: 952554},
			},
		},
		{
			name: "empty",
			err:  `conddb: no xsec table for sample "test"`,
		},
		{
			name: "overlap",
			rows: [][]driver.Value{
				{15.0, 40.0, 1e-6, int64(10)},
				{30.0, 50.0, 1e-7, int64(10)},
			},
			err: `conddb: invalid xsec table for sample "test": weight: overlapping bands 0 and 1`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var got []weight.Band
			_, err := fakedb.Run(context.Background(), func(ctx context.Context) error {
				var err error
				got, err = db.XsecBands(ctx, "test")
				return err
			}, fakedb.Rows{Names: names, Values: tc.rows})
			if tc.err != "" {
				if err == nil {
					t.Fatalf("expected an error (%s)", tc.err)
				}
				if got, want := err.Error(), tc.err; got != want {
					t.Fatalf("invalid error:\ngot= %q\nwant=%q", got, want)
				}
				return
			}
			if err != nil {
				t.Fatalf("could not retrieve xsec bands: %+v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("invalid xsec bands: (-want +got)\n%s", diff)
			}
		})
	}
}

func TestReweighter(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open conddb: %+v", err)
	}
	defer db.Close()

	edges := []float64{50, 60, 80, 100}
	names := []string{"lead_bin", "sublead_bin", "factor"}

	var rw *weight.Reweighter
	_, err = fakedb.Run(context.Background(), func(ctx context.Context) error {
		var err error
		rw, err = db.Reweighter(ctx, "test", edges)
		return err
	}, fakedb.Rows{
		Names: names,
		Values: [][]driver.Value{
			{int64(0), int64(0), 0.5},
			{int64(2), int64(1), 1.5},
		},
	})
	if err != nil {
		t.Fatalf("could not retrieve reweighter: %+v", err)
	}

	if got, want := rw.Len(), 2; got != want {
		t.Fatalf("invalid number of factors: got=%d, want=%d", got, want)
	}

	for _, tc := range []struct {
		lead, sublead float64
		want          float64
	}{
		{55, 52, 0.5},
		{90, 70, 1.5},
		{90, 55, 1},
		{120, 70, 1},
	} {
		if got := rw.Factor(tc.lead, tc.sublead); got != tc.want {
			t.Fatalf("invalid factor(%v, %v): got=%v, want=%v", tc.lead, tc.sublead, got, tc.want)
		}
	}

	_, err = fakedb.Run(context.Background(), func(ctx context.Context) error {
		_, err := db.Reweighter(ctx, "test", edges)
		return err
	}, fakedb.Rows{
		Names: names,
		Values: [][]driver.Value{
			{int64(3), int64(0), 2.0},
		},
	})
	if err == nil {
		t.Fatalf("expected an error for an out-of-range bin")
	}
	if got, want := err.Error(), "out of range"; !strings.Contains(got, want) {
		t.Fatalf("invalid error: got=%q, want=%q", got, want)
	}
}

func TestPutXsecBands(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open conddb: %+v", err)
	}
	defer db.Close()

	bands := []weight.Band{
		{Lo: 15, Hi: 30, Xsec: 1e-6, NGen: 100},
		{Lo: 30, Hi: math.Inf(+1), Xsec: 1e-7, NGen: 200},
	}

	execs, err := fakedb.Run(context.Background(), func(ctx context.Context) error {
		return db.PutXsecBands(ctx, "test", bands)
	})
	if err != nil {
		t.Fatalf("could not store xsec bands: %+v", err)
	}

	if got, want := len(execs), len(bands); got != want {
		t.Fatalf("invalid number of statements: got=%d, want=%d", got, want)
	}

	want := [][]driver.Value{
		{15.0, 30.0, 1e-6, int64(100), "test"},
		{30.0, nil, 1e-7, int64(200), "test"},
	}
	for i, exec := range execs {
		if !strings.Contains(exec.Query, "INSERT INTO xsec") {
			t.Fatalf("invalid statement %d: %q", i, exec.Query)
		}
		if diff := cmp.Diff(want[i], exec.Args); diff != "" {
			t.Fatalf("invalid args for statement %d: (-want +got)\n%s", i, diff)
		}
	}

	_, err = fakedb.Run(context.Background(), func(ctx context.Context) error {
		return db.PutXsecBands(ctx, "test", []weight.Band{{Lo: 30, Hi: 15}})
	})
	if err == nil {
		t.Fatalf("expected an error for an invalid band")
	}
}
