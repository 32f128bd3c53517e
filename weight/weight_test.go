// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package weight

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/go-lpc/jetana/jet"
)

func TestWeightData(t *testing.T) {
	for _, sys := range []jet.System{jet.PP, jet.LightHeavy, jet.HeavyHeavy, jet.Unknown} {
		c := New(jet.Collision{System: sys, NEvents: 10})
		if got := c.Weight(50, 3, 2, 0.5); got != 1 {
			t.Fatalf("%v: invalid data weight: got=%v, want=1", sys, got)
		}
	}
}

func TestWeightPP(t *testing.T) {
	c := New(jet.Collision{System: jet.PP, IsMC: true})
	for _, vz := range []float64{-14, 0, 7.5} {
		got := c.Weight(80, vz, 3, 0.25)
		want := 0.25 * c.Vz().Eval(vz)
		if got != want {
			t.Fatalf("invalid pp weight(vz=%v): got=%v, want=%v", vz, got, want)
		}
	}
	if got, want := c.Vz().Eval(0), 0.973941; got != want {
		t.Fatalf("invalid pp vz curve at 0: got=%v, want=%v", got, want)
	}
}

func TestWeightLightHeavy(t *testing.T) {
	const nevts = 1000
	for _, pbgoing := range []bool{false, true} {
		c := New(jet.Collision{System: jet.LightHeavy, IsMC: true, PbGoing: pbgoing, NEvents: nevts})
		vz := 4.0
		got := c.Weight(60, vz, 3, 0.5)

		xvz := vz
		if pbgoing {
			xvz = -vz
		}
		want := 1.0016052e-08 * 952554 / nevts / VzCurve(jet.LightHeavy).Eval(xvz)
		if math.Abs(got-want) > 1e-12*want {
			t.Fatalf("invalid pPb weight(pb-going=%v): got=%v, want=%v", pbgoing, got, want)
		}
	}
}

func TestGenWeight(t *testing.T) {
	c := New(jet.Collision{System: jet.LightHeavy, IsMC: true, NEvents: 1})
	for _, tc := range []struct {
		ptHat float64
		want  float64
	}{
		{10, 1},
		{15, 1},
		{15.5, 1.0404701e-06 * 961104},
		{30, 1.0404701e-06 * 961104},
		{30.1, 7.7966624e-08 * 952110},
		{540, 2.1341026e-13 * 981427},
		{540.1, 7.9191586e-14 * 1000000},
		{5000, 7.9191586e-14 * 1000000},
	} {
		if got := c.GenWeight(tc.ptHat); math.Abs(got-tc.want) > 1e-12*math.Abs(tc.want) {
			t.Fatalf("invalid gen weight(%v): got=%v, want=%v", tc.ptHat, got, tc.want)
		}
	}
}

func TestWeightHeavyHeavy(t *testing.T) {
	c := New(jet.Collision{System: jet.HeavyHeavy, IsMC: true})
	if got, want := c.Weight(50, 1, 2, 0.5), 0.5; got != want {
		t.Fatalf("invalid PbPb weight: got=%v, want=%v", got, want)
	}
	c.UseCentWeight = true
	if got, want := c.Weight(50, 1, 2, 0.5), 1.0; got != want {
		t.Fatalf("invalid PbPb weight: got=%v, want=%v", got, want)
	}
}

func TestWeightUnknown(t *testing.T) {
	c := New(jet.Collision{System: jet.Unknown, IsMC: true})
	if got := c.Weight(50, 1, 2, 0.5); got != 1 {
		t.Fatalf("invalid weight: got=%v, want=1", got)
	}
	if _, ok := c.Vz().(Identity); !ok {
		t.Fatalf("invalid vz curve for unknown system: %T", c.Vz())
	}
}

func TestVzConcurrent(t *testing.T) {
	c := New(jet.Collision{System: jet.PP, IsMC: true})
	var wg sync.WaitGroup
	ws := make([]float64, 8)
	for i := range ws {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ws[i] = c.Weight(50, 2, 1, 1)
		}(i)
	}
	wg.Wait()
	for i := range ws {
		if ws[i] != ws[0] {
			t.Fatalf("invalid weight[%d]: got=%v, want=%v", i, ws[i], ws[0])
		}
	}
}

func TestCheck(t *testing.T) {
	for _, tc := range []struct {
		w  float64
		ok bool
	}{
		{1, true},
		{1e-12, true},
		{0, false},
		{-1, false},
		{math.NaN(), false},
	} {
		err := Check(tc.w)
		switch {
		case tc.ok && err != nil:
			t.Fatalf("invalid error for w=%v: %+v", tc.w, err)
		case !tc.ok && !errors.Is(err, ErrNonPositive):
			t.Fatalf("invalid error for w=%v: got=%v, want=%v", tc.w, err, ErrNonPositive)
		}
	}
}

func TestValidateBands(t *testing.T) {
	err := ValidateBands(DefaultBands())
	if err != nil {
		t.Fatalf("invalid default bands: %+v", err)
	}

	for _, tc := range []struct {
		name  string
		bands []Band
	}{
		{"unsorted", []Band{{Lo: 30, Hi: 50}, {Lo: 15, Hi: 30}}},
		{"overlap", []Band{{Lo: 15, Hi: 35}, {Lo: 30, Hi: 50}}},
		{"empty-band", []Band{{Lo: 15, Hi: 15}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateBands(tc.bands); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestCentrality(t *testing.T) {
	if got := Centrality(5); got != 0 {
		t.Fatalf("invalid centrality weight below validity: got=%v", got)
	}
	if got, want := Centrality(10), 4.363352; got != want {
		t.Fatalf("invalid centrality weight: got=%v, want=%v", got, want)
	}
	// the weight decreases towards peripheral events.
	if Centrality(20) >= Centrality(10) {
		t.Fatalf("centrality weight not decreasing")
	}
}

func TestFindBin(t *testing.T) {
	edges := []float64{50, 60, 70, 80, 90, 100}
	for _, tc := range []struct {
		x    float64
		want int
	}{
		{49.9, -1},
		{50.0, 0},
		{59.9999, 0},
		{60.0, 1},
		{99.99, 4},
		{100, -1},
		{1000, -1},
		{math.NaN(), -1},
	} {
		if got := FindBin(edges, tc.x); got != tc.want {
			t.Fatalf("invalid bin for %v: got=%d, want=%d", tc.x, got, tc.want)
		}
	}

	if got := FindBin([]float64{1}, 1); got != -1 {
		t.Fatalf("invalid bin for degenerate edges: got=%d", got)
	}
}

func TestReweighter(t *testing.T) {
	rw, err := NewReweighter(DefaultEdges())
	if err != nil {
		t.Fatalf("could not create reweighter: %+v", err)
	}

	if got := rw.Factor(120, 75); got != 1 {
		t.Fatalf("invalid default factor: got=%v", got)
	}

	err = rw.Set(Key{Lead: 7, Sublead: 2}, 1.25)
	if err != nil {
		t.Fatalf("could not set factor: %+v", err)
	}
	if got := rw.Factor(120, 75); got != 1.25 {
		t.Fatalf("invalid factor: got=%v, want=1.25", got)
	}
	if got := rw.Factor(40, 75); got != 1 {
		t.Fatalf("invalid factor below edges: got=%v, want=1", got)
	}
	if got := rw.Len(); got != 1 {
		t.Fatalf("invalid number of factors: got=%d, want=1", got)
	}

	err = rw.Set(Key{Lead: 7, Sublead: 2}, 1)
	if err != nil {
		t.Fatalf("could not reset factor: %+v", err)
	}
	if got := rw.Len(); got != 0 {
		t.Fatalf("invalid number of factors: got=%d, want=0", got)
	}

	err = rw.Set(Key{Lead: len(rw.Edges()), Sublead: 0}, 2)
	if err == nil {
		t.Fatalf("expected an error for out of range bin")
	}

	var nilrw *Reweighter
	if got := nilrw.Factor(100, 100); got != 1 {
		t.Fatalf("invalid factor for nil reweighter: got=%v", got)
	}

	_, err = NewReweighter([]float64{10, 5})
	if err == nil {
		t.Fatalf("expected an error for unsorted edges")
	}
}
