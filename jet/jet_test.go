// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jet

import (
	"math"
	"sort"
	"testing"
)

func TestFlavorForB(t *testing.T) {
	for _, tc := range []struct {
		v, want int
	}{
		{-99, -6},
		{-6, -6},
		{-5, -5},
		{-1, -1},
		{0, 0},
		{4, 4},
		{5, 5},
		{6, -6},
		{21, 6},
		{22, -6},
	} {
		if got := FlavorForB(tc.v); got != tc.want {
			t.Fatalf("invalid flavor-for-B(%d): got=%d, want=%d", tc.v, got, tc.want)
		}
	}
}

func TestSortPt(t *testing.T) {
	jets := []Jet{
		{Kind: Reco, Pt: 50, PtCorr: 55},
		{Kind: Reco, Pt: 500, PtCorr: Uncorrected},
		{Kind: Reco, Pt: 80, PtCorr: 90},
		{Kind: Gen, Pt: 70},
	}
	sort.SliceStable(jets, func(i, j int) bool {
		return jets[i].SortPt() > jets[j].SortPt()
	})

	want := []float64{90, 70, 55, math.Inf(-1)}
	for i, j := range jets {
		if got := j.SortPt(); got != want[i] {
			t.Fatalf("invalid sort-pt[%d]: got=%v, want=%v", i, got, want[i])
		}
	}
}

func TestHasMatch(t *testing.T) {
	for _, tc := range []struct {
		jet  Jet
		want bool
	}{
		{Jet{Kind: Reco, GenIdx: 0}, true},
		{Jet{Kind: Reco, GenIdx: 3}, true},
		{Jet{Kind: Reco, GenIdx: NoMatch}, false},
		{Jet{Kind: Gen, GenIdx: 0}, false},
	} {
		if got := tc.jet.HasMatch(); got != tc.want {
			t.Fatalf("invalid has-match for %v: got=%v, want=%v", tc.jet, got, tc.want)
		}
	}
}

func TestParseSystem(t *testing.T) {
	for _, tc := range []struct {
		name string
		want System
		err  bool
	}{
		{"pp", PP, false},
		{"pPb", LightHeavy, false},
		{"Pbp", LightHeavy, false},
		{"PbPb", HeavyHeavy, false},
		{"XeXe", Unknown, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSystem(tc.name)
			switch {
			case err != nil && !tc.err:
				t.Fatalf("could not parse system: %+v", err)
			case err == nil && tc.err:
				t.Fatalf("expected an error")
			}
			if got != tc.want {
				t.Fatalf("invalid system: got=%v, want=%v", got, tc.want)
			}
		})
	}
}

func TestIsGoodID(t *testing.T) {
	central := PF{
		CHF: 0.6, NHF: 0.1, CEF: 0.1, NEF: 0.2, MUF: 0.0,
		CHM: 10, NHM: 2, CEM: 1, NEM: 3, MUM: 0,
	}

	for _, tc := range []struct {
		name string
		eta  float64
		pf   PF
		lvl  IDLevel
		want bool
	}{
		{"no-id", 0, PF{}, NoID, true},
		{"central-tight", 0.5, central, TightID, true},
		{"central-loose", 0.5, central, LooseID, true},
		{
			name: "central-nhf",
			eta:  0.5,
			pf:   func() PF { pf := central; pf.NHF = 0.95; return pf }(),
			lvl:  TightID,
			want: false,
		},
		{
			name: "central-nhf-loose",
			eta:  0.5,
			pf:   func() PF { pf := central; pf.NHF = 0.95; return pf }(),
			lvl:  LooseID,
			want: true,
		},
		{
			name: "central-muf",
			eta:  0.5,
			pf:   func() PF { pf := central; pf.MUF = 0.85; return pf }(),
			lvl:  TightID,
			want: false,
		},
		{
			name: "central-muf-loose",
			eta:  0.5,
			pf:   func() PF { pf := central; pf.MUF = 0.85; return pf }(),
			lvl:  LooseID,
			want: true,
		},
		{
			name: "central-no-charged",
			eta:  -1.5,
			pf:   func() PF { pf := central; pf.CHF = 0; return pf }(),
			lvl:  LooseID,
			want: false,
		},
		{
			name: "outer-tracker-no-charged",
			eta:  2.5,
			pf:   func() PF { pf := central; pf.CHF = 0; return pf }(),
			lvl:  LooseID,
			want: true,
		},
		{
			name: "endcap",
			eta:  2.9,
			pf:   PF{NEF: 0.2, NHF: 0.5, NHM: 2, NEM: 1},
			lvl:  TightID,
			want: true,
		},
		{
			name: "endcap-low-mult",
			eta:  -2.9,
			pf:   PF{NEF: 0.2, NHF: 0.5, NHM: 1, NEM: 1},
			lvl:  TightID,
			want: false,
		},
		{
			name: "forward",
			eta:  4.2,
			pf:   PF{NEF: 0.5, NHM: 6, NEM: 5},
			lvl:  TightID,
			want: true,
		},
		{
			name: "forward-nef",
			eta:  4.2,
			pf:   PF{NEF: 0.95, NHM: 6, NEM: 5},
			lvl:  TightID,
			want: false,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			j := Jet{Kind: Reco, Pt: 100, Eta: tc.eta, PF: tc.pf}
			if got := IsGoodID(j, tc.lvl); got != tc.want {
				t.Fatalf("invalid jet-id: got=%v, want=%v", got, tc.want)
			}
		})
	}
}

func TestIsGoodTrackMax(t *testing.T) {
	for _, tc := range []struct {
		eta, pt, trk float64
		want         bool
	}{
		{0, 100, 20, true},
		{0, 100, 0.5, false},
		{0, 100, 99, false},
		{2.5, 100, 0.5, true},
		{-3, 100, 99, true},
		{1, 0, 10, false},
	} {
		j := Jet{Kind: Reco, Eta: tc.eta, Pt: tc.pt, TrackMax: tc.trk}
		if got := IsGoodTrackMax(j); got != tc.want {
			t.Fatalf("invalid track-max(eta=%v, pt=%v, trk=%v): got=%v, want=%v",
				tc.eta, tc.pt, tc.trk, got, tc.want,
			)
		}
	}
}
