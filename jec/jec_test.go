// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jec

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/go-lpc/jetana/jet"
	"golang.org/x/exp/rand"
)

func TestFormula(t *testing.T) {
	for _, tc := range []struct {
		src  string
		x    []float64
		p    []float64
		want float64
	}{
		{src: "1", want: 1},
		{src: "x", x: []float64{3}, want: 3},
		{src: "-x^2", x: []float64{3}, want: -9},
		{src: "2^3^2", want: 512},
		{src: "2**3", want: 8},
		{src: "[0]+[1]*x", x: []float64{2}, p: []float64{1, 3}, want: 7},
		{src: "[0]*(1+[1])", p: []float64{2, 0.5}, want: 3},
		{src: "1e2+2.5E-1", want: 100.25},
		{src: "max(0.0001,pow([0]+[1]*log10(x),1))", x: []float64{100}, p: []float64{1.2, -0.05}, want: 1.1},
		{src: "TMath::Log(TMath::Exp(x))", x: []float64{1.5}, want: 1.5},
		{src: "sqrt([0]*[0]+[1]*[1]/x)", x: []float64{4}, p: []float64{0, 2}, want: 1},
		{src: "(x>10)*2+(x<=10)*3", x: []float64{12}, want: 2},
		{src: "(x>10)*2+(x<=10)*3", x: []float64{10}, want: 3},
		{src: "x*y-z", x: []float64{2, 3, 1}, want: 5},
		{src: "x*-1", x: []float64{2}, want: -2},
		{src: "[2]+([0]-[2])/(1+pow(x/[1],2))", x: []float64{1}, p: []float64{3, 1, 1}, want: 2},
	} {
		t.Run(tc.src, func(t *testing.T) {
			f, err := ParseFormula(tc.src)
			if err != nil {
				t.Fatalf("could not parse formula: %+v", err)
			}
			got := f.Eval(tc.x, tc.p)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Fatalf("invalid value: got=%v, want=%v", got, tc.want)
			}
		})
	}
}

func TestFormulaErrors(t *testing.T) {
	for _, src := range []string{
		"",
		"1+",
		"(x",
		"foo(x)",
		"w",
		"[a]",
		"[0",
		"pow(x)",
		"x $ 2",
		"1 2",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := ParseFormula(src)
			if err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestCorrector(t *testing.T) {
	c, err := OpenCorrector("testdata/L2Relative_AK4PF.txt")
	if err != nil {
		t.Fatalf("could not open corrector: %+v", err)
	}

	if got, want := c.Level, "L2Relative"; got != want {
		t.Fatalf("invalid level: got=%q, want=%q", got, want)
	}

	for _, tc := range []struct {
		name string
		v    Values
		want float64
	}{
		{"backward", Values{Pt: 100, Eta: -1}, 110},
		{"forward", Values{Pt: 100, Eta: 1}, 106},
		{"clamped", Values{Pt: 5, Eta: -1}, 5 * 1.15},
		{"edge", Values{Pt: 100, Eta: 0}, 110},
		{"outside", Values{Pt: 100, Eta: 6}, -1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := c.CorrectedPt(tc.v)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("invalid corrected pt: got=%v, want=%v", got, tc.want)
			}
		})
	}

	_, err = c.Correction(Values{Pt: 100, Eta: 6})
	if !errors.Is(err, ErrNoBin) {
		t.Fatalf("invalid error: got=%v, want=%v", err, ErrNoBin)
	}
}

func TestChain(t *testing.T) {
	chain, err := OpenChain(
		"testdata/L2Relative_AK4PF.txt",
		"testdata/L3Absolute_AK4PF.txt",
	)
	if err != nil {
		t.Fatalf("could not open chain: %+v", err)
	}

	got := chain.CorrectedPt(Values{Pt: 100, Eta: -1})
	if want := 112.2; math.Abs(got-want) > 1e-9 {
		t.Fatalf("invalid corrected pt: got=%v, want=%v", got, want)
	}

	got = chain.CorrectedPt(Values{Pt: 100, Eta: 8})
	if want := -1.0; got != want {
		t.Fatalf("invalid corrected pt: got=%v, want=%v", got, want)
	}
}

func TestReadCorrectorErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		txt  string
	}{
		{"empty", ""},
		{"no-header", "-5 5 4 10 1000 1 2\n"},
		{"bad-var", "{1 JetFoo 1 JetPt [0] Correction L2}\n-5 5 3 10 1000 1\n"},
		{"bad-formula", "{1 JetEta 1 JetPt [0]+ Correction L2}\n-5 5 3 10 1000 1\n"},
		{"short-line", "{1 JetEta 1 JetPt [0] Correction L2}\n-5 5 3 10\n"},
		{"bad-number", "{1 JetEta 1 JetPt [0] Correction L2}\n-5 5 3 10 abc 1\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCorrector(strings.NewReader(tc.txt))
			if err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestUncertainty(t *testing.T) {
	u, err := OpenUncertainty("testdata/Uncertainty_AK4PF.txt")
	if err != nil {
		t.Fatalf("could not open uncertainty: %+v", err)
	}

	for _, tc := range []struct {
		pt       float64
		down, up float64
	}{
		{20, 0.02, 0.03},
		{50, 0.02, 0.03},
		{75, 0.015, 0.025},
		{150, 0.0075, 0.015},
		{200, 0.005, 0.01},
		{300, 0.005, 0.01},
	} {
		down, up, err := u.Uncertainty(Values{Pt: tc.pt, Eta: 0.5})
		if err != nil {
			t.Fatalf("could not get uncertainty: %+v", err)
		}
		if math.Abs(down-tc.down) > 1e-12 || math.Abs(up-tc.up) > 1e-12 {
			t.Fatalf("invalid uncertainty(pt=%v): got=(%v, %v), want=(%v, %v)",
				tc.pt, down, up, tc.down, tc.up,
			)
		}
	}

	_, _, err = u.Uncertainty(Values{Pt: 100, Eta: 7})
	if !errors.Is(err, ErrNoBin) {
		t.Fatalf("invalid error: got=%v, want=%v", err, ErrNoBin)
	}
}

func TestScaleFactor(t *testing.T) {
	for _, tc := range []struct {
		eta  float64
		syst int
		want float64
	}{
		{0.1, JERNominal, 1.15958},
		{-0.1, JERNominal, 1.15958},
		{0.0, JERDown, 1.095},
		{-5.191, JERUp, 1.341},
		{2.9, JERNominal, 1.7788},
		{-2.9, JERNominal, 1.7788},
		{5.191, JERNominal, 1},
		{-6, JERNominal, 1},
		{0.1, JEROff, 1},
		{0.1, 7, 1},
	} {
		if got := ScaleFactor(tc.eta, tc.syst); got != tc.want {
			t.Fatalf("invalid scale factor(eta=%v, syst=%d): got=%v, want=%v",
				tc.eta, tc.syst, got, tc.want,
			)
		}
	}
}

func TestResolutionWidth(t *testing.T) {
	res := DefaultResolution()
	width := func(pt float64) float64 {
		return math.Sqrt(res.Alpha*res.Alpha + res.Beta*res.Beta/pt)
	}

	for _, tc := range []struct {
		pt, at float64
	}{
		{10, 31},
		{30, 31},
		{30.5, 30.5},
		{100, 100},
		{799.5, 799.5},
		{800, 799},
		{2000, 799},
	} {
		if got, want := res.Width(tc.pt), width(tc.at); got != want {
			t.Fatalf("invalid width(%v): got=%v, want=%v", tc.pt, got, want)
		}
	}

	sf := ScaleFactor(0.1, JERNominal)
	got := res.Sigma(100, 0.1, JERNominal)
	want := math.Sqrt(sf*sf-1) * width(100)
	if got != want {
		t.Fatalf("invalid sigma: got=%v, want=%v", got, want)
	}

	if got := res.Sigma(100, 0.1, JEROff); got != 0 {
		t.Fatalf("invalid sigma for disabled smearing: got=%v", got)
	}
}

// countingSource counts the number of draws.
type countingSource struct {
	src rand.Source
	n   int
}

func (src *countingSource) Uint64() uint64 {
	src.n++
	return src.src.Uint64()
}

func (src *countingSource) Seed(seed uint64) { src.src.Seed(seed) }

func newPipeline(t *testing.T) *Pipeline {
	t.Helper()
	chain, err := OpenChain("testdata/L2Relative_AK4PF.txt")
	if err != nil {
		t.Fatalf("could not open chain: %+v", err)
	}
	unc, err := OpenUncertainty("testdata/Uncertainty_AK4PF.txt")
	if err != nil {
		t.Fatalf("could not open uncertainty: %+v", err)
	}
	return &Pipeline{
		JEC: chain,
		Res: DefaultResolution(),
		JEU: unc,
	}
}

func TestPipelineNoCalibration(t *testing.T) {
	var p Pipeline
	src := &countingSource{src: rand.NewSource(1)}
	pt, tr := p.Correct(Input{RawPt: 100, Eta: 0.5, HasGen: true, GenPt: 100}, src)
	if pt != jet.Uncorrected {
		t.Fatalf("invalid corrected pt: got=%v, want=%v", pt, jet.Uncorrected)
	}
	if tr.Stages != 0 {
		t.Fatalf("invalid stages: got=%v, want=0", tr.Stages)
	}
	if src.n != 0 {
		t.Fatalf("random source used %d times", src.n)
	}
}

func TestPipelineBase(t *testing.T) {
	p := newPipeline(t)
	pt, tr := p.Correct(Input{RawPt: 100, Eta: -1}, nil)
	if math.Abs(pt-110) > 1e-9 {
		t.Fatalf("invalid corrected pt: got=%v, want=110", pt)
	}
	if !tr.Has(StageBase) || tr.Has(StageExtra) || tr.Has(StageSmear) || tr.Has(StageShift) {
		t.Fatalf("invalid stages: %v", tr.Stages)
	}

	pt, _ = p.Correct(Input{RawPt: 100, Eta: 9}, nil)
	if pt >= 0 {
		t.Fatalf("invalid corrected pt for jet outside table: got=%v", pt)
	}
}

func TestPipelineExtraScale(t *testing.T) {
	p := newPipeline(t)
	p.ExtraScale = true

	pt, tr := p.Correct(Input{RawPt: 100, Eta: -1}, nil)
	want := 110 * ExtraScale(110)
	if math.Abs(pt-want) > 1e-9 {
		t.Fatalf("invalid corrected pt: got=%v, want=%v", pt, want)
	}
	if !tr.Has(StageExtra) {
		t.Fatalf("extra scale stage did not run")
	}
	if got := ExtraScale(1e9); math.Abs(got-1.00002) > 1e-4 {
		t.Fatalf("invalid high-pt extra scale: got=%v", got)
	}
}

func TestPipelineSmearing(t *testing.T) {
	p := newPipeline(t)
	p.IsMC = true
	p.JEUSyst = +1 // ignored for simulation

	for _, tc := range []struct {
		name   string
		syst   int
		hasGen bool
		smear  bool
	}{
		{"nominal", JERNominal, true, true},
		{"down", JERDown, true, true},
		{"up", JERUp, true, true},
		{"off", JEROff, true, false},
		{"out-of-range", 5, true, false},
		{"negative-out-of-range", -3, true, false},
		{"no-gen", JERNominal, false, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p.JERSyst = tc.syst
			src := &countingSource{src: rand.NewSource(42)}
			pt, tr := p.Correct(Input{RawPt: 100, Eta: -1, HasGen: tc.hasGen, GenPt: 95}, src)
			if got, want := tr.Has(StageSmear), tc.smear; got != want {
				t.Fatalf("invalid smearing stage: got=%v, want=%v", got, want)
			}
			if tr.Has(StageShift) {
				t.Fatalf("uncertainty shift applied to simulation")
			}
			if !tc.smear {
				if src.n != 0 {
					t.Fatalf("random source used %d times", src.n)
				}
				if math.Abs(pt-110) > 1e-9 {
					t.Fatalf("invalid corrected pt: got=%v, want=110", pt)
				}
				return
			}
			if src.n == 0 {
				t.Fatalf("random source not used")
			}
			if math.Abs(pt-110*tr.Smear) > 1e-9 {
				t.Fatalf("invalid corrected pt: got=%v, want=%v", pt, 110*tr.Smear)
			}
		})
	}
}

func TestPipelineSmearingReproducible(t *testing.T) {
	p := newPipeline(t)
	p.IsMC = true

	in := Input{RawPt: 100, Eta: 2.9, HasGen: true, GenPt: 95}
	pt1, _ := p.Correct(in, rand.NewSource(1234))
	pt2, _ := p.Correct(in, rand.NewSource(1234))
	if pt1 != pt2 {
		t.Fatalf("smearing not reproducible: %v != %v", pt1, pt2)
	}
}

func TestPipelineShift(t *testing.T) {
	p := newPipeline(t)
	for _, tc := range []struct {
		syst int
		want float64
	}{
		{0, 110},
		{+1, 110 * (1 + 0.02*0.9 + 0.01*0.1)},
		{-1, 110 * (1 - (0.01*0.9 + 0.005*0.1))},
	} {
		p.JEUSyst = tc.syst
		pt, tr := p.Correct(Input{RawPt: 100, Eta: -1}, nil)
		if math.Abs(pt-tc.want) > 1e-9 {
			t.Fatalf("invalid corrected pt(syst=%d): got=%v, want=%v", tc.syst, pt, tc.want)
		}
		if got, want := tr.Has(StageShift), tc.syst != 0; got != want {
			t.Fatalf("invalid shift stage(syst=%d): got=%v, want=%v", tc.syst, got, want)
		}
	}
}
