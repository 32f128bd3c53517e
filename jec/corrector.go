// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jec

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNoBin is returned when no record of a table covers the requested jet.
var ErrNoBin = errors.New("jec: no bin for jet")

type record struct {
	bins [][2]float64 // ranges of the binning variables
	deps [][2]float64 // ranges of the dependency variables
	pars []float64
	def  *block
}

type block struct {
	bins    []Var
	deps    []Var
	formula *Formula
}

// Corrector applies one level of jet energy corrections, described by
// a text table: a definition line
//
//	{nbins Var1... ndeps Dep1... formula Correction Level}
//
// followed by data lines
//
//	min1 max1 ... n depmin1 depmax1 ... p0 p1 ...
//
// The first record whose bins contain the jet is used, and dependency
// values are clamped to the record's ranges.
type Corrector struct {
	Level string
	recs  []record
}

// OpenCorrector reads a correction table from the named file.
func OpenCorrector(fname string) (*Corrector, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("jec: could not open correction table: %w", err)
	}
	defer f.Close()

	c, err := ReadCorrector(f)
	if err != nil {
		return nil, fmt.Errorf("jec: could not read correction table %q: %w", fname, err)
	}
	return c, nil
}

// ReadCorrector reads a correction table from r.
func ReadCorrector(r io.Reader) (*Corrector, error) {
	var (
		c   Corrector
		cur *block
	)
	err := scanTable(r, func(hdr header) error {
		f, err := ParseFormula(hdr.formula)
		if err != nil {
			return err
		}
		if len(hdr.deps) == 0 || len(hdr.deps) > 4 {
			return fmt.Errorf("jec: invalid number of dependencies (%d)", len(hdr.deps))
		}
		cur = &block{bins: hdr.bins, deps: hdr.deps, formula: f}
		if c.Level == "" {
			c.Level = hdr.level
		}
		return nil
	}, func(hdr *header, fields []string, line int) error {
		var (
			nvar = len(hdr.bins)
			npar = len(hdr.deps)
			beg  = 2*nvar + 2*npar + 1
		)
		if len(fields) < beg {
			return fmt.Errorf("jec: too few fields on line %d (got=%d, want>=%d)", line, len(fields), beg)
		}
		vs, err := parseFloats(fields)
		if err != nil {
			return fmt.Errorf("jec: could not parse line %d: %w", line, err)
		}
		c.recs = append(c.recs, record{
			bins: ranges(vs[:2*nvar]),
			deps: ranges(vs[2*nvar+1 : beg]),
			pars: vs[beg:],
			def:  cur,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(c.recs) == 0 {
		return nil, fmt.Errorf("jec: empty correction table")
	}
	return &c, nil
}

// Correction returns the multiplicative correction factor for the jet v.
func (c *Corrector) Correction(v Values) (float64, error) {
	for _, rec := range c.recs {
		if !inBin(rec.def.bins, rec.bins, v) {
			continue
		}
		var xs [4]float64
		for i, dep := range rec.def.deps {
			xs[i] = clamp(v.get(dep), rec.deps[i][0], rec.deps[i][1])
		}
		return rec.def.formula.Eval(xs[:], rec.pars), nil
	}
	return -1, ErrNoBin
}

// CorrectedPt returns the corrected transverse momentum of the jet v,
// or a negative value if the jet is outside the table.
func (c *Corrector) CorrectedPt(v Values) float64 {
	corr, err := c.Correction(v)
	if err != nil || corr < 0 {
		return -1
	}
	return v.Pt * corr
}

// Chain applies a sequence of correction levels, each one evaluated
// at the pt corrected by the previous levels.
type Chain []*Corrector

// OpenChain reads the named correction tables, in order.
func OpenChain(fnames ...string) (Chain, error) {
	chain := make(Chain, 0, len(fnames))
	for _, fname := range fnames {
		c, err := OpenCorrector(fname)
		if err != nil {
			return nil, err
		}
		chain = append(chain, c)
	}
	return chain, nil
}

// CorrectedPt returns the corrected transverse momentum of the jet v,
// or -1 if any of the levels could not correct it.
func (ch Chain) CorrectedPt(v Values) float64 {
	pt := v.Pt
	for _, c := range ch {
		v.Pt = pt
		pt = c.CorrectedPt(v)
		if pt < 0 {
			return -1
		}
	}
	return pt
}
