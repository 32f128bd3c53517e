// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jec

import (
	"fmt"
	"io"
	"os"
)

type uncRecord struct {
	vars []Var
	bins [][2]float64
	pts  []float64
	down []float64
	up   []float64
}

// Uncertainty holds a jet energy uncertainty table.
// Data lines list, for each bin, the number of values that follow
// and then (pt, down, up) triplets; uncertainties are linearly
// interpolated in pt and frozen outside the tabulated range.
type Uncertainty struct {
	recs []uncRecord
}

// OpenUncertainty reads an uncertainty table from the named file.
func OpenUncertainty(fname string) (*Uncertainty, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("jec: could not open uncertainty table: %w", err)
	}
	defer f.Close()

	u, err := ReadUncertainty(f)
	if err != nil {
		return nil, fmt.Errorf("jec: could not read uncertainty table %q: %w", fname, err)
	}
	return u, nil
}

// ReadUncertainty reads an uncertainty table from r.
func ReadUncertainty(r io.Reader) (*Uncertainty, error) {
	var u Uncertainty
	err := scanTable(r, nil, func(hdr *header, fields []string, line int) error {
		nvar := len(hdr.bins)
		if len(fields) < 2*nvar+1 {
			return fmt.Errorf("jec: too few fields on line %d", line)
		}
		vs, err := parseFloats(fields)
		if err != nil {
			return fmt.Errorf("jec: could not parse line %d: %w", line, err)
		}
		var (
			n   = int(vs[2*nvar])
			rec = uncRecord{
				vars: hdr.bins,
				bins: ranges(vs[:2*nvar]),
			}
			data = vs[2*nvar+1:]
		)
		if n > len(data) {
			return fmt.Errorf("jec: line %d announces %d values, got %d", line, n, len(data))
		}
		for i := 0; i+2 < n; i += 3 {
			rec.pts = append(rec.pts, data[i])
			rec.down = append(rec.down, data[i+1])
			rec.up = append(rec.up, data[i+2])
		}
		u.recs = append(u.recs, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(u.recs) == 0 {
		return nil, fmt.Errorf("jec: empty uncertainty table")
	}
	return &u, nil
}

// Uncertainty returns the fractional down and up uncertainties for the jet v.
func (u *Uncertainty) Uncertainty(v Values) (down, up float64, err error) {
	for _, rec := range u.recs {
		if !inBin(rec.vars, rec.bins, v) {
			continue
		}
		n := len(rec.pts)
		switch {
		case n == 0:
			return -1, -1, ErrNoBin
		case v.Pt < rec.pts[0]:
			return rec.down[0], rec.up[0], nil
		case v.Pt >= rec.pts[n-1]:
			return rec.down[n-1], rec.up[n-1], nil
		}
		i := 0
		for j := 0; j < n-1; j++ {
			if rec.pts[j] <= v.Pt && v.Pt < rec.pts[j+1] {
				i = j
				break
			}
		}
		f := (v.Pt - rec.pts[i]) / (rec.pts[i+1] - rec.pts[i])
		down = rec.down[i] + f*(rec.down[i+1]-rec.down[i])
		up = rec.up[i] + f*(rec.up[i+1]-rec.up[i])
		return down, up, nil
	}
	return -1, -1, ErrNoBin
}
