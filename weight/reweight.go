// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package weight

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// FindBin returns the index i of the bin [edges[i], edges[i+1]) containing x,
// or -1 if x is below the first edge or at or above the last one.
func FindBin(edges []float64, x float64) int {
	if len(edges) < 2 {
		return -1
	}
	return floats.Within(edges, x)
}

// Key identifies a (leading, subleading) jet pt bin pair.
type Key struct {
	Lead    int
	Sublead int
}

// Reweighter holds dijet reweighting factors, binned in leading and
// subleading jet pt. Bin pairs without an explicit factor get 1.
type Reweighter struct {
	edges   []float64
	factors map[Key]float64
}

// NewReweighter returns a reweighter with the provided pt bin edges.
func NewReweighter(edges []float64) (*Reweighter, error) {
	if len(edges) < 2 {
		return nil, fmt.Errorf("weight: need at least 2 bin edges (got=%d)", len(edges))
	}
	if !sort.Float64sAreSorted(edges) {
		return nil, fmt.Errorf("weight: bin edges are not sorted")
	}
	return &Reweighter{
		edges:   append([]float64(nil), edges...),
		factors: make(map[Key]float64),
	}, nil
}

// DefaultEdges returns the dijet pt bin edges, from 50 GeV up to 1 TeV.
func DefaultEdges() []float64 {
	edges := make([]float64, 0, 64)
	for pt := 50.0; pt < 200; pt += 10 {
		edges = append(edges, pt)
	}
	for pt := 200.0; pt < 400; pt += 20 {
		edges = append(edges, pt)
	}
	for pt := 400.0; pt <= 1000; pt += 50 {
		edges = append(edges, pt)
	}
	return edges
}

// Edges returns the pt bin edges.
func (rw *Reweighter) Edges() []float64 { return rw.edges }

// Len returns the number of bin pairs with an explicit factor.
func (rw *Reweighter) Len() int { return len(rw.factors) }

// Set sets the factor of a bin pair.
func (rw *Reweighter) Set(k Key, v float64) error {
	n := len(rw.edges) - 1
	if k.Lead < 0 || k.Lead >= n || k.Sublead < 0 || k.Sublead >= n {
		return fmt.Errorf("weight: bin pair (%d, %d) out of range", k.Lead, k.Sublead)
	}
	if v == 1 {
		delete(rw.factors, k)
		return nil
	}
	rw.factors[k] = v
	return nil
}

// Factor returns the reweighting factor of a dijet with the provided
// leading and subleading jet pt.
func (rw *Reweighter) Factor(lead, sublead float64) float64 {
	if rw == nil {
		return 1
	}
	k := Key{
		Lead:    FindBin(rw.edges, lead),
		Sublead: FindBin(rw.edges, sublead),
	}
	if k.Lead < 0 || k.Sublead < 0 {
		return 1
	}
	v, ok := rw.factors[k]
	if !ok {
		return 1
	}
	return v
}
