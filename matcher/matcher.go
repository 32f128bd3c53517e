// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package matcher pairs reconstructed jets with generator jets.
package matcher // import "github.com/go-lpc/jetana/matcher"

import (
	"math"

	"github.com/go-lpc/jetana/jet"
)

// Mapping holds the association between reconstructed and generator jets.
// Unmatched entries hold jet.NoMatch.
type Mapping struct {
	RecoToGen []int
	GenToReco []int
}

// Gen returns the index of the generator jet matched to the i-th
// reconstructed jet, and whether there is one.
func (m Mapping) Gen(i int) (int, bool) {
	if i < 0 || i >= len(m.RecoToGen) {
		return jet.NoMatch, false
	}
	j := m.RecoToGen[i]
	return j, j != jet.NoMatch
}

// Reco returns the index of the reconstructed jet matched to the i-th
// generator jet, and whether there is one.
func (m Mapping) Reco(i int) (int, bool) {
	if i < 0 || i >= len(m.GenToReco) {
		return jet.NoMatch, false
	}
	j := m.GenToReco[i]
	return j, j != jet.NoMatch
}

// Policy associates reconstructed jets with generator jets.
type Policy interface {
	Match(reco, gen []jet.Jet) Mapping
}

// Epsilon is the pt tolerance used to identify the reference generator
// jet of a reconstructed jet: twice the single-precision machine epsilon,
// as the reference pt is stored in single precision.
const Epsilon = 2 * 0x1p-23

// FirstMatch is the greedy matching policy: each reconstructed jet is
// associated with the first generator jet, in input order, whose pt agrees
// with the jet's reference pt within Epsilon.
//
// FirstMatch is not a bipartite matching: two reconstructed jets may
// select the same generator jet, in which case the inverse mapping only
// records the first one.
type FirstMatch struct{}

func (FirstMatch) Match(reco, gen []jet.Jet) Mapping {
	m := Mapping{
		RecoToGen: make([]int, len(reco)),
		GenToReco: make([]int, len(gen)),
	}

	for i, rj := range reco {
		m.RecoToGen[i] = jet.NoMatch
		if len(gen) == 0 || rj.RefPt < 0 {
			continue
		}
		for j, gj := range gen {
			if math.Abs(gj.Pt-rj.RefPt) <= Epsilon {
				m.RecoToGen[i] = j
				break
			}
		}
	}

	for j := range gen {
		m.GenToReco[j] = jet.NoMatch
		for i, v := range m.RecoToGen {
			if v == j {
				m.GenToReco[j] = i
				break
			}
		}
	}

	return m
}

// Apply runs the policy over the event jets and stores the index of the
// matched generator jet in each reconstructed jet.
func Apply(p Policy, evt *jet.Event) Mapping {
	m := p.Match(evt.Reco, evt.Gen)
	for i := range evt.Reco {
		evt.Reco[i].GenIdx = m.RecoToGen[i]
	}
	return m
}

var _ Policy = (*FirstMatch)(nil)
