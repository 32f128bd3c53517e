// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dijet

import (
	"fmt"
	"math"
)

// Cut is the dijet kinematic selection.
// Pseudorapidity windows are inclusive and defined per frame.
type Cut struct {
	LeadPt    float64 `yaml:"lead-pt"`
	SubleadPt float64 `yaml:"sublead-pt"`

	LeadEtaLab    [2]float64 `yaml:"lead-eta-lab,flow"`
	SubleadEtaLab [2]float64 `yaml:"sublead-eta-lab,flow"`
	LeadEtaCM     [2]float64 `yaml:"lead-eta-cm,flow"`
	SubleadEtaCM  [2]float64 `yaml:"sublead-eta-cm,flow"`

	DPhi float64 `yaml:"dphi"` // minimal |dphi|
}

// DefaultCut returns the default dijet selection.
func DefaultCut() *Cut {
	return &Cut{
		LeadPt:        50,
		SubleadPt:     40,
		LeadEtaLab:    [2]float64{-2.5, 2.5},
		SubleadEtaLab: [2]float64{-2.5, 2.5},
		LeadEtaCM:     [2]float64{-2, 2},
		SubleadEtaCM:  [2]float64{-2, 2},
		DPhi:          2 * math.Pi / 3,
	}
}

// Pass returns whether the candidate passes the selection in the provided
// frame. A nil cut always passes.
func (cut *Cut) Pass(c Candidate, fr Frame) bool {
	if cut == nil {
		return true
	}
	if c.Lead.Pt < cut.LeadPt || c.Sublead.Pt < cut.SubleadPt {
		return false
	}

	lead, sublead := cut.LeadEtaLab, cut.SubleadEtaLab
	if fr == CM {
		lead, sublead = cut.LeadEtaCM, cut.SubleadEtaCM
	}
	if !within(c.Lead.Eta(fr), lead) || !within(c.Sublead.Eta(fr), sublead) {
		return false
	}

	return math.Abs(c.DPhi) >= cut.DPhi
}

func within(v float64, r [2]float64) bool {
	return r[0] <= v && v <= r[1]
}

func (cut *Cut) String() string {
	if cut == nil {
		return "dijet-cut{none}"
	}
	return fmt.Sprintf(
		"dijet-cut{lead>=%g, sublead>=%g, eta-lab=%v/%v, eta-cm=%v/%v, |dphi|>=%.4f}",
		cut.LeadPt, cut.SubleadPt,
		cut.LeadEtaLab, cut.SubleadEtaLab,
		cut.LeadEtaCM, cut.SubleadEtaCM,
		cut.DPhi,
	)
}
