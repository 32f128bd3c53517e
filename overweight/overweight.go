// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package overweight flags simulated events whose jets are much harder
// than the generated hard scattering ("x-jets").
package overweight // import "github.com/go-lpc/jetana/overweight"

import (
	"fmt"

	"github.com/go-lpc/jetana/dijet"
)

// Filter rejects events whose leading jet pt, or dijet average pt, is
// too large with respect to ptHat.
type Filter struct {
	LeadRatio float64 `yaml:"lead-ratio"` // maximal leadPt/ptHat
	AveRatio  float64 `yaml:"ave-ratio"`  // maximal ptAve/ptHat
}

// Default returns the default overweight filter.
func Default() Filter {
	return Filter{LeadRatio: 2.5, AveRatio: 1.7}
}

// IsOverweighted returns whether the leading jet pt or the dijet average
// pt is too large for an event with the provided ptHat.
// Events without a positive ptHat are always overweighted.
func (f Filter) IsOverweighted(leadPt, ptAve, ptHat float64) bool {
	if !(ptHat > 0) {
		return true
	}
	return leadPt/ptHat > f.LeadRatio || ptAve/ptHat > f.AveRatio
}

// Verdict is the outcome of the overweight filter on an event.
type Verdict uint8

const (
	Accept      Verdict = iota // event kept
	RecoHeavy                  // reco dijet overweighted
	GenHeavy                   // gen dijet overweighted
	MissingReco                // no reco dijet
	MissingGen                 // no gen dijet
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case RecoHeavy:
		return "reco-overweighted"
	case GenHeavy:
		return "gen-overweighted"
	case MissingReco:
		return "missing-reco-dijet"
	case MissingGen:
		return "missing-gen-dijet"
	}
	return fmt.Sprintf("Verdict(%d)", uint8(v))
}

// Rejected returns whether the event should be dropped.
func (v Verdict) Rejected() bool { return v != Accept }

// Check applies the filter to the reco and gen dijets of an event.
// A nil dijet means no dijet could be formed for that view, and the event
// is rejected.
func (f Filter) Check(reco, gen *dijet.Candidate, ptHat float64) Verdict {
	switch {
	case reco == nil:
		return MissingReco
	case f.IsOverweighted(reco.Lead.Pt, reco.PtAve, ptHat):
		return RecoHeavy
	case gen == nil:
		return MissingGen
	case f.IsOverweighted(gen.Lead.Pt, gen.PtAve, ptHat):
		return GenHeavy
	}
	return Accept
}
