// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package jet holds the event data model of the dijet analysis:
// reconstructed and generated jets, events and the collision configuration.
package jet // import "github.com/go-lpc/jetana/jet"

import (
	"fmt"
	"math"
)

// Kind describes the origin of a jet.
type Kind uint8

const (
	Reco Kind = iota // reconstructed jet
	Gen              // generator-level jet
)

func (k Kind) String() string {
	switch k {
	case Reco:
		return "reco"
	case Gen:
		return "gen"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

const (
	// Uncorrected is the corrected-pt value of a reconstructed jet
	// when no calibration table has been configured.
	Uncorrected = -999.0

	// NoMatch is the index value of a reconstructed jet without
	// a matching generator jet (and vice versa).
	NoMatch = -1
)

// PF holds the particle-flow energy fractions and multiplicities
// of a reconstructed jet.
type PF struct {
	CHF float64 // charged hadron energy fraction
	NHF float64 // neutral hadron energy fraction
	CEF float64 // charged EM energy fraction
	NEF float64 // neutral EM energy fraction
	MUF float64 // muon energy fraction

	CHM int // charged hadron multiplicity
	NHM int // neutral hadron multiplicity
	CEM int // charged EM multiplicity
	NEM int // neutral EM multiplicity
	MUM int // muon multiplicity
}

// Jet is a reconstructed or generated jet.
//
// PtCorr is only meaningful for reconstructed jets, once the energy
// correction pipeline has run.
type Jet struct {
	Kind   Kind
	Pt     float64 // raw transverse momentum
	PtCorr float64 // corrected transverse momentum
	Eta    float64 // pseudorapidity in the detector frame
	Phi    float64

	RefPt  float64 // pt of the reference generator jet, negative if none
	GenIdx int     // index of the matched generator jet, or NoMatch

	Flavor   int     // parton flavor (for B)
	TrackMax float64 // pt of the hardest track in the jet
	PF       PF
}

// HasMatch returns whether a reconstructed jet has been matched
// to a generator jet.
func (j Jet) HasMatch() bool {
	return j.Kind == Reco && j.GenIdx >= 0
}

// SortPt returns the transverse momentum used to order jets:
// the corrected pt for reconstructed jets, the raw pt for generated ones.
// Uncorrected reconstructed jets have the lowest priority.
func (j Jet) SortPt() float64 {
	if j.Kind == Gen {
		return j.Pt
	}
	if j.PtCorr == Uncorrected {
		return math.Inf(-1)
	}
	return j.PtCorr
}

func (j Jet) String() string {
	switch j.Kind {
	case Gen:
		return fmt.Sprintf("gen{pt=%.2f, eta=%+.3f, phi=%+.3f, flav=%d}",
			j.Pt, j.Eta, j.Phi, j.Flavor,
		)
	default:
		return fmt.Sprintf("reco{pt=%.2f, corr=%.2f, eta=%+.3f, phi=%+.3f, ref=%.2f, gen=%d}",
			j.Pt, j.PtCorr, j.Eta, j.Phi, j.RefPt, j.GenIdx,
		)
	}
}

// FlavorForB remaps a generator flavor-for-B code into the [-6, 6] range
// used for histogramming: quarks keep their code, gluons map to 6 and
// everything else (including undefined) maps to -6.
func FlavorForB(v int) int {
	switch {
	case -5 <= v && v <= 5:
		return v
	case v == 21:
		return 6
	default:
		return -6
	}
}
