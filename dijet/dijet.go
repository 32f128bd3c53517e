// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dijet builds leading/subleading jet pairs and applies the
// dijet kinematic selection in the laboratory and center-of-mass frames.
package dijet // import "github.com/go-lpc/jetana/dijet"

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-lpc/jetana/frame"
	"github.com/go-lpc/jetana/jet"
)

// ErrStale is returned when the derived quantities of a dijet candidate
// do not match the ones recomputed from its two jets.
var ErrStale = errors.New("dijet: stale dijet candidate")

// tolerance used when comparing stored and recomputed quantities.
const tolerance = 1e-9

// Jet is the view of a jet used to build a dijet.
type Jet struct {
	Pt     float64
	EtaLab float64
	EtaCM  float64
	Phi    float64
}

// View returns the dijet view of j, with transverse momentum pt and
// its pseudorapidity transformed to both frames.
func View(j jet.Jet, pt float64, tr frame.Transform) Jet {
	return Jet{
		Pt:     pt,
		EtaLab: tr.Lab(j.Eta),
		EtaCM:  tr.CM(j.Eta),
		Phi:    j.Phi,
	}
}

// Eta returns the pseudorapidity of the jet in the provided frame.
func (j Jet) Eta(fr Frame) float64 {
	if fr == CM {
		return j.EtaCM
	}
	return j.EtaLab
}

// Candidate is a leading/subleading jet pair.
type Candidate struct {
	Lead    Jet
	Sublead Jet

	PtAve  float64 // average transverse momentum
	EtaLab float64 // average pseudorapidity, lab frame
	EtaCM  float64 // average pseudorapidity, center-of-mass frame
	DPhi   float64 // azimuthal separation, in (-pi, pi]
	DEtaCM float64 // half pseudorapidity separation, center-of-mass frame
	Phi    float64 // azimuth of the summed transverse momentum
}

// New returns the dijet candidate made of the lead and sublead jets.
func New(lead, sublead Jet) Candidate {
	c := Candidate{Lead: lead, Sublead: sublead}
	c.PtAve, c.EtaLab, c.EtaCM, c.DPhi, c.DEtaCM, c.Phi = derive(lead, sublead)
	return c
}

func derive(l, s Jet) (ptAve, etaLab, etaCM, dphi, deta, phi float64) {
	ptAve = 0.5 * (l.Pt + s.Pt)
	etaLab = 0.5 * (l.EtaLab + s.EtaLab)
	etaCM = 0.5 * (l.EtaCM + s.EtaCM)
	dphi = DeltaPhi(l.Phi, s.Phi)
	deta = 0.5 * (l.EtaCM - s.EtaCM)
	phi = math.Atan2(
		l.Pt*math.Sin(l.Phi)+s.Pt*math.Sin(s.Phi),
		l.Pt*math.Cos(l.Phi)+s.Pt*math.Cos(s.Phi),
	)
	return ptAve, etaLab, etaCM, dphi, deta, phi
}

// Eta returns the average pseudorapidity of the dijet in the provided frame.
func (c Candidate) Eta(fr Frame) float64 {
	if fr == CM {
		return c.EtaCM
	}
	return c.EtaLab
}

// Verify recomputes the derived quantities of the candidate from its
// two jets and checks they match the stored ones.
func (c Candidate) Verify() error {
	ptAve, etaLab, etaCM, dphi, deta, phi := derive(c.Lead, c.Sublead)
	for _, v := range []struct {
		name      string
		got, want float64
	}{
		{"ptAve", c.PtAve, ptAve},
		{"etaLab", c.EtaLab, etaLab},
		{"etaCM", c.EtaCM, etaCM},
		{"dPhi", c.DPhi, dphi},
		{"dEtaCM", c.DEtaCM, deta},
		{"phi", c.Phi, phi},
	} {
		if !same(v.got, v.want) {
			return fmt.Errorf("%w: %s=%v, recomputed=%v", ErrStale, v.name, v.got, v.want)
		}
	}
	return nil
}

func same(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= tolerance*scale
}

func (c Candidate) String() string {
	return fmt.Sprintf(
		"dijet{ptAve=%.2f, etaLab=%+.3f, etaCM=%+.3f, dphi=%+.3f, detaCM=%+.3f, lead=%.2f, sublead=%.2f}",
		c.PtAve, c.EtaLab, c.EtaCM, c.DPhi, c.DEtaCM, c.Lead.Pt, c.Sublead.Pt,
	)
}

// DeltaPhi returns phi1-phi2, wrapped to (-pi, pi].
func DeltaPhi(phi1, phi2 float64) float64 {
	dphi := phi1 - phi2
	if math.IsNaN(dphi) || math.IsInf(dphi, 0) {
		return dphi
	}
	for dphi > math.Pi {
		dphi -= 2 * math.Pi
	}
	for dphi <= -math.Pi {
		dphi += 2 * math.Pi
	}
	return dphi
}

// X holds the Bjorken-x estimates of the partons of a dijet.
type X struct {
	Pb    float64 // x of the parton from the heavy ion
	P     float64 // x of the parton from the proton
	Ratio float64 // Pb/P
}

// Bjorken returns the Bjorken-x estimates of the dijet, for a collision
// with center-of-mass energy sqrts (in GeV).
func Bjorken(c Candidate, sqrts float64) X {
	if sqrts <= 0 {
		return X{Pb: math.NaN(), P: math.NaN(), Ratio: math.NaN()}
	}
	var (
		norm = 2 * c.PtAve / sqrts * math.Cosh(c.DEtaCM)
		xpb  = norm * math.Exp(-c.DEtaCM)
		xp   = norm * math.Exp(+c.DEtaCM)
	)
	return X{Pb: xpb, P: xp, Ratio: xpb / xp}
}
