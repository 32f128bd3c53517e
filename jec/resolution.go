// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jec

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Variations of the jet energy resolution scale factors.
// Any other value disables the resolution smearing.
const (
	JERDown    = -1
	JERNominal = 0
	JERUp      = +1
	JEROff     = 2
)

// jerEdges are the pseudorapidity bin edges of the resolution scale factors.
var jerEdges = []float64{
	-5.191, -3.139, -2.964, -2.853, -2.500, -2.322, -2.043, -1.930, -1.740,
	-1.305, -1.131, -0.783, -0.522, 0.000, 0.522, 0.783, 1.131, 1.305,
	1.740, 1.930, 2.043, 2.322, 2.500, 2.853, 2.964, 3.139, 5.191,
}

// jerSF holds the nominal, down and up scale factors for each bin.
var jerSF = [][3]float64{
	{1.1922, 1.0434, 1.3410},
	{1.1869, 1.0626, 1.3112},
	{1.7788, 1.5780, 1.9796},
	{1.3418, 1.1327, 1.5509},
	{1.2963, 1.0592, 1.5334},
	{1.1512, 1.0372, 1.2652},
	{1.1426, 1.0212, 1.2640},
	{1.1000, 0.9921, 1.2079},
	{1.1278, 1.0292, 1.2264},
	{1.1609, 1.0584, 1.2634},
	{1.1464, 1.0832, 1.2096},
	{1.1948, 1.1296, 1.2600},
	{1.15958, 1.0950, 1.2240},
	{1.15958, 1.0950, 1.2240},
	{1.1948, 1.1296, 1.2600},
	{1.1464, 1.0832, 1.2096},
	{1.1609, 1.0584, 1.2634},
	{1.1278, 1.0292, 1.2264},
	{1.1000, 0.9921, 1.2079},
	{1.1426, 1.0212, 1.2640},
	{1.1512, 1.0372, 1.2652},
	{1.2963, 1.0592, 1.5334},
	{1.3418, 1.1327, 1.5509},
	{1.7788, 1.5780, 1.9796},
	{1.1869, 1.0626, 1.3112},
	{1.1922, 1.0434, 1.3410},
}

// ScaleFactor returns the data/simulation resolution scale factor for a
// jet at pseudorapidity eta, for the requested variation.
// It returns 1 outside the tabulated range or for an unknown variation.
func ScaleFactor(eta float64, syst int) float64 {
	i := floats.Within(jerEdges, eta)
	if i < 0 {
		return 1
	}
	switch syst {
	case JERNominal:
		return jerSF[i][0]
	case JERDown:
		return jerSF[i][1]
	case JERUp:
		return jerSF[i][2]
	}
	return 1
}

// Resolution parametrizes the relative jet energy resolution in
// simulation as sqrt(alpha^2 + beta^2/pt).
type Resolution struct {
	Alpha float64
	Beta  float64
	PtMin float64 // lower edge of the validity domain
	PtMax float64 // upper edge of the validity domain
}

// DefaultResolution returns the resolution parametrization
// valid for |eta| < 1.6.
func DefaultResolution() Resolution {
	return Resolution{
		Alpha: 0.0018,
		Beta:  0.9352,
		PtMin: 30,
		PtMax: 800,
	}
}

// Width returns the relative resolution at pt.
// Momenta outside the validity domain are moved just inside of it.
func (res Resolution) Width(pt float64) float64 {
	switch {
	case pt <= res.PtMin:
		pt = res.PtMin + 1
	case pt >= res.PtMax:
		pt = res.PtMax - 1
	}
	return math.Sqrt(res.Alpha*res.Alpha + res.Beta*res.Beta/pt)
}

// Sigma returns the width of the smearing distribution for a jet at eta
// whose matched generator jet has transverse momentum genPt.
func (res Resolution) Sigma(genPt, eta float64, syst int) float64 {
	sf := ScaleFactor(eta, syst)
	return math.Sqrt(math.Max(sf*sf-1, 0)) * res.Width(genPt)
}
