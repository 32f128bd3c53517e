// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package weight

import (
	"github.com/go-lpc/jetana/jet"
)

// Curve is a function of a single variable.
type Curve interface {
	Eval(x float64) float64
}

// Poly is a polynomial, Coeffs[i] being the coefficient of x^i.
// Min and Max delimit the range the polynomial was fitted in.
type Poly struct {
	Coeffs []float64
	Min    float64
	Max    float64
}

func (p Poly) Eval(x float64) float64 {
	return horner(p.Coeffs, x)
}

func horner(cs []float64, x float64) float64 {
	v := 0.0
	for i := len(cs) - 1; i >= 0; i-- {
		v = v*x + cs[i]
	}
	return v
}

// Identity is the constant curve 1.
type Identity struct{}

func (Identity) Eval(float64) float64 { return 1 }

// VzCurve returns the vertex-position reweighting curve of a collision
// system. Unknown systems get the identity curve.
func VzCurve(sys jet.System) Curve {
	switch sys {
	case jet.PP:
		return Poly{
			Coeffs: []float64{
				0.973941, 0.00310622, 0.000711664, -1.83098e-06,
				6.9346e-07, 0, 0,
			},
			Min: -20, Max: 20,
		}
	case jet.LightHeavy:
		return Poly{
			Coeffs: []float64{
				0.856516, -0.0159813, 0.00436628, -0.00012862,
				2.61129e-05, -4.16965e-07, 1.73711e-08, -3.11953e-09,
				6.24993e-10,
			},
			Min: -15.1, Max: 15.1,
		}
	case jet.HeavyHeavy:
		return Poly{Coeffs: []float64{1}}
	default:
		return Identity{}
	}
}

// Centrality returns the centrality reweighting factor of simulated
// lead-lead events, as a function of the hiBin centrality estimator.
// Events with hiBin < 10 are outside the validity range and get 0.
func Centrality(hiBin int) float64 {
	if hiBin < 10 {
		return 0
	}
	return horner([]float64{
		4.363352, -8.957467e-02, 7.301890e-04, -2.885492e-06, 4.741175e-09,
	}, float64(hiBin-10))
}
