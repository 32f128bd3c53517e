// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package frame converts detector-frame pseudorapidities into the
// laboratory and center-of-mass frames of a collision system.
//
// For proton-lead collisions, the embedded simulation places the lead
// nucleus at negative pseudorapidity while the data convention places it
// at positive pseudorapidity: the sign applied to eta depends on both the
// beam direction and on whether the sample is simulated.
package frame // import "github.com/go-lpc/jetana/frame"

import (
	"github.com/go-lpc/jetana/jet"
)

// Transform converts pseudorapidities for a given collision.
type Transform struct {
	Coll jet.Collision
}

// New returns a transform for the provided collision.
func New(coll jet.Collision) Transform {
	return Transform{Coll: coll}
}

// Lab returns the pseudorapidity in the laboratory frame.
func (tr Transform) Lab(eta float64) float64 {
	return Lab(eta, tr.Coll)
}

// CM returns the pseudorapidity in the center-of-mass frame.
func (tr Transform) CM(eta float64) float64 {
	return CM(eta, tr.Coll)
}

// Lab returns the pseudorapidity eta (in the detector frame) expressed in
// the laboratory frame of the collision.
func Lab(eta float64, coll jet.Collision) float64 {
	switch coll.System {
	case jet.PP, jet.HeavyHeavy:
		return eta + coll.EtaShift
	case jet.LightHeavy:
		if flip(coll) {
			return -eta
		}
		return eta
	default:
		return eta
	}
}

// CM returns the pseudorapidity eta (in the detector frame) expressed in
// the center-of-mass frame of the collision.
func CM(eta float64, coll jet.Collision) float64 {
	switch coll.System {
	case jet.PP, jet.HeavyHeavy:
		return eta
	case jet.LightHeavy:
		if flip(coll) {
			return -(eta - coll.EtaShift)
		}
		return eta + coll.EtaShift
	default:
		return eta
	}
}

// flip reports whether the pseudorapidity axis of a proton-lead
// collision has to be reversed.
func flip(coll jet.Collision) bool {
	return coll.IsMC == coll.PbGoing
}
