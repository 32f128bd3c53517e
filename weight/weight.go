// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package weight computes the statistical weight of simulated events.
package weight // import "github.com/go-lpc/jetana/weight"

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-lpc/jetana/jet"
)

// ErrNonPositive is returned by Check for weights that are zero or negative.
var ErrNonPositive = errors.New("weight: non-positive event weight")

// Calculator computes event weights for a collision system.
//
// A Calculator must not be modified once Weight has been called.
// It is safe for concurrent use.
type Calculator struct {
	Coll          jet.Collision
	Xsec          []Band // generator cross-section bands (proton-lead only)
	UseCentWeight bool   // multiply lead-lead weights by the centrality weight

	once sync.Once
	vz   Curve
}

// New returns a calculator for the provided collision, using the default
// proton-lead cross-section table.
func New(coll jet.Collision) *Calculator {
	return &Calculator{
		Coll: coll,
		Xsec: DefaultBands(),
	}
}

// Vz returns the vertex-position reweighting curve of the collision system.
func (c *Calculator) Vz() Curve {
	c.once.Do(func() {
		c.vz = VzCurve(c.Coll.System)
	})
	return c.vz
}

// Weight returns the weight of an event.
//
// For proton-lead simulation with the lead beam going towards positive z,
// the vertex position is mirrored before evaluating the vertex curve.
func (c *Calculator) Weight(ptHat, vz, centW, ptHatW float64) float64 {
	if !c.Coll.IsMC {
		return 1
	}

	switch c.Coll.System {
	case jet.PP:
		return ptHatW * c.Vz().Eval(vz)

	case jet.LightHeavy:
		if c.Coll.PbGoing {
			vz = -vz
		}
		return c.GenWeight(ptHat) / c.Vz().Eval(vz)

	case jet.HeavyHeavy:
		w := ptHatW
		if c.UseCentWeight {
			w *= centW
		}
		return w

	default:
		return 1
	}
}

// GenWeight returns the generator cross-section weight of an event:
// the cross section times the number of generated events of the ptHat
// band the event belongs to, divided by the number of events in the sample.
func (c *Calculator) GenWeight(ptHat float64) float64 {
	w := 1.0
	for _, b := range c.Xsec {
		if b.Contains(ptHat) {
			w = b.Xsec * float64(b.NGen)
			break
		}
	}
	if c.Coll.NEvents > 0 {
		w /= float64(c.Coll.NEvents)
	}
	return w
}

// Check returns an error if the weight w can not be used to fill
// distributions.
func Check(w float64) error {
	if !(w > 0) {
		return fmt.Errorf("%w (w=%v)", ErrNonPositive, w)
	}
	return nil
}
