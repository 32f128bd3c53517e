// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package toymc generates toy dijet events, for tests and demos.
package toymc // import "github.com/go-lpc/jetana/internal/toymc"

import (
	"math"

	"github.com/go-lpc/jetana/jet"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Generator generates toy events for a collision system.
//
// The hard scale is drawn from a falling power-law spectrum. Each event
// holds a back-to-back dijet plus a few soft jets. In simulated samples,
// reconstructed jets are smeared copies of the generator jets.
type Generator struct {
	Coll jet.Collision

	PtHatMin float64 // lower edge of the ptHat spectrum
	PtHatMax float64 // upper edge of the ptHat spectrum
	Power    float64 // ptHat spectrum slope, dN/dpt ~ pt^-Power
	EtaMax   float64 // maximum |eta| of the dijet
	NSoft    int     // maximum number of soft jets per event
	Response float64 // relative resolution of reconstructed jets

	src  rand.Source
	flat distuv.Uniform
	norm distuv.Normal
	evts int32
}

// New returns a generator seeded with seed.
func New(coll jet.Collision, seed uint64) *Generator {
	src := rand.NewSource(seed)
	return &Generator{
		Coll:     coll,
		PtHatMin: 15,
		PtHatMax: 1000,
		Power:    4.5,
		EtaMax:   3,
		NSoft:    3,
		Response: 0.1,
		src:      src,
		flat:     distuv.Uniform{Min: 0, Max: 1, Src: src},
		norm:     distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

// Event generates the next event of run.
func (g *Generator) Event(run int32) jet.Event {
	evt := jet.Event{
		Run:         run,
		ID:          g.evts,
		Vz:          5 * g.norm.Rand(),
		PtHatWeight: 1,
	}
	g.evts++

	if g.Coll.System == jet.HeavyHeavy {
		evt.HiBin = int(200 * g.flat.Rand())
		evt.Centrality = 0.5 * float64(evt.HiBin)
	}

	ptHat := g.ptHat()
	gen := g.dijet(ptHat)
	for i, n := 0, int(float64(g.NSoft+1)*g.flat.Rand()); i < n; i++ {
		gen = append(gen, g.soft())
	}

	reco := make([]jet.Jet, len(gen))
	for i, gj := range gen {
		reco[i] = g.reco(gj)
	}

	evt.Reco = reco
	if g.Coll.IsMC {
		evt.PtHat = ptHat
		evt.Gen = gen
		return evt
	}

	for i := range evt.Reco {
		evt.Reco[i].RefPt = -1
		evt.Reco[i].Flavor = 0
	}
	return evt
}

// ptHat draws from pt^-Power within [PtHatMin, PtHatMax].
func (g *Generator) ptHat() float64 {
	var (
		n  = g.Power - 1
		lo = math.Pow(g.PtHatMin, -n)
		hi = math.Pow(g.PtHatMax, -n)
		u  = g.flat.Rand()
	)
	return math.Pow(lo+u*(hi-lo), -1/n)
}

func (g *Generator) dijet(ptHat float64) []jet.Jet {
	var (
		phi  = math.Pi * (2*g.flat.Rand() - 1)
		eta1 = g.EtaMax * (2*g.flat.Rand() - 1)
		eta2 = g.EtaMax * (2*g.flat.Rand() - 1)
		pt1  = ptHat * (1 + 0.05*g.norm.Rand())
		pt2  = ptHat * (1 - math.Abs(0.15*g.norm.Rand()))
		phi2 = wrap(phi + math.Pi + 0.2*g.norm.Rand())
	)

	return []jet.Jet{
		g.gen(pt1, eta1, phi, 21),
		g.gen(pt2, eta2, phi2, 1),
	}
}

func (g *Generator) soft() jet.Jet {
	return g.gen(
		10+20*g.flat.Rand(),
		5*(2*g.flat.Rand()-1),
		math.Pi*(2*g.flat.Rand()-1),
		0,
	)
}

func (g *Generator) gen(pt, eta, phi float64, flavor int) jet.Jet {
	return jet.Jet{
		Kind:   jet.Gen,
		Pt:     math.Max(pt, 1),
		Eta:    eta,
		Phi:    phi,
		RefPt:  -1,
		GenIdx: jet.NoMatch,
		Flavor: flavor,
	}
}

func (g *Generator) reco(gj jet.Jet) jet.Jet {
	pt := gj.Pt * math.Max(1+g.Response*g.norm.Rand(), 0.1)
	return jet.Jet{
		Kind:     jet.Reco,
		Pt:       pt,
		PtCorr:   jet.Uncorrected,
		Eta:      gj.Eta + 0.01*g.norm.Rand(),
		Phi:      wrap(gj.Phi + 0.01*g.norm.Rand()),
		RefPt:    gj.Pt,
		GenIdx:   jet.NoMatch,
		Flavor:   gj.Flavor,
		TrackMax: 0.2 * pt,
		PF: jet.PF{
			CHF: 0.6, NHF: 0.1, CEF: 0.05, NEF: 0.2, MUF: 0.05,
			CHM: 12, NHM: 4, CEM: 2, NEM: 12,
		},
	}
}

func wrap(phi float64) float64 {
	switch {
	case phi > math.Pi:
		return phi - 2*math.Pi
	case phi <= -math.Pi:
		return phi + 2*math.Pi
	}
	return phi
}
