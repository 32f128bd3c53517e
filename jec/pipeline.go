// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jec

import (
	"math"

	"github.com/go-lpc/jetana/jet"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Stage is a step of the correction pipeline.
type Stage uint8

const (
	StageBase  Stage = 1 << iota // base calibration
	StageExtra                   // extra scale correction
	StageSmear                   // resolution smearing
	StageShift                   // uncertainty shift
)

// Input describes the reconstructed jet to correct.
type Input struct {
	RawPt float64
	Eta   float64
	Phi   float64

	HasGen bool    // whether the jet is matched to a generator jet
	GenPt  float64 // pt of the matched generator jet
}

// Trace records the stages run by the pipeline and their
// multiplicative factors.
type Trace struct {
	Stages Stage
	Base   float64
	Extra  float64
	Smear  float64
	Shift  float64
}

// Has returns whether the stage s ran.
func (tr Trace) Has(s Stage) bool { return tr.Stages&s != 0 }

// extraScale are the parameters of the additional scale correction
// for jets clustered with the constituent-subtracted anti-kt R=0.4 algorithm.
var extraScale = [4]float64{2.27008, 0.918625, 1.43067, 1.00002}

// ExtraScale returns the additional scale correction at pt.
func ExtraScale(pt float64) float64 {
	p := extraScale
	return p[3] + (p[0]-p[3])/(1+math.Pow(pt/p[2], p[1]))
}

// Pipeline produces the corrected transverse momentum of reconstructed jets.
//
// A Pipeline is read-only once configured and may be shared by
// concurrent workers, each providing its own random source.
type Pipeline struct {
	JEC        Chain // base calibration levels. No levels: jets stay uncorrected.
	ExtraScale bool  // apply the additional scale correction

	IsMC    bool
	JERSyst int // resolution variation, JEROff disables smearing
	Res     Resolution

	JEU     *Uncertainty
	JEUSyst int // +1, -1 or 0 (disabled)
}

// Correct returns the corrected transverse momentum of the jet in.
//
// Without base calibration, jet.Uncorrected is returned.
// A negative value is returned when the calibration tables do not
// cover the jet.
func (p *Pipeline) Correct(in Input, src rand.Source) (float64, Trace) {
	var tr Trace
	if len(p.JEC) == 0 {
		return jet.Uncorrected, tr
	}

	pt := p.JEC.CorrectedPt(Values{Pt: in.RawPt, Eta: in.Eta, Phi: in.Phi})
	tr.Stages |= StageBase
	if pt < 0 {
		return pt, tr
	}
	tr.Base = pt / in.RawPt

	if p.ExtraScale {
		tr.Stages |= StageExtra
		tr.Extra = ExtraScale(pt)
		pt *= tr.Extra
	}

	if p.smear(in) {
		sigma := p.Res.Sigma(in.GenPt, in.Eta, p.JERSyst)
		tr.Stages |= StageSmear
		tr.Smear = distuv.Normal{Mu: 1, Sigma: sigma, Src: src}.Rand()
		pt *= tr.Smear
	}

	if p.shift() {
		down, up, err := p.JEU.Uncertainty(Values{Pt: pt, Eta: in.Eta, Phi: in.Phi})
		if err == nil {
			tr.Stages |= StageShift
			switch {
			case p.JEUSyst > 0:
				tr.Shift = 1 + up
			default:
				tr.Shift = 1 - down
			}
			pt *= tr.Shift
		}
	}

	return pt, tr
}

func (p *Pipeline) smear(in Input) bool {
	if !p.IsMC || !in.HasGen {
		return false
	}
	switch p.JERSyst {
	case JERDown, JERNominal, JERUp:
		return true
	}
	return false
}

func (p *Pipeline) shift() bool {
	return !p.IsMC && p.JEUSyst != 0 && p.JEU != nil
}
