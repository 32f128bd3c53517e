// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package analysis runs the per-event dijet analysis: event selection,
// event weight, jet energy corrections, jet matching, dijet building,
// overweight filtering and dijet selection.
package analysis // import "github.com/go-lpc/jetana/analysis"

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-lpc/jetana/dijet"
	"github.com/go-lpc/jetana/frame"
	"github.com/go-lpc/jetana/jec"
	"github.com/go-lpc/jetana/jet"
	"github.com/go-lpc/jetana/matcher"
	"github.com/go-lpc/jetana/weight"
	"golang.org/x/exp/rand"
)

// Record is the dijet information handed to a Sink, for one frame.
type Record struct {
	PtAve  float64
	Eta    float64 // dijet pseudorapidity in the record frame
	DPhi   float64
	DEtaCM float64

	LeadPt  float64
	LeadEta float64
	LeadPhi float64

	SubleadPt  float64
	SubleadEta float64
	SubleadPhi float64
}

// NewRecord returns the record of the dijet c in frame fr.
func NewRecord(c dijet.Candidate, fr dijet.Frame) Record {
	return Record{
		PtAve:      c.PtAve,
		Eta:        c.Eta(fr),
		DPhi:       c.DPhi,
		DEtaCM:     c.DEtaCM,
		LeadPt:     c.Lead.Pt,
		LeadEta:    c.Lead.Eta(fr),
		LeadPhi:    c.Lead.Phi,
		SubleadPt:  c.Sublead.Pt,
		SubleadEta: c.Sublead.Eta(fr),
		SubleadPhi: c.Sublead.Phi,
	}
}

// Sink aggregates selected dijets.
// Sinks used with more than one worker must be safe for concurrent use.
type Sink interface {
	Fill(src dijet.Source, fr dijet.Frame, rec Record, w float64)
}

// EventSink is implemented by sinks that also aggregate per-event
// quantities. FillEvent is called for every event with a valid weight.
type EventSink interface {
	FillEvent(evt *jet.Event, res *Result)
}

// Option configures an analyzer.
type Option func(*config)

type config struct {
	msg   *log.Logger
	xsec  []weight.Band
	rw    *weight.Reweighter
	match matcher.Policy
}

func newConfig() config {
	return config{
		msg:   log.New(os.Stdout, "analysis: ", 0),
		xsec:  weight.DefaultBands(),
		match: matcher.FirstMatch{},
	}
}

// WithLogger sets the logger used to report invalid dijets.
func WithLogger(msg *log.Logger) Option {
	return func(cfg *config) {
		if msg == nil {
			msg = log.New(io.Discard, "", 0)
		}
		cfg.msg = msg
	}
}

// WithXsec sets the generator cross-section bands of the simulated sample.
func WithXsec(bands []weight.Band) Option {
	return func(cfg *config) {
		cfg.xsec = bands
	}
}

// WithReweighter sets the dijet reweighting factors of simulated events.
func WithReweighter(rw *weight.Reweighter) Option {
	return func(cfg *config) {
		cfg.rw = rw
	}
}

// WithMatcher sets the reco/gen jet matching policy.
func WithMatcher(p matcher.Policy) Option {
	return func(cfg *config) {
		cfg.match = p
	}
}

// Analyzer holds the configuration of the dijet analysis.
// An Analyzer is read-only once created and is shared by all workers.
type Analyzer struct {
	Config Config

	msg   *log.Logger
	coll  jet.Collision
	calc  *weight.Calculator
	pipe  jec.Pipeline
	match matcher.Policy
	sel   dijet.Selector
	rw    *weight.Reweighter
	sink  Sink
}

// New returns a new analyzer filling sink.
func New(cfg Config, sink Sink, opts ...Option) (*Analyzer, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	acfg := newConfig()
	for _, opt := range opts {
		opt(&acfg)
	}

	err = weight.ValidateBands(acfg.xsec)
	if err != nil {
		return nil, fmt.Errorf("analysis: invalid cross-section table: %w", err)
	}

	coll := cfg.Collision()
	ana := &Analyzer{
		Config: cfg,
		msg:    acfg.msg,
		coll:   coll,
		calc:   weight.New(coll),
		match:  acfg.match,
		rw:     acfg.rw,
		sink:   sink,
		pipe: jec.Pipeline{
			ExtraScale: cfg.ExtraScale,
			IsMC:       cfg.IsMC,
			JERSyst:    cfg.JERSyst,
			Res:        jec.DefaultResolution(),
			JEUSyst:    cfg.JEUSyst,
		},
	}
	ana.calc.Xsec = acfg.xsec
	ana.calc.UseCentWeight = cfg.UseCentWeight

	if len(cfg.JEC) > 0 {
		ana.pipe.JEC, err = jec.OpenChain(cfg.JEC...)
		if err != nil {
			return nil, fmt.Errorf("analysis: could not load JEC tables: %w", err)
		}
	}

	if cfg.JEU != "" {
		ana.pipe.JEU, err = jec.OpenUncertainty(cfg.JEU)
		if err != nil {
			return nil, fmt.Errorf("analysis: could not load JEU table: %w", err)
		}
	}

	ana.sel = dijet.Selector{
		Transform: frame.New(coll),
		Cut:       cfg.Dijet,
		Accept:    cfg.Jet.Pass,
	}

	// build the vertex curve before workers share the calculator.
	_ = ana.calc.Vz()

	return ana, nil
}

// Collision returns the collision the analyzer was configured for.
func (ana *Analyzer) Collision() jet.Collision { return ana.coll }

// Worker processes events. Workers are not safe for concurrent use:
// each goroutine needs its own Worker.
type Worker struct {
	ana   *Analyzer
	src   rand.Source
	reco  []jet.Jet
	Stats Stats
}

// Worker returns a new worker, with a random source seeded from the
// configuration seed and the worker id.
func (ana *Analyzer) Worker(id int) *Worker {
	return &Worker{
		ana: ana,
		src: rand.NewSource(ana.Config.Seed + uint64(id)),
	}
}

// Process analyzes one event.
// The event is not modified.
func (w *Worker) Process(evt *jet.Event) Result {
	var (
		ana = w.ana
		cfg = &ana.Config
		res = Result{Weight: 1}
	)
	w.Stats.Events++

	if !cfg.Event.Pass(evt) {
		return w.skip(&res, EventCut, cfg.Event.Reason(evt))
	}

	if cfg.IsMC && cfg.System == jet.LightHeavy {
		if evt.PtHat <= cfg.PtHatRange[0] || evt.PtHat > cfg.PtHatRange[1] {
			return w.skip(&res, PtHatRange, fmt.Sprintf("ptHat=%v", evt.PtHat))
		}
	}

	centW := evt.CentWeight
	if cfg.IsMC && cfg.System == jet.HeavyHeavy && cfg.UseCentWeight {
		if evt.HiBin < 10 {
			return w.skip(&res, CentralityBin, fmt.Sprintf("hiBin=%d", evt.HiBin))
		}
		if !(centW > 0) {
			centW = weight.Centrality(evt.HiBin)
		}
	}

	res.Weight = ana.calc.Weight(evt.PtHat, evt.Vz, centW, evt.PtHatWeight)
	if err := weight.Check(res.Weight); err != nil {
		ana.msg.Printf("run %d, evt %d: %+v", evt.Run, evt.ID, err)
		return w.skip(&res, NonPositiveWeight, err.Error())
	}

	local := w.correct(evt)
	res.Selection = ana.sel.Select(&local)

	for _, src := range dijet.Sources {
		if err := res.Selection.Err(src); err != nil {
			w.Stats.Invalid++
			ana.msg.Printf("run %d, evt %d: invalid %v dijet: %+v", evt.Run, evt.ID, src, err)
		}
	}

	if cfg.IsMC && cfg.Overweight != nil {
		var reco, gen *dijet.Candidate
		if c, ok := res.Selection.Dijet(dijet.Reco); ok {
			reco = &c
		}
		if c, ok := res.Selection.Dijet(dijet.Gen); ok {
			gen = &c
		}
		if v := cfg.Overweight.Check(reco, gen, evt.PtHat); v.Rejected() {
			return w.skip(&res, Overweight, v.String())
		}
	}

	if c, ok := res.Selection.Dijet(dijet.Gen); ok {
		res.X = dijet.Bjorken(c, ana.coll.Energy)
		res.HasX = true
	}

	if sink, ok := ana.sink.(EventSink); ok {
		sink.FillEvent(evt, &res)
	}

	for _, src := range dijet.Sources {
		c, ok := res.Selection.Dijet(src)
		if !ok {
			continue
		}
		wgt := res.Weight
		if cfg.IsMC {
			wgt *= ana.rw.Factor(c.Lead.Pt, c.Sublead.Pt)
		}
		for _, fr := range dijet.Frames {
			if !res.Selection.Passed(src, fr) {
				continue
			}
			w.Stats.Dijets[src][fr]++
			res.Filled++
			if ana.sink != nil {
				ana.sink.Fill(src, fr, NewRecord(c, fr), wgt)
			}
		}
	}

	return res
}

func (w *Worker) skip(res *Result, why Skip, reason string) Result {
	res.Skip = why
	res.Reason = reason
	w.Stats.Skipped[why]++
	return *res
}

// correct returns a copy of the event with matched and corrected
// reconstructed jets.
func (w *Worker) correct(evt *jet.Event) jet.Event {
	var (
		ana   = w.ana
		local = *evt
		mapp  = ana.match.Match(evt.Reco, evt.Gen)
	)

	w.reco = append(w.reco[:0], evt.Reco...)
	for i := range w.reco {
		j := &w.reco[i]
		in := jec.Input{RawPt: j.Pt, Eta: j.Eta, Phi: j.Phi}
		gen, ok := mapp.Gen(i)
		j.GenIdx = gen
		if ok {
			in.HasGen = true
			in.GenPt = evt.Gen[gen].Pt
		}
		j.PtCorr, _ = ana.pipe.Correct(in, w.src)
	}
	local.Reco = w.reco

	return local
}
