// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dijet

import (
	"sort"

	"github.com/go-lpc/jetana/frame"
	"github.com/go-lpc/jetana/jet"
)

// LeadSublead returns the indices of the two jets with the highest
// sorting pt among the ones accepted by accept (nil accepts all jets).
// Jets without a valid sorting pt (uncalibrated or outside the calibration
// tables) are never selected.
func LeadSublead(jets []jet.Jet, accept func(jet.Jet) bool) (lead, sublead int, ok bool) {
	idx := make([]int, 0, len(jets))
	for i, j := range jets {
		if !(j.SortPt() >= 0) {
			continue
		}
		if accept != nil && !accept(j) {
			continue
		}
		idx = append(idx, i)
	}
	if len(idx) < 2 {
		return -1, -1, false
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return jets[idx[i]].SortPt() > jets[idx[j]].SortPt()
	})
	return idx[0], idx[1], true
}

// Selection holds the dijets of an event and their per-(source, frame)
// selection state.
type Selection struct {
	states [NumSources][NumFrames]State
	dijets [NumSources]Candidate
	errs   [NumSources]error
}

// State returns the selection state of the dijet for src in frame fr.
func (sel *Selection) State(src Source, fr Frame) State {
	return sel.states[src][fr]
}

// Passed returns whether the dijet for src passed the selection in fr.
func (sel *Selection) Passed(src Source, fr Frame) bool {
	return sel.states[src][fr] == Passed
}

// Dijet returns the dijet built for src, if any.
func (sel *Selection) Dijet(src Source) (Candidate, bool) {
	switch sel.states[src][Lab] {
	case NotAttempted, Invalid:
		return Candidate{}, false
	}
	return sel.dijets[src], true
}

// Err returns the consistency error of the dijet for src, if any.
func (sel *Selection) Err(src Source) error {
	return sel.errs[src]
}

// Selector builds and selects the dijets of an event.
type Selector struct {
	Transform frame.Transform
	Cut       *Cut // nil cut accepts all dijets

	// Accept selects the jets that may be part of a dijet.
	// A nil Accept accepts all jets.
	Accept func(jet.Jet) bool
}

// Select builds the reco, gen and ref dijets of the event and applies the
// selection in both frames.
//
// Reconstructed jets are ordered by corrected pt, generator jets by pt.
// The ref dijet is made of the generator jets matched to the two jets of
// the reco dijet, and is only built when both of them have a match.
// It keeps the order of the reco jets: its lead may have a lower pt than
// its sublead, and both reco jets matched to the same generator jet give a
// ref dijet made of that jet twice. Matching being first-match, the latter
// can occur for close-by reco jets.
func (s *Selector) Select(evt *jet.Event) Selection {
	var sel Selection

	if l, sl, ok := LeadSublead(evt.Reco, s.Accept); ok {
		lead, sublead := evt.Reco[l], evt.Reco[sl]
		s.build(&sel, Reco,
			View(lead, lead.PtCorr, s.Transform),
			View(sublead, sublead.PtCorr, s.Transform),
		)
		if lead.HasMatch() && sublead.HasMatch() &&
			lead.GenIdx < len(evt.Gen) && sublead.GenIdx < len(evt.Gen) {
			glead, gsublead := evt.Gen[lead.GenIdx], evt.Gen[sublead.GenIdx]
			s.build(&sel, Ref,
				View(glead, glead.Pt, s.Transform),
				View(gsublead, gsublead.Pt, s.Transform),
			)
		}
	}

	if l, sl, ok := LeadSublead(evt.Gen, s.Accept); ok {
		lead, sublead := evt.Gen[l], evt.Gen[sl]
		s.build(&sel, Gen,
			View(lead, lead.Pt, s.Transform),
			View(sublead, sublead.Pt, s.Transform),
		)
	}

	s.apply(&sel)
	return sel
}

func (s *Selector) build(sel *Selection, src Source, lead, sublead Jet) {
	c := New(lead, sublead)
	if err := c.Verify(); err != nil {
		sel.errs[src] = err
		for _, fr := range Frames {
			sel.states[src][fr] = Invalid
		}
		return
	}

	sel.dijets[src] = c
	for _, fr := range Frames {
		sel.states[src][fr] = Built
	}
}

func (s *Selector) apply(sel *Selection) {
	for _, src := range Sources {
		for _, fr := range Frames {
			if sel.states[src][fr] != Built {
				continue
			}
			if s.Cut.Pass(sel.dijets[src], fr) {
				sel.states[src][fr] = Passed
			} else {
				sel.states[src][fr] = Rejected
			}
		}
	}
}
