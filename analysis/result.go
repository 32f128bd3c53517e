// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analysis

import (
	"fmt"
	"strings"

	"github.com/go-lpc/jetana/dijet"
)

// Skip is the reason an event was not analyzed.
type Skip uint8

const (
	None              Skip = iota // event analyzed
	EventCut                      // event failed the event selection
	PtHatRange                    // ptHat outside the simulated range
	NonPositiveWeight             // event weight is zero or negative
	Overweight                    // overweighted simulated event
	CentralityBin                 // centrality outside the reweighting range

	numSkips
)

func (s Skip) String() string {
	switch s {
	case None:
		return "none"
	case EventCut:
		return "event-cut"
	case PtHatRange:
		return "pthat-range"
	case NonPositiveWeight:
		return "non-positive-weight"
	case Overweight:
		return "overweight"
	case CentralityBin:
		return "centrality-bin"
	}
	return fmt.Sprintf("Skip(%d)", uint8(s))
}

// Result is the outcome of the analysis of one event.
type Result struct {
	Skip   Skip
	Reason string // details about the skip reason

	Weight    float64
	Selection dijet.Selection

	X    dijet.X // Bjorken-x of the gen dijet
	HasX bool

	Filled int // number of (source, frame) dijets handed to the sink
}

// State returns the selection state of the dijet for src in fr.
func (res *Result) State(src dijet.Source, fr dijet.Frame) dijet.State {
	return res.Selection.State(src, fr)
}

// Stats holds counters accumulated over processed events.
type Stats struct {
	Events  int64
	Skipped [numSkips]int64
	Dijets  [dijet.NumSources][dijet.NumFrames]int64
	Invalid int64
}

// Add accumulates the counters of o.
func (st *Stats) Add(o Stats) {
	st.Events += o.Events
	for i := range st.Skipped {
		st.Skipped[i] += o.Skipped[i]
	}
	for i := range st.Dijets {
		for j := range st.Dijets[i] {
			st.Dijets[i][j] += o.Dijets[i][j]
		}
	}
	st.Invalid += o.Invalid
}

// Analyzed returns the number of events that were not skipped.
func (st Stats) Analyzed() int64 {
	n := st.Events
	for i, v := range st.Skipped {
		if Skip(i) == None {
			continue
		}
		n -= v
	}
	return n
}

func (st Stats) String() string {
	o := new(strings.Builder)
	fmt.Fprintf(o, "events:   %d\n", st.Events)
	fmt.Fprintf(o, "analyzed: %d\n", st.Analyzed())
	for i, v := range st.Skipped {
		if Skip(i) == None {
			continue
		}
		fmt.Fprintf(o, "skipped (%s): %d\n", Skip(i), v)
	}
	for _, src := range dijet.Sources {
		for _, fr := range dijet.Frames {
			fmt.Fprintf(o, "dijets (%s, %s): %d\n", src, fr, st.Dijets[src][fr])
		}
	}
	fmt.Fprintf(o, "invalid dijets: %d\n", st.Invalid)
	return o.String()
}
