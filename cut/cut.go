// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cut holds the event and jet selections applied before dijets
// are built.
package cut // import "github.com/go-lpc/jetana/cut"

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-lpc/jetana/jet"
)

// Range is a closed-open [Lo, Hi) interval.
type Range struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`
}

// All is the range accepting every finite value.
var All = Range{Lo: math.Inf(-1), Hi: math.Inf(+1)}

func (r Range) contains(v float64) bool {
	return r.Lo <= v && v < r.Hi
}

func (r Range) closed(v float64) bool {
	return r.Lo <= v && v <= r.Hi
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g)", r.Lo, r.Hi)
}

// Event selects collision events.
type Event struct {
	Vz          Range `yaml:"vz"`
	HiBin       Range `yaml:"hibin"`
	Centrality  Range `yaml:"centrality"`
	PtHat       Range `yaml:"pthat"`
	PtHatWeight Range `yaml:"pthat-weight"`

	Filters  []string `yaml:"filters,omitempty"`  // filters the event must have passed
	Triggers []string `yaml:"triggers,omitempty"` // triggers the event must have fired
	Runs     []int32  `yaml:"runs,omitempty"`     // accepted runs (all if empty)
}

// NewEvent returns an event selection accepting all events.
func NewEvent() *Event {
	return &Event{
		Vz:          All,
		HiBin:       All,
		Centrality:  All,
		PtHat:       All,
		PtHatWeight: All,
	}
}

// Pass returns whether the event passes the selection.
// A nil selection accepts all events.
func (cut *Event) Pass(evt *jet.Event) bool {
	if cut == nil {
		return true
	}
	return cut.Reason(evt) == ""
}

// Reason returns the name of the first failed criterion, or an empty string
// if the event passes the selection.
func (cut *Event) Reason(evt *jet.Event) string {
	switch {
	case !cut.Vz.contains(evt.Vz):
		return "vz"
	case !cut.HiBin.contains(float64(evt.HiBin)):
		return "hibin"
	case !cut.Centrality.contains(evt.Centrality):
		return "centrality"
	case !cut.PtHat.contains(evt.PtHat):
		return "pthat"
	case !cut.PtHatWeight.contains(evt.PtHatWeight):
		return "pthat-weight"
	}

	for _, name := range cut.Filters {
		if !evt.Filters[name] {
			return "filter:" + name
		}
	}

	for _, name := range cut.Triggers {
		if !evt.Triggers[name] {
			return "trigger:" + name
		}
	}

	if len(cut.Runs) > 0 && !hasRun(cut.Runs, evt.Run) {
		return "run"
	}

	return ""
}

func hasRun(runs []int32, run int32) bool {
	for _, v := range runs {
		if v == run {
			return true
		}
	}
	return false
}

func (cut *Event) String() string {
	o := new(strings.Builder)
	fmt.Fprintf(o, "event-cut{vz=%v, hibin=%v, cent=%v, pthat=%v, pthat-weight=%v",
		cut.Vz, cut.HiBin, cut.Centrality, cut.PtHat, cut.PtHatWeight,
	)
	if len(cut.Filters) > 0 {
		fmt.Fprintf(o, ", filters=%v", sorted(cut.Filters))
	}
	if len(cut.Triggers) > 0 {
		fmt.Fprintf(o, ", triggers=%v", sorted(cut.Triggers))
	}
	if len(cut.Runs) > 0 {
		fmt.Fprintf(o, ", runs=%v", cut.Runs)
	}
	o.WriteString("}")
	return o.String()
}

func sorted(vs []string) []string {
	o := append([]string(nil), vs...)
	sort.Strings(o)
	return o
}

// Jet selects the jets that may be part of a dijet.
// Pt and pseudorapidity windows are inclusive.
type Jet struct {
	Pt  Range `yaml:"pt"`  // corrected pt for reco jets, pt for gen jets
	Eta Range `yaml:"eta"` // detector-frame pseudorapidity

	MustMatch bool  `yaml:"must-match"` // reco jets need a gen match
	RefPt     Range `yaml:"ref-pt"`     // reference pt window for matched reco jets

	Flavor   [2]int      `yaml:"flavor,flow"` // flavor-for-B window for matched reco jets
	ID       jet.IDLevel `yaml:"id"`
	TrackMax bool        `yaml:"track-max"` // apply the track-max quality cut
}

// NewJet returns the default jet selection.
func NewJet() *Jet {
	return &Jet{
		Pt:     Range{Lo: 20, Hi: 1500},
		Eta:    Range{Lo: -5.1, Hi: 5.1},
		RefPt:  All,
		Flavor: [2]int{-100000, 100000},
	}
}

// Pass returns whether the jet passes the selection.
// A nil selection accepts all jets.
func (cut *Jet) Pass(j jet.Jet) bool {
	if cut == nil {
		return true
	}

	if j.Kind == jet.Gen {
		return cut.Pt.closed(j.Pt) && cut.Eta.closed(j.Eta)
	}

	if !cut.Pt.closed(j.PtCorr) || !cut.Eta.closed(j.Eta) {
		return false
	}

	if cut.MustMatch && !j.HasMatch() {
		return false
	}

	if j.HasMatch() {
		if !cut.RefPt.closed(j.RefPt) {
			return false
		}
		flav := jet.FlavorForB(j.Flavor)
		if flav < cut.Flavor[0] || cut.Flavor[1] < flav {
			return false
		}
	}

	if !jet.IsGoodID(j, cut.ID) {
		return false
	}

	if cut.TrackMax && !jet.IsGoodTrackMax(j) {
		return false
	}

	return true
}
