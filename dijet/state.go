// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dijet

import "fmt"

// Source is the jet collection a dijet is built from.
type Source uint8

const (
	Reco Source = iota // reconstructed jets
	Gen                // generator jets
	Ref                // generator jets matched to the reconstructed dijet

	NumSources = 3
)

func (src Source) String() string {
	switch src {
	case Reco:
		return "reco"
	case Gen:
		return "gen"
	case Ref:
		return "ref"
	}
	return fmt.Sprintf("Source(%d)", uint8(src))
}

// Sources lists all dijet sources.
var Sources = [NumSources]Source{Reco, Gen, Ref}

// Frame is the reference frame pseudorapidities are expressed in.
type Frame uint8

const (
	Lab Frame = iota
	CM

	NumFrames = 2
)

func (fr Frame) String() string {
	switch fr {
	case Lab:
		return "lab"
	case CM:
		return "cm"
	}
	return fmt.Sprintf("Frame(%d)", uint8(fr))
}

// Frames lists all frames.
var Frames = [NumFrames]Frame{Lab, CM}

// State is the selection state of a dijet, for one source and one frame.
type State uint8

const (
	NotAttempted State = iota // no dijet could be formed
	Built                     // dijet formed, selection not yet applied
	Passed                    // dijet passed the selection
	Rejected                  // dijet failed the selection
	Invalid                   // dijet failed its consistency check
)

func (st State) String() string {
	switch st {
	case NotAttempted:
		return "not-attempted"
	case Built:
		return "built"
	case Passed:
		return "passed"
	case Rejected:
		return "rejected"
	case Invalid:
		return "invalid"
	}
	return fmt.Sprintf("State(%d)", uint8(st))
}
