// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jet

// Event is a collision event as delivered by the upstream reader.
type Event struct {
	Run int32
	ID  int32

	Reco []Jet
	Gen  []Jet

	PtHat       float64
	Vz          float64
	Centrality  float64
	CentWeight  float64
	PtHatWeight float64
	HiBin       int

	Filters  map[string]bool // noise and vertex filter decisions
	Triggers map[string]bool // HLT decisions
}
