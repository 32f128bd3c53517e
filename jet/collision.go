// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jet

import (
	"fmt"
	"strings"
)

// System is a collision system.
type System uint8

const (
	Unknown    System = iota
	PP                // proton-proton
	LightHeavy        // proton-lead
	HeavyHeavy        // lead-lead
)

func (sys System) String() string {
	switch sys {
	case PP:
		return "pp"
	case LightHeavy:
		return "pPb"
	case HeavyHeavy:
		return "PbPb"
	}
	return "unknown"
}

// ParseSystem parses a collision system name.
func ParseSystem(name string) (System, error) {
	switch strings.ToLower(name) {
	case "pp":
		return PP, nil
	case "ppb", "pbp":
		return LightHeavy, nil
	case "pbpb":
		return HeavyHeavy, nil
	}
	return Unknown, fmt.Errorf("jet: unknown collision system %q", name)
}

// MarshalYAML implements yaml.Marshaler.
func (sys System) MarshalYAML() (interface{}, error) {
	return sys.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (sys *System) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	err := unmarshal(&name)
	if err != nil {
		return err
	}
	v, err := ParseSystem(name)
	if err != nil {
		return err
	}
	*sys = v
	return nil
}

// DefaultEtaShift is the rapidity shift between the laboratory and the
// center-of-mass frames of the 8.16 TeV proton-lead collisions.
const DefaultEtaShift = 0.4654094531

// Collision describes the collision system being analyzed.
// It is set once and is read-only afterwards.
type Collision struct {
	System   System
	PbGoing  bool    // lead beam moving towards positive z
	IsMC     bool    // simulated sample
	EtaShift float64 // pseudorapidity shift between lab and CM frames
	Energy   float64 // center-of-mass energy, in GeV
	NEvents  int64   // number of events in the simulated sample
}
