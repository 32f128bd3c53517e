// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jet

import (
	"fmt"
	"math"
	"strings"
)

// IDLevel selects the working point of the particle-flow jet identification.
type IDLevel uint8

const (
	NoID IDLevel = iota
	LooseID
	TightID
)

func (lvl IDLevel) String() string {
	switch lvl {
	case NoID:
		return "none"
	case LooseID:
		return "loose"
	case TightID:
		return "tight"
	}
	return fmt.Sprintf("IDLevel(%d)", uint8(lvl))
}

// ParseIDLevel returns the jet identification working point named name.
func ParseIDLevel(name string) (IDLevel, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return NoID, nil
	case "loose":
		return LooseID, nil
	case "tight":
		return TightID, nil
	}
	return NoID, fmt.Errorf("jet: unknown jet-id level %q", name)
}

func (lvl IDLevel) MarshalYAML() (interface{}, error) {
	return lvl.String(), nil
}

func (lvl *IDLevel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	err := unmarshal(&name)
	if err != nil {
		return err
	}
	v, err := ParseIDLevel(name)
	if err != nil {
		return err
	}
	*lvl = v
	return nil
}

// IsGoodID applies the particle-flow jet identification criteria
// for the requested working point.
func IsGoodID(j Jet, lvl IDLevel) bool {
	if lvl == NoID {
		return true
	}

	var (
		pf     = j.PF
		eta    = math.Abs(j.Eta)
		nch    = pf.CHM + pf.CEM + pf.MUM
		nneu   = pf.NHM + pf.NEM
		ncons  = nch + nneu
		fraCut = 0.9
	)
	if lvl == LooseID {
		fraCut = 0.99
	}

	switch {
	case eta <= 2.7:
		if pf.NHF >= fraCut || pf.NEF >= fraCut || ncons <= 1 {
			return false
		}
		if lvl == TightID && pf.MUF >= 0.8 {
			return false
		}
		if eta <= 2.4 {
			if pf.CHF <= 0 || nch <= 0 || pf.CEF >= fraCut {
				return false
			}
		}
		return true

	case eta <= 3.0:
		return pf.NEF > 0.01 && pf.NHF < 0.98 && nneu > 2

	default:
		return pf.NEF < 0.9 && nneu > 10
	}
}

// IsGoodTrackMax rejects central jets whose hardest track carries
// too small or too large a fraction of the raw jet pt.
func IsGoodTrackMax(j Jet) bool {
	if math.Abs(j.Eta) >= 2.4 {
		return true
	}
	if j.Pt <= 0 {
		return false
	}
	frac := j.TrackMax / j.Pt
	return 0.01 <= frac && frac <= 0.98
}
