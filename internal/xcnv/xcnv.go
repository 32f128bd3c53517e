// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xcnv provides tools to convert jet events to/from LCIO.
//
// Each LCIO event holds three generic-object collections:
// RecoJets and GenJets (one element per jet) and EventInfo.
// Filter and trigger decisions are stored as event parameters.
package xcnv // import "github.com/go-lpc/jetana/internal/xcnv"

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/go-lpc/jetana/jet"
	"go-hep.org/x/hep/lcio"
)

const (
	Detector = "JETANA"

	RecoJets  = "RecoJets"
	GenJets   = "GenJets"
	EventInfo = "EventInfo"

	filtersKey  = "Filters"
	triggersKey = "Triggers"
)

// layout of the RecoJets generic objects.
const (
	recoPt = iota
	recoPtCorr
	recoEta
	recoPhi
	recoRefPt
	recoTrackMax
	recoCHF
	recoNHF
	recoCEF
	recoNEF
	recoMUF
	recoF64s
)

const (
	recoGenIdx = iota
	recoFlavor
	recoCHM
	recoNHM
	recoCEM
	recoNEM
	recoMUM
	recoI32s
)

// layout of the EventInfo generic object.
const (
	infoPtHat = iota
	infoVz
	infoCentrality
	infoCentWeight
	infoPtHatWeight
	infoF64s
)

// RunHeader returns the LCIO run header describing a collision.
func RunHeader(run int32, coll jet.Collision) *lcio.RunHeader {
	return &lcio.RunHeader{
		RunNumber: run,
		Detector:  Detector,
		Descr:     coll.System.String(),
		Params: lcio.Params{
			Ints: map[string][]int32{
				"PbGoing": {b2i(coll.PbGoing)},
				"MC":      {b2i(coll.IsMC)},
			},
			Strings: map[string][]string{
				"System":   {coll.System.String()},
				"EtaShift": {strconv.FormatFloat(coll.EtaShift, 'g', -1, 64)},
				"Energy":   {strconv.FormatFloat(coll.Energy, 'g', -1, 64)},
				"NEvents":  {strconv.FormatInt(coll.NEvents, 10)},
			},
		},
	}
}

// Collision decodes the collision configuration of a run header.
func Collision(rhdr *lcio.RunHeader) (jet.Collision, error) {
	var (
		coll jet.Collision
		err  error
	)

	str := func(k string) string {
		v := rhdr.Params.Strings[k]
		if len(v) == 0 {
			return ""
		}
		return v[0]
	}
	flag := func(k string) bool {
		v := rhdr.Params.Ints[k]
		return len(v) > 0 && v[0] != 0
	}

	coll.System, err = jet.ParseSystem(str("System"))
	if err != nil {
		return coll, fmt.Errorf("xcnv: could not decode collision system: %w", err)
	}
	coll.PbGoing = flag("PbGoing")
	coll.IsMC = flag("MC")

	coll.EtaShift, err = strconv.ParseFloat(str("EtaShift"), 64)
	if err != nil {
		return coll, fmt.Errorf("xcnv: could not decode eta-shift: %w", err)
	}
	coll.Energy, err = strconv.ParseFloat(str("Energy"), 64)
	if err != nil {
		return coll, fmt.Errorf("xcnv: could not decode energy: %w", err)
	}
	coll.NEvents, err = strconv.ParseInt(str("NEvents"), 10, 64)
	if err != nil {
		return coll, fmt.Errorf("xcnv: could not decode number of events: %w", err)
	}

	return coll, nil
}

// Encode fills the LCIO event o with the content of evt.
func Encode(o *lcio.Event, evt *jet.Event) {
	o.RunNumber = evt.Run
	o.EventNumber = evt.ID
	o.Detector = Detector

	reco := &lcio.GenericObject{Data: make([]lcio.GenericObjectData, len(evt.Reco))}
	for i, j := range evt.Reco {
		f64s := make([]float64, recoF64s)
		f64s[recoPt] = j.Pt
		f64s[recoPtCorr] = j.PtCorr
		f64s[recoEta] = j.Eta
		f64s[recoPhi] = j.Phi
		f64s[recoRefPt] = j.RefPt
		f64s[recoTrackMax] = j.TrackMax
		f64s[recoCHF] = j.PF.CHF
		f64s[recoNHF] = j.PF.NHF
		f64s[recoCEF] = j.PF.CEF
		f64s[recoNEF] = j.PF.NEF
		f64s[recoMUF] = j.PF.MUF

		i32s := make([]int32, recoI32s)
		i32s[recoGenIdx] = int32(j.GenIdx)
		i32s[recoFlavor] = int32(j.Flavor)
		i32s[recoCHM] = int32(j.PF.CHM)
		i32s[recoNHM] = int32(j.PF.NHM)
		i32s[recoCEM] = int32(j.PF.CEM)
		i32s[recoNEM] = int32(j.PF.NEM)
		i32s[recoMUM] = int32(j.PF.MUM)

		reco.Data[i] = lcio.GenericObjectData{I32s: i32s, F64s: f64s}
	}

	gen := &lcio.GenericObject{Data: make([]lcio.GenericObjectData, len(evt.Gen))}
	for i, j := range evt.Gen {
		gen.Data[i] = lcio.GenericObjectData{
			I32s: []int32{int32(j.Flavor)},
			F64s: []float64{j.Pt, j.Eta, j.Phi},
		}
	}

	info := make([]float64, infoF64s)
	info[infoPtHat] = evt.PtHat
	info[infoVz] = evt.Vz
	info[infoCentrality] = evt.Centrality
	info[infoCentWeight] = evt.CentWeight
	info[infoPtHatWeight] = evt.PtHatWeight

	o.Add(RecoJets, reco)
	o.Add(GenJets, gen)
	o.Add(EventInfo, &lcio.GenericObject{
		Data: []lcio.GenericObjectData{{
			I32s: []int32{int32(evt.HiBin)},
			F64s: info,
		}},
	})

	o.Params.Strings = make(map[string][]string, 2)
	o.Params.Ints = make(map[string][]int32, 2)
	encodeDecisions(&o.Params, filtersKey, evt.Filters)
	encodeDecisions(&o.Params, triggersKey, evt.Triggers)
}

func encodeDecisions(ps *lcio.Params, key string, m map[string]bool) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)

	vs := make([]int32, len(names))
	for i, k := range names {
		vs[i] = b2i(m[k])
	}
	ps.Strings[key] = names
	ps.Ints[key] = vs
}

// Decode decodes the LCIO event o into evt.
func Decode(evt *jet.Event, o *lcio.Event) error {
	*evt = jet.Event{
		Run: o.RunNumber,
		ID:  o.EventNumber,
	}

	reco, err := genericObject(o, RecoJets)
	if err != nil {
		return err
	}
	gen, err := genericObject(o, GenJets)
	if err != nil {
		return err
	}
	info, err := genericObject(o, EventInfo)
	if err != nil {
		return err
	}

	if len(reco.Data) > 0 {
		evt.Reco = make([]jet.Jet, len(reco.Data))
	}
	for i, d := range reco.Data {
		if len(d.F64s) != recoF64s || len(d.I32s) != recoI32s {
			return fmt.Errorf(
				"xcnv: invalid reco jet %d in event %d (f64s=%d, i32s=%d)",
				i, o.EventNumber, len(d.F64s), len(d.I32s),
			)
		}
		evt.Reco[i] = jet.Jet{
			Kind:     jet.Reco,
			Pt:       d.F64s[recoPt],
			PtCorr:   d.F64s[recoPtCorr],
			Eta:      d.F64s[recoEta],
			Phi:      d.F64s[recoPhi],
			RefPt:    d.F64s[recoRefPt],
			GenIdx:   int(d.I32s[recoGenIdx]),
			Flavor:   int(d.I32s[recoFlavor]),
			TrackMax: d.F64s[recoTrackMax],
			PF: jet.PF{
				CHF: d.F64s[recoCHF],
				NHF: d.F64s[recoNHF],
				CEF: d.F64s[recoCEF],
				NEF: d.F64s[recoNEF],
				MUF: d.F64s[recoMUF],
				CHM: int(d.I32s[recoCHM]),
				NHM: int(d.I32s[recoNHM]),
				CEM: int(d.I32s[recoCEM]),
				NEM: int(d.I32s[recoNEM]),
				MUM: int(d.I32s[recoMUM]),
			},
		}
	}

	if len(gen.Data) > 0 {
		evt.Gen = make([]jet.Jet, len(gen.Data))
	}
	for i, d := range gen.Data {
		if len(d.F64s) != 3 || len(d.I32s) != 1 {
			return fmt.Errorf("xcnv: invalid gen jet %d in event %d", i, o.EventNumber)
		}
		evt.Gen[i] = jet.Jet{
			Kind:   jet.Gen,
			Pt:     d.F64s[0],
			Eta:    d.F64s[1],
			Phi:    d.F64s[2],
			RefPt:  -1,
			GenIdx: jet.NoMatch,
			Flavor: int(d.I32s[0]),
		}
	}

	if len(info.Data) != 1 || len(info.Data[0].F64s) != infoF64s || len(info.Data[0].I32s) != 1 {
		return fmt.Errorf("xcnv: invalid event info in event %d", o.EventNumber)
	}
	f64s := info.Data[0].F64s
	evt.PtHat = f64s[infoPtHat]
	evt.Vz = f64s[infoVz]
	evt.Centrality = f64s[infoCentrality]
	evt.CentWeight = f64s[infoCentWeight]
	evt.PtHatWeight = f64s[infoPtHatWeight]
	evt.HiBin = int(info.Data[0].I32s[0])

	evt.Filters, err = decodeDecisions(&o.Params, filtersKey)
	if err != nil {
		return fmt.Errorf("xcnv: could not decode filters of event %d: %w", o.EventNumber, err)
	}
	evt.Triggers, err = decodeDecisions(&o.Params, triggersKey)
	if err != nil {
		return fmt.Errorf("xcnv: could not decode triggers of event %d: %w", o.EventNumber, err)
	}

	return nil
}

func genericObject(o *lcio.Event, name string) (*lcio.GenericObject, error) {
	v, ok := o.Get(name).(*lcio.GenericObject)
	if !ok || v == nil {
		return nil, fmt.Errorf("xcnv: no %q collection in event %d", name, o.EventNumber)
	}
	return v, nil
}

func decodeDecisions(ps *lcio.Params, key string) (map[string]bool, error) {
	names := ps.Strings[key]
	vs := ps.Ints[key]
	if len(names) != len(vs) {
		return nil, fmt.Errorf("mismatched names (%d) and decisions (%d)", len(names), len(vs))
	}
	if len(names) == 0 {
		return nil, nil
	}
	m := make(map[string]bool, len(names))
	for i, k := range names {
		m[k] = vs[i] != 0
	}
	return m, nil
}

func b2i(v bool) int32 {
	if v {
		return 1
	}
	return 0
}
