// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dqm holds the per-event dijet records exchanged by the online
// data-quality monitoring processes.
package dqm // import "github.com/go-lpc/jetana/internal/dqm"

import (
	"bytes"
	"fmt"

	"github.com/go-daq/tdaq"
	"github.com/go-lpc/jetana/analysis"
	"github.com/go-lpc/jetana/dijet"
	"github.com/go-lpc/jetana/jet"
)

const version = 1

// Dijet is the dijet built for one source, with its selection states.
type Dijet struct {
	Source dijet.Source
	States [dijet.NumFrames]dijet.State
	Dijet  dijet.Candidate
}

// Record summarizes the analysis of one event.
type Record struct {
	Run    int32
	Event  int32
	Skip   analysis.Skip
	Weight float64
	Dijets []Dijet
}

// NewRecord creates the record of an analyzed event.
func NewRecord(evt *jet.Event, res *analysis.Result) Record {
	rec := Record{
		Run:    evt.Run,
		Event:  evt.ID,
		Skip:   res.Skip,
		Weight: res.Weight,
	}
	for _, src := range dijet.Sources {
		c, ok := res.Selection.Dijet(src)
		if !ok {
			continue
		}
		dj := Dijet{Source: src, Dijet: c}
		for _, fr := range dijet.Frames {
			dj.States[fr] = res.Selection.State(src, fr)
		}
		rec.Dijets = append(rec.Dijets, dj)
	}
	return rec
}

// MarshalTDAQ encodes the record with the tdaq binary codec.
func (rec Record) MarshalTDAQ() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := tdaq.NewEncoder(buf)
	enc.WriteU8(version)
	enc.WriteI32(rec.Run)
	enc.WriteI32(rec.Event)
	enc.WriteU8(uint8(rec.Skip))
	enc.WriteF64(rec.Weight)
	enc.WriteU8(uint8(len(rec.Dijets)))
	for _, dj := range rec.Dijets {
		enc.WriteU8(uint8(dj.Source))
		for _, st := range dj.States {
			enc.WriteU8(uint8(st))
		}
		c := dj.Dijet
		for _, j := range []dijet.Jet{c.Lead, c.Sublead} {
			enc.WriteF64(j.Pt)
			enc.WriteF64(j.EtaLab)
			enc.WriteF64(j.EtaCM)
			enc.WriteF64(j.Phi)
		}
		enc.WriteF64(c.PtAve)
		enc.WriteF64(c.EtaLab)
		enc.WriteF64(c.EtaCM)
		enc.WriteF64(c.DPhi)
		enc.WriteF64(c.DEtaCM)
		enc.WriteF64(c.Phi)
	}
	if err := enc.Err(); err != nil {
		return nil, fmt.Errorf("dqm: could not encode record: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalTDAQ decodes a record encoded with MarshalTDAQ.
func (rec *Record) UnmarshalTDAQ(p []byte) error {
	dec := tdaq.NewDecoder(bytes.NewReader(p))
	vers := dec.ReadU8()
	if err := dec.Err(); err != nil {
		return fmt.Errorf("dqm: could not decode record version: %w", err)
	}
	if vers != version {
		return fmt.Errorf("dqm: invalid record version (got=%d, want=%d)", vers, version)
	}

	rec.Run = dec.ReadI32()
	rec.Event = dec.ReadI32()
	rec.Skip = analysis.Skip(dec.ReadU8())
	rec.Weight = dec.ReadF64()

	n := int(dec.ReadU8())
	rec.Dijets = nil
	if n > 0 {
		rec.Dijets = make([]Dijet, n)
	}
	for i := range rec.Dijets {
		dj := &rec.Dijets[i]
		dj.Source = dijet.Source(dec.ReadU8())
		if dj.Source >= dijet.NumSources {
			return fmt.Errorf("dqm: invalid dijet source %d", dj.Source)
		}
		for j := range dj.States {
			dj.States[j] = dijet.State(dec.ReadU8())
		}
		c := &dj.Dijet
		for _, j := range []*dijet.Jet{&c.Lead, &c.Sublead} {
			j.Pt = dec.ReadF64()
			j.EtaLab = dec.ReadF64()
			j.EtaCM = dec.ReadF64()
			j.Phi = dec.ReadF64()
		}
		c.PtAve = dec.ReadF64()
		c.EtaLab = dec.ReadF64()
		c.EtaCM = dec.ReadF64()
		c.DPhi = dec.ReadF64()
		c.DEtaCM = dec.ReadF64()
		c.Phi = dec.ReadF64()
	}

	if err := dec.Err(); err != nil {
		return fmt.Errorf("dqm: could not decode record: %w", err)
	}
	return nil
}

func (rec Record) String() string {
	o := new(bytes.Buffer)
	fmt.Fprintf(o, "run=%d evt=%d skip=%v w=%g", rec.Run, rec.Event, rec.Skip, rec.Weight)
	for _, dj := range rec.Dijets {
		fmt.Fprintf(o, "\n  %-4v lab=%-8v cm=%-8v %v",
			dj.Source, dj.States[dijet.Lab], dj.States[dijet.CM], dj.Dijet,
		)
	}
	return o.String()
}
