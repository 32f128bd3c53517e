// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xcnv

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-lpc/jetana/jet"
	"go-hep.org/x/hep/lcio"
)

// Writer writes jet events to an LCIO stream.
type Writer struct {
	w   *lcio.Writer
	run int32
	n   int64
}

// NewWriter writes the run header of the collision to w and returns
// a writer of jet events.
func NewWriter(w *lcio.Writer, run int32, coll jet.Collision) (*Writer, error) {
	err := w.WriteRunHeader(RunHeader(run, coll))
	if err != nil {
		return nil, fmt.Errorf("xcnv: could not write run header: %w", err)
	}
	return &Writer{w: w, run: run}, nil
}

// Write writes evt to the underlying LCIO stream.
func (w *Writer) Write(evt *jet.Event) error {
	var o lcio.Event
	Encode(&o, evt)
	o.RunNumber = w.run

	err := w.w.WriteEvent(&o)
	if err != nil {
		return fmt.Errorf("xcnv: could not write event %d: %w", evt.ID, err)
	}
	w.n++
	return nil
}

// N returns the number of events written so far.
func (w *Writer) N() int64 { return w.n }

// Reader reads jet events from an LCIO stream.
// Each call to Next decodes into a new event.
type Reader struct {
	r   *lcio.Reader
	evt *jet.Event
	err error
}

// NewReader returns a jet event reader.
func NewReader(r *lcio.Reader) *Reader {
	return &Reader{r: r}
}

// Next reads the next event, and returns false at the end of the
// stream or on error.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	if !r.r.Next() {
		return false
	}

	evt := new(jet.Event)
	o := r.r.Event()
	err := Decode(evt, &o)
	if err != nil {
		r.err = err
		return false
	}
	r.evt = evt
	return true
}

// Event returns the last decoded event.
func (r *Reader) Event() *jet.Event { return r.evt }

// Err returns the first error encountered while reading.
// A clean end of stream is not an error.
func (r *Reader) Err() error {
	if r.err != nil {
		return r.err
	}
	err := r.r.Err()
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Collision decodes the collision configuration from the last
// run header read by the underlying LCIO stream.
func (r *Reader) Collision() (jet.Collision, error) {
	rhdr := r.r.RunHeader()
	return Collision(&rhdr)
}
