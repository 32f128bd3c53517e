// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analysis

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/go-lpc/jetana/jet"
	"golang.org/x/sync/errgroup"
)

// Source provides the events to analyze.
// Events returned by Event must stay valid after the following call to Next.
type Source interface {
	Next() bool
	Event() *jet.Event
	Err() error
}

// Slice is an in-memory event source.
type Slice struct {
	evts []jet.Event
	cur  int
}

// NewSlice returns a source iterating over evts.
func NewSlice(evts []jet.Event) *Slice {
	return &Slice{evts: evts, cur: -1}
}

func (s *Slice) Next() bool {
	if s.cur+1 >= len(s.evts) {
		return false
	}
	s.cur++
	return true
}

func (s *Slice) Event() *jet.Event { return &s.evts[s.cur] }
func (s *Slice) Err() error        { return nil }

// Freq is the number of events between two progress reports of Run.
var Freq = 10000

// Run analyzes all the events of src with nworkers concurrent workers.
// A non-positive nworkers uses one worker per CPU.
func (ana *Analyzer) Run(ctx context.Context, src Source, nworkers int) (Stats, error) {
	if nworkers <= 0 {
		nworkers = runtime.NumCPU()
	}

	var (
		stats Stats
		mu    sync.Mutex
		evts  = make(chan *jet.Event, 2*nworkers)
	)

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		defer close(evts)
		for i := 0; src.Next(); i++ {
			if Freq > 0 && i%Freq == 0 {
				ana.msg.Printf("processing evt %d...", i)
			}
			select {
			case evts <- src.Event():
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := src.Err(); err != nil {
			return fmt.Errorf("analysis: could not read events: %w", err)
		}
		return nil
	})

	for i := 0; i < nworkers; i++ {
		wrk := ana.Worker(i)
		grp.Go(func() error {
			defer func() {
				mu.Lock()
				stats.Add(wrk.Stats)
				mu.Unlock()
			}()
			for evt := range evts {
				wrk.Process(evt)
			}
			return nil
		})
	}

	err := grp.Wait()
	if err != nil {
		return stats, err
	}

	return stats, nil
}
