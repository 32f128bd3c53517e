// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// lcio-dump decodes and displays jet events embedded in LCIO files.
//
// Usage: lcio-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> lcio-dump -n 1 ./testdata/evts_001.slcio
//	=== run 1 (PbPb, mc=true, pb-going=false, eta-shift=0, sqrt(s)=5020 GeV) ===
//	=== evt 0 ===
//	ptHat:      48.69
//	vz:         -2.42
//	hiBin:        122
//	reco jets:      3
//	  reco{pt=52.11, corr=-999.00, eta=+1.204, phi=-0.427, ref=49.93, gen=-1}
//	[...]
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/go-lpc/jetana/internal/xcnv"
	"go-hep.org/x/hep/lcio"
)

const usage = `lcio-dump decodes and displays jet events embedded in LCIO files.

Usage: lcio-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> lcio-dump -n 1 ./testdata/evts_001.slcio
 === run 1 (PbPb, mc=true, pb-going=false, eta-shift=0, sqrt(s)=5020 GeV) ===
 === evt 0 ===
 ptHat:      48.69
 vz:         -2.42
 hiBin:        122
 reco jets:      3
   reco{pt=52.11, corr=-999.00, eta=+1.204, phi=-0.427, ref=49.93, gen=-1}
 [...]

`

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("lcio-dump: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("lcio", flag.ExitOnError)

		nevts = fset.Int("n", -1, "number of events to display (-1: all)")
	)

	fset.Usage = func() {
		fmt.Print(usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() == 0 {
		fset.Usage()
		log.Fatalf("missing path to input LCIO file")
	}

	for _, fname := range fset.Args() {
		err := process(w, fname, *nevts)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string, nevts int) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	f, err := lcio.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open LCIO file: %w", err)
	}
	defer f.Close()

	r := xcnv.NewReader(f)
	for i := 0; nevts < 0 || i < nevts; i++ {
		if !r.Next() {
			break
		}
		evt := r.Event()
		if i == 0 {
			coll, err := r.Collision()
			if err != nil {
				return fmt.Errorf("could not decode run header: %w", err)
			}
			fmt.Fprintf(wbuf,
				"=== run %d (%v, mc=%v, pb-going=%v, eta-shift=%g, sqrt(s)=%g GeV) ===\n",
				evt.Run, coll.System, coll.IsMC, coll.PbGoing, coll.EtaShift, coll.Energy,
			)
		}

		fmt.Fprintf(wbuf, "=== evt %d ===\n", evt.ID)
		fmt.Fprintf(wbuf, "ptHat:      %8.2f\n", evt.PtHat)
		fmt.Fprintf(wbuf, "vz:         %8.2f\n", evt.Vz)
		fmt.Fprintf(wbuf, "hiBin:      %8d\n", evt.HiBin)
		fmt.Fprintf(wbuf, "reco jets:  %8d\n", len(evt.Reco))
		for _, j := range evt.Reco {
			fmt.Fprintf(wbuf, "  %v\n", j)
		}
		fmt.Fprintf(wbuf, "gen jets:   %8d\n", len(evt.Gen))
		for _, j := range evt.Gen {
			fmt.Fprintf(wbuf, "  %v\n", j)
		}
		dumpDecisions(wbuf, "filters", evt.Filters)
		dumpDecisions(wbuf, "triggers", evt.Triggers)
	}

	if err := r.Err(); err != nil {
		return fmt.Errorf("could not read events: %w", err)
	}

	return nil
}

func dumpDecisions(w io.Writer, name string, m map[string]bool) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "%s:\n", name)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-30s %v\n", k, m[k])
	}
}
