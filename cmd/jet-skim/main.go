// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command jet-skim reads an LCIO file of jet events and writes the
// events passing the event selection, optionally rewriting their run number.
package main // import "github.com/go-lpc/jetana/cmd/jet-skim"

import (
	"compress/flate"
	"flag"
	"fmt"
	"log"

	"github.com/go-lpc/jetana/analysis"
	"github.com/go-lpc/jetana/cut"
	"github.com/go-lpc/jetana/internal/xcnv"
	"go-hep.org/x/hep/lcio"
)

func main() {
	log.SetPrefix("jet-skim: ")
	log.SetFlags(0)

	var (
		runnbr = flag.Int("run", -1, "run number to use for output LCIO file (-1: keep)")
		oname  = flag.String("o", "out.slcio", "path to output skimmed LCIO file")
		cfg    = flag.String("cfg", "", "path to YAML analysis configuration holding the event selection")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: jet-skim [OPTIONS] FILE.slcio

ex:
 $> jet-skim -o output.slcio -run=1234 -cfg ana.yaml ./input.slcio
 jet-skim: processing event 0...
 jet-skim: processing event 10000...
 jet-skim: processed 36 events (kept 30)

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		log.Fatalf("missing input LCIO file to skim")
	}

	sel := analysis.DefaultConfig().Event
	if *cfg != "" {
		v, err := analysis.LoadConfig(*cfg)
		if err != nil {
			log.Fatalf("could not load analysis configuration: %+v", err)
		}
		sel = v.Event
	}

	r, err := lcio.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("could not open input LCIO file: %+v", err)
	}
	defer r.Close()

	w, err := lcio.Create(*oname)
	if err != nil {
		log.Fatalf("could not create output LCIO file: %+v", err)
	}
	defer w.Close()

	w.SetCompressionLevel(flate.BestCompression)

	_, err = process(w, r, sel, int32(*runnbr))
	if err != nil {
		log.Fatalf("could not skim %q: %+v", flag.Arg(0), err)
	}

	err = w.Close()
	if err != nil {
		log.Fatalf("could not close output file: %+v", err)
	}
}

func process(w *lcio.Writer, r *lcio.Reader, sel *cut.Event, run int32) (int, error) {
	var (
		src  = xcnv.NewReader(r)
		dst  *xcnv.Writer
		i    = 0
		kept = 0
	)
	for src.Next() {
		evt := src.Event()
		if i == 0 {
			coll, err := src.Collision()
			if err != nil {
				return kept, fmt.Errorf("could not decode run header: %w", err)
			}
			if run < 0 {
				run = evt.Run
			}
			dst, err = xcnv.NewWriter(w, run, coll)
			if err != nil {
				return kept, err
			}
		}
		if i%10000 == 0 {
			log.Printf("processing event %d...", evt.ID)
		}
		i++

		if !sel.Pass(evt) {
			continue
		}

		evt.Run = run
		err := dst.Write(evt)
		if err != nil {
			return kept, fmt.Errorf("could not write evt %d: %w", evt.ID, err)
		}
		kept++
	}

	err := src.Err()
	if err != nil {
		return kept, fmt.Errorf("could not read LCIO file: %w", err)
	}

	log.Printf("processed %d events (kept %d)", i, kept)

	return kept, nil
}
