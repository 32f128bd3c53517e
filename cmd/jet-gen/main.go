// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command jet-gen generates a toy dijet LCIO file.
package main // import "github.com/go-lpc/jetana/cmd/jet-gen"

import (
	"compress/flate"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-lpc/jetana/internal/toymc"
	"github.com/go-lpc/jetana/internal/xcnv"
	"github.com/go-lpc/jetana/jet"
	"go-hep.org/x/hep/lcio"
)

var (
	msg = log.New(os.Stdout, "jet-gen: ", 0)
)

func main() {
	var (
		oname = flag.String("o", "evts_001.slcio", "path to output LCIO file")
		compr = flag.Int("lvl", flate.DefaultCompression, "compression level for output LCIO file")
		nevts = flag.Int("n", 10000, "number of events to generate")
		seed  = flag.Uint64("seed", 1234, "seed of the toy generator")
		sys   = flag.String("sys", "pPb", "collision system (pp, pPb, PbPb)")
		mc    = flag.Bool("mc", true, "generate a simulated sample")
		pb    = flag.Bool("pb-going", false, "lead beam moving towards positive z")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: jet-gen [OPTIONS]

ex:
 $> jet-gen -o evts_063.slcio -n 100000 -sys=PbPb -lvl=9

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if *oname == "" {
		flag.Usage()
		msg.Fatalf("invalid output LCIO file name")
	}

	coll, err := collision(*sys, *mc, *pb)
	if err != nil {
		flag.Usage()
		msg.Fatalf("invalid collision: %+v", err)
	}

	err = process(*oname, *compr, coll, *nevts, *seed)
	if err != nil {
		msg.Fatalf("could not generate events: %+v", err)
	}
}

func collision(name string, mc, pbGoing bool) (jet.Collision, error) {
	sys, err := jet.ParseSystem(name)
	if err != nil {
		return jet.Collision{}, err
	}
	coll := jet.Collision{
		System:  sys,
		IsMC:    mc,
		PbGoing: pbGoing,
		Energy:  5020,
	}
	if sys == jet.LightHeavy {
		coll.EtaShift = jet.DefaultEtaShift
		coll.Energy = 8160
	}
	return coll, nil
}

func process(oname string, lvl int, coll jet.Collision, n int, seed uint64) error {
	run, err := runNbrFrom(oname)
	if err != nil {
		return fmt.Errorf("could not infer run from %q: %w", oname, err)
	}

	f, err := lcio.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create output LCIO file: %w", err)
	}
	defer f.Close()

	f.SetCompressionLevel(lvl)

	if coll.IsMC {
		coll.NEvents = int64(n)
	}

	w, err := xcnv.NewWriter(f, run, coll)
	if err != nil {
		return fmt.Errorf("could not create event writer: %w", err)
	}

	gen := toymc.New(coll, seed)
	for i := 0; i < n; i++ {
		if i%10000 == 0 {
			msg.Printf("processing evt %d...", i)
		}
		evt := gen.Event(run)
		err = w.Write(&evt)
		if err != nil {
			return fmt.Errorf("could not write event %d: %w", i, err)
		}
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("could not close output LCIO file: %w", err)
	}

	return nil
}

func runNbrFrom(fname string) (int32, error) {
	var (
		name = filepath.Base(fname)
		run  int32
	)
	_, err := fmt.Sscanf(name, "evts_%d.slcio", &run)
	return run, err
}
