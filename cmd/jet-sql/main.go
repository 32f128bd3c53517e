// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command jet-sql inspects the samples and cross-section tables stored
// in the conditions database.
package main // import "github.com/go-lpc/jetana/cmd/jet-sql"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/go-lpc/jetana/conddb"
	"github.com/go-lpc/jetana/weight"
)

func main() {
	log.SetPrefix("jet-sql: ")
	log.SetFlags(0)

	var (
		dbname = flag.String("db", "jetana", "name of the conditions database")
		sample = flag.String("sample", "", "sample to inspect (default: last registered sample)")
	)

	flag.Parse()

	db, err := conddb.Open(*dbname)
	if err != nil {
		log.Fatalf("could not open conditions db: %+v", err)
	}
	defer db.Close()

	err = doQuery(db, *sample)
	if err != nil {
		log.Fatalf("could not do query: %+v", err)
	}
}

func doQuery(db *conddb.DB, sample string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	smps, err := db.Samples(ctx)
	if err != nil {
		return fmt.Errorf("could not get samples: %w", err)
	}
	log.Printf("samples: %d", len(smps))
	for i, smp := range smps {
		log.Printf("row[%d]: %q (%v, sqrt(s)=%g GeV, nevts=%d)",
			i, smp.Name, smp.System, smp.Energy, smp.NEvents,
		)
	}

	if sample == "" {
		smp, err := db.LastSample(ctx)
		if err != nil {
			return fmt.Errorf("could not get last sample: %w", err)
		}
		sample = smp.Name
		log.Printf("sample: %q", sample)
	}

	bands, err := db.XsecBands(ctx, sample)
	if err != nil {
		return fmt.Errorf("could not get xsec table (sample=%q): %w", sample, err)
	}
	log.Printf("xsec bands: %d", len(bands))
	for i, band := range bands {
		log.Printf(">>> band[%02d]: %v", i, band)
	}

	rw, err := db.Reweighter(ctx, sample, weight.DefaultEdges())
	if err != nil {
		return fmt.Errorf("could not get reweighting factors (sample=%q): %w", sample, err)
	}
	log.Printf("reweight factors: %d", rw.Len())

	return nil
}
