// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conddb holds types to describe the conditions database
// of the dijet analysis: generated samples, their cross-section
// tables and dijet reweighting factors.
package conddb // import "github.com/go-lpc/jetana/conddb"

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/go-lpc/jetana/jet"
	"github.com/go-lpc/jetana/weight"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// DB exposes convenience methods to easily retrieve conditions data
// from the analysis database.
type DB struct {
	db   *sql.DB
	name string // name of the analysis database
}

// Sample describes a generated (or recorded) sample.
type Sample struct {
	Name    string
	System  jet.System
	Energy  float64 // center-of-mass energy per nucleon pair, in GeV
	NEvents int64
}

// Open opens a connection to the analysis database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("conddb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		return nil, fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// LastSample returns the most recently registered sample.
func (db *DB) LastSample(ctx context.Context) (Sample, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var smp Sample
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT name, system, energy, nevents FROM samples ORDER BY datetime DESC LIMIT 1",
	)
	if err != nil {
		return smp, fmt.Errorf("conddb: could not query last sample: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		smp, err = scanSample(rows)
		if err != nil {
			return smp, fmt.Errorf("conddb: could not get last sample: %w", err)
		}
		n++
	}

	if err := rows.Err(); err != nil {
		return smp, fmt.Errorf("conddb: could not scan db for last sample: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return smp, fmt.Errorf("conddb: context error while retrieving last sample: %w", err)
	}

	if n == 0 {
		return smp, fmt.Errorf("conddb: no sample in %q db", db.name)
	}

	return smp, nil
}

// Samples returns all the registered samples, most recent first.
func (db *DB) Samples(ctx context.Context) ([]Sample, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var smps []Sample
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT name, system, energy, nevents FROM samples ORDER BY datetime DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("conddb: could not run samples query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		smp, err := scanSample(rows)
		if err != nil {
			return smps, fmt.Errorf("conddb: could not scan sample %d: %w", len(smps), err)
		}
		smps = append(smps, smp)
	}

	if err := rows.Err(); err != nil {
		return smps, fmt.Errorf("conddb: could not scan db for samples: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return smps, fmt.Errorf("conddb: context error while retrieving samples: %w", err)
	}

	return smps, nil
}

func scanSample(rows *sql.Rows) (Sample, error) {
	var (
		smp Sample
		sys string
	)
	err := rows.Scan(&smp.Name, &sys, &smp.Energy, &smp.NEvents)
	if err != nil {
		return smp, err
	}
	smp.System, err = jet.ParseSystem(sys)
	if err != nil {
		return smp, err
	}
	return smp, nil
}

// XsecBands returns the ptHat cross-section table of the named sample.
// A NULL upper edge denotes the last, open-ended, band.
func (db *DB) XsecBands(ctx context.Context, sample string) ([]weight.Band, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := db.db.QueryContext(
		ctx,
		`
SELECT pthat_lo, pthat_hi, xsec, ngen FROM xsec
JOIN samples ON samples.identifier=xsec.sample
WHERE samples.name=?
ORDER BY pthat_lo
`,
		sample,
	)
	if err != nil {
		return nil, fmt.Errorf("conddb: could not run xsec query: %w", err)
	}
	defer rows.Close()

	var bands []weight.Band
	for rows.Next() {
		var (
			band weight.Band
			hi   sql.NullFloat64
		)
		err = rows.Scan(&band.Lo, &hi, &band.Xsec, &band.NGen)
		if err != nil {
			return bands, fmt.Errorf("conddb: could not scan row %d for xsec: %w", len(bands), err)
		}
		band.Hi = math.Inf(+1)
		if hi.Valid {
			band.Hi = hi.Float64
		}
		bands = append(bands, band)
	}

	if err := rows.Err(); err != nil {
		return bands, fmt.Errorf("conddb: could not scan db for xsec: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return bands, fmt.Errorf("conddb: context error while retrieving xsec: %w", err)
	}

	if len(bands) == 0 {
		return nil, fmt.Errorf("conddb: no xsec table for sample %q", sample)
	}

	err = weight.ValidateBands(bands)
	if err != nil {
		return nil, fmt.Errorf("conddb: invalid xsec table for sample %q: %w", sample, err)
	}

	return bands, nil
}

// Reweighter returns the dijet reweighting factors of the named sample,
// binned with the provided pt edges.
func (db *DB) Reweighter(ctx context.Context, sample string, edges []float64) (*weight.Reweighter, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rw, err := weight.NewReweighter(edges)
	if err != nil {
		return nil, fmt.Errorf("conddb: could not create reweighter: %w", err)
	}

	rows, err := db.db.QueryContext(
		ctx,
		`
SELECT lead_bin, sublead_bin, factor FROM reweight
JOIN samples ON samples.identifier=reweight.sample
WHERE samples.name=?
`,
		sample,
	)
	if err != nil {
		return nil, fmt.Errorf("conddb: could not run reweight query: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		var (
			k weight.Key
			v float64
		)
		err = rows.Scan(&k.Lead, &k.Sublead, &v)
		if err != nil {
			return nil, fmt.Errorf("conddb: could not scan row %d for reweight: %w", i, err)
		}
		err = rw.Set(k, v)
		if err != nil {
			return nil, fmt.Errorf("conddb: invalid reweight row %d: %w", i, err)
		}
		i++
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("conddb: could not scan db for reweight: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("conddb: context error while retrieving reweight: %w", err)
	}

	return rw, nil
}

// PutXsecBands stores the cross-section table of the named sample.
func (db *DB) PutXsecBands(ctx context.Context, sample string, bands []weight.Band) error {
	err := weight.ValidateBands(bands)
	if err != nil {
		return fmt.Errorf("conddb: invalid xsec table: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("conddb: could not start xsec transaction: %w", err)
	}
	defer tx.Rollback()

	for i, band := range bands {
		hi := sql.NullFloat64{Float64: band.Hi, Valid: !math.IsInf(band.Hi, +1)}
		_, err = tx.ExecContext(
			ctx,
			`
INSERT INTO xsec (sample, pthat_lo, pthat_hi, xsec, ngen)
SELECT identifier, ?, ?, ?, ? FROM samples WHERE name=?
`,
			band.Lo, hi, band.Xsec, band.NGen, sample,
		)
		if err != nil {
			return fmt.Errorf("conddb: could not insert xsec band %d: %w", i, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("conddb: could not commit xsec table: %w", err)
	}

	return nil
}
