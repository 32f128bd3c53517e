// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fakedb holds types to fake an in-memory DB.
package fakedb // import "github.com/go-lpc/jetana/internal/fakedb"

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"sync"
)

var (
	run sync.Mutex // serializes Run calls

	state struct {
		mu    sync.Mutex
		rows  []Rows
		execs []Exec
	}
)

// Exec is a statement executed through the fake driver.
type Exec struct {
	Query string
	Args  []driver.Value
}

// Run runs f against the fake database.
// Each query issued by f consumes the next result set from rows.
// Run returns the statements executed by f.
func Run(ctx context.Context, f func(ctx context.Context) error, rows ...Rows) ([]Exec, error) {
	run.Lock()
	defer run.Unlock()

	state.mu.Lock()
	state.rows = append([]Rows(nil), rows...)
	state.execs = nil
	state.mu.Unlock()

	err := f(ctx)

	state.mu.Lock()
	execs := state.execs
	state.rows = nil
	state.execs = nil
	state.mu.Unlock()

	return execs, err
}

func init() {
	sql.Register("fakedb", &Driver{})
}

type Driver struct{}

// Open returns a new connection to the database.
func (drv *Driver) Open(name string) (driver.Conn, error) {
	return &Conn{}, nil
}

type Conn struct{}

// Prepare returns a prepared statement, bound to this connection.
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return &Stmt{query: query}, nil
}

func (c *Conn) Close() error {
	return nil
}

func (c *Conn) Begin() (driver.Tx, error) {
	return tx{}, nil
}

type tx struct{}

func (tx) Commit() error   { return nil }
func (tx) Rollback() error { return nil }

type Stmt struct {
	query string
}

func (stmt *Stmt) Close() error {
	return nil
}

// NumInput returns -1: placeholders are not checked.
func (stmt *Stmt) NumInput() int {
	return -1
}

// Exec records the statement and its arguments.
func (stmt *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	state.execs = append(state.execs, Exec{
		Query: stmt.query,
		Args:  append([]driver.Value(nil), args...),
	})
	return driver.RowsAffected(1), nil
}

// Query returns the next queued result set.
func (stmt *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	if len(state.rows) == 0 {
		return nil, fmt.Errorf("fakedb: no result set for query %q", stmt.query)
	}
	rows := state.rows[0]
	state.rows = state.rows[1:]
	return &rows, nil
}

// Rows is a result set.
type Rows struct {
	Names  []string
	Values [][]driver.Value
}

func (rows *Rows) Columns() []string {
	return rows.Names
}

func (rows *Rows) Close() error {
	return nil
}

// Next copies the next row into dest, or returns io.EOF.
func (rows *Rows) Next(dest []driver.Value) error {
	if len(rows.Values) == 0 {
		return io.EOF
	}
	copy(dest, rows.Values[0])
	rows.Values = rows.Values[1:]
	return nil
}

var (
	_ driver.Driver = (*Driver)(nil)
	_ driver.Conn   = (*Conn)(nil)
	_ driver.Stmt   = (*Stmt)(nil)
	_ driver.Tx     = tx{}
	_ driver.Rows   = (*Rows)(nil)
)
