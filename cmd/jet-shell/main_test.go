// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/go-lpc/jetana/analysis"
	"github.com/go-lpc/jetana/jet"
)

func TestShell(t *testing.T) {
	evts := []jet.Event{
		{
			Run: 1, ID: 0,
			Reco: []jet.Jet{
				{Kind: jet.Reco, Pt: 100, Eta: 0.2, Phi: 0.1, RefPt: -1, GenIdx: jet.NoMatch},
				{Kind: jet.Reco, Pt: 80, Eta: -0.4, Phi: 3.0, RefPt: -1, GenIdx: jet.NoMatch},
			},
		},
		{Run: 1, ID: 1, Vz: 20},
	}

	out := new(bytes.Buffer)
	sh, err := newShell(out, "", analysis.NewSlice(evts))
	if err != nil {
		t.Fatalf("could not create shell: %+v", err)
	}

	for _, tc := range []struct {
		cmd  string
		quit bool
		err  string
		want string
	}{
		{cmd: "show", err: "no current event"},
		{cmd: "dijets", err: "no current event"},
		{cmd: "next", want: "run 1, evt 0: skip=none"},
		{cmd: "show", want: "[01] reco{pt=80.00"},
		{cmd: "dijets", want: "reco"},
		{cmd: "next 1", want: "skip=event-cut (vz)"},
		{cmd: "stats", want: "events:   2"},
		{cmd: "next", err: io.EOF.Error()},
		{cmd: "next x", err: `invalid number of events "x"`},
		{cmd: "boo", err: `unknown command "boo"`},
		{cmd: "help", want: "next [N]"},
		{cmd: "quit", quit: true},
	} {
		t.Run(tc.cmd, func(t *testing.T) {
			out.Reset()
			quit, err := sh.exec(tc.cmd)
			switch {
			case tc.err != "":
				if err == nil {
					t.Fatalf("expected an error")
				}
				if got, want := err.Error(), tc.err; got != want {
					t.Fatalf("invalid error: got=%q, want=%q", got, want)
				}
				if tc.err == io.EOF.Error() && !errors.Is(err, io.EOF) {
					t.Fatalf("invalid error: got=%v, want=%v", err, io.EOF)
				}
			case err != nil:
				t.Fatalf("could not run %q: %+v", tc.cmd, err)
			}
			if quit != tc.quit {
				t.Fatalf("invalid quit: got=%v, want=%v", quit, tc.quit)
			}
			if !strings.Contains(out.String(), tc.want) {
				t.Fatalf("invalid output: got=%q, want=%q", out.String(), tc.want)
			}
		})
	}
}

func TestComplete(t *testing.T) {
	for _, tc := range []struct {
		line string
		want []string
	}{
		{"n", []string{"next"}},
		{"S", []string{"show", "stats"}},
		{"x", nil},
	} {
		t.Run(tc.line, func(t *testing.T) {
			got := complete(tc.line)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("invalid completion: got=%q, want=%q", got, tc.want)
			}
		})
	}
}
