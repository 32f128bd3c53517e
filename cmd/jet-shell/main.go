// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command jet-shell is an interactive shell to step through the events
// of an LCIO file and inspect their dijet selection.
//
// Usage: jet-shell [OPTIONS] FILE
//
// Example:
//
//	$> jet-shell -cfg ./ana.yaml ./evts_001.slcio
//	jet-shell> next
//	jet-shell> dijets
//	jet-shell> quit
package main // import "github.com/go-lpc/jetana/cmd/jet-shell"

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-lpc/jetana/analysis"
	"github.com/go-lpc/jetana/dijet"
	"github.com/go-lpc/jetana/internal/xcnv"
	"github.com/go-lpc/jetana/jet"
	"github.com/peterh/liner"
	"go-hep.org/x/hep/lcio"
)

const usage = `jet-shell steps through the events of an LCIO file.

Usage: jet-shell [OPTIONS] FILE

Example:

 $> jet-shell -cfg ./ana.yaml ./evts_001.slcio

Options:
`

const help = `commands:
  next [N]  analyze the next N events (default: 1)
  show      display the jets of the current event
  dijets    display the dijets of the current event
  stats     display the counters accumulated so far
  help      display this help
  quit      leave the shell
`

func main() {
	log.SetPrefix("jet-shell: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("jet-shell", flag.ExitOnError)
		cfg  = fset.String("cfg", "", "path to YAML analysis configuration file")
	)

	fset.Usage = func() {
		fmt.Print(usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(os.Args[1:])
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() != 1 {
		fset.Usage()
		log.Fatalf("missing path to input LCIO file")
	}

	err = xmain(*cfg, fset.Arg(0))
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func xmain(cfg, fname string) error {
	f, err := lcio.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open LCIO file: %w", err)
	}
	defer f.Close()

	sh, err := newShell(os.Stdout, cfg, xcnv.NewReader(f))
	if err != nil {
		return fmt.Errorf("could not create shell: %w", err)
	}

	term := liner.NewLiner()
	defer term.Close()
	term.SetCtrlCAborts(true)
	term.SetCompleter(complete)

	hist := filepath.Join(os.TempDir(), ".jet-shell-history")
	if h, err := os.Open(hist); err == nil {
		_, _ = term.ReadHistory(h)
		h.Close()
	}
	defer func() {
		h, err := os.Create(hist)
		if err != nil {
			return
		}
		defer h.Close()
		_, _ = term.WriteHistory(h)
	}()

	for {
		line, err := term.Prompt("jet-shell> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("could not read command: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		term.AppendHistory(line)

		quit, err := sh.exec(line)
		if err != nil {
			fmt.Fprintf(os.Stdout, "error: %+v\n", err)
		}
		if quit {
			return nil
		}
	}
}

var cmds = []string{"next", "show", "dijets", "stats", "help", "quit"}

func complete(line string) []string {
	var o []string
	for _, cmd := range cmds {
		if strings.HasPrefix(cmd, strings.ToLower(line)) {
			o = append(o, cmd)
		}
	}
	return o
}

type shell struct {
	w   io.Writer
	src analysis.Source
	wrk *analysis.Worker

	evt *jet.Event
	res analysis.Result
}

func newShell(w io.Writer, fname string, src analysis.Source) (*shell, error) {
	cfg := analysis.DefaultConfig()
	if fname != "" {
		v, err := analysis.LoadConfig(fname)
		if err != nil {
			return nil, err
		}
		cfg = v
	}

	msg := log.New(w, "ana: ", 0)
	ana, err := analysis.New(cfg, nil, analysis.WithLogger(msg))
	if err != nil {
		return nil, err
	}

	return &shell{w: w, src: src, wrk: ana.Worker(0)}, nil
}

func (sh *shell) exec(line string) (quit bool, err error) {
	toks := strings.Fields(line)
	if len(toks) == 0 {
		return false, nil
	}

	switch cmd, args := strings.ToLower(toks[0]), toks[1:]; cmd {
	case "n", "next":
		n := 1
		if len(args) > 0 {
			n, err = strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return false, fmt.Errorf("invalid number of events %q", args[0])
			}
		}
		return false, sh.next(n)
	case "show":
		return false, sh.show()
	case "dijets":
		return false, sh.dijets()
	case "stats":
		fmt.Fprintf(sh.w, "%v", sh.wrk.Stats)
		return false, nil
	case "h", "help", "?":
		fmt.Fprint(sh.w, help)
		return false, nil
	case "q", "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q", cmd)
	}
}

func (sh *shell) next(n int) error {
	for i := 0; i < n; i++ {
		if !sh.src.Next() {
			if err := sh.src.Err(); err != nil {
				return fmt.Errorf("could not read event: %w", err)
			}
			return io.EOF
		}
		sh.evt = sh.src.Event()
		sh.res = sh.wrk.Process(sh.evt)
	}

	fmt.Fprintf(sh.w, "run %d, evt %d: skip=%v", sh.evt.Run, sh.evt.ID, sh.res.Skip)
	if sh.res.Reason != "" {
		fmt.Fprintf(sh.w, " (%s)", sh.res.Reason)
	}
	fmt.Fprintf(sh.w, ", weight=%g, filled=%d\n", sh.res.Weight, sh.res.Filled)
	return nil
}

func (sh *shell) show() error {
	if sh.evt == nil {
		return fmt.Errorf("no current event")
	}
	evt := sh.evt
	fmt.Fprintf(sh.w, "run %d, evt %d: ptHat=%g vz=%g hiBin=%d\n",
		evt.Run, evt.ID, evt.PtHat, evt.Vz, evt.HiBin,
	)
	for i, j := range evt.Reco {
		fmt.Fprintf(sh.w, "  [%02d] %v\n", i, j)
	}
	for i, j := range evt.Gen {
		fmt.Fprintf(sh.w, "  [%02d] %v\n", i, j)
	}
	return nil
}

func (sh *shell) dijets() error {
	if sh.evt == nil {
		return fmt.Errorf("no current event")
	}
	for _, src := range dijet.Sources {
		c, ok := sh.res.Selection.Dijet(src)
		fmt.Fprintf(sh.w, "%-4v lab=%-12v cm=%-12v",
			src,
			sh.res.State(src, dijet.Lab),
			sh.res.State(src, dijet.CM),
		)
		if ok {
			fmt.Fprintf(sh.w, " %v", c)
		}
		fmt.Fprintf(sh.w, "\n")
	}
	if sh.res.HasX {
		fmt.Fprintf(sh.w, "x_Pb=%g x_p=%g\n", sh.res.X.Pb, sh.res.X.P)
	}
	return nil
}
