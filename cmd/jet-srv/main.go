// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command jet-srv starts a TDAQ server publishing per-event dijet records.
//
// Usage: jet-srv [TDAQ-OPTIONS] FILE.slcio [ANALYSIS.yaml]
package main // import "github.com/go-lpc/jetana/cmd/jet-srv"

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"github.com/go-lpc/jetana/analysis"
	"github.com/go-lpc/jetana/internal/dqm"
	"github.com/go-lpc/jetana/internal/xcnv"
	"go-hep.org/x/hep/lcio"
)

func main() {
	cmd := flags.New()
	if len(cmd.Args) == 0 {
		log.Fatalf("missing path to input LCIO file")
	}

	dev := server{fname: cmd.Args[0]}
	if len(cmd.Args) > 1 {
		dev.cfg = cmd.Args[1]
	}

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", dev.OnConfig)
	srv.CmdHandle("/init", dev.OnInit)
	srv.CmdHandle("/reset", dev.OnReset)
	srv.CmdHandle("/start", dev.OnStart)
	srv.CmdHandle("/stop", dev.OnStop)
	srv.CmdHandle("/quit", dev.OnQuit)

	srv.OutputHandle("/dijets", dev.dijets)

	srv.RunHandle(dev.run)

	err := srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}

type server struct {
	fname string // input LCIO file
	cfg   string // analysis configuration file

	ana *analysis.Analyzer
	f   *lcio.Reader
	src analysis.Source
	wrk *analysis.Worker

	n    int
	data chan []byte
}

func (dev *server) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")

	cfg := analysis.DefaultConfig()
	if dev.cfg != "" {
		v, err := analysis.LoadConfig(dev.cfg)
		if err != nil {
			return fmt.Errorf("could not load analysis configuration: %w", err)
		}
		cfg = v
	}

	ana, err := analysis.New(cfg, nil, analysis.WithLogger(log.New(os.Stdout, "jet-srv: ", 0)))
	if err != nil {
		return fmt.Errorf("could not create analyzer: %w", err)
	}
	dev.ana = ana
	return nil
}

func (dev *server) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	return dev.open()
}

func (dev *server) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	dev.close()
	return dev.open()
}

func (dev *server) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	return nil
}

func (dev *server) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	n := dev.n
	ctx.Msg.Debugf("received /stop command... -> n=%d", n)
	if dev.wrk != nil {
		ctx.Msg.Infof("stats:\n%v", dev.wrk.Stats)
	}
	return nil
}

func (dev *server) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	dev.close()
	return nil
}

func (dev *server) open() error {
	if dev.ana == nil {
		return fmt.Errorf("analyzer not configured")
	}

	f, err := lcio.Open(dev.fname)
	if err != nil {
		return fmt.Errorf("could not open LCIO file %q: %w", dev.fname, err)
	}

	dev.f = f
	dev.src = xcnv.NewReader(f)
	dev.wrk = dev.ana.Worker(0)
	dev.data = make(chan []byte, 1024)
	dev.n = 0
	return nil
}

func (dev *server) close() {
	if dev.f == nil {
		return
	}
	_ = dev.f.Close()
	dev.f = nil
	dev.src = nil
}

func (dev *server) dijets(ctx tdaq.Context, dst *tdaq.Frame) error {
	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case data := <-dev.data:
		dst.Body = data
	}
	return nil
}

func (dev *server) run(ctx tdaq.Context) error {
	for {
		select {
		case <-ctx.Ctx.Done():
			return nil
		default:
		}

		if !dev.src.Next() {
			if err := dev.src.Err(); err != nil {
				return fmt.Errorf("could not read event: %w", err)
			}
			ctx.Msg.Infof("end of input file after %d events", dev.n)
			<-ctx.Ctx.Done()
			return nil
		}

		evt := dev.src.Event()
		res := dev.wrk.Process(evt)
		raw, err := dqm.NewRecord(evt, &res).MarshalTDAQ()
		if err != nil {
			return fmt.Errorf("could not encode record of evt %d: %w", evt.ID, err)
		}

		select {
		case <-ctx.Ctx.Done():
			return nil
		case dev.data <- raw:
			dev.n++
		}
	}
}
