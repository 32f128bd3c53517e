// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command ana-boot starts one jet-ana job per input file, concurrently.
//
// Usage: ana-boot [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> ana-boot -cfg ./ana.yaml -dir ./out -pmon ./evts_*.slcio
package main // import "github.com/go-lpc/jetana/cmd/ana-boot"

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sbinet/pmon"
	"golang.org/x/sync/errgroup"
)

var (
	doMon  = flag.Bool("pmon", false, "enable pmon monitoring")
	doFreq = flag.Duration("freq", 1*time.Second, "pmon frequency")
	cfg    = flag.String("cfg", "", "path to YAML analysis configuration file")
	dir    = flag.String("dir", os.Getenv("JETANA_LOGDIR"), "output directory for histograms and logs")
	nwrk   = flag.Int("j", 1, "number of workers per job")
	prog   = flag.String("ana", "jet-ana", "analysis command to run")

	stop = make(chan os.Signal, 1)
)

func main() {
	flag.Parse()

	log.SetPrefix("ana-boot: ")
	log.SetFlags(0)

	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("missing input LCIO files")
	}

	if *dir == "" {
		*dir = "."
	}

	cmds := jobs(*prog, *cfg, *dir, *nwrk, flag.Args())
	err := run(*doMon, *doFreq, cmds, *dir, stop)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

// jobs returns one analysis command per input file.
func jobs(prog, cfg, dir string, nwrk int, fnames []string) []*exec.Cmd {
	cmds := make([]*exec.Cmd, len(fnames))
	for i, fname := range fnames {
		name := strings.TrimSuffix(filepath.Base(fname), filepath.Ext(fname))
		args := []string{
			"-o", filepath.Join(dir, name+".yoda"),
			"-j", strconv.Itoa(nwrk),
		}
		if cfg != "" {
			args = append(args, "-cfg", cfg)
		}
		args = append(args, fname)
		cmds[i] = exec.Command(prog, args...)
	}
	return cmds
}

func run(doMon bool, freq time.Duration, cmds []*exec.Cmd, dir string, stop chan os.Signal) error {
	signal.Notify(stop, os.Interrupt)
	defer signal.Stop(stop)

	var (
		grp  errgroup.Group
		kill = make(chan int)
	)

	for i := range cmds {
		cmd := cmds[i]
		name := jobName(cmd, i)
		grp.Go(func() error {
			return start(cmd, name, dir, kill, doMon, freq)
		})
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-stop:
			close(kill)
		case <-done:
		}
	}()

	err := grp.Wait()
	if err != nil {
		return fmt.Errorf("could not run analysis jobs: %w", err)
	}
	return nil
}

func jobName(cmd *exec.Cmd, i int) string {
	return fmt.Sprintf("%s-%03d", filepath.Base(cmd.Path), i)
}

func start(cmd *exec.Cmd, name, dir string, kill chan int, doMon bool, freq time.Duration) error {
	out, err := os.Create(filepath.Join(dir, name+".log"))
	if err != nil {
		return fmt.Errorf("could not create output log file for %q: %w", name, err)
	}
	defer out.Close()

	cmd.Stdout = out
	cmd.Stderr = out

	log.Printf("starting %q...", name)
	err = cmd.Start()
	if err != nil {
		return fmt.Errorf("could not start %q: %w", name, err)
	}

	if doMon {
		p, err := pmon.Monitor(cmd.Process.Pid)
		if err != nil {
			return fmt.Errorf("could not start monitoring %q (pid=%d): %w", name, cmd.Process.Pid, err)
		}
		f, err := os.Create(filepath.Join(dir, name+"-pmon.log"))
		if err != nil {
			return fmt.Errorf("could not create pmon log file for command %q: %w", name, err)
		}
		defer f.Close()
		p.W = f
		p.Freq = freq

		go func() {
			log.Printf("run pmon %q...", name)
			err := p.Run()
			if err != nil {
				log.Printf("could not start monitoring %q: %+v", name, err)
			}
		}()

		defer func() {
			err := p.Kill()
			if err != nil {
				log.Printf("could not stop monitoring %q: %+v", name, err)
			}
		}()
	}

	errch := make(chan error, 1)
	go func() {
		errch <- cmd.Wait()
	}()

	select {
	case <-kill:
		err = cmd.Process.Kill()
		if err != nil {
			return fmt.Errorf("could not kill %q: %+v", name, err)
		}
		<-errch
	case err = <-errch:
		if err != nil {
			return fmt.Errorf("could not run %q: %w", name, err)
		}
	}

	log.Printf("%q done", name)
	return nil
}
