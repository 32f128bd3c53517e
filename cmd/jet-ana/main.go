// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command jet-ana runs the dijet analysis over LCIO files and
// stores the resulting histograms in a YODA file.
package main // import "github.com/go-lpc/jetana/cmd/jet-ana"

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/go-lpc/jetana/analysis"
	"github.com/go-lpc/jetana/conddb"
	"github.com/go-lpc/jetana/hist"
	"github.com/go-lpc/jetana/internal/xcnv"
	"github.com/go-lpc/jetana/weight"
	"github.com/sbinet/pmon"
	"go-hep.org/x/hep/lcio"
	mail "gopkg.in/gomail.v2"
)

const usage = `jet-ana runs the dijet analysis over LCIO files.

Usage: jet-ana [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> jet-ana -cfg ./ana.yaml -o out.yoda -j 8 ./evts-*.slcio
 $> jet-ana -db jetana -sample pPb8160_embedded -o out.yoda ./evts.slcio

Options:
`

type options struct {
	cfg    string // path to the YAML analysis configuration
	oname  string // path to the output YODA file
	nwrk   int    // number of workers
	db     string // conditions database name
	sample string // sample name in the conditions database
	pmon   bool
	freq   time.Duration
	mail   bool
}

func main() {
	log.SetPrefix("jet-ana: ")
	log.SetFlags(0)

	xmain(os.Args[1:])
}

func xmain(args []string) {
	var (
		fset = flag.NewFlagSet("jet-ana", flag.ExitOnError)
		opts options
	)

	fset.StringVar(&opts.cfg, "cfg", "", "path to YAML analysis configuration file")
	fset.StringVar(&opts.oname, "o", "out.yoda", "path to output YODA file")
	fset.IntVar(&opts.nwrk, "j", 0, "number of concurrent workers (0: one per CPU)")
	fset.StringVar(&opts.db, "db", "", "name of the conditions database holding the cross-sections")
	fset.StringVar(&opts.sample, "sample", "", "name of the sample in the conditions database")
	fset.BoolVar(&opts.pmon, "pmon", false, "enable pmon monitoring")
	fset.DurationVar(&opts.freq, "freq", 1*time.Second, "pmon frequency")
	fset.BoolVar(&opts.mail, "mail", false, "send an end-of-run report by mail")

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

	if opts.db != "" && opts.sample == "" {
		fset.Usage()
		log.Fatalf("missing sample name for conditions database %q", opts.db)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	msg := log.New(os.Stdout, "jet-ana: ", 0)
	stats, err := run(ctx, msg, opts, fset.Args())
	if err != nil {
		log.Fatalf("could not run analysis: %+v", err)
	}

	if opts.mail {
		sendReport(opts, fset.Args(), stats)
	}
}

func run(ctx context.Context, msg *log.Logger, opts options, fnames []string) (analysis.Stats, error) {
	var stats analysis.Stats

	cfg := analysis.DefaultConfig()
	if opts.cfg != "" {
		v, err := analysis.LoadConfig(opts.cfg)
		if err != nil {
			return stats, fmt.Errorf("could not load analysis configuration: %w", err)
		}
		cfg = v
	}

	if opts.pmon {
		stop, err := monitor(msg, opts.oname+".pmon", opts.freq)
		if err != nil {
			return stats, err
		}
		defer stop()
	}

	aopts := []analysis.Option{analysis.WithLogger(msg)}
	if opts.db != "" {
		v, err := condOptions(ctx, opts.db, opts.sample)
		if err != nil {
			return stats, err
		}
		aopts = append(aopts, v...)
	}

	hmgr := hist.New()
	ana, err := analysis.New(cfg, hmgr, aopts...)
	if err != nil {
		return stats, fmt.Errorf("could not create analyzer: %w", err)
	}

	start := time.Now()
	for _, fname := range fnames {
		v, err := process(ctx, msg, ana, fname, opts.nwrk)
		stats.Add(v)
		if err != nil {
			return stats, fmt.Errorf("could not process %q: %w", fname, err)
		}
	}
	msg.Printf("processed %d events in %v", stats.Events, time.Since(start))
	msg.Printf("stats:\n%v", stats)

	err = hmgr.Save(opts.oname)
	if err != nil {
		return stats, fmt.Errorf("could not save histograms: %w", err)
	}

	return stats, nil
}

func process(ctx context.Context, msg *log.Logger, ana *analysis.Analyzer, fname string, nwrk int) (analysis.Stats, error) {
	f, err := lcio.Open(fname)
	if err != nil {
		return analysis.Stats{}, fmt.Errorf("could not open LCIO file: %w", err)
	}
	defer f.Close()

	msg.Printf("processing %q...", fname)
	r := xcnv.NewReader(f)
	return ana.Run(ctx, r, nwrk)
}

func condOptions(ctx context.Context, dbname, sample string) ([]analysis.Option, error) {
	db, err := conddb.Open(dbname)
	if err != nil {
		return nil, fmt.Errorf("could not open conditions db: %w", err)
	}
	defer db.Close()

	bands, err := db.XsecBands(ctx, sample)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve cross-sections of %q: %w", sample, err)
	}

	rw, err := db.Reweighter(ctx, sample, weight.DefaultEdges())
	if err != nil {
		return nil, fmt.Errorf("could not retrieve reweighting factors of %q: %w", sample, err)
	}

	return []analysis.Option{
		analysis.WithXsec(bands),
		analysis.WithReweighter(rw),
	}, nil
}

func monitor(msg *log.Logger, fname string, freq time.Duration) (func(), error) {
	p, err := pmon.Monitor(os.Getpid())
	if err != nil {
		return nil, fmt.Errorf("could not start monitoring: %w", err)
	}
	f, err := os.Create(fname)
	if err != nil {
		return nil, fmt.Errorf("could not create pmon log file: %w", err)
	}
	p.W = f
	p.Freq = freq

	go func() {
		err := p.Run()
		if err != nil {
			msg.Printf("could not run pmon: %+v", err)
		}
	}()

	return func() {
		err := p.Kill()
		if err != nil {
			msg.Printf("could not stop monitoring: %+v", err)
		}
		_ = f.Close()
	}, nil
}

var (
	reportMailUsr  = os.Getenv("MAIL_USERNAME")
	reportMailPwd  = os.Getenv("MAIL_PASSWORD")
	reportMailSrv  = os.Getenv("MAIL_SERVER")
	reportMailPort = atoi(os.Getenv("MAIL_PORT"))
	reportMailTgts = mailTargets(os.Getenv("MAIL_TGTS"))
)

// mailTargets returns the non-empty addresses of a comma-separated list.
func mailTargets(s string) []string {
	var tgts []string
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		tgts = append(tgts, v)
	}
	return tgts
}

func sendReport(opts options, fnames []string, stats analysis.Stats) {
	if reportMailUsr == "" || reportMailPwd == "" ||
		reportMailSrv == "" || reportMailPort == 0 ||
		len(reportMailTgts) == 0 {
		log.Printf("could not send mail report: missing credentials")
		return
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", reportMailUsr)
	msg.SetHeader("Bcc", reportMailTgts...)
	msg.SetHeader("Subject", fmt.Sprintf("[jet-ana] report: %q", opts.oname))
	msg.SetBody("text/plain", report(opts, fnames, stats))

	dial := mail.NewDialer(reportMailSrv, reportMailPort, reportMailUsr, reportMailPwd)
	dial.TLSConfig = &tls.Config{
		InsecureSkipVerify: true,
	}
	err := dial.DialAndSend(msg)
	if err != nil {
		log.Printf("could not send mail report: %+v", err)
	}
}

func report(opts options, fnames []string, stats analysis.Stats) string {
	o := new(strings.Builder)
	fmt.Fprintf(o, "output: %q\n", opts.oname)
	if opts.cfg != "" {
		fmt.Fprintf(o, "config: %q\n", opts.cfg)
	}
	fmt.Fprintf(o, "inputs:\n")
	for _, fname := range fnames {
		fmt.Fprintf(o, " - %q\n", fname)
	}
	fmt.Fprintf(o, "\n%v", stats)
	return o.String()
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
