// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analysis

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/go-lpc/jetana/cut"
	"github.com/go-lpc/jetana/dijet"
	"github.com/go-lpc/jetana/jec"
	"github.com/go-lpc/jetana/jet"
	"github.com/go-lpc/jetana/overweight"
	"gopkg.in/yaml.v3"
)

// Config describes an analysis job.
type Config struct {
	System   jet.System `yaml:"system"`
	PbGoing  bool       `yaml:"pb-going"`
	IsMC     bool       `yaml:"mc"`
	EtaShift float64    `yaml:"eta-shift"`
	Energy   float64    `yaml:"energy"`  // center-of-mass energy, in GeV
	NEvents  int64      `yaml:"nevents"` // number of events in the simulated sample

	JEC        []string `yaml:"jec,omitempty"` // calibration tables, applied in order
	JEU        string   `yaml:"jeu,omitempty"` // uncertainty table
	ExtraScale bool     `yaml:"extra-scale"`
	JERSyst    int      `yaml:"jer-syst"`
	JEUSyst    int      `yaml:"jeu-syst"`

	PtHatRange    [2]float64 `yaml:"pthat-range,flow"` // (lo, hi] for simulated proton-lead
	UseCentWeight bool       `yaml:"cent-weight"`

	Overweight *overweight.Filter `yaml:"overweight"` // nil disables the filter
	Event      *cut.Event         `yaml:"event-cut"`
	Jet        *cut.Jet           `yaml:"jet-cut"`
	Dijet      *dijet.Cut         `yaml:"dijet-cut"`

	Seed uint64 `yaml:"seed"`
}

// DefaultConfig returns the configuration of the 8.16 TeV proton-lead
// analysis.
func DefaultConfig() Config {
	ow := overweight.Default()
	evt := cut.NewEvent()
	evt.Vz = cut.Range{Lo: -15, Hi: 15}
	return Config{
		System:     jet.LightHeavy,
		EtaShift:   jet.DefaultEtaShift,
		Energy:     8160,
		JERSyst:    jec.JERNominal,
		PtHatRange: [2]float64{15, math.Inf(+1)},
		Overweight: &ow,
		Event:      evt,
		Jet:        cut.NewJet(),
		Dijet:      dijet.DefaultCut(),
		Seed:       1234,
	}
}

// Collision returns the collision described by the configuration.
func (cfg Config) Collision() jet.Collision {
	return jet.Collision{
		System:   cfg.System,
		PbGoing:  cfg.PbGoing,
		IsMC:     cfg.IsMC,
		EtaShift: cfg.EtaShift,
		Energy:   cfg.Energy,
		NEvents:  cfg.NEvents,
	}
}

// Validate checks the consistency of the configuration.
func (cfg Config) Validate() error {
	if !(cfg.PtHatRange[0] < cfg.PtHatRange[1]) {
		return fmt.Errorf("analysis: invalid ptHat range %v", cfg.PtHatRange)
	}
	switch cfg.JEUSyst {
	case -1, 0, +1:
	default:
		return fmt.Errorf("analysis: invalid JEU systematics %d", cfg.JEUSyst)
	}
	if cfg.JEUSyst != 0 && cfg.JEU == "" {
		return fmt.Errorf("analysis: JEU systematics requested without uncertainty table")
	}
	if cfg.IsMC && cfg.System == jet.LightHeavy && cfg.NEvents < 0 {
		return fmt.Errorf("analysis: invalid number of simulated events %d", cfg.NEvents)
	}
	return nil
}

// LoadConfig reads the YAML configuration file fname.
// Fields absent from the file keep their DefaultConfig value, and relative
// table paths are resolved with respect to the directory of fname.
func LoadConfig(fname string) (Config, error) {
	f, err := os.Open(fname)
	if err != nil {
		return Config{}, fmt.Errorf("analysis: could not open config file: %w", err)
	}
	defer f.Close()

	cfg, err := ReadConfig(f)
	if err != nil {
		return cfg, fmt.Errorf("analysis: could not read config file %q: %w", fname, err)
	}

	dir := filepath.Dir(fname)
	for i, name := range cfg.JEC {
		cfg.JEC[i] = resolve(dir, name)
	}
	cfg.JEU = resolve(dir, cfg.JEU)

	return cfg, nil
}

func resolve(dir, fname string) string {
	if fname == "" || filepath.IsAbs(fname) {
		return fname
	}
	return filepath.Join(dir, fname)
}

// ReadConfig decodes a YAML configuration from r.
func ReadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("analysis: could not decode config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return cfg, err
	}

	return cfg, nil
}

// WriteConfig encodes the configuration as YAML to w.
func WriteConfig(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(cfg)
	if err != nil {
		return fmt.Errorf("analysis: could not encode config: %w", err)
	}
	return enc.Close()
}
