// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Var identifies a jet quantity a correction table depends on.
type Var uint8

const (
	VarNone Var = iota
	VarPt
	VarEta
	VarPhi
	VarArea
	VarRho
)

func parseVar(name string) (Var, error) {
	switch name {
	case "JetPt":
		return VarPt, nil
	case "JetEta":
		return VarEta, nil
	case "JetPhi":
		return VarPhi, nil
	case "JetA":
		return VarArea, nil
	case "Rho":
		return VarRho, nil
	}
	return VarNone, fmt.Errorf("jec: unknown variable type %q", name)
}

// Values holds the jet quantities correction tables are evaluated at.
type Values struct {
	Pt   float64
	Eta  float64
	Phi  float64
	Area float64
	Rho  float64
}

func (v Values) get(x Var) float64 {
	switch x {
	case VarPt:
		return v.Pt
	case VarEta:
		return v.Eta
	case VarPhi:
		return v.Phi
	case VarArea:
		return v.Area
	case VarRho:
		return v.Rho
	}
	return 0
}

// header is the definition line of a block of table records.
type header struct {
	bins    []Var
	deps    []Var
	formula string
	level   string
}

// scanTable scans the lines of a text table, handing definition lines to
// def and data lines (split into fields) to data.
func scanTable(r io.Reader, def func(hdr header) error, data func(hdr *header, fields []string, line int) error) error {
	var (
		sc    = bufio.NewScanner(r)
		hdr   *header
		iline = 0
	)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for sc.Scan() {
		iline++
		txt := strings.TrimSpace(sc.Text())
		if txt == "" || strings.HasPrefix(txt, "#") {
			continue
		}

		if strings.HasPrefix(txt, "{") {
			h, err := parseHeader(txt)
			if err != nil {
				return fmt.Errorf("jec: could not parse definition line %d: %w", iline, err)
			}
			hdr = &h
			if def != nil {
				err = def(h)
				if err != nil {
					return err
				}
			}
			continue
		}

		if hdr == nil {
			return fmt.Errorf("jec: data line %d before any definition line", iline)
		}
		err := data(hdr, strings.Fields(txt), iline)
		if err != nil {
			return err
		}
	}

	if err := sc.Err(); err != nil {
		return fmt.Errorf("jec: could not scan table: %w", err)
	}
	return nil
}

func parseHeader(txt string) (header, error) {
	var hdr header
	txt = strings.NewReplacer("{", " ", "}", " ").Replace(txt)
	fields := strings.Fields(txt)
	if len(fields) == 0 {
		return hdr, fmt.Errorf("empty definition")
	}

	nvar, err := strconv.Atoi(fields[0])
	if err != nil {
		return hdr, fmt.Errorf("invalid number of binning variables: %w", err)
	}
	if len(fields) <= nvar+1 {
		return hdr, fmt.Errorf("missing dependency variables")
	}
	npar, err := strconv.Atoi(fields[nvar+1])
	if err != nil {
		return hdr, fmt.Errorf("invalid number of dependency variables: %w", err)
	}
	if len(fields) <= nvar+1+npar+1 {
		return hdr, fmt.Errorf("missing formula")
	}

	hdr.bins = make([]Var, nvar)
	for i := range hdr.bins {
		hdr.bins[i], err = parseVar(fields[1+i])
		if err != nil {
			return hdr, err
		}
	}
	hdr.deps = make([]Var, npar)
	for i := range hdr.deps {
		hdr.deps[i], err = parseVar(fields[nvar+2+i])
		if err != nil {
			return hdr, err
		}
	}
	hdr.formula = fields[nvar+npar+2]
	if n := len(fields); n > nvar+npar+3 {
		hdr.level = fields[n-1]
	}
	return hdr, nil
}

func parseFloats(fields []string) ([]float64, error) {
	vs := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		vs[i] = v
	}
	return vs, nil
}

// ranges groups vs into ordered [lo, hi] pairs.
func ranges(vs []float64) [][2]float64 {
	o := make([][2]float64, len(vs)/2)
	for i := range o {
		lo, hi := vs[2*i], vs[2*i+1]
		if lo > hi {
			lo, hi = hi, lo
		}
		o[i] = [2]float64{lo, hi}
	}
	return o
}

func inBin(vars []Var, bins [][2]float64, v Values) bool {
	for i, x := range vars {
		val := v.get(x)
		if val < bins[i][0] || val > bins[i][1] {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
