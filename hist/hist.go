// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hist aggregates selected dijets into histograms.
package hist // import "github.com/go-lpc/jetana/hist"

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/go-lpc/jetana/analysis"
	"github.com/go-lpc/jetana/dijet"
	"github.com/go-lpc/jetana/jet"
	"github.com/go-lpc/jetana/weight"
	"go-hep.org/x/hep/hbook"
)

type object interface {
	Name() string
	MarshalYODA() ([]byte, error)
}

type dijetHists struct {
	ptAve  *hbook.H1D
	eta    *hbook.H1D
	dphi   *hbook.H1D
	detaCM *hbook.H1D
	etaPt  *hbook.H2D

	leadPt     *hbook.H1D
	leadEta    *hbook.H1D
	subleadPt  *hbook.H1D
	subleadEta *hbook.H1D
}

// Manager holds the histograms of the dijet analysis.
// Manager is safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	objs   map[string]object
	dijets [dijet.NumSources][dijet.NumFrames]dijetHists

	vz     *hbook.H1D
	vzW    *hbook.H1D
	ptHat  *hbook.H1D
	ptHatW *hbook.H1D
	weight *hbook.H1D
	hiBin  *hbook.H1D

	xPb    *hbook.H1D
	xP     *hbook.H1D
	xRatio *hbook.H1D
}

// New returns a new histogram manager.
func New() *Manager {
	m := &Manager{
		objs: make(map[string]object),
	}

	var (
		ptEdges = weight.DefaultEdges()
		dphiMax = math.Pi
	)

	for _, src := range dijet.Sources {
		for _, fr := range dijet.Frames {
			dir := fmt.Sprintf("/%s/%s", src, fr)
			m.dijets[src][fr] = dijetHists{
				ptAve:      m.h1(dir+"/ptave", hbook.NewH1DFromEdges(ptEdges)),
				eta:        m.h1(dir+"/eta", hbook.NewH1D(50, -5, 5)),
				dphi:       m.h1(dir+"/dphi", hbook.NewH1D(64, -dphiMax, dphiMax)),
				detaCM:     m.h1(dir+"/deta-cm", hbook.NewH1D(50, -5, 5)),
				etaPt:      m.h2(dir+"/eta-ptave", hbook.NewH2D(50, -5, 5, 38, 50, 1000)),
				leadPt:     m.h1(dir+"/lead-pt", hbook.NewH1D(95, 50, 1000)),
				leadEta:    m.h1(dir+"/lead-eta", hbook.NewH1D(52, -5.2, 5.2)),
				subleadPt:  m.h1(dir+"/sublead-pt", hbook.NewH1D(96, 40, 1000)),
				subleadEta: m.h1(dir+"/sublead-eta", hbook.NewH1D(52, -5.2, 5.2)),
			}
		}
	}

	m.vz = m.h1("/event/vz", hbook.NewH1D(320, -40, 40))
	m.vzW = m.h1("/event/vz-weighted", hbook.NewH1D(320, -40, 40))
	m.ptHat = m.h1("/event/pthat", hbook.NewH1D(100, 15, 1015))
	m.ptHatW = m.h1("/event/pthat-weighted", hbook.NewH1D(100, 15, 1015))
	m.weight = m.h1("/event/weight", hbook.NewH1D(100, 0, 1))
	m.hiBin = m.h1("/event/hibin", hbook.NewH1D(200, 0, 200))

	m.xPb = m.h1("/gen/x-pb", hbook.NewH1D(100, 0, 1))
	m.xP = m.h1("/gen/x-p", hbook.NewH1D(100, 0, 1))
	m.xRatio = m.h1("/gen/x-pb-over-x-p", hbook.NewH1D(100, 0, 10))

	return m
}

func (m *Manager) h1(name string, h *hbook.H1D) *hbook.H1D {
	h.Annotation()["name"] = name
	m.objs[name] = h
	return h
}

func (m *Manager) h2(name string, h *hbook.H2D) *hbook.H2D {
	h.Annotation()["name"] = name
	m.objs[name] = h
	return h
}

// Fill fills the histograms of the (src, fr) dijet with rec.
func (m *Manager) Fill(src dijet.Source, fr dijet.Frame, rec analysis.Record, w float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hs := &m.dijets[src][fr]
	hs.ptAve.Fill(rec.PtAve, w)
	hs.eta.Fill(rec.Eta, w)
	hs.dphi.Fill(rec.DPhi, w)
	hs.detaCM.Fill(rec.DEtaCM, w)
	hs.etaPt.Fill(rec.Eta, rec.PtAve, w)
	hs.leadPt.Fill(rec.LeadPt, w)
	hs.leadEta.Fill(rec.LeadEta, w)
	hs.subleadPt.Fill(rec.SubleadPt, w)
	hs.subleadEta.Fill(rec.SubleadEta, w)
}

// FillEvent fills the per-event histograms.
func (m *Manager) FillEvent(evt *jet.Event, res *analysis.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.vz.Fill(evt.Vz, 1)
	m.vzW.Fill(evt.Vz, res.Weight)
	m.ptHat.Fill(evt.PtHat, 1)
	m.ptHatW.Fill(evt.PtHat, res.Weight)
	m.weight.Fill(res.Weight, 1)
	m.hiBin.Fill(float64(evt.HiBin), res.Weight)

	if res.HasX {
		m.xPb.Fill(res.X.Pb, res.Weight)
		m.xP.Fill(res.X.P, res.Weight)
		m.xRatio.Fill(res.X.Ratio, res.Weight)
	}
}

// H1D returns the 1-dim histogram named name.
func (m *Manager) H1D(name string) (*hbook.H1D, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.objs[name].(*hbook.H1D)
	return h, ok
}

// H2D returns the 2-dim histogram named name.
func (m *Manager) H2D(name string) (*hbook.H2D, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.objs[name].(*hbook.H2D)
	return h, ok
}

// Names returns the sorted names of all histograms.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.objs))
	for name := range m.objs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteYODA writes all histograms in the YODA format to w.
func (m *Manager) WriteYODA(w io.Writer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := new(bytes.Buffer)
	for _, name := range m.Names() {
		raw, err := m.objs[name].MarshalYODA()
		if err != nil {
			return fmt.Errorf("hist: could not marshal %q: %w", name, err)
		}
		buf.Write(raw)
		buf.WriteString("\n")
	}

	_, err := w.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("hist: could not write YODA data: %w", err)
	}
	return nil
}

// Save writes all histograms to the YODA file fname.
func (m *Manager) Save(fname string) error {
	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("hist: could not create output file: %w", err)
	}
	defer f.Close()

	err = m.WriteYODA(f)
	if err != nil {
		return err
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("hist: could not close output file %q: %w", fname, err)
	}
	return nil
}

var (
	_ analysis.Sink      = (*Manager)(nil)
	_ analysis.EventSink = (*Manager)(nil)
)
