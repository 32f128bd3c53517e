// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frame

import (
	"math"
	"testing"

	"github.com/go-lpc/jetana/jet"
)

func TestInvolutionPP(t *testing.T) {
	tr := New(jet.Collision{System: jet.PP})
	for _, eta := range []float64{-5.1, -2.4, -0.3, 0, 0.7, 1.9, 4.4} {
		if got := tr.Lab(tr.CM(eta)); got != eta {
			t.Fatalf("invalid lab(cm(%v)): got=%v", eta, got)
		}
		if got := tr.CM(tr.Lab(eta)); got != eta {
			t.Fatalf("invalid cm(lab(%v)): got=%v", eta, got)
		}
	}
}

func TestLightHeavy(t *testing.T) {
	const (
		s   = jet.DefaultEtaShift
		eta = 1.2
	)

	for _, tc := range []struct {
		name    string
		mc, pb  bool
		lab, cm float64
	}{
		{"mc-pb-going", true, true, -eta, -(eta - s)},
		{"mc-p-going", true, false, eta, eta + s},
		{"data-pb-going", false, true, eta, eta + s},
		{"data-p-going", false, false, -eta, -(eta - s)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			coll := jet.Collision{
				System:   jet.LightHeavy,
				IsMC:     tc.mc,
				PbGoing:  tc.pb,
				EtaShift: s,
			}
			if got, want := Lab(eta, coll), tc.lab; got != want {
				t.Fatalf("invalid lab eta: got=%v, want=%v", got, want)
			}
			if got, want := CM(eta, coll), tc.cm; math.Abs(got-want) > 1e-12 {
				t.Fatalf("invalid cm eta: got=%v, want=%v", got, want)
			}
		})
	}
}

func TestSignFlip(t *testing.T) {
	for _, s := range []float64{0, 0.465, 1} {
		for _, eta := range []float64{-2, -0.5, 0, 0.3, 2.2} {
			sim := jet.Collision{System: jet.LightHeavy, IsMC: true, PbGoing: true, EtaShift: s}
			if got, want := Lab(eta, sim), -eta; got != want {
				t.Fatalf("invalid sim lab eta(%v, s=%v): got=%v, want=%v", eta, s, got, want)
			}
			data := jet.Collision{System: jet.LightHeavy, IsMC: false, PbGoing: true, EtaShift: s}
			if got, want := Lab(eta, data), eta; got != want {
				t.Fatalf("invalid data lab eta(%v, s=%v): got=%v, want=%v", eta, s, got, want)
			}
		}
	}
}

func TestSymmetricSystems(t *testing.T) {
	for _, sys := range []jet.System{jet.PP, jet.HeavyHeavy} {
		coll := jet.Collision{System: sys, EtaShift: 0.25, IsMC: true, PbGoing: true}
		if got, want := Lab(1, coll), 1.25; got != want {
			t.Fatalf("%v: invalid lab eta: got=%v, want=%v", sys, got, want)
		}
		if got, want := CM(1, coll), 1.0; got != want {
			t.Fatalf("%v: invalid cm eta: got=%v, want=%v", sys, got, want)
		}
	}
}

func TestUnknownSystem(t *testing.T) {
	coll := jet.Collision{System: jet.Unknown, EtaShift: 0.4, IsMC: true}
	for _, eta := range []float64{-1, 0, 2} {
		if got := Lab(eta, coll); got != eta {
			t.Fatalf("invalid lab eta: got=%v, want=%v", got, eta)
		}
		if got := CM(eta, coll); got != eta {
			t.Fatalf("invalid cm eta: got=%v, want=%v", got, eta)
		}
	}
}
