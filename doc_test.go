// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package jetana

import (
	"runtime/debug"
	"testing"
)

func TestVersionOf(t *testing.T) {
	for _, tc := range []struct {
		name string
		info *debug.BuildInfo
		vers string
		sum  string
	}{
		{
			name: "nil",
		},
		{
			name: "main",
			info: &debug.BuildInfo{
				Main: debug.Module{Path: "github.com/go-lpc/jetana", Version: "(devel)"},
			},
			vers: "(devel)",
		},
		{
			name: "dep",
			info: &debug.BuildInfo{
				Main: debug.Module{Path: "example.org/ana"},
				Deps: []*debug.Module{
					{Path: "go-hep.org/x/hep", Version: "v0.32.1"},
					{Path: "github.com/go-lpc/jetana", Version: "v0.3.0", Sum: "h1:xyz"},
				},
			},
			vers: "v0.3.0",
			sum:  "h1:xyz",
		},
		{
			name: "replace-path",
			info: &debug.BuildInfo{
				Deps: []*debug.Module{
					{
						Path:    "github.com/go-lpc/jetana",
						Version: "v0.3.0",
						Replace: &debug.Module{Path: "../jetana"},
					},
				},
			},
			vers: "../jetana",
		},
		{
			name: "replace-version",
			info: &debug.BuildInfo{
				Deps: []*debug.Module{
					{
						Path:    "github.com/go-lpc/jetana",
						Version: "v0.3.0",
						Replace: &debug.Module{Path: "github.com/sbinet/jetana", Version: "v0.3.1", Sum: "h1:abc"},
					},
				},
			},
			vers: "github.com/sbinet/jetana v0.3.1",
			sum:  "h1:abc",
		},
		{
			name: "missing",
			info: &debug.BuildInfo{
				Deps: []*debug.Module{
					{Path: "go-hep.org/x/hep", Version: "v0.32.1"},
				},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			vers, sum := versionOf(tc.info)
			if vers != tc.vers {
				t.Fatalf("invalid version: got=%q, want=%q", vers, tc.vers)
			}
			if sum != tc.sum {
				t.Fatalf("invalid sum: got=%q, want=%q", sum, tc.sum)
			}
		})
	}
}
