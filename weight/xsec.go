// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package weight

import (
	"fmt"
	"math"
	"sort"
)

// Band is a ptHat interval (Lo, Hi] of a generated sample, with its
// cross section (in mb) and number of generated events.
type Band struct {
	Lo   float64
	Hi   float64 // +Inf for the last, open-ended, band
	Xsec float64
	NGen int64
}

// Contains returns whether ptHat is inside the band.
func (b Band) Contains(ptHat float64) bool {
	return b.Lo < ptHat && ptHat <= b.Hi
}

func (b Band) String() string {
	return fmt.Sprintf("(%g, %g]: xsec=%g, ngen=%d", b.Lo, b.Hi, b.Xsec, b.NGen)
}

// DefaultBands returns the cross-section table of the 8.16 TeV
// proton-lead PYTHIA+EPOS embedded sample.
func DefaultBands() []Band {
	return []Band{
		{Lo: 15, Hi: 30, Xsec: 1.0404701e-06, NGen: 961104},
		{Lo: 30, Hi: 50, Xsec: 7.7966624e-08, NGen: 952110},
		{Lo: 50, Hi: 80, Xsec: 1.0016052e-08, NGen: 952554},
		{Lo: 80, Hi: 120, Xsec: 1.3018269e-09, NGen: 996844},
		{Lo: 120, Hi: 170, Xsec: 2.2648493e-10, NGen: 964681},
		{Lo: 170, Hi: 220, Xsec: 4.0879112e-11, NGen: 999260},
		{Lo: 220, Hi: 280, Xsec: 1.1898939e-11, NGen: 964336},
		{Lo: 280, Hi: 370, Xsec: 3.3364433e-12, NGen: 995036},
		{Lo: 370, Hi: 460, Xsec: 7.6612402e-13, NGen: 958160},
		{Lo: 460, Hi: 540, Xsec: 2.1341026e-13, NGen: 981427},
		{Lo: 540, Hi: math.Inf(+1), Xsec: 7.9191586e-14, NGen: 1000000},
	}
}

// ValidateBands checks that bands are ordered and disjoint.
func ValidateBands(bands []Band) error {
	if !sort.SliceIsSorted(bands, func(i, j int) bool { return bands[i].Lo < bands[j].Lo }) {
		return fmt.Errorf("weight: cross-section bands are not sorted")
	}
	for i, b := range bands {
		if !(b.Lo < b.Hi) {
			return fmt.Errorf("weight: invalid band %d: %v", i, b)
		}
		if i > 0 && bands[i-1].Hi > b.Lo {
			return fmt.Errorf("weight: overlapping bands %d and %d", i-1, i)
		}
	}
	return nil
}
