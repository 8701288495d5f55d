/*
DESCRIPTION
  spe_test.go provides testing for the SPE model, fit, valley search and
  gain functions.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

  It is free software: you can redistribute it and/or modify them
  under the terms of the GNU General Public License as published by the
  Free Software Foundation, either version 3 of the License, or (at your
  option) any later version.

  It is distributed in the hope that it will be useful, but WITHOUT
  ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
  FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License
  for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt. If not, see http://www.gnu.org/licenses.
*/

package spe

import (
	"errors"
	"math"
	"testing"

	"github.com/ausocean/utils/logging"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/ausocean/domcal/dom/fiterr"
)

// Parameters of the synthetic spectrum: a noise tail falling by e every
// 1/6 pC and a 1.6 pC photoelectron peak with a sigma of 0.4 pC.
var trueParams = []float64{3000, 6, 400, 1.6, 3.125}

const (
	nBins    = 100
	binWidth = 0.04 // pC.
)

// histogram returns a noiseless histogram of the model with parameters p.
func histogram(p []float64) (x, y []float64) {
	x = make([]float64, nBins)
	y = make([]float64, nBins)
	for i := range x {
		x[i] = float64(i) * binWidth
		y[i] = Value(x[i], p)
	}
	return x, y
}

func TestModelDerivatives(t *testing.T) {
	const h = 1e-6
	p := trueParams
	dyda := make([]float64, NumParams)
	for _, x := range []float64{0.1, 0.7, 1.6, 2.3} {
		y := Model{}.Eval(x, p, dyda)
		if !scalar.EqualWithinAbsOrRel(y, Value(x, p), 1e-12, 1e-12) {
			t.Errorf("Eval and Value differ at %v: %v, %v", x, y, Value(x, p))
		}

		// Jacobian against central differences.
		for j := range p {
			hi := append([]float64(nil), p...)
			lo := append([]float64(nil), p...)
			hi[j] += h
			lo[j] -= h
			want := (Value(x, hi) - Value(x, lo)) / (2 * h)
			if !scalar.EqualWithinAbsOrRel(dyda[j], want, 1e-4, 1e-5) {
				t.Errorf("did not get expected derivative %d at %v. Got: %v, Want: %v", j, x, dyda[j], want)
			}
		}

		// Derivatives in x against central differences.
		d1, d2 := Derivatives(x, p)
		wantD1 := (Value(x+h, p) - Value(x-h, p)) / (2 * h)
		wantD2 := (Value(x+1e-4, p) - 2*Value(x, p) + Value(x-1e-4, p)) / 1e-8
		if !scalar.EqualWithinAbsOrRel(d1, wantD1, 1e-4, 1e-5) {
			t.Errorf("did not get expected first derivative at %v. Got: %v, Want: %v", x, d1, wantD1)
		}
		if !scalar.EqualWithinAbsOrRel(d2, wantD2, 1e-2, 1e-3) {
			t.Errorf("did not get expected second derivative at %v. Got: %v, Want: %v", x, d2, wantD2)
		}
	}
}

func TestTrim(t *testing.T) {
	tests := []struct {
		name   string
		y      []float64
		lo, hi int
		err    error
	}{
		{
			name: "empty",
			y:    make([]float64, 10),
			err:  fiterr.ErrEmptyHistogram,
		},
		{
			name: "leading zeros",
			y:    []float64{0, 0, 50, 40, 30, 20, 30, 40, 30, 20, 10, 0},
			lo:   2,
			hi:   11,
		},
		{
			name: "small head",
			y:    []float64{5, 5, 100, 80, 60, 50, 60, 80, 60, 40, 20, 10},
			lo:   1,
			hi:   12,
		},
		{
			name: "head past middle",
			y:    []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1000, 1000, 1000, 1000, 1000},
			lo:   0,
			hi:   16,
		},
		{
			name: "too few bins",
			y:    []float64{0, 0, 10, 10, 10, 0, 0},
			lo:   2,
			hi:   5,
			err:  fiterr.ErrInsufficientData,
		},
	}

	for _, test := range tests {
		x := make([]float64, len(test.y))
		for i := range x {
			x[i] = float64(i)
		}
		lo, hi, err := Trim(x, test.y, DefaultHeadFrac, DefaultTailFrac)
		if !errors.Is(err, test.err) {
			t.Errorf("did not get expected error for %s. Got: %v, Want: %v", test.name, err, test.err)
			continue
		}
		if test.err == fiterr.ErrEmptyHistogram {
			continue
		}
		if lo != test.lo || hi != test.hi {
			t.Errorf("did not get expected range for %s. Got: [%d, %d), Want: [%d, %d)", test.name, lo, hi, test.lo, test.hi)
		}
	}
}

func TestInitialize(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{4, 2, 1, 3, 2}
	const mean = (0*4 + 1*2 + 2*1 + 3*3 + 4*2) / 12.0

	for profile := 0; profile < NumProfiles; profile++ {
		p, err := Initialize(x, y, profile)
		if err != nil {
			t.Fatalf("could not initialise profile %d: %v", profile, err)
		}
		for i, v := range p {
			if !(v > 0) {
				t.Errorf("profile %d parameter %d not positive: %v", profile, i, v)
			}
		}
		switch profile {
		case 0:
			if p[GausMean] != 3 || p[GausAmp] != 3 {
				t.Errorf("profile 0 not centred on tallest bin above mean: %v", p)
			}
			if !scalar.EqualWithinAbsOrRel(p[ExpDecay], math.Ln2, 1e-12, 1e-12) {
				t.Errorf("profile 0 decay not from first bins. Got: %v, Want: %v", p[ExpDecay], math.Ln2)
			}
		case 1:
			if !scalar.EqualWithinAbsOrRel(p[GausMean], mean, 1e-12, 1e-12) || !scalar.EqualWithinAbsOrRel(p[ExpDecay], mean/4, 1e-12, 1e-12) {
				t.Errorf("unexpected profile 1 parameters: %v", p)
			}
		case 2:
			if !scalar.EqualWithinAbsOrRel(p[GausMean], mean, 1e-12, 1e-12) || !scalar.EqualWithinAbsOrRel(p[ExpDecay], 4/mean, 1e-12, 1e-12) {
				t.Errorf("unexpected profile 2 parameters: %v", p)
			}
		}
	}

	_, err := Initialize(x, y, NumProfiles)
	if !errors.Is(err, fiterr.ErrDegenerate) {
		t.Errorf("did not get expected error for bad profile: %v", err)
	}
}

func TestFit(t *testing.T) {
	x, y := histogram(trueParams)

	o := DefaultOptions()
	o.Convergence.Log = (*logging.TestLogger)(t)
	r, err := Fit(x, y, o)
	if err != nil {
		t.Fatalf("could not fit spectrum: %v", err)
	}
	if !r.Converged {
		t.Errorf("result not marked converged")
	}
	for i, want := range trueParams {
		if !scalar.EqualWithinRel(r.Params[i], want, 1e-2) {
			t.Errorf("did not get expected parameter %d. Got: %v, Want: %v", i, r.Params[i], want)
		}
	}
	if r.Lo != 0 || r.Hi <= 40 || r.Hi > nBins {
		t.Errorf("unexpected fit range: [%d, %d)", r.Lo, r.Hi)
	}

	// Fitting again gives the same answer.
	again, err := Fit(x, y, DefaultOptions())
	if err != nil {
		t.Fatalf("could not refit spectrum: %v", err)
	}
	for i := range r.Params {
		if r.Params[i] != again.Params[i] {
			t.Errorf("parameter %d differs between fits: %v, %v", i, r.Params[i], again.Params[i])
		}
	}
}

func TestFitEmpty(t *testing.T) {
	x, _ := histogram(trueParams)
	r, err := Fit(x, make([]float64, len(x)), DefaultOptions())
	if !errors.Is(err, fiterr.ErrEmptyHistogram) || r != nil {
		t.Errorf("did not get expected result for empty histogram. Got: %v, %v", r, err)
	}
}

func TestFitBadWidth(t *testing.T) {
	x, y := histogram(trueParams)
	good, err := Fit(x, y, DefaultOptions())
	if err != nil {
		t.Fatalf("could not fit spectrum: %v", err)
	}

	// The same fit with the width limit just below the fitted E.
	o := DefaultOptions()
	o.MaxWidthParam = good.Params[GausWidth] * 0.99
	r, err := FitProfile(x, y, good.Profile, o)
	if !errors.Is(err, fiterr.ErrBadFit) {
		t.Fatalf("did not get expected error. Got: %v, Want: %v", err, fiterr.ErrBadFit)
	}
	if r == nil {
		t.Fatalf("expected result of last attempt")
	}
	if r.Params[GausWidth] != good.Params[GausWidth] {
		t.Errorf("width parameter differs from unrestricted fit. Got: %v, Want: %v", r.Params[GausWidth], good.Params[GausWidth])
	}
}

func TestFindValley(t *testing.T) {
	p := trueParams
	x, y, err := FindValley(p, DefaultValleyOptions())
	if err != nil {
		t.Fatalf("could not find valley: %v", err)
	}
	if x <= 0 || x >= p[GausMean] {
		t.Errorf("valley not between 0 and peak: %v", x)
	}
	if y >= Value(p[GausMean], p) || y >= Value(0, p) {
		t.Errorf("valley height %v not below peak %v and noise head %v", y, Value(p[GausMean], p), Value(0, p))
	}
	d1, d2 := Derivatives(x, p)
	if math.Abs(d1) >= DefaultValleyTol || d2 <= 0 {
		t.Errorf("valley is not a minimum: d1=%v d2=%v", d1, d2)
	}
	// Nearby points are higher.
	if Value(x-0.01, p) <= y || Value(x+0.01, p) <= y {
		t.Errorf("valley at %v is not a local minimum", x)
	}

	pv, err := PeakToValley(p, y)
	if err != nil || pv <= 1 {
		t.Errorf("unexpected peak to valley ratio: %v (%v)", pv, err)
	}
}

func TestFindValleyErrors(t *testing.T) {
	// Without a noticeable peak the spectrum falls monotonically, so any
	// minimum found lies beyond the peak centre.
	flat := []float64{3000, 6, 0.01, 1.6, 3.125}
	_, _, err := FindValley(flat, DefaultValleyOptions())
	if !errors.Is(err, fiterr.ErrValleyOutOfRange) && !errors.Is(err, fiterr.ErrValleyNoConvergence) {
		t.Errorf("did not get expected error for flat spectrum: %v", err)
	}

	o := DefaultValleyOptions()
	o.MaxIter = 0
	x, _, err := FindValley(trueParams, o)
	if !errors.Is(err, fiterr.ErrValleyNoConvergence) {
		t.Errorf("did not get expected error with no iterations. Got: %v", err)
	}
	if x <= 0 || x >= trueParams[GausMean] {
		t.Errorf("coarse valley estimate out of range: %v", x)
	}
}

func TestGain(t *testing.T) {
	got := Gain(trueParams)
	want := 1.6e-12 / ElectronCharge
	if !scalar.EqualWithinRel(got, want, 1e-12) {
		t.Errorf("did not get expected gain. Got: %v, Want: %v", got, want)
	}
}

func TestFitGainVsHV(t *testing.T) {
	const (
		slope     = 7.5
		intercept = -17.3
	)
	var hv, gain []float64
	for v := 1100.0; v <= 1900; v += 100 {
		hv = append(hv, v)
		gain = append(gain, math.Pow(10, slope*math.Log10(v)+intercept))
	}
	gain[3] *= 3 // Outlier.

	valid := make([]bool, len(hv))
	for i := range valid {
		valid[i] = true
	}
	f, n, err := FitGainVsHV(hv, gain, valid)
	if err != nil {
		t.Fatalf("could not fit gain: %v", err)
	}
	if n != len(hv)-1 || valid[3] {
		t.Errorf("outlier not removed: n=%d valid=%v", n, valid)
	}
	if !scalar.EqualWithinAbsOrRel(f.Slope, slope, 1e-9, 1e-9) || !scalar.EqualWithinAbsOrRel(f.Intercept, intercept, 1e-9, 1e-9) {
		t.Errorf("did not get expected fit. Got: %+v", f)
	}

	want := math.Pow(10, (7-intercept)/slope)
	if got := HVForGain(f, 1e7); !scalar.EqualWithinRel(got, want, 1e-9) {
		t.Errorf("did not get expected voltage for 1e7 gain. Got: %v, Want: %v", got, want)
	}
}
