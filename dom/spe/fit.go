/*
DESCRIPTION
  fit.go provides fitting of the SPE model to a charge histogram, including
  trimming of the histogram tails and starting parameter estimation.

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
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ausocean/domcal/dom/fiterr"
	"github.com/ausocean/domcal/dom/lmfit"
	"github.com/ausocean/domcal/dom/stats"
)

// Fit configuration defaults.
const (
	DefaultHeadFrac      = 0.015 // Fraction of counts treated as the noise head.
	DefaultTailFrac      = 0.005 // Fraction of counts treated as the high charge tail.
	DefaultMaxWidthParam = 5000  // Largest accepted E; sigma of about 0.01 pC.
)

// NumProfiles is the number of starting parameter profiles tried by Fit.
const NumProfiles = 3

// Options holds the settings of an SPE fit.
type Options struct {
	Convergence   lmfit.Convergence `yaml:"convergence"`
	HeadFrac      float64           `yaml:"head_frac"`
	TailFrac      float64           `yaml:"tail_frac"`
	MaxWidthParam float64           `yaml:"max_width_param"`
	Valley        ValleyOptions     `yaml:"valley"`
}

// DefaultOptions returns the options used for DOM gain calibration.
func DefaultOptions() Options {
	return Options{
		Convergence:   lmfit.DefaultConvergence(),
		HeadFrac:      DefaultHeadFrac,
		TailFrac:      DefaultTailFrac,
		MaxWidthParam: DefaultMaxWidthParam,
		Valley:        DefaultValleyOptions(),
	}
}

// Result holds the outcome of an SPE fit. Lo and Hi give the histogram bins
// [Lo, Hi) that were fitted.
type Result struct {
	lmfit.Result
	Profile int
	Lo, Hi  int
}

// Trim returns the range of bins [lo, hi) of the histogram x, y to fit.
// Leading empty bins are skipped. lo is the first bin at which the
// cumulative count exceeds headFrac of the total, unless that bin is past the
// middle of the histogram, in which case it is the first non-empty bin. hi
// excludes the high charge bins holding the last tailFrac of the counts.
func Trim(x, y []float64, headFrac, tailFrac float64) (lo, hi int, err error) {
	if len(x) != len(y) {
		return 0, 0, fmt.Errorf("x and y lengths differ (%d, %d): %w", len(x), len(y), fiterr.ErrDegenerate)
	}

	first := -1
	for i, v := range y {
		if v > 0 {
			first = i
			break
		}
	}
	if first == -1 {
		return 0, 0, fiterr.ErrEmptyHistogram
	}
	total := floats.Sum(y[first:])

	var cum float64
	lo = first
	for i := first; i < len(y); i++ {
		cum += y[i]
		if cum > headFrac*total {
			lo = i
			break
		}
	}
	if lo > len(y)/2 {
		lo = first
	}

	cum = floats.Sum(y[first:lo])
	hi = len(y)
	for i := lo; i < len(y); i++ {
		cum += y[i]
		if cum >= (1-tailFrac)*total {
			hi = i + 1
			break
		}
	}

	if hi-lo < NumParams {
		return lo, hi, fmt.Errorf("%d bins left after trimming: %w", hi-lo, fiterr.ErrInsufficientData)
	}
	return lo, hi, nil
}

// Initialize returns starting parameters for fitting the histogram x, y
// using the given profile. The Gaussian is seeded from the mean and variance
// of the charges in the histogram, and the noise amplitude from the first
// bin. Profile 0 centres the Gaussian on the tallest bin above the mean and
// takes the noise decay from the first two bins; profiles 1 and 2 centre it
// on the mean with a slow and a fast noise decay respectively.
func Initialize(x, y []float64, profile int) ([]float64, error) {
	if profile < 0 || profile >= NumProfiles {
		return nil, fmt.Errorf("no profile %d: %w", profile, fiterr.ErrDegenerate)
	}
	if len(x) < 2 || len(x) != len(y) {
		return nil, fmt.Errorf("%d bins: %w", len(x), fiterr.ErrInsufficientData)
	}

	mean, variance := stats.WeightedMeanVariance(x, y)
	if !(mean > 0) || !(variance > 0) {
		return nil, fmt.Errorf("mean %v, variance %v: %w", mean, variance, fiterr.ErrInsufficientData)
	}

	p := make([]float64, NumParams)
	p[GausAmp] = y[0]
	p[GausMean] = mean
	p[GausWidth] = 1 / (2 * variance)

	switch profile {
	case 0:
		p[ExpDecay] = 4 / mean
		if y[0] > y[1] && y[1] > 0 {
			p[ExpDecay] = math.Log(y[0]/y[1]) / (x[1] - x[0])
		}
		peak := -1
		for i := range x {
			if x[i] >= mean && (peak == -1 || y[i] > y[peak]) {
				peak = i
			}
		}
		if peak != -1 {
			p[GausMean] = x[peak]
			p[GausAmp] = y[peak]
		}
	case 1:
		p[ExpDecay] = mean / 4
	case 2:
		p[ExpDecay] = 4 / mean
	}
	p[ExpAmp] = y[0] * math.Exp(p[ExpDecay]*x[0])
	return p, nil
}

// FitProfile fits the SPE model to the histogram x, y starting from the
// given profile. Each bin is weighted by its Poisson error, floored at one.
//
// A fit that converges with a non-positive parameter, a peak outside the
// fitted range or a peak narrower than allowed by o.MaxWidthParam returns
// fiterr.ErrBadFit. The Result holds the final parameters whenever the fit
// was attempted.
func FitProfile(x, y []float64, profile int, o Options) (*Result, error) {
	lo, hi, err := Trim(x, y, o.HeadFrac, o.TailFrac)
	if err != nil {
		return nil, err
	}
	xs, ys := x[lo:hi], y[lo:hi]

	init, err := Initialize(xs, ys, profile)
	if err != nil {
		return nil, err
	}

	sigma := make([]float64, len(ys))
	for i, v := range ys {
		sigma[i] = math.Max(1, math.Sqrt(v))
	}

	r, err := lmfit.Run(xs, ys, sigma, Model{}, init, o.Convergence)
	if r == nil {
		return nil, err
	}
	res := &Result{Result: *r, Profile: profile, Lo: lo, Hi: hi}
	if err != nil {
		return res, err
	}

	p := res.Params
	for i, v := range p {
		if v <= 0 {
			return res, fmt.Errorf("parameter %d is %v: %w", i, v, fiterr.ErrBadFit)
		}
	}
	if p[GausMean] < xs[0] || p[GausMean] > xs[len(xs)-1] {
		return res, fmt.Errorf("peak %v outside fitted range [%v, %v]: %w", p[GausMean], xs[0], xs[len(xs)-1], fiterr.ErrBadFit)
	}
	if p[GausWidth] > o.MaxWidthParam {
		return res, fmt.Errorf("peak width parameter %v above %v: %w", p[GausWidth], o.MaxWidthParam, fiterr.ErrBadFit)
	}
	return res, nil
}

// Fit fits the SPE model to the histogram x, y, trying each starting profile
// in turn until one succeeds. If none do, the result and error of the last
// attempt are returned. Errors caused by the histogram itself, such as an
// empty histogram, are returned without trying further profiles.
func Fit(x, y []float64, o Options) (*Result, error) {
	var (
		r   *Result
		err error
	)
	for profile := 0; profile < NumProfiles; profile++ {
		r, err = FitProfile(x, y, profile, o)
		switch {
		case err == nil:
			return r, nil
		case errors.Is(err, fiterr.ErrEmptyHistogram),
			errors.Is(err, fiterr.ErrInsufficientData),
			errors.Is(err, fiterr.ErrDegenerate):
			return r, err
		}
		if o.Convergence.Log != nil {
			o.Convergence.Log.Debug("spe profile failed", "profile", profile, "error", err)
		}
	}
	return r, fmt.Errorf("could not fit with any of %d profiles: %w", NumProfiles, err)
}
