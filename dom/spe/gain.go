/*
DESCRIPTION
  gain.go provides quantities derived from SPE fits: PMT gain, the peak to
  valley ratio and the dependence of gain on high voltage.

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
	"fmt"
	"math"

	"github.com/ausocean/domcal/dom/fiterr"
	"github.com/ausocean/domcal/dom/regression"
)

// ElectronCharge is the elementary charge in coulombs.
const ElectronCharge = 1.602e-19

// Gain vs. high voltage fit configuration.
const (
	GainMinR2       = 0.99
	GainMinR2Points = 4
	picocoulomb     = 1e-12
)

// Gain returns the PMT gain given by the fitted SPE peak, assuming charges
// are in picocoulombs.
func Gain(p []float64) float64 {
	return p[GausMean] * picocoulomb / ElectronCharge
}

// PeakToValley returns the ratio of the fitted spectrum at the peak centre
// to the valley height.
func PeakToValley(p []float64, valleyY float64) (float64, error) {
	if !(valleyY > 0) {
		return 0, fmt.Errorf("valley height %v: %w", valleyY, fiterr.ErrValleyOutOfRange)
	}
	return Value(p[GausMean], p) / valleyY, nil
}

// FitGainVsHV fits log10(gain) against log10(hv) for the points marked in
// valid (all points if valid is nil), refining the fit by discarding outliers
// until the R-squared value reaches GainMinR2 or only GainMinR2Points remain.
// Points with a non-positive gain or voltage are discarded up front. valid is
// updated in place and the number of points used is returned.
func FitGainVsHV(hv, gain []float64, valid []bool) (regression.LinearFit, int, error) {
	if len(hv) != len(gain) || (valid != nil && len(valid) != len(hv)) {
		return regression.LinearFit{}, 0, fmt.Errorf("input lengths differ: %w", fiterr.ErrDegenerate)
	}
	if valid == nil {
		valid = make([]bool, len(hv))
		for i := range valid {
			valid[i] = true
		}
	}

	lx := make([]float64, len(hv))
	ly := make([]float64, len(hv))
	var xs, ys []float64
	for i := range hv {
		if hv[i] <= 0 || gain[i] <= 0 {
			valid[i] = false
		}
		if !valid[i] {
			continue
		}
		lx[i], ly[i] = math.Log10(hv[i]), math.Log10(gain[i])
		xs = append(xs, lx[i])
		ys = append(ys, ly[i])
	}

	f, err := regression.Linear(xs, ys)
	if err != nil {
		return f, len(xs), fmt.Errorf("could not fit gain: %w", err)
	}
	return regression.Refine(lx, ly, valid, f, GainMinR2, GainMinR2Points)
}

// HVForGain returns the voltage at which a log-log gain fit reaches gain.
func HVForGain(f regression.LinearFit, gain float64) float64 {
	return math.Pow(10, (math.Log10(gain)-f.Intercept)/f.Slope)
}
