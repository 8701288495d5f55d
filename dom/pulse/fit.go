/*
DESCRIPTION
  fit.go provides starting parameter estimation and fitting of pulse shapes
  to digitized waveforms.

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

package pulse

import (
	"fmt"

	"github.com/ausocean/domcal/dom/fiterr"
	"github.com/ausocean/domcal/dom/lmfit"
	"github.com/ausocean/domcal/dom/stats"
)

// Guess configuration.
const (
	thresholdFrac = 0.1 // Fraction of the maximum marking the leading edge.
	minPoints     = 2
)

// Options holds the settings of a pulse fit.
type Options struct {
	Convergence lmfit.Convergence `yaml:"convergence"`
	Sigma       float64           `yaml:"sigma"` // Error of each sample.
}

// DefaultOptions returns the options used for timing calibration.
func DefaultOptions() Options {
	return Options{Convergence: lmfit.DefaultConvergence(), Sigma: 1}
}

// Result holds the outcome of a pulse fit.
type Result struct {
	lmfit.Result
	Shape Shape
}

// LeadingEdge returns the fitted pulse offset.
func (r *Result) LeadingEdge() float64 { return r.Params[Offset] }

// Guess returns starting parameters for fitting shape s to the samples x, y
// in [start, end). The offset is taken from the first sample above a tenth
// of the maximum, less one sample where possible, and the amplitude from the
// area of the samples from there until the pulse falls back below that
// threshold.
func Guess(x, y []float64, start, end int, s Shape) ([]float64, error) {
	if err := checkRange(x, y, start, end); err != nil {
		return nil, err
	}

	peak := start
	for i := start + 1; i < end; i++ {
		if y[i] > y[peak] {
			peak = i
		}
	}
	if !(y[peak] > 0) {
		return nil, fmt.Errorf("no pulse in samples [%d, %d): %w", start, end, fiterr.ErrInsufficientData)
	}
	thresh := thresholdFrac * y[peak]

	edge := start
	for y[edge] <= thresh {
		edge++
	}
	if edge > start {
		edge--
	}

	var area float64
	for i := edge; i < end; i++ {
		if i > edge && y[i] < thresh {
			break
		}
		area += y[i] * sampleWidth(x, i)
	}

	p := make([]float64, NumParams)
	p[Amp] = area / s.Integral()
	p[Offset] = x[edge]
	return p, nil
}

// Fit fits shape s to the samples x, y in [start, end), starting from the
// parameters given by Guess. Every sample has the error o.Sigma, or one if
// o.Sigma is not positive. A fit that converges to a non-positive amplitude
// returns fiterr.ErrBadFit.
func Fit(x, y []float64, start, end int, s Shape, o Options) (*Result, error) {
	init, err := Guess(x, y, start, end, s)
	if err != nil {
		return nil, err
	}

	sd := o.Sigma
	if !(sd > 0) {
		sd = 1
	}
	sigma := make([]float64, end-start)
	for i := range sigma {
		sigma[i] = sd
	}

	r, err := lmfit.Run(x[start:end], y[start:end], sigma, s.Model(), init, o.Convergence)
	if r == nil {
		return nil, err
	}
	res := &Result{Result: *r, Shape: s}
	if err != nil {
		return res, err
	}
	if res.Params[Amp] <= 0 {
		return res, fmt.Errorf("amplitude %v: %w", res.Params[Amp], fiterr.ErrBadFit)
	}
	return res, nil
}

// Baseline returns the median of the first n samples of y, or of all of them
// if there are fewer.
func Baseline(y []float64, n int) float64 {
	if n < 0 {
		n = 0
	}
	if n > len(y) {
		n = len(y)
	}
	return stats.Median(y[:n])
}

func checkRange(x, y []float64, start, end int) error {
	if len(x) != len(y) {
		return fmt.Errorf("x and y lengths differ (%d, %d): %w", len(x), len(y), fiterr.ErrDegenerate)
	}
	if start < 0 || end > len(x) {
		return fmt.Errorf("samples [%d, %d) outside waveform of %d: %w", start, end, len(x), fiterr.ErrDegenerate)
	}
	if end-start < minPoints {
		return fmt.Errorf("%d samples: %w", end-start, fiterr.ErrInsufficientData)
	}
	return nil
}

// sampleWidth returns the spacing of the samples around x[i].
func sampleWidth(x []float64, i int) float64 {
	if i+1 < len(x) {
		return x[i+1] - x[i]
	}
	return x[i] - x[i-1]
}
