/*
DESCRIPTION
  valley.go provides location of the valley between the noise and the
  photoelectron peak of a fitted SPE spectrum.

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
)

// Valley search defaults.
const (
	DefaultValleySteps   = 50
	DefaultValleyMaxIter = 100
	DefaultValleyTol     = 1e-3
	DefaultValleyLowFrac = -0.05
)

// ValleyOptions holds the settings of the valley search.
type ValleyOptions struct {
	Steps   int     `yaml:"steps"`    // Coarse scan steps between 0 and the peak.
	MaxIter int     `yaml:"max_iter"` // Newton-Raphson iteration limit.
	Tol     float64 `yaml:"tol"`      // Largest |first derivative| accepted as a minimum.
	LowFrac float64 `yaml:"low_frac"` // Lowest valley position as a fraction of the peak position.
}

// DefaultValleyOptions returns the default valley search settings.
func DefaultValleyOptions() ValleyOptions {
	return ValleyOptions{
		Steps:   DefaultValleySteps,
		MaxIter: DefaultValleyMaxIter,
		Tol:     DefaultValleyTol,
		LowFrac: DefaultValleyLowFrac,
	}
}

// FindValley returns the position and height of the first minimum of the
// fitted spectrum below the peak centre. A coarse scan down from the peak
// finds a starting point, which is refined by Newton-Raphson iteration on the
// first derivative.
//
// The position and height are returned even on error. If the iteration does
// not converge fiterr.ErrValleyNoConvergence is returned, and if the valley is
// not between LowFrac times the peak position and the peak position
// fiterr.ErrValleyOutOfRange is returned.
func FindValley(p []float64, o ValleyOptions) (x, y float64, err error) {
	if len(p) != NumParams {
		return 0, 0, fmt.Errorf("have %d parameters, want %d: %w", len(p), NumParams, fiterr.ErrDegenerate)
	}
	peak := p[GausMean]

	steps := o.Steps
	if steps < 1 {
		steps = 1
	}
	step := peak / float64(steps)
	x = peak
	for k := 1; k <= steps; k++ {
		next := peak - float64(k)*step
		if Value(next, p) > Value(x, p) {
			break
		}
		x = next
	}

	var converged bool
	for iter := 0; ; iter++ {
		d1, d2 := Derivatives(x, p)
		converged = math.Abs(d1) < o.Tol
		if converged || iter >= o.MaxIter || d2 == 0 || math.IsNaN(d1) {
			break
		}
		x -= d1 / d2
	}
	y = Value(x, p)

	if x < o.LowFrac*peak || x > peak {
		return x, y, fmt.Errorf("valley at %v, peak at %v: %w", x, peak, fiterr.ErrValleyOutOfRange)
	}
	if !converged {
		return x, y, fiterr.ErrValleyNoConvergence
	}
	return x, y, nil
}
