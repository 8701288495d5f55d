/*
DESCRIPTION
  linear.go provides a closed form least squares line fit, and an iterative
  refinement that discards the worst outliers until a fit is good enough.

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

// Package regression provides the closed form least squares fits used by
// calibration routines: straight lines, parabolas and general polynomials.
package regression

import (
	"fmt"
	"math"

	"github.com/ausocean/domcal/dom/fiterr"
)

// LinearFit holds the result of a straight line fit.
type LinearFit struct {
	Slope, Intercept, RSquared float64
}

// Eval returns the value of the line at x.
func (f LinearFit) Eval(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// Linear fits a straight line to the points given by x and y using ordinary
// least squares. At least two points with differing x values are required,
// otherwise fiterr.ErrDegenerate is returned.
func Linear(x, y []float64) (LinearFit, error) {
	if len(x) != len(y) {
		return LinearFit{}, fmt.Errorf("x and y lengths differ (%d, %d): %w", len(x), len(y), fiterr.ErrDegenerate)
	}
	if len(x) < 2 {
		return LinearFit{}, fmt.Errorf("need at least 2 points, have %d: %w", len(x), fiterr.ErrDegenerate)
	}

	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i := range x {
		sumX += x[i]
		sumXX += x[i] * x[i]
		sumY += y[i]
		sumYY += y[i] * y[i]
		sumXY += x[i] * y[i]
	}
	n := float64(len(x))

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return LinearFit{}, fmt.Errorf("all x values identical: %w", fiterr.ErrDegenerate)
	}

	num := n*sumXY - sumX*sumY
	f := LinearFit{
		Slope:     num / denom,
		Intercept: (sumXX*sumY - sumX*sumXY) / denom,
	}

	// A constant y is described exactly by a flat line.
	yDenom := n*sumYY - sumY*sumY
	if yDenom == 0 {
		f.RSquared = 1
	} else {
		f.RSquared = num * f.Slope / yDenom
	}
	return f, nil
}

// Refine improves fit by repeatedly discarding the valid point with the
// largest absolute residual and refitting, while the R-squared value is below
// minR2 and more than minPoints points remain valid.
//
// valid marks which points of x and y take part in the fit and is updated in
// place; if nil, all points start valid. The returned int is the number of
// points still valid. On equal residuals the lowest index is discarded.
func Refine(x, y []float64, valid []bool, fit LinearFit, minR2 float64, minPoints int) (LinearFit, int, error) {
	if len(x) != len(y) {
		return fit, 0, fmt.Errorf("x and y lengths differ (%d, %d): %w", len(x), len(y), fiterr.ErrDegenerate)
	}
	if valid == nil {
		valid = make([]bool, len(x))
		for i := range valid {
			valid[i] = true
		}
	}
	if len(valid) != len(x) {
		return fit, 0, fmt.Errorf("mask length %d does not match %d points: %w", len(valid), len(x), fiterr.ErrDegenerate)
	}

	var n int
	for _, v := range valid {
		if v {
			n++
		}
	}

	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for fit.RSquared < minR2 && n > minPoints && n > 0 {
		worst := -1
		var worstRes float64
		for i := range x {
			if !valid[i] {
				continue
			}
			res := math.Abs(fit.Eval(x[i]) - y[i])
			if worst == -1 || res > worstRes {
				worst, worstRes = i, res
			}
		}
		valid[worst] = false
		n--

		xs, ys = xs[:0], ys[:0]
		for i := range x {
			if valid[i] {
				xs = append(xs, x[i])
				ys = append(ys, y[i])
			}
		}

		f, err := Linear(xs, ys)
		if err != nil {
			return fit, n, fmt.Errorf("could not refit after discarding point %d: %w", worst, err)
		}
		fit = f
	}
	return fit, n, nil
}
