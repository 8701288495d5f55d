/*
DESCRIPTION
  quadratic.go provides a closed form least squares parabola fit.

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

package regression

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/domcal/dom/fiterr"
)

// QuadraticFit holds the coefficients of C0 + C1*x + C2*x^2 and the
// R-squared value of the fit.
type QuadraticFit struct {
	C0, C1, C2, RSquared float64
}

// Eval returns the value of the parabola at x.
func (f QuadraticFit) Eval(x float64) float64 {
	return f.C0 + (f.C1+f.C2*x)*x
}

// Quadratic fits a parabola to the points given by x and y. The normal
// equations are formed from the power sums of x up to x^4 and solved by
// Cramer's rule. At least three distinct x values are required.
//
// RSquared is the usual 1 - SS_res/SS_tot. Historical calibration records
// used a different formula, see LegacyQuadraticRSquared.
func Quadratic(x, y []float64) (QuadraticFit, error) {
	if len(x) != len(y) {
		return QuadraticFit{}, fmt.Errorf("x and y lengths differ (%d, %d): %w", len(x), len(y), fiterr.ErrDegenerate)
	}
	distinct := make(map[float64]struct{}, len(x))
	for _, v := range x {
		distinct[v] = struct{}{}
	}
	if len(distinct) < 3 {
		return QuadraticFit{}, fmt.Errorf("need at least 3 distinct x values, have %d: %w", len(distinct), fiterr.ErrDegenerate)
	}

	var s [5]float64 // Sums of x^k.
	var t [3]float64 // Sums of y*x^k.
	for i := range x {
		p := 1.0
		for k := 0; k < 5; k++ {
			s[k] += p
			if k < 3 {
				t[k] += y[i] * p
			}
			p *= x[i]
		}
	}

	m := mat.NewDense(3, 3, []float64{
		s[0], s[1], s[2],
		s[1], s[2], s[3],
		s[2], s[3], s[4],
	})
	det := mat.Det(m)
	if det == 0 {
		return QuadraticFit{}, fmt.Errorf("normal matrix is singular: %w", fiterr.ErrDegenerate)
	}

	var c [3]float64
	mi := mat.NewDense(3, 3, nil)
	for j := range c {
		mi.Copy(m)
		mi.SetCol(j, t[:])
		c[j] = mat.Det(mi) / det
	}

	f := QuadraticFit{C0: c[0], C1: c[1], C2: c[2]}

	mean := t[0] / s[0]
	var ssRes, ssTot float64
	for i := range x {
		r := y[i] - f.Eval(x[i])
		d := y[i] - mean
		ssRes += r * r
		ssTot += d * d
	}
	if ssTot == 0 {
		f.RSquared = 1
	} else {
		f.RSquared = 1 - ssRes/ssTot
	}
	return f, nil
}

// LegacyQuadraticRSquared returns the R-squared value that historical
// calibration records hold for a quadratic fit. It measures the fitted values
// against the mean of y rather than against y itself, so it is not the
// coefficient of determination; it exists only for comparison with old
// records.
func LegacyQuadraticRSquared(x, y []float64, f QuadraticFit) float64 {
	if len(x) == 0 || len(x) != len(y) {
		return 0
	}
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))

	var ssRes, ssTot float64
	for i := range x {
		r := mean - f.Eval(x[i])
		d := y[i] - mean
		ssRes += r * r
		ssTot += d * d
	}
	if ssTot == 0 {
		return 1
	}
	return 1 - ssRes/ssTot
}
