/*
DESCRIPTION
  poly.go provides functions for fitting a polynomial to a dataset.

AUTHORS
  Alex Arends <alex@ausocean.org>
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2021-2026 the Australian Ocean Lab (AusOcean)

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

// Poly fits a polynomial of degree to the data provided in x and y using a QR
// decomposition of the Vandermonde matrix. The coefficients are returned in
// ascending power order.
func Poly(x, y []float64, degree int) ([]float64, error) {
	if degree < 0 || len(x) != len(y) || len(x) < degree+1 {
		return nil, fmt.Errorf("cannot fit degree %d to %d points: %w", degree, len(x), fiterr.ErrDegenerate)
	}

	a := vandermonde(x, degree)
	b := mat.NewVecDense(len(y), y)
	c := mat.NewVecDense(degree+1, nil)

	qr := new(mat.QR)
	qr.Factorize(a)

	err := qr.SolveVecTo(c, false, b)
	if err != nil {
		return nil, fmt.Errorf("could not solve QR: %v: %w", err, fiterr.ErrDegenerate)
	}

	coeffs := make([]float64, degree+1)
	for i := range coeffs {
		coeffs[i] = c.AtVec(i)
	}
	return coeffs, nil
}

// PolyEval returns the value at x of the polynomial with coefficients c in
// ascending power order.
func PolyEval(c []float64, x float64) float64 {
	var v float64
	for j := len(c) - 1; j >= 0; j-- {
		v = v*x + c[j]
	}
	return v
}

// vandermonde calculates the vandermonde matrix for set a and the given degree.
func vandermonde(a []float64, degree int) *mat.Dense {
	x := mat.NewDense(len(a), degree+1, nil)
	for i := range a {
		for j, p := 0, 1.0; j <= degree; j, p = j+1, p*a[i] {
			x.Set(i, j, p)
		}
	}
	return x
}
