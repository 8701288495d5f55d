/*
DESCRIPTION
  gaussjordan.go provides Gauss-Jordan elimination with full pivoting, used
  to solve the damped normal equations of each Levenberg-Marquardt step.

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

package lmfit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/domcal/dom/fiterr"
)

// GaussJordan solves a*x = b by Gauss-Jordan elimination with full pivoting.
// a must be square and b must have as many rows as a; b may have any number
// of columns. On success a is replaced by its inverse and b by the solutions.
// If a column is pivoted twice, or a pivot is zero or not finite,
// fiterr.ErrSingular is returned and the contents of a and b are undefined.
func GaussJordan(a, b *mat.Dense) error {
	n, c := a.Dims()
	if n != c {
		return fmt.Errorf("matrix is %dx%d, not square: %w", n, c, fiterr.ErrDegenerate)
	}
	br, m := b.Dims()
	if br != n {
		return fmt.Errorf("solution set has %d rows, want %d: %w", br, n, fiterr.ErrDegenerate)
	}

	rowIdx := make([]int, n)
	colIdx := make([]int, n)
	pivoted := make([]int, n)

	for i := 0; i < n; i++ {
		// Find the largest remaining element to pivot on.
		var big float64
		row, col := 0, 0
		for j := 0; j < n; j++ {
			if pivoted[j] == 1 {
				continue
			}
			for k := 0; k < n; k++ {
				switch {
				case pivoted[k] == 0:
					if v := math.Abs(a.At(j, k)); v >= big {
						big = v
						row, col = j, k
					}
				case pivoted[k] > 1:
					return fiterr.ErrSingular
				}
			}
		}
		pivoted[col]++

		// Move the pivot onto the diagonal.
		if row != col {
			swapRows(a, row, col)
			swapRows(b, row, col)
		}
		rowIdx[i], colIdx[i] = row, col

		piv := a.At(col, col)
		if piv == 0 || math.IsNaN(piv) || math.IsInf(piv, 0) {
			return fiterr.ErrSingular
		}
		inv := 1 / piv
		a.Set(col, col, 1)
		scaleRow(a, col, inv)
		scaleRow(b, col, inv)

		// Reduce all other rows.
		for j := 0; j < n; j++ {
			if j == col {
				continue
			}
			f := a.At(j, col)
			a.Set(j, col, 0)
			for k := 0; k < n; k++ {
				a.Set(j, k, a.At(j, k)-a.At(col, k)*f)
			}
			for k := 0; k < m; k++ {
				b.Set(j, k, b.At(j, k)-b.At(col, k)*f)
			}
		}
	}

	// Undo the column interchanges in reverse order.
	for i := n - 1; i >= 0; i-- {
		if rowIdx[i] == colIdx[i] {
			continue
		}
		for j := 0; j < n; j++ {
			u, v := a.At(j, rowIdx[i]), a.At(j, colIdx[i])
			a.Set(j, rowIdx[i], v)
			a.Set(j, colIdx[i], u)
		}
	}
	return nil
}

func swapRows(m *mat.Dense, i, j int) {
	ri, rj := m.RawRowView(i), m.RawRowView(j)
	for k := range ri {
		ri[k], rj[k] = rj[k], ri[k]
	}
}

func scaleRow(m *mat.Dense, i int, f float64) {
	r := m.RawRowView(i)
	for k := range r {
		r[k] *= f
	}
}
