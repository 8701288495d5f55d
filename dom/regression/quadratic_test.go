/*
DESCRIPTION
  quadratic_test.go provides testing for functionality in quadratic.go and
  poly.go.

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
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/ausocean/domcal/dom/fiterr"
)

func TestQuadraticExact(t *testing.T) {
	tests := []struct {
		x []float64
	}{
		{x: []float64{0, 1, 2, 3}},
		{x: []float64{-3, -1, 0.5, 2, 10}},
		{x: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2}},
	}

	for i, test := range tests {
		y := make([]float64, len(test.x))
		for j, v := range test.x {
			y[j] = v * v
		}
		f, err := Quadratic(test.x, y)
		if err != nil {
			t.Fatalf("could not fit parabola for test %d: %v", i, err)
		}
		const qtol = 1e-6
		if !scalar.EqualWithinAbs(f.C0, 0, qtol*100) || !scalar.EqualWithinAbs(f.C1, 0, qtol) || !scalar.EqualWithinAbsOrRel(f.C2, 1, qtol, qtol) {
			t.Errorf("did not get expected coefficients for test %d. Got: %+v", i, f)
		}
		if !scalar.EqualWithinAbsOrRel(f.RSquared, 1, qtol, qtol) {
			t.Errorf("did not get expected r-squared for test %d. Got: %v", i, f.RSquared)
		}
	}
}

// TestQuadraticMatchesPoly checks that the closed form fit agrees with a
// QR least squares fit on noisy data.
func TestQuadraticMatchesPoly(t *testing.T) {
	x := []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4}
	y := []float64{1.1, 1.4, 2.2, 2.9, 4.2, 5.6, 7.1, 8.8, 11.2}

	f, err := Quadratic(x, y)
	if err != nil {
		t.Fatalf("could not fit parabola: %v", err)
	}
	c, err := Poly(x, y, 2)
	if err != nil {
		t.Fatalf("could not fit polynomial: %v", err)
	}

	got := []float64{f.C0, f.C1, f.C2}
	for i := range c {
		if !scalar.EqualWithinAbsOrRel(got[i], c[i], 1e-9, 1e-9) {
			t.Errorf("coefficient %d differs. Got: %v, Want: %v", i, got[i], c[i])
		}
	}
	for i := range x {
		if !scalar.EqualWithinAbsOrRel(f.Eval(x[i]), PolyEval(c, x[i]), 1e-9, 1e-9) {
			t.Errorf("fitted values differ at %v", x[i])
		}
	}
	if f.RSquared <= 0.99 || f.RSquared > 1 {
		t.Errorf("unexpected r-squared: %v", f.RSquared)
	}
}

// TestLegacyRSquared documents that the historical r-squared formula differs
// from the coefficient of determination. For a least squares fit the sum of
// squares about the mean splits into explained and residual parts, so the
// legacy value is SS_res/SS_tot while the standard value is 1 - SS_res/SS_tot.
func TestLegacyRSquared(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5}
	y := []float64{0.2, 0.7, 4.3, 8.8, 16.5, 24.6}

	f, err := Quadratic(x, y)
	if err != nil {
		t.Fatalf("could not fit parabola: %v", err)
	}
	legacy := LegacyQuadraticRSquared(x, y, f)
	if !scalar.EqualWithinAbsOrRel(legacy, 1-f.RSquared, 1e-9, 1e-9) {
		t.Errorf("did not get expected legacy r-squared. Got: %v, Want: %v", legacy, 1-f.RSquared)
	}
	if scalar.EqualWithinAbs(legacy, f.RSquared, 1e-3) {
		t.Errorf("legacy and standard r-squared unexpectedly agree: %v", legacy)
	}
}

func TestQuadraticDegenerate(t *testing.T) {
	tests := []struct {
		x, y []float64
	}{
		{x: []float64{1, 2}, y: []float64{1, 4}},
		{x: []float64{1, 1, 2, 2}, y: []float64{1, 1, 4, 4}},
		{x: []float64{1, 2, 3}, y: []float64{1, 4}},
	}

	for i, test := range tests {
		_, err := Quadratic(test.x, test.y)
		if !errors.Is(err, fiterr.ErrDegenerate) {
			t.Errorf("did not get expected error for test %d. Got: %v, Want: %v", i, err, fiterr.ErrDegenerate)
		}
	}
}

func TestPoly(t *testing.T) {
	x := []float64{-2, -1, 0, 1, 2, 3}
	want := []float64{1, -2, 0.5, 0.25}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = PolyEval(want, v)
	}

	c, err := Poly(x, y, 3)
	if err != nil {
		t.Fatalf("could not fit polynomial: %v", err)
	}
	for i := range want {
		if !scalar.EqualWithinAbsOrRel(c[i], want[i], 1e-9, 1e-9) {
			t.Errorf("did not get expected coefficient %d. Got: %v, Want: %v", i, c[i], want[i])
		}
	}

	_, err = Poly(x[:3], y[:3], 3)
	if !errors.Is(err, fiterr.ErrDegenerate) {
		t.Errorf("did not get expected error for too few points. Got: %v", err)
	}
}
