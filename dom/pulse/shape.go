/*
DESCRIPTION
  shape.go provides the pulse shapes of the PMT front-end digitizers and the
  model used to fit them.

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

// Package pulse fits digitized PMT pulses to find their leading edge. A
// pulse is modelled as A*(exp(-(x-x0)/tau1) + exp((x-x0)/tau2))^-8, with
// the rise and fall times tau1 and tau2 fixed by the digitizer and its
// coupling toroid.
package pulse

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"

	"github.com/ausocean/domcal/dom/fiterr"
	"github.com/ausocean/domcal/dom/lmfit"
)

// NumParams is the number of parameters of a pulse fit.
const NumParams = 2

// Parameter indices.
const (
	Amp = iota
	Offset
)

// power is the (negative) exponent of the pulse shape.
const power = 8

// Integration settings for Shape.Integral. The shape has fallen by e^-40
// at integrationWidth rise or fall times from its centre.
const (
	integrationWidth  = 5
	integrationPoints = 4001
)

// Shape describes a pulse shape by its rise and fall time constants in ns.
type Shape struct {
	Name       string
	Tau1, Tau2 float64
}

// Shapes of the digitizer channels.
var (
	FADC          = Shape{Name: "fadc", Tau1: 50, Tau2: 150}
	ATWDNewToroid = Shape{Name: "atwd-new-toroid", Tau1: 5.5, Tau2: 25}
	ATWDOldToroid = Shape{Name: "atwd-old-toroid", Tau1: 5.5, Tau2: 42}
)

// ShapeByName returns the shape with the given name, ignoring case.
func ShapeByName(name string) (Shape, error) {
	for _, s := range []Shape{FADC, ATWDNewToroid, ATWDOldToroid} {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return Shape{}, fmt.Errorf("unknown pulse shape %q: %w", name, fiterr.ErrDegenerate)
}

// Value returns the pulse with parameters p at x.
func (s Shape) Value(x float64, p []float64) float64 {
	return p[Amp] * s.unit(x-p[Offset])
}

// unit returns the shape with unit amplitude at u from its offset. The sum
// of exponentials is taken in log space so that the tails underflow to zero
// rather than overflowing.
func (s Shape) unit(u float64) float64 {
	return math.Exp(-power * logSumExp(-u/s.Tau1, u/s.Tau2))
}

// Integral returns the area of the unit amplitude shape.
func (s Shape) Integral() float64 {
	u := floats.Span(make([]float64, integrationPoints), -integrationWidth*s.Tau1, integrationWidth*s.Tau2)
	f := make([]float64, len(u))
	for i := range u {
		f[i] = s.unit(u[i])
	}
	return integrate.Trapezoidal(u, f)
}

// Model returns the fit model of the shape, with parameters indexed by Amp
// and Offset.
func (s Shape) Model() lmfit.Model { return model{s} }

type model struct{ s Shape }

func (model) NumParams() int { return NumParams }

func (m model) Eval(x float64, p, dyda []float64) float64 {
	u := x - p[Offset]
	g := m.s.unit(u)

	// Fractions of the sum held by each exponential.
	r := math.Exp(u * (1/m.s.Tau1 + 1/m.s.Tau2))
	rise, fall := 1/(1+r), 1/(1+1/r)

	y := p[Amp] * g
	dyda[Amp] = g
	dyda[Offset] = -power * y * (rise/m.s.Tau1 - fall/m.s.Tau2)
	return y
}

func logSumExp(a, b float64) float64 {
	hi, lo := a, b
	if lo > hi {
		hi, lo = lo, hi
	}
	return hi + math.Log1p(math.Exp(lo-hi))
}
