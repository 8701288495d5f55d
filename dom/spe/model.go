/*
DESCRIPTION
  model.go provides the single photoelectron charge spectrum model: an
  exponential noise tail plus a Gaussian photoelectron peak.

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

// Package spe fits single photoelectron (SPE) charge histograms. The
// spectrum is modelled as an exponentially falling noise component plus a
// Gaussian peak, A*exp(-B*x) + C*exp(-(x-D)^2*E), whose centre D is the
// mean charge of a single photoelectron.
package spe

import "math"

// NumParams is the number of parameters of the SPE model.
const NumParams = 5

// Parameter indices of A, B, C, D and E. E is 1/(2*sigma^2) of the peak.
const (
	ExpAmp = iota
	ExpDecay
	GausAmp
	GausMean
	GausWidth
)

// Model is the SPE spectrum model. It implements lmfit.Model.
type Model struct{}

// NumParams implements lmfit.Model.
func (Model) NumParams() int { return NumParams }

// Eval implements lmfit.Model.
func (Model) Eval(x float64, p, dyda []float64) float64 {
	xoff := x - p[GausMean]
	e1 := math.Exp(-p[ExpDecay] * x)
	e2 := math.Exp(-xoff * xoff * p[GausWidth])

	dyda[ExpAmp] = e1
	dyda[ExpDecay] = -p[ExpAmp] * x * e1
	dyda[GausAmp] = e2
	dyda[GausMean] = 2 * p[GausAmp] * xoff * e2 * p[GausWidth]
	dyda[GausWidth] = -p[GausAmp] * xoff * xoff * e2

	return p[ExpAmp]*e1 + p[GausAmp]*e2
}

// Value returns the model value at x for parameters p.
func Value(x float64, p []float64) float64 {
	xoff := x - p[GausMean]
	return p[ExpAmp]*math.Exp(-p[ExpDecay]*x) + p[GausAmp]*math.Exp(-xoff*xoff*p[GausWidth])
}

// Derivatives returns the first and second derivatives of the model with
// respect to x, at x for parameters p.
func Derivatives(x float64, p []float64) (d1, d2 float64) {
	a, b, c, e := p[ExpAmp], p[ExpDecay], p[GausAmp], p[GausWidth]
	xoff := x - p[GausMean]
	e1 := math.Exp(-b * x)
	e2 := math.Exp(-xoff * xoff * e)

	d1 = -a*b*e1 - 2*c*e*xoff*e2
	d2 = a*b*b*e1 - 2*c*e*e2 + 4*c*e*e*xoff*xoff*e2
	return d1, d2
}
