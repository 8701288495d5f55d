/*
DESCRIPTION
  solver.go provides a Levenberg-Marquardt nonlinear least squares solver
  for models that supply their own Jacobian.

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

// Package lmfit provides Levenberg-Marquardt nonlinear least squares
// fitting. A Solver holds the state of one fit and is advanced one step at a
// time by Iterate; Run drives a Solver until the chi-squared value settles.
package lmfit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/domcal/dom/fiterr"
)

// Damping configuration.
const (
	initialLambda = 0.001
	acceptFactor  = 0.1
	rejectFactor  = 10.0
	maxLambda     = 1e10 // Keeps the damped diagonal finite.
)

// Model is a fit function. Eval returns the value of the model at x for
// parameters p, and writes the partial derivative with respect to each
// parameter into dyda. len(p) and len(dyda) are both NumParams.
type Model interface {
	NumParams() int
	Eval(x float64, p, dyda []float64) float64
}

// Solver holds the working state of a single Levenberg-Marquardt fit.
// A Solver must not be shared between fits.
type Solver struct {
	x, y, sigma []float64
	model       Model

	a, atry    []float64
	beta, tryB []float64
	dyda       []float64

	alpha, tryA *mat.Dense
	covar       *mat.Dense
	delta       *mat.Dense
	cov         *mat.SymDense

	chisq, ochisq float64
	initialised   bool
}

// NewSolver returns a Solver for fitting m to the points x, y with standard
// deviations sigma, starting from the parameters init. The slices are not
// modified.
func NewSolver(x, y, sigma []float64, m Model, init []float64) (*Solver, error) {
	n := m.NumParams()
	switch {
	case n < 1:
		return nil, fmt.Errorf("model has %d parameters: %w", n, fiterr.ErrDegenerate)
	case len(init) != n:
		return nil, fmt.Errorf("have %d initial parameters, model needs %d: %w", len(init), n, fiterr.ErrDegenerate)
	case len(x) != len(y) || len(x) != len(sigma):
		return nil, fmt.Errorf("data lengths differ (%d, %d, %d): %w", len(x), len(y), len(sigma), fiterr.ErrDegenerate)
	case len(x) < n:
		return nil, fmt.Errorf("%d points for %d parameters: %w", len(x), n, fiterr.ErrInsufficientData)
	}
	for i, s := range sigma {
		if !(s > 0) {
			return nil, fmt.Errorf("sigma %d is %v, must be positive: %w", i, s, fiterr.ErrDegenerate)
		}
	}

	s := &Solver{
		x:     x,
		y:     y,
		sigma: sigma,
		model: m,
		a:     make([]float64, n),
		atry:  make([]float64, n),
		beta:  make([]float64, n),
		tryB:  make([]float64, n),
		dyda:  make([]float64, n),
		alpha: mat.NewDense(n, n, nil),
		tryA:  mat.NewDense(n, n, nil),
		covar: mat.NewDense(n, n, nil),
		delta: mat.NewDense(n, 1, nil),
	}
	copy(s.a, init)
	return s, nil
}

// Iterate performs one stage of the fit and returns the new damping value.
//
// A negative lambda initialises the fit at the starting parameters and then
// takes the first step with lambda 0.001. A positive lambda takes one step:
// if the trial parameters lower chi-squared they are accepted and lambda is
// divided by ten, otherwise they are discarded and lambda is multiplied by
// ten, up to 1e10. A lambda of zero finishes the fit; the matrices are rebuilt at the
// current parameters and the covariance matrix is computed, but the
// parameters do not change.
//
// fiterr.ErrSingular is returned if a step cannot be solved.
func (s *Solver) Iterate(lambda float64) (float64, error) {
	if lambda < 0 {
		lambda = initialLambda
		s.initialise()
	}
	if lambda == 0 {
		s.finish()
		return 0, nil
	}
	if !s.initialised {
		s.initialise()
	}

	n := len(s.a)
	s.covar.Copy(s.alpha)
	for j := 0; j < n; j++ {
		s.covar.Set(j, j, s.alpha.At(j, j)*(1+lambda))
		s.delta.Set(j, 0, s.beta[j])
	}
	err := GaussJordan(s.covar, s.delta)
	if err != nil {
		return lambda, fmt.Errorf("could not solve step with lambda %g: %w", lambda, err)
	}

	for j := range s.atry {
		s.atry[j] = s.a[j] + s.delta.At(j, 0)
	}
	s.chisq = s.matrices(s.atry, s.tryA, s.tryB)

	if s.chisq < s.ochisq {
		lambda *= acceptFactor
		s.ochisq = s.chisq
		s.alpha, s.tryA = s.tryA, s.alpha
		s.beta, s.tryB = s.tryB, s.beta
		copy(s.a, s.atry)
	} else {
		lambda = math.Min(lambda*rejectFactor, maxLambda)
		s.chisq = s.ochisq
	}
	return lambda, nil
}

// initialise computes chi-squared and the curvature matrix at the current
// parameters.
func (s *Solver) initialise() {
	s.chisq = s.matrices(s.a, s.alpha, s.beta)
	s.ochisq = s.chisq
	copy(s.atry, s.a)
	s.initialised = true
}

// finish rebuilds the curvature matrix at the current parameters and inverts
// it to give the covariance matrix. If the curvature matrix is singular the
// covariance is left nil.
func (s *Solver) finish() {
	s.initialise()
	s.covar.Copy(s.alpha)
	n := len(s.a)
	for j := 0; j < n; j++ {
		s.delta.Set(j, 0, s.beta[j])
	}
	s.cov = nil
	if GaussJordan(s.covar, s.delta) != nil {
		return
	}
	s.cov = mat.NewSymDense(n, nil)
	for j := 0; j < n; j++ {
		for k := j; k < n; k++ {
			s.cov.SetSym(j, k, (s.covar.At(j, k)+s.covar.At(k, j))/2)
		}
	}
}

// matrices evaluates the model at parameters p over all points, filling the
// curvature matrix alpha and gradient vector beta, and returns chi-squared.
func (s *Solver) matrices(p []float64, alpha *mat.Dense, beta []float64) float64 {
	n := len(p)
	alpha.Zero()
	for j := range beta {
		beta[j] = 0
	}

	var chisq float64
	for i := range s.x {
		ymod := s.model.Eval(s.x[i], p, s.dyda)
		sig2i := 1 / (s.sigma[i] * s.sigma[i])
		dy := s.y[i] - ymod
		for j := 0; j < n; j++ {
			wt := s.dyda[j] * sig2i
			for k := 0; k <= j; k++ {
				alpha.Set(j, k, alpha.At(j, k)+wt*s.dyda[k])
			}
			beta[j] += dy * wt
		}
		chisq += dy * dy * sig2i
	}

	for j := 1; j < n; j++ {
		for k := 0; k < j; k++ {
			alpha.Set(k, j, alpha.At(j, k))
		}
	}
	return chisq
}

// Params returns a copy of the current parameters.
func (s *Solver) Params() []float64 {
	p := make([]float64, len(s.a))
	copy(p, s.a)
	return p
}

// ChiSq returns chi-squared at the current parameters.
func (s *Solver) ChiSq() float64 { return s.chisq }

// Covariance returns the covariance matrix of the parameters. It is nil
// until Iterate has been called with a lambda of zero.
func (s *Solver) Covariance() *mat.SymDense { return s.cov }

// Curvature returns a copy of the curvature matrix at the current
// parameters.
func (s *Solver) Curvature() *mat.Dense { return mat.DenseCopyOf(s.alpha) }
