/*
DESCRIPTION
  run.go provides the loop that drives a Solver until chi-squared settles or
  an iteration limit is reached.

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

	"github.com/ausocean/utils/logging"
	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/domcal/dom/fiterr"
)

// Convergence defaults.
const (
	DefaultMaxIter  = 500
	DefaultAbsChiSq = 0.01
	DefaultRelChiSq = 0.001
)

// Convergence controls when Run stops iterating. A fit has converged when
// chi-squared decreased in the last step by less than AbsChiSq, or by less
// than the fraction RelChiSq of its value, or when chi-squared is zero after
// the first step. Run gives up once the number of
// iterations exceeds MaxIter.
type Convergence struct {
	MaxIter  int     `yaml:"max_iter"`
	AbsChiSq float64 `yaml:"abs_chisq"`
	RelChiSq float64 `yaml:"rel_chisq"`

	// Log, if not nil, receives a debug message for every iteration.
	Log logging.Logger `yaml:"-"`
}

// DefaultConvergence returns the convergence settings used by the
// calibration fits.
func DefaultConvergence() Convergence {
	return Convergence{
		MaxIter:  DefaultMaxIter,
		AbsChiSq: DefaultAbsChiSq,
		RelChiSq: DefaultRelChiSq,
	}
}

// Result holds the outcome of a fit.
type Result struct {
	Params     []float64
	ChiSq      float64
	Covariance *mat.SymDense
	Iterations int
	Converged  bool
}

// Run fits model m to the points x, y with standard deviations sigma,
// starting from init. The returned Result holds the final parameters even if
// the fit fails to converge, in which case the error is
// fiterr.ErrNoConvergence. A singular step ends the fit with
// fiterr.ErrSingular and the parameters reached so far.
func Run(x, y, sigma []float64, m Model, init []float64, c Convergence) (*Result, error) {
	s, err := NewSolver(x, y, sigma, m, init)
	if err != nil {
		return nil, err
	}

	var (
		lambda    = -1.0
		chisq     float64
		old       float64
		iter      int
		converged bool
	)
	for done := false; !done; {
		iter++
		del := old - chisq
		converged = iter > 1 && (chisq == 0 || del > 0 && (del < c.AbsChiSq || del/chisq < c.RelChiSq))
		done = iter > c.MaxIter || converged
		if done {
			lambda = 0
		}
		old = chisq

		lambda, err = s.Iterate(lambda)
		if err != nil {
			return result(s, iter, false), err
		}
		chisq = s.ChiSq()

		if c.Log != nil {
			c.Log.Debug("lm iteration", "iteration", iter, "chisq", chisq, "lambda", lambda)
		}
	}

	r := result(s, iter, converged)
	if !converged {
		return r, fmt.Errorf("chi-squared %g after %d iterations: %w", chisq, c.MaxIter, fiterr.ErrNoConvergence)
	}
	return r, nil
}

func result(s *Solver, iter int, converged bool) *Result {
	return &Result{
		Params:     s.Params(),
		ChiSq:      s.ChiSq(),
		Covariance: s.Covariance(),
		Iterations: iter,
		Converged:  converged,
	}
}
