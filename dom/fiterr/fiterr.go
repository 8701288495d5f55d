/*
DESCRIPTION
  fiterr.go provides the closed set of errors returned by the fitting
  packages, and their mapping to the integer status codes stored in
  calibration records.

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

// Package fiterr provides the errors returned by the calibration fitting
// packages. Every fit returns one of these (possibly wrapped) or nil, and
// StatusOf converts the result to the status code written to calibration
// records.
package fiterr

import "errors"

var (
	// ErrSingular is returned when a Gauss-Jordan pivot fails.
	ErrSingular = errors.New("fit: singular matrix")

	// ErrNoConvergence is returned when the iteration cap is reached before
	// the chi-squared convergence criteria are met.
	ErrNoConvergence = errors.New("fit: no convergence")

	// ErrBadFit is returned when a fit converged but its parameters violate
	// physical sanity bounds.
	ErrBadFit = errors.New("fit: parameters out of range")

	// ErrEmptyHistogram is returned when a histogram has no counts.
	ErrEmptyHistogram = errors.New("fit: empty histogram")

	// ErrInsufficientData is returned when there are fewer usable points
	// than a model has parameters.
	ErrInsufficientData = errors.New("fit: insufficient data")

	// ErrValleyNoConvergence is returned when the valley search does not
	// converge.
	ErrValleyNoConvergence = errors.New("fit: valley search did not converge")

	// ErrValleyOutOfRange is returned when the valley found is outside the
	// physically allowed range.
	ErrValleyOutOfRange = errors.New("fit: valley out of range")

	// ErrDegenerate is returned for malformed input to closed-form fits,
	// e.g. mismatched lengths or all x values identical.
	ErrDegenerate = errors.New("fit: degenerate input")
)

// Status is a calibration record status code.
type Status int

// Status codes.
const (
	OK                  Status = 0
	Singular            Status = -1
	NoConvergence       Status = -2
	BadFit              Status = -3
	EmptyHistogram      Status = -4
	InsufficientData    Status = -5
	ValleyNoConvergence Status = -6
	ValleyOutOfRange    Status = -7
	Degenerate          Status = -8
	Unknown             Status = -99
)

var statuses = []struct {
	err    error
	status Status
}{
	{ErrSingular, Singular},
	{ErrNoConvergence, NoConvergence},
	{ErrBadFit, BadFit},
	{ErrEmptyHistogram, EmptyHistogram},
	{ErrInsufficientData, InsufficientData},
	{ErrValleyNoConvergence, ValleyNoConvergence},
	{ErrValleyOutOfRange, ValleyOutOfRange},
	{ErrDegenerate, Degenerate},
}

// StatusOf returns the status code for err. A nil error is OK and an error
// outside the set above is Unknown.
func StatusOf(err error) Status {
	if err == nil {
		return OK
	}
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return Unknown
}

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Singular:
		return "singular"
	case NoConvergence:
		return "no-convergence"
	case BadFit:
		return "bad-fit"
	case EmptyHistogram:
		return "empty-histogram"
	case InsufficientData:
		return "insufficient-data"
	case ValleyNoConvergence:
		return "valley-no-convergence"
	case ValleyOutOfRange:
		return "valley-out-of-range"
	case Degenerate:
		return "degenerate"
	default:
		return "unknown"
	}
}
