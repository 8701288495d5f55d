/*
DESCRIPTION
  fit.go provides the fit modes of domcal-fit and the report of their
  results.

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

package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/domcal/dom/fiterr"
	"github.com/ausocean/domcal/dom/pulse"
	"github.com/ausocean/domcal/dom/regression"
	"github.com/ausocean/domcal/dom/spe"
)

// Fit modes.
const (
	modeLinear    = "linear"
	modeQuadratic = "quadratic"
	modePoly      = "poly"
	modeSPE       = "spe"
	modePulse     = "pulse"
	modeHV        = "hv"
)

// Gain at which the high voltage is reported by the hv mode.
const targetGain = 1e7

// report holds the outcome of a fit: its status, named result values and a
// function evaluating the fitted curve for plotting.
type report struct {
	mode   string
	status fiterr.Status
	err    error
	keys   []string
	values []float64
	curve  func(x float64) float64
}

func (r *report) add(key string, v float64) {
	r.keys = append(r.keys, key)
	r.values = append(r.values, v)
}

// String returns the report as a single line of key=value pairs, starting
// with the status code.
func (r *report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "status=%d mode=%s", r.status, r.mode)
	for i, k := range r.keys {
		b.WriteString(" " + k + "=" + strconv.FormatFloat(r.values[i], 'g', 8, 64))
	}
	return b.String()
}

// modes maps each fit mode to the function performing it.
var modes = map[string]func(x, y []float64, c config, r *report){
	modeLinear:    fitLinear,
	modeQuadratic: fitQuadratic,
	modePoly:      fitPoly,
	modeSPE:       fitSPE,
	modePulse:     fitPulse,
	modeHV:        fitHV,
}

// run performs the fit named by mode on the series x, y.
func run(mode string, x, y []float64, c config, log logging.Logger) (*report, error) {
	f, ok := modes[mode]
	if !ok {
		return nil, fmt.Errorf("unknown fit mode %q", mode)
	}
	c.SPE.Convergence.Log = log
	c.Pulse.Convergence.Log = log

	r := &report{mode: mode}
	log.Debug("fitting", "mode", mode, "points", len(x))
	f(x, y, c, r)
	r.status = fiterr.StatusOf(r.err)
	if r.err != nil {
		log.Warning("fit failed", "mode", mode, "status", r.status.String(), "error", r.err)
	} else {
		log.Info("fit done", "mode", mode, "result", r.String())
	}
	return r, nil
}

func fitLinear(x, y []float64, c config, r *report) {
	f, err := regression.Linear(x, y)
	n := len(x)
	if err == nil && c.Linear.Refine {
		f, n, err = regression.Refine(x, y, nil, f, c.Linear.MinR2, c.Linear.MinPoints)
	}
	r.err = err
	if err != nil {
		return
	}
	r.add("slope", f.Slope)
	r.add("intercept", f.Intercept)
	r.add("r2", f.RSquared)
	r.add("points", float64(n))
	r.curve = f.Eval
}

func fitQuadratic(x, y []float64, c config, r *report) {
	f, err := regression.Quadratic(x, y)
	r.err = err
	if err != nil {
		return
	}
	r.add("c0", f.C0)
	r.add("c1", f.C1)
	r.add("c2", f.C2)
	r.add("r2", f.RSquared)
	r.add("legacy_r2", regression.LegacyQuadraticRSquared(x, y, f))
	r.curve = f.Eval
}

func fitPoly(x, y []float64, c config, r *report) {
	coeffs, err := regression.Poly(x, y, c.Poly.Degree)
	r.err = err
	if err != nil {
		return
	}
	for i, v := range coeffs {
		r.add("c"+strconv.Itoa(i), v)
	}
	r.curve = func(x float64) float64 { return regression.PolyEval(coeffs, x) }
}

func fitSPE(x, y []float64, c config, r *report) {
	res, err := spe.Fit(x, y, c.SPE)
	r.err = err
	if err != nil {
		return
	}
	p := res.Params
	for i, k := range []string{"exp_amp", "exp_decay", "gaus_amp", "gaus_mean", "gaus_width"} {
		r.add(k, p[i])
	}
	r.add("chisq", res.ChiSq)
	r.add("gain", spe.Gain(p))
	r.curve = func(x float64) float64 { return spe.Value(x, p) }

	// Valley failures do not invalidate the peak fit.
	vx, vy, err := spe.FindValley(p, c.SPE.Valley)
	r.add("valley_status", float64(fiterr.StatusOf(err)))
	if err != nil {
		return
	}
	r.add("valley_x", vx)
	r.add("valley_y", vy)
	pv, err := spe.PeakToValley(p, vy)
	if err == nil {
		r.add("peak_to_valley", pv)
	}
}

func fitPulse(x, y []float64, c config, r *report) {
	s, err := pulse.ShapeByName(c.Pulse.Shape)
	if err != nil {
		r.err = err
		return
	}
	end := c.Pulse.End
	if end == 0 {
		end = len(x)
	}

	var base float64
	if c.Pulse.Baseline > 0 {
		base = pulse.Baseline(y, c.Pulse.Baseline)
		sub := make([]float64, len(y))
		for i, v := range y {
			sub[i] = v - base
		}
		y = sub
	}

	res, err := pulse.Fit(x, y, c.Pulse.Start, end, s, c.Pulse.Options)
	r.err = err
	if err != nil {
		return
	}
	p := res.Params
	r.add("amp", p[pulse.Amp])
	r.add("offset", res.LeadingEdge())
	r.add("chisq", res.ChiSq)
	r.add("baseline", base)
	r.curve = func(x float64) float64 { return s.Value(x, p) + base }
}

// fitHV fits gain against high voltage, where x holds voltages and y gains.
func fitHV(x, y []float64, c config, r *report) {
	f, n, err := spe.FitGainVsHV(x, y, nil)
	r.err = err
	if err != nil {
		return
	}
	r.add("slope", f.Slope)
	r.add("intercept", f.Intercept)
	r.add("r2", f.RSquared)
	r.add("points", float64(n))
	r.add("hv_for_gain", spe.HVForGain(f, targetGain))
	r.curve = func(hv float64) float64 { return math.Pow(10, f.Eval(math.Log10(hv))) }
}
