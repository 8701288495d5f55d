/*
DESCRIPTION
  plot.go provides plotting of fitted data and the fitted curve.

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
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot configuration.
const (
	plotSize    = 15 * vg.Centimeter
	curvePoints = 200
)

// axisLabels gives the x and y axis titles of each fit mode.
var axisLabels = map[string][2]string{
	modeLinear:    {"x", "y"},
	modeQuadratic: {"x", "y"},
	modePoly:      {"x", "y"},
	modeSPE:       {"Charge (pC)", "Counts"},
	modePulse:     {"Time (ns)", "Amplitude"},
	modeHV:        {"High Voltage (V)", "Gain"},
}

// plotFit saves a plot of the series x, y and the fitted curve of r, if any,
// to a PNG file in dir named after the fit mode, returning its path.
func plotFit(dir string, x, y []float64, r *report) (string, error) {
	labels := axisLabels[r.mode]
	name := "domcal " + r.mode + " fit"
	path := filepath.Join(dir, r.mode+".png")
	err := plotToFile(
		path,
		name,
		labels[0],
		labels[1],
		func(p *plot.Plot) error {
			err := plotutil.AddScatters(p, "data", plotterXY(x, y))
			if err != nil || r.curve == nil || len(x) == 0 {
				return err
			}
			cx := floats.Span(make([]float64, curvePoints), floats.Min(x), floats.Max(x))
			cy := make([]float64, len(cx))
			for i, v := range cx {
				cy[i] = r.curve(v)
			}
			return plotutil.AddLines(p, "fit", plotterXY(cx, cy))
		},
	)
	if err != nil {
		return "", fmt.Errorf("could not plot %s fit: %w", r.mode, err)
	}
	return path, nil
}

// plotToFile creates a plot with a specified name and x&y titles using the
// provided draw function, and then saves it to a PNG file at path.
func plotToFile(path, name, xTitle, yTitle string, draw func(*plot.Plot) error) error {
	p := plot.New()

	p.Title.Text = name
	p.X.Label.Text = xTitle
	p.Y.Label.Text = yTitle

	err := draw(p)
	if err != nil {
		return fmt.Errorf("could not draw plot contents: %w", err)
	}

	if err := p.Save(plotSize, plotSize, path); err != nil {
		return fmt.Errorf("could not save plot: %w", err)
	}
	return nil
}

// plotterXY provides a plotter.XYs type value based on the given x and y data.
func plotterXY(x, y []float64) plotter.XYs {
	xy := make(plotter.XYs, len(x))
	for i := range x {
		xy[i].X = x[i]
		xy[i].Y = y[i]
	}
	return xy
}
