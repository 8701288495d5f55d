/*
DESCRIPTION
  domcal-fit runs a calibration fit on a series of samples read from a CSV
  file and prints a one line report of the result. Line, parabola,
  polynomial, SPE charge histogram, pulse shape and gain vs. high voltage
  fits are supported.

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

// domcal-fit runs a calibration fit on a series of samples read from a CSV
// file and prints a one line report of the result. Line, parabola,
// polynomial, SPE charge histogram, pulse shape and gain vs. high voltage
// fits are supported.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/domcal/dom/fiterr"
	"github.com/ausocean/domcal/dom/fitlog"
)

// Logging configuration.
const (
	defaultLogDir = "/var/log/domcal"
	logSuppress   = true
)

func main() {
	var (
		logLevel   int
		logDir     string
		keepLogs   bool
		configPath string
		mode       string
		inPath     string
		plotDir    string
	)
	flag.IntVar(&logLevel, "LogLevel", int(logging.Info), "Specifies log level")
	flag.StringVar(&logDir, "logdir", defaultLogDir, "Directory of the rolling log file")
	flag.BoolVar(&keepLogs, "keep-logs", true, "Archive, rather than delete, the log of each run")
	flag.StringVar(&configPath, "config", "", "YAML config file; defaults are used if empty")
	flag.StringVar(&mode, "mode", modeLinear, "Fit mode: linear, quadratic, poly, spe, pulse or hv")
	flag.StringVar(&inPath, "in", "", "CSV file of x,y rows; standard input if empty")
	flag.StringVar(&plotDir, "plot", "", "Directory to save a plot of the fit to, if not empty")
	flag.Parse()

	validLogLevel := true
	if logLevel < int(logging.Debug) || logLevel > int(logging.Fatal) {
		logLevel = int(logging.Info)
		validLogLevel = false
	}

	fileLog := fitlog.New(logDir)
	fileLog.SetKeepLogs(keepLogs)
	log := logging.New(int8(logLevel), fileLog, logSuppress)
	log.Info("domcal-fit: Logger Initialized", "mode", mode)
	if !validLogLevel {
		log.Error("Invalid log level was defaulted to Info")
	}

	status, err := fit(mode, configPath, inPath, plotDir, os.Stdin, os.Stdout, log)
	if err != nil {
		log.Error("could not run fit", "error", err)
		fmt.Fprintln(os.Stderr, err)
	}

	// Each run leaves its own log behind.
	err = fileLog.Rotate()
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not rotate log:", err)
	}
	_, err = fileLog.Archive()
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not archive log:", err)
	}
	fileLog.Close()

	if status != fiterr.OK {
		os.Exit(1)
	}
}

// fit loads the config and samples, runs the fit and writes its report to
// out, returning the fit status. The samples are read from stdin if inPath
// is empty.
func fit(mode, configPath, inPath, plotDir string, stdin io.Reader, out io.Writer, log logging.Logger) (fiterr.Status, error) {
	c, err := loadConfig(configPath)
	if err != nil {
		return fiterr.Unknown, err
	}

	in := stdin
	if inPath != "" {
		f, err := os.Open(inPath)
		if err != nil {
			return fiterr.Unknown, fmt.Errorf("could not open samples: %w", err)
		}
		defer f.Close()
		in = f
	}
	x, y, err := readSeries(in)
	if err != nil {
		return fiterr.Unknown, err
	}

	r, err := run(mode, x, y, c, log)
	if err != nil {
		return fiterr.Unknown, err
	}
	fmt.Fprintln(out, r)

	if plotDir != "" {
		path, err := plotFit(plotDir, x, y, r)
		if err != nil {
			log.Warning("could not plot fit", "error", err)
		} else {
			log.Info("saved plot", "path", path)
		}
	}
	return r.status, nil
}
