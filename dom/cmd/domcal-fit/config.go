/*
DESCRIPTION
  config.go provides the YAML configuration of domcal-fit.

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
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ausocean/domcal/dom/pulse"
	"github.com/ausocean/domcal/dom/spe"
)

// Default line refinement configuration.
const (
	defaultMinR2     = 0.99
	defaultMinPoints = 4
	defaultDegree    = 3
)

// config holds the settings of each fit mode. Fields missing from a config
// file keep their defaults.
type config struct {
	Linear linearConfig `yaml:"linear"`
	Poly   polyConfig   `yaml:"poly"`
	SPE    spe.Options  `yaml:"spe"`
	Pulse  pulseConfig  `yaml:"pulse"`
}

type linearConfig struct {
	Refine    bool    `yaml:"refine"`
	MinR2     float64 `yaml:"min_r2"`
	MinPoints int     `yaml:"min_points"`
}

type polyConfig struct {
	Degree int `yaml:"degree"`
}

type pulseConfig struct {
	pulse.Options `yaml:",inline"`

	Shape    string `yaml:"shape"`
	Start    int    `yaml:"start"`
	End      int    `yaml:"end"`      // Zero means the last sample.
	Baseline int    `yaml:"baseline"` // Leading samples used to subtract a pedestal.
}

func defaultConfig() config {
	return config{
		Linear: linearConfig{MinR2: defaultMinR2, MinPoints: defaultMinPoints},
		Poly:   polyConfig{Degree: defaultDegree},
		SPE:    spe.DefaultOptions(),
		Pulse:  pulseConfig{Options: pulse.DefaultOptions(), Shape: pulse.FADC.Name},
	}
}

// parseConfig returns the default config overridden by the YAML in b.
func parseConfig(b []byte) (config, error) {
	c := defaultConfig()
	err := yaml.Unmarshal(b, &c)
	if err != nil {
		return c, fmt.Errorf("could not parse config: %w", err)
	}
	return c, nil
}

// loadConfig reads the config file at path, or returns the defaults if path
// is empty.
func loadConfig(path string) (config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return config{}, fmt.Errorf("could not read config: %w", err)
	}
	return parseConfig(b)
}
