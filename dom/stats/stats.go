/*
DESCRIPTION
  stats.go provides the basic statistics used by the calibration fits:
  population mean and variance, heap sort and median.

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

// Package stats provides the basic statistics used by the calibration fits.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MeanVariance returns the population mean and variance of x, i.e. the
// variance is divided by N rather than N-1. NaNs are returned for empty x.
func MeanVariance(x []float64) (mean, variance float64) {
	if len(x) == 0 {
		return math.NaN(), math.NaN()
	}
	return stat.PopMeanVariance(x, nil)
}

// WeightedMeanVariance returns the population mean and variance of x where
// w[i] is the number of times x[i] occurs. This is the same as expanding
// a histogram into its individual samples and calling MeanVariance, without
// building the expanded list. NaNs are returned if the total weight is zero.
func WeightedMeanVariance(x, w []float64) (mean, variance float64) {
	if len(x) == 0 || len(x) != len(w) {
		return math.NaN(), math.NaN()
	}
	var total float64
	for _, v := range w {
		total += v
	}
	if total <= 0 {
		return math.NaN(), math.NaN()
	}
	return stat.PopMeanVariance(x, w)
}

// HeapSort sorts x into ascending order in place.
func HeapSort(x []float64) {
	n := len(x)
	for i := n/2 - 1; i >= 0; i-- {
		siftDown(x, i, n)
	}
	for end := n - 1; end > 0; end-- {
		x[0], x[end] = x[end], x[0]
		siftDown(x, 0, end)
	}
}

// siftDown restores the max-heap property for the subtree rooted at i,
// considering only the first n elements of x.
func siftDown(x []float64, i, n int) {
	for {
		child := 2*i + 1
		if child >= n {
			return
		}
		if child+1 < n && x[child+1] > x[child] {
			child++
		}
		if x[i] >= x[child] {
			return
		}
		x[i], x[child] = x[child], x[i]
		i = child
	}
}

// Median returns the median of x without modifying it. NaN is returned for
// empty x.
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	s := make([]float64, n)
	copy(s, x)
	HeapSort(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
