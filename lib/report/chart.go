// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"slices"
	"strings"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// chart is a sparkline over the leading points of a series.
type chart struct {
	Line     string
	Points   int
	Total    int
	Min, Max float64
}

// newChart draws the first points values. Min and Max cover the drawn
// values only. An empty series draws "-".
func newChart(values []float64, points int) chart {
	shown := values[:min(points, len(values))]
	if len(shown) == 0 {
		return chart{Line: "-", Total: len(values)}
	}
	return chart{
		Line:   Sparkline(shown),
		Points: len(shown),
		Total:  len(values),
		Min:    slices.Min(shown),
		Max:    slices.Max(shown),
	}
}

// Sparkline draws one block character per value, scaled between the
// series minimum and maximum. A flat series draws at the lowest level.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	low, high := slices.Min(values), slices.Max(values)
	span := high - low
	top := len(sparkBlocks) - 1

	var builder strings.Builder
	for _, value := range values {
		level := 0
		if span > 0 {
			level = int((value-low)/span*float64(top) + 0.5)
		}
		builder.WriteRune(sparkBlocks[level])
	}
	return builder.String()
}
