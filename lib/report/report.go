// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"cmp"
	"embed"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/bureau-foundation/cryptobench/lib/evaluation"
	"github.com/bureau-foundation/cryptobench/lib/hwinfo"
)

// DefaultChartPoints is how many memory samples a chart shows.
const DefaultChartPoints = 50

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("report").Funcs(template.FuncMap{
	"timestamp": func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04:05 UTC") },
	"ms":        func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) + " ms" },
	"mb":        func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) + " MB" },
	"percent":   func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "%" },
	"ratio":     func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "x" },
	"times100":  func(v float64) float64 { return v * 100 },
	"inc":       func(i int) int { return i + 1 },
	"join":      joinInts,
	"optional":  optional,
}).ParseFS(templateFS, "templates/*.tmpl"))

// Options controls rendering.
type Options struct {
	// ChartPoints caps the memory chart. Defaults to 50.
	ChartPoints int

	// Generated is the footer timestamp.
	Generated time.Time
}

func (o Options) chartPoints() int {
	if o.ChartPoints <= 0 {
		return DefaultChartPoints
	}
	return o.ChartPoints
}

type row struct {
	Evaluation evaluation.Evaluation
	Chart      chart
}

func newRow(e evaluation.Evaluation, points int) row {
	var samples []float64
	if e.Metrics != nil {
		samples = e.Metrics.Memory.Samples
	}
	return row{Evaluation: e, Chart: newChart(samples, points)}
}

// Single renders one evaluation.
func Single(w io.Writer, e evaluation.Evaluation, options Options) error {
	view := struct {
		Evaluation evaluation.Evaluation
		Chart      *chart
		Generated  time.Time
	}{Evaluation: e, Generated: options.Generated}
	if e.Metrics != nil && len(e.Metrics.Memory.Samples) > 0 {
		c := newChart(e.Metrics.Memory.Samples, options.chartPoints())
		view.Chart = &c
	}
	return execute(w, "single.md.tmpl", view)
}

// scaling compares the first and last successful evaluations of a
// series.
type scaling struct {
	FirstVolume, LastVolume       int
	FirstCPUTimeMS, LastCPUTimeMS float64
	VolumeRatio, CPURatio         float64
	// Complexity is CPURatio/VolumeRatio: near 1 for linear growth.
	Complexity float64
}

func newScaling(successful []row) *scaling {
	if len(successful) < 2 {
		return nil
	}
	first := successful[0].Evaluation
	last := successful[len(successful)-1].Evaluation
	s := &scaling{
		FirstVolume:    first.Volume,
		LastVolume:     last.Volume,
		FirstCPUTimeMS: first.Summary.CPUTimeMS,
		LastCPUTimeMS:  last.Summary.CPUTimeMS,
		VolumeRatio:    1,
		CPURatio:       1,
	}
	if first.Volume > 0 {
		s.VolumeRatio = float64(last.Volume) / float64(first.Volume)
	}
	if first.Summary.CPUTimeMS > 0 {
		s.CPURatio = last.Summary.CPUTimeMS / first.Summary.CPUTimeMS
	}
	s.Complexity = s.CPURatio / s.VolumeRatio
	return s
}

// Series renders a scalability series.
func Series(w io.Writer, series evaluation.Series, options Options) error {
	successful, failed := partition(series.Evaluations, options.chartPoints())
	view := struct {
		Series     evaluation.Series
		Successful []row
		Failed     []evaluation.Evaluation
		Scaling    *scaling
		Generated  time.Time
	}{
		Series:     series,
		Successful: successful,
		Failed:     failed,
		Scaling:    newScaling(successful),
		Generated:  options.Generated,
	}
	return execute(w, "series.md.tmpl", view)
}

// Comparison renders a multi-algorithm comparison, fastest first.
func Comparison(w io.Writer, comparison evaluation.Comparison, options Options) error {
	successful, failed := partition(comparison.Evaluations, options.chartPoints())
	ranked := slices.Clone(successful)
	slices.SortStableFunc(ranked, func(a, b row) int {
		return cmp.Compare(a.Evaluation.Summary.CPUTimeMS, b.Evaluation.Summary.CPUTimeMS)
	})

	var hardware *hwinfo.Snapshot
	if len(successful) > 0 {
		hardware = &successful[0].Evaluation.Metrics.Hardware
	}
	view := struct {
		Comparison evaluation.Comparison
		Ranked     []row
		Failed     []evaluation.Evaluation
		Hardware   *hwinfo.Snapshot
		Generated  time.Time
	}{
		Comparison: comparison,
		Ranked:     ranked,
		Failed:     failed,
		Hardware:   hardware,
		Generated:  options.Generated,
	}
	return execute(w, "comparison.md.tmpl", view)
}

// partition splits evaluations into successful rows, in order, and
// the rest.
func partition(evaluations []evaluation.Evaluation, points int) ([]row, []evaluation.Evaluation) {
	var (
		successful []row
		failed     []evaluation.Evaluation
	)
	for _, e := range evaluations {
		if e.Status == evaluation.StatusSuccess && e.Metrics != nil {
			successful = append(successful, newRow(e, points))
		} else {
			failed = append(failed, e)
		}
	}
	return successful, failed
}

func execute(w io.Writer, name string, view any) error {
	if err := templates.ExecuteTemplate(w, name, view); err != nil {
		return fmt.Errorf("rendering %s: %w", strings.TrimSuffix(name, ".md.tmpl"), err)
	}
	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, value := range values {
		parts[i] = strconv.Itoa(value)
	}
	return strings.Join(parts, ", ")
}

// optional formats a possibly-nil pointer, "N/A" when nil.
func optional(value any) string {
	switch v := value.(type) {
	case *string:
		if v != nil {
			return *v
		}
	case *int:
		if v != nil {
			return strconv.Itoa(*v)
		}
	case *uint64:
		if v != nil {
			return strconv.FormatUint(*v, 10)
		}
	case *float64:
		if v != nil {
			return strconv.FormatFloat(*v, 'f', -1, 64)
		}
	}
	return "N/A"
}
