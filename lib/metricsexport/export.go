// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metricsexport

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bureau-foundation/cryptobench/lib/evaluation"
)

const namespace = "cryptobench"

// Exporter holds the gauges and counters for observed evaluations.
type Exporter struct {
	registry *prometheus.Registry

	cpuTime     *prometheus.GaugeVec
	memoryPeak  *prometheus.GaugeVec
	duration    *prometheus.GaugeVec
	cpuPercent  *prometheus.GaugeVec
	cpuCycles   *prometheus.GaugeVec
	evaluations *prometheus.CounterVec
	lastRun     prometheus.Gauge
}

// New returns an Exporter with its metrics registered.
func New() (*Exporter, error) {
	benchLabels := []string{"algorithm", "volume"}
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		cpuTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_time_milliseconds",
			Help:      "Exclusive CPU time of the most recent evaluation.",
		}, benchLabels),
		memoryPeak: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_peak_megabytes",
			Help:      "Peak resident memory of the most recent evaluation.",
		}, benchLabels),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duration_milliseconds",
			Help:      "Wall-clock duration of the most recent evaluation.",
		}, benchLabels),
		cpuPercent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_percent_average",
			Help:      "Average process CPU utilization during the most recent evaluation.",
		}, benchLabels),
		cpuCycles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_cycles",
			Help:      "Hardware CPU cycles of the most recent evaluation, when a cycle counter was available.",
		}, benchLabels),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Evaluations observed, by algorithm and status.",
		}, []string{"algorithm", "status"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_evaluation_timestamp_seconds",
			Help:      "Unix time at which the most recent evaluation ended.",
		}),
	}

	var errs []error
	for _, collector := range []prometheus.Collector{
		e.cpuTime, e.memoryPeak, e.duration, e.cpuPercent, e.cpuCycles, e.evaluations, e.lastRun,
	} {
		if err := e.registry.Register(collector); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return e, nil
}

// Registry returns the exporter's registry.
func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

// Observe records one evaluation. Failed evaluations only bump the
// counter and the timestamp.
func (e *Exporter) Observe(ev evaluation.Evaluation) {
	name := ev.Algorithm.String()
	e.evaluations.WithLabelValues(name, string(ev.Status)).Inc()
	if !ev.EndedAt.IsZero() {
		e.lastRun.Set(float64(ev.EndedAt.UnixNano()) / 1e9)
	}
	if ev.Status != evaluation.StatusSuccess || ev.Metrics == nil {
		return
	}

	volume := strconv.Itoa(ev.Volume)
	e.cpuTime.WithLabelValues(name, volume).Set(ev.Summary.CPUTimeMS)
	e.memoryPeak.WithLabelValues(name, volume).Set(ev.Summary.MemoryMB)
	e.duration.WithLabelValues(name, volume).Set(ev.DurationMS)
	e.cpuPercent.WithLabelValues(name, volume).Set(ev.Metrics.System.CPUPercentAvg)
	if ev.Summary.CPUCycles != nil {
		e.cpuCycles.WithLabelValues(name, volume).Set(float64(*ev.Summary.CPUCycles))
	}
}

// ObserveAll records each evaluation in order.
func (e *Exporter) ObserveAll(evaluations []evaluation.Evaluation) {
	for _, ev := range evaluations {
		e.Observe(ev)
	}
}

// WriteTextfile writes the registry to path in the text exposition
// format. The file is replaced atomically.
func (e *Exporter) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, e.registry)
}
