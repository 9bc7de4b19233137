// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metricsexport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bureau-foundation/cryptobench/lib/algorithm"
	"github.com/bureau-foundation/cryptobench/lib/evaluation"
	"github.com/bureau-foundation/cryptobench/lib/profiling"
)

func successful(alg algorithm.Algorithm, volume int, cycles *uint64) evaluation.Evaluation {
	metrics := profiling.Metrics{}
	metrics.System.CPUPercentAvg = 87.5
	metrics.System.CPUCycles = cycles
	return evaluation.Evaluation{
		Algorithm:  alg,
		Volume:     volume,
		EndedAt:    time.Unix(1_700_000_000, 0),
		DurationMS: 120,
		Status:     evaluation.StatusSuccess,
		Summary: evaluation.Summary{
			CPUTimeMS: 100,
			MemoryMB:  42.5,
			CPUCycles: cycles,
		},
		Metrics: &metrics,
	}
}

func TestObserveSuccess(t *testing.T) {
	exporter, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cycles := uint64(123456)
	exporter.Observe(successful(algorithm.AESGCM, 1000, &cycles))

	name := algorithm.AESGCM.String()
	checks := []struct {
		label string
		got   float64
		want  float64
	}{
		{"cpu time", testutil.ToFloat64(exporter.cpuTime.WithLabelValues(name, "1000")), 100},
		{"memory peak", testutil.ToFloat64(exporter.memoryPeak.WithLabelValues(name, "1000")), 42.5},
		{"duration", testutil.ToFloat64(exporter.duration.WithLabelValues(name, "1000")), 120},
		{"cpu percent", testutil.ToFloat64(exporter.cpuPercent.WithLabelValues(name, "1000")), 87.5},
		{"cycles", testutil.ToFloat64(exporter.cpuCycles.WithLabelValues(name, "1000")), 123456},
		{"count", testutil.ToFloat64(exporter.evaluations.WithLabelValues(name, "success")), 1},
		{"last run", testutil.ToFloat64(exporter.lastRun), 1_700_000_000},
	}
	for _, check := range checks {
		if check.got != check.want {
			t.Errorf("%s = %v, want %v", check.label, check.got, check.want)
		}
	}
}

func TestObserveWithoutCyclesLeavesGaugeUnset(t *testing.T) {
	exporter, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	exporter.Observe(successful(algorithm.X25519, 10, nil))
	if count := testutil.CollectAndCount(exporter.cpuCycles); count != 0 {
		t.Errorf("cpu_cycles series = %d, want 0", count)
	}
	if count := testutil.CollectAndCount(exporter.cpuTime); count != 1 {
		t.Errorf("cpu_time series = %d, want 1", count)
	}
}

func TestObserveFailureCountsOnly(t *testing.T) {
	exporter, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	exporter.ObserveAll([]evaluation.Evaluation{
		{Algorithm: algorithm.RSAPSS, Volume: 5, Status: evaluation.StatusFailed},
		{Algorithm: algorithm.RSAPSS, Volume: 6, Status: evaluation.StatusFailed},
	})

	name := algorithm.RSAPSS.String()
	if got := testutil.ToFloat64(exporter.evaluations.WithLabelValues(name, "failed")); got != 2 {
		t.Errorf("failed count = %v, want 2", got)
	}
	if count := testutil.CollectAndCount(exporter.cpuTime); count != 0 {
		t.Errorf("cpu_time series = %d, want 0", count)
	}
}

func TestWriteTextfile(t *testing.T) {
	exporter, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	exporter.Observe(successful(algorithm.MLKEM1024, 250, nil))

	path := filepath.Join(t.TempDir(), "cryptobench.prom")
	if err := exporter.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(content)
	for _, want := range []string{
		"# TYPE cryptobench_cpu_time_milliseconds gauge",
		`cryptobench_cpu_time_milliseconds{algorithm="MLKEM_1024",volume="250"} 100`,
		`cryptobench_evaluations_total{algorithm="MLKEM_1024",status="success"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "go_goroutines") {
		t.Error("textfile includes runtime collectors")
	}
}
