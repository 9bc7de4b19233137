// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package evaluation

import (
	"context"
	"errors"
	"math"
	"regexp"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/cryptobench/lib/algorithm"
	"github.com/bureau-foundation/cryptobench/lib/clock"
	"github.com/bureau-foundation/cryptobench/lib/cputimer"
	"github.com/bureau-foundation/cryptobench/lib/profiling"
	"github.com/bureau-foundation/cryptobench/lib/sampler"
)

var epoch = time.Date(2026, 3, 14, 15, 9, 26, 535897000, time.UTC)

// stubExecutor runs the workload for real but reports canned metrics,
// advancing the fake clock by elapsed per call. Calls listed in fail
// return errFailure instead.
type stubExecutor struct {
	clock   *clock.FakeClock
	elapsed time.Duration
	cpuMS   []float64
	fail    map[int]bool
	calls   int
}

var errFailure = errors.New("decapsulation mismatch")

func (e *stubExecutor) Execute(ctx context.Context, workload profiling.Workload) (profiling.Execution, error) {
	call := e.calls
	e.calls++
	e.clock.Advance(e.elapsed)
	if e.fail[call] {
		return profiling.Execution{}, errFailure
	}
	result, err := workload(ctx)
	if err != nil {
		return profiling.Execution{}, err
	}
	var cpuMS float64
	if len(e.cpuMS) > 0 {
		cpuMS = e.cpuMS[call%len(e.cpuMS)]
	}
	return profiling.Execution{
		Result: result,
		Metrics: profiling.Metrics{
			CPU:    cputimer.Profile{ExclusiveTimeMS: cpuMS},
			System: sampler.AggregateMetrics{SampleCount: 3},
			Memory: profiling.MemoryMetrics{PeakMB: 10 * float64(call+1), Samples: []float64{1, 2}},
		},
	}, nil
}

func newStubRunner(executor *stubExecutor) *Runner {
	return NewRunner(Config{Executor: executor, Clock: executor.clock})
}

func TestNewID(t *testing.T) {
	if got := NewID("MLKEM_1024", epoch); got != "MLKEM_1024_20260314_150926_535897" {
		t.Errorf("NewID() = %q", got)
	}
}

func TestRunSingleSuccess(t *testing.T) {
	executor := &stubExecutor{clock: clock.Fake(epoch), elapsed: 1500 * time.Millisecond, cpuMS: []float64{42}}
	runner := newStubRunner(executor)

	evaluation, err := runner.RunSingle(context.Background(), algorithm.AESGCM, 3, 7)
	if err != nil {
		t.Fatalf("RunSingle: %v", err)
	}
	if evaluation.Status != StatusSuccess {
		t.Fatalf("Status = %s, notes %q", evaluation.Status, evaluation.Notes)
	}
	if !regexp.MustCompile(`^AES_GCM_\d{8}_\d{6}_\d{6}$`).MatchString(evaluation.ID) {
		t.Errorf("ID = %q", evaluation.ID)
	}
	if evaluation.ChallengeType != algorithm.Cipher || evaluation.Volume != 3 || evaluation.Seed != 7 {
		t.Errorf("evaluation = %+v", evaluation)
	}
	if evaluation.DurationMS != 1500 {
		t.Errorf("DurationMS = %v, want 1500", evaluation.DurationMS)
	}
	if !evaluation.EndedAt.Equal(epoch.Add(1500 * time.Millisecond)) {
		t.Errorf("EndedAt = %v", evaluation.EndedAt)
	}
	if evaluation.Summary.CPUTimeMS != 42 || evaluation.Summary.MemoryMB != 10 || evaluation.Summary.SampleCount != 3 {
		t.Errorf("Summary = %+v", evaluation.Summary)
	}
	if evaluation.Metrics == nil {
		t.Error("Metrics missing on success")
	}
}

func TestRunSingleWorkloadFailure(t *testing.T) {
	executor := &stubExecutor{clock: clock.Fake(epoch), fail: map[int]bool{0: true}}
	evaluation, err := newStubRunner(executor).RunSingle(context.Background(), algorithm.MLDSA87, 1, 42)
	if err != nil {
		t.Fatalf("RunSingle returned error for a workload failure: %v", err)
	}
	if evaluation.Status != StatusFailed {
		t.Errorf("Status = %s, want failed", evaluation.Status)
	}
	if evaluation.Notes != "Error: "+errFailure.Error() {
		t.Errorf("Notes = %q", evaluation.Notes)
	}
	if evaluation.Metrics != nil {
		t.Error("failed evaluation carries metrics")
	}
}

func TestRunSingleValidatesBeforeArming(t *testing.T) {
	executor := &stubExecutor{clock: clock.Fake(epoch)}
	_, err := newStubRunner(executor).RunSingle(context.Background(), algorithm.AESGCM, 0, 42)
	if !errors.Is(err, algorithm.ErrInvalidVolume) {
		t.Fatalf("error = %v, want ErrInvalidVolume", err)
	}
	if !strings.Contains(err.Error(), "volume must be greater than 0, got 0") {
		t.Errorf("message = %q", err)
	}
	if executor.calls != 0 {
		t.Errorf("executor called %d times for an invalid request", executor.calls)
	}
}

func TestRunSeries(t *testing.T) {
	executor := &stubExecutor{
		clock:   clock.Fake(epoch),
		elapsed: time.Second,
		cpuMS:   []float64{10, 20, 30},
		fail:    map[int]bool{1: true},
	}
	series, err := newStubRunner(executor).RunSeries(context.Background(), algorithm.X25519, []int{1, 2, 4}, 100)
	if err != nil {
		t.Fatalf("RunSeries: %v", err)
	}

	if len(series.Evaluations) != 3 {
		t.Fatalf("got %d evaluations, want 3", len(series.Evaluations))
	}
	for index, evaluation := range series.Evaluations {
		if evaluation.Seed != 100+uint64(index) {
			t.Errorf("evaluation %d seed = %d, want %d", index, evaluation.Seed, 100+index)
		}
	}
	if series.Status != StatusPartial {
		t.Errorf("Status = %s, want partial", series.Status)
	}
	if !strings.HasPrefix(series.ID, "X25519_scalability_") {
		t.Errorf("ID = %q", series.ID)
	}
	aggregate := series.Aggregate
	if aggregate.CPUTimeAvgMS != 20 || aggregate.CPUTimeStdMS != 10 {
		t.Errorf("cpu avg/std = %v/%v, want 20/10", aggregate.CPUTimeAvgMS, aggregate.CPUTimeStdMS)
	}
	if aggregate.MemoryPeakMB != 30 {
		t.Errorf("MemoryPeakMB = %v, want 30", aggregate.MemoryPeakMB)
	}
	if math.Abs(aggregate.SuccessRate-2.0/3.0) > 1e-9 {
		t.Errorf("SuccessRate = %v, want 2/3", aggregate.SuccessRate)
	}
	if !slices.Equal(aggregate.Volumes, []int{1, 2, 4}) {
		t.Errorf("Volumes = %v", aggregate.Volumes)
	}
	if series.DurationMS != 3000 {
		t.Errorf("DurationMS = %v, want 3000", series.DurationMS)
	}
}

func TestRunSeriesValidation(t *testing.T) {
	runner := newStubRunner(&stubExecutor{clock: clock.Fake(epoch)})
	if _, err := runner.RunSeries(context.Background(), algorithm.AESGCM, nil, 1); !errors.Is(err, ErrNoVolumes) {
		t.Errorf("empty volumes error = %v", err)
	}
	if _, err := runner.RunSeries(context.Background(), algorithm.AESGCM, []int{5, 0}, 1); !errors.Is(err, algorithm.ErrInvalidVolume) {
		t.Errorf("zero volume error = %v", err)
	}
}

func TestSeriesStatus(t *testing.T) {
	tests := []struct {
		rate float64
		want Status
	}{
		{1, StatusSuccess},
		{0.5, StatusPartial},
		{0, StatusFailed},
	}
	for _, test := range tests {
		if got := seriesStatus(test.rate); got != test.want {
			t.Errorf("seriesStatus(%v) = %s, want %s", test.rate, got, test.want)
		}
	}
	if got := AggregateSeries(nil); got.SuccessRate != 0 || got.CPUTimeAvgMS != 0 {
		t.Errorf("AggregateSeries(nil) = %+v", got)
	}
}

func TestRunComparison(t *testing.T) {
	executor := &stubExecutor{clock: clock.Fake(epoch), fail: map[int]bool{2: true}}
	algorithms := []algorithm.Algorithm{algorithm.AESGCM, algorithm.XChaCha20Poly1305, algorithm.X25519}

	comparison, err := newStubRunner(executor).RunComparison(context.Background(), algorithms, 2, 9)
	if err != nil {
		t.Fatalf("RunComparison: %v", err)
	}
	if len(comparison.Evaluations) != 3 || comparison.Status != StatusPartial {
		t.Errorf("comparison = %d evaluations, status %s", len(comparison.Evaluations), comparison.Status)
	}
	for index, evaluation := range comparison.Evaluations {
		if evaluation.Algorithm != algorithms[index] || evaluation.Seed != 9 {
			t.Errorf("evaluation %d = %s seed %d", index, evaluation.Algorithm, evaluation.Seed)
		}
	}

	if _, err := newStubRunner(executor).RunComparison(context.Background(), nil, 2, 9); !errors.Is(err, ErrNoAlgorithms) {
		t.Errorf("empty comparison error = %v", err)
	}
}

func TestRunSingleCostGrowsWithVolume(t *testing.T) {
	if testing.Short() {
		t.Skip("profiles real workloads")
	}
	orchestrator, err := profiling.New(profiling.Config{})
	if err != nil {
		t.Fatalf("profiling.New: %v", err)
	}
	defer orchestrator.Close()
	runner := NewRunner(Config{Executor: orchestrator})

	small, err := runner.RunSingle(context.Background(), algorithm.MLDSA87, 10, algorithm.DefaultSeed)
	if err != nil {
		t.Fatalf("RunSingle(10): %v", err)
	}
	large, err := runner.RunSingle(context.Background(), algorithm.MLDSA87, 1000, algorithm.DefaultSeed)
	if err != nil {
		t.Fatalf("RunSingle(1000): %v", err)
	}
	if small.Status != StatusSuccess || large.Status != StatusSuccess {
		t.Fatalf("statuses = %s, %s (notes %q, %q)", small.Status, large.Status, small.Notes, large.Notes)
	}
	if large.Summary.CPUTimeMS < small.Summary.CPUTimeMS {
		t.Errorf("cpu time fell with volume: %v ms at 10, %v ms at 1000", small.Summary.CPUTimeMS, large.Summary.CPUTimeMS)
	}
	if large.DurationMS < small.DurationMS {
		t.Errorf("wall time fell with volume: %v ms at 10, %v ms at 1000", small.DurationMS, large.DurationMS)
	}
	if small.Summary.MemoryMB <= 0 || large.Summary.MemoryMB <= 0 {
		t.Errorf("peak memory = %v, %v, want > 0", small.Summary.MemoryMB, large.Summary.MemoryMB)
	}
	t.Logf("volume 10: %.2f ms cpu, %.2f MB; volume 1000: %.2f ms cpu, %.2f MB",
		small.Summary.CPUTimeMS, small.Summary.MemoryMB, large.Summary.CPUTimeMS, large.Summary.MemoryMB)
}
