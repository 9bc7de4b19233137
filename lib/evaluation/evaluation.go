// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/cryptobench/lib/algorithm"
	"github.com/bureau-foundation/cryptobench/lib/clock"
	"github.com/bureau-foundation/cryptobench/lib/profiling"
)

// Status is the outcome of an evaluation or series.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Summary holds the headline figures of one evaluation.
type Summary struct {
	CPUTimeMS   float64 `json:"cpu_time_ms"`
	MemoryMB    float64 `json:"memory_mb"`
	CPUCycles   *uint64 `json:"cpu_cycles"`
	SampleCount int     `json:"sample_count"`
}

// Evaluation is one profiled run of one algorithm at one volume.
type Evaluation struct {
	ID            string                  `json:"id"`
	Algorithm     algorithm.Algorithm     `json:"algorithm"`
	ChallengeType algorithm.ChallengeType `json:"challenge_type"`
	Volume        int                     `json:"volume"`
	Seed          uint64                  `json:"seed"`
	StartedAt     time.Time               `json:"started_at"`
	EndedAt       time.Time               `json:"ended_at"`
	DurationMS    float64                 `json:"duration_ms"`
	Status        Status                  `json:"status"`
	Summary       Summary                 `json:"summary"`
	// Metrics is nil for failed evaluations.
	Metrics *profiling.Metrics `json:"metrics"`
	Notes   string             `json:"notes"`
}

// Executor runs a workload under instrumentation.
type Executor interface {
	Execute(ctx context.Context, workload profiling.Workload) (profiling.Execution, error)
}

// Config configures a Runner.
type Config struct {
	Executor Executor
	Clock    clock.Clock
	Logger   *slog.Logger
}

// Runner produces evaluations. It is not safe for concurrent use.
type Runner struct {
	executor Executor
	clock    clock.Clock
	logger   *slog.Logger
}

// NewRunner returns a Runner.
func NewRunner(config Config) *Runner {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		executor: config.Executor,
		clock:    clock.OrReal(config.Clock),
		logger:   logger,
	}
}

// NewID formats an evaluation ID: the algorithm name, then the start
// time to the microsecond.
func NewID(prefix string, started time.Time) string {
	return fmt.Sprintf("%s_%s_%06d", prefix, started.Format("20060102_150405"), started.Nanosecond()/1000)
}

// RunSingle profiles volume operations of alg. The error is non-nil only
// for invalid requests.
func (r *Runner) RunSingle(ctx context.Context, alg algorithm.Algorithm, volume int, seed uint64) (Evaluation, error) {
	workload, err := algorithm.NewWorkload(alg, volume, seed)
	if err != nil {
		return Evaluation{}, err
	}

	logger := r.logger.With("algorithm", alg.String(), "volume", volume, "seed", seed)
	logger.Info("evaluation starting")

	started := r.clock.Now()
	evaluation := Evaluation{
		ID:            NewID(alg.String(), started),
		Algorithm:     alg,
		ChallengeType: alg.ChallengeType(),
		Volume:        volume,
		Seed:          seed,
		StartedAt:     started,
	}

	execution, err := r.executor.Execute(ctx, profiling.Workload(workload))
	evaluation.EndedAt = r.clock.Now()
	evaluation.DurationMS = milliseconds(evaluation.EndedAt.Sub(started))

	if err != nil {
		evaluation.Status = StatusFailed
		evaluation.Notes = "Error: " + err.Error()
		logger.Error("evaluation failed", "id", evaluation.ID, "error", err, "duration_ms", evaluation.DurationMS)
		return evaluation, nil
	}

	metrics := execution.Metrics
	evaluation.Status = StatusSuccess
	evaluation.Metrics = &metrics
	evaluation.Summary = Summary{
		CPUTimeMS:   metrics.CPU.ExclusiveTimeMS,
		MemoryMB:    metrics.Memory.PeakMB,
		CPUCycles:   metrics.System.CPUCycles,
		SampleCount: metrics.System.SampleCount,
	}
	logger.Info("evaluation complete",
		"id", evaluation.ID,
		"duration_ms", evaluation.DurationMS,
		"cpu_time_ms", evaluation.Summary.CPUTimeMS,
		"memory_mb", evaluation.Summary.MemoryMB,
	)
	return evaluation, nil
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
