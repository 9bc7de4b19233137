// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package evaluation

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/cryptobench/lib/clock"
	"github.com/bureau-foundation/cryptobench/lib/profiling"
)

const (
	// DefaultOverheadIterations is how many times each side of the
	// overhead measurement runs.
	DefaultOverheadIterations = 10

	// OverheadBudgetPercent is the largest acceptable slowdown of a
	// profiled run relative to an unprofiled one.
	OverheadBudgetPercent = 10.0

	referenceSize = 50_000
)

// ReferenceWorkload is the fixed CPU-and-allocation workload used to
// measure profiler overhead: squares of 0..49999 collected into a slice
// and summed.
func ReferenceWorkload(context.Context) (any, error) {
	squares := make([]int, 0, referenceSize)
	for i := range referenceSize {
		squares = append(squares, i*i)
	}
	total := 0
	for _, square := range squares {
		total += square
	}
	return total, nil
}

func emptyWorkload(context.Context) (any, error) { return nil, nil }

// Overhead compares mean wall time with and without profiling.
// FixedMS is the mean profiled wall time of an empty workload: the
// per-execution cost of arming and disarming the instruments, dominated
// by the runtime flushing the CPU profile. It is included in ProfiledMS,
// so workloads much shorter than it cannot meet the budget.
type Overhead struct {
	Iterations      int     `json:"iterations"`
	BaselineMS      float64 `json:"baseline_ms"`
	ProfiledMS      float64 `json:"profiled_ms"`
	FixedMS         float64 `json:"fixed_ms"`
	AbsoluteMS      float64 `json:"absolute_ms"`
	RelativePercent float64 `json:"relative_percent"`
	BudgetPercent   float64 `json:"budget_percent"`
	WithinBudget    bool    `json:"within_budget"`
}

// MeasureOverhead runs workload iterations times bare and iterations
// times through executor, and reports the relative slowdown. It also
// runs an empty workload iterations times through executor to report
// the fixed cost.
func MeasureOverhead(ctx context.Context, executor Executor, workload profiling.Workload, iterations int, c clock.Clock) (Overhead, error) {
	if iterations <= 0 {
		iterations = DefaultOverheadIterations
	}
	c = clock.OrReal(c)

	var baseline, profiled, fixed float64
	for range iterations {
		started := c.Now()
		if _, err := workload(ctx); err != nil {
			return Overhead{}, fmt.Errorf("baseline run: %w", err)
		}
		baseline += milliseconds(c.Now().Sub(started))
	}
	for range iterations {
		started := c.Now()
		if _, err := executor.Execute(ctx, workload); err != nil {
			return Overhead{}, fmt.Errorf("profiled run: %w", err)
		}
		profiled += milliseconds(c.Now().Sub(started))
	}
	for range iterations {
		started := c.Now()
		if _, err := executor.Execute(ctx, emptyWorkload); err != nil {
			return Overhead{}, fmt.Errorf("empty profiled run: %w", err)
		}
		fixed += milliseconds(c.Now().Sub(started))
	}

	result := Overhead{
		Iterations:    iterations,
		BaselineMS:    baseline / float64(iterations),
		ProfiledMS:    profiled / float64(iterations),
		FixedMS:       fixed / float64(iterations),
		BudgetPercent: OverheadBudgetPercent,
	}
	result.AbsoluteMS = result.ProfiledMS - result.BaselineMS
	if result.BaselineMS > 0 {
		result.RelativePercent = result.AbsoluteMS / result.BaselineMS * 100
	}
	result.WithinBudget = result.RelativePercent < OverheadBudgetPercent
	return result, nil
}
