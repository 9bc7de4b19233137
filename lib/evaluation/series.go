// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package evaluation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/bureau-foundation/cryptobench/lib/algorithm"
)

// ErrNoVolumes is returned by RunSeries for an empty volume list.
var ErrNoVolumes = errors.New("volumes list must not be empty")

// SeriesAggregate summarizes a series. CPU statistics cover successful
// evaluations only; Volumes lists every requested volume.
type SeriesAggregate struct {
	CPUTimeAvgMS float64 `json:"cpu_time_avg_ms"`
	CPUTimeStdMS float64 `json:"cpu_time_std_ms"`
	MemoryPeakMB float64 `json:"memory_peak_mb"`
	Volumes      []int   `json:"volumes"`
	SuccessRate  float64 `json:"success_rate"`
}

// Series is one algorithm evaluated across several volumes.
type Series struct {
	ID          string              `json:"id"`
	Algorithm   algorithm.Algorithm `json:"algorithm"`
	Volumes     []int               `json:"volumes"`
	Seed        uint64              `json:"seed"`
	Evaluations []Evaluation        `json:"evaluations"`
	Aggregate   SeriesAggregate     `json:"aggregated_metrics"`
	Status      Status              `json:"status"`
	DurationMS  float64             `json:"duration_ms"`
}

// ValidateVolumes rejects an empty list or any volume below one.
func ValidateVolumes(volumes []int) error {
	if len(volumes) == 0 {
		return ErrNoVolumes
	}
	for _, volume := range volumes {
		if volume <= 0 {
			return fmt.Errorf("%w: all volumes must be greater than 0, got %d", algorithm.ErrInvalidVolume, volume)
		}
	}
	return nil
}

// RunSeries evaluates alg at each volume in order, using seed+i for the
// i-th volume.
func (r *Runner) RunSeries(ctx context.Context, alg algorithm.Algorithm, volumes []int, seed uint64) (Series, error) {
	if err := ValidateVolumes(volumes); err != nil {
		return Series{}, err
	}

	started := r.clock.Now()
	series := Series{
		ID:        NewID(alg.String()+"_scalability", started),
		Algorithm: alg,
		Volumes:   volumes,
		Seed:      seed,
	}
	r.logger.Info("series starting", "id", series.ID, "algorithm", alg.String(), "volumes", volumes)

	for index, volume := range volumes {
		r.logger.Info("series volume", "volume", volume, "index", index+1, "of", len(volumes))
		evaluation, err := r.RunSingle(ctx, alg, volume, seed+uint64(index))
		if err != nil {
			return Series{}, err
		}
		series.Evaluations = append(series.Evaluations, evaluation)
	}

	series.Aggregate = AggregateSeries(series.Evaluations)
	series.Status = seriesStatus(series.Aggregate.SuccessRate)
	series.DurationMS = milliseconds(r.clock.Now().Sub(started))
	r.logger.Info("series complete", "id", series.ID, "status", series.Status, "duration_ms", series.DurationMS)
	return series, nil
}

// AggregateSeries computes mean and population standard deviation of
// CPU time over successful evaluations, the peak memory, and the
// success rate.
func AggregateSeries(evaluations []Evaluation) SeriesAggregate {
	aggregate := SeriesAggregate{Volumes: make([]int, 0, len(evaluations))}
	var cpuTimes []float64
	for _, evaluation := range evaluations {
		aggregate.Volumes = append(aggregate.Volumes, evaluation.Volume)
		if evaluation.Status != StatusSuccess {
			continue
		}
		cpuTimes = append(cpuTimes, evaluation.Summary.CPUTimeMS)
		aggregate.MemoryPeakMB = max(aggregate.MemoryPeakMB, evaluation.Summary.MemoryMB)
	}
	if len(evaluations) > 0 {
		aggregate.SuccessRate = float64(len(cpuTimes)) / float64(len(evaluations))
	}
	aggregate.CPUTimeAvgMS, aggregate.CPUTimeStdMS = meanStd(cpuTimes)
	return aggregate
}

func seriesStatus(successRate float64) Status {
	switch {
	case successRate == 1:
		return StatusSuccess
	case successRate > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}

func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, value := range values {
		mean += value
	}
	mean /= float64(len(values))
	var variance float64
	for _, value := range values {
		variance += (value - mean) * (value - mean)
	}
	return mean, math.Sqrt(variance / float64(len(values)))
}
