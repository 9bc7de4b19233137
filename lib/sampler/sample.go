// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sampler

import "time"

// ResourceSample is one instantaneous observation.
type ResourceSample struct {
	Timestamp     time.Time
	CPUPercent    float64
	MemoryPercent float64
	// CPUCycles is nil when no hardware counter is available.
	CPUCycles *uint64
}

// AggregateMetrics summarizes the samples of one sampling window.
type AggregateMetrics struct {
	CPUPercentAvg    float64 `json:"cpu_percent_avg"`
	MemoryPercentMax float64 `json:"memory_percent_max"`
	// CPUCycles is the largest cycle count observed, nil when no sample
	// carried one.
	CPUCycles   *uint64 `json:"cpu_cycles"`
	SampleCount int     `json:"sample_count"`
}

// Aggregate reduces samples to their mean CPU percent, peak memory
// percent, and peak cycle count. An empty slice yields the zero value.
func Aggregate(samples []ResourceSample) AggregateMetrics {
	if len(samples) == 0 {
		return AggregateMetrics{}
	}

	var cpuTotal float64
	var aggregate AggregateMetrics
	for _, sample := range samples {
		cpuTotal += sample.CPUPercent
		aggregate.MemoryPercentMax = max(aggregate.MemoryPercentMax, sample.MemoryPercent)
		if sample.CPUCycles != nil && (aggregate.CPUCycles == nil || *sample.CPUCycles > *aggregate.CPUCycles) {
			cycles := *sample.CPUCycles
			aggregate.CPUCycles = &cycles
		}
	}
	aggregate.CPUPercentAvg = cpuTotal / float64(len(samples))
	aggregate.SampleCount = len(samples)
	return aggregate
}
