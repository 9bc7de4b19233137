// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package profiling

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/bureau-foundation/cryptobench/lib/cputimer"
	"github.com/bureau-foundation/cryptobench/lib/hwinfo"
	"github.com/bureau-foundation/cryptobench/lib/sampler"
)

// MemoryMetrics is the memory part of the envelope. Samples are the
// absolute RSS readings in MiB, in order.
type MemoryMetrics struct {
	PeakMB  float64   `json:"memory_mb"`
	Samples []float64 `json:"memory_samples"`
}

// Metrics is the envelope produced by one execution.
type Metrics struct {
	CPU      cputimer.Profile         `json:"cpu"`
	System   sampler.AggregateMetrics `json:"system"`
	Hardware hwinfo.Snapshot          `json:"hardware"`
	Memory   MemoryMetrics            `json:"memory"`
}

// Execution pairs the workload's result with its metrics.
type Execution struct {
	Result  any
	Metrics Metrics
}

// Keys returns the envelope's key paths ("cpu.cpu_time_ms",
// "memory.memory_samples", ...) in sorted order. Arrays and absent
// values count as leaves.
func (m Metrics) Keys() []string {
	encoded, err := json.Marshal(m)
	if err != nil {
		panic(fmt.Sprintf("profiling: encoding metrics: %v", err))
	}
	var tree map[string]any
	if err := json.Unmarshal(encoded, &tree); err != nil {
		panic(fmt.Sprintf("profiling: decoding metrics: %v", err))
	}
	var keys []string
	collectKeys("", tree, &keys)
	slices.Sort(keys)
	return keys
}

func collectKeys(prefix string, tree map[string]any, keys *[]string) {
	for key, value := range tree {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			collectKeys(path, nested, keys)
			continue
		}
		*keys = append(*keys, path)
	}
}
