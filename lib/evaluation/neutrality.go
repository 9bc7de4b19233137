// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package evaluation

import (
	"context"
	"fmt"
	"slices"

	"github.com/bureau-foundation/cryptobench/lib/algorithm"
	"github.com/bureau-foundation/cryptobench/lib/profiling"
)

// NeutralityResult compares one algorithm's instrumentation with the
// reference algorithm's.
type NeutralityResult struct {
	Algorithm   algorithm.Algorithm `json:"algorithm"`
	Phases      []profiling.Phase   `json:"phases"`
	MissingKeys []string            `json:"missing_keys,omitempty"`
	ExtraKeys   []string            `json:"extra_keys,omitempty"`
	PhasesMatch bool                `json:"phases_match"`
	Error       string              `json:"error,omitempty"`
	Neutral     bool                `json:"neutral"`
}

// NeutralityReport is the outcome of CheckNeutrality.
type NeutralityReport struct {
	Reference algorithm.Algorithm `json:"reference"`
	Keys      []string            `json:"keys"`
	Phases    []profiling.Phase   `json:"phases"`
	Results   []NeutralityResult  `json:"results"`
	Neutral   bool                `json:"neutral"`
}

// CheckNeutrality runs every algorithm once at volume 1 through a single
// orchestrator built from config and verifies that each run armed the
// same phases in the same order and produced the same metric keys as
// the first algorithm. config.Observer is replaced.
func CheckNeutrality(ctx context.Context, config profiling.Config, algorithms []algorithm.Algorithm, seed uint64) (NeutralityReport, error) {
	if len(algorithms) == 0 {
		return NeutralityReport{}, ErrNoAlgorithms
	}

	var phases []profiling.Phase
	config.Observer = func(phase profiling.Phase) { phases = append(phases, phase) }
	orchestrator, err := profiling.New(config)
	if err != nil {
		return NeutralityReport{}, err
	}
	defer orchestrator.Close()

	report := NeutralityReport{Reference: algorithms[0], Neutral: true}
	for index, alg := range algorithms {
		workload, err := algorithm.NewWorkload(alg, 1, seed)
		if err != nil {
			return NeutralityReport{}, err
		}
		phases = nil
		execution, err := orchestrator.Execute(ctx, profiling.Workload(workload))

		result := NeutralityResult{Algorithm: alg, Phases: phases}
		if err != nil {
			result.Error = err.Error()
		}
		keys := execution.Metrics.Keys()
		if index == 0 {
			if err != nil {
				return NeutralityReport{}, fmt.Errorf("reference algorithm %s failed: %w", alg, err)
			}
			report.Keys, report.Phases = keys, phases
		}
		result.PhasesMatch = slices.Equal(phases, report.Phases)
		if err == nil {
			result.MissingKeys = difference(report.Keys, keys)
			result.ExtraKeys = difference(keys, report.Keys)
		}
		result.Neutral = err == nil && result.PhasesMatch && len(result.MissingKeys) == 0 && len(result.ExtraKeys) == 0
		report.Neutral = report.Neutral && result.Neutral
		report.Results = append(report.Results, result)
	}
	return report, nil
}

// difference returns the elements of a not in b. Both are sorted.
func difference(a, b []string) []string {
	var missing []string
	for _, key := range a {
		if _, found := slices.BinarySearch(b, key); !found {
			missing = append(missing, key)
		}
	}
	return missing
}
