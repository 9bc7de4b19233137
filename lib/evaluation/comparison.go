// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package evaluation

import (
	"context"
	"errors"

	"github.com/bureau-foundation/cryptobench/lib/algorithm"
)

// ErrNoAlgorithms is returned by RunComparison for an empty list.
var ErrNoAlgorithms = errors.New("algorithms list must not be empty")

// Comparison is several algorithms evaluated at the same volume and
// seed.
type Comparison struct {
	ID          string       `json:"id"`
	Volume      int          `json:"volume"`
	Seed        uint64       `json:"seed"`
	Evaluations []Evaluation `json:"evaluations"`
	Status      Status       `json:"status"`
}

// RunComparison evaluates each algorithm in turn.
func (r *Runner) RunComparison(ctx context.Context, algorithms []algorithm.Algorithm, volume int, seed uint64) (Comparison, error) {
	if len(algorithms) == 0 {
		return Comparison{}, ErrNoAlgorithms
	}
	if err := algorithm.ValidateVolume(volume); err != nil {
		return Comparison{}, err
	}

	comparison := Comparison{
		ID:     NewID("comparison", r.clock.Now()),
		Volume: volume,
		Seed:   seed,
	}
	succeeded := 0
	for _, alg := range algorithms {
		evaluation, err := r.RunSingle(ctx, alg, volume, seed)
		if err != nil {
			return Comparison{}, err
		}
		if evaluation.Status == StatusSuccess {
			succeeded++
		}
		comparison.Evaluations = append(comparison.Evaluations, evaluation)
	}
	comparison.Status = seriesStatus(float64(succeeded) / float64(len(algorithms)))
	return comparison, nil
}
