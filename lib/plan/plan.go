// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package plan reads batch benchmark plans. A plan is a JSONC file (JSON
// with // and /* */ comments and trailing commas) listing runs to
// execute in order:
//
//	{
//	  "seed": 42,
//	  "runs": [
//	    // Baseline at the default volume.
//	    {"kind": "single", "algorithm": "AES_GCM", "volume": 1000},
//	    {"kind": "series", "algorithm": "MLKEM_1024", "volumes": [10, 100, 1000]},
//	    {"kind": "compare", "algorithms": ["X25519", "Age"], "volume": 100},
//	  ],
//	}
//
// A run without a seed inherits the plan's seed.
package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/cryptobench/lib/algorithm"
	"github.com/bureau-foundation/cryptobench/lib/evaluation"
)

// Kind selects what a run does.
type Kind string

const (
	KindSingle  Kind = "single"
	KindSeries  Kind = "series"
	KindCompare Kind = "compare"
)

// Run is one entry of a plan.
type Run struct {
	Kind       Kind     `json:"kind"`
	Algorithm  string   `json:"algorithm,omitempty"`
	Algorithms []string `json:"algorithms,omitempty"`
	Volume     int      `json:"volume,omitempty"`
	Volumes    []int    `json:"volumes,omitempty"`
	Seed       *uint64  `json:"seed,omitempty"`
}

// Plan is an ordered list of runs.
type Plan struct {
	Description string `json:"description,omitempty"`
	Seed        uint64 `json:"seed"`
	Runs        []Run  `json:"runs"`
}

// Parse strips comments and trailing commas from data and decodes the
// plan. Unknown fields are rejected.
func Parse(data []byte) (*Plan, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()
	var plan Plan
	if err := decoder.Decode(&plan); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	return &plan, nil
}

// ReadFile reads and parses the plan at path.
func ReadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	plan, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return plan, nil
}

// SeedFor returns the run's seed, or the plan's when the run sets none.
func (p *Plan) SeedFor(run Run) uint64 {
	if run.Seed != nil {
		return *run.Seed
	}
	return p.Seed
}

// Validate reports every structural problem in the plan. Algorithm
// names and volumes are checked against the registry so that a plan
// fails before any run starts.
func (p *Plan) Validate() error {
	if len(p.Runs) == 0 {
		return errors.New("plan has no runs")
	}
	var errs []error
	for index, run := range p.Runs {
		if err := run.validate(); err != nil {
			errs = append(errs, fmt.Errorf("runs[%d]: %w", index, err))
		}
	}
	return errors.Join(errs...)
}

func (r Run) validate() error {
	var errs []error
	switch r.Kind {
	case KindSingle:
		errs = append(errs, checkAlgorithm(r.Algorithm), algorithm.ValidateVolume(r.Volume))
		if len(r.Algorithms) > 0 || len(r.Volumes) > 0 {
			errs = append(errs, errors.New("single runs take algorithm and volume only"))
		}
	case KindSeries:
		errs = append(errs, checkAlgorithm(r.Algorithm), evaluation.ValidateVolumes(r.Volumes))
		if len(r.Algorithms) > 0 || r.Volume != 0 {
			errs = append(errs, errors.New("series runs take algorithm and volumes only"))
		}
	case KindCompare:
		if len(r.Algorithms) == 0 {
			errs = append(errs, evaluation.ErrNoAlgorithms)
		}
		for _, name := range r.Algorithms {
			errs = append(errs, checkAlgorithm(name))
		}
		errs = append(errs, algorithm.ValidateVolume(r.Volume))
		if r.Algorithm != "" || len(r.Volumes) > 0 {
			errs = append(errs, errors.New("compare runs take algorithms and volume only"))
		}
	case "":
		errs = append(errs, errors.New("kind is required"))
	default:
		errs = append(errs, fmt.Errorf("unknown kind %q (want single, series, or compare)", r.Kind))
	}
	return errors.Join(errs...)
}

// Resolve parses the run's algorithm names: the single algorithm for
// single and series runs, the list for compare runs.
func (r Run) Resolve() ([]algorithm.Algorithm, error) {
	names := r.Algorithms
	if r.Kind != KindCompare {
		names = []string{r.Algorithm}
	}
	resolved := make([]algorithm.Algorithm, 0, len(names))
	for _, name := range names {
		alg, err := algorithm.Parse(name)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, alg)
	}
	return resolved, nil
}

func checkAlgorithm(name string) error {
	if name == "" {
		return errors.New("algorithm is required")
	}
	_, err := algorithm.Parse(name)
	return err
}
