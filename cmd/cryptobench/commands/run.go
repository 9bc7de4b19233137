// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/cryptobench/cmd/cryptobench/cli"
	"github.com/bureau-foundation/cryptobench/lib/algorithm"
	"github.com/bureau-foundation/cryptobench/lib/evaluation"
)

type runParams struct {
	sessionParams
	outputParams
	cli.JSONOutput
	Volume int    `json:"volume" flag:"volume,n" desc:"operations to perform (default from configuration)"`
	Seed   uint64 `json:"seed" flag:"seed,s" desc:"random seed (default from configuration)"`
}

func runCommand() *cli.Command {
	var params runParams
	var flags *pflag.FlagSet
	return &cli.Command{
		Name:    "run",
		Summary: "Profile one algorithm at one volume",
		Description: `Run one evaluation: perform VOLUME full round trips of ALGORITHM
(key generation, use, verification) under CPU, memory, and system
instrumentation, then record the result, write a Markdown report, and
print a summary.

A workload error produces a failed evaluation, which is recorded like
any other and makes the command exit 1.`,
		Usage: "cryptobench run [ALGORITHM] [flags]",
		Examples: []cli.Example{
			{Description: "Profile ML-KEM-1024 with the configured defaults", Command: "cryptobench run MLKEM_1024"},
			{Description: "Profile AES-GCM for 50000 operations", Command: "cryptobench run AES_GCM -n 50000 --seed 7"},
		},
		Flags: func() *pflag.FlagSet {
			flags = cli.FlagsFromParams("run", &params)
			return flags
		},
		Run: func(args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("run takes one algorithm, got %d (use compare for several)", len(args))
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			ctx, stop := signalContext()
			defer stop()
			return runSingle(ctx, params, name, flags, os.Stdout)
		},
	}
}

// runSingle fills unset parameters from configuration and runs one
// evaluation. flags reports which parameters were set explicitly.
func runSingle(ctx context.Context, params runParams, name string, flags *pflag.FlagSet, w io.Writer) error {
	s, err := openSession(params.sessionParams, &params.outputParams, "run")
	if err != nil {
		return err
	}
	defer s.Close()

	if name == "" {
		name = s.config.Defaults.Algorithm
	}
	alg, err := algorithm.Parse(name)
	if err != nil {
		return err
	}
	volume, seed := params.Volume, params.Seed
	if !changed(flags, "volume") {
		volume = s.config.Defaults.Volume
	}
	if !changed(flags, "seed") {
		seed = s.config.Defaults.Seed
	}
	if err := algorithm.ValidateVolume(volume); err != nil {
		return err
	}

	runner, closeRunner, err := s.newRunner()
	if err != nil {
		return err
	}
	defer closeRunner()

	result, err := runner.RunSingle(ctx, alg, volume, seed)
	if err != nil {
		return err
	}
	stored, publishErr := s.publishEvaluation(ctx, result)

	if done, err := params.EmitJSON(w, struct {
		evaluation.Evaluation
		Published published `json:"published"`
	}{result, stored}); done {
		if err != nil {
			return err
		}
	} else {
		if err := writeEvaluations(w, []evaluation.Evaluation{result}); err != nil {
			return err
		}
		writePublished(w, stored)
	}
	if publishErr != nil {
		return publishErr
	}
	return failedExit(result.Status)
}

// changed reports whether the named flag was set on the command line.
// A nil flag set counts as nothing set.
func changed(flags *pflag.FlagSet, name string) bool {
	return flags != nil && flags.Changed(name)
}
