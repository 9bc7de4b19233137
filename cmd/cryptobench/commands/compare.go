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

type compareParams struct {
	sessionParams
	outputParams
	cli.JSONOutput
	All    bool   `json:"all" flag:"all" desc:"compare every registered algorithm"`
	Volume int    `json:"volume" flag:"volume,n" desc:"operations per algorithm (default from configuration)"`
	Seed   uint64 `json:"seed" flag:"seed,s" desc:"random seed shared by all algorithms (default from configuration)"`
}

func compareCommand() *cli.Command {
	var params compareParams
	var flags *pflag.FlagSet
	return &cli.Command{
		Name:    "compare",
		Summary: "Profile several algorithms at the same volume",
		Description: `Evaluate each ALGORITHM in turn at one volume and seed, record the
comparison, and write a report ranking the algorithms by CPU time.

The command exits 1 unless every evaluation succeeded.`,
		Usage: "cryptobench compare ALGORITHM... [flags]",
		Examples: []cli.Example{
			{Description: "Compare the two AEADs", Command: "cryptobench compare AES_GCM XChaCha20_Poly1305 -n 100000"},
			{Description: "Compare everything at 100 operations", Command: "cryptobench compare --all -n 100"},
		},
		Flags: func() *pflag.FlagSet {
			flags = cli.FlagsFromParams("compare", &params)
			return flags
		},
		Run: func(args []string) error {
			ctx, stop := signalContext()
			defer stop()
			return runCompare(ctx, params, args, flags, os.Stdout)
		},
	}
}

func runCompare(ctx context.Context, params compareParams, names []string, flags *pflag.FlagSet, w io.Writer) error {
	algorithms, err := selectAlgorithms(names, params.All)
	if err != nil {
		return err
	}

	s, err := openSession(params.sessionParams, &params.outputParams, "compare")
	if err != nil {
		return err
	}
	defer s.Close()
	volume, seed := params.Volume, params.Seed
	if !changed(flags, "volume") {
		volume = s.config.Defaults.Volume
	}
	if !changed(flags, "seed") {
		seed = s.config.Defaults.Seed
	}

	runner, closeRunner, err := s.newRunner()
	if err != nil {
		return err
	}
	defer closeRunner()

	comparison, err := runner.RunComparison(ctx, algorithms, volume, seed)
	if err != nil {
		return err
	}
	stored, publishErr := s.publishComparison(ctx, comparison)

	if done, err := params.EmitJSON(w, struct {
		evaluation.Comparison
		Published published `json:"published"`
	}{comparison, stored}); done {
		if err != nil {
			return err
		}
	} else {
		if err := writeEvaluations(w, comparison.Evaluations); err != nil {
			return err
		}
		fmt.Fprintf(w, "Comparison %s: %s\n", comparison.ID, comparison.Status)
		writePublished(w, stored)
	}
	if publishErr != nil {
		return publishErr
	}
	return failedExit(comparison.Status)
}

// selectAlgorithms parses names, or returns the whole registry for all.
func selectAlgorithms(names []string, all bool) ([]algorithm.Algorithm, error) {
	if all {
		if len(names) > 0 {
			return nil, fmt.Errorf("--all and explicit algorithms are mutually exclusive")
		}
		return algorithm.All(), nil
	}
	if len(names) == 0 {
		return nil, evaluation.ErrNoAlgorithms
	}
	algorithms := make([]algorithm.Algorithm, 0, len(names))
	for _, name := range names {
		alg, err := algorithm.Parse(name)
		if err != nil {
			return nil, err
		}
		algorithms = append(algorithms, alg)
	}
	return algorithms, nil
}
