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

type scaleParams struct {
	sessionParams
	outputParams
	cli.JSONOutput
	Volumes []int  `json:"volumes" flag:"volumes,v" desc:"comma-separated volumes, in run order" default:"100,1000,10000"`
	Seed    uint64 `json:"seed" flag:"seed,s" desc:"seed of the first volume; volume i uses seed+i (default from configuration)"`
}

func scaleCommand() *cli.Command {
	var params scaleParams
	var flags *pflag.FlagSet
	return &cli.Command{
		Name:    "scale",
		Summary: "Profile one algorithm across several volumes",
		Description: `Run a scalability series: one evaluation of ALGORITHM per volume, in
order, with seed+i for the i-th volume. The series is recorded with mean
and standard deviation of CPU time, peak memory, and success rate, and
the report compares the smallest and largest volumes.

The command exits 1 unless every evaluation succeeded.`,
		Usage: "cryptobench scale ALGORITHM [flags]",
		Examples: []cli.Example{
			{Description: "Scale RSA-PSS from 10 to 1000 operations", Command: "cryptobench scale RSA_PSS --volumes 10,100,1000"},
		},
		Flags: func() *pflag.FlagSet {
			flags = cli.FlagsFromParams("scale", &params)
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("scale takes exactly one algorithm, got %d", len(args))
			}
			ctx, stop := signalContext()
			defer stop()
			return runScale(ctx, params, args[0], flags, os.Stdout)
		},
	}
}

func runScale(ctx context.Context, params scaleParams, name string, flags *pflag.FlagSet, w io.Writer) error {
	alg, err := algorithm.Parse(name)
	if err != nil {
		return err
	}
	if err := evaluation.ValidateVolumes(params.Volumes); err != nil {
		return err
	}

	s, err := openSession(params.sessionParams, &params.outputParams, "scale")
	if err != nil {
		return err
	}
	defer s.Close()
	seed := params.Seed
	if !changed(flags, "seed") {
		seed = s.config.Defaults.Seed
	}

	runner, closeRunner, err := s.newRunner()
	if err != nil {
		return err
	}
	defer closeRunner()

	series, err := runner.RunSeries(ctx, alg, params.Volumes, seed)
	if err != nil {
		return err
	}
	stored, publishErr := s.publishSeries(ctx, series)

	if done, err := params.EmitJSON(w, struct {
		evaluation.Series
		Published published `json:"published"`
	}{series, stored}); done {
		if err != nil {
			return err
		}
	} else {
		if err := writeEvaluations(w, series.Evaluations); err != nil {
			return err
		}
		aggregate := series.Aggregate
		fmt.Fprintf(w, "Series %s: %s, CPU %s ± %s ms, peak %s MB, success %.0f%%\n",
			series.ID, series.Status,
			formatFloat(aggregate.CPUTimeAvgMS), formatFloat(aggregate.CPUTimeStdMS),
			formatFloat(aggregate.MemoryPeakMB), aggregate.SuccessRate*100)
		writePublished(w, stored)
	}
	if publishErr != nil {
		return publishErr
	}
	return failedExit(series.Status)
}
