// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/cryptobench/cmd/cryptobench/cli"
	"github.com/bureau-foundation/cryptobench/lib/algorithm"
	"github.com/bureau-foundation/cryptobench/lib/evaluation"
)

type neutralityParams struct {
	sessionParams
	cli.JSONOutput
	Seed uint64 `json:"seed" flag:"seed,s" desc:"random seed" default:"42"`
}

func neutralityCommand() *cli.Command {
	var params neutralityParams
	return &cli.Command{
		Name:    "neutrality",
		Summary: "Check that every algorithm is instrumented identically",
		Description: `Run each ALGORITHM (default: all) once at volume 1 through a single
orchestrator and verify that every run armed the instruments in the same
order and produced the same metric keys as the first.

The command exits 1 when any algorithm differs.`,
		Usage: "cryptobench neutrality [ALGORITHM...] [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("neutrality", &params)
		},
		Run: func(args []string) error {
			ctx, stop := signalContext()
			defer stop()
			return runNeutrality(ctx, params, args, os.Stdout)
		},
	}
}

func runNeutrality(ctx context.Context, params neutralityParams, names []string, w io.Writer) error {
	algorithms := algorithm.All()
	if len(names) > 0 {
		var err error
		if algorithms, err = selectAlgorithms(names, false); err != nil {
			return err
		}
	}
	s, err := openSession(params.sessionParams, nil, "neutrality")
	if err != nil {
		return err
	}
	defer s.Close()

	result, err := evaluation.CheckNeutrality(ctx, s.profilingConfig(), algorithms, params.Seed)
	if err != nil {
		return err
	}

	if done, err := params.EmitJSON(w, result); done {
		if err != nil {
			return err
		}
	} else {
		rows := make([][]string, 0, len(result.Results))
		for _, r := range result.Results {
			var problems []string
			if !r.PhasesMatch {
				problems = append(problems, "arming sequence differs")
			}
			if len(r.MissingKeys) > 0 {
				problems = append(problems, "missing "+strings.Join(r.MissingKeys, ", "))
			}
			if len(r.ExtraKeys) > 0 {
				problems = append(problems, "extra "+strings.Join(r.ExtraKeys, ", "))
			}
			if r.Error != "" {
				problems = append(problems, "error: "+r.Error)
			}
			rows = append(rows, []string{r.Algorithm.String(), fmt.Sprint(r.Neutral), strings.Join(problems, "; ")})
		}
		if err := cli.RenderTable(w, []string{"ALGORITHM", "NEUTRAL", "DIFFERENCES"}, rows); err != nil {
			return err
		}
		fmt.Fprintf(w, "%d metric keys compared against %s.\n", len(result.Keys), result.Reference)
	}
	if !result.Neutral {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
