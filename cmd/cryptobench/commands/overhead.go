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
	"github.com/bureau-foundation/cryptobench/lib/evaluation"
	"github.com/bureau-foundation/cryptobench/lib/profiling"
)

type overheadParams struct {
	sessionParams
	cli.JSONOutput
	Iterations int `json:"iterations" flag:"iterations,i" desc:"runs of each side of the measurement" default:"10"`
}

func overheadCommand() *cli.Command {
	var params overheadParams
	return &cli.Command{
		Name:    "overhead",
		Summary: "Measure the profiler's own overhead",
		Description: `Time a fixed reference workload (summing the squares of 0..49999)
with and without instrumentation and report the relative slowdown.

Every profiled run also pays a fixed cost, reported as FIXED MS, to arm
and disarm the instruments; stopping the Go CPU profiler alone takes
about 200ms while the runtime flushes the profile. The reference
workload runs for well under a millisecond, so the budget is only met
on workloads long enough to amortize that cost.

The command exits 1 when the slowdown reaches the 10% budget.`,
		Usage: "cryptobench overhead [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("overhead", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("overhead takes no arguments, got %q", args[0])
			}
			ctx, stop := signalContext()
			defer stop()
			return runOverhead(ctx, params, os.Stdout)
		},
	}
}

func runOverhead(ctx context.Context, params overheadParams, w io.Writer) error {
	if params.Iterations <= 0 {
		return fmt.Errorf("--iterations must be positive, got %d", params.Iterations)
	}
	s, err := openSession(params.sessionParams, nil, "overhead")
	if err != nil {
		return err
	}
	defer s.Close()

	orchestrator, err := profiling.New(s.profilingConfig())
	if err != nil {
		return err
	}
	defer orchestrator.Close()

	overhead, err := evaluation.MeasureOverhead(ctx, orchestrator, evaluation.ReferenceWorkload, params.Iterations, nil)
	if err != nil {
		return err
	}
	s.logger.Info("overhead measured",
		"baseline_ms", overhead.BaselineMS,
		"profiled_ms", overhead.ProfiledMS,
		"relative_percent", overhead.RelativePercent,
	)

	if done, err := params.EmitJSON(w, overhead); done {
		if err != nil {
			return err
		}
	} else {
		verdict := "within budget"
		if !overhead.WithinBudget {
			verdict = "OVER BUDGET"
		}
		err := cli.RenderTable(w, []string{"ITERATIONS", "BASELINE MS", "PROFILED MS", "FIXED MS", "OVERHEAD MS", "OVERHEAD %", "BUDGET %"},
			[][]string{{
				fmt.Sprint(overhead.Iterations),
				formatFloat(overhead.BaselineMS),
				formatFloat(overhead.ProfiledMS),
				formatFloat(overhead.FixedMS),
				formatFloat(overhead.AbsoluteMS),
				formatFloat(overhead.RelativePercent),
				formatFloat(overhead.BudgetPercent),
			}})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Profiler overhead %s.\n", verdict)
		fmt.Fprintf(w, "Every profiled run pays a fixed %s ms to arm and disarm the instruments, mostly the CPU profile flush.\n",
			formatFloat(overhead.FixedMS))
	}
	if !overhead.WithinBudget {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
