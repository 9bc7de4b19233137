// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/cryptobench/cmd/cryptobench/cli"
	"github.com/bureau-foundation/cryptobench/lib/evaluation"
	"github.com/bureau-foundation/cryptobench/lib/plan"
)

type planParams struct {
	sessionParams
	outputParams
	cli.JSONOutput
	DryRun bool `json:"dry_run" flag:"dry-run" desc:"validate the plan and list its runs without executing them"`
}

// planOutcome is the result of one plan run.
type planOutcome struct {
	Index     int               `json:"index"`
	Kind      plan.Kind         `json:"kind"`
	ID        string            `json:"id,omitempty"`
	Status    evaluation.Status `json:"status,omitempty"`
	Published published         `json:"published"`
}

func planCommand() *cli.Command {
	var params planParams
	return &cli.Command{
		Name:    "plan",
		Summary: "Execute a batch plan file",
		Description: `Execute the runs listed in a JSONC plan file, in order, through one
orchestrator. A plan is validated completely before the first run
starts. Each run is recorded and reported exactly as the matching
run, scale, or compare command would.

Plan format:

  {
    "seed": 42,               // inherited by runs without a seed
    "runs": [
      {"kind": "single", "algorithm": "AES_GCM", "volume": 1000},
      {"kind": "series", "algorithm": "MLKEM_1024", "volumes": [10, 100]},
      {"kind": "compare", "algorithms": ["X25519", "Age"], "volume": 100},
    ],
  }

The command exits 1 if any run had a failed evaluation.`,
		Usage: "cryptobench plan FILE [flags]",
		Examples: []cli.Example{
			{Description: "Check a plan without running it", Command: "cryptobench plan nightly.jsonc --dry-run"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("plan", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("plan takes exactly one file, got %d", len(args))
			}
			ctx, stop := signalContext()
			defer stop()
			return runPlan(ctx, params, args[0], os.Stdout)
		},
	}
}

func runPlan(ctx context.Context, params planParams, path string, w io.Writer) error {
	p, err := plan.ReadFile(path)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if params.DryRun {
		return describePlan(w, p, params.JSONOutput)
	}

	s, err := openSession(params.sessionParams, &params.outputParams, "plan")
	if err != nil {
		return err
	}
	defer s.Close()
	runner, closeRunner, err := s.newRunner()
	if err != nil {
		return err
	}
	defer closeRunner()

	outcomes := make([]planOutcome, 0, len(p.Runs))
	status := evaluation.StatusSuccess
	for index, run := range p.Runs {
		s.logger.Info("plan run starting", "index", index, "kind", run.Kind)
		outcome, err := executeRun(ctx, s, runner, p, run)
		outcome.Index, outcome.Kind = index, run.Kind
		outcomes = append(outcomes, outcome)
		if err != nil {
			return fmt.Errorf("runs[%d]: %w", index, err)
		}
		if outcome.Status != evaluation.StatusSuccess {
			status = evaluation.StatusPartial
		}
	}

	if done, err := params.EmitJSON(w, outcomes); done {
		if err != nil {
			return err
		}
	} else {
		rows := make([][]string, 0, len(outcomes))
		for _, outcome := range outcomes {
			rows = append(rows, []string{
				strconv.Itoa(outcome.Index), string(outcome.Kind), outcome.ID, string(outcome.Status),
				strings.Join(outcome.Published.Reports, " "),
			})
		}
		if err := cli.RenderTable(w, []string{"#", "KIND", "ID", "STATUS", "REPORTS"}, rows); err != nil {
			return err
		}
	}
	return failedExit(status)
}

func executeRun(ctx context.Context, s *session, runner *evaluation.Runner, p *plan.Plan, run plan.Run) (planOutcome, error) {
	algorithms, err := run.Resolve()
	if err != nil {
		return planOutcome{}, err
	}
	seed := p.SeedFor(run)

	switch run.Kind {
	case plan.KindSingle:
		result, err := runner.RunSingle(ctx, algorithms[0], run.Volume, seed)
		if err != nil {
			return planOutcome{}, err
		}
		stored, err := s.publishEvaluation(ctx, result)
		return planOutcome{ID: result.ID, Status: result.Status, Published: stored}, err
	case plan.KindSeries:
		series, err := runner.RunSeries(ctx, algorithms[0], run.Volumes, seed)
		if err != nil {
			return planOutcome{}, err
		}
		stored, err := s.publishSeries(ctx, series)
		return planOutcome{ID: series.ID, Status: series.Status, Published: stored}, err
	case plan.KindCompare:
		comparison, err := runner.RunComparison(ctx, algorithms, run.Volume, seed)
		if err != nil {
			return planOutcome{}, err
		}
		stored, err := s.publishComparison(ctx, comparison)
		return planOutcome{ID: comparison.ID, Status: comparison.Status, Published: stored}, err
	default:
		return planOutcome{}, fmt.Errorf("unknown kind %q", run.Kind)
	}
}

// describePlan lists the validated runs of p.
func describePlan(w io.Writer, p *plan.Plan, output cli.JSONOutput) error {
	if done, err := output.EmitJSON(w, p); done {
		return err
	}
	rows := make([][]string, 0, len(p.Runs))
	for index, run := range p.Runs {
		algorithms := run.Algorithm
		if run.Kind == plan.KindCompare {
			algorithms = strings.Join(run.Algorithms, ", ")
		}
		volumes := strconv.Itoa(run.Volume)
		if run.Kind == plan.KindSeries {
			volumes = joinInts(run.Volumes)
		}
		rows = append(rows, []string{
			strconv.Itoa(index), string(run.Kind), algorithms, volumes,
			strconv.FormatUint(p.SeedFor(run), 10),
		})
	}
	return cli.RenderTable(w, []string{"#", "KIND", "ALGORITHMS", "VOLUMES", "SEED"}, rows)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, value := range values {
		parts[i] = strconv.Itoa(value)
	}
	return strings.Join(parts, ",")
}
