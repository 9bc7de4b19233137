// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/cryptobench/cmd/cryptobench/cli"
	"github.com/bureau-foundation/cryptobench/lib/algorithm"
	"github.com/bureau-foundation/cryptobench/lib/codec"
	"github.com/bureau-foundation/cryptobench/lib/evaluation"
	"github.com/bureau-foundation/cryptobench/lib/report"
	"github.com/bureau-foundation/cryptobench/lib/resultstore"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:    "history",
		Summary: "Browse recorded evaluations",
		Description: `List and inspect evaluations recorded in the result store. Series and
comparisons are stored as groups of evaluations sharing a group ID.`,
		Subcommands: []*cli.Command{
			historyListCommand(),
			historyShowCommand(),
		},
	}
}

type historyListParams struct {
	sessionParams
	cli.JSONOutput
	Algorithm string `json:"algorithm" flag:"algorithm,a" desc:"only this algorithm"`
	Status    string `json:"status" flag:"status" desc:"only this status (success or failed)"`
	Group     string `json:"group" flag:"group,g" desc:"only members of this series or comparison"`
	Limit     int    `json:"limit" flag:"limit" desc:"maximum rows, newest first" default:"50"`
}

func historyListCommand() *cli.Command {
	var params historyListParams
	return &cli.Command{
		Name:    "list",
		Summary: "List recorded evaluations, newest first",
		Usage:   "cryptobench history list [flags]",
		Examples: []cli.Example{
			{Description: "Recent failures of one algorithm", Command: "cryptobench history list -a RSA_PSS --status failed"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("list takes no arguments, got %q", args[0])
			}
			ctx, stop := signalContext()
			defer stop()
			return runHistoryList(ctx, params, os.Stdout)
		},
	}
}

// openHistory opens the configured result store for reading.
func openHistory(params sessionParams, command string) (*session, error) {
	s, err := openSession(params, nil, command)
	if err != nil {
		return nil, err
	}
	if s.config.Paths.Database == "" {
		return nil, errors.New("no result store configured (paths.database is empty)")
	}
	if _, err := os.Stat(s.config.Paths.Database); err != nil {
		return nil, fmt.Errorf("result store: %w", err)
	}
	if err := s.openStore(); err != nil {
		return nil, err
	}
	return s, nil
}

func runHistoryList(ctx context.Context, params historyListParams, w io.Writer) error {
	filter := resultstore.Filter{GroupID: params.Group, Limit: params.Limit}
	if params.Algorithm != "" {
		alg, err := algorithm.Parse(params.Algorithm)
		if err != nil {
			return err
		}
		filter.Algorithm = alg.String()
	}
	switch status := evaluation.Status(params.Status); status {
	case "", evaluation.StatusSuccess, evaluation.StatusFailed:
		filter.Status = status
	default:
		return fmt.Errorf("unknown status %q (want success or failed)", params.Status)
	}

	s, err := openHistory(params.sessionParams, "history/list")
	if err != nil {
		return err
	}
	defer s.Close()

	records, err := s.store.List(ctx, filter)
	if err != nil {
		return err
	}
	if done, err := params.EmitJSON(w, records); done {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No evaluations recorded.")
		return nil
	}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.ID,
			record.Algorithm,
			strconv.Itoa(record.Volume),
			string(record.Status),
			formatFloat(record.CPUTimeMS),
			formatFloat(record.MemoryMB),
			record.GroupID,
			fmt.Sprintf("%s %d/%d", record.Compression, record.StoredSize, record.BodySize),
		})
	}
	return cli.RenderTable(w, []string{"ID", "ALGORITHM", "VOLUME", "STATUS", "CPU MS", "PEAK MB", "GROUP", "STORED"}, rows)
}

type historyShowParams struct {
	sessionParams
	cli.JSONOutput
	Dump   bool `json:"dump" flag:"dump" desc:"print the stored CBOR body in diagnostic notation"`
	Report bool `json:"report" flag:"report" desc:"print the Markdown report"`
}

func historyShowCommand() *cli.Command {
	var params historyShowParams
	return &cli.Command{
		Name:    "show",
		Summary: "Show one recorded evaluation, series, or comparison",
		Description: `Show a recorded result by ID. Evaluation IDs are tried first, then
series and comparison IDs.`,
		Usage: "cryptobench history show ID [flags]",
		Examples: []cli.Example{
			{Description: "Inspect the stored encoding of an evaluation", Command: "cryptobench history show AES_GCM_20260101_120000_000001 --dump"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &params)
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("show takes exactly one ID, got %d", len(args))
			}
			ctx, stop := signalContext()
			defer stop()
			return runHistoryShow(ctx, params, args[0], os.Stdout)
		},
	}
}

func runHistoryShow(ctx context.Context, params historyShowParams, id string, w io.Writer) error {
	s, err := openHistory(params.sessionParams, "history/show")
	if err != nil {
		return err
	}
	defer s.Close()
	options := report.Options{ChartPoints: s.config.Report.ChartPoints}

	if params.Dump {
		raw, err := s.store.RawEvaluation(ctx, id)
		if err != nil {
			return err
		}
		notation, err := codec.Diagnose(raw)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, notation)
		return err
	}

	e, err := s.store.Evaluation(ctx, id)
	if err == nil {
		if done, err := params.EmitJSON(w, e); done {
			return err
		}
		if params.Report {
			return report.Single(w, e, options)
		}
		return writeEvaluations(w, []evaluation.Evaluation{e})
	}
	if !errors.Is(err, resultstore.ErrNotFound) {
		return err
	}

	series, err := s.store.Series(ctx, id)
	if err == nil {
		if done, err := params.EmitJSON(w, series); done {
			return err
		}
		if params.Report {
			return report.Series(w, series, options)
		}
		return writeEvaluations(w, series.Evaluations)
	}
	if !errors.Is(err, resultstore.ErrNotFound) {
		return err
	}

	comparison, err := s.store.Comparison(ctx, id)
	if err != nil {
		if errors.Is(err, resultstore.ErrNotFound) {
			return fmt.Errorf("no evaluation, series, or comparison with ID %q", id)
		}
		return err
	}
	if done, err := params.EmitJSON(w, comparison); done {
		return err
	}
	if params.Report {
		return report.Comparison(w, comparison, options)
	}
	return writeEvaluations(w, comparison.Evaluations)
}
