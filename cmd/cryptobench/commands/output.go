// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/bureau-foundation/cryptobench/cmd/cryptobench/cli"
	"github.com/bureau-foundation/cryptobench/lib/evaluation"
)

var evaluationHeaders = []string{"ID", "ALGORITHM", "VOLUME", "STATUS", "WALL MS", "CPU MS", "PEAK MB", "CYCLES", "NOTES"}

func evaluationRow(e evaluation.Evaluation) []string {
	cycles := "-"
	if e.Summary.CPUCycles != nil {
		cycles = strconv.FormatUint(*e.Summary.CPUCycles, 10)
	}
	return []string{
		e.ID,
		e.Algorithm.String(),
		strconv.Itoa(e.Volume),
		string(e.Status),
		formatFloat(e.DurationMS),
		formatFloat(e.Summary.CPUTimeMS),
		formatFloat(e.Summary.MemoryMB),
		cycles,
		e.Notes,
	}
}

func writeEvaluations(w io.Writer, evaluations []evaluation.Evaluation) error {
	rows := make([][]string, 0, len(evaluations))
	for _, e := range evaluations {
		rows = append(rows, evaluationRow(e))
	}
	return cli.RenderTable(w, evaluationHeaders, rows)
}

func writePublished(w io.Writer, result published) {
	for _, path := range result.Reports {
		fmt.Fprintf(w, "Report: %s\n", path)
	}
	if result.Stored {
		fmt.Fprintln(w, "Saved to result store.")
	}
}

// failedExit is the exit status for a run with failed evaluations,
// after the results have been printed.
func failedExit(status evaluation.Status) error {
	if status == evaluation.StatusSuccess {
		return nil
	}
	return &cli.ExitError{Code: 1}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
