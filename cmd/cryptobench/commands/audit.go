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
	"github.com/bureau-foundation/cryptobench/lib/audit"
)

type auditParams struct {
	sessionParams
	cli.JSONOutput
	Output string `json:"output" flag:"output,o" desc:"also write the audit as JSON to this file"`
}

func auditCommand() *cli.Command {
	var params auditParams
	return &cli.Command{
		Name:    "audit",
		Summary: "Record the hardware and software environment",
		Description: `Collect the hardware snapshot, operating system, build, and linked
module versions, digest the executable, and compute an environment hash
over all of it. Two machines with equal hashes ran the same binary on
equivalent hardware; publish the hash next to any benchmark numbers.`,
		Usage: "cryptobench audit [flags]",
		Examples: []cli.Example{
			{Description: "Save the audit alongside a result set", Command: "cryptobench audit -o results/environment.json"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("audit", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("audit takes no arguments, got %q", args[0])
			}
			ctx, stop := signalContext()
			defer stop()
			return runAudit(ctx, params, audit.Config{}, os.Stdout)
		},
	}
}

// runAudit collects with probes, whose zero value audits the live
// system. Its logger is replaced by the session's.
func runAudit(ctx context.Context, params auditParams, probes audit.Config, w io.Writer) error {
	s, err := openSession(params.sessionParams, nil, "audit")
	if err != nil {
		return err
	}
	defer s.Close()

	probes.Logger = s.logger
	result, err := audit.Collect(ctx, probes)
	if err != nil {
		return err
	}

	if params.Output != "" {
		file, err := os.Create(params.Output)
		if err != nil {
			return fmt.Errorf("creating audit file: %w", err)
		}
		writeErr := cli.WriteJSON(file, result)
		if err := file.Close(); writeErr == nil {
			writeErr = err
		}
		if writeErr != nil {
			return fmt.Errorf("writing %s: %w", params.Output, writeErr)
		}
	}

	if done, err := params.EmitJSON(w, result); done {
		return err
	}
	// Digests are wider than a table cell.
	fmt.Fprintf(w, "Environment hash:  %s\n", result.EnvironmentHash)
	if result.Executable != "" {
		fmt.Fprintf(w, "Executable digest: %s\n", result.Executable)
	}
	fmt.Fprintln(w)
	rows := [][]string{
		{"Hardware", result.Hardware.String()},
		{"OS", fmt.Sprintf("%s %s %s", result.Host.Platform, result.Host.PlatformVersion, result.Host.KernelArch)},
		{"Kernel", result.Host.KernelVersion},
		{"Build", fmt.Sprintf("%s (%s)", result.Build.Version, result.Build.Commit)},
		{"Go", result.Build.GoVersion},
		{"Cycle counter", fmt.Sprint(result.CycleCounter)},
		{"Modules", fmt.Sprint(len(result.Modules))},
	}
	if result.Host.Virtualization != "" {
		rows = append(rows, []string{"Virtualization", result.Host.Virtualization})
	}
	return cli.RenderTable(w, []string{"FIELD", "VALUE"}, rows)
}
