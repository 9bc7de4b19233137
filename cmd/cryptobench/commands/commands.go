// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the cryptobench command tree.
package commands

import (
	"fmt"

	"github.com/bureau-foundation/cryptobench/cmd/cryptobench/cli"
	"github.com/bureau-foundation/cryptobench/lib/version"
)

// Root returns the complete command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "cryptobench",
		Description: `cryptobench: resource profiling for cryptographic algorithms.

Runs post-quantum and classical algorithms under identical CPU, memory,
and system instrumentation, records every evaluation, and writes
Markdown reports.`,
		Subcommands: []*cli.Command{
			runCommand(),
			scaleCommand(),
			compareCommand(),
			planCommand(),
			historyCommand(),
			algorithmsCommand(),
			overheadCommand(),
			neutralityCommand(),
			auditCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("cryptobench %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{Description: "Profile ML-KEM-1024 at the configured volume", Command: "cryptobench run MLKEM_1024"},
			{Description: "See how ML-DSA-87 scales", Command: "cryptobench scale MLDSA_87 --volumes 10,100,1000"},
			{Description: "Rank every algorithm at 100 operations", Command: "cryptobench compare --all -n 100"},
			{Description: "Verify the instrumentation is neutral", Command: "cryptobench neutrality"},
		},
	}
}
