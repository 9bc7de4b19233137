// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/cryptobench/cmd/cryptobench/cli"
	"github.com/bureau-foundation/cryptobench/lib/algorithm"
)

type algorithmsParams struct {
	cli.JSONOutput
}

type algorithmInfo struct {
	Name          string                  `json:"name"`
	ChallengeType algorithm.ChallengeType `json:"challenge_type"`
}

func algorithmsCommand() *cli.Command {
	var params algorithmsParams
	return &cli.Command{
		Name:    "algorithms",
		Summary: "List the algorithms that can be profiled",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("algorithms", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("algorithms takes no arguments, got %q", args[0])
			}
			return listAlgorithms(params, os.Stdout)
		},
	}
}

func listAlgorithms(params algorithmsParams, w io.Writer) error {
	infos := make([]algorithmInfo, 0)
	for _, alg := range algorithm.All() {
		infos = append(infos, algorithmInfo{Name: alg.String(), ChallengeType: alg.ChallengeType()})
	}
	if done, err := params.EmitJSON(w, infos); done {
		return err
	}
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{info.Name, string(info.ChallengeType)})
	}
	return cli.RenderTable(w, []string{"ALGORITHM", "CHALLENGE TYPE"}, rows)
}
