// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command cryptobench profiles cryptographic algorithms. See
// "cryptobench --help".
package main

import (
	"os"

	"github.com/bureau-foundation/cryptobench/cmd/cryptobench/commands"
	"github.com/bureau-foundation/cryptobench/lib/process"
)

func main() {
	if err := commands.Root().Execute(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}
