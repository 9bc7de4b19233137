// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for cryptobench.
//
// The central type is [Command], a named command with optional nested
// [Command.Subcommands], a [pflag.FlagSet] factory, and a Run function.
// The tree is assembled in cmd/cryptobench/commands and dispatched via
// [Command.Execute], which handles flag parsing, subcommand routing, and
// help output with examples. Unknown commands and flags get a
// Levenshtein-based suggestion (distance <= 3).
//
// Parameter structs declare their flags with struct tags and are bound
// by [FlagsFromParams]. Embedding [JSONOutput] adds a --json flag whose
// output is syntax highlighted on a terminal. [RenderTable] prints
// aligned result tables that degrade to plain ASCII when piped.
package cli
