// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger returns a logger writing to stderr at level. A
// terminal gets slog's text format; anything else (CI logs, pipes) gets
// JSON lines.
//
// Commands scope it with their own context:
//
//	logger := cli.NewCommandLogger(level).With("command", "scale", "algorithm", name)
func NewCommandLogger(level slog.Leveler) *slog.Logger {
	return newLogger(os.Stderr, level, isTerminal(os.Stderr))
}

func newLogger(w io.Writer, level slog.Leveler, text bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if text {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
