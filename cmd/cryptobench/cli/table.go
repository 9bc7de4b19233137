// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

// MaxCellWidth is the display width beyond which cells are truncated
// with an ellipsis.
const MaxCellWidth = 48

// RenderTable writes a bordered table to w. Headers are bold on a
// terminal; elsewhere the table is plain ASCII-safe text with no escape
// sequences. Columns after the first are right-aligned.
func RenderTable(w io.Writer, headers []string, rows [][]string) error {
	renderer := lipgloss.NewRenderer(w)
	if !isTerminal(w) {
		renderer.SetColorProfile(termenv.Ascii)
	}

	truncated := make([][]string, len(rows))
	for i, row := range rows {
		truncated[i] = make([]string, len(row))
		for j, cell := range row {
			truncated[i][j] = ansi.Truncate(cell, MaxCellWidth, "…")
		}
	}

	cell := renderer.NewStyle().Padding(0, 1)
	header := cell.Bold(true)
	rendered := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(renderer.NewStyle().Faint(true)).
		Headers(headers...).
		Rows(truncated...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col > 0 {
				return cell.Align(lipgloss.Right)
			}
			return cell
		}).
		Render()
	_, err := fmt.Fprintln(w, rendered)
	return err
}
