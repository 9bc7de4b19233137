// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package report renders evaluations, series, and comparisons as
// Markdown, and optionally as HTML.
//
// Reports are text only. The memory time series is drawn as a block
// sparkline over its first points (50 by default) rather than as an
// image. [WriteFiles] writes a report flat into a directory, named by
// the evaluation, series, or comparison ID, with an .html sibling when
// HTML output is requested.
package report
