// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package resultstore persists evaluations, series, and comparisons in
// a SQLite database so that earlier runs can be listed, reloaded, and
// re-rendered.
//
// Each evaluation is one row. The headline figures (algorithm, volume,
// status, CPU time, peak memory) are columns so listing never decodes
// a body; the complete evaluation, including the memory sample series,
// is a CBOR body compressed with the configured codec. Series and
// comparisons are rows in the run_groups table whose member evaluations
// reference them by group_id and position.
//
// The store uses a small pool of connections in WAL mode: one writer,
// any number of concurrent readers.
package resultstore
