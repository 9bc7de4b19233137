// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package memtrace runs a workload while recording the resident memory
// of the current process and all of its descendants.
//
// [Tracer.Trace] takes one reading before the workload starts, one per
// interval (10ms by default) from a background goroutine while the
// workload runs on the caller's goroutine, and one after it returns.
// Readings are absolute RSS in MiB, in order; no baseline is
// subtracted. The peak is the largest reading.
//
// A workload error or panic propagates to the caller unchanged once the
// sampling goroutine has stopped. No trace is produced for a failed
// workload.
package memtrace
