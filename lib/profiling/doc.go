// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package profiling runs a workload under the full instrumentation
// stack and merges the results into one [Metrics] envelope.
//
// An [Orchestrator] owns one CPU timer, one background resource
// sampler, one memory tracer, an optional hardware cycle counter, and a
// cached hardware snapshot. [Orchestrator.Execute] arms them in a fixed
// order around the workload:
//
//  1. arm the CPU timer
//  2. take the hardware snapshot (first call only, then cached)
//  3. arm the background sampler
//  4. run the workload under the memory tracer, on the caller's goroutine
//  5. disarm the CPU timer, then the sampler
//
// Step 5 runs even when the workload fails or panics. A failing
// workload's error is returned unchanged and no metrics are produced.
//
// The sequence and the shape of Metrics do not depend on the workload:
// two executions under the same Config arm the same instruments in the
// same order and produce envelopes with identical key sets
// ([Metrics.Keys]). Config.Observer exposes the sequence to callers
// that verify this.
//
// Executions on one Orchestrator are serialized. The CPU profiler is
// process-wide, so running several orchestrators at once yields
// overlapping, unreliable CPU figures.
package profiling
