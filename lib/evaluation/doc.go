// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package evaluation turns profiled executions into benchmark records.
//
// A [Runner] validates a request, builds the algorithm's workload, runs
// it through an [Executor] (normally a profiling.Orchestrator), and
// records the outcome as an [Evaluation]. Validation errors are
// returned before any instrumentation is armed. A workload that fails
// at run time is not an error at this level: it produces an Evaluation
// with StatusFailed and the cause in Notes, so that a series or
// comparison can continue past it.
//
// On top of single runs the package provides scalability series (one
// algorithm across volumes, seed+index per volume), comparisons (several
// algorithms at one volume), an overhead measurement of the profiler
// itself, and a neutrality check that every algorithm is instrumented
// identically.
package evaluation
