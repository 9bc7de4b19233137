// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cputimer brackets a workload with the Go runtime's CPU
// profiler and reduces the resulting profile to four numbers:
// exclusive (self) CPU time summed over all functions, the largest
// cumulative CPU time of any function, and two call-observation counts.
//
// The runtime profiler is statistical (100 Hz) and process-wide: the
// figures cover every goroutine, including samplers running next to
// the workload, and workloads shorter than one sampling period may
// record nothing. An empty profile is reported as zeros.
//
// Only one CPU profile can be active in a process. If another profile
// is running when a timer starts, the timer stops it, logs a warning,
// and starts its own.
package cputimer
