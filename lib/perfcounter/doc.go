// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package perfcounter reads the hardware CPU-cycle counter for the
// current process.
//
// On Linux the counter is a perf_event file descriptor opened with
// PERF_TYPE_HARDWARE / PERF_COUNT_HW_CPU_CYCLES, counting user-space
// cycles of the calling process and any threads it creates afterwards
// (inherit). Threads that already exist when the counter is opened are
// not counted; the Go runtime starts most of its threads early, so the
// reading is a lower bound rather than an exact figure. Kernel and
// hypervisor cycles are excluded, which keeps the counter usable under
// perf_event_paranoid=2.
//
// Other platforms, and Linux hosts where the PMU is not exposed (most
// containers and many VMs), report [ErrUnsupported]. Callers treat the
// counter as best-effort: [Available] is probed once per process and
// samplers choose their cycle reader from it at construction time.
package perfcounter
