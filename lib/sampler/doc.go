// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sampler periodically records process-level resource usage
// while a workload runs.
//
// A [Source] produces one [ResourceSample] on demand: CPU percent since
// the previous sample, memory percent, and (when the host exposes a
// hardware counter) CPU cycles since the source was started.
// [ProcessSource] is the production source backed by gopsutil and
// [perfcounter].
//
// [BackgroundSampler] drives a Source from a single goroutine:
//
//	s := sampler.New(sampler.Config{Source: source})
//	s.Start(50 * time.Millisecond)
//	runWorkload()
//	aggregate := s.Stop()
//
// The goroutine owns the sample buffer for the whole sampling window
// and hands it to Stop over a channel once it has stopped appending, so
// the buffer is never read and written concurrently. Stop waits at
// most Config.StopTimeout (2s by default) for the handoff. A sampler
// that fails to stop in time is abandoned and Stop reports an empty
// aggregate rather than blocking the caller.
package sampler
