// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cputimer

import (
	"bytes"
	"io"
	"log/slog"
	"runtime/pprof"
	"sync"
)

// Profile is the reduced result of one timed interval.
type Profile struct {
	ExclusiveTimeMS  float64 `json:"cpu_time_ms"`
	CumulativeTimeMS float64 `json:"cumulative_time_ms"`
	// PrimitiveCallCount counts functions observed per stack sample
	// with recursive re-entries collapsed.
	PrimitiveCallCount uint64 `json:"prim_calls"`
	// TotalCallCount counts every function frame observed across
	// stack samples, recursion included.
	TotalCallCount uint64 `json:"total_calls"`
}

// profiler is the process-wide CPU profiler.
type profiler interface {
	start(w io.Writer) error
	stop()
}

type runtimeProfiler struct{}

func (runtimeProfiler) start(w io.Writer) error { return pprof.StartCPUProfile(w) }
func (runtimeProfiler) stop()                   { pprof.StopCPUProfile() }

// The CPU profiler is process-wide, so the ActiveTimer allowed to stop
// it is tracked process-wide too.
var ownership struct {
	mu    sync.Mutex
	owner *ActiveTimer
}

// Timer starts ActiveTimers.
type Timer struct {
	profiler profiler
	logger   *slog.Logger
}

// New returns a Timer backed by runtime/pprof.
func New(logger *slog.Logger) *Timer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Timer{profiler: runtimeProfiler{}, logger: logger}
}

// ActiveTimer is one running measurement.
type ActiveTimer struct {
	timer    *Timer
	buffer   bytes.Buffer
	degraded bool
	stopped  bool
	// displaced is set when a later Start stopped this timer's profile.
	// The buffer then holds the complete profile up to that point.
	displaced bool
}

// Start begins profiling. It never fails: if the profiler cannot be
// started even after displacing an existing profile, the returned timer
// is degraded and its Stop reports zeros. A displaced ActiveTimer keeps
// what it recorded but no longer stops the profiler.
func (t *Timer) Start() *ActiveTimer {
	ownership.mu.Lock()
	defer ownership.mu.Unlock()

	active := &ActiveTimer{timer: t}
	err := t.profiler.start(&active.buffer)
	if err == nil {
		ownership.owner = active
		return active
	}

	t.logger.Warn("cpu profiler already active, restarting it", "error", err)
	t.profiler.stop()
	if previous := ownership.owner; previous != nil {
		previous.displaced = true
		ownership.owner = nil
	}
	active.buffer.Reset()
	if err := t.profiler.start(&active.buffer); err != nil {
		t.logger.Warn("cpu profiler unavailable, reporting zero cpu time", "error", err)
		active.degraded = true
		return active
	}
	ownership.owner = active
	return active
}

// Stop ends profiling and reduces the profile. Calling Stop twice
// returns zeros the second time.
func (a *ActiveTimer) Stop() Profile {
	ownership.mu.Lock()
	if a.stopped || a.degraded {
		a.stopped = true
		ownership.mu.Unlock()
		return Profile{}
	}
	a.stopped = true
	if ownership.owner == a {
		a.timer.profiler.stop()
		ownership.owner = nil
	} else if a.displaced {
		a.timer.logger.Warn("cpu profile was displaced by a later timer, reporting the part recorded before")
	}
	ownership.mu.Unlock()

	if a.buffer.Len() == 0 {
		return Profile{}
	}
	result, err := Reduce(a.buffer.Bytes())
	if err != nil {
		a.timer.logger.Warn("parsing cpu profile failed", "error", err)
		return Profile{}
	}
	return result
}
