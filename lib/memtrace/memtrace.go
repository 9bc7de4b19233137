// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memtrace

import (
	"context"
	"log/slog"
	"time"

	"github.com/bureau-foundation/cryptobench/lib/clock"
)

// DefaultInterval is the sampling period when Config.Interval is unset.
const DefaultInterval = 10 * time.Millisecond

const bytesPerMiB = 1 << 20

// Workload is the unit of work being measured. Its result is passed
// through untouched.
type Workload func(ctx context.Context) (any, error)

// Trace is the memory record of one successful workload run.
type Trace struct {
	PeakMB  float64
	Samples []float64
	Result  any
}

// RSSReader reports resident memory in bytes.
type RSSReader interface {
	RSSBytes(ctx context.Context) (uint64, error)
}

// Config configures a Tracer. A nil Reader means the process tree of
// the calling process.
type Config struct {
	Interval time.Duration
	Reader   RSSReader
	Clock    clock.Clock
	Logger   *slog.Logger
}

// Tracer runs workloads under memory sampling. A Tracer may be reused
// but not shared by concurrent Trace calls.
type Tracer struct {
	interval time.Duration
	reader   RSSReader
	clock    clock.Clock
	logger   *slog.Logger
}

// New returns a Tracer.
func New(config Config) (*Tracer, error) {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Reader == nil {
		reader, err := NewProcessTreeReader()
		if err != nil {
			return nil, err
		}
		config.Reader = reader
	}
	return &Tracer{
		interval: config.Interval,
		reader:   config.Reader,
		clock:    clock.OrReal(config.Clock),
		logger:   config.Logger,
	}, nil
}

// Trace runs workload on the calling goroutine while sampling memory.
func (t *Tracer) Trace(ctx context.Context, workload Workload) (Trace, error) {
	var samples []float64
	if sample, ok := t.read(ctx); ok {
		samples = append(samples, sample)
	}

	stop := make(chan struct{})
	handoff := make(chan []float64, 1)
	go t.run(ctx, stop, handoff)

	result, err := runJoined(ctx, workload, func() {
		close(stop)
		samples = append(samples, <-handoff...)
	})
	if err != nil {
		return Trace{}, err
	}

	if sample, ok := t.read(ctx); ok {
		samples = append(samples, sample)
	}
	trace := Trace{Samples: samples, Result: result}
	for _, sample := range samples {
		trace.PeakMB = max(trace.PeakMB, sample)
	}
	if len(samples) == 0 {
		t.logger.Warn("no memory samples collected")
	}
	return trace, nil
}

// runJoined calls workload and then join, also when workload panics.
func runJoined(ctx context.Context, workload Workload, join func()) (any, error) {
	defer join()
	return workload(ctx)
}

// run owns its buffer until the handoff.
func (t *Tracer) run(ctx context.Context, stop <-chan struct{}, handoff chan<- []float64) {
	ticker := t.clock.NewTicker(t.interval)

	var buffer []float64
	for {
		select {
		case <-stop:
			ticker.Stop()
			handoff <- buffer
			return
		case <-ticker.C:
			if sample, ok := t.read(ctx); ok {
				buffer = append(buffer, sample)
			}
		}
	}
}

func (t *Tracer) read(ctx context.Context) (float64, bool) {
	rss, err := t.reader.RSSBytes(ctx)
	if err != nil {
		t.logger.Debug("reading resident memory failed", "error", err)
		return 0, false
	}
	return float64(rss) / bytesPerMiB, true
}
