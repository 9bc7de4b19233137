// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sampler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/cryptobench/lib/clock"
)

const (
	// DefaultInterval is the sampling period used when Start is given
	// a non-positive interval.
	DefaultInterval = 50 * time.Millisecond

	// DefaultStopTimeout bounds how long Stop waits for the sampling
	// goroutine.
	DefaultStopTimeout = 2 * time.Second
)

// Config configures a BackgroundSampler.
type Config struct {
	Source      Source
	StopTimeout time.Duration
	Clock       clock.Clock
	Logger      *slog.Logger
}

// BackgroundSampler samples a Source periodically on its own goroutine.
// It is Idle until Start and returns to Idle on Stop; it may be started
// again afterwards.
type BackgroundSampler struct {
	source      Source
	stopTimeout time.Duration
	clock       clock.Clock
	logger      *slog.Logger

	// mu serializes Start and Stop. active is nil while Idle. previous
	// is the last stopped window, whose goroutine may outlive a timed-out
	// Stop.
	mu       sync.Mutex
	active   *window
	previous *window
}

// window is one Start..Stop sampling period. done closes once the
// goroutine has stopped the source and will not touch it again.
type window struct {
	stop    chan struct{}
	samples chan []ResourceSample
	done    chan struct{}
}

// New returns an idle sampler.
func New(config Config) *BackgroundSampler {
	if config.StopTimeout <= 0 {
		config.StopTimeout = DefaultStopTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &BackgroundSampler{
		source:      config.Source,
		stopTimeout: config.StopTimeout,
		clock:       clock.OrReal(config.Clock),
		logger:      config.Logger,
	}
}

// Start begins sampling every interval (DefaultInterval if interval is
// not positive). The first sample is taken immediately. Calling Start
// while already sampling, or while the goroutine abandoned by a
// timed-out Stop still holds the source, logs a warning and changes
// nothing.
func (s *BackgroundSampler) Start(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.logger.Warn("sampler already running, ignoring start")
		return
	}
	if s.previous != nil {
		select {
		case <-s.previous.done:
			s.previous = nil
		default:
			s.logger.Warn("previous sampling goroutine still running, ignoring start")
			return
		}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	s.source.Start()
	active := &window{
		stop:    make(chan struct{}),
		samples: make(chan []ResourceSample, 1),
		done:    make(chan struct{}),
	}
	s.active = active
	go s.run(interval, active)
}

// Stop ends the sampling window and returns its aggregate. Stop on an
// idle sampler returns the zero aggregate with a warning, as does a
// sampling goroutine that fails to finish within the stop timeout.
// The sampler is Idle when Stop returns.
func (s *BackgroundSampler) Stop() AggregateMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.active
	if active == nil {
		s.logger.Warn("sampler stopped without being started, no samples collected")
		return AggregateMetrics{}
	}
	s.active = nil
	s.previous = active
	close(active.stop)

	select {
	case samples := <-active.samples:
		if len(samples) == 0 {
			s.logger.Warn("no resource samples collected")
		}
		return Aggregate(samples)
	case <-s.clock.After(s.stopTimeout):
		s.logger.Warn("sampling goroutine did not stop in time, discarding samples",
			"timeout", s.stopTimeout)
		return AggregateMetrics{}
	}
}

// Sampling reports whether a sampling window is open.
func (s *BackgroundSampler) Sampling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

// run owns the sample buffer and the source until it hands the buffer
// over on active.samples.
func (s *BackgroundSampler) run(interval time.Duration, active *window) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	var buffer []ResourceSample
	for {
		buffer = append(buffer, s.source.Sample())
		select {
		case <-active.stop:
			s.finish(active, buffer)
			return
		case <-ticker.C:
			// A stop that arrived together with the tick wins.
			select {
			case <-active.stop:
				s.finish(active, buffer)
				return
			default:
			}
		}
	}
}

// finish stops the source before handing over the buffer; a Stop that
// receives the buffer sees the source already stopped.
func (s *BackgroundSampler) finish(active *window, buffer []ResourceSample) {
	s.source.Stop()
	close(active.done)
	active.samples <- buffer
}
