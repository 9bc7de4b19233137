// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/bureau-foundation/cryptobench/lib/clock"
	"github.com/bureau-foundation/cryptobench/lib/perfcounter"
)

// Source produces resource samples. Start and Stop bracket a sampling
// window; Sample is called only between them, from one goroutine.
// Implementations never fail: unreadable values are reported as zero
// (or absent, for cycles).
type Source interface {
	Start()
	Sample() ResourceSample
	Stop()
}

// ProcessSourceConfig configures a ProcessSource.
type ProcessSourceConfig struct {
	// Counter supplies CPU cycles. Nil means samples carry no cycle
	// count. The source enables the counter on Start and disables it
	// on Stop but does not close it.
	Counter *perfcounter.CycleCounter

	Clock  clock.Clock
	Logger *slog.Logger
}

// ProcessSource samples the current process through gopsutil.
type ProcessSource struct {
	process *process.Process
	cycles  cycleReader
	clock   clock.Clock
	logger  *slog.Logger
}

// NewProcessSource returns a source for the calling process.
func NewProcessSource(config ProcessSourceConfig) (*ProcessSource, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	self, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("sampler: opening own process: %w", err)
	}

	var cycles cycleReader = absentCycles{}
	if config.Counter != nil {
		cycles = &counterCycles{counter: config.Counter, logger: logger}
	}
	return &ProcessSource{
		process: self,
		cycles:  cycles,
		clock:   clock.OrReal(config.Clock),
		logger:  logger,
	}, nil
}

// Start primes the CPU percent delta and enables the cycle counter.
func (s *ProcessSource) Start() {
	if _, err := s.process.PercentWithContext(context.Background(), 0); err != nil {
		s.logger.Debug("priming process cpu percent failed", "error", err)
	}
	s.cycles.start()
}

// Sample reads CPU percent since the previous call, memory percent,
// and cycles since Start.
func (s *ProcessSource) Sample() ResourceSample {
	ctx := context.Background()
	sample := ResourceSample{Timestamp: s.clock.Now()}

	if cpuPercent, err := s.process.PercentWithContext(ctx, 0); err == nil {
		sample.CPUPercent = cpuPercent
	} else {
		s.logger.Debug("reading process cpu percent failed", "error", err)
	}
	if memoryPercent, err := s.process.MemoryPercentWithContext(ctx); err == nil {
		sample.MemoryPercent = float64(memoryPercent)
	} else {
		s.logger.Debug("reading process memory percent failed", "error", err)
	}
	sample.CPUCycles = s.cycles.read()
	return sample
}

// Stop disables the cycle counter.
func (s *ProcessSource) Stop() {
	s.cycles.stop()
}

// cycleReader is chosen once per source, so sampling never re-probes
// counter availability.
type cycleReader interface {
	start()
	read() *uint64
	stop()
}

type absentCycles struct{}

func (absentCycles) start()        {}
func (absentCycles) read() *uint64 { return nil }
func (absentCycles) stop()         {}

type counterCycles struct {
	counter *perfcounter.CycleCounter
	logger  *slog.Logger
}

func (c *counterCycles) start() {
	if err := c.counter.Enable(); err != nil {
		c.logger.Warn("enabling cpu cycle counter failed", "error", err)
	}
}

func (c *counterCycles) read() *uint64 {
	cycles, err := c.counter.Delta()
	if err != nil {
		return nil
	}
	return &cycles
}

func (c *counterCycles) stop() {
	if err := c.counter.Disable(); err != nil {
		c.logger.Debug("disabling cpu cycle counter failed", "error", err)
	}
}
