// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package profiling

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/cryptobench/lib/clock"
	"github.com/bureau-foundation/cryptobench/lib/cputimer"
	"github.com/bureau-foundation/cryptobench/lib/hwinfo"
	"github.com/bureau-foundation/cryptobench/lib/memtrace"
	"github.com/bureau-foundation/cryptobench/lib/perfcounter"
	"github.com/bureau-foundation/cryptobench/lib/sampler"
)

// Workload is the unit of work being profiled.
type Workload = memtrace.Workload

// Phase names one step of the arming sequence.
type Phase string

const (
	PhaseArmTimer      Phase = "arm_cpu_timer"
	PhaseHardware      Phase = "hardware_snapshot"
	PhaseArmSampler    Phase = "arm_sampler"
	PhaseWorkload      Phase = "workload"
	PhaseDisarmSampler Phase = "disarm_sampler"
	PhaseDisarmTimer   Phase = "disarm_cpu_timer"
)

// Config configures an Orchestrator. Zero values select the production
// instruments and default intervals.
type Config struct {
	// SampleInterval is the background sampler's period.
	SampleInterval time.Duration
	// MemoryInterval is the memory tracer's period.
	MemoryInterval time.Duration
	// StopTimeout bounds the wait for the sampling goroutine.
	StopTimeout time.Duration

	// DisableCycleCounter skips opening the hardware cycle counter.
	DisableCycleCounter bool

	// Source, RSSReader, and HardwareProbe replace the process-level
	// instruments.
	Source        sampler.Source
	RSSReader     memtrace.RSSReader
	HardwareProbe hwinfo.Probe

	// Observer, if set, is called synchronously at each Phase.
	Observer func(Phase)

	Clock  clock.Clock
	Logger *slog.Logger
}

// Orchestrator brackets workloads with CPU, memory, and system
// instrumentation.
type Orchestrator struct {
	sampleInterval time.Duration
	timer          *cputimer.Timer
	sampler        *sampler.BackgroundSampler
	tracer         *memtrace.Tracer
	probe          hwinfo.Probe
	counter        *perfcounter.CycleCounter
	observer       func(Phase)
	logger         *slog.Logger

	mu       sync.Mutex
	hardware *hwinfo.Snapshot
}

// New builds an Orchestrator. The cycle counter, if available, is
// opened here and held until Close.
func New(config Config) (*Orchestrator, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if config.SampleInterval <= 0 {
		config.SampleInterval = sampler.DefaultInterval
	}
	if config.HardwareProbe == nil {
		config.HardwareProbe = hwinfo.NewSystemProbe()
	}

	orchestrator := &Orchestrator{
		sampleInterval: config.SampleInterval,
		timer:          cputimer.New(logger),
		probe:          config.HardwareProbe,
		observer:       config.Observer,
		logger:         logger,
	}

	source := config.Source
	if source == nil {
		if !config.DisableCycleCounter && perfcounter.Available() {
			counter, err := perfcounter.Open()
			if err != nil {
				logger.Warn("opening cpu cycle counter failed, cycles will be absent", "error", err)
			} else {
				orchestrator.counter = counter
			}
		}
		processSource, err := sampler.NewProcessSource(sampler.ProcessSourceConfig{
			Counter: orchestrator.counter,
			Clock:   config.Clock,
			Logger:  logger,
		})
		if err != nil {
			orchestrator.Close()
			return nil, fmt.Errorf("profiling: %w", err)
		}
		source = processSource
	}
	orchestrator.sampler = sampler.New(sampler.Config{
		Source:      source,
		StopTimeout: config.StopTimeout,
		Clock:       config.Clock,
		Logger:      logger,
	})

	tracer, err := memtrace.New(memtrace.Config{
		Interval: config.MemoryInterval,
		Reader:   config.RSSReader,
		Clock:    config.Clock,
		Logger:   logger,
	})
	if err != nil {
		orchestrator.Close()
		return nil, fmt.Errorf("profiling: %w", err)
	}
	orchestrator.tracer = tracer
	return orchestrator, nil
}

// Execute runs workload under instrumentation. A workload error is
// returned unchanged with a zero Execution; a workload panic propagates
// after the instruments are disarmed.
func (o *Orchestrator) Execute(ctx context.Context, workload Workload) (Execution, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.observe(PhaseArmTimer)
	activeTimer := o.timer.Start()

	o.observe(PhaseHardware)
	hardware := o.hardwareLocked(ctx)

	o.observe(PhaseArmSampler)
	o.sampler.Start(o.sampleInterval)

	var cpuProfile cputimer.Profile
	var system sampler.AggregateMetrics
	trace, err := func() (memtrace.Trace, error) {
		// Stopping the CPU profile blocks while the runtime flushes it;
		// the sampler must not record that.
		defer func() {
			o.observe(PhaseDisarmSampler)
			system = o.sampler.Stop()
			o.observe(PhaseDisarmTimer)
			cpuProfile = activeTimer.Stop()
		}()
		o.observe(PhaseWorkload)
		return o.tracer.Trace(ctx, workload)
	}()
	if err != nil {
		return Execution{}, err
	}

	return Execution{
		Result: trace.Result,
		Metrics: Metrics{
			CPU:      cpuProfile,
			System:   system,
			Hardware: hardware,
			Memory: MemoryMetrics{
				PeakMB:  trace.PeakMB,
				Samples: trace.Samples,
			},
		},
	}, nil
}

// Hardware returns the cached hardware snapshot, collecting it first
// if no execution has yet.
func (o *Orchestrator) Hardware(ctx context.Context) hwinfo.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hardwareLocked(ctx)
}

func (o *Orchestrator) hardwareLocked(ctx context.Context) hwinfo.Snapshot {
	if o.hardware == nil {
		snapshot := hwinfo.Collect(ctx, o.probe, o.logger)
		o.hardware = &snapshot
	}
	return *o.hardware
}

// CyclesAvailable reports whether executions carry cycle counts.
func (o *Orchestrator) CyclesAvailable() bool {
	return o.counter != nil
}

// Close releases the cycle counter.
func (o *Orchestrator) Close() error {
	if o.counter == nil {
		return nil
	}
	err := o.counter.Close()
	o.counter = nil
	return err
}

func (o *Orchestrator) observe(phase Phase) {
	if o.observer != nil {
		o.observer(phase)
	}
}
