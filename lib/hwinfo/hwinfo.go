// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// Snapshot describes the machine a workload ran on. Pointer fields are
// absent (nil) when the value could not be determined.
type Snapshot struct {
	CPUBrand         *string  `json:"cpu_brand"`
	CPUArch          *string  `json:"cpu_arch"`
	PhysicalCores    *int     `json:"cpu_cores"`
	LogicalCores     *int     `json:"cpu_threads"`
	FrequencyMHz     *float64 `json:"cpu_freq_mhz"`
	RAMTotalGB       *float64 `json:"ram_total_gb"`
	CollectionFailed bool     `json:"collection_failed"`
	Error            string   `json:"error"`
}

// Probe answers individual hardware questions. SystemProbe is the
// production implementation; tests substitute fixed answers.
type Probe interface {
	CPUBrand(ctx context.Context) (string, error)
	CPUArch(ctx context.Context) (string, error)
	CoreCount(ctx context.Context, logical bool) (int, error)
	// FrequencyMHz reports the nominal CPU frequency. ok is false when
	// the host does not expose one.
	FrequencyMHz(ctx context.Context) (mhz float64, ok bool)
	RAMTotalBytes(ctx context.Context) (uint64, error)
}

// Collect builds a Snapshot from probe. It never returns an error: a
// failed required field yields an all-absent snapshot with
// CollectionFailed set, and the failure is logged through logger.
func Collect(ctx context.Context, probe Probe, logger *slog.Logger) Snapshot {
	snapshot, err := collect(ctx, probe)
	if err != nil {
		if logger != nil {
			logger.Warn("hardware info collection failed", "error", err)
		}
		return Snapshot{CollectionFailed: true, Error: err.Error()}
	}
	return snapshot
}

func collect(ctx context.Context, probe Probe) (Snapshot, error) {
	brand, err := probe.CPUBrand(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("cpu brand: %w", err)
	}
	arch, err := probe.CPUArch(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("cpu arch: %w", err)
	}
	physical, err := probe.CoreCount(ctx, false)
	if err != nil {
		return Snapshot{}, fmt.Errorf("physical cores: %w", err)
	}
	logical, err := probe.CoreCount(ctx, true)
	if err != nil {
		return Snapshot{}, fmt.Errorf("logical cores: %w", err)
	}
	ramBytes, err := probe.RAMTotalBytes(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("total memory: %w", err)
	}

	snapshot := Snapshot{
		CPUBrand:   &brand,
		CPUArch:    &arch,
		RAMTotalGB: ptr(roundTo(float64(ramBytes)/(1<<30), 2)),
	}
	if physical > 0 {
		snapshot.PhysicalCores = &physical
	}
	if logical > 0 {
		snapshot.LogicalCores = &logical
	}
	if mhz, ok := probe.FrequencyMHz(ctx); ok && mhz > 0 {
		snapshot.FrequencyMHz = ptr(roundTo(mhz, 2))
	}
	return snapshot, nil
}

// String renders the snapshot as a single line for logs and reports.
func (s Snapshot) String() string {
	if s.CollectionFailed {
		return "unavailable (" + s.Error + ")"
	}
	return fmt.Sprintf("%s, %s, %s cores / %s threads, %s MHz, %s GB RAM",
		orUnknown(s.CPUBrand), orUnknown(s.CPUArch),
		orUnknown(s.PhysicalCores), orUnknown(s.LogicalCores),
		orUnknown(s.FrequencyMHz), orUnknown(s.RAMTotalGB))
}

func orUnknown[T any](value *T) string {
	if value == nil {
		return "unknown"
	}
	return fmt.Sprint(*value)
}

func ptr[T any](value T) *T { return &value }

func roundTo(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
