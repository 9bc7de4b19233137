// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fixedProbe returns canned answers. A non-nil err on a field makes
// that field's query fail.
type fixedProbe struct {
	brand, arch        string
	physical, logical  int
	mhz                float64
	hasFrequency       bool
	ramBytes           uint64
	brandErr, coresErr error
	ramErr             error
}

func (p fixedProbe) CPUBrand(context.Context) (string, error) { return p.brand, p.brandErr }
func (p fixedProbe) CPUArch(context.Context) (string, error)  { return p.arch, nil }

func (p fixedProbe) CoreCount(_ context.Context, logical bool) (int, error) {
	if p.coresErr != nil {
		return 0, p.coresErr
	}
	if logical {
		return p.logical, nil
	}
	return p.physical, nil
}

func (p fixedProbe) FrequencyMHz(context.Context) (float64, bool) { return p.mhz, p.hasFrequency }

func (p fixedProbe) RAMTotalBytes(context.Context) (uint64, error) { return p.ramBytes, p.ramErr }

func healthyProbe() fixedProbe {
	return fixedProbe{
		brand:        "AMD EPYC 7763 64-Core Processor",
		arch:         "x86_64",
		physical:     64,
		logical:      128,
		mhz:          2450,
		hasFrequency: true,
		ramBytes:     512 << 30,
	}
}

func TestCollect(t *testing.T) {
	snapshot := Collect(context.Background(), healthyProbe(), nil)

	if snapshot.CollectionFailed {
		t.Fatalf("CollectionFailed = true, error %q", snapshot.Error)
	}
	if snapshot.CPUBrand == nil || *snapshot.CPUBrand != "AMD EPYC 7763 64-Core Processor" {
		t.Errorf("CPUBrand = %v", snapshot.CPUBrand)
	}
	if snapshot.CPUArch == nil || *snapshot.CPUArch != "x86_64" {
		t.Errorf("CPUArch = %v", snapshot.CPUArch)
	}
	if snapshot.PhysicalCores == nil || *snapshot.PhysicalCores != 64 {
		t.Errorf("PhysicalCores = %v, want 64", snapshot.PhysicalCores)
	}
	if snapshot.LogicalCores == nil || *snapshot.LogicalCores != 128 {
		t.Errorf("LogicalCores = %v, want 128", snapshot.LogicalCores)
	}
	if snapshot.FrequencyMHz == nil || *snapshot.FrequencyMHz != 2450 {
		t.Errorf("FrequencyMHz = %v, want 2450", snapshot.FrequencyMHz)
	}
	if snapshot.RAMTotalGB == nil || *snapshot.RAMTotalGB != 512 {
		t.Errorf("RAMTotalGB = %v, want 512", snapshot.RAMTotalGB)
	}
}

func TestCollectWithoutFrequency(t *testing.T) {
	probe := healthyProbe()
	probe.hasFrequency = false

	snapshot := Collect(context.Background(), probe, nil)
	if snapshot.CollectionFailed {
		t.Fatal("missing frequency must not fail collection")
	}
	if snapshot.FrequencyMHz != nil {
		t.Errorf("FrequencyMHz = %v, want absent", *snapshot.FrequencyMHz)
	}
	if !strings.Contains(snapshot.String(), "unknown MHz") {
		t.Errorf("String() = %q, want unknown frequency", snapshot.String())
	}
}

func TestCollectFailureIsAllAbsent(t *testing.T) {
	failure := errors.New("permission denied")
	tests := []struct {
		name   string
		mutate func(*fixedProbe)
		want   string
	}{
		{"brand", func(p *fixedProbe) { p.brandErr = failure }, "cpu brand"},
		{"cores", func(p *fixedProbe) { p.coresErr = failure }, "physical cores"},
		{"memory", func(p *fixedProbe) { p.ramErr = failure }, "total memory"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			probe := healthyProbe()
			test.mutate(&probe)

			snapshot := Collect(context.Background(), probe, nil)
			if !snapshot.CollectionFailed {
				t.Fatal("CollectionFailed = false")
			}
			if !strings.Contains(snapshot.Error, test.want) {
				t.Errorf("Error = %q, want it to mention %q", snapshot.Error, test.want)
			}
			if snapshot.CPUBrand != nil || snapshot.CPUArch != nil ||
				snapshot.PhysicalCores != nil || snapshot.LogicalCores != nil ||
				snapshot.FrequencyMHz != nil || snapshot.RAMTotalGB != nil {
				t.Errorf("failed snapshot carries fields: %+v", snapshot)
			}
		})
	}
}

func TestCollectSystemProbe(t *testing.T) {
	snapshot := Collect(context.Background(), NewSystemProbe(), nil)
	if snapshot.CollectionFailed {
		t.Skipf("host does not expose hardware info: %s", snapshot.Error)
	}
	if snapshot.LogicalCores == nil || *snapshot.LogicalCores < 1 {
		t.Errorf("LogicalCores = %v, want >= 1", snapshot.LogicalCores)
	}
	if snapshot.RAMTotalGB == nil || *snapshot.RAMTotalGB <= 0 {
		t.Errorf("RAMTotalGB = %v, want > 0", snapshot.RAMTotalGB)
	}
}
