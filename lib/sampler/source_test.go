// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sampler

import (
	"testing"

	"github.com/bureau-foundation/cryptobench/lib/clock"
)

func TestProcessSourceWithoutCounter(t *testing.T) {
	fake := clock.Fake(epoch)
	source, err := NewProcessSource(ProcessSourceConfig{Clock: fake})
	if err != nil {
		t.Fatalf("NewProcessSource: %v", err)
	}

	source.Start()
	sample := source.Sample()
	source.Stop()

	if !sample.Timestamp.Equal(epoch) {
		t.Errorf("Timestamp = %v, want the injected clock's time", sample.Timestamp)
	}
	if sample.CPUCycles != nil {
		t.Errorf("CPUCycles = %d, want absent without a counter", *sample.CPUCycles)
	}
	if sample.CPUPercent < 0 || sample.MemoryPercent < 0 || sample.MemoryPercent > 100 {
		t.Errorf("implausible sample %+v", sample)
	}
}
