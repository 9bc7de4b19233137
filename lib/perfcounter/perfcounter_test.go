// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package perfcounter

import (
	"errors"
	"testing"
)

// scriptedHandle replays a fixed sequence of readings.
type scriptedHandle struct {
	readings []uint64
	enabled  bool
	closed   bool
}

func (h *scriptedHandle) reset() error   { return nil }
func (h *scriptedHandle) enable() error  { h.enabled = true; return nil }
func (h *scriptedHandle) disable() error { h.enabled = false; return nil }
func (h *scriptedHandle) close() error   { h.closed = true; return nil }

func (h *scriptedHandle) read() (uint64, error) {
	if len(h.readings) == 0 {
		return 0, errors.New("no readings left")
	}
	value := h.readings[0]
	h.readings = h.readings[1:]
	return value, nil
}

func TestCycleCounterDeltaIsRelativeToBaseline(t *testing.T) {
	handle := &scriptedHandle{readings: []uint64{1000, 1500, 4000}}
	counter := &CycleCounter{handle: handle}

	if _, err := counter.Delta(); !errors.Is(err, ErrNotEnabled) {
		t.Fatalf("Delta before Enable: err = %v, want ErrNotEnabled", err)
	}
	if err := counter.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	for _, want := range []uint64{500, 3000} {
		got, err := counter.Delta()
		if err != nil {
			t.Fatalf("Delta: %v", err)
		}
		if got != want {
			t.Errorf("Delta() = %d, want %d", got, want)
		}
	}

	if err := counter.Disable(); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if handle.enabled {
		t.Error("handle still enabled after Disable")
	}
	if _, err := counter.Delta(); !errors.Is(err, ErrNotEnabled) {
		t.Errorf("Delta after Disable: err = %v, want ErrNotEnabled", err)
	}
	if err := counter.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !handle.closed {
		t.Error("handle not closed")
	}
}

func TestCycleCounterDeltaClampsWraparound(t *testing.T) {
	counter := &CycleCounter{handle: &scriptedHandle{readings: []uint64{900, 100}}}
	if err := counter.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	got, err := counter.Delta()
	if err != nil {
		t.Fatalf("Delta: %v", err)
	}
	if got != 0 {
		t.Errorf("Delta() = %d, want 0 for a reading below the baseline", got)
	}
}

func TestOpenMatchesAvailable(t *testing.T) {
	counter, err := Open()
	if Available() != (err == nil) {
		t.Fatalf("Available() = %v but Open() err = %v", Available(), err)
	}
	if err != nil {
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("Open error %v does not wrap ErrUnsupported", err)
		}
		t.Skipf("cycle counter unavailable on this host: %v", err)
	}
	defer counter.Close()

	if err := counter.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	total := 0
	for i := range 100000 {
		total += i
	}
	_ = total
	if _, err := counter.Delta(); err != nil {
		t.Errorf("Delta: %v", err)
	}
}
