// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package perfcounter

import (
	"errors"
	"sync"
)

// ErrUnsupported is returned by Open when the platform or host does not
// expose a cycle counter to this process.
var ErrUnsupported = errors.New("perfcounter: hardware cycle counter not available")

// ErrNotEnabled is returned by Delta before Enable has been called.
var ErrNotEnabled = errors.New("perfcounter: counter not enabled")

// Available reports whether a cycle counter can be opened. The probe
// opens and closes one counter the first time it is called; later calls
// return the cached answer.
var Available = sync.OnceValue(func() bool {
	counter, err := Open()
	if err != nil {
		return false
	}
	counter.Close()
	return true
})

// CycleCounter is one open hardware counter. Enable resets it and
// records the baseline, Delta reports cycles counted since then.
// A CycleCounter is not safe for concurrent Enable/Disable; Delta may be
// called from a sampling goroutine while the owner holds it enabled.
type CycleCounter struct {
	mu       sync.Mutex
	handle   counterHandle
	baseline uint64
	enabled  bool
}

// counterHandle is the platform-specific part of a counter.
type counterHandle interface {
	reset() error
	enable() error
	disable() error
	read() (uint64, error)
	close() error
}

// Open opens a disabled cycle counter for the current process.
func Open() (*CycleCounter, error) {
	handle, err := openHandle()
	if err != nil {
		return nil, err
	}
	return &CycleCounter{handle: handle}, nil
}

// Enable resets and starts the counter and captures the baseline
// reading used by Delta.
func (c *CycleCounter) Enable() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.handle.reset(); err != nil {
		return err
	}
	if err := c.handle.enable(); err != nil {
		return err
	}
	baseline, err := c.handle.read()
	if err != nil {
		c.handle.disable()
		return err
	}
	c.baseline = baseline
	c.enabled = true
	return nil
}

// Delta returns the cycles counted since Enable.
func (c *CycleCounter) Delta() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return 0, ErrNotEnabled
	}
	current, err := c.handle.read()
	if err != nil {
		return 0, err
	}
	if current < c.baseline {
		return 0, nil
	}
	return current - c.baseline, nil
}

// Disable stops counting. Disabling an already disabled counter is a
// no-op.
func (c *CycleCounter) Disable() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return nil
	}
	c.enabled = false
	return c.handle.disable()
}

// Close releases the counter.
func (c *CycleCounter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.enabled = false
	return c.handle.close()
}
