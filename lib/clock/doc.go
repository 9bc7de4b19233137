// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the time operations used by the samplers so
// that tests can drive them deterministically.
//
// Samplers take a Clock in their config. Production code leaves the
// field nil (which resolves to Real()); tests inject Fake() and step
// time with Advance:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	s := sampler.New(sampler.Config{Source: src, Clock: c})
//	s.Start(50 * time.Millisecond)
//	c.WaitForTimers(1)              // sampling goroutine registered its ticker
//	c.Advance(50 * time.Millisecond) // one tick, one sample
//
// WaitForTimers closes the race between a goroutine registering a
// ticker and the test advancing past it.
package clock
