// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds helpers shared by the package tests.
//
// [RequireReceive] and [RequireClosed] wrap the
// select-with-timeout pattern used when a test waits on a goroutine.
// They are the only place tests touch the wall clock; everything else
// drives time through clock.Fake.
//
// Helpers fail the test with t.Fatalf instead of returning errors.
package testutil
