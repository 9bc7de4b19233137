// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the cryptobench binary's entry point helpers:
// the two places where output goes straight to stderr because the
// structured logger is either not built yet or already gone.
package process
