// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package audit records the environment a benchmark ran in: hardware,
// operating system, the cryptobench build, and every module linked
// into the binary. The environment hash is a keyed BLAKE3 digest of
// the deterministic CBOR encoding of that manifest, so two runs with
// the same hash ran on comparable machines with identical library
// versions. The manifest also carries the BLAKE3 digest of the
// executable itself (see package binhash), which catches rebuilds that
// leave every version string unchanged.
package audit
