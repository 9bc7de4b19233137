// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package algorithm is the registry of cryptographic workloads the
// harness can profile.
//
// Each [Algorithm] maps to a [Workload] constructor that performs
// volume complete operations with a third-party or standard-library
// implementation: key generation, the primary operation, and the
// inverse check (decapsulate, verify, decrypt, derive). A check failure
// is returned as an error, which the profiler reports as a failed
// execution.
//
// Keys, nonces, and seeds are drawn from a ChaCha8 stream seeded with
// the caller's seed, so a run is reproducible for implementations that
// consume the supplied reader. RSA key generation and age always draw
// from the operating system's secure source.
package algorithm
