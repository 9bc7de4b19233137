// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash computes BLAKE3 content digests of executables.
//
// The environment audit records the digest of the running binary so
// that two result sets can be tied to byte-identical builds.
package binhash
