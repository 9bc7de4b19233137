// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the cryptobench
// binary.
//
// Four variables are injected at build time via -ldflags -X:
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//   - [Version] -- semantic version string
//
// When GitCommit is not injected, [Current] falls back to the VCS
// stamp the Go toolchain embeds in the binary. The audit command
// records [Current] so that results can be traced to the code that
// produced them.
package version
