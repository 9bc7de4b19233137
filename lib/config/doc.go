// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the cryptobench YAML configuration.
//
// Configuration comes from a single file named either by the
// CRYPTOBENCH_CONFIG environment variable (via [Load]) or by the
// --config flag (via [LoadFile]). Without either, commands run on
// [Default]. There is no file discovery and no per-field environment
// override: the file, when given, is the whole story.
//
// Path fields support ${HOME}, ${CRYPTOBENCH_ROOT}, and
// ${VAR:-default} expansion after loading.
//
// Key exports:
//
//   - [Config] with Paths, Sampling, Defaults, Store, Report, Export
//   - [Default] for a complete configuration with no file
//   - [Load] and [LoadFile] for the two file entry points
//   - [Config.Validate] for range and enum checks
package config
