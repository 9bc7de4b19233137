// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package hwinfo

func readCPUModel(string) string { return "" }

func readMaxFrequencyMHz(string) float64 { return 0 }
