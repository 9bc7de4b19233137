// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package hwinfo

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// readCPUModel extracts the first "model name" line from
// procRoot/cpuinfo. Returns "" if the file is unreadable or carries no
// model name (common on arm64 kernels).
func readCPUModel(procRoot string) string {
	file, err := os.Open(filepath.Join(procRoot, "cpuinfo"))
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), ":")
		if found && strings.TrimSpace(key) == "model name" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// readMaxFrequencyMHz returns cpu0's maximum frequency from the cpufreq
// tree, which reports kHz. Falls back to the base frequency some
// drivers (intel_pstate, amd-pstate) publish instead. Returns 0 when
// neither file exists.
func readMaxFrequencyMHz(sysRoot string) float64 {
	base := filepath.Join(sysRoot, "devices/system/cpu/cpu0/cpufreq")
	for _, name := range []string{"cpuinfo_max_freq", "base_frequency"} {
		khz, err := strconv.ParseFloat(readSysfsString(filepath.Join(base, name)), 64)
		if err == nil && khz > 0 {
			return khz / 1000
		}
	}
	return 0
}

// readSysfsString reads a sysfs attribute and trims surrounding
// whitespace. Returns "" on any error.
func readSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
