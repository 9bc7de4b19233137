// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hwinfo captures the static hardware description attached to
// every profiled execution: CPU brand and architecture, physical and
// logical core counts, nominal frequency, and total RAM.
//
// [Collect] queries a [Probe] and folds the answers into a [Snapshot].
// [SystemProbe] answers from gopsutil and, on Linux, falls back to
// /proc/cpuinfo and the cpufreq sysfs tree when gopsutil cannot report a
// field. Collection is all-or-nothing: if any required field fails, the
// snapshot carries no fields at all, CollectionFailed is set, and the
// failure is logged once at warn level. Frequency is optional; hosts
// that expose no cpufreq data produce a snapshot with FrequencyMHz
// absent but CollectionFailed unset.
package hwinfo
