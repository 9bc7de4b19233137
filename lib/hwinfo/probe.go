// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hwinfo

import (
	"context"
	"errors"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// SystemProbe answers hardware questions for the running host.
type SystemProbe struct {
	// procRoot and sysRoot locate /proc and /sys for the Linux
	// fallbacks. Tests point them at synthetic trees.
	procRoot string
	sysRoot  string
}

// NewSystemProbe returns a probe for the running host.
func NewSystemProbe() *SystemProbe {
	return &SystemProbe{procRoot: "/proc", sysRoot: "/sys"}
}

// CPUBrand returns the CPU model name, falling back to /proc/cpuinfo.
func (p *SystemProbe) CPUBrand(ctx context.Context) (string, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err == nil {
		for _, info := range infos {
			if brand := strings.TrimSpace(info.ModelName); brand != "" {
				return brand, nil
			}
		}
	}
	if brand := readCPUModel(p.procRoot); brand != "" {
		return brand, nil
	}
	if err != nil {
		return "", err
	}
	return "", errors.New("no cpu model reported")
}

// CPUArch returns the kernel's machine architecture, such as x86_64.
func (p *SystemProbe) CPUArch(context.Context) (string, error) {
	return host.KernelArch()
}

// CoreCount returns the logical thread count if logical is true, else the
// physical core count.
func (p *SystemProbe) CoreCount(ctx context.Context, logical bool) (int, error) {
	return cpu.CountsWithContext(ctx, logical)
}

// FrequencyMHz returns the maximum CPU frequency from sysfs, falling back
// to the first reported CPU's current frequency. ok is false if neither
// is available.
func (p *SystemProbe) FrequencyMHz(ctx context.Context) (mhz float64, ok bool) {
	if maxMHz := readMaxFrequencyMHz(p.sysRoot); maxMHz > 0 {
		return maxMHz, true
	}
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil || len(infos) == 0 || infos[0].Mhz <= 0 {
		return 0, false
	}
	return infos[0].Mhz, true
}

// RAMTotalBytes returns total physical memory.
func (p *SystemProbe) RAMTotalBytes(ctx context.Context) (uint64, error) {
	virtual, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return virtual.Total, nil
}
