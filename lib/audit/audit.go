// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"cmp"
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"time"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/cryptobench/lib/binhash"
	"github.com/bureau-foundation/cryptobench/lib/clock"
	"github.com/bureau-foundation/cryptobench/lib/codec"
	"github.com/bureau-foundation/cryptobench/lib/hwinfo"
	"github.com/bureau-foundation/cryptobench/lib/perfcounter"
	"github.com/bureau-foundation/cryptobench/lib/version"
)

// manifestKey domain-separates environment hashes from any other
// BLAKE3 use. Changing it changes every hash.
var manifestKey = func() [32]byte {
	var key [32]byte
	copy(key[:], "cryptobench/audit/manifest/v1")
	return key
}()

// Host describes the operating system.
type Host struct {
	OS              string `json:"os"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	KernelVersion   string `json:"kernel_version"`
	KernelArch      string `json:"kernel_arch"`
	Virtualization  string `json:"virtualization,omitempty"`
}

// Module is one linked Go module.
type Module struct {
	Path    string `json:"path"`
	Version string `json:"version"`
	// Replacement is "path@version" when the module is replaced.
	Replacement string `json:"replacement,omitempty"`
}

// Manifest is everything the environment hash covers. It excludes the
// audit time and the hostname.
type Manifest struct {
	Hardware     hwinfo.Snapshot `json:"hardware"`
	Host         Host            `json:"host"`
	Build        version.Build   `json:"build"`
	GoModule     string          `json:"go_module"`
	Modules      []Module        `json:"modules"`
	CycleCounter bool            `json:"cycle_counter"`
	// Executable is the BLAKE3 digest of the benchmark binary.
	Executable string `json:"executable_digest,omitempty"`
}

// Report is a completed audit.
type Report struct {
	AuditedAt       time.Time `json:"audited_at"`
	EnvironmentHash string    `json:"environment_hash"`
	Manifest
}

// HostProbe reads operating system details.
type HostProbe interface {
	Host(ctx context.Context) (Host, error)
}

// SystemHost is the gopsutil-backed HostProbe.
type SystemHost struct{}

// Host implements HostProbe.
func (SystemHost) Host(ctx context.Context) (Host, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return Host{}, fmt.Errorf("reading host info: %w", err)
	}
	return Host{
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelVersion:   info.KernelVersion,
		KernelArch:      info.KernelArch,
		Virtualization:  info.VirtualizationSystem,
	}, nil
}

// Config configures Collect. Zero fields use the live system.
type Config struct {
	Hardware  hwinfo.Probe
	Host      HostProbe
	BuildInfo func() (*debug.BuildInfo, bool)
	// CycleCounter reports whether the hardware cycle counter works.
	CycleCounter func() bool
	// Executable digests the running binary.
	Executable func() (binhash.Digest, error)
	Clock      clock.Clock
	Logger     *slog.Logger
}

// Collect audits the running environment. A failing host probe or
// executable digest is logged and leaves its field empty; neither fails
// the audit.
func Collect(ctx context.Context, config Config) (Report, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	hardwareProbe := config.Hardware
	if hardwareProbe == nil {
		hardwareProbe = hwinfo.NewSystemProbe()
	}
	hostProbe := config.Host
	if hostProbe == nil {
		hostProbe = SystemHost{}
	}
	buildInfo := config.BuildInfo
	if buildInfo == nil {
		buildInfo = debug.ReadBuildInfo
	}
	cycleCounter := config.CycleCounter
	if cycleCounter == nil {
		cycleCounter = perfcounter.Available
	}
	executable := config.Executable
	if executable == nil {
		executable = binhash.Executable
	}

	manifest := Manifest{
		Hardware:     hwinfo.Collect(ctx, hardwareProbe, logger),
		Build:        version.Current(),
		CycleCounter: cycleCounter(),
	}

	hostInfo, err := hostProbe.Host(ctx)
	if err != nil {
		logger.Warn("host information unavailable", "error", err)
	}
	manifest.Host = hostInfo

	if digest, err := executable(); err != nil {
		logger.Warn("executable digest unavailable", "error", err)
	} else {
		manifest.Executable = digest.String()
	}

	if info, ok := buildInfo(); ok {
		manifest.GoModule = info.Main.Path
		manifest.Modules = modules(info.Deps)
	} else {
		logger.Warn("binary carries no module information")
	}

	hash, err := Hash(manifest)
	if err != nil {
		return Report{}, err
	}
	return Report{
		AuditedAt:       clock.OrReal(config.Clock).Now().UTC(),
		EnvironmentHash: hash,
		Manifest:        manifest,
	}, nil
}

// modules lists deps sorted by path.
func modules(deps []*debug.Module) []Module {
	result := make([]Module, 0, len(deps))
	for _, dep := range deps {
		module := Module{Path: dep.Path, Version: dep.Version}
		if dep.Replace != nil {
			module.Replacement = dep.Replace.Path + "@" + dep.Replace.Version
		}
		result = append(result, module)
	}
	slices.SortFunc(result, func(a, b Module) int { return cmp.Compare(a.Path, b.Path) })
	return result
}

// Hash returns the hex keyed BLAKE3 digest of the manifest's
// deterministic CBOR encoding.
func Hash(manifest Manifest) (string, error) {
	encoded, err := codec.Marshal(manifest)
	if err != nil {
		return "", fmt.Errorf("encoding manifest: %w", err)
	}
	hasher, err := blake3.NewKeyed(manifestKey[:])
	if err != nil {
		panic("audit: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(encoded)
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
