// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package perfcounter

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

type perfEventHandle struct {
	fd int
}

func openHandle() (counterHandle, error) {
	attr := unix.PerfEventAttr{
		Type:   unix.PERF_TYPE_HARDWARE,
		Config: unix.PERF_COUNT_HW_CPU_CYCLES,
		Bits:   unix.PerfBitDisabled | unix.PerfBitInherit | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv,
	}
	attr.Size = uint32(unsafe.Sizeof(attr))

	fd, err := unix.PerfEventOpen(&attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("%w: perf_event_open: %v", ErrUnsupported, err)
	}
	return &perfEventHandle{fd: fd}, nil
}

func (h *perfEventHandle) reset() error {
	return h.ioctl(unix.PERF_EVENT_IOC_RESET, "reset")
}

func (h *perfEventHandle) enable() error {
	return h.ioctl(unix.PERF_EVENT_IOC_ENABLE, "enable")
}

func (h *perfEventHandle) disable() error {
	return h.ioctl(unix.PERF_EVENT_IOC_DISABLE, "disable")
}

func (h *perfEventHandle) ioctl(request uint, name string) error {
	if err := unix.IoctlSetInt(h.fd, request, 0); err != nil {
		return fmt.Errorf("perfcounter: %s: %w", name, err)
	}
	return nil
}

func (h *perfEventHandle) read() (uint64, error) {
	var buffer [8]byte
	n, err := unix.Read(h.fd, buffer[:])
	if err != nil {
		return 0, fmt.Errorf("perfcounter: read: %w", err)
	}
	if n != len(buffer) {
		return 0, fmt.Errorf("perfcounter: short read: %d bytes", n)
	}
	return binary.NativeEndian.Uint64(buffer[:]), nil
}

func (h *perfEventHandle) close() error {
	if h.fd < 0 {
		return nil
	}
	err := unix.Close(h.fd)
	h.fd = -1
	return err
}
