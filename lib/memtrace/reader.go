// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memtrace

import (
	"context"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessTreeReader sums RSS over a process and its descendants.
type ProcessTreeReader struct {
	root *process.Process
}

// NewProcessTreeReader returns a reader rooted at the calling process.
func NewProcessTreeReader() (*ProcessTreeReader, error) {
	root, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("memtrace: opening own process: %w", err)
	}
	return &ProcessTreeReader{root: root}, nil
}

// RSSBytes returns the resident memory of the tree. The root must be
// readable; descendants that exit mid-walk are skipped.
func (r *ProcessTreeReader) RSSBytes(ctx context.Context) (uint64, error) {
	info, err := r.root.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("memtrace: reading rss: %w", err)
	}
	return info.RSS + descendantRSS(ctx, r.root), nil
}

func descendantRSS(ctx context.Context, parent *process.Process) uint64 {
	children, err := parent.ChildrenWithContext(ctx)
	if err != nil {
		// Includes process.ErrorNoChildren, the common case.
		return 0
	}
	var total uint64
	for _, child := range children {
		if info, err := child.MemoryInfoWithContext(ctx); err == nil {
			total += info.RSS
		}
		total += descendantRSS(ctx, child)
	}
	return total
}
