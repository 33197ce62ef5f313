package scanner

import (
	"context"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/nao1215/hostguard/internal/model"
)

// HostLister enumerates processes through the host OS.
//
// Design decision: We use gopsutil rather than reading /proc (or the
// platform equivalents) by hand. The agent has to run on Linux, macOS, and
// Windows, and gopsutil already carries the per-OS inspection code along
// with the permission-tolerant semantics the scanner needs.
type HostLister struct{}

// NewHostLister creates a lister backed by the host process table.
func NewHostLister() *HostLister {
	return &HostLister{}
}

// Processes returns one ProcessInfo per inspectable process.
// A process that exits or denies access between enumeration and attribute
// reads is dropped from the result. That is routine on a live host (short-
// lived children, other users' processes) and must not fail the scan.
func (l *HostLister) Processes(ctx context.Context) ([]model.ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]model.ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		cpu, err := p.CPUPercentWithContext(ctx)
		if err != nil {
			continue
		}
		infos = append(infos, model.ProcessInfo{
			PID:        p.Pid,
			Name:       name,
			CPUPercent: cpu,
		})
	}
	return infos, nil
}
