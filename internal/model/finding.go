package model

import "fmt"

// Finding is a single anomaly reported by one scan cycle.
// Findings are produced fresh each cycle, returned in enumeration order, and
// never retained by the scanner; the caller owns the slice.
//
// An empty finding slice means "nothing anomalous" and is distinct from a
// failed scan, which is logged at the scanner boundary and also yields an
// empty slice.
type Finding struct {
	// Description is the human-readable threat line shown to operators.
	Description string `json:"description"`

	// Name is the executable name of the flagged process.
	Name string `json:"name"`

	// PID is the process identifier of the flagged process.
	PID int32 `json:"pid"`

	// CPUPercent is the CPU utilization that triggered the flag.
	CPUPercent float64 `json:"cpu_percent"`
}

// NewHighCPUFinding builds the finding for a process exceeding the CPU
// threshold. The description format mirrors what the scanner has always
// reported so downstream log consumers keep matching.
func NewHighCPUFinding(p ProcessInfo) Finding {
	return Finding{
		Description: fmt.Sprintf("High CPU: %s (PID: %d)", p.Name, p.PID),
		Name:        p.Name,
		PID:         p.PID,
		CPUPercent:  p.CPUPercent,
	}
}

// ProcessInfo is a transient per-process record obtained from host
// enumeration. It is read-only and discarded immediately after the threshold
// rule has been applied. A process that disappears or denies access between
// enumeration and inspection is skipped, not surfaced as an error.
type ProcessInfo struct {
	// PID is the OS process identifier.
	PID int32 `json:"pid"`

	// Name is the executable name as reported by the host.
	Name string `json:"name"`

	// CPUPercent is the CPU utilization of the process.
	CPUPercent float64 `json:"cpu_percent"`
}
