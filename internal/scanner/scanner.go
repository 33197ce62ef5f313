package scanner

import (
	"context"
	"log/slog"

	"github.com/nao1215/hostguard/internal/model"
)

// Lister enumerates host processes.
//
// Design decision: The scanner talks to an interface rather than the host
// API directly so tests can inject deterministic process tables. Per-entry
// failures are the lister's problem: it skips unreadable processes and only
// returns an error when enumeration as a whole is impossible.
type Lister interface {
	// Processes returns a snapshot of running processes in enumeration
	// order. Entries that cannot be inspected are omitted, not errors.
	Processes(ctx context.Context) ([]model.ProcessInfo, error)
}

// Scanner applies the threshold rule to a process listing.
type Scanner struct {
	lister    Lister
	threshold float64
	logger    *slog.Logger
}

// New creates a Scanner flagging processes above the given CPU threshold.
// A nil logger falls back to slog.Default().
func New(lister Lister, threshold float64, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		lister:    lister,
		threshold: threshold,
		logger:    logger.With("component", "scanner"),
	}
}

// Scan performs one pass over the process table and returns findings in
// enumeration order. An empty slice is the normal "nothing anomalous"
// result and is also what a failed enumeration degrades to; the failure
// itself is logged here so the scan loop never has to branch on it.
func (s *Scanner) Scan(ctx context.Context) []model.Finding {
	procs, err := s.lister.Processes(ctx)
	if err != nil {
		s.logger.Error("process enumeration failed", "error", err)
		return nil
	}

	var findings []model.Finding
	for _, p := range procs {
		if p.CPUPercent > s.threshold {
			findings = append(findings, model.NewHighCPUFinding(p))
		}
	}
	return findings
}

// Threshold returns the configured CPU threshold.
func (s *Scanner) Threshold() float64 {
	return s.threshold
}
