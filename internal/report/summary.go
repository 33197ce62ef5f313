package report

import (
	"sort"
	"time"

	"github.com/nao1215/hostguard/internal/history"
	"github.com/nao1215/hostguard/internal/model"
)

// Summary aggregates journaled scan cycles into a report payload.
// It is the unit every Writer renders.
type Summary struct {
	// GeneratedAt is when the summary was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// Status is the agent status at generation time, when known.
	Status *model.AgentStatus `json:"status,omitempty"`

	// Cycles are the scan cycles covered, newest first.
	Cycles []history.Cycle `json:"cycles"`

	// TotalCycles is the number of cycles covered.
	TotalCycles int `json:"total_cycles"`

	// AlertCycles is the number of cycles with at least one finding.
	AlertCycles int `json:"alert_cycles"`

	// TotalFindings counts findings across all covered cycles.
	TotalFindings int `json:"total_findings"`
}

// NewSummary builds a Summary over the given cycles.
// Status may be nil when the agent is not running.
func NewSummary(status *model.AgentStatus, cycles []history.Cycle) *Summary {
	s := &Summary{
		GeneratedAt: time.Now(),
		Status:      status,
		Cycles:      cycles,
		TotalCycles: len(cycles),
	}

	for _, c := range cycles {
		if len(c.Findings) > 0 {
			s.AlertCycles++
			s.TotalFindings += len(c.Findings)
		}
	}

	return s
}

// HasAlerts reports whether any covered cycle produced findings.
func (s *Summary) HasAlerts() bool {
	return s.AlertCycles > 0
}

// CleanCycles returns the number of cycles with no findings.
func (s *Summary) CleanCycles() int {
	return s.TotalCycles - s.AlertCycles
}

// processCount is one process with its occurrence count across cycles.
type processCount struct {
	Name  string
	Count int
}

// repeatOffenders returns processes flagged in more than one cycle,
// most frequent first. Ties break alphabetically for stable output.
func (s *Summary) repeatOffenders() []processCount {
	counts := make(map[string]int)
	for _, c := range s.Cycles {
		seen := make(map[string]bool, len(c.Findings))
		for _, f := range c.Findings {
			if !seen[f.Name] {
				seen[f.Name] = true
				counts[f.Name]++
			}
		}
	}

	var offenders []processCount
	for name, count := range counts {
		if count > 1 {
			offenders = append(offenders, processCount{Name: name, Count: count})
		}
	}

	sort.Slice(offenders, func(i, j int) bool {
		if offenders[i].Count != offenders[j].Count {
			return offenders[i].Count > offenders[j].Count
		}
		return offenders[i].Name < offenders[j].Name
	})

	return offenders
}
