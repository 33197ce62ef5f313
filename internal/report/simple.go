package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether clean cycles are listed individually.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to list clean cycles too.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeStatus(&sb, summary)
	w.writeCycles(&sb, summary)
	w.writeFooter(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with generation information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         HOSTGUARD REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Generated:      %s\n", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Scan Cycles:    %d\n", summary.TotalCycles))
	sb.WriteString(fmt.Sprintf("Alert Cycles:   %d\n", summary.AlertCycles))
	sb.WriteString(fmt.Sprintf("Total Findings: %d\n", summary.TotalFindings))
	sb.WriteString("\n")
}

// writeStatus writes the agent status section when a status is present.
func (w *SimpleWriter) writeStatus(sb *strings.Builder, summary *Summary) {
	if summary.Status == nil {
		return
	}

	sb.WriteString("AGENT STATUS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Running:          %s\n", yesNo(summary.Status.Running)))
	sb.WriteString(fmt.Sprintf("Anonymity Active: %s\n", yesNo(summary.Status.AnonymityActive)))
	sb.WriteString(fmt.Sprintf("Classification:   %s\n", yesNo(summary.Status.Capabilities.Classification)))
	sb.WriteString(fmt.Sprintf("Anonymity:        %s\n", yesNo(summary.Status.Capabilities.Anonymity)))
	sb.WriteString(fmt.Sprintf("Presentation:     %s\n", yesNo(summary.Status.Capabilities.Presentation)))
	sb.WriteString("\n")
}

// writeCycles writes the scan cycle history section.
func (w *SimpleWriter) writeCycles(sb *strings.Builder, summary *Summary) {
	sb.WriteString("SCAN HISTORY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	if summary.TotalCycles == 0 {
		sb.WriteString("No scan cycles recorded.\n\n")
		return
	}

	shown := 0
	for _, c := range summary.Cycles {
		if len(c.Findings) == 0 && !w.showEmpty {
			continue
		}
		shown++

		sb.WriteString(fmt.Sprintf("[%s] %d finding(s)\n",
			c.ScannedAt.Format("2006-01-02 15:04:05"), len(c.Findings)))
		for _, f := range c.Findings {
			if w.verbose {
				sb.WriteString(fmt.Sprintf("  - %s (cpu %.1f%%)\n", f.Description, f.CPUPercent))
			} else {
				sb.WriteString(fmt.Sprintf("  - %s\n", f.Description))
			}
		}
	}

	if shown == 0 {
		sb.WriteString("All recorded cycles were clean.\n")
	}
	sb.WriteString("\n")

	if offenders := summary.repeatOffenders(); len(offenders) > 0 {
		sb.WriteString("REPEAT OFFENDERS\n")
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")
		for _, o := range offenders {
			sb.WriteString(fmt.Sprintf("%-40s flagged in %d cycles\n", o.Name, o.Count))
		}
		sb.WriteString("\n")
	}
}

// writeFooter writes a one-line verdict.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, summary *Summary) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	if summary.HasAlerts() {
		sb.WriteString(fmt.Sprintf("%d of %d cycles raised security alerts.\n",
			summary.AlertCycles, summary.TotalCycles))
	} else {
		sb.WriteString("No security alerts in the covered period.\n")
	}
}

// yesNo renders a boolean for terminal display.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
