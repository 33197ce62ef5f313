package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeStatus(md, summary)
	w.writeCycles(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with overview counts.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	md.H1("Hostguard Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Scan Cycles", strconv.Itoa(summary.TotalCycles)},
			{"Alert Cycles", strconv.Itoa(summary.AlertCycles)},
			{"Total Findings", strconv.Itoa(summary.TotalFindings)},
		},
	})
	md.PlainText("")

	if summary.TotalCycles > 0 {
		w.writePieChart(md, summary)
	}
	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart of clean versus alert cycles.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Scan Cycle Outcomes"),
		piechart.WithShowData(true),
	)

	if summary.AlertCycles > 0 {
		chart.LabelAndIntValue("Alerts", uint64(summary.AlertCycles))
	}
	if clean := summary.CleanCycles(); clean > 0 {
		chart.LabelAndIntValue("Clean", uint64(clean))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the summary outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *Summary) {
	switch {
	case len(summary.repeatOffenders()) > 0:
		md.Warningf(
			"Processes were flagged across multiple scan cycles. %d finding(s) over %d alert cycle(s) suggest sustained high CPU activity.",
			summary.TotalFindings, summary.AlertCycles,
		)
	case summary.HasAlerts():
		md.Importantf(
			"%d scan cycle(s) raised security alerts with %d finding(s) total.",
			summary.AlertCycles, summary.TotalFindings,
		)
	case summary.TotalCycles > 0:
		md.Tip("No security alerts in the covered period.")
	default:
		md.Note("No scan cycles have been recorded yet.")
	}
	md.PlainText("")
}

// writeStatus writes the agent status table when a status is present.
func (w *MarkdownWriter) writeStatus(md *markdown.Markdown, summary *Summary) {
	if summary.Status == nil {
		return
	}

	md.H2("Agent Status")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Flag", "State"},
		Rows: [][]string{
			{"Running", yesNo(summary.Status.Running)},
			{"Anonymity Active", yesNo(summary.Status.AnonymityActive)},
			{"Classification Capability", yesNo(summary.Status.Capabilities.Classification)},
			{"Anonymity Capability", yesNo(summary.Status.Capabilities.Anonymity)},
			{"Presentation Capability", yesNo(summary.Status.Capabilities.Presentation)},
		},
	})
	md.PlainText("")
}

// writeCycles writes the alert cycle table and repeat offenders.
func (w *MarkdownWriter) writeCycles(md *markdown.Markdown, summary *Summary) {
	md.H2("Alerts")
	md.PlainText("")

	if !summary.HasAlerts() {
		md.PlainText("No findings were recorded.")
		md.PlainText("")
		return
	}

	var rows [][]string
	for _, c := range summary.Cycles {
		for _, f := range c.Findings {
			rows = append(rows, []string{
				c.ScannedAt.Format("2006-01-02 15:04:05"),
				truncateString(f.Name, 40),
				strconv.Itoa(int(f.PID)),
				strconv.FormatFloat(f.CPUPercent, 'f', 1, 64) + "%",
			})
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Scanned At", "Process", "PID", "CPU"},
		Rows:   rows,
	})
	md.PlainText("")

	offenders := summary.repeatOffenders()
	if len(offenders) == 0 {
		return
	}

	md.H2("Repeat Offenders")
	md.PlainText("")
	items := make([]string, 0, len(offenders))
	for _, o := range offenders {
		items = append(items, o.Name+" flagged in "+strconv.Itoa(o.Count)+" cycles")
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by hostguard*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
