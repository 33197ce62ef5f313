package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/hostguard/internal/history"
	"github.com/nao1215/hostguard/internal/report"
	"github.com/spf13/cobra"
)

// defaultReportLimit caps how many scan cycles a report covers unless
// the user asks for more.
const defaultReportLimit = 100

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize recorded scan cycles",
		Long: `Report reads the scan history recorded by the agent and prints
a summary of alert cycles, findings, and repeat offenders.

Examples:
  # Human-readable summary of the last 100 cycles
  hostguard report

  # Markdown report written to a file
  hostguard report --markdown --output weekly.md

  # JSON for tooling
  hostguard report --json --limit 500`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultReportLimit,
		"Maximum number of scan cycles to cover")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("all", false,
		"List clean cycles too, not only alert cycles")

	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	journal, err := history.Open(cfg.HistoryDir())
	if err != nil {
		return fmt.Errorf("failed to open scan history: %w", err)
	}
	defer func() { _ = journal.Close() }()

	cycles, err := journal.RecentCycles(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to read scan history: %w", err)
	}

	summary := report.NewSummary(nil, cycles)
	return outputSummary(cmd, summary)
}

// outputSummary writes the summary in the requested format.
func outputSummary(cmd *cobra.Command, summary *report.Summary) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	output := cmd.OutOrStdout()
	if outputPath != "" {
		dir := filepath.Dir(outputPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may list process names; keep them owner-readable only.
		f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-supplied output path
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		output = f
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	showAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}

	switch {
	case asJSON:
		w := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err = w.Write(summary)
	case asMarkdown:
		w := report.NewMarkdownWriter(output)
		_, err = w.Write(summary)
	default:
		w := report.NewSimpleWriter(output, report.WithShowEmpty(showAll))
		_, err = w.Write(summary)
	}
	return err
}
