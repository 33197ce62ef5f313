package main

import (
	"encoding/json"
	"fmt"

	"github.com/nao1215/hostguard/internal/config"
	hostlog "github.com/nao1215/hostguard/internal/log"
	"github.com/nao1215/hostguard/internal/scanner"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a single process scan and print findings",
		Long: `Scan inspects running processes once and prints any whose CPU
usage exceeds the threshold. It does not require a running agent.

Examples:
  # Scan with the default 90% threshold
  hostguard scan

  # Lower the threshold and emit JSON
  hostguard scan --cpu-threshold 50 --json`,
		Args: cobra.NoArgs,
		RunE: runScanCmd,
	}

	cmd.Flags().Float64("cpu-threshold", config.DefaultCPUThreshold,
		"CPU percentage above which a process is flagged")
	cmd.Flags().BoolP("json", "j", false,
		"Output findings as JSON")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("cpu-threshold") {
		cfg.CPUThreshold, err = cmd.Flags().GetFloat64("cpu-threshold")
		if err != nil {
			return err
		}
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	logger := hostlog.NewMaskingLogger(cmd.ErrOrStderr(), cfg.Verbose)
	sc := scanner.New(scanner.NewHostLister(), cfg.CPUThreshold, logger)

	findings := sc.Scan(cmd.Context())

	if asJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(findings)
	}

	if len(findings) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No processes above %.1f%% CPU.\n", cfg.CPUThreshold)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d process(es) above %.1f%% CPU:\n", len(findings), cfg.CPUThreshold)
	for _, f := range findings {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s (%.1f%%)\n", f.Description, f.CPUPercent)
	}
	return nil
}
