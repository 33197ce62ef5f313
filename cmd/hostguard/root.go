// Package main provides the entry point for the hostguard CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for hostguard.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hostguard",
		Short: "Host protection agent with anonymity relay supervision",
		Long: `Hostguard is a long-running host protection agent.

It scans running processes for suspicious CPU activity on a fixed
interval, supervises an embedded Tor relay for anonymous outbound
traffic, and exposes on-demand text classification backed by a local
inference endpoint.

Capabilities that are missing on the host (no tor binary, no inference
endpoint, no display) degrade gracefully: the agent keeps running with
the affected feature reported as unavailable.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .hostguard in current or home directory)")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewClassifyCmd())
	cmd.AddCommand(NewNewnymCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
