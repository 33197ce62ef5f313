package main

import (
	"fmt"

	"github.com/nao1215/hostguard/internal/relay"
	"github.com/spf13/cobra"
)

// NewNewnymCmd creates the newnym command.
func NewNewnymCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newnym",
		Short: "Request a new Tor circuit identity",
		Long: `Newnym signals the running Tor relay to build new circuits,
giving subsequent connections a fresh exit identity.

The relay must already be running, typically launched by a
'hostguard run' agent on the same host.

Examples:
  # Signal the default control port
  hostguard newnym

  # Signal a relay on a non-default control port
  hostguard newnym --control-addr 127.0.0.1:9151`,
		Args: cobra.NoArgs,
		RunE: runNewnymCmd,
	}

	cmd.Flags().String("control-addr", "",
		"Control address of the running relay (default from config)")

	return cmd
}

// runNewnymCmd executes the newnym command.
func runNewnymCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("control-addr") {
		cfg.ControlAddr, err = cmd.Flags().GetString("control-addr")
		if err != nil {
			return err
		}
	}

	if err := relay.SignalNewIdentity(cmd.Context(), cfg.ControlAddr, cfg.RelayDataDir()); err != nil {
		return fmt.Errorf("identity renewal failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "New identity requested.")
	return nil
}
