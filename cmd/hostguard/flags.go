package main

import (
	"errors"
	"fmt"

	"github.com/nao1215/hostguard/internal/config"
	"github.com/spf13/cobra"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// loadConfig builds a Config from defaults, the optional configuration
// file, and the persistent flags every command shares.
//
// If the user explicitly specified a config file path, a missing file is
// an error. Without an explicit path, a missing .hostguard file means
// defaults apply.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	configFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configFlag

	explicitConfigPath := configFlag != ""
	configPath := config.FindConfigFile(configFlag)

	if configPath != "" {
		if err := config.LoadConfigFile(configPath, cfg); err != nil {
			if errors.Is(err, config.ErrConfigNotFound) && explicitConfigPath {
				return nil, fmt.Errorf("configuration file not found: %s", configFlag)
			}
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", configFlag)
	}

	return cfg, nil
}

// applyRunFlags overlays the run command's tuning flags onto cfg.
// Flags the user did not change keep the config file or default value.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error

	if cmd.Flags().Changed("interval") {
		cfg.ScanInterval, err = cmd.Flags().GetDuration("interval")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("cpu-threshold") {
		cfg.CPUThreshold, err = cmd.Flags().GetFloat64("cpu-threshold")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("socks-addr") {
		cfg.SocksAddr, err = cmd.Flags().GetString("socks-addr")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("control-addr") {
		cfg.ControlAddr, err = cmd.Flags().GetString("control-addr")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("tor-timeout") {
		cfg.TorStartupTimeout, err = cmd.Flags().GetDuration("tor-timeout")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("classify-url") {
		cfg.ClassifyURL, err = cmd.Flags().GetString("classify-url")
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("classify-model") {
		cfg.ClassifyModel, err = cmd.Flags().GetString("classify-model")
		if err != nil {
			return err
		}
	}

	cfg.Headless, err = cmd.Flags().GetBool("cli")
	if err != nil {
		return err
	}

	return nil
}
