package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/hostguard/internal/capability"
	"github.com/nao1215/hostguard/internal/classify"
	"github.com/nao1215/hostguard/internal/config"
	hostlog "github.com/nao1215/hostguard/internal/log"
	"github.com/spf13/cobra"
)

// NewClassifyCmd creates the classify command.
func NewClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Classify text through the inference endpoint",
		Long: `Classify sends text to the configured inference endpoint and
prints the label and confidence score. Text is read from the
arguments, or from stdin when no argument is given.

When the endpoint is unreachable or not configured, the result is
reported as unavailable rather than failing.

Examples:
  # Classify an argument
  hostguard classify "free crypto giveaway click now"

  # Classify stdin against a specific endpoint
  cat email.txt | hostguard classify --classify-url http://127.0.0.1:8080/v1/chat/completions`,
		Args: cobra.ArbitraryArgs,
		RunE: runClassifyCmd,
	}

	cmd.Flags().String("classify-url", "",
		"Classification endpoint URL (OpenAI-compatible chat completions)")
	cmd.Flags().String("classify-model", config.DefaultClassifyModel,
		"Model name sent to the classification endpoint")
	cmd.Flags().BoolP("json", "j", false,
		"Output the result as JSON")

	return cmd
}

// runClassifyCmd executes the classify command.
func runClassifyCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
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

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), int64(config.DefaultClassifyMaxInput)))
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		return fmt.Errorf("no text to classify (pass an argument or pipe stdin)")
	}

	logger := hostlog.NewMaskingLogger(cmd.ErrOrStderr(), cfg.Verbose)
	caps := capability.Probe(cmd.Context(), cfg.ClassifyURL, logger)

	var backend classify.Backend
	if caps.Classification && cfg.ClassifyURL != "" {
		backend = classify.NewHTTPBackend(cfg.ClassifyURL, cfg.ClassifyAPIKey,
			cfg.ClassifyModel, cfg.ClassifyTimeout)
	}
	gateway := classify.New(backend, caps.Classification, config.DefaultClassifyMaxInput, logger)

	result := gateway.Classify(cmd.Context(), text)

	if asJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	if result.Unavailable {
		fmt.Fprintf(cmd.OutOrStdout(), "unavailable: %s\n", result.Reason)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (score %.2f)\n", result.Label, result.Score)
	return nil
}
