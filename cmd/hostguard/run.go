package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/hostguard/internal/agent"
	"github.com/nao1215/hostguard/internal/capability"
	"github.com/nao1215/hostguard/internal/classify"
	"github.com/nao1215/hostguard/internal/config"
	"github.com/nao1215/hostguard/internal/guard"
	"github.com/nao1215/hostguard/internal/history"
	hostlog "github.com/nao1215/hostguard/internal/log"
	"github.com/nao1215/hostguard/internal/model"
	"github.com/nao1215/hostguard/internal/relay"
	"github.com/nao1215/hostguard/internal/scanner"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the host protection agent",
		Long: `Run starts the long-running host protection agent.

On startup the agent:
- Acquires the single-instance lock (port 65432 on loopback)
- Probes host capabilities (classification, anonymity, presentation)
- Launches the Tor relay when the anonymity capability is present
- Scans processes for high CPU usage on a fixed interval

The agent runs until interrupted (SIGINT/SIGTERM). A second instance
exits immediately with a non-zero status.

Examples:
  # Run with defaults (60s scan interval)
  hostguard run

  # Run headless with a faster scan cycle
  hostguard run --cli --interval 30s

  # Point classification at a local inference server
  hostguard run --classify-url http://127.0.0.1:8080/v1/chat/completions`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	cmd.Flags().Bool("cli", false,
		"Run headless without the startup banner")
	cmd.Flags().DurationP("interval", "i", config.DefaultScanInterval,
		"Interval between scan cycles")
	cmd.Flags().Float64("cpu-threshold", config.DefaultCPUThreshold,
		"CPU percentage above which a process is flagged")
	cmd.Flags().String("socks-addr", config.DefaultSocksAddr,
		"SOCKS listen address for the embedded Tor relay")
	cmd.Flags().String("control-addr", config.DefaultControlAddr,
		"Control listen address for the embedded Tor relay")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
	cmd.Flags().String("classify-url", "",
		"Classification endpoint URL (OpenAI-compatible chat completions)")
	cmd.Flags().String("classify-model", config.DefaultClassifyModel,
		"Model name sent to the classification endpoint")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyRunFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// The single-instance lock comes first: a second agent must exit
	// before it touches logs, the relay, or the journal.
	lock, err := guard.Acquire()
	if err != nil {
		if errors.Is(err, guard.ErrAlreadyRunning) {
			return fmt.Errorf("another hostguard instance is already running (lock %s): %w",
				guard.DefaultAddr, err)
		}
		return fmt.Errorf("failed to acquire instance lock: %w", err)
	}
	defer func() { _ = lock.Release() }()

	logger, closeLog, err := hostlog.NewAgentLogger(os.Stderr, cfg.LogFilePath(), cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	caps := capability.Probe(ctx, cfg.ClassifyURL, logger)
	printBanner(cmd, cfg, caps)

	ag, journal, err := buildAgent(cfg, caps, logger)
	if err != nil {
		return err
	}
	if journal != nil {
		defer func() { _ = journal.Close() }()
	}

	logger.Info("agent starting",
		"interval", cfg.ScanInterval,
		"classification", caps.Classification,
		"anonymity", caps.Anonymity,
		"presentation", caps.Presentation,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ag.Run(ctx)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		ag.Stop()
		return nil
	})

	return g.Wait()
}

// buildAgent wires the agent from configuration and probed capabilities.
// The journal is returned separately so the caller controls its lifetime;
// it is nil when opening the history database failed.
func buildAgent(cfg *config.Config, caps model.CapabilitySet, logger *slog.Logger) (*agent.Agent, *history.Journal, error) {
	opts := agent.Options{
		Capabilities:      caps,
		Scanner:           scanner.New(scanner.NewHostLister(), cfg.CPUThreshold, logger),
		Interval:          cfg.ScanInterval,
		RelayStartTimeout: cfg.TorStartupTimeout,
		Logger:            logger,
	}

	if caps.Anonymity {
		opts.Relay = relay.NewSupervisor(relay.LaunchConfig{
			SocksAddr:      cfg.SocksAddr,
			ControlAddr:    cfg.ControlAddr,
			DataDir:        cfg.RelayDataDir(),
			StartupTimeout: cfg.TorStartupTimeout,
		}, logger)
	}

	var backend classify.Backend
	if caps.Classification && cfg.ClassifyURL != "" {
		var backendOpts []classify.BackendOption
		// Remote inference endpoints ride the relay; a loopback endpoint
		// is unreachable through Tor and goes direct.
		if caps.Anonymity && !isLoopbackURL(cfg.ClassifyURL) {
			session := &relay.Session{SocksAddr: cfg.SocksAddr}
			if client, err := session.HTTPClient(cfg.ClassifyTimeout); err == nil {
				backendOpts = append(backendOpts, classify.WithHTTPClient(client))
			} else {
				logger.Warn("classification traffic not routed through relay", "error", err)
			}
		}
		backend = classify.NewHTTPBackend(cfg.ClassifyURL, cfg.ClassifyAPIKey,
			cfg.ClassifyModel, cfg.ClassifyTimeout, backendOpts...)
	}
	opts.Gateway = classify.New(backend, caps.Classification, config.DefaultClassifyMaxInput, logger)

	// History is best effort: a broken journal must not keep the
	// agent from protecting the host.
	journal, err := history.Open(cfg.HistoryDir())
	if err != nil {
		logger.Warn("scan history disabled", "error", err)
		journal = nil
	} else {
		opts.Journal = journal
	}

	return agent.New(opts), journal, nil
}

// isLoopbackURL reports whether the URL's host resolves trivially to a
// loopback address. Unparseable URLs count as loopback so they never get
// routed through the relay.
func isLoopbackURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// printBanner prints the startup banner. Headless mode, requested with
// --cli or forced by a host without a display, gets a single line.
func printBanner(cmd *cobra.Command, cfg *config.Config, caps model.CapabilitySet) {
	if cfg.Headless || !caps.Presentation {
		fmt.Fprintf(cmd.OutOrStdout(), "hostguard %s starting (headless)\n", getVersion())
		return
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "hostguard %s\n", getVersion())
	fmt.Fprintf(out, "  scan interval:  %s\n", cfg.ScanInterval)
	fmt.Fprintf(out, "  classification: %s\n", availableText(caps.Classification))
	fmt.Fprintf(out, "  anonymity:      %s\n", availableText(caps.Anonymity))
	fmt.Fprintf(out, "  presentation:   %s\n", availableText(caps.Presentation))
	fmt.Fprintln(out, "Press Ctrl+C to stop.")
}

// availableText renders a capability flag for the banner.
func availableText(available bool) string {
	if available {
		return "available"
	}
	return "unavailable"
}
