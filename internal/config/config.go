package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Ports and cadence follow the original agent's behavior where applicable;
// the rest are chosen to match stock Tor defaults.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "hostguard"

	// DefaultScanInterval is the pause between threat-scan cycles.
	// One minute keeps the agent responsive to runaway processes without
	// itself becoming a measurable CPU consumer.
	DefaultScanInterval = 60 * time.Second

	// DefaultCPUThreshold is the CPU utilization (percent) above which a
	// process is flagged. The rule is intentionally a single fixed
	// threshold with no historical baseline; the engineering budget goes
	// to lifecycle correctness, not anomaly-detection sophistication.
	DefaultCPUThreshold = 90.0

	// DefaultSocksAddr is the relay's SOCKS listen address.
	// Port 9050 is the default for the Tor daemon's SOCKS port.
	// We use 127.0.0.1 instead of localhost to avoid DNS resolution
	// overhead and potential IPv6 resolution issues on some systems.
	DefaultSocksAddr = "127.0.0.1:9050"

	// DefaultControlAddr is the relay's control listen address.
	// Port 9051 is the conventional Tor control port.
	DefaultControlAddr = "127.0.0.1:9051"

	// DefaultTorStartupTimeout is the maximum time to wait for the relay
	// to bootstrap. Building initial circuits through the Tor network
	// routinely takes minutes on slow links, so this is generous. A relay
	// that misses the deadline leaves the agent running unprotected
	// rather than aborting it.
	DefaultTorStartupTimeout = 5 * time.Minute

	// DefaultClassifyTimeout bounds a single classification request.
	DefaultClassifyTimeout = 60 * time.Second

	// DefaultClassifyModel is the model name sent to the classification
	// backend when none is configured.
	DefaultClassifyModel = "distilbert-base-uncased"

	// DefaultClassifyMaxInput caps the classification payload in bytes.
	// Inputs beyond this are truncated before transmission; text
	// classifiers saturate long before this size anyway.
	DefaultClassifyMaxInput = 8 * 1024

	// GuardPort is the fixed loopback port used for single-instance
	// detection. Every agent binds it exclusively at startup, so a
	// second instance fails fast instead of double-scanning the host.
	GuardPort = 65432
)

// Config holds all configuration options for the hostguard supervisor.
// This struct is designed to be populated from CLI flags and the optional
// .hostguard file, then passed through the application via dependency
// injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., RelayConfig, ScanConfig) for simplicity. The number of options is
// manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// ScanInterval is the pause between threat-scan cycles.
	ScanInterval time.Duration `yaml:"scan_interval"`

	// CPUThreshold is the CPU utilization (percent) above which a
	// process is flagged by the scanner.
	CPUThreshold float64 `yaml:"cpu_threshold"`

	// SocksAddr is the listen address the relay's SOCKS port is bound to.
	SocksAddr string `yaml:"socks_addr"`

	// ControlAddr is the listen address of the relay control port.
	// Identity renewal connects here to issue NEWNYM.
	ControlAddr string `yaml:"control_addr"`

	// TorStartupTimeout is the maximum time to wait for the relay to
	// bootstrap before the agent degrades to unprotected mode.
	TorStartupTimeout time.Duration `yaml:"tor_startup_timeout"`

	// DataDir is the directory holding the relay data directory, the
	// scan-history journal, and the agent log file. Defaults to the XDG
	// data directory for hostguard.
	DataDir string `yaml:"data_dir"`

	// ClassifyURL is the OpenAI-compatible chat-completions endpoint of
	// the classification backend. Empty means the classification
	// capability is absent, which is a normal degraded mode.
	ClassifyURL string `yaml:"classify_url"`

	// ClassifyAPIKey authenticates against the classification backend.
	// Optional; local backends typically need none.
	ClassifyAPIKey string `yaml:"classify_api_key"`

	// ClassifyModel is the model name sent with classification requests.
	ClassifyModel string `yaml:"classify_model"`

	// ClassifyTimeout bounds a single classification request.
	ClassifyTimeout time.Duration `yaml:"classify_timeout"`

	// Headless disables any presentation-layer attachment and keeps the
	// agent on the plain command-line surface. Set by the --cli flag;
	// also forced when no interactive session is detected.
	Headless bool `yaml:"-"`

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, info and above are logged.
	Verbose bool `yaml:"-"`

	// ConfigFilePath is the explicit path to the configuration file.
	// If empty, the agent searches for .hostguard in the current
	// directory and then in the user's home directory.
	ConfigFilePath string `yaml:"-"`
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most hosts.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (port numbers, cadence).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		ScanInterval:      DefaultScanInterval,
		CPUThreshold:      DefaultCPUThreshold,
		SocksAddr:         DefaultSocksAddr,
		ControlAddr:       DefaultControlAddr,
		TorStartupTimeout: DefaultTorStartupTimeout,
		DataDir:           XDGDataDir(),
		ClassifyModel:     DefaultClassifyModel,
		ClassifyTimeout:   DefaultClassifyTimeout,
	}
}

// Validate checks if the configuration is valid.
// It returns the first sentinel error encountered so callers can match
// with errors.Is.
func (c *Config) Validate() error {
	if c.ScanInterval <= 0 {
		return ErrInvalidScanInterval
	}
	if c.CPUThreshold <= 0 || c.CPUThreshold > 100 {
		return ErrInvalidCPUThreshold
	}
	if c.TorStartupTimeout <= 0 {
		return ErrInvalidStartupTimeout
	}
	if c.ClassifyTimeout <= 0 {
		return ErrInvalidClassifyTimeout
	}
	return nil
}

// RelayDataDir returns the directory handed to the relay process for its
// own state (cached descriptors, onion keys). Kept under the agent data
// directory so one tree holds everything the agent writes.
func (c *Config) RelayDataDir() string {
	return filepath.Join(c.DataDir, "tor")
}

// HistoryDir returns the directory holding the scan-history journal.
func (c *Config) HistoryDir() string {
	return c.DataDir
}

// LogFilePath returns the agent log file location.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.DataDir, "agent.log")
}

// XDGDataDir returns the XDG data directory for hostguard.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/hostguard
// On macOS: ~/Library/Application Support/hostguard
// On Windows: %LOCALAPPDATA%\hostguard
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for hostguard.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
