package relay

import (
	"fmt"
	"time"

	"github.com/nao1215/tornago"
)

// LaunchConfig describes how the relay process should be started.
type LaunchConfig struct {
	// SocksAddr is the listen address for the SOCKS port.
	SocksAddr string

	// ControlAddr is the listen address for the control port.
	ControlAddr string

	// DataDir is the directory the relay uses for its own state
	// (descriptors, keys, the control auth cookie).
	DataDir string

	// StartupTimeout is the maximum time to wait for bootstrap.
	StartupTimeout time.Duration
}

// Process is a running relay as seen by the supervisor.
// tornago's TorProcess satisfies this; tests substitute fakes.
type Process interface {
	// Stop terminates the relay process.
	Stop() error

	// SocksAddr returns the bound SOCKS address in "host:port" form.
	SocksAddr() string

	// ControlAddr returns the bound control address in "host:port" form.
	ControlAddr() string
}

// Launcher starts relay processes.
type Launcher interface {
	// Launch starts a relay with the given configuration and blocks
	// until it is bootstrapped or the startup timeout expires.
	Launch(cfg LaunchConfig) (Process, error)
}

// TornagoLauncher launches the relay through tornago's daemon management.
//
// Note: tornago blocks in Launch until the daemon has bootstrapped, which
// means downloading directory information and building initial circuits.
// On a cold data directory this routinely takes minutes.
type TornagoLauncher struct{}

// NewTornagoLauncher creates the production launcher.
func NewTornagoLauncher() *TornagoLauncher {
	return &TornagoLauncher{}
}

// Launch implements Launcher using tornago.
// tornago manages the daemon's working files itself; cfg.DataDir is kept on
// the session record for the control-cookie lookup and operator visibility.
func (l *TornagoLauncher) Launch(cfg LaunchConfig) (Process, error) {
	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(cfg.SocksAddr),
		tornago.WithTorControlAddr(cfg.ControlAddr),
		tornago.WithTorStartupTimeout(cfg.StartupTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create relay launch config: %w", err)
	}

	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start relay daemon: %w", err)
	}
	return process, nil
}
