// Package capability probes for the presence of hostguard's optional
// subsystems at startup.
//
// The original design resolved availability through import-time globals;
// here the same decisions are an explicit probe producing a CapabilitySet
// value that is threaded through constructors. Absence of a capability is a
// normal, expected result — the probe never fails, and re-probing is
// idempotent with no side effects beyond the checks themselves.
package capability

import (
	"context"
	"log/slog"
	"net"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/nao1215/hostguard/internal/model"
)

// dialTimeout bounds the classification reachability check. This is a
// presence probe, not a request, so it is short.
const dialTimeout = 2 * time.Second

// Probe checks each optional subsystem and records its availability.
//
//   - Classification: a backend endpoint is configured and its host accepts
//     a TCP connection.
//   - Anonymity: the tor binary the relay launcher execs is on PATH.
//   - Presentation: a graphical session is available to attach to.
func Probe(ctx context.Context, classifyURL string, logger *slog.Logger) model.CapabilitySet {
	if logger == nil {
		logger = slog.Default()
	}

	set := model.CapabilitySet{
		Classification: classificationAvailable(ctx, classifyURL),
		Anonymity:      anonymityAvailable(),
		Presentation:   presentationAvailable(),
	}

	logger.Info("capability probe complete",
		"classification", set.Classification,
		"anonymity", set.Anonymity,
		"presentation", set.Presentation,
	)
	return set
}

// classificationAvailable reports whether the classification backend can be
// reached. An empty URL means the operator configured no backend, which is
// the common case and simply disables the capability.
func classificationAvailable(ctx context.Context, rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	host := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "https":
			host = net.JoinHostPort(u.Hostname(), "443")
		default:
			host = net.JoinHostPort(u.Hostname(), "80")
		}
	}

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", host)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// anonymityAvailable reports whether the relay can be launched on this
// host, which comes down to the tor binary being installed.
func anonymityAvailable() bool {
	name := "tor"
	if runtime.GOOS == "windows" {
		name = "tor.exe"
	}
	_, err := exec.LookPath(name)
	return err == nil
}

// presentationAvailable reports whether a graphical session exists for a
// presentation layer (tray icon, dialogs) to attach to. Windows and macOS
// sessions always have one; elsewhere an X11 or Wayland display must be
// advertised in the environment.
func presentationAvailable() bool {
	switch runtime.GOOS {
	case "windows", "darwin":
		return true
	default:
		return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
	}
}
