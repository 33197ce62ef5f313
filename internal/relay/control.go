package relay

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// controlIOTimeout bounds each control-port exchange when the caller's
// context carries no deadline. The control port is loopback; anything
// slower than this is a wedged daemon.
const controlIOTimeout = 10 * time.Second

// controlCookieFile is the auth cookie file name stock Tor writes into its
// data directory when cookie authentication is enabled.
const controlCookieFile = "control_auth_cookie"

// SignalNewIdentity requests a new circuit identity from a relay that this
// process did not launch. It speaks to the control port at controlAddr,
// reading the auth cookie from dataDir when one exists.
//
// This is the one-shot path for operators signalling an already-running
// relay; the supervisor uses the same exchange for sessions it owns.
func SignalNewIdentity(ctx context.Context, controlAddr, dataDir string) error {
	return renewIdentity(ctx, controlAddr, dataDir)
}

// renewIdentity speaks the Tor control protocol: authenticate, then request
// a new circuit identity.
//
// Design decision: tornago's surface covers daemon lifecycle, not control
// commands, so the two-line protocol exchange is written against the wire
// directly — the same approach the SOCKS liveness probe takes. Cookie
// authentication is tried when the data directory holds a cookie file;
// otherwise a NULL AUTHENTICATE matches stock defaults.
func renewIdentity(ctx context.Context, controlAddr, dataDir string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", controlAddr)
	if err != nil {
		return fmt.Errorf("cannot connect to control port %s: %w", controlAddr, err)
	}
	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(controlIOTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set control deadline: %w", err)
	}

	r := bufio.NewReader(conn)

	if err := sendCommand(conn, r, authenticateCommand(dataDir)); err != nil {
		return fmt.Errorf("authentication rejected: %w", err)
	}
	if err := sendCommand(conn, r, "SIGNAL NEWNYM"); err != nil {
		return fmt.Errorf("NEWNYM signal rejected: %w", err)
	}

	// Best effort; the work is done.
	_, _ = fmt.Fprintf(conn, "QUIT\r\n")
	return nil
}

// authenticateCommand builds the AUTHENTICATE line. Stock Tor accepts the
// hex-encoded contents of its auth cookie file, or a bare AUTHENTICATE when
// no authentication method is configured.
func authenticateCommand(dataDir string) string {
	if dataDir != "" {
		cookie, err := os.ReadFile(filepath.Join(dataDir, controlCookieFile)) //nolint:gosec // Path derives from the relay data dir
		if err == nil && len(cookie) > 0 {
			return "AUTHENTICATE " + hex.EncodeToString(cookie)
		}
	}
	return "AUTHENTICATE"
}

// sendCommand writes one control command and checks for the 250 success
// reply. Replies are single-line for both commands this client issues.
func sendCommand(conn net.Conn, r *bufio.Reader, command string) error {
	if _, err := fmt.Fprintf(conn, "%s\r\n", command); err != nil {
		return fmt.Errorf("failed to send control command: %w", err)
	}

	reply, err := r.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read control reply: %w", err)
	}
	reply = strings.TrimRight(reply, "\r\n")
	if !strings.HasPrefix(reply, "250") {
		return fmt.Errorf("control port replied %q", reply)
	}
	return nil
}
