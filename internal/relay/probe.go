package relay

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

// probeTimeout bounds the liveness handshake. This is a loopback
// connectivity check, not a request through the relay, so it is short.
const probeTimeout = 2 * time.Second

// SOCKS5 protocol constants for the liveness handshake.
const (
	socks5Version  = 0x05
	socks5AuthNone = 0x00
)

// checkSocks verifies that something speaking SOCKS5 answers at addr.
// It performs the version negotiation step only: the relay advertising
// no-auth SOCKS5 is confirmation enough that the process is alive and
// serving, without building a circuit.
//
// A fake listener could mimic this handshake, but the probe guards against
// a dead process, not an adversary on loopback.
func checkSocks(ctx context.Context, addr string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetDeadline(time.Now().Add(probeTimeout)); err != nil {
		return false
	}

	// Offer exactly one auth method: none.
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return false
	}

	// Expect version + selected method back.
	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		return false
	}
	return resp[0] == socks5Version && resp[1] == socks5AuthNone
}

// HTTPClient returns an HTTP client that routes requests through the
// session's SOCKS port, so outbound agent traffic (e.g. classification
// calls to a remote backend) rides the anonymizing relay.
//
// Connection pool limits are tighter than net/http defaults because each
// connection consumes a relay circuit.
func (s *Session) HTTPClient(timeout time.Duration) (*http.Client, error) {
	dialer, err := proxy.SOCKS5("tcp", s.SocksAddr, nil, proxy.Direct)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		DialContext: func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		},
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
		// Compressed responses leak size side channels; the relay's
		// whole point is not leaking.
		DisableCompression: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
