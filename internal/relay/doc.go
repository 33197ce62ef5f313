// Package relay owns the lifecycle of the anonymizing Tor relay.
//
// The supervisor launches the relay through tornago, tracks a small state
// machine (Stopped -> Starting -> Running -> Stopped), issues identity
// renewal over the control port, and probes liveness with a SOCKS5
// handshake. A launch or renewal failure is a degraded mode: it is logged
// and returned, and the host agent keeps running unprotected.
//
// Design decision: The relay process is reached only through the Launcher
// interface so tests can supervise a fake process. The production launcher
// wraps tornago's daemon management, which handles the tor binary, the
// bootstrap wait, and port assignment.
package relay
