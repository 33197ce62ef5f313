// Package guard enforces single-instance execution of the hostguard agent.
//
// The claim mechanism is an exclusive TCP listener on a fixed loopback port.
// Binding succeeds for at most one process per host, and the operating system
// releases the port on any exit path, including crashes, which gives the
// guaranteed-release behavior a lock file cannot.
package guard

import (
	"errors"
	"fmt"
	"net"
)

// DefaultAddr is the well-known loopback endpoint claimed by the guard.
// The port matches the value the agent has always used, so old and new
// builds exclude each other.
const DefaultAddr = "127.0.0.1:65432"

// ErrAlreadyRunning is returned when another agent instance holds the
// guard endpoint. This is the only fatal startup error in the agent:
// callers must exit with a non-zero status without starting any subsystem.
var ErrAlreadyRunning = errors.New("another hostguard instance is already running")

// Guard holds the exclusive claim for the process lifetime.
type Guard struct {
	ln net.Listener
}

// Acquire claims the guard endpoint.
// It returns ErrAlreadyRunning (wrapped) when the endpoint is already held.
// Other bind failures (exotic network configuration, policy denials) are
// returned as-is so they surface in the startup error message.
func Acquire() (*Guard, error) {
	return AcquireAddr(DefaultAddr)
}

// AcquireAddr claims a specific endpoint. Split out from Acquire so tests
// can run against ephemeral ports without colliding with a real agent.
func AcquireAddr(addr string) (*Guard, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return nil, fmt.Errorf("%w: %s in use", ErrAlreadyRunning, addr)
		}
		return nil, fmt.Errorf("failed to claim instance guard %s: %w", addr, err)
	}
	return &Guard{ln: ln}, nil
}

// Addr returns the claimed endpoint.
func (g *Guard) Addr() string {
	return g.ln.Addr().String()
}

// Release gives up the claim. Safe to call more than once; the OS also
// releases the endpoint automatically when the process exits.
func (g *Guard) Release() error {
	if g.ln == nil {
		return nil
	}
	err := g.ln.Close()
	g.ln = nil
	return err
}
