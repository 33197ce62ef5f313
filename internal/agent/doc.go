// Package agent implements the hostguard supervisor core.
//
// The agent owns the singleton AgentStatus record, runs the fixed-interval
// scan loop on a background goroutine, and exposes the command surface the
// presentation layer calls (scan-now, classify-now, renew-identity, status,
// stop). All status mutations are simple flag flips and session swaps, so
// one mutex over the status record is the entire locking story — there are
// no multi-step transactions to protect.
//
// Failure policy: the loop never dies with a subsystem. A failed relay
// start leaves the agent scanning in unprotected mode, a failed scan is an
// empty cycle, a journal write error is a log line. The only fatal startup
// condition in the whole program is the instance guard, which lives with
// the caller in cmd.
package agent
