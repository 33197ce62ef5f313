// Package history persists the scan-cycle journal.
//
// Each scan cycle appends one row: timestamp, finding count, and the
// findings themselves as JSON. The journal is strictly best-effort from the
// scan loop's point of view — a write failure is logged by the caller and
// the loop continues — and exists so operators can review what the agent
// saw after the fact (the report command reads it back).
//
// Design decision: SQLite via modernc.org/sqlite keeps the store pure Go
// (no cgo) and queryable with ordinary tools, and one file under the data
// directory is trivial to back up or delete.
package history
