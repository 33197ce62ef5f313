// Package scanner implements the periodic threat scanner.
//
// A scan is a single pass over the host process table: every process whose
// CPU utilization exceeds a fixed threshold becomes one finding. The rule is
// deliberately simple — no historical baseline, no scoring — so the hard
// correctness budget stays with lifecycle and scheduling.
//
// Failure policy follows the degraded-mode contract: a process that vanishes
// or denies access between enumeration and inspection is skipped silently,
// and a wholesale enumeration failure is logged and yields an empty finding
// slice. A scan never returns an error to the loop and never panics.
package scanner
