// Package model defines the core data structures shared across hostguard.
//
// This package contains the following main types:
//   - AgentStatus: Snapshot of supervisor and subsystem state
//   - CapabilitySet: Availability flags for optional subsystems
//   - Finding: A single anomaly reported by a scan cycle
//   - ProcessInfo: A transient per-process record from host enumeration
//   - Classification: Tagged result of a text-classification request
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (agent, scanner, history, report) need these
// types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
