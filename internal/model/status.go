package model

// CapabilitySet records which optional subsystems were detected at startup.
// The original design resolved availability with module-global flags decided
// at import time; hostguard makes the same decision an explicit value produced
// once by the capability probe and threaded through constructors.
//
// A false flag is a normal, expected state rather than an error. Re-probing
// yields a fresh value and has no side effects beyond the check itself.
type CapabilitySet struct {
	// Classification is true when a text-classification backend is
	// configured and reachable.
	Classification bool `json:"classification"`

	// Anonymity is true when the Tor relay can be launched on this host.
	Anonymity bool `json:"anonymity"`

	// Presentation is true when a graphical or interactive session is
	// available for the presentation layer to attach to.
	Presentation bool `json:"presentation"`
}

// AgentStatus is a point-in-time snapshot of the supervisor state.
// It is owned by the agent, mutated only under the agent's lock, and handed
// to callers by value so readers never observe a partial update.
type AgentStatus struct {
	// Running is true from the moment the scan loop enters its cycle
	// until a stop request has been observed.
	Running bool `json:"running"`

	// AnonymityActive is true if and only if a relay session is currently
	// held and its process answered the most recent liveness probe.
	AnonymityActive bool `json:"anonymity_active"`

	// Capabilities are the availability flags recorded at startup.
	Capabilities CapabilitySet `json:"capabilities"`
}
