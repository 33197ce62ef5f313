package agent

import "errors"

// ErrAnonymityUnavailable is returned by RenewIdentity when no relay
// supervisor was wired in at all (the anonymity capability was absent at
// startup). The relay's own ErrNotRunning covers the present-but-stopped
// case.
var ErrAnonymityUnavailable = errors.New("anonymity subsystem not available")
