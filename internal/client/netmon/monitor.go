// Package netmon implements the connectivity probe consulted before any
// network work. Connectivity is advisory, never authoritative: a probe
// that says online can still be followed by a failing push, so every
// probe error — timeouts included — simply reads as offline.
package netmon

import (
	"context"
	"time"

	"github.com/dvoronkov/petvault/internal/client/remote"
	"github.com/dvoronkov/petvault/internal/logging"
)

const defaultProbeTimeout = 3 * time.Second

// Monitor probes the remote store for reachability.
type Monitor struct {
	remote  remote.Store
	timeout time.Duration
	log     logging.Logger
}

// New builds a Monitor. A nil remote means sync is not configured and the
// monitor permanently reports offline. A non-positive timeout falls back
// to the default.
func New(r remote.Store, timeout time.Duration, log logging.Logger) *Monitor {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &Monitor{remote: r, timeout: timeout, log: log}
}

// Online runs one bounded reachability probe.
func (m *Monitor) Online(ctx context.Context) bool {
	if m.remote == nil {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.remote.Ping(probeCtx); err != nil {
		m.log.Debug(ctx, "connectivity probe failed", "error", err)
		return false
	}
	return true
}
