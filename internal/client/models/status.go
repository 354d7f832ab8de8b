package models

import "time"

// SyncStatus is an ephemeral snapshot of the sync engine's state. It is
// never persisted; the UI polls it via the engine.
type SyncStatus struct {
	// Online reflects the most recent connectivity probe.
	Online bool

	// PendingCount is the number of coalesced local changes awaiting push.
	PendingCount int

	// LastSyncAt is the completion time of the last successful cycle;
	// zero if no cycle has completed yet.
	LastSyncAt time.Time
}
