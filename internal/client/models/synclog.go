package models

import "time"

// Operation classifies a tracked mutation.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Table names of synchronizable entities.
const (
	TableUsers = "users"
	TablePets  = "pets"
)

// SyncLogEntry records one mutation to a synchronizable entity. The payload
// is a JSON snapshot of the entity taken right after the mutation, so the
// entry always reflects the exact post-mutation state.
type SyncLogEntry struct {
	ID        string
	Table     string
	EntityID  string
	Op        Operation
	Payload   []byte
	Synced    bool
	CreatedAt time.Time
}

// PendingChange is a coalesced view over the unsynced log entries of one
// entity: the latest snapshot plus the IDs of every entry it supersedes,
// so marking it synced settles the whole backlog for the entity.
type PendingChange struct {
	Table    string
	EntityID string
	Op       Operation
	Payload  []byte
	EntryIDs []string
}
