package synclog

import (
	"context"

	"github.com/dvoronkov/petvault/internal/client/models"
)

// Repository is the change tracker's persistence layer. Every local
// mutation appends an entry; the sync engine drains them via Pending and
// MarkSynced.
type Repository interface {
	// Append records a mutation with synced=false.
	Append(ctx context.Context, e *models.SyncLogEntry) error

	// Pending returns the unsynced backlog coalesced to one change per
	// entity, ordered by the creation time of each entity's first
	// unsynced entry. An entity created and then deleted before ever
	// syncing coalesces to a delete, never a create.
	Pending(ctx context.Context) ([]models.PendingChange, error)

	// MarkSynced flips the synced flag for the given entry ids.
	MarkSynced(ctx context.Context, ids []string) error

	// MarkEntitySynced flips every unsynced entry of one entity.
	MarkEntitySynced(ctx context.Context, table, entityID string) error

	// CountPending returns the number of coalesced pending changes.
	CountPending(ctx context.Context) (int, error)
}
