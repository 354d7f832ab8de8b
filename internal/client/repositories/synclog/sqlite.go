package synclog

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvoronkov/petvault/internal/client/models"
	"github.com/dvoronkov/petvault/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, e *models.SyncLogEntry) error {
	query := `INSERT INTO sync_log (id, table_name, entity_id, operation, payload, synced, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Table, e.EntityID, string(e.Op), e.Payload, models.FormatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to append sync log entry: %w", err)
	}
	return nil
}

// Pending scans unsynced entries oldest-first and folds them per entity.
// The coalesced change carries the newest payload; the operation is the
// newest one, except that an entity whose first unsynced entry is a create
// still reports create (the remote has never seen it) unless it ended in a
// delete.
func (r *SQLiteRepository) Pending(ctx context.Context) ([]models.PendingChange, error) {
	// The log is append-only with a single local writer, so insertion
	// order is chronological. created_at is variable-width RFC3339 text
	// and would not sort reliably.
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, table_name, entity_id, operation, payload
		FROM sync_log WHERE synced = 0
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending entries: %w", err)
	}
	defer rows.Close()

	type key struct{ table, entityID string }
	var order []key
	grouped := make(map[key]*models.PendingChange)
	sawCreate := make(map[key]bool)

	for rows.Next() {
		var id, table, entityID, op string
		var payload []byte
		if err := rows.Scan(&id, &table, &entityID, &op, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan sync log entry: %w", err)
		}

		k := key{table, entityID}
		change, ok := grouped[k]
		if !ok {
			change = &models.PendingChange{Table: table, EntityID: entityID}
			grouped[k] = change
			order = append(order, k)
		}

		change.Op = models.Operation(op)
		change.Payload = payload
		change.EntryIDs = append(change.EntryIDs, id)
		if models.Operation(op) == models.OpCreate {
			sawCreate[k] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]models.PendingChange, 0, len(order))
	for _, k := range order {
		change := grouped[k]
		if sawCreate[k] && change.Op == models.OpUpdate {
			change.Op = models.OpCreate
		}
		result = append(result, *change)
	}
	return result, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE sync_log SET synced = 1 WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to mark entries synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkEntitySynced(ctx context.Context, table, entityID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sync_log SET synced = 1 WHERE synced = 0 AND table_name = ? AND entity_id = ?`,
		table, entityID)
	if err != nil {
		return fmt.Errorf("failed to mark entity synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT DISTINCT table_name, entity_id FROM sync_log WHERE synced = 0
		)`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending entries: %w", err)
	}
	return n, nil
}
