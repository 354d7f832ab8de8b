// Package store implements the local persistence layer: the authoritative
// working copy of all entities plus the change log that feeds the sync
// engine. Every mutation and its log entry commit in one transaction, so
// the log always reflects exactly what the tables hold.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/dvoronkov/petvault/internal/client/migrations"
	"github.com/dvoronkov/petvault/internal/client/models"
	"github.com/dvoronkov/petvault/internal/client/repositories/metadata"
	"github.com/dvoronkov/petvault/internal/client/repositories/pets"
	"github.com/dvoronkov/petvault/internal/client/repositories/synclog"
	"github.com/dvoronkov/petvault/internal/client/repositories/users"
	"github.com/dvoronkov/petvault/internal/dbx"
)

// Store is the single writer for users, pets and the sync log. Both the
// foreground (CLI commands) and the background sync engine go through it;
// SQLite serializes conflicting writes, and every operation opens its own
// short transaction so sync never stalls foreground mutations.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the local SQLite database at dsn and runs the
// embedded migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local db: %w", err)
	}
	// A single connection keeps the foreign_keys pragma in effect everywhere
	// and sidesteps SQLITE_BUSY between foreground and sync transactions.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return New(db), nil
}

// New wraps an already-open database handle. The schema must exist.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Metadata returns the key/value repository used for client bookkeeping.
func (s *Store) Metadata() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

// ---- users ----

// CreateUser inserts a new user and records the mutation in the sync log.
// Returns common.ErrConstraint when the username is taken.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	now := s.now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		LastModified: now,
		Revision:     1,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := users.NewSQLiteRepository(tx).Create(ctx, u); err != nil {
			return err
		}
		return s.logChange(ctx, tx, models.TableUsers, u.ID, models.OpCreate, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByName returns a user by exact username, or common.ErrNotFound.
func (s *Store) GetUserByName(ctx context.Context, username string) (*models.User, error) {
	return users.NewSQLiteRepository(s.db).GetByUsername(ctx, username)
}

// GetUserByID returns a user by id, or common.ErrNotFound.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return users.NewSQLiteRepository(s.db).GetByID(ctx, id)
}

// ---- pets ----

// CreatePet inserts a new pet owned by userID and records the mutation.
// Returns common.ErrConstraint when the owner does not exist.
func (s *Store) CreatePet(ctx context.Context, p *models.Pet) (*models.Pet, error) {
	now := s.now().UTC()
	created := *p
	created.ID = uuid.NewString()
	created.Deleted = false
	created.CreatedAt = now
	created.LastModified = now
	created.Revision = 1

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := pets.NewSQLiteRepository(tx).Create(ctx, &created); err != nil {
			return err
		}
		return s.logChange(ctx, tx, models.TablePets, created.ID, models.OpCreate, &created)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetPet returns a live pet by id, or common.ErrNotFound. Set
// includeDeleted to also resolve tombstones (the sync engine needs that).
func (s *Store) GetPet(ctx context.Context, id string, includeDeleted bool) (*models.Pet, error) {
	return pets.NewSQLiteRepository(s.db).GetByID(ctx, id, includeDeleted)
}

// ListPets returns the user's pets ordered by name, excluding tombstones
// unless includeDeleted is set.
func (s *Store) ListPets(ctx context.Context, userID string, includeDeleted bool) ([]models.Pet, error) {
	return pets.NewSQLiteRepository(s.db).ListByUser(ctx, userID, includeDeleted)
}

// UpdatePet applies the mutable fields of p to the stored row, bumps the
// revision and last-modified timestamp, and records the mutation. Returns
// common.ErrNotFound when the pet does not exist or is deleted.
func (s *Store) UpdatePet(ctx context.Context, p *models.Pet) (*models.Pet, error) {
	var updated *models.Pet
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := pets.NewSQLiteRepository(tx)
		current, err := repo.GetByID(ctx, p.ID, false)
		if err != nil {
			return err
		}

		current.Name = p.Name
		current.Species = p.Species
		current.Breed = p.Breed
		current.Age = p.Age
		current.Weight = p.Weight
		current.Notes = p.Notes
		current.LastModified = s.now().UTC()
		current.Revision++

		if err := repo.Update(ctx, current); err != nil {
			return err
		}
		updated = current
		return s.logChange(ctx, tx, models.TablePets, current.ID, models.OpUpdate, current)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SoftDeletePet marks a pet deleted, bumping revision and timestamp like
// any other mutation so the delete propagates through sync. Deleting an
// already-deleted pet is a no-op. Returns common.ErrNotFound for an
// unknown id.
func (s *Store) SoftDeletePet(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := pets.NewSQLiteRepository(tx)
		current, err := repo.GetByID(ctx, id, true)
		if err != nil {
			return err
		}
		if current.Deleted {
			return nil
		}

		current.Deleted = true
		current.LastModified = s.now().UTC()
		current.Revision++

		if err := repo.Update(ctx, current); err != nil {
			return err
		}
		return s.logChange(ctx, tx, models.TablePets, current.ID, models.OpDelete, current)
	})
}

// ---- sync support ----

// PendingChanges returns the coalesced unsynced backlog.
func (s *Store) PendingChanges(ctx context.Context) ([]models.PendingChange, error) {
	return synclog.NewSQLiteRepository(s.db).Pending(ctx)
}

// MarkChangesSynced flips the synced flag for the given log entry ids.
func (s *Store) MarkChangesSynced(ctx context.Context, ids []string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return synclog.NewSQLiteRepository(tx).MarkSynced(ctx, ids)
	})
}

// CountPendingChanges returns the number of entities with unsynced changes.
func (s *Store) CountPendingChanges(ctx context.Context) (int, error) {
	return synclog.NewSQLiteRepository(s.db).CountPending(ctx)
}

// ApplyRemotePet materializes a remote-won pet version locally. No sync
// log entry is emitted (the change came from the remote), and any unsynced
// local entries for the pet are settled since the remote version
// superseded them.
func (s *Store) ApplyRemotePet(ctx context.Context, p *models.Pet) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := pets.NewSQLiteRepository(tx)

		applied := *p
		if current, err := repo.GetByID(ctx, p.ID, true); err == nil {
			applied.Revision = current.Revision + 1
		} else {
			applied.Revision = 1
		}

		if err := repo.Upsert(ctx, &applied); err != nil {
			return err
		}
		return synclog.NewSQLiteRepository(tx).MarkEntitySynced(ctx, models.TablePets, p.ID)
	})
}

// ApplyRemoteUser materializes a remote-won user version locally.
func (s *Store) ApplyRemoteUser(ctx context.Context, u *models.User) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := users.NewSQLiteRepository(tx)

		applied := *u
		if current, err := repo.GetByID(ctx, u.ID); err == nil {
			applied.Revision = current.Revision + 1
		} else {
			applied.Revision = 1
		}

		if err := repo.Upsert(ctx, &applied); err != nil {
			return err
		}
		return synclog.NewSQLiteRepository(tx).MarkEntitySynced(ctx, models.TableUsers, u.ID)
	})
}

// HighWaterMark returns the timestamp up to which remote changes have been
// pulled, or the zero time when nothing was pulled yet.
func (s *Store) HighWaterMark(ctx context.Context) (time.Time, error) {
	raw, err := s.Metadata().Get(ctx, metadata.KeyPullHighWaterMark)
	if err != nil {
		return time.Time{}, err
	}
	if raw == nil {
		return time.Time{}, nil
	}
	return models.ParseTime(string(raw))
}

// SetHighWaterMark persists the pull cursor.
func (s *Store) SetHighWaterMark(ctx context.Context, t time.Time) error {
	return s.Metadata().Set(ctx, metadata.KeyPullHighWaterMark, []byte(models.FormatTime(t)))
}

// logChange appends a sync log entry whose payload snapshots the entity
// right after the mutation.
func (s *Store) logChange(ctx context.Context, tx dbx.DBTX, table, entityID string, op models.Operation, entity any) error {
	payload, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to snapshot %s %s: %w", table, entityID, err)
	}
	return synclog.NewSQLiteRepository(tx).Append(ctx, &models.SyncLogEntry{
		ID:        uuid.NewString(),
		Table:     table,
		EntityID:  entityID,
		Op:        op,
		Payload:   payload,
		CreatedAt: s.now().UTC(),
	})
}
