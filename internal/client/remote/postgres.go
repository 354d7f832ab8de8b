package remote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dvoronkov/petvault/internal/client/models"
	"github.com/dvoronkov/petvault/internal/common"
)

// PostgresStore implements Store against a self-hosted PostgreSQL database
// reached through the pgx stdlib driver. All writes are compare-and-set on
// last_modified, so a slow device can never clobber a newer remote row.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to the remote database and ensures the schema
// exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote db: %w", err)
	}
	s := NewPostgresStoreFromDB(db)
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStoreFromDB wraps an existing handle. The schema must exist.
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			last_modified TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pets (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			name TEXT NOT NULL,
			species TEXT NOT NULL,
			breed TEXT NOT NULL DEFAULT '',
			age INTEGER NOT NULL DEFAULT 0,
			weight DOUBLE PRECISION NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			last_modified TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pets_user_modified ON pets(user_id, last_modified)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return remoteErr("ensure schema", err)
		}
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return remoteErr("ping", err)
	}
	return nil
}

func (s *PostgresStore) UpsertUser(ctx context.Context, u *models.User) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, created_at, last_modified)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			password_hash = excluded.password_hash,
			last_modified = excluded.last_modified
		WHERE users.last_modified < excluded.last_modified`,
		u.ID, u.Username, u.PasswordHash, u.CreatedAt, u.LastModified)
	if err != nil {
		return remoteErr("upsert user", err)
	}
	return s.checkUserConflict(ctx, res, u.ID)
}

func (s *PostgresStore) checkUserConflict(ctx context.Context, res sql.Result, id string) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return remoteErr("rows affected", err)
	}
	if ra > 0 {
		return nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at, last_modified
		FROM users WHERE id = $1`, id)
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.LastModified); err != nil {
		return remoteErr("fetch conflicting user", err)
	}
	return &ConflictError{Table: models.TableUsers, User: u}
}

func (s *PostgresStore) UpsertPet(ctx context.Context, p *models.Pet) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO pets (id, user_id, name, species, breed, age, weight, notes, deleted, created_at, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			name = excluded.name,
			species = excluded.species,
			breed = excluded.breed,
			age = excluded.age,
			weight = excluded.weight,
			notes = excluded.notes,
			deleted = excluded.deleted,
			last_modified = excluded.last_modified
		WHERE pets.last_modified < excluded.last_modified`,
		p.ID, p.UserID, p.Name, p.Species, p.Breed, p.Age, p.Weight, p.Notes,
		p.Deleted, p.CreatedAt, p.LastModified)
	if err != nil {
		return remoteErr("upsert pet", err)
	}
	return s.checkPetConflict(ctx, res, p.ID)
}

// DeletePet is an upsert of the tombstone: the same compare-and-set rule
// applies, so a remote edit made after the local delete survives and comes
// back as a conflict.
func (s *PostgresStore) DeletePet(ctx context.Context, p *models.Pet) error {
	tombstone := *p
	tombstone.Deleted = true
	return s.UpsertPet(ctx, &tombstone)
}

func (s *PostgresStore) checkPetConflict(ctx context.Context, res sql.Result, id string) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return remoteErr("rows affected", err)
	}
	if ra > 0 {
		return nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, species, breed, age, weight, notes, deleted, created_at, last_modified
		FROM pets WHERE id = $1`, id)
	p := &models.Pet{}
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Species, &p.Breed, &p.Age,
		&p.Weight, &p.Notes, &p.Deleted, &p.CreatedAt, &p.LastModified); err != nil {
		return remoteErr("fetch conflicting pet", err)
	}
	return &ConflictError{Table: models.TablePets, Pet: p}
}

func (s *PostgresStore) FetchUsersModifiedSince(ctx context.Context, userID string, since time.Time) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, password_hash, created_at, last_modified
		FROM users WHERE id = $1 AND last_modified > $2`, userID, since)
	if err != nil {
		return nil, remoteErr("fetch users", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.LastModified); err != nil {
			return nil, remoteErr("scan user", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("iterate users", err)
	}
	return result, nil
}

func (s *PostgresStore) FetchPetsModifiedSince(ctx context.Context, userID string, since time.Time) ([]models.Pet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, species, breed, age, weight, notes, deleted, created_at, last_modified
		FROM pets WHERE user_id = $1 AND last_modified > $2
		ORDER BY last_modified`, userID, since)
	if err != nil {
		return nil, remoteErr("fetch pets", err)
	}
	defer rows.Close()

	var result []models.Pet
	for rows.Next() {
		var p models.Pet
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Species, &p.Breed, &p.Age,
			&p.Weight, &p.Notes, &p.Deleted, &p.CreatedAt, &p.LastModified); err != nil {
			return nil, remoteErr("scan pet", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("iterate pets", err)
	}
	return result, nil
}

// remoteErr wraps a driver error as a transient remote failure. Conflict
// errors never go through here.
func remoteErr(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%s: %w: %v", op, common.ErrRemoteUnavailable, err)
}
