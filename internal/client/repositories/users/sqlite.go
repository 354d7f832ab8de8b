package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dvoronkov/petvault/internal/client/models"
	"github.com/dvoronkov/petvault/internal/common"
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

func (r *SQLiteRepository) Create(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (id, username, password_hash, created_at, last_modified, revision)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Username, u.PasswordHash,
		models.FormatTime(u.CreatedAt), models.FormatTime(u.LastModified), u.Revision)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("username %q: %w", u.Username, common.ErrConstraint)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at, last_modified, revision
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at, last_modified, revision
		FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *SQLiteRepository) Upsert(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (id, username, password_hash, created_at, last_modified, revision)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			password_hash = excluded.password_hash,
			last_modified = excluded.last_modified,
			revision = excluded.revision`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Username, u.PasswordHash,
		models.FormatTime(u.CreatedAt), models.FormatTime(u.LastModified), u.Revision)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var createdAt, lastModified string
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt, &lastModified, &u.Revision)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if u.CreatedAt, err = models.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	if u.LastModified, err = models.ParseTime(lastModified); err != nil {
		return nil, fmt.Errorf("bad last_modified: %w", err)
	}
	return u, nil
}
