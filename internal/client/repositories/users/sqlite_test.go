package users

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dvoronkov/petvault/internal/client/models"
	"github.com/dvoronkov/petvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at TEXT NOT NULL,
  last_modified TEXT NOT NULL,
  revision INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)

	return db
}

func sampleUser(id, name string) *models.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.User{
		ID:           id,
		Username:     name,
		PasswordHash: "$2a$10$hash",
		CreatedAt:    now,
		LastModified: now,
		Revision:     1,
	}
}

func TestCreate_AndGetByUsername(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	u := sampleUser("u1", "alice")
	require.NoError(t, r.Create(ctx, u))

	got, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Username, got.Username)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, u.LastModified.Equal(got.LastModified))
	assert.Equal(t, int64(1), got.Revision)
}

func TestCreate_DuplicateUsername(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, sampleUser("u1", "alice")))

	err := r.Create(ctx, sampleUser("u2", "alice"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConstraint)
}

func TestGetByUsername_CaseSensitive(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, sampleUser("u1", "alice")))

	_, err := r.GetByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpsert_InsertsAndOverwrites(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	u := sampleUser("u1", "alice")
	require.NoError(t, r.Upsert(ctx, u))

	u.PasswordHash = "$2a$10$newhash"
	u.LastModified = u.LastModified.Add(time.Minute)
	u.Revision = 2
	require.NoError(t, r.Upsert(ctx, u))

	got, err := r.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$newhash", got.PasswordHash)
	assert.Equal(t, int64(2), got.Revision)
	assert.True(t, u.LastModified.Equal(got.LastModified))
}
