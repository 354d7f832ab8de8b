package pets

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
CREATE TABLE pets (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  species TEXT NOT NULL,
  breed TEXT NOT NULL DEFAULT '',
  age INTEGER NOT NULL DEFAULT 0,
  weight REAL NOT NULL DEFAULT 0,
  notes TEXT NOT NULL DEFAULT '',
  deleted INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  last_modified TEXT NOT NULL,
  revision INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)

	return db
}

func samplePet(id, userID, name string) *models.Pet {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Pet{
		ID:           id,
		UserID:       userID,
		Name:         name,
		Species:      "Dog",
		Breed:        "Beagle",
		Age:          3,
		Weight:       11.5,
		Notes:        "good boy",
		CreatedAt:    now,
		LastModified: now,
		Revision:     1,
	}
}

func TestCreate_AndGetByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	p := samplePet("p1", "u1", "Rex")
	require.NoError(t, r.Create(ctx, p))

	got, err := r.GetByID(ctx, "p1", false)
	require.NoError(t, err)
	assert.Equal(t, "Rex", got.Name)
	assert.Equal(t, "Dog", got.Species)
	assert.Equal(t, "Beagle", got.Breed)
	assert.Equal(t, 3, got.Age)
	assert.InDelta(t, 11.5, got.Weight, 1e-9)
	assert.Equal(t, "good boy", got.Notes)
	assert.False(t, got.Deleted)
	assert.True(t, p.LastModified.Equal(got.LastModified))
}

func TestGetByID_ExcludesTombstonesByDefault(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	p := samplePet("p1", "u1", "Rex")
	p.Deleted = true
	require.NoError(t, r.Create(ctx, p))

	_, err := r.GetByID(ctx, "p1", false)
	assert.ErrorIs(t, err, common.ErrNotFound)

	got, err := r.GetByID(ctx, "p1", true)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
}

func TestListByUser_OrderedByName(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, samplePet("p1", "u1", "Zorro")))
	require.NoError(t, r.Create(ctx, samplePet("p2", "u1", "Archie")))
	require.NoError(t, r.Create(ctx, samplePet("p3", "u2", "Milo")))

	deleted := samplePet("p4", "u1", "Ghost")
	deleted.Deleted = true
	require.NoError(t, r.Create(ctx, deleted))

	got, err := r.ListByUser(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Archie", got[0].Name)
	assert.Equal(t, "Zorro", got[1].Name)

	all, err := r.ListByUser(ctx, "u1", true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdate_RewritesFields(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	p := samplePet("p1", "u1", "Rex")
	require.NoError(t, r.Create(ctx, p))

	p.Name = "Rexford"
	p.Age = 4
	p.Deleted = true
	p.LastModified = p.LastModified.Add(time.Minute)
	p.Revision = 2
	require.NoError(t, r.Update(ctx, p))

	got, err := r.GetByID(ctx, "p1", true)
	require.NoError(t, err)
	assert.Equal(t, "Rexford", got.Name)
	assert.Equal(t, 4, got.Age)
	assert.True(t, got.Deleted)
	assert.Equal(t, int64(2), got.Revision)
}

func TestUpdate_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	err := r.Update(context.Background(), samplePet("missing", "u1", "Rex"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpsert_InsertsAndOverwrites(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	p := samplePet("p1", "u1", "Rex")
	require.NoError(t, r.Upsert(ctx, p))

	p.Notes = "prefers the couch"
	p.Revision = 5
	require.NoError(t, r.Upsert(ctx, p))

	got, err := r.GetByID(ctx, "p1", false)
	require.NoError(t, err)
	assert.Equal(t, "prefers the couch", got.Notes)
	assert.Equal(t, int64(5), got.Revision)
}
