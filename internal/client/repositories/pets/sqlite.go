package pets

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

const petColumns = `id, user_id, name, species, breed, age, weight, notes, deleted, created_at, last_modified, revision`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, p *models.Pet) error {
	query := `INSERT INTO pets (` + petColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Name, p.Species, p.Breed, p.Age, p.Weight, p.Notes,
		boolToInt(p.Deleted), models.FormatTime(p.CreatedAt), models.FormatTime(p.LastModified), p.Revision)
	if err != nil {
		if strings.Contains(err.Error(), "constraint") || strings.Contains(err.Error(), "FOREIGN KEY") {
			return fmt.Errorf("pet %q: %w", p.ID, common.ErrConstraint)
		}
		return fmt.Errorf("failed to insert pet: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string, includeDeleted bool) (*models.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets WHERE id = ?`
	if !includeDeleted {
		query += ` AND deleted = 0`
	}
	return scanPet(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string, includeDeleted bool) ([]models.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets WHERE user_id = ?`
	if !includeDeleted {
		query += ` AND deleted = 0`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select pets: %w", err)
	}
	defer rows.Close()

	var result []models.Pet
	for rows.Next() {
		p, err := scanPetRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, p *models.Pet) error {
	query := `UPDATE pets SET name = ?, species = ?, breed = ?, age = ?, weight = ?,
		notes = ?, deleted = ?, last_modified = ?, revision = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.Name, p.Species, p.Breed, p.Age, p.Weight, p.Notes,
		boolToInt(p.Deleted), models.FormatTime(p.LastModified), p.Revision, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update pet: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return fmt.Errorf("pet %q: %w", p.ID, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, p *models.Pet) error {
	query := `INSERT INTO pets (` + petColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			name = excluded.name,
			species = excluded.species,
			breed = excluded.breed,
			age = excluded.age,
			weight = excluded.weight,
			notes = excluded.notes,
			deleted = excluded.deleted,
			last_modified = excluded.last_modified,
			revision = excluded.revision`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.Name, p.Species, p.Breed, p.Age, p.Weight, p.Notes,
		boolToInt(p.Deleted), models.FormatTime(p.CreatedAt), models.FormatTime(p.LastModified), p.Revision)
	if err != nil {
		return fmt.Errorf("failed to upsert pet: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row *sql.Row) (*models.Pet, error) {
	p, err := scanPetRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return p, err
}

func scanPetRow(row rowScanner) (*models.Pet, error) {
	p := &models.Pet{}
	var deleted int
	var createdAt, lastModified string
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Species, &p.Breed, &p.Age, &p.Weight,
		&p.Notes, &deleted, &createdAt, &lastModified, &p.Revision)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan pet: %w", err)
	}
	p.Deleted = deleted != 0
	if p.CreatedAt, err = models.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	if p.LastModified, err = models.ParseTime(lastModified); err != nil {
		return nil, fmt.Errorf("bad last_modified: %w", err)
	}
	return p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
