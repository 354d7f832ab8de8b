package pets

import (
	"context"

	"github.com/dvoronkov/petvault/internal/client/models"
)

// Repository describes persistence operations for Pet records in the local
// store. Soft-deleted rows stay in the table as tombstones; reads exclude
// them unless asked otherwise.
type Repository interface {
	// Create inserts a new pet. Returns common.ErrConstraint when the
	// owning user does not exist.
	Create(ctx context.Context, p *models.Pet) error

	// GetByID returns a pet by id. Soft-deleted rows are returned only
	// when includeDeleted is set; otherwise common.ErrNotFound.
	GetByID(ctx context.Context, id string, includeDeleted bool) (*models.Pet, error)

	// ListByUser returns the user's pets ordered by name. Tombstones are
	// included only when includeDeleted is set.
	ListByUser(ctx context.Context, userID string, includeDeleted bool) ([]models.Pet, error)

	// Update rewrites all mutable fields of an existing row, including the
	// deleted flag. Returns common.ErrNotFound when the id is absent.
	Update(ctx context.Context, p *models.Pet) error

	// Upsert writes a pet unconditionally by id. Used when materializing
	// remote state during sync.
	Upsert(ctx context.Context, p *models.Pet) error
}
