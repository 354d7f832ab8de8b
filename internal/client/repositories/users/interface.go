package users

import (
	"context"

	"github.com/dvoronkov/petvault/internal/client/models"
)

// Repository describes persistence operations for User records in the local
// store. Implementations are backed by SQLite through a dbx.DBTX, so the
// same repository works inside and outside a transaction.
type Repository interface {
	// Create inserts a new user. Returns common.ErrConstraint when the
	// username is already taken.
	Create(ctx context.Context, u *models.User) error

	// GetByID returns a user by id, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByUsername returns a user by exact (case-sensitive) username,
	// or common.ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Upsert writes a user unconditionally by id. Used when materializing
	// remote state during sync.
	Upsert(ctx context.Context, u *models.User) error
}
