package models

import "time"

// Pet is a synchronizable pet record owned by exactly one user.
// Rows are never physically removed: deletion flips Deleted and bumps
// Revision/LastModified like any other mutation, so deletes propagate
// through sync the same way edits do.
type Pet struct {
	// ID is a globally unique identifier (UUID).
	ID string `json:"id"`

	// UserID references the owning user.
	UserID string `json:"user_id"`

	// Name of the pet.
	Name string `json:"name"`

	// Species, e.g. "Dog", "Cat".
	Species string `json:"species"`

	// Breed is optional.
	Breed string `json:"breed"`

	// Age in years, non-negative.
	Age int `json:"age"`

	// Weight in kilograms, non-negative.
	Weight float64 `json:"weight"`

	// Notes is free-form text.
	Notes string `json:"notes"`

	// Deleted is the soft-delete tombstone.
	Deleted bool `json:"deleted"`

	// CreatedAt is the creation time in UTC.
	CreatedAt time.Time `json:"created_at"`

	// LastModified is the last mutation time in UTC; drives conflict
	// resolution during sync.
	LastModified time.Time `json:"last_modified"`

	// Revision is a local, monotonically increasing mutation counter.
	// It is local bookkeeping only and is not compared across devices.
	Revision int64 `json:"-"`
}
