// Package models defines client-side data models persisted in the local
// store and exchanged with the remote store.
package models

import "time"

// User is an account holder. The password is stored only as a bcrypt hash.
// Users are never hard-deleted.
type User struct {
	// ID is a globally unique identifier (UUID).
	ID string `json:"id"`

	// Username is unique and case-sensitive, minimum 3 characters.
	Username string `json:"username"`

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `json:"password_hash"`

	// CreatedAt is the registration time in UTC.
	CreatedAt time.Time `json:"created_at"`

	// LastModified is the last mutation time in UTC; drives conflict
	// resolution during sync.
	LastModified time.Time `json:"last_modified"`

	// Revision is a local, monotonically increasing mutation counter.
	Revision int64 `json:"-"`
}
