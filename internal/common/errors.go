// Package common defines shared constants and sentinel errors used across
// PetVault components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Local store errors.
	ErrNotFound   = errors.New("not found")
	ErrConstraint = errors.New("constraint violation")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")

	// Sync errors. ErrRemoteUnavailable covers network failures and
	// timeouts; ErrConflict means the remote holds a newer version and is
	// resolved by the sync engine, never surfaced to the user.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	ErrConflict          = errors.New("remote version is newer")

	// Validation errors.
	ErrValidation = errors.New("validation error")
)
