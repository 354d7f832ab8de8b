// Package remote defines the adapter through which the sync engine talks
// to the cloud copy of the data. The engine treats the wire protocol as
// opaque: implementations only have to distinguish "the remote holds a
// newer version" (ConflictError) from "the remote cannot be reached"
// (common.ErrRemoteUnavailable).
package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/dvoronkov/petvault/internal/client/models"
	"github.com/dvoronkov/petvault/internal/common"
)

// Store is the remote side of the sync protocol. Upserts and deletes are
// guarded by the pushed last-modified timestamp: a remote row that is
// newer than the push is never overwritten and comes back as a
// ConflictError instead.
type Store interface {
	// Ping is a cheap reachability probe. It must respect ctx deadlines
	// and never block indefinitely.
	Ping(ctx context.Context) error

	// UpsertUser writes a user unless the remote copy is newer.
	UpsertUser(ctx context.Context, u *models.User) error

	// UpsertPet writes a pet unless the remote copy is newer.
	UpsertPet(ctx context.Context, p *models.Pet) error

	// DeletePet pushes a tombstone unless the remote copy is newer.
	// The full record is passed so a delete of a never-synced pet still
	// materializes a tombstone remotely.
	DeletePet(ctx context.Context, p *models.Pet) error

	// FetchUsersModifiedSince returns the user's account record if it
	// changed strictly after since.
	FetchUsersModifiedSince(ctx context.Context, userID string, since time.Time) ([]models.User, error)

	// FetchPetsModifiedSince returns the user's pets (tombstones
	// included) modified strictly after since.
	FetchPetsModifiedSince(ctx context.Context, userID string, since time.Time) ([]models.Pet, error)
}

// ConflictError reports that the remote holds a strictly newer (or, on a
// timestamp tie, winning) version of the entity being pushed. It carries
// the remote version so the caller can resolve without another round trip.
// errors.Is(err, common.ErrConflict) matches it.
type ConflictError struct {
	Table string
	User  *models.User
	Pet   *models.Pet
}

func (e *ConflictError) Error() string {
	id := ""
	switch {
	case e.User != nil:
		id = e.User.ID
	case e.Pet != nil:
		id = e.Pet.ID
	}
	return fmt.Sprintf("%s %s: %v", e.Table, id, common.ErrConflict)
}

func (e *ConflictError) Unwrap() error {
	return common.ErrConflict
}
