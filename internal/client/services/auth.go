// Package services contains the application services behind the CLI. They
// validate input, own the credential rules, and delegate persistence to
// the local store; nothing here talks to the network.
package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dvoronkov/petvault/internal/client/models"
	"github.com/dvoronkov/petvault/internal/client/session"
	"github.com/dvoronkov/petvault/internal/client/store"
	"github.com/dvoronkov/petvault/internal/common"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

// AuthService defines account and session operations for the CLI.
//
// Contract:
//   - Register: create a local account; it reaches the remote via sync.
//   - Login: verify credentials against the local store and open a session.
//   - Restore: load a previously persisted session, nil when none is valid.
//   - Logout: drop the persisted session.
//
// Authentication is fully local: registration and login work offline.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte) (*models.User, error)
	Login(ctx context.Context, username string, password []byte) (*models.Session, error)
	Restore(ctx context.Context) (*models.Session, error)
	Logout(ctx context.Context) error
}

type authService struct {
	store    *store.Store
	sessions *session.Manager
}

// NewAuthService constructs an AuthService over the local store.
func NewAuthService(s *store.Store, sessions *session.Manager) AuthService {
	return &authService{store: s, sessions: sessions}
}

func (a *authService) Register(ctx context.Context, username string, password []byte) (*models.User, error) {
	if len(username) < minUsernameLen {
		return nil, fmt.Errorf("%w: username must be at least %d characters", common.ErrValidation, minUsernameLen)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := a.store.CreateUser(ctx, username, string(hash))
	if errors.Is(err, common.ErrConstraint) {
		return nil, fmt.Errorf("%w: username %q is taken", common.ErrValidation, username)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login never reveals whether the username or the password was wrong.
func (a *authService) Login(ctx context.Context, username string, password []byte) (*models.Session, error) {
	u, err := a.store.GetUserByName(ctx, username)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), password); err != nil {
		return nil, common.ErrUnauthorized
	}
	return a.sessions.Open(ctx, u)
}

func (a *authService) Restore(ctx context.Context) (*models.Session, error) {
	return a.sessions.Restore(ctx)
}

func (a *authService) Logout(ctx context.Context) error {
	return a.sessions.Close(ctx)
}
