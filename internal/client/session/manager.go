// Package session persists the authenticated session across process
// restarts as a signed JWT written to a file. The signing key is random,
// generated on first use and kept in the local store's metadata table, so
// a token copied to another machine does not restore a session there.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dvoronkov/petvault/internal/client/models"
	"github.com/dvoronkov/petvault/internal/client/repositories/metadata"
	"github.com/dvoronkov/petvault/internal/common"
	"github.com/dvoronkov/petvault/internal/logging"
)

const signingKeySize = 32

// DefaultTTL is how long a session stays valid without a fresh login.
const DefaultTTL = 7 * 24 * time.Hour

type claims struct {
	Username string `json:"name"`
	jwt.RegisteredClaims
}

// Manager issues, restores and revokes offline sessions.
type Manager struct {
	meta metadata.Repository
	path string
	ttl  time.Duration
	log  logging.Logger
	now  func() time.Time
}

// New builds a Manager storing the token at path. A non-positive ttl
// falls back to DefaultTTL.
func New(meta metadata.Repository, path string, ttl time.Duration, log logging.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{meta: meta, path: path, ttl: ttl, log: log, now: time.Now}
}

// Open issues a session for the authenticated user and persists it.
// Credential checking is the caller's job; Open only records the result.
func (m *Manager) Open(ctx context.Context, u *models.User) (*models.Session, error) {
	key, err := m.signingKey(ctx)
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	s := &models.Session{
		UserID:    u.ID,
		Username:  u.Username,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: s.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	signed, err := token.SignedString(key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create session dir: %w", err)
		}
	}
	if err := os.WriteFile(m.path, []byte(signed), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write session file: %w", err)
	}
	return s, nil
}

// Restore loads the persisted session, if any. A missing file means no
// session and no error. An expired, malformed or foreign-signed token is
// discarded: the file is removed and (nil, nil) is returned, so a stale
// session degrades to "logged out" instead of an error on every start.
func (m *Manager) Restore(ctx context.Context) (*models.Session, error) {
	raw, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	key, err := m.signingKey(ctx)
	if err != nil {
		return nil, err
	}

	var c claims
	token, err := jwt.ParseWithClaims(string(raw), &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		m.log.Debug(ctx, "discarding invalid session token", "error", err)
		return nil, m.Close(ctx)
	}

	s := &models.Session{
		UserID:   c.Subject,
		Username: c.Username,
	}
	if c.IssuedAt != nil {
		s.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	if s.Expired(m.now()) {
		m.log.Debug(ctx, "discarding expired session")
		return nil, m.Close(ctx)
	}
	return s, nil
}

// Close removes the persisted session. Closing when none exists is a no-op.
func (m *Manager) Close(ctx context.Context) error {
	err := os.Remove(m.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// signingKey returns the stored signing key, generating one on first use.
func (m *Manager) signingKey(ctx context.Context) ([]byte, error) {
	v, err := m.meta.Get(ctx, metadata.KeySessionSigningKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}
	if len(v) > 0 {
		return v, nil
	}

	key := common.GenerateRandByteArray(signingKeySize)
	if err := m.meta.Set(ctx, metadata.KeySessionSigningKey, key); err != nil {
		return nil, fmt.Errorf("failed to store signing key: %w", err)
	}
	return key, nil
}
