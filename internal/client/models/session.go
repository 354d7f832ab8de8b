package models

import "time"

// Session is the authenticated-session record persisted outside the
// relational store (as a signed token file). A session past its expiry is
// never presented as valid, even if the file is still on disk.
type Session struct {
	UserID    string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
