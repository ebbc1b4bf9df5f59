package domain

import "time"

// Session is an opaque bearer credential bound to a user. The store holds the
// token fingerprint, never the raw token. A session is valid iff its row
// exists and now < ExpiresAt; expired rows are deleted lazily on first
// resolution after expiry.
type Session struct {
	ID        string
	UserID    string
	TokenHash string // base64url SHA-256 fingerprint of the raw token
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session has passed its expiry at time now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
