package domain

import "time"

// Invite is a pre-authorized registration capability. A nil ExpiresAt marks a
// permanent invite: it never expires, is never marked used, and may be
// redeemed any number of times (each redemption still subject to the team
// admission ceiling). Non-permanent invites transition unused -> used exactly
// once, atomically with the user row they create.
//
// TeamID is empty only for admin bootstrap invites; redemption resolves it to
// a fresh team before any user is created.
type Invite struct {
	ID        string
	TeamID    string
	Role      Role
	TokenHash string // base64url SHA-256 fingerprint of the raw token
	ExpiresAt *time.Time
	Used      bool
	UsedBy    string // empty until redeemed (non-permanent only)
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Permanent reports whether the invite never expires and is reusable.
func (i Invite) Permanent() bool { return i.ExpiresAt == nil }

// Expired reports whether a non-permanent invite has passed its expiry.
func (i Invite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}
