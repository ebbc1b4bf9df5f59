package domain

import "time"

// MaxTeamMembers is the admission ceiling: the maximum number of active users
// a team may hold. Enforced at invite redemption and team transfer inside the
// transaction that inserts or moves the user.
const MaxTeamMembers = 35

// Team is the tenant boundary. Every user, session and invite resolves to
// exactly one team; cross-team access is always rejected.
type Team struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
