package store

import (
	"context"
	"errors"

	"github.com/tallyworks/shiftclock/internal/identity/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. Sub-repositories are exposed as methods so transactional
// and non-transactional access share the same shape.
type Store interface {
	Teams() Teams
	Users() Users
	Sessions() Sessions
	Invites() Invites

	// ApplyMigrations applies any pending schema migrations. Idempotent and
	// safe to re-run; it must be called once at process start before any
	// other operation.
	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store. The
	// caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store with Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Teams interface {
	// GetTeamByID returns a team by id.
	GetTeamByID(ctx context.Context, id string) (domain.Team, error)

	// CreateTeam inserts a new team (id is provided by the app via ULID).
	CreateTeam(ctx context.Context, t domain.Team) error

	// CountActiveMembers returns the number of active users in the team.
	// The admission ceiling check reads this immediately before insert.
	CountActiveMembers(ctx context.Context, teamID string) (int, error)
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmpID looks up by employee identifier, case-insensitively.
	GetUserByEmpID(ctx context.Context, empID string) (domain.User, error)

	// GetUserByEmail looks up by email, case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user row.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets password_hash, clears any legacy plaintext
	// password, and bumps updated_at. Used by the forced rehash on login.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// UpdateTeam moves a user to another team (admin team transfer).
	UpdateTeam(ctx context.Context, userID, teamID string) error

	// DeleteUser removes the row; sessions cascade per schema.
	DeleteUser(ctx context.Context, userID string) error

	// IsEmpty reports whether there are no users at all (bootstrap check).
	IsEmpty(ctx context.Context) (bool, error)
}

type Sessions interface {
	// CreateSession stores a new session record.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByTokenHash returns the session by token fingerprint,
	// regardless of expiry; expiry is the service's concern.
	GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error)

	// DeleteSessionByTokenHash removes a session. Deleting an absent
	// session is not an error.
	DeleteSessionByTokenHash(ctx context.Context, hash string) error

	// DeleteExpiredSessions is housekeeping; lazy deletion on resolve is
	// the primary mechanism.
	DeleteExpiredSessions(ctx context.Context) error
}

type Invites interface {
	// CreateInvite writes a new invite (token_hash is the SHA-256
	// fingerprint of the opaque invite token).
	CreateInvite(ctx context.Context, inv domain.Invite) error

	// GetInviteByTokenHash returns the invite by fingerprint including used
	// and expired ones; redemption policy lives in the service.
	GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error)

	// ListInvitesForTeam returns invites scoped to a team, newest first.
	ListInvitesForTeam(ctx context.Context, teamID string) ([]domain.Invite, error)

	// ListTeamlessInvitesByCreator returns bootstrap invites (no team yet)
	// minted by the given user.
	ListTeamlessInvitesByCreator(ctx context.Context, createdBy string) ([]domain.Invite, error)

	// MarkInviteUsed sets used=1, used_by and updated_at. Only ever called
	// for non-permanent invites.
	MarkInviteUsed(ctx context.Context, inviteID, usedByUserID string) error

	// BindInviteTeam resolves a teamless admin invite to a concrete team.
	BindInviteTeam(ctx context.Context, inviteID, teamID string) error

	// DeleteExpiredInvites is housekeeping for non-permanent invites.
	DeleteExpiredInvites(ctx context.Context) error
}
