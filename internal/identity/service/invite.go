package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/tallyworks/shiftclock/internal/identity/domain"
	"github.com/tallyworks/shiftclock/internal/identity/store"
	"github.com/tallyworks/shiftclock/pkg/cryptox"
	"github.com/tallyworks/shiftclock/pkg/idx"
	"github.com/tallyworks/shiftclock/pkg/slogx"
)

// DefaultInviteTTL applies when a mint request carries no explicit TTL.
// Permanent invites go through the separate Permanent flag, never through a
// zero TTL.
const DefaultInviteTTL = 48 * time.Hour

var (
	ErrInvalidInviteRequest = errors.New("invalid invite request")

	// ErrPermanentAdminInvite rejects reusable admin invites: a leaked
	// permanent admin token would be an unbounded privilege escalation.
	ErrPermanentAdminInvite = errors.New("admin invites cannot be permanent")

	ErrInviteNotFound = errors.New("invite not found")
	ErrInviteExpired  = errors.New("invite expired")
	ErrInviteUsed     = errors.New("invite already used")
	ErrTeamFull       = errors.New("team is full")
)

// MintRequest describes an invite to create. TeamID empty means the issuer's
// own team unless NewTeam is set, in which case the invite is minted without
// a team and redemption creates one (admin role only).
type MintRequest struct {
	Role      domain.Role
	TeamID    string
	TTL       time.Duration
	Permanent bool
	NewTeam   bool
}

type InviteService struct {
	Store store.Store
}

// Mint creates an invite token. The caller must already be authorized as an
// admin; this method enforces invite shape, not caller privilege. Returns the
// raw token (shown exactly once) alongside the stored invite.
func (s *InviteService) Mint(ctx context.Context, issuer domain.User, req MintRequest) (string, domain.Invite, error) {
	log := slogx.FromContext(ctx)

	if !req.Role.Valid() {
		return "", domain.Invite{}, ErrInvalidInviteRequest
	}
	if req.Permanent && req.Role == domain.RoleAdmin {
		log.Warn("attempted to mint permanent admin invite",
			slog.String("created_by", issuer.ID),
		)
		return "", domain.Invite{}, ErrPermanentAdminInvite
	}

	teamID := req.TeamID
	switch {
	case req.NewTeam:
		// A teamless invite bootstraps a new team at redemption. Only
		// admins may land in a team of their own.
		if req.Role != domain.RoleAdmin {
			log.Warn("attempted to mint teamless non-admin invite",
				slog.String("created_by", issuer.ID),
				slog.String("role", string(req.Role)),
			)
			return "", domain.Invite{}, ErrInvalidInviteRequest
		}
		teamID = ""
	case teamID == "":
		teamID = issuer.TeamID
	default:
		if _, err := s.Store.Teams().GetTeamByID(ctx, teamID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return "", domain.Invite{}, ErrInvalidInviteRequest
			}
			log.Error("failed to fetch invite target team", slog.Any("error", err))
			return "", domain.Invite{}, err
		}
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return "", domain.Invite{}, err
	}

	var expiresAt *time.Time
	if !req.Permanent {
		ttl := req.TTL
		if ttl <= 0 {
			ttl = DefaultInviteTTL
		}
		t := time.Now().UTC().Add(ttl)
		expiresAt = &t
	}

	invite := domain.Invite{
		ID:        idx.New().String(),
		TeamID:    teamID,
		Role:      req.Role,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: expiresAt,
		CreatedBy: issuer.ID,
	}

	if err := s.Store.Invites().CreateInvite(ctx, invite); err != nil {
		log.Error("failed to create invite",
			slog.String("invite_id", invite.ID),
			slog.Any("error", err),
		)
		return "", domain.Invite{}, err
	}

	log.Info("invite minted",
		slog.String("invite_id", invite.ID),
		slog.String("team_id", teamID),
		slog.String("role", string(req.Role)),
		slog.Bool("permanent", req.Permanent),
		slog.String("created_by", issuer.ID),
	)
	return token, invite, nil
}

// Redeem validates an invite token and creates the invited user:
//
//  1. Look up the invite by token fingerprint.
//  2. Reject expired and already-used (non-permanent) invites. Failure
//     messages stay generic so the endpoint is not a token oracle.
//  3. Resolve the target team, creating a fresh one for teamless invites.
//  4. Enforce the team admission ceiling. The count and the insert share one
//     transaction, and sqlite runs writers on a single connection, so
//     concurrent redemptions near the ceiling serialize and the cap holds.
//  5. Check employee id and email uniqueness (case-insensitive, global).
//  6. Create the user and, for non-permanent invites, mark the invite used
//     in the same transaction. Permanent invites are never mutated.
//
// The caller creates a session for the returned user; this method does not.
func (s *InviteService) Redeem(ctx context.Context, token string, reg domain.Registration) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if token == "" {
		return domain.User{}, ErrInvalidInviteRequest
	}

	invite, err := s.Store.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invite redemption attempted with unknown token")
			return domain.User{}, ErrInviteNotFound
		}
		log.Error("failed to fetch invite", slog.Any("error", err))
		return domain.User{}, err
	}

	now := time.Now().UTC()
	if invite.Expired(now) {
		log.Warn("invite redemption attempted with expired invite",
			slog.String("invite_id", invite.ID),
		)
		return domain.User{}, ErrInviteExpired
	}
	if !invite.Permanent() && invite.Used {
		log.Warn("invite redemption attempted with already-used invite",
			slog.String("invite_id", invite.ID),
			slog.String("used_by", invite.UsedBy),
		)
		return domain.User{}, ErrInviteUsed
	}

	empID := reg.EmpID
	if empID == "" {
		empID = generatedEmpID(invite.Role)
	}

	if err := checkIdentityAvailable(ctx, s.Store, empID, reg.Email); err != nil {
		return domain.User{}, err
	}

	var passwordHash string
	if reg.Password != "" {
		passwordHash, err = cryptox.HashPassword(reg.Password)
		if err != nil {
			log.Error("failed to hash password", slog.Any("error", err))
			return domain.User{}, err
		}
	}

	var user domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		teamID := invite.TeamID
		if teamID == "" {
			name := reg.TeamName
			if name == "" {
				name = generatedTeamName()
			}
			team := domain.Team{ID: idx.New().String(), Name: name}
			if err := tx.Teams().CreateTeam(ctx, team); err != nil {
				return err
			}
			teamID = team.ID
			// Bind the invite so a later listing shows where it landed.
			if err := tx.Invites().BindInviteTeam(ctx, invite.ID, teamID); err != nil {
				return err
			}
		} else {
			count, err := tx.Teams().CountActiveMembers(ctx, teamID)
			if err != nil {
				return err
			}
			if count >= domain.MaxTeamMembers {
				return ErrTeamFull
			}
		}

		user = domain.User{
			ID:           idx.New().String(),
			EmpID:        empID,
			Name:         displayName(domain.Registration{Name: reg.Name, EmpID: empID}),
			Email:        reg.Email,
			PasswordHash: passwordHash,
			Role:         invite.Role,
			TeamID:       teamID,
			Status:       domain.StatusActive,
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}

		if !invite.Permanent() {
			if err := tx.Invites().MarkInviteUsed(ctx, invite.ID, user.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTeamFull) {
			log.Warn("invite redemption rejected: team at admission ceiling",
				slog.String("invite_id", invite.ID),
				slog.String("team_id", invite.TeamID),
			)
			return domain.User{}, ErrTeamFull
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent redemption or registration; the
			// uniqueness constraint is the backstop for the pre-checks.
			// Re-run the availability check to name the field that collided.
			if checkErr := checkIdentityAvailable(ctx, s.Store, empID, reg.Email); checkErr != nil {
				return domain.User{}, checkErr
			}
			return domain.User{}, ErrEmployeeIDTaken
		}
		log.Error("failed to redeem invite",
			slog.String("invite_id", invite.ID),
			slog.Any("error", err),
		)
		return domain.User{}, err
	}

	log.Info("user registered via invite",
		slog.String("user_id", user.ID),
		slog.String("invite_id", invite.ID),
		slog.String("team_id", user.TeamID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// List returns the invites the caller may see: those scoped to their team
// plus any teamless bootstrap invites they personally minted. Admin-only;
// the HTTP guard enforces that before this runs.
func (s *InviteService) List(ctx context.Context, caller domain.User) ([]domain.Invite, error) {
	invites, err := s.Store.Invites().ListInvitesForTeam(ctx, caller.TeamID)
	if err != nil {
		return nil, err
	}

	teamless, err := s.Store.Invites().ListTeamlessInvitesByCreator(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	return append(invites, teamless...), nil
}

// generatedEmpID builds a fallback employee identifier when the registration
// payload omits one. Admin identifiers are role-prefixed so they are
// recognizable in rosters.
func generatedEmpID(role domain.Role) string {
	prefix := "emp"
	if role == domain.RoleAdmin {
		prefix = "admin"
	}
	return prefix + "-" + strings.ToLower(idx.New().String())
}
