package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tallyworks/shiftclock/internal/identity/domain"
)

type invitesRepo struct {
	db dbtx
}

const inviteColumns = `id, team_id, role, token_hash, expires_at, used, used_by, created_by, created_at, updated_at`

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	now := time.Now().UTC()
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = now
	}
	if inv.UpdatedAt.IsZero() {
		inv.UpdatedAt = now
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invites (`+inviteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, mapStringNull(inv.TeamID), string(inv.Role), inv.TokenHash,
		mapTimePtrNull(inv.ExpiresAt), inv.Used, mapStringNull(inv.UsedBy),
		inv.CreatedBy, inv.CreatedAt, inv.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *invitesRepo) GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE token_hash = ?`, hash,
	)
	return scanInvite(row.Scan)
}

func (r *invitesRepo) ListInvitesForTeam(ctx context.Context, teamID string) ([]domain.Invite, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE team_id = ? ORDER BY created_at DESC`,
		teamID,
	)
	if err != nil {
		return nil, err
	}
	return collectInvites(rows)
}

func (r *invitesRepo) ListTeamlessInvitesByCreator(ctx context.Context, createdBy string) ([]domain.Invite, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+inviteColumns+` FROM invites
		 WHERE team_id IS NULL AND created_by = ? ORDER BY created_at DESC`,
		createdBy,
	)
	if err != nil {
		return nil, err
	}
	return collectInvites(rows)
}

func (r *invitesRepo) MarkInviteUsed(ctx context.Context, inviteID, usedByUserID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE invites SET used = 1, used_by = ?, updated_at = ? WHERE id = ?`,
		usedByUserID, time.Now().UTC(), inviteID,
	)
	return err
}

func (r *invitesRepo) BindInviteTeam(ctx context.Context, inviteID, teamID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE invites SET team_id = ?, updated_at = ? WHERE id = ?`,
		teamID, time.Now().UTC(), inviteID,
	)
	return err
}

// DeleteExpiredInvites leaves permanent invites (NULL expiry) untouched.
func (r *invitesRepo) DeleteExpiredInvites(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM invites WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		time.Now().UTC(),
	)
	return err
}

func scanInvite(scan func(dest ...any) error) (domain.Invite, error) {
	var (
		inv       domain.Invite
		teamID    sql.NullString
		role      string
		expiresAt sql.NullTime
		usedBy    sql.NullString
	)
	err := scan(
		&inv.ID, &teamID, &role, &inv.TokenHash, &expiresAt,
		&inv.Used, &usedBy, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	inv.TeamID = mapNullString(teamID)
	inv.Role = domain.Role(role)
	inv.ExpiresAt = mapNullTimePtr(expiresAt)
	inv.UsedBy = mapNullString(usedBy)
	return inv, nil
}

func collectInvites(rows *sql.Rows) ([]domain.Invite, error) {
	defer rows.Close()

	var out []domain.Invite
	for rows.Next() {
		inv, err := scanInvite(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
