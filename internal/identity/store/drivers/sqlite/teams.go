package sqlite

import (
	"context"
	"time"

	"github.com/tallyworks/shiftclock/internal/identity/domain"
)

type teamsRepo struct {
	db dbtx
}

func (r *teamsRepo) GetTeamByID(ctx context.Context, id string) (domain.Team, error) {
	var t domain.Team
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM teams WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		return domain.Team{}, mapNotFound(err)
	}
	return t, nil
}

func (r *teamsRepo) CreateTeam(ctx context.Context, t domain.Team) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO teams (id, name, created_at) VALUES (?, ?, ?)`,
		t.ID, t.Name, t.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *teamsRepo) CountActiveMembers(ctx context.Context, teamID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE team_id = ? AND status = ?`,
		teamID, domain.StatusActive,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
