package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tallyworks/shiftclock/internal/identity/domain"
	"github.com/tallyworks/shiftclock/internal/identity/store"
	"github.com/tallyworks/shiftclock/pkg/slogx"
)

var ErrUnknownTeam = errors.New("unknown team")

type UserService struct {
	Store store.Store
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// TransferTeam moves a user to another team, subject to the same admission
// ceiling as redemption.
func (s *UserService) TransferTeam(ctx context.Context, userID, teamID string) error {
	log := slogx.FromContext(ctx)

	if _, err := s.Store.Teams().GetTeamByID(ctx, teamID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnknownTeam
		}
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		count, err := tx.Teams().CountActiveMembers(ctx, teamID)
		if err != nil {
			return err
		}
		if count >= domain.MaxTeamMembers {
			log.Warn("team transfer rejected: team at admission ceiling",
				slog.String("user_id", userID),
				slog.String("team_id", teamID),
			)
			return ErrTeamFull
		}
		return tx.Users().UpdateTeam(ctx, userID, teamID)
	})
}

// DeleteUser removes the user; their sessions cascade per schema. The
// timesheet layer owns cascading the user's entries.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	return s.Store.Users().DeleteUser(ctx, userID)
}
