package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tallyworks/shiftclock/internal/identity/domain"
	"github.com/tallyworks/shiftclock/internal/identity/store"
	"github.com/tallyworks/shiftclock/pkg/cryptox"
	"github.com/tallyworks/shiftclock/pkg/idx"
	"github.com/tallyworks/shiftclock/pkg/slogx"
)

var ErrBootstrapIncomplete = errors.New("bootstrap admin credentials not configured")

// BootstrapData is the seeded admin account, read from external configuration
// at startup. Credentials never live in source.
type BootstrapData struct {
	AdminEmpID    string
	AdminName     string
	AdminEmail    string
	AdminPassword string
	TeamName      string
}

type BootstrapService struct {
	Store store.Store
}

// IsBootstrapped reports whether any user exists.
func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Ensure seeds the first team and admin user when the store is empty.
// Idempotent: on an already-bootstrapped store it does nothing, so it runs
// unconditionally at every process start. An empty store with no configured
// credentials is an error; an unreachable instance is better than one that
// silently has no admin.
func (s *BootstrapService) Ensure(ctx context.Context, data BootstrapData) error {
	log := slogx.FromContext(ctx)

	bootstrapped, err := s.IsBootstrapped(ctx)
	if err != nil {
		return err
	}
	if bootstrapped {
		return nil
	}

	if data.AdminEmail == "" || data.AdminPassword == "" {
		return ErrBootstrapIncomplete
	}

	hash, err := cryptox.HashPassword(data.AdminPassword)
	if err != nil {
		log.Error("failed to hash bootstrap admin password", slog.Any("error", err))
		return err
	}

	empID := data.AdminEmpID
	if empID == "" {
		empID = generatedEmpID(domain.RoleAdmin)
	}
	teamName := data.TeamName
	if teamName == "" {
		teamName = generatedTeamName()
	}
	adminName := data.AdminName
	if adminName == "" {
		adminName = "Administrator"
	}

	var adminID string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		team := domain.Team{ID: idx.New().String(), Name: teamName}
		if err := tx.Teams().CreateTeam(ctx, team); err != nil {
			return err
		}

		admin := domain.User{
			ID:           idx.New().String(),
			EmpID:        empID,
			Name:         adminName,
			Email:        data.AdminEmail,
			PasswordHash: hash,
			Role:         domain.RoleAdmin,
			TeamID:       team.ID,
			Status:       domain.StatusActive,
		}
		adminID = admin.ID
		return tx.Users().CreateUser(ctx, admin)
	})
	if err != nil {
		log.Error("failed to seed bootstrap admin", slog.Any("error", err))
		return err
	}

	log.Info("bootstrap admin seeded",
		slog.String("user_id", adminID),
		slog.String("emp_id", empID),
	)
	return nil
}
