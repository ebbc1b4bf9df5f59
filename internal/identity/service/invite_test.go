package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tallyworks/shiftclock/internal/identity/domain"
	"github.com/tallyworks/shiftclock/internal/identity/store"
	"github.com/tallyworks/shiftclock/pkg/cryptox"
	"github.com/tallyworks/shiftclock/pkg/idx"
)

func TestMintAndRedeemInvite(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	team := seedTeam(t, st, "floor")
	admin := seedUser(t, st, seedUserOpts{
		empID: "admin-1", email: "boss@example.com", password: "x",
		role: domain.RoleAdmin, teamID: team.ID,
	})

	token, invite, err := svc.Mint(ctx, admin, MintRequest{Role: domain.RoleUser})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, team.ID, invite.TeamID, "empty TeamID defaults to the issuer's team")
	require.NotNil(t, invite.ExpiresAt)
	require.WithinDuration(t,
		time.Now().UTC().Add(DefaultInviteTTL), *invite.ExpiresAt, time.Minute)

	user, err := svc.Redeem(ctx, token, domain.Registration{
		EmpID: "emp-400", Name: "Invited", Password: "new-pass",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, user.Role)
	require.Equal(t, team.ID, user.TeamID)

	stored, err := st.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(token))
	require.NoError(t, err)
	require.True(t, stored.Used)
	require.Equal(t, user.ID, stored.UsedBy)
}

func TestRedeemInviteTwiceFails(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	team := seedTeam(t, st, "floor")
	admin := seedUser(t, st, seedUserOpts{
		empID: "admin-1", password: "x", role: domain.RoleAdmin, teamID: team.ID,
	})

	token, _, err := svc.Mint(ctx, admin, MintRequest{Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, token, domain.Registration{EmpID: "emp-401", Password: "x"})
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, token, domain.Registration{EmpID: "emp-402", Password: "x"})
	require.ErrorIs(t, err, ErrInviteUsed)
}

func TestRedeemExpiredInvite(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	team := seedTeam(t, st, "floor")
	admin := seedUser(t, st, seedUserOpts{
		empID: "admin-1", password: "x", role: domain.RoleAdmin, teamID: team.ID,
	})

	// Insert an already-expired invite directly
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)
	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, st.Invites().CreateInvite(ctx, domain.Invite{
		ID:        idx.New().String(),
		TeamID:    team.ID,
		Role:      domain.RoleUser,
		TokenHash: cryptox.FingerprintToken(token),
		ExpiresAt: &past,
		CreatedBy: admin.ID,
	}))

	_, err = svc.Redeem(ctx, token, domain.Registration{EmpID: "emp-403", Password: "x"})
	require.ErrorIs(t, err, ErrInviteExpired)
}

func TestRedeemUnknownInvite(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	_, err := svc.Redeem(ctx, "no-such-token", domain.Registration{EmpID: "emp-404", Password: "x"})
	require.ErrorIs(t, err, ErrInviteNotFound)

	_, err = svc.Redeem(ctx, "", domain.Registration{EmpID: "emp-404", Password: "x"})
	require.ErrorIs(t, err, ErrInvalidInviteRequest)
}

func TestPermanentInviteIsReusable(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	team := seedTeam(t, st, "floor")
	admin := seedUser(t, st, seedUserOpts{
		empID: "admin-1", password: "x", role: domain.RoleAdmin, teamID: team.ID,
	})

	token, invite, err := svc.Mint(ctx, admin, MintRequest{
		Role:      domain.RoleUser,
		Permanent: true,
	})
	require.NoError(t, err)
	require.Nil(t, invite.ExpiresAt)

	for i := 0; i < 3; i++ {
		_, err := svc.Redeem(ctx, token, domain.Registration{
			EmpID:    fmt.Sprintf("emp-41%d", i),
			Password: "x",
		})
		require.NoError(t, err, "redemption %d should succeed", i+1)
	}

	// The invite is never marked used, no matter how often it's redeemed
	stored, err := st.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(token))
	require.NoError(t, err)
	require.False(t, stored.Used)
	require.Empty(t, stored.UsedBy)
}

func TestMintPermanentAdminInviteRejected(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	team := seedTeam(t, st, "hq")
	admin := seedUser(t, st, seedUserOpts{
		empID: "admin-1", password: "x", role: domain.RoleAdmin, teamID: team.ID,
	})

	_, _, err := svc.Mint(ctx, admin, MintRequest{
		Role:      domain.RoleAdmin,
		Permanent: true,
	})
	require.ErrorIs(t, err, ErrPermanentAdminInvite)
}

func TestMintInviteValidation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	team := seedTeam(t, st, "hq")
	admin := seedUser(t, st, seedUserOpts{
		empID: "admin-1", password: "x", role: domain.RoleAdmin, teamID: team.ID,
	})

	t.Run("bad role", func(t *testing.T) {
		_, _, err := svc.Mint(ctx, admin, MintRequest{Role: "superuser"})
		require.ErrorIs(t, err, ErrInvalidInviteRequest)
	})

	t.Run("unknown target team", func(t *testing.T) {
		_, _, err := svc.Mint(ctx, admin, MintRequest{
			Role:   domain.RoleUser,
			TeamID: idx.New().String(),
		})
		require.ErrorIs(t, err, ErrInvalidInviteRequest)
	})

	t.Run("teamless non-admin invite", func(t *testing.T) {
		_, _, err := svc.Mint(ctx, admin, MintRequest{
			Role:    domain.RoleUser,
			NewTeam: true,
		})
		require.ErrorIs(t, err, ErrInvalidInviteRequest)
	})
}

func TestTeamlessAdminInviteCreatesTeamOnRedeem(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	team := seedTeam(t, st, "hq")
	admin := seedUser(t, st, seedUserOpts{
		empID: "admin-1", password: "x", role: domain.RoleAdmin, teamID: team.ID,
	})

	token, invite, err := svc.Mint(ctx, admin, MintRequest{
		Role:    domain.RoleAdmin,
		NewTeam: true,
	})
	require.NoError(t, err)
	require.Empty(t, invite.TeamID)

	user, err := svc.Redeem(ctx, token, domain.Registration{
		EmpID:    "admin-2",
		Email:    "lead@example.com",
		Password: "x",
		TeamName: "warehouse",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, user.Role)
	require.NotEqual(t, team.ID, user.TeamID, "redemption must create a fresh team")

	created, err := st.Teams().GetTeamByID(ctx, user.TeamID)
	require.NoError(t, err)
	require.Equal(t, "warehouse", created.Name)

	// The invite is bound to the team it spawned
	stored, err := st.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(token))
	require.NoError(t, err)
	require.Equal(t, user.TeamID, stored.TeamID)
}

func TestRedeemEnforcesTeamAdmissionCeiling(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	team := seedTeam(t, st, "big-floor")
	admin := seedUser(t, st, seedUserOpts{
		empID: "admin-1", password: "x", role: domain.RoleAdmin, teamID: team.ID,
	})

	// Fill the team to one short of the ceiling (the admin is member #1)
	for i := 0; i < domain.MaxTeamMembers-2; i++ {
		seedUser(t, st, seedUserOpts{
			empID: fmt.Sprintf("filler-%d", i), password: "x",
			role: domain.RoleUser, teamID: team.ID,
		})
	}

	count, err := st.Teams().CountActiveMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, domain.MaxTeamMembers-1, count)

	// Mint two invites up front; the cap is checked at redemption, not mint
	tokenA, _, err := svc.Mint(ctx, admin, MintRequest{Role: domain.RoleUser})
	require.NoError(t, err)
	tokenB, _, err := svc.Mint(ctx, admin, MintRequest{Role: domain.RoleUser})
	require.NoError(t, err)

	// Seat 35 goes through
	_, err = svc.Redeem(ctx, tokenA, domain.Registration{EmpID: "emp-last", Password: "x"})
	require.NoError(t, err)

	// Seat 36 does not, and the invite stays unused for later
	_, err = svc.Redeem(ctx, tokenB, domain.Registration{EmpID: "emp-overflow", Password: "x"})
	require.ErrorIs(t, err, ErrTeamFull)

	stored, err := st.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(tokenB))
	require.NoError(t, err)
	require.False(t, stored.Used, "a rejected redemption must not consume the invite")

	_, err = st.Users().GetUserByEmpID(ctx, "emp-overflow")
	require.ErrorIs(t, err, store.ErrNotFound, "no user row may survive a rejected redemption")

	// Freeing a seat lets the held-back invite go through
	freed, err := st.Users().GetUserByEmpID(ctx, "filler-0")
	require.NoError(t, err)
	require.NoError(t, st.Users().DeleteUser(ctx, freed.ID))

	_, err = svc.Redeem(ctx, tokenB, domain.Registration{EmpID: "emp-overflow", Password: "x"})
	require.NoError(t, err)

	count, err = st.Teams().CountActiveMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, domain.MaxTeamMembers, count)
}

func TestConcurrentRedeemNearCeiling(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	team := seedTeam(t, st, "crowded")
	admin := seedUser(t, st, seedUserOpts{
		empID: "admin-1", password: "x", role: domain.RoleAdmin, teamID: team.ID,
	})
	for i := 0; i < domain.MaxTeamMembers-2; i++ {
		seedUser(t, st, seedUserOpts{
			empID: fmt.Sprintf("crowd-%d", i), password: "x",
			role: domain.RoleUser, teamID: team.ID,
		})
	}

	// One seat left; everyone rushes the same permanent invite.
	token, _, err := svc.Mint(ctx, admin, MintRequest{
		Role:      domain.RoleUser,
		Permanent: true,
	})
	require.NoError(t, err)

	const contenders = 10
	results := make(chan error, contenders)
	var wg sync.WaitGroup
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Redeem(ctx, token, domain.Registration{
				EmpID:    fmt.Sprintf("rush-%d", i),
				Password: "x",
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var admitted, refused int
	for err := range results {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, ErrTeamFull):
			refused++
		default:
			t.Fatalf("unexpected redemption error: %v", err)
		}
	}
	require.Equal(t, 1, admitted, "exactly one contender wins the last seat")
	require.Equal(t, contenders-1, refused)

	count, err := st.Teams().CountActiveMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Equal(t, domain.MaxTeamMembers, count, "the ceiling holds under concurrent redemption")
}

func TestConcurrentRedeemDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	team := seedTeam(t, st, "floor")
	admin := seedUser(t, st, seedUserOpts{
		empID: "admin-1", password: "x", role: domain.RoleAdmin, teamID: team.ID,
	})

	token, _, err := svc.Mint(ctx, admin, MintRequest{
		Role:      domain.RoleUser,
		Permanent: true,
	})
	require.NoError(t, err)

	// Distinct employee ids, one shared email: whichever contender loses the
	// race must be told the email collided, not the employee id.
	const contenders = 4
	results := make(chan error, contenders)
	var wg sync.WaitGroup
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Redeem(ctx, token, domain.Registration{
				EmpID:    fmt.Sprintf("mail-%d", i),
				Email:    "shared@example.com",
				Password: "x",
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var admitted int
	for err := range results {
		if err == nil {
			admitted++
			continue
		}
		require.ErrorIs(t, err, ErrEmailTaken)
	}
	require.Equal(t, 1, admitted, "only one contender may claim the email")
}

func TestRedeemDuplicateEmpID(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	team := seedTeam(t, st, "floor")
	admin := seedUser(t, st, seedUserOpts{
		empID: "admin-1", password: "x", role: domain.RoleAdmin, teamID: team.ID,
	})
	seedUser(t, st, seedUserOpts{
		empID: "emp-500", password: "x", role: domain.RoleUser, teamID: team.ID,
	})

	token, _, err := svc.Mint(ctx, admin, MintRequest{Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, token, domain.Registration{EmpID: "EMP-500", Password: "x"})
	require.ErrorIs(t, err, ErrEmployeeIDTaken)
}

func TestListInvites(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &InviteService{Store: st}

	teamA := seedTeam(t, st, "team-a")
	teamB := seedTeam(t, st, "team-b")
	adminA := seedUser(t, st, seedUserOpts{
		empID: "admin-a", password: "x", role: domain.RoleAdmin, teamID: teamA.ID,
	})
	adminB := seedUser(t, st, seedUserOpts{
		empID: "admin-b", password: "x", role: domain.RoleAdmin, teamID: teamB.ID,
	})

	_, teamInvite, err := svc.Mint(ctx, adminA, MintRequest{Role: domain.RoleUser})
	require.NoError(t, err)
	_, teamlessInvite, err := svc.Mint(ctx, adminA, MintRequest{Role: domain.RoleAdmin, NewTeam: true})
	require.NoError(t, err)
	_, otherInvite, err := svc.Mint(ctx, adminB, MintRequest{Role: domain.RoleUser})
	require.NoError(t, err)

	invites, err := svc.List(ctx, adminA)
	require.NoError(t, err)

	ids := make([]string, 0, len(invites))
	for _, inv := range invites {
		ids = append(ids, inv.ID)
	}
	require.Contains(t, ids, teamInvite.ID)
	require.Contains(t, ids, teamlessInvite.ID)
	require.NotContains(t, ids, otherInvite.ID, "other teams' invites must stay invisible")
}
