package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tallyworks/shiftclock/internal/identity/domain"
	"github.com/tallyworks/shiftclock/internal/identity/store"
	"github.com/tallyworks/shiftclock/pkg/cryptox"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st}

	team := seedTeam(t, st, "ops")
	user := seedUser(t, st, seedUserOpts{
		empID: "emp-100", password: "hunter2", role: domain.RoleUser, teamID: team.ID,
	})

	token, err := svc.Create(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// The raw token must never hit the database
	_, err = st.Sessions().GetSessionByTokenHash(ctx, token)
	require.ErrorIs(t, err, store.ErrNotFound)

	resolved, err := svc.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)
	require.Equal(t, user.TeamID, resolved.TeamID)

	require.NoError(t, svc.Destroy(ctx, token))

	_, err = svc.Resolve(ctx, token)
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestResolveRejectsUnknownAndEmptyTokens(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st}

	_, err := svc.Resolve(ctx, "")
	require.ErrorIs(t, err, ErrSessionInvalid)

	_, err = svc.Resolve(ctx, "completely-made-up-token")
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestResolveExpiredSessionDeletesRow(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st}

	team := seedTeam(t, st, "ops")
	user := seedUser(t, st, seedUserOpts{
		empID: "emp-101", password: "hunter2", role: domain.RoleUser, teamID: team.ID,
	})

	token, session := seedSession(t, st, user.ID, time.Now().UTC().Add(-time.Minute))

	// Expired sessions look exactly like unknown ones to the caller
	_, err := svc.Resolve(ctx, token)
	require.ErrorIs(t, err, ErrSessionInvalid)

	// and the row is gone afterwards (lazy expiry)
	_, err = st.Sessions().GetSessionByTokenHash(ctx, session.TokenHash)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestResolveSessionAtExactExpiryIsInvalid(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st}

	team := seedTeam(t, st, "ops")
	user := seedUser(t, st, seedUserOpts{
		empID: "emp-102", password: "hunter2", role: domain.RoleUser, teamID: team.ID,
	})

	// An expiry in the past by any margin is already invalid; Expired uses
	// now >= expires_at, so the boundary instant counts as expired.
	require.True(t, domain.Session{ExpiresAt: time.Now().UTC()}.Expired(time.Now().UTC().Add(time.Nanosecond)))

	token, _ := seedSession(t, st, user.ID, time.Now().UTC().Add(-time.Nanosecond))
	_, err := svc.Resolve(ctx, token)
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestResolveOrphanedSession(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st}

	team := seedTeam(t, st, "ops")
	user := seedUser(t, st, seedUserOpts{
		empID: "emp-103", password: "hunter2", role: domain.RoleUser, teamID: team.ID,
	})

	token, err := svc.Create(ctx, user.ID)
	require.NoError(t, err)

	// Deleting the owner must invalidate the session, whether the cascade
	// removed the row or resolution finds it orphaned.
	require.NoError(t, st.Users().DeleteUser(ctx, user.ID))
	_, err = svc.Resolve(ctx, token)
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestDestroyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st}

	require.NoError(t, svc.Destroy(ctx, ""))
	require.NoError(t, svc.Destroy(ctx, "never-existed"))

	team := seedTeam(t, st, "ops")
	user := seedUser(t, st, seedUserOpts{
		empID: "emp-104", password: "hunter2", role: domain.RoleUser, teamID: team.ID,
	})

	token, err := svc.Create(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Destroy(ctx, token))
	require.NoError(t, svc.Destroy(ctx, token))
}

func TestSessionTokensAreFingerprintedAtRest(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &SessionService{Store: st}

	team := seedTeam(t, st, "ops")
	user := seedUser(t, st, seedUserOpts{
		empID: "emp-105", password: "hunter2", role: domain.RoleUser, teamID: team.ID,
	})

	token, err := svc.Create(ctx, user.ID)
	require.NoError(t, err)

	session, err := st.Sessions().GetSessionByTokenHash(ctx, cryptox.FingerprintToken(token))
	require.NoError(t, err)
	require.NotEqual(t, token, session.TokenHash)
	require.Equal(t, user.ID, session.UserID)
}
