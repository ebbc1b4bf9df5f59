package identity_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tallyworks/shiftclock/pkg/shiftsdk"
)

func TestInviteMintAndRedeemFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.adminClient(t)

	minted, err := admin.MintInvite(ctx, shiftsdk.MintInviteRequest{Role: "user"})
	require.NoError(t, err)
	require.NotEmpty(t, minted.InviteToken)
	require.NotNil(t, minted.ExpiresAt)

	// Redemption creates the user and logs them in
	invited := env.client()
	resp, err := invited.RedeemInvite(ctx, shiftsdk.RedeemInviteRequest{
		Token:    minted.InviteToken,
		EmpID:    "emp-910",
		Name:     "Invited Worker",
		Password: "invited-pass",
	})
	require.NoError(t, err)
	require.Equal(t, "user", resp.User.Role)
	require.Equal(t, minted.TeamID, resp.User.TeamID)

	me, err := invited.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "emp-910", me.EmpID)

	// And they can log in with the password they chose
	_, err = env.client().Login(ctx, shiftsdk.LoginRequest{
		EmpID:    "emp-910",
		Password: "invited-pass",
		Role:     "user",
	})
	require.NoError(t, err)

	// The invite is single-use
	_, err = env.client().RedeemInvite(ctx, shiftsdk.RedeemInviteRequest{
		Token:    minted.InviteToken,
		EmpID:    "emp-911",
		Password: "x",
	})
	requireAPIError(t, err, http.StatusBadRequest, "invite_used")
}

func TestPermanentInviteFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.adminClient(t)

	minted, err := admin.MintPermanentInvite(ctx, shiftsdk.MintInviteRequest{Role: "user"})
	require.NoError(t, err)
	require.Nil(t, minted.ExpiresAt, "permanent invites carry no expiry")

	for i := 0; i < 3; i++ {
		_, err := env.client().RedeemInvite(ctx, shiftsdk.RedeemInviteRequest{
			Token:    minted.InviteToken,
			EmpID:    fmt.Sprintf("emp-92%d", i),
			Password: "x",
		})
		require.NoError(t, err, "redemption %d of a permanent invite", i+1)
	}

	// Permanent admin invites must be refused
	_, err = admin.MintPermanentInvite(ctx, shiftsdk.MintInviteRequest{Role: "admin"})
	requireAPIError(t, err, http.StatusBadRequest, "invalid_request")
}

func TestInviteEndpointsAreAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A regular user cannot mint or list invites
	worker := env.client()
	_, err := worker.Register(ctx, shiftsdk.RegisterRequest{
		EmpID:    "emp-930",
		Password: "x",
	})
	require.NoError(t, err)

	_, err = worker.MintInvite(ctx, shiftsdk.MintInviteRequest{Role: "user"})
	requireAPIError(t, err, http.StatusForbidden, "forbidden")

	_, err = worker.ListInvites(ctx)
	requireAPIError(t, err, http.StatusForbidden, "forbidden")

	// Unauthenticated callers get 401, not 403
	_, err = env.client().MintInvite(ctx, shiftsdk.MintInviteRequest{Role: "user"})
	requireAPIError(t, err, http.StatusUnauthorized, "unauthenticated")
}

func TestInviteListShowsMintedInvites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.adminClient(t)

	mintedA, err := admin.MintInvite(ctx, shiftsdk.MintInviteRequest{Role: "user"})
	require.NoError(t, err)
	mintedB, err := admin.MintInvite(ctx, shiftsdk.MintInviteRequest{Role: "admin", NewTeam: true})
	require.NoError(t, err)

	list, err := admin.ListInvites(ctx)
	require.NoError(t, err)
	require.Len(t, list.Invites, 2)

	ids := []string{list.Invites[0].ID, list.Invites[1].ID}
	require.Contains(t, ids, mintedA.InviteID)
	require.Contains(t, ids, mintedB.InviteID)

	// Raw tokens never appear in listings
	for _, inv := range list.Invites {
		require.NotEqual(t, mintedA.InviteToken, inv.ID)
		require.NotEqual(t, mintedB.InviteToken, inv.ID)
	}
}

func TestRedeemRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.client().RedeemInvite(ctx, shiftsdk.RedeemInviteRequest{
		Token:    "definitely-not-an-invite",
		EmpID:    "emp-940",
		Password: "x",
	})
	requireAPIError(t, err, http.StatusBadRequest, "invalid_invite")

	_, err = env.client().RedeemInvite(ctx, shiftsdk.RedeemInviteRequest{
		EmpID:    "emp-940",
		Password: "x",
	})
	requireAPIError(t, err, http.StatusBadRequest, "invalid_request")
}
