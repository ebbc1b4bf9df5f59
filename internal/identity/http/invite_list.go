package http

import (
	"net/http"

	"github.com/tallyworks/shiftclock/internal/identity/service"
	"github.com/tallyworks/shiftclock/pkg/httpx"
	"github.com/tallyworks/shiftclock/pkg/shiftsdk"
	"github.com/tallyworks/shiftclock/pkg/slogx"
)

type InviteListHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP lists the invites visible to the calling admin: their team's
// invites plus teamless ones they minted. Raw tokens are never included;
// they were shown once at mint time.
func (h *InviteListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	caller, ok := UserFromContext(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	invites, err := h.InviteService.List(ctx, caller)
	if err != nil {
		log.Error("failed to list invites", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"server_error", "Failed to list invites")
		return
	}

	out := make([]shiftsdk.Invite, 0, len(invites))
	for _, inv := range invites {
		out = append(out, sdkInvite(inv))
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, shiftsdk.ListInvitesResponse{Invites: out})
}
