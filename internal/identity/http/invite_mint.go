package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tallyworks/shiftclock/internal/identity/domain"
	"github.com/tallyworks/shiftclock/internal/identity/service"
	"github.com/tallyworks/shiftclock/pkg/httpx"
	"github.com/tallyworks/shiftclock/pkg/shiftsdk"
	"github.com/tallyworks/shiftclock/pkg/slogx"
)

type InviteMintHandler struct {
	InviteService *service.InviteService
}

// HandleMint creates a single-use, time-limited invite. Admin-only; the
// guard enforces that before this runs.
func (h *InviteMintHandler) HandleMint(w http.ResponseWriter, r *http.Request) {
	h.mint(w, r, false)
}

// HandlePermanent creates a reusable invite with no expiry. Admin roles are
// rejected by the service layer.
func (h *InviteMintHandler) HandlePermanent(w http.ResponseWriter, r *http.Request) {
	h.mint(w, r, true)
}

func (h *InviteMintHandler) mint(w http.ResponseWriter, r *http.Request, permanent bool) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	issuer, ok := UserFromContext(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var req shiftsdk.MintInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "Invalid JSON body")
		return
	}
	if req.Role == "" {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "role is required")
		return
	}

	token, invite, err := h.InviteService.Mint(ctx, issuer, service.MintRequest{
		Role:      domain.Role(req.Role),
		TeamID:    req.TeamID,
		TTL:       time.Duration(req.TTLHours) * time.Hour,
		Permanent: permanent,
		NewTeam:   req.NewTeam,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPermanentAdminInvite):
			httpx.WriteError(w, http.StatusBadRequest,
				"invalid_request", "Admin invites cannot be permanent")
		case errors.Is(err, service.ErrInvalidInviteRequest):
			httpx.WriteError(w, http.StatusBadRequest,
				"invalid_request", "Invalid invite parameters")
		default:
			log.Error("failed to mint invite", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError,
				"server_error", "Failed to create invite")
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, shiftsdk.InviteResponse{
		InviteToken: token,
		InviteID:    invite.ID,
		TeamID:      invite.TeamID,
		Role:        string(invite.Role),
		ExpiresAt:   invite.ExpiresAt,
	})
}
