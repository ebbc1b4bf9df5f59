package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tallyworks/shiftclock/internal/identity/domain"
	"github.com/tallyworks/shiftclock/internal/identity/service"
	"github.com/tallyworks/shiftclock/pkg/httpx"
	"github.com/tallyworks/shiftclock/pkg/shiftsdk"
	"github.com/tallyworks/shiftclock/pkg/slogx"
)

type InviteRedeemHandler struct {
	InviteService  *service.InviteService
	SessionService *service.SessionService
	CookieName     string
	SecureCookies  bool
}

// ServeHTTP redeems an invite token, creating the invited user and opening a
// session for them. Unknown, expired and consumed tokens are each rejected
// with a descriptive code but no detail beyond that.
func (h *InviteRedeemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req shiftsdk.RedeemInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "Invalid JSON body")
		return
	}
	if req.Token == "" {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "token is required")
		return
	}

	user, err := h.InviteService.Redeem(ctx, req.Token, domain.Registration{
		EmpID:    req.EmpID,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		TeamName: req.TeamName,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			httpx.WriteError(w, http.StatusBadRequest,
				"invalid_invite", "Invite not found")
		case errors.Is(err, service.ErrInviteExpired):
			httpx.WriteError(w, http.StatusBadRequest,
				"invite_expired", "Invite has expired")
		case errors.Is(err, service.ErrInviteUsed):
			httpx.WriteError(w, http.StatusBadRequest,
				"invite_used", "Invite has already been used")
		case errors.Is(err, service.ErrTeamFull):
			httpx.WriteError(w, http.StatusConflict,
				"team_full", "Team is at its member limit")
		case errors.Is(err, service.ErrEmployeeIDTaken):
			httpx.WriteError(w, http.StatusConflict,
				"emp_id_taken", "Employee ID is already in use")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict,
				"email_taken", "Email is already in use")
		case errors.Is(err, service.ErrInvalidInviteRequest):
			httpx.WriteError(w, http.StatusBadRequest,
				"invalid_request", "Invalid redemption request")
		default:
			log.Error("failed to redeem invite", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError,
				"server_error", "Failed to redeem invite")
		}
		return
	}

	token, err := h.SessionService.Create(ctx, user.ID)
	if err != nil {
		log.Error("failed to create session", "user_id", user.ID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"server_error", "Unable to create session")
		return
	}

	writeAuthResponse(w, h.CookieName, h.SecureCookies, token, user, h.SessionService)
}
