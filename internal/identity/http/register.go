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

type RegisterHandler struct {
	AuthService    *service.AuthService
	SessionService *service.SessionService
	CookieName     string
	SecureCookies  bool
}

// ServeHTTP self-registers a regular user in a fresh team and opens a
// session for them. Admin accounts never come through here.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req shiftsdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "Invalid JSON body")
		return
	}

	user, err := h.AuthService.Register(ctx, domain.RoleUser, domain.Registration{
		EmpID:    req.EmpID,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		TeamName: req.TeamName,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRegistration):
			httpx.WriteError(w, http.StatusBadRequest,
				"invalid_request", "emp_id and password are required")
		case errors.Is(err, service.ErrEmployeeIDTaken):
			httpx.WriteError(w, http.StatusConflict,
				"emp_id_taken", "Employee ID is already in use")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict,
				"email_taken", "Email is already in use")
		default:
			log.Error("registration failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError,
				"server_error", "Unable to process registration")
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
