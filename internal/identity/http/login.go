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

type LoginHandler struct {
	AuthService    *service.AuthService
	SessionService *service.SessionService
	CookieName     string
	SecureCookies  bool
}

// ServeHTTP authenticates a password credential and opens a session. The
// token is returned in the body for header-based clients and set as an
// HttpOnly cookie for browsers. Every caller-correctable failure is the same
// 401 so the endpoint reveals nothing about which identities exist.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req shiftsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "Invalid JSON body")
		return
	}

	user, err := h.AuthService.Login(ctx, service.LoginRequest{
		Email:    req.Email,
		EmpID:    req.EmpID,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidLoginRequest):
			httpx.WriteError(w, http.StatusBadRequest,
				"invalid_request", "Missing or malformed login fields")
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized,
				"invalid_credentials", "Invalid credentials")
		default:
			log.Error("login failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError,
				"server_error", "Unable to process login")
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
