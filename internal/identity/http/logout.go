package http

import (
	"net/http"

	"github.com/tallyworks/shiftclock/internal/identity/service"
	"github.com/tallyworks/shiftclock/pkg/httpx"
	"github.com/tallyworks/shiftclock/pkg/slogx"
)

type LogoutHandler struct {
	SessionService *service.SessionService
	CookieName     string
	SecureCookies  bool
}

// ServeHTTP destroys the caller's session and clears the session cookie.
// Idempotent: logging out an already-dead session is still a 204.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := httpx.SessionToken(r, h.CookieName)
	if err := h.SessionService.Destroy(ctx, token); err != nil {
		log.Error("failed to destroy session", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			"server_error", "Unable to destroy session")
		return
	}

	httpx.ClearSessionCookie(w, h.CookieName, h.SecureCookies)
	w.WriteHeader(http.StatusNoContent)
}
