package http

import (
	"net/http"
	"time"

	"github.com/tallyworks/shiftclock/internal/identity/domain"
	"github.com/tallyworks/shiftclock/internal/identity/service"
	"github.com/tallyworks/shiftclock/pkg/httpx"
	"github.com/tallyworks/shiftclock/pkg/shiftsdk"
)

// writeAuthResponse sends the session token plus the sanitized user, and
// mirrors the token into the session cookie for browser callers.
func writeAuthResponse(
	w http.ResponseWriter,
	cookieName string,
	secure bool,
	token string,
	user domain.User,
	sessions *service.SessionService,
) {
	ttl := sessions.TTL
	if ttl <= 0 {
		ttl = service.DefaultSessionTTL
	}
	httpx.SetSessionCookie(w, cookieName, token, time.Now().Add(ttl), secure)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, shiftsdk.AuthResponse{
		Token: token,
		User:  sdkUser(user),
	})
}

func sdkUser(u domain.User) shiftsdk.User {
	s := u.Sanitize()
	return shiftsdk.User{
		ID:        s.ID,
		EmpID:     s.EmpID,
		Name:      s.Name,
		Email:     s.Email,
		Role:      string(s.Role),
		TeamID:    s.TeamID,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
	}
}

func sdkInvite(inv domain.Invite) shiftsdk.Invite {
	return shiftsdk.Invite{
		ID:        inv.ID,
		TeamID:    inv.TeamID,
		Role:      string(inv.Role),
		ExpiresAt: inv.ExpiresAt,
		Used:      inv.Used,
		CreatedBy: inv.CreatedBy,
		CreatedAt: inv.CreatedAt,
	}
}
