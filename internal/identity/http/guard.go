package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/tallyworks/shiftclock/internal/identity/domain"
	"github.com/tallyworks/shiftclock/internal/identity/service"
	"github.com/tallyworks/shiftclock/pkg/httpx"
	"github.com/tallyworks/shiftclock/pkg/slogx"
)

type userCtxKey struct{}

// Guard is the per-request access control decision point. Every protected
// route resolves the caller through the Session Manager here, before any
// handler body runs. Handlers never trust a client-supplied user id.
type Guard struct {
	Sessions   *service.SessionService
	CookieName string
}

// RequireSession resolves the session token (cookie first, then the
// X-Session-Token header) and injects the caller into the request context.
// Missing, unknown and expired tokens all produce the same 401; store
// failures surface as 500, never as unauthenticated.
func (g *Guard) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := slogx.FromContext(ctx)

		token := httpx.SessionToken(r, g.CookieName)
		user, err := g.Sessions.Resolve(ctx, token)
		if err != nil {
			if errors.Is(err, service.ErrSessionInvalid) {
				writeUnauthenticated(w)
				return
			}
			log.Error("session resolution failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError,
				"server_error", "Unable to resolve session")
			return
		}

		ctx = context.WithValue(ctx, userCtxKey{}, user)
		ctx = context.WithValue(ctx, httpx.CtxKeyUserID, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects non-admin callers with 403. Chain it after
// RequireSession; an unauthenticated request still gets 401.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			writeUnauthenticated(w)
			return
		}
		if !user.IsAdmin() {
			writeForbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext returns the caller resolved by RequireSession.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(domain.User)
	return user, ok
}

// SameTeamOrAdmin reports whether the caller may touch a resource scoped to
// resourceTeamID: same team, or admin.
func SameTeamOrAdmin(caller domain.User, resourceTeamID string) bool {
	return caller.IsAdmin() || caller.TeamID == resourceTeamID
}

// SelfOrAdmin reports whether the caller may touch a resource owned by
// resourceUserID: themselves, or admin.
func SelfOrAdmin(caller domain.User, resourceUserID string) bool {
	return caller.IsAdmin() || caller.ID == resourceUserID
}

// writeUnauthenticated deliberately says nothing about why: absent, invalid
// and expired sessions are indistinguishable to the caller.
func writeUnauthenticated(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized,
		"unauthenticated", "Authentication required")
}

func writeForbidden(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusForbidden,
		"forbidden", "Insufficient privileges")
}
