package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tallyworks/shiftclock/internal/identity/service"
	"github.com/tallyworks/shiftclock/internal/identity/store"
	"github.com/tallyworks/shiftclock/pkg/httpx"
	"github.com/tallyworks/shiftclock/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	cookieName    string
	secureCookies bool
	buildVersion  string
	startTime     time.Time
	logger        *slog.Logger

	store          store.Store
	guard          *Guard
	AuthService    *service.AuthService
	SessionService *service.SessionService
	InviteService  *service.InviteService
}

func NewRouter(
	cookieName string,
	secureCookies bool,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		cookieName:    cookieName,
		secureCookies: secureCookies,
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		store:         st,
		logger:        logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.guard = &Guard{
		Sessions:   r.SessionService,
		CookieName: r.cookieName,
	}

	r.registerAuth()
	r.registerInvites()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	loginHandler := &LoginHandler{
		AuthService:    r.AuthService,
		SessionService: r.SessionService,
		CookieName:     r.cookieName,
		SecureCookies:  r.secureCookies,
	}
	registerHandler := &RegisterHandler{
		AuthService:    r.AuthService,
		SessionService: r.SessionService,
		CookieName:     r.cookieName,
		SecureCookies:  r.secureCookies,
	}
	logoutHandler := &LogoutHandler{
		SessionService: r.SessionService,
		CookieName:     r.cookieName,
		SecureCookies:  r.secureCookies,
	}

	// POST /login - strict rate limit by IP (credential guessing surface)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /register - strict rate limit by IP (public account creation)
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /logout - authenticated, moderate rate limit by session
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			r.guard.RequireSession,
			httpx.RateLimitBySession(httpx.ModerateLimit),
		),
	)

	// GET /me - authenticated, lenient rate limit by session
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(&MeHandler{},
			r.guard.RequireSession,
			httpx.RateLimitBySession(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerInvites() {
	mintHandler := &InviteMintHandler{InviteService: r.InviteService}
	listHandler := &InviteListHandler{InviteService: r.InviteService}
	redeemHandler := &InviteRedeemHandler{
		InviteService:  r.InviteService,
		SessionService: r.SessionService,
		CookieName:     r.cookieName,
		SecureCookies:  r.secureCookies,
	}

	// Admin-only mint and list operations - moderate rate limit by session
	r.Mux.Handle("POST /v1/invites",
		httpx.Chain(http.HandlerFunc(mintHandler.HandleMint),
			r.guard.RequireSession,
			r.guard.RequireAdmin,
			httpx.RateLimitBySession(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/invites/permanent",
		httpx.Chain(http.HandlerFunc(mintHandler.HandlePermanent),
			r.guard.RequireSession,
			r.guard.RequireAdmin,
			httpx.RateLimitBySession(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/invites",
		httpx.Chain(listHandler,
			r.guard.RequireSession,
			r.guard.RequireAdmin,
			httpx.RateLimitBySession(httpx.ModerateLimit),
		),
	)

	// POST /invites/redeem - strict rate limit by IP (public signup endpoint)
	r.Mux.Handle("POST /v1/invites/redeem",
		httpx.Chain(redeemHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may
	// poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
