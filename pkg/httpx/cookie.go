package httpx

import (
	"net/http"
	"time"
)

// SessionTokenHeader is the fallback carrier for non-browser callers.
const SessionTokenHeader = "X-Session-Token"

// SetSessionCookie writes the session token as an HttpOnly, SameSite=Lax
// cookie. Secure should be true everywhere TLS terminates in front of us,
// i.e. everywhere but local dev.
func SetSessionCookie(w http.ResponseWriter, name, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

// ClearSessionCookie expires the session cookie immediately.
func ClearSessionCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

// SessionToken extracts the bearer session token from the request. The cookie
// takes precedence over the header when both are present.
func SessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get(SessionTokenHeader)
}
