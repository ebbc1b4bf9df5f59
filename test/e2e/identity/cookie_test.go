package identity_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tallyworks/shiftclock/pkg/shiftsdk"
)

// Browser-style clients never touch the token: login sets an HttpOnly
// cookie and subsequent requests ride on the jar.
func TestCookieBasedSession(t *testing.T) {
	env := newTestEnv(t)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	browser := &http.Client{Jar: jar}

	body, err := json.Marshal(shiftsdk.LoginRequest{
		Email:    adminEmail,
		Password: adminPassword,
		Role:     "admin",
	})
	require.NoError(t, err)

	resp, err := browser.Post(env.server.URL+"/v1/auth/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The session cookie was set and is HttpOnly
	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == testCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "login must set the session cookie")
	require.True(t, sessionCookie.HttpOnly)
	require.NotEmpty(t, sessionCookie.Value)

	// Cookie alone authenticates /me
	meResp, err := browser.Get(env.server.URL + "/v1/auth/me")
	require.NoError(t, err)
	defer meResp.Body.Close()
	require.Equal(t, http.StatusOK, meResp.StatusCode)

	var me shiftsdk.User
	require.NoError(t, json.NewDecoder(meResp.Body).Decode(&me))
	require.Equal(t, adminEmpID, me.EmpID)

	// Logout clears the cookie
	logoutResp, err := browser.Post(env.server.URL+"/v1/auth/logout", "application/json", nil)
	require.NoError(t, err)
	logoutResp.Body.Close()
	require.Equal(t, http.StatusNoContent, logoutResp.StatusCode)

	afterResp, err := browser.Get(env.server.URL + "/v1/auth/me")
	require.NoError(t, err)
	afterResp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, afterResp.StatusCode)
}
