package http

import (
	"net/http"

	"github.com/tallyworks/shiftclock/pkg/httpx"
)

type MeHandler struct{}

// ServeHTTP returns the caller resolved by the session guard. The guard has
// already rejected unauthenticated requests, so a missing context user here
// means a wiring bug, not a client fault.
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, sdkUser(user))
}
