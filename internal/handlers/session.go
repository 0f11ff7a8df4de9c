package handlers

import (
	"net/http"

	"github.com/bobmcallan/krx-alert-portal/internal/view"
)

// SessionCookie names the cookie that keys a browser's view state.
const SessionCookie = "krx_session"

// acquireSession returns the caller's view state, issuing a new session
// cookie when the browser has none or its session expired.
func acquireSession(w http.ResponseWriter, r *http.Request, store *view.Store) *view.State {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}

	id, state, created := store.Acquire(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return state
}
