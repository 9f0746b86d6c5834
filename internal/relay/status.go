package relay

import (
	"encoding/json"
	"net/http"
)

// SessionReader is the slice of the session manager the status handler
// needs: who is calling, and the ability to drop a stale session.
type SessionReader interface {
	UserID(r *http.Request) (string, bool)
	Clear(w http.ResponseWriter, r *http.Request)
}

// HandleStatus returns the GET /oauth/status handler: a liveness check
// for the browser dashboard reporting whether any of the session
// user's applications currently holds a websocket connection.
func HandleStatus(registry *Registry, apps AppSource, sessions SessionReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := sessions.UserID(r)
		if !ok {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		if _, err := apps.UserByID(userID); err != nil {
			// The user vanished from the store; the session is stale.
			sessions.Clear(w, r)
			http.Redirect(w, r, "/", http.StatusFound)

			return
		}

		connected := false

		owned, err := apps.ApplicationsByUser(userID)
		if err == nil {
			for _, app := range owned {
				if registry.Lookup(app.ID) != nil {
					connected = true
					break
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"status": connected})
	}
}
