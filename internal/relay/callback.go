package relay

import (
	"fmt"
	"log/slog"
	"net/http"
)

// successPage is the terminal page shown to the browser after a code
// has been handed to the application's websocket.
const successPage = `<div>Success. You can now close this page.</div>`

// HandleCallback returns the GET /oauth/redirect/{uri} handler: the
// provider callback. A provider error is surfaced to the browser
// without touching the state store or the registry. Otherwise the state
// token is consumed exactly once, the delivery payload is pushed onto
// the application's relay channel and the browser is redirected to the
// success page.
func HandleCallback(states *StateStore, registry *Registry, apps AppSource, logger *slog.Logger, domain string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uri := r.PathValue("uri")
		q := r.URL.Query()

		if errCode := q.Get("error"); errCode != "" {
			description := q.Get("error_description")
			logger.Warn("provider reported error on callback",
				slog.String("error", errCode),
				slog.String("uri", uri),
			)
			fmt.Fprintf(w, "Unable to Authenticate: %s", description)

			return
		}

		state := q.Get("state")
		if state == "" {
			http.Error(w, "Error: Missing state parameter.", http.StatusBadRequest)
			return
		}

		code := q.Get("code")
		if code == "" {
			http.Error(w, "Error: Missing code parameter.", http.StatusBadRequest)
			return
		}

		// Exactly one callback per token gets past this point; retried
		// or duplicated callbacks fail here and no second delivery can
		// occur.
		if !states.ValidateAndConsume(state) {
			http.Error(w, "Error: Incorrect state parameter provided or the request timed-out", http.StatusBadRequest)
			return
		}

		app, err := apps.ApplicationByURI(uri)
		if err != nil {
			http.Error(w, "Error: This application no longer exists.", http.StatusNotFound)
			return
		}

		ch := registry.Lookup(app.ID)
		if ch == nil {
			http.Error(w, "Error: Application can not be authenticated currently. No websocket found.", http.StatusNotFound)
			return
		}

		payload := Payload{
			Code:        code,
			GrantType:   GrantType,
			RedirectURI: domain + callbackPath + app.URI,
		}

		if err := ch.Deliver(payload); err != nil {
			// The socket vanished between lookup and delivery, or the
			// client stopped draining its queue.
			logger.Warn("delivery failed",
				slog.String("application_id", app.ID),
				slog.String("error", err.Error()),
			)
			http.Error(w, "Error: Application can not be authenticated currently. No websocket found.", http.StatusNotFound)

			return
		}

		// Best effort; the code is already delivered.
		if err := apps.RecordAuth(app.ID); err != nil {
			logger.Warn("recording authorization failed",
				slog.String("application_id", app.ID),
				slog.String("error", err.Error()),
			)
		}

		logger.Info("authorization code delivered",
			slog.String("application_id", app.ID),
			slog.String("uri", app.URI),
		)

		http.Redirect(w, r, "/oauth/success", http.StatusFound)
	}
}

// HandleSuccess returns the GET /oauth/success handler.
func HandleSuccess() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, successPage)
	}
}
