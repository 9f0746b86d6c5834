// Package web implements the browser-facing dashboard surface: Twitch
// login for dashboard users and the admin management API.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/PythonistaGuild/twitchio-token-relay/internal/models"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/relay"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/twitch"
)

// loginScopes is what the dashboard asks Twitch for: just enough to
// identify the user.
const loginScopes = "user:read:email"

const loginCallbackPath = "/users/redirect"

// UserStore is the slice of the store the login flow needs.
type UserStore interface {
	UpsertUser(user models.User) (*models.User, error)
	UserByID(id string) (*models.User, error)
}

// Sessions manages browser sessions for logged-in users.
type Sessions interface {
	Create(w http.ResponseWriter, userID string)
	UserID(r *http.Request) (string, bool)
	Clear(w http.ResponseWriter, r *http.Request)
}

// Exchanger talks to the identity provider during login.
type Exchanger interface {
	Exchange(ctx context.Context, code, redirectURI string) (*twitch.Token, error)
	Validate(ctx context.Context, accessToken string) (*twitch.Identity, error)
}

const indexPage = `<!doctype html>
<html>
<body>
<h1>TwitchIO Token Relay</h1>
<p><a href="/users/login">Login with Twitch</a> | <a href="/oauth/status">Connection status</a> | <a href="/users/logout">Logout</a></p>
</body>
</html>`

// HandleIndex serves the minimal dashboard landing page.
func HandleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, indexPage)
	}
}

// HandleLogin returns the GET /users/login handler. A logged-in user
// is sent straight back to the dashboard; anyone else is redirected to
// Twitch with a fresh state token.
func HandleLogin(states *relay.StateStore, sessions Sessions, clientID, domain string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sessions.UserID(r); ok {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		state := states.Issue()
		location := twitch.AuthorizeURL(clientID, domain+loginCallbackPath, loginScopes, state, false)
		http.Redirect(w, r, location, http.StatusFound)
	}
}

// HandleLoginRedirect returns the GET /users/redirect handler: the
// provider callback for the dashboard login. The code is exchanged and
// validated server-side, the Twitch identity is upserted into the
// store, and a session is started.
func HandleLoginRedirect(
	states *relay.StateStore,
	users UserStore,
	sessions Sessions,
	provider Exchanger,
	logger *slog.Logger,
	domain string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		if errParam := query.Get("error"); errParam != "" {
			http.Error(w, fmt.Sprintf("Unable to login: %s", errParam), http.StatusBadRequest)
			return
		}

		state := query.Get("state")
		code := query.Get("code")

		if state == "" || code == "" {
			http.Error(w, "Missing state or code parameter.", http.StatusBadRequest)
			return
		}

		if !states.ValidateAndConsume(state) {
			http.Error(w, "Error: Incorrect state parameter provided or the request timed-out", http.StatusBadRequest)
			return
		}

		token, err := provider.Exchange(r.Context(), code, domain+loginCallbackPath)
		if err != nil {
			logger.Warn("login code exchange failed", slog.String("error", err.Error()))
			http.Error(w, "Unable to login: code exchange failed.", http.StatusBadGateway)

			return
		}

		identity, err := provider.Validate(r.Context(), token.AccessToken)
		if err != nil {
			logger.Warn("login token validation failed", slog.String("error", err.Error()))
			http.Error(w, "Unable to login: token validation failed.", http.StatusBadGateway)

			return
		}

		user, err := users.UpsertUser(models.User{TwitchID: identity.UserID, Name: identity.Login})
		if err != nil {
			logger.Error("storing user failed",
				slog.String("twitch_id", identity.UserID),
				slog.String("error", err.Error()),
			)
			http.Error(w, "Unable to login: storage failure.", http.StatusInternalServerError)

			return
		}

		sessions.Create(w, user.ID)

		logger.Info("user logged in",
			slog.String("user_id", user.ID),
			slog.String("login", identity.Login),
		)

		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// HandleLogout drops the session and returns to the dashboard.
func HandleLogout(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.Clear(w, r)
		http.Redirect(w, r, "/", http.StatusFound)
	}
}
