package relay

import (
	"log/slog"
	"net/http"

	"github.com/PythonistaGuild/twitchio-token-relay/internal/models"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/twitch"
)

// AppSource resolves applications and users for flow authorization.
// The bbolt store satisfies it; tests substitute a mock.
type AppSource interface {
	ApplicationByURI(uri string) (*models.Application, error)
	ApplicationByID(id string) (*models.Application, error)
	ApplicationsByUser(userID string) ([]models.Application, error)
	UserByToken(token string) (*models.User, error)
	UserByID(id string) (*models.User, error)
	RecordAuth(id string) error
}

// callbackPath is the path prefix the provider redirects back to,
// appended with the application URI.
const callbackPath = "/oauth/redirect/"

// HandleAuthorize returns the GET /oauth/{uri} handler. It resolves the
// application, requires a live websocket connection and a non-empty
// scope parameter, issues a state token and redirects the browser to
// the provider authorize URL.
func HandleAuthorize(states *StateStore, registry *Registry, apps AppSource, logger *slog.Logger, domain string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uri := r.PathValue("uri")

		app, err := apps.ApplicationByURI(uri)
		if err != nil {
			http.Error(w, "Application not found or not valid", http.StatusNotFound)
			return
		}

		if registry.Lookup(app.ID) == nil {
			http.Error(w, "Application can not be authenticated currently. No websocket found.", http.StatusNotFound)
			return
		}

		q := r.URL.Query()

		scopes := q.Get("scopes")
		if scopes == "" {
			scopes = q.Get("scope")
		}

		if scopes == "" {
			http.Error(w, "Scopes is a required parameter which is missing", http.StatusBadRequest)
			return
		}

		force := q.Get("force_verify") != ""

		state := states.Issue()
		redirect := domain + callbackPath + app.URI

		logger.Info("authorization flow initiated",
			slog.String("application_id", app.ID),
			slog.String("uri", app.URI),
		)

		http.Redirect(w, r, twitch.AuthorizeURL(app.ClientID, redirect, scopes, state, force), http.StatusFound)
	}
}
