package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/PythonistaGuild/twitchio-token-relay/internal/errors"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/models"
)

// adminKeyHeader carries the admin credential on management requests.
const adminKeyHeader = "X-Admin-Key"

// AdminStore is the slice of the store the management API needs.
type AdminStore interface {
	CreateApplication(app models.Application) (*models.Application, error)
	Applications() ([]models.Application, error)
	ApplicationByID(id string) (*models.Application, error)
	DeleteApplication(id string) error
	SetUserToken(userID string) (string, error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// RequireAdminKey guards a handler with the X-Admin-Key header checked
// against a bcrypt hash. An empty hash disables the whole API: every
// request is rejected rather than let a missing config open it up.
func RequireAdminKey(keyHash string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if keyHash == "" {
			writeAPIError(w, http.StatusNotFound, "Admin API is not enabled.")
			return
		}

		key := r.Header.Get(adminKeyHeader)
		if key == "" {
			writeAPIError(w, http.StatusUnauthorized, "Missing 'X-Admin-Key' header.")
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)) != nil {
			writeAPIError(w, http.StatusUnauthorized, "Invalid admin key.")
			return
		}

		next(w, r)
	}
}

type createApplicationRequest struct {
	UserID    string `json:"user_id"`
	ClientID  string `json:"client_id"`
	Name      string `json:"name"`
	URI       string `json:"uri"`
	Scopes    string `json:"scopes"`
	BotScopes string `json:"bot_scopes"`
}

// HandleCreateApplication returns the POST /api/applications handler.
func HandleCreateApplication(store AdminStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createApplicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeAPIError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}

		if req.UserID == "" || req.URI == "" {
			writeAPIError(w, http.StatusBadRequest, "'user_id' and 'uri' are required.")
			return
		}

		app, err := store.CreateApplication(models.Application{
			UserID:    req.UserID,
			ClientID:  req.ClientID,
			Name:      req.Name,
			URI:       req.URI,
			Scopes:    req.Scopes,
			BotScopes: req.BotScopes,
		})
		if err != nil {
			writeAPIError(w, http.StatusConflict, err.Error())
			return
		}

		logger.Info("application created",
			slog.String("application_id", app.ID),
			slog.String("uri", app.URI),
		)

		writeJSON(w, http.StatusCreated, app)
	}
}

// HandleListApplications returns the GET /api/applications handler.
func HandleListApplications(store AdminStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apps, err := store.Applications()
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, "Listing applications failed.")
			return
		}

		if apps == nil {
			apps = []models.Application{}
		}

		writeJSON(w, http.StatusOK, apps)
	}
}

// HandleDeleteApplication returns the DELETE /api/applications/{id} handler.
func HandleDeleteApplication(store AdminStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		if _, err := store.ApplicationByID(id); err != nil {
			writeAPIError(w, http.StatusNotFound, "Application not found.")
			return
		}

		if err := store.DeleteApplication(id); err != nil {
			writeAPIError(w, http.StatusInternalServerError, "Deleting application failed.")
			return
		}

		logger.Info("application deleted", slog.String("application_id", id))

		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleRotateUserToken returns the POST /api/users/{id}/token handler.
// The raw token appears in the response exactly once; only its hash is
// kept server-side.
func HandleRotateUserToken(store AdminStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		token, err := store.SetUserToken(id)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				writeAPIError(w, http.StatusNotFound, "User not found.")
				return
			}

			writeAPIError(w, http.StatusInternalServerError, "Rotating token failed.")

			return
		}

		logger.Info("user token rotated", slog.String("user_id", id))

		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}
