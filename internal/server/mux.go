// Package server provides HTTP server construction for the token relay.
package server

import (
	"log/slog"
	"net/http"

	"github.com/PythonistaGuild/twitchio-token-relay/internal/relay"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/session"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/store"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/twitch"
	"github.com/PythonistaGuild/twitchio-token-relay/internal/web"
)

// MuxConfig holds dependencies for building the HTTP mux.
type MuxConfig struct {
	States   *relay.StateStore
	Registry *relay.Registry
	Store    *store.Store
	Sessions *session.Manager
	Provider *twitch.Client
	Logger   *slog.Logger

	// Domain is the public base URL used to build redirect URIs.
	Domain string

	// AdminKeyHash guards the management API; empty disables it.
	AdminKeyHash string

	// TwitchClientID is the relay's own application id at the provider,
	// used for the dashboard login flow.
	TwitchClientID string
}

// NewMux builds the HTTP mux with the relay, dashboard and management
// endpoints. Literal segments win over wildcards, so /oauth/connect and
// /oauth/success route ahead of the /oauth/{uri} entry point.
func NewMux(cfg MuxConfig) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", web.HandleIndex())

	mux.HandleFunc("GET /oauth/connect", relay.HandleConnect(cfg.Registry, cfg.Store, cfg.Logger))
	mux.HandleFunc("GET /oauth/redirect/{uri}", relay.HandleCallback(cfg.States, cfg.Registry, cfg.Store, cfg.Logger, cfg.Domain))
	mux.HandleFunc("GET /oauth/success", relay.HandleSuccess())
	mux.HandleFunc("GET /oauth/status", relay.HandleStatus(cfg.Registry, cfg.Store, cfg.Sessions))
	mux.HandleFunc("GET /oauth/{uri}", relay.HandleAuthorize(cfg.States, cfg.Registry, cfg.Store, cfg.Logger, cfg.Domain))

	mux.HandleFunc("GET /users/login", web.HandleLogin(cfg.States, cfg.Sessions, cfg.TwitchClientID, cfg.Domain))
	mux.HandleFunc("GET /users/redirect", web.HandleLoginRedirect(cfg.States, cfg.Store, cfg.Sessions, cfg.Provider, cfg.Logger, cfg.Domain))
	mux.HandleFunc("GET /users/logout", web.HandleLogout(cfg.Sessions))

	mux.HandleFunc("POST /api/applications", web.RequireAdminKey(cfg.AdminKeyHash, web.HandleCreateApplication(cfg.Store, cfg.Logger)))
	mux.HandleFunc("GET /api/applications", web.RequireAdminKey(cfg.AdminKeyHash, web.HandleListApplications(cfg.Store)))
	mux.HandleFunc("DELETE /api/applications/{id}", web.RequireAdminKey(cfg.AdminKeyHash, web.HandleDeleteApplication(cfg.Store, cfg.Logger)))
	mux.HandleFunc("POST /api/users/{id}/token", web.RequireAdminKey(cfg.AdminKeyHash, web.HandleRotateUserToken(cfg.Store, cfg.Logger)))

	return mux
}
