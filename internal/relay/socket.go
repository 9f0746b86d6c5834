package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"

	apperrors "github.com/PythonistaGuild/twitchio-token-relay/internal/errors"
)

// socketConn abstracts the websocket connection so the stream loop can
// be tested without a real server. *websocket.Conn satisfies this
// interface.
type socketConn interface {
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

// writeError emits a JSON error body in the shape socket clients
// expect before the connection is upgraded.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// HandleConnect returns the GET /oauth/connect handler: the application
// websocket. The handshake requires an Authorization bearer credential
// and an Application-ID header; the authenticated user must own the
// claimed application, and the application must not already hold a
// connection. All checks happen before the upgrade so rejections carry
// proper status codes.
//
// Whatever ends the stream loop, the registry entry is removed before
// the handler returns. A leaked entry would permanently block the
// application from reconnecting, so deregistration is deferred rather
// than left to individual exit paths.
func HandleConnect(registry *Registry, apps AppSource, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized. No Authorization header present.")
			return
		}
		token = strings.TrimPrefix(token, "Bearer ")

		appID := r.Header.Get("Application-ID")
		if appID == "" {
			writeError(w, http.StatusBadRequest, "Missing 'Application-ID' header.")
			return
		}

		user, err := apps.UserByToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized. No user matches the provided token.")
			return
		}

		app, err := apps.ApplicationByID(appID)
		if err != nil || app.UserID != user.ID {
			writeError(w, http.StatusBadRequest, "Incorrect Application-ID passed.")
			return
		}

		ch := NewChannel()
		if err := registry.Register(appID, ch); err != nil {
			writeError(w, http.StatusConflict, "The Application-ID already has an associated websocket connected.")
			return
		}
		defer registry.Deregister(appID)
		defer ch.Shutdown()

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			logger.Warn("websocket accept failed",
				slog.String("application_id", appID),
				slog.String("error", err.Error()),
			)

			return
		}

		logger.Info("application connected",
			slog.String("application_id", appID),
			slog.String("user_id", user.ID),
		)

		// CloseRead processes control frames and cancels the context
		// when the client disconnects; the server never expects
		// inbound data messages.
		ctx := conn.CloseRead(r.Context())

		if err := streamPayloads(ctx, conn, ch); err != nil {
			logger.Warn("websocket stream ended",
				slog.String("application_id", appID),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("application disconnected", slog.String("application_id", appID))
		}
	}
}

// streamPayloads forwards relay channel payloads to the client until
// the channel shuts down, the context is cancelled (client gone or
// server stopping), or a write fails. A shutdown ends the stream with
// a clean close; everything else is reported to the caller.
func streamPayloads(ctx context.Context, conn socketConn, ch *Channel) error {
	for {
		payload, err := ch.Receive(ctx)
		if err != nil {
			if errors.Is(err, apperrors.ErrChannelClosed) {
				_ = conn.Close(websocket.StatusNormalClosure, "relay channel closed")
				return nil
			}

			return nil // context cancelled: client gone or server stopping
		}

		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshalling payload: %w", err)
		}

		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			return fmt.Errorf("writing payload: %w", err)
		}
	}
}
