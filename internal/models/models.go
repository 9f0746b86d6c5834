// Package models defines types shared across internal packages.
package models

// Application represents a registered third-party client that can hold
// one live websocket connection and receive authorization codes.
type Application struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ClientID  string `json:"client_id"`
	Name      string `json:"name"`
	URI       string `json:"uri"`
	Scopes    string `json:"scopes,omitempty"`
	BotScopes string `json:"bot_scopes,omitempty"`
	Auths     int    `json:"auths"`
}

// User represents a dashboard user authenticated via Twitch.
type User struct {
	ID       string `json:"id"`
	TwitchID string `json:"twitch_id"`
	Name     string `json:"name"`
}
