// Package session implements an in-memory browser session manager.
// Session ids are opaque random tokens carried in an HttpOnly cookie;
// nothing about the session is stored client-side, so the cookie needs
// no signing.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/PythonistaGuild/twitchio-token-relay/internal/relay"
)

const (
	// CookieName is the browser cookie carrying the session id.
	CookieName = "relay_session"

	sessionIDBytes  = 32
	cleanupInterval = 5 * time.Minute
)

type session struct {
	userID    string
	expiresAt time.Time
}

// Manager tracks active browser sessions in memory. Sessions do not
// survive a restart; users simply log in again.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]session

	maxAge time.Duration
	secure bool
	stopGC chan struct{}
}

// NewManager creates a session manager and starts a background goroutine
// that reaps expired sessions. Secure marks cookies for HTTPS-only
// transport. Call Stop() to clean up the goroutine.
func NewManager(maxAge time.Duration, secure bool) *Manager {
	m := &Manager{
		sessions: make(map[string]session),
		maxAge:   maxAge,
		secure:   secure,
		stopGC:   make(chan struct{}),
	}
	go m.gcLoop()

	return m
}

// Create starts a session for a user and sets the cookie on the response.
func (m *Manager) Create(w http.ResponseWriter, userID string) {
	id := relay.RandomHex(sessionIDBytes)

	m.mu.Lock()
	m.sessions[id] = session{userID: userID, expiresAt: time.Now().Add(m.maxAge)}
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserID returns the user id for the request's session cookie, if a
// live session exists.
func (m *Manager) UserID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[cookie.Value]
	if !ok {
		return "", false
	}

	if time.Now().After(s.expiresAt) {
		delete(m.sessions, cookie.Value)
		return "", false
	}

	return s.userID, true
}

// Clear removes the request's session and expires the cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(CookieName); err == nil {
		m.mu.Lock()
		delete(m.sessions, cookie.Value)
		m.mu.Unlock()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Stop terminates the background cleanup goroutine.
func (m *Manager) Stop() {
	close(m.stopGC)
}

func (m *Manager) gcLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.stopGC:
			return
		}
	}
}

func (m *Manager) cleanup() {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		if now.After(s.expiresAt) {
			delete(m.sessions, id)
		}
	}
}
