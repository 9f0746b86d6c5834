// Package relay implements the authorization code broker: the
// anti-replay state store, the per-application connection registry,
// the relay channels carrying delivered codes, and the HTTP/websocket
// handlers orchestrating the flow. All state is in-memory; pending
// flows and live connections do not survive a restart.
package relay

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

const (
	// stateTTL is the absolute lifetime of a state token. A callback
	// arriving later than this fails validation regardless of anything
	// else.
	stateTTL = 300 * time.Second

	// stateTokenBytes is the number of random bytes used to generate
	// a state token (hex-encoded to twice this length).
	stateTokenBytes = 32

	// cleanupInterval controls how often expired tokens are reaped.
	cleanupInterval = time.Minute
)

// StateStore issues single-use, TTL-bounded anti-replay tokens binding
// an authorize redirect to its provider callback.
type StateStore struct {
	mu     sync.Mutex
	states map[string]time.Time // token -> absolute expiry
	stopGC chan struct{}
}

// NewStateStore creates an empty state store and starts a background
// goroutine that periodically removes expired tokens. Call Stop() to
// clean up the goroutine.
func NewStateStore() *StateStore {
	s := &StateStore{
		states: make(map[string]time.Time),
		stopGC: make(chan struct{}),
	}
	go s.gcLoop()

	return s
}

// Stop terminates the background cleanup goroutine.
func (s *StateStore) Stop() {
	close(s.stopGC)
}

func (s *StateStore) gcLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopGC:
			return
		}
	}
}

func (s *StateStore) cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for token, expiresAt := range s.states {
		if now.After(expiresAt) {
			delete(s.states, token)
		}
	}
}

// Issue generates an unguessable token and stores it with an absolute
// expiry of stateTTL.
func (s *StateStore) Issue() string {
	token := RandomHex(stateTokenBytes)

	s.mu.Lock()
	s.states[token] = time.Now().Add(stateTTL)
	s.mu.Unlock()

	return token
}

// ValidateAndConsume atomically consumes the token. It returns true if
// the token was present and unexpired; every subsequent call with the
// same token returns false. Safe under concurrent calls racing on the
// same token: exactly one caller sees true.
func (s *StateStore) ValidateAndConsume(token string) bool {
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.states[token]
	if !ok {
		return false
	}
	delete(s.states, token)

	return time.Now().Before(expiresAt)
}

// Delete invalidates a token early. Calling it on an absent token is a
// no-op.
func (s *StateStore) Delete(token string) {
	s.mu.Lock()
	delete(s.states, token)
	s.mu.Unlock()
}

// RandomHex generates a cryptographically random hex string of the given byte length.
func RandomHex(byteLen int) string {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}

	return hex.EncodeToString(b)
}
