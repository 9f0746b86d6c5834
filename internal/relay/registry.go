package relay

import (
	"sync"

	"github.com/PythonistaGuild/twitchio-token-relay/internal/errors"
)

// Registry maps application ids to their live relay channels. At most
// one entry exists per application id at any instant; a second
// registration is rejected rather than replacing the first, because a
// silent replacement would orphan the connected client mid-flow.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Channel
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Channel),
	}
}

// Register claims the application id for the given channel. It returns
// errors.ErrAlreadyConnected if a live entry exists. Under concurrent
// registration attempts for the same id exactly one caller succeeds.
func (r *Registry) Register(appID string, ch *Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[appID]; ok {
		return errors.ErrAlreadyConnected
	}
	r.entries[appID] = ch

	return nil
}

// Deregister removes the entry for the application id. Calling it on an
// absent id is a no-op, so cleanup paths can call it unconditionally.
func (r *Registry) Deregister(appID string) {
	r.mu.Lock()
	delete(r.entries, appID)
	r.mu.Unlock()
}

// Lookup returns the live channel for the application id, or nil.
func (r *Registry) Lookup(appID string) *Channel {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.entries[appID]
}
