package relay

import (
	"context"
	"sync"

	"github.com/PythonistaGuild/twitchio-token-relay/internal/errors"
)

// channelBuffer is the relay channel capacity. One payload is produced
// per successful callback, so the buffer only fills if an application
// stops reading its socket for dozens of consecutive flows.
const channelBuffer = 64

// GrantType is the grant type stamped on every delivery payload.
const GrantType = "authorization_code"

// Payload is the authorization code bundle forwarded to an application
// over its websocket, one JSON message per successful callback.
type Payload struct {
	Code        string `json:"code"`
	GrantType   string `json:"grant_type"`
	RedirectURI string `json:"redirect_uri"`
}

// Channel is a FIFO handoff queue between the callback handler and the
// registered socket stream. Its lifetime matches the registry entry it
// backs.
type Channel struct {
	payloads chan Payload
	done     chan struct{}
	once     sync.Once
}

// NewChannel creates an open relay channel.
func NewChannel() *Channel {
	return &Channel{
		payloads: make(chan Payload, channelBuffer),
		done:     make(chan struct{}),
	}
}

// Deliver enqueues a payload without blocking. It returns
// errors.ErrChannelClosed after Shutdown and errors.ErrChannelFull when
// the buffer is exhausted.
func (c *Channel) Deliver(p Payload) error {
	select {
	case <-c.done:
		return errors.ErrChannelClosed
	default:
	}

	select {
	case c.payloads <- p:
		return nil
	case <-c.done:
		return errors.ErrChannelClosed
	default:
		return errors.ErrChannelFull
	}
}

// Receive blocks until a payload is available, the channel is shut
// down, or ctx is cancelled. Payloads are returned in Deliver order.
// Payloads already queued are drained before the shutdown signal is
// reported.
func (c *Channel) Receive(ctx context.Context) (Payload, error) {
	// Drain queued payloads first so a shutdown racing with a delivery
	// does not drop a payload the deliverer saw accepted.
	select {
	case p := <-c.payloads:
		return p, nil
	default:
	}

	select {
	case p := <-c.payloads:
		return p, nil
	case <-c.done:
		return Payload{}, errors.ErrChannelClosed
	case <-ctx.Done():
		return Payload{}, ctx.Err()
	}
}

// Shutdown closes the channel, unblocking any pending Receive with
// errors.ErrChannelClosed. Idempotent.
func (c *Channel) Shutdown() {
	c.once.Do(func() {
		close(c.done)
	})
}
