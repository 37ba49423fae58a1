package broadcast

import (
	"sync"
	"time"

	"github.com/quietroom/chatplane/internal/events"
)

// ClientEvents is the client-event broadcaster (spec §4.5): an append-only
// log of join/leave deltas with a per-peer read cursor, same shape as
// Messages. The synthetic SYNC frame is not stored here; it is assembled by
// the service facade directly from the registry's roster at subscription
// time.
type ClientEvents struct {
	mu       sync.Mutex
	cond     *sync.Cond
	registry peerRegistry
	log      []ClientEvent
	cursors  map[string]int
}

// NewClientEvents constructs an empty client-event broadcaster bound to
// registry for presence checks.
func NewClientEvents(registry peerRegistry) *ClientEvents {
	c := &ClientEvents{registry: registry, cursors: make(map[string]int)}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// NormalizeCursor ensures peer has a cursor clamped to the current log
// length, initializing it at the log's current end if absent. It returns
// false and erases the cursor if peer is not registered.
func (c *ClientEvents) NormalizeCursor(peer string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.registry.IsPeerConnected(peer) {
		delete(c.cursors, peer)
		return false
	}

	cur, ok := c.cursors[peer]
	if !ok {
		c.cursors[peer] = len(c.log)
		return true
	}
	if cur > len(c.log) {
		c.cursors[peer] = len(c.log)
	}
	return true
}

// Next returns the next undelivered client event for peer, waiting up to
// waitFor for one to appear if the cursor is already caught up.
func (c *ClientEvents) Next(peer string, waitFor time.Duration) (ClientEvent, Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.registry.IsPeerConnected(peer) {
		delete(c.cursors, peer)
		return ClientEvent{}, StatusPeerMissing
	}

	cur, ok := c.cursors[peer]
	if !ok {
		cur = len(c.log)
		c.cursors[peer] = cur
	}

	if cur < len(c.log) {
		rec := c.log[cur]
		c.cursors[peer] = cur + 1
		return rec, StatusOK
	}

	waitOnCond(c.cond, &c.mu, waitFor)

	if !c.registry.IsPeerConnected(peer) {
		delete(c.cursors, peer)
		return ClientEvent{}, StatusPeerMissing
	}

	cur, ok = c.cursors[peer]
	if !ok {
		return ClientEvent{}, StatusPeerMissing
	}

	if cur < len(c.log) {
		rec := c.log[cur]
		c.cursors[peer] = cur + 1
		return rec, StatusOK
	}

	return ClientEvent{}, StatusNoMessage
}

func (c *ClientEvents) append(kind ClientEventKind, pseudonym string) {
	if pseudonym == "" {
		return
	}

	c.mu.Lock()
	c.log = append(c.log, ClientEvent{Kind: kind, Pseudonym: pseudonym})
	c.mu.Unlock()

	c.cond.Broadcast()
}

// OnClientConnected appends an ADD delta.
func (c *ClientEvents) OnClientConnected(e events.ClientConnected) {
	c.append(ClientEventAdd, e.Pseudonym)
}

// OnClientDisconnected appends a REMOVE delta.
func (c *ClientEvents) OnClientDisconnected(e events.ClientDisconnected) {
	c.append(ClientEventRemove, e.Pseudonym)
}

// OnMessageSent is a no-op; public traffic has its own broadcaster.
func (c *ClientEvents) OnMessageSent(events.MessageSent) {}

// OnPrivateMessageSent is a no-op; private traffic has its own broadcaster.
func (c *ClientEvents) OnPrivateMessageSent(events.PrivateMessageSent) {}
