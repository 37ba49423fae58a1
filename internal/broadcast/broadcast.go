// Package broadcast implements the three append-only/queue-backed fan-out
// structures that serve the streaming RPCs: the public message history, the
// private per-recipient queues, and the client join/leave event log. Each
// type is a monitor: one mutex, one condition variable, all mutation and
// waiting performed under that single lock, so the invariants relating
// cursor position to history length are always observed atomically.
package broadcast

import (
	"sync"
	"time"

	"github.com/quietroom/chatplane/internal/events"
)

// peerRegistry is the subset of the client registry the broadcasters need:
// presence checks only, so they never need to know about pseudonyms.
type peerRegistry interface {
	IsPeerConnected(peer string) bool
}

// Status is the outcome of a bounded-wait read against a broadcaster.
type Status int

const (
	// StatusOK means a record was returned.
	StatusOK Status = iota
	// StatusNoMessage means the wait elapsed with nothing new to deliver.
	StatusNoMessage
	// StatusPeerMissing means the peer is no longer registered.
	StatusPeerMissing
)

// Message is a public broadcast record.
type Message struct {
	Author  string
	Content string
}

// PrivateMessage is a directed record delivered to exactly one recipient.
type PrivateMessage struct {
	Author  string
	Content string
}

// ClientEventKind distinguishes membership deltas from the synthetic sync
// frame the service facade assembles separately.
type ClientEventKind int

const (
	// ClientEventAdd records a peer joining.
	ClientEventAdd ClientEventKind = iota
	// ClientEventRemove records a peer leaving.
	ClientEventRemove
)

// ClientEvent is a single membership delta.
type ClientEvent struct {
	Kind      ClientEventKind
	Pseudonym string
}

// Messages is the public message broadcaster (spec §4.3): append-only
// history plus a per-peer read cursor.
type Messages struct {
	mu       sync.Mutex
	cond     *sync.Cond
	registry peerRegistry
	history  []Message
	cursors  map[string]int
}

// NewMessages constructs an empty public message broadcaster bound to
// registry for presence checks.
func NewMessages(registry peerRegistry) *Messages {
	m := &Messages{registry: registry, cursors: make(map[string]int)}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// NormalizeCursor ensures peer has a cursor clamped to the current history
// length, initializing it at the history's current end if absent. It
// returns false and erases the cursor if peer is not registered.
func (m *Messages) NormalizeCursor(peer string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.registry.IsPeerConnected(peer) {
		delete(m.cursors, peer)
		return false
	}

	cur, ok := m.cursors[peer]
	if !ok {
		m.cursors[peer] = len(m.history)
		return true
	}
	if cur > len(m.history) {
		m.cursors[peer] = len(m.history)
	}
	return true
}

// Next returns the next undelivered record for peer, waiting up to waitFor
// for one to appear if the cursor is already caught up.
func (m *Messages) Next(peer string, waitFor time.Duration) (Message, Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.registry.IsPeerConnected(peer) {
		delete(m.cursors, peer)
		return Message{}, StatusPeerMissing
	}

	cur, ok := m.cursors[peer]
	if !ok {
		cur = len(m.history)
		m.cursors[peer] = cur
	}

	if cur < len(m.history) {
		rec := m.history[cur]
		m.cursors[peer] = cur + 1
		return rec, StatusOK
	}

	waitOnCond(m.cond, &m.mu, waitFor)

	if !m.registry.IsPeerConnected(peer) {
		delete(m.cursors, peer)
		return Message{}, StatusPeerMissing
	}

	cur, ok = m.cursors[peer]
	if !ok {
		return Message{}, StatusPeerMissing
	}

	if cur < len(m.history) {
		rec := m.history[cur]
		m.cursors[peer] = cur + 1
		return rec, StatusOK
	}

	return Message{}, StatusNoMessage
}

// OnClientConnected is a no-op; new cursors are established lazily.
func (m *Messages) OnClientConnected(events.ClientConnected) {}

// OnClientDisconnected is a no-op; cursors are cleaned up by Next/Normalize
// noticing the peer is gone.
func (m *Messages) OnClientDisconnected(events.ClientDisconnected) {}

// OnMessageSent appends the event to history and wakes every waiter.
func (m *Messages) OnMessageSent(e events.MessageSent) {
	m.mu.Lock()
	m.history = append(m.history, Message{Author: e.Pseudonym, Content: e.Content})
	m.mu.Unlock()

	m.cond.Broadcast()
}

// OnPrivateMessageSent is a no-op; private traffic has its own broadcaster.
func (m *Messages) OnPrivateMessageSent(events.PrivateMessageSent) {}

// waitOnCond waits on cond for at most waitFor. sync.Cond has no native
// timeout, so a timer wakes it if nothing signals first; the caller
// re-validates state after returning, exactly as a condition variable
// wait_for requires.
func waitOnCond(cond *sync.Cond, mu *sync.Mutex, waitFor time.Duration) {
	// The timer takes mu before signalling, so it cannot fire in the gap
	// before cond.Wait has registered this waiter and lose the wakeup.
	timer := time.AfterFunc(waitFor, func() {
		mu.Lock()
		cond.Broadcast()
		mu.Unlock()
	})
	defer timer.Stop()
	cond.Wait()
}
