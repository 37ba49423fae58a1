// Package registry implements the authoritative peer/pseudonym membership
// table. It is registered first on the event bus so every other observer
// reacting to the same connect/disconnect event sees up-to-date membership.
package registry

import (
	"sync"
	"time"

	"github.com/quietroom/chatplane/internal/events"
)

// ClientInfo describes a live, registered peer.
type ClientInfo struct {
	Pseudonym string
	Gender    string
	Country   string
	ConnectAt time.Time
}

// Registry tracks the peer <-> pseudonym mapping for all currently
// connected clients.
type Registry struct {
	mu      sync.Mutex
	clients map[string]ClientInfo
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{clients: make(map[string]ClientInfo)}
}

// IsPseudonymAvailable reports whether no peer other than peer itself holds
// pseudonym.
func (r *Registry) IsPseudonymAvailable(peer, pseudonym string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for p, info := range r.clients {
		if p != peer && info.Pseudonym == pseudonym {
			return false
		}
	}
	return true
}

// PseudonymForPeer returns the pseudonym registered for peer, if any.
func (r *Registry) PseudonymForPeer(peer string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.clients[peer]
	if !ok {
		return "", false
	}
	return info.Pseudonym, true
}

// PeerForPseudonym returns the peer currently registered under pseudonym,
// if any.
func (r *Registry) PeerForPseudonym(pseudonym string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for p, info := range r.clients {
		if info.Pseudonym == pseudonym {
			return p, true
		}
	}
	return "", false
}

// ConnectionDuration returns how long peer has been connected, or false if
// peer is unknown.
func (r *Registry) ConnectionDuration(peer string) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.clients[peer]
	if !ok {
		return 0, false
	}
	return time.Since(info.ConnectAt), true
}

// ConnectedPseudonyms returns a snapshot of all currently connected
// pseudonyms, in unspecified order.
func (r *Registry) ConnectedPseudonyms() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.clients))
	for _, info := range r.clients {
		out = append(out, info.Pseudonym)
	}
	return out
}

// IsPeerConnected reports whether peer is currently registered.
func (r *Registry) IsPeerConnected(peer string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.clients[peer]
	return ok
}

// OnClientConnected inserts or overwrites the entry for the event's peer.
func (r *Registry) OnClientConnected(e events.ClientConnected) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[e.Peer] = ClientInfo{
		Pseudonym: e.Pseudonym,
		Gender:    e.Gender,
		Country:   e.Country,
		ConnectAt: time.Now(),
	}
}

// OnClientDisconnected removes the entry whose pseudonym matches the event.
// An absent entry is a no-op.
func (r *Registry) OnClientDisconnected(e events.ClientDisconnected) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for p, info := range r.clients {
		if info.Pseudonym == e.Pseudonym {
			delete(r.clients, p)
			return
		}
	}
}

// OnMessageSent is a no-op; the registry does not react to message traffic.
func (r *Registry) OnMessageSent(events.MessageSent) {}

// OnPrivateMessageSent is a no-op; the registry does not react to message traffic.
func (r *Registry) OnPrivateMessageSent(events.PrivateMessageSent) {}
