package broadcast

import (
	"sync"
	"time"

	"github.com/quietroom/chatplane/internal/events"
)

// Private is the private message broadcaster (spec §4.4): one FIFO queue
// per recipient peer, drained on read and dropped on recipient disconnect.
type Private struct {
	mu       sync.Mutex
	cond     *sync.Cond
	registry peerRegistry
	queues   map[string][]PrivateMessage
}

// NewPrivate constructs an empty private message broadcaster bound to
// registry for presence checks.
func NewPrivate(registry peerRegistry) *Private {
	p := &Private{registry: registry, queues: make(map[string][]PrivateMessage)}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Normalize ensures peer has a (possibly empty) queue. It returns false and
// erases the queue if peer is not registered.
func (p *Private) Normalize(peer string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.registry.IsPeerConnected(peer) {
		delete(p.queues, peer)
		return false
	}
	if _, ok := p.queues[peer]; !ok {
		p.queues[peer] = nil
	}
	return true
}

// Next pops the oldest undelivered message for peer, waiting up to waitFor
// for one to arrive if the queue is currently empty.
func (p *Private) Next(peer string, waitFor time.Duration) (PrivateMessage, Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.registry.IsPeerConnected(peer) {
		delete(p.queues, peer)
		return PrivateMessage{}, StatusPeerMissing
	}

	if msg, ok := p.popFront(peer); ok {
		return msg, StatusOK
	}

	waitOnCond(p.cond, &p.mu, waitFor)

	if !p.registry.IsPeerConnected(peer) {
		delete(p.queues, peer)
		return PrivateMessage{}, StatusPeerMissing
	}

	if msg, ok := p.popFront(peer); ok {
		return msg, StatusOK
	}

	return PrivateMessage{}, StatusNoMessage
}

func (p *Private) popFront(peer string) (PrivateMessage, bool) {
	queue := p.queues[peer]
	if len(queue) == 0 {
		return PrivateMessage{}, false
	}
	msg := queue[0]
	p.queues[peer] = queue[1:]
	return msg, true
}

// OnClientConnected is a no-op; queues are established lazily by Normalize.
func (p *Private) OnClientConnected(events.ClientConnected) {}

// OnClientDisconnected drops the queue for every peer no longer registered,
// so undelivered private messages addressed to a peer that has since left
// are discarded rather than retained forever.
func (p *Private) OnClientDisconnected(events.ClientDisconnected) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for peer := range p.queues {
		if !p.registry.IsPeerConnected(peer) {
			delete(p.queues, peer)
		}
	}
}

// OnMessageSent is a no-op; public traffic has its own broadcaster.
func (p *Private) OnMessageSent(events.MessageSent) {}

// OnPrivateMessageSent enqueues the message on the recipient's queue and
// wakes every waiter.
func (p *Private) OnPrivateMessageSent(e events.PrivateMessageSent) {
	p.mu.Lock()
	p.queues[e.RecipientPeer] = append(p.queues[e.RecipientPeer], PrivateMessage{
		Author:  e.SenderPseudonym,
		Content: e.Content,
	})
	p.mu.Unlock()

	p.cond.Broadcast()
}
