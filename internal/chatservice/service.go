// Package chatservice binds the registry, broadcasters, event bus, and
// validation chain into the six RPC endpoint contracts of spec §4.7,
// grounded on the original chat_service_impl.cpp control flow and on the
// teacher's inbound/outbound mapping idiom.
package chatservice

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quietroom/chatplane/internal/broadcast"
	"github.com/quietroom/chatplane/internal/events"
	"github.com/quietroom/chatplane/internal/registry"
	"github.com/quietroom/chatplane/internal/validation"
)

// DefaultWaitFor is the bounded-wait quantum used by every streaming loop,
// per spec §5's default of 200ms.
const DefaultWaitFor = 200 * time.Millisecond

// Service is the facade binding the domain components to endpoint
// contracts.
type Service struct {
	registry     *registry.Registry
	bus          *events.Bus
	messages     *broadcast.Messages
	private      *broadcast.Private
	clientEvents *broadcast.ClientEvents
	validators   *validation.Chain
	log          *zerolog.Logger
	waitFor      time.Duration
}

// New builds the service facade over its collaborators. waitFor, if zero,
// defaults to DefaultWaitFor.
func New(
	reg *registry.Registry,
	bus *events.Bus,
	messages *broadcast.Messages,
	private *broadcast.Private,
	clientEvents *broadcast.ClientEvents,
	validators *validation.Chain,
	log *zerolog.Logger,
	waitFor time.Duration,
) *Service {
	if waitFor <= 0 {
		waitFor = DefaultWaitFor
	}
	return &Service{
		registry:     reg,
		bus:          bus,
		messages:     messages,
		private:      private,
		clientEvents: clientEvents,
		validators:   validators,
		log:          log,
		waitFor:      waitFor,
	}
}

// ConnectResult is the outcome of Connect.
type ConnectResult struct {
	Accepted bool
	Message  string
	Roster   []string
}

// Connect admits peer under pseudonym, or rejects it as a business-level
// response rather than a transport error (Design Notes: "accepted=false"
// is a successful call, not a fault).
func (s *Service) Connect(peer, pseudonym, gender, country string) ConnectResult {
	if pseudonym == "" {
		return ConnectResult{Accepted: false, Message: "pseudonym is required"}
	}
	if peer == "" {
		return ConnectResult{Accepted: false, Message: "peer information is required"}
	}

	if !s.registry.IsPseudonymAvailable(peer, pseudonym) {
		s.log.Debug().Str("pseudonym", pseudonym).Msg("connect rejected: pseudonym in use")
		return ConnectResult{Accepted: false, Message: fmt.Sprintf("pseudonym %q is already in use", pseudonym)}
	}

	roster := s.registry.ConnectedPseudonyms()
	message := fmt.Sprintf("New client '%s' is now connected", pseudonym)

	s.bus.NotifyClientConnected(events.ClientConnected{
		Peer:      peer,
		Pseudonym: pseudonym,
		Gender:    gender,
		Country:   country,
	})

	s.log.Info().Str("pseudonym", pseudonym).Msg("client connected")
	return ConnectResult{Accepted: true, Message: message, Roster: roster}
}

// Disconnect notifies the system that peer has gone away. It is idempotent:
// an unknown peer is a no-op, not an error. The pseudonym the client stated
// in its request is advisory only (Open Question decision, SPEC_FULL.md);
// the pseudonym and duration used in the published event always come from
// the registry's record for peer.
func (s *Service) Disconnect(peer string) {
	pseudonym, ok := s.registry.PseudonymForPeer(peer)
	if !ok {
		return
	}

	duration, _ := s.registry.ConnectionDuration(peer)

	s.bus.NotifyClientDisconnected(events.ClientDisconnected{
		Peer:               peer,
		Pseudonym:          pseudonym,
		ConnectionDuration: duration,
	})

	s.log.Info().Str("pseudonym", pseudonym).Dur("connected_for", duration).Msg("client disconnected")
}

// SendMessage validates and publishes a message. If recipientPseudonym is
// non-empty, the message is sent privately; otherwise it is broadcast to
// the room.
func (s *Service) SendMessage(peer, content, recipientPseudonym string) *Error {
	pseudonym, ok := s.registry.PseudonymForPeer(peer)
	if !ok {
		return newError(CodePermissionDenied, "client not connected")
	}

	ctx := validation.Context{
		Peer:      peer,
		Pseudonym: pseudonym,
		Content:   content,
		Timestamp: time.Now(),
	}

	if res := s.validators.Validate(ctx); !res.Valid {
		return newError(validationErrorCode(res.Code), res.Message)
	}

	if recipientPseudonym == "" {
		s.bus.NotifyMessageSent(events.MessageSent{
			Peer:      peer,
			Pseudonym: pseudonym,
			Content:   content,
		})
		return nil
	}

	recipientPeer, ok := s.registry.PeerForPseudonym(recipientPseudonym)
	if !ok {
		return newError(CodeNotFound, fmt.Sprintf("recipient %q not found", recipientPseudonym))
	}

	s.bus.NotifyPrivateMessageSent(events.PrivateMessageSent{
		SenderPeer:         peer,
		SenderPseudonym:    pseudonym,
		RecipientPeer:      recipientPeer,
		RecipientPseudonym: recipientPseudonym,
		Content:            content,
	})
	return nil
}

func validationErrorCode(code validation.Code) Code {
	switch code {
	case validation.CodeResourceExhausted:
		return CodeResourceExhausted
	default:
		return CodeInvalidArgument
	}
}

// SubscribeMessages streams public broadcast messages to peer until ctx is
// cancelled, peer leaves the registry, or emit fails.
func (s *Service) SubscribeMessages(ctx context.Context, peer string, emit func(broadcast.Message) error) *Error {
	if !s.registry.IsPeerConnected(peer) {
		return newError(CodePermissionDenied, "client not connected")
	}
	if !s.messages.NormalizeCursor(peer) {
		return newError(CodePermissionDenied, "client not connected")
	}

	for {
		if ctx.Err() != nil {
			return newError(CodeCancelled, "subscription cancelled")
		}

		msg, status := s.messages.Next(peer, s.waitFor)
		switch status {
		case broadcast.StatusPeerMissing:
			return newError(CodePermissionDenied, "client not connected")
		case broadcast.StatusNoMessage:
			continue
		}

		if err := emit(msg); err != nil {
			return newError(CodeUnknown, "failed to write to client stream")
		}
	}
}

// SubscribePrivateMessages streams directed messages to peer, symmetric to
// SubscribeMessages but with no initial snapshot.
func (s *Service) SubscribePrivateMessages(ctx context.Context, peer string, emit func(broadcast.PrivateMessage) error) *Error {
	if !s.registry.IsPeerConnected(peer) {
		return newError(CodePermissionDenied, "client not connected")
	}
	if !s.private.Normalize(peer) {
		return newError(CodePermissionDenied, "client not connected")
	}

	for {
		if ctx.Err() != nil {
			return newError(CodeCancelled, "subscription cancelled")
		}

		msg, status := s.private.Next(peer, s.waitFor)
		switch status {
		case broadcast.StatusPeerMissing:
			return newError(CodePermissionDenied, "client not connected")
		case broadcast.StatusNoMessage:
			continue
		}

		if err := emit(msg); err != nil {
			return newError(CodeUnknown, "failed to write to client stream")
		}
	}
}

// ClientEventFrame is what SubscribeClientEvents emits: either the
// synthetic SYNC snapshot (Pseudonyms holds the whole roster) or a
// singleton ADD/REMOVE delta (Pseudonyms holds exactly one name).
type ClientEventFrame struct {
	Kind       ClientEventFrameKind
	Pseudonyms []string
}

// ClientEventFrameKind distinguishes the three frame shapes of spec §6.
type ClientEventFrameKind int

const (
	// ClientEventFrameSync carries the full roster, emitted once at the
	// start of a subscription.
	ClientEventFrameSync ClientEventFrameKind = iota
	// ClientEventFrameAdd carries exactly one newly joined pseudonym.
	ClientEventFrameAdd
	// ClientEventFrameRemove carries exactly one departed pseudonym.
	ClientEventFrameRemove
)

// SubscribeClientEvents emits one SYNC frame from the current roster, then
// streams ADD/REMOVE deltas until ctx is cancelled, peer leaves the
// registry, or emit fails.
func (s *Service) SubscribeClientEvents(ctx context.Context, peer string, emit func(ClientEventFrame) error) *Error {
	if !s.registry.IsPeerConnected(peer) {
		return newError(CodePermissionDenied, "client not connected")
	}

	roster := s.registry.ConnectedPseudonyms()
	if err := emit(ClientEventFrame{Kind: ClientEventFrameSync, Pseudonyms: roster}); err != nil {
		return newError(CodeUnknown, "failed to write initial roster")
	}

	if !s.clientEvents.NormalizeCursor(peer) {
		return newError(CodePermissionDenied, "client not connected")
	}

	for {
		if ctx.Err() != nil {
			return newError(CodeCancelled, "subscription cancelled")
		}

		ev, status := s.clientEvents.Next(peer, s.waitFor)
		switch status {
		case broadcast.StatusPeerMissing:
			return newError(CodePermissionDenied, "client not connected")
		case broadcast.StatusNoMessage:
			continue
		}

		kind := ClientEventFrameAdd
		if ev.Kind == broadcast.ClientEventRemove {
			kind = ClientEventFrameRemove
		}

		if err := emit(ClientEventFrame{Kind: kind, Pseudonyms: []string{ev.Pseudonym}}); err != nil {
			return newError(CodeUnknown, "failed to write to client stream")
		}
	}
}
