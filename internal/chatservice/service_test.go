package chatservice

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quietroom/chatplane/internal/broadcast"
	"github.com/quietroom/chatplane/internal/events"
	"github.com/quietroom/chatplane/internal/registry"
	"github.com/quietroom/chatplane/internal/validation"
)

func newTestService() *Service {
	reg := registry.New()
	bus := events.NewBus()
	messages := broadcast.NewMessages(reg)
	private := broadcast.NewPrivate(reg)
	clientEvents := broadcast.NewClientEvents(reg)

	bus.Register(reg)
	bus.Register(messages)
	bus.Register(private)
	bus.Register(clientEvents)

	chain := validation.NewChain(validation.NewContentValidator(2, 300))

	log := zerolog.Nop()
	return New(reg, bus, messages, private, clientEvents, chain, &log, 30*time.Millisecond)
}

func TestConnectRejectsDuplicatePseudonym(t *testing.T) {
	s := newTestService()

	res := s.Connect("peer-1", "alice", "", "")
	if !res.Accepted {
		t.Fatalf("expected first connect to be accepted, got %+v", res)
	}

	res = s.Connect("peer-2", "alice", "", "")
	if res.Accepted {
		t.Fatal("expected a duplicate pseudonym to be rejected")
	}
}

func TestConnectRejectionIsNotAnError(t *testing.T) {
	s := newTestService()
	s.Connect("peer-1", "alice", "", "")

	res := s.Connect("peer-2", "alice", "", "")
	if res.Accepted {
		t.Fatal("expected rejection")
	}
	if res.Message == "" {
		t.Fatal("expected a human-readable rejection message")
	}
}

func TestSendMessageRequiresConnection(t *testing.T) {
	s := newTestService()

	if err := s.SendMessage("ghost", "hello there", ""); err == nil {
		t.Fatal("expected an error from an unconnected peer")
	} else if err.Code != CodePermissionDenied {
		t.Fatalf("expected CodePermissionDenied, got %v", err.Code)
	}
}

func TestSendMessageValidatesContent(t *testing.T) {
	s := newTestService()
	s.Connect("peer-1", "alice", "", "")

	err := s.SendMessage("peer-1", "a", "")
	if err == nil {
		t.Fatal("expected an error for a too-short message")
	}
	if err.Code != CodeInvalidArgument {
		t.Fatalf("expected CodeInvalidArgument, got %v", err.Code)
	}
}

func TestBroadcastMessageDeliveredToSubscriber(t *testing.T) {
	s := newTestService()
	s.Connect("peer-1", "alice", "", "")
	s.Connect("peer-2", "bob", "", "")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	received := make(chan broadcast.Message, 1)
	go s.SubscribeMessages(ctx, "peer-2", func(m broadcast.Message) error {
		received <- m
		return context.Canceled // stop after first message
	})

	time.Sleep(10 * time.Millisecond)
	if err := s.SendMessage("peer-1", "hello room", ""); err != nil {
		t.Fatalf("send message: %v", err)
	}

	select {
	case m := <-received:
		if m.Author != "alice" || m.Content != "hello room" {
			t.Fatalf("unexpected message: %+v", m)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the broadcast message")
	}
}

func TestPrivateMessageGoesOnlyToRecipient(t *testing.T) {
	s := newTestService()
	s.Connect("peer-1", "alice", "", "")
	s.Connect("peer-2", "bob", "", "")
	s.Connect("peer-3", "carol", "", "")

	if err := s.SendMessage("peer-1", "just for bob", "bob"); err != nil {
		t.Fatalf("send private message: %v", err)
	}

	msg, status := s.private.Next("peer-2", 200*time.Millisecond)
	if status != broadcast.StatusOK || msg.Content != "just for bob" {
		t.Fatalf("got (%+v, %v)", msg, status)
	}

	_, status = s.private.Next("peer-3", 30*time.Millisecond)
	if status != broadcast.StatusNoMessage {
		t.Fatalf("expected carol to receive nothing, got %v", status)
	}
}

func TestSendMessageToUnknownRecipientFails(t *testing.T) {
	s := newTestService()
	s.Connect("peer-1", "alice", "", "")

	err := s.SendMessage("peer-1", "hello", "nobody")
	if err == nil || err.Code != CodeNotFound {
		t.Fatalf("expected CodeNotFound, got %v", err)
	}
}

func TestDisconnectIsIdempotentForUnknownPeer(t *testing.T) {
	s := newTestService()
	s.Disconnect("never-connected")
}

func TestSubscribeClientEventsEmitsSyncThenDeltas(t *testing.T) {
	s := newTestService()
	s.Connect("peer-1", "alice", "", "")
	s.Connect("peer-2", "bob", "", "")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	frames := make(chan ClientEventFrame, 4)
	go s.SubscribeClientEvents(ctx, "peer-2", func(f ClientEventFrame) error {
		frames <- f
		if f.Kind != ClientEventFrameSync {
			return context.Canceled
		}
		return nil
	})

	sync := <-frames
	if sync.Kind != ClientEventFrameSync {
		t.Fatalf("expected first frame to be SYNC, got %+v", sync)
	}

	s.Connect("peer-3", "carol", "", "")

	select {
	case delta := <-frames:
		if delta.Kind != ClientEventFrameAdd || delta.Pseudonyms[0] != "carol" {
			t.Fatalf("unexpected delta frame: %+v", delta)
		}
	case <-time.After(time.Second):
		t.Fatal("expected an ADD delta for carol")
	}
}

func TestSubscribeMessagesStopsOnCancellation(t *testing.T) {
	s := newTestService()
	s.Connect("peer-1", "alice", "", "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *Error, 1)
	go func() {
		done <- s.SubscribeMessages(ctx, "peer-1", func(broadcast.Message) error { return nil })
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil || err.Code != CodeCancelled {
			t.Fatalf("expected CodeCancelled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("subscription did not observe cancellation")
	}
}
