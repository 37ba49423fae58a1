package broadcast

import (
	"testing"
	"time"

	"github.com/quietroom/chatplane/internal/events"
)

func TestClientEventsDeliversAddAndRemove(t *testing.T) {
	reg := newFakeRegistry("alice", "bob")
	c := NewClientEvents(reg)
	c.NormalizeCursor("bob")

	c.OnClientConnected(events.ClientConnected{Pseudonym: "alice"})

	ev, status := c.Next("bob", time.Second)
	if status != StatusOK || ev.Kind != ClientEventAdd || ev.Pseudonym != "alice" {
		t.Fatalf("got (%+v, %v)", ev, status)
	}

	c.OnClientDisconnected(events.ClientDisconnected{Pseudonym: "alice"})
	reg.drop("alice")

	ev, status = c.Next("bob", time.Second)
	if status != StatusOK || ev.Kind != ClientEventRemove || ev.Pseudonym != "alice" {
		t.Fatalf("got (%+v, %v)", ev, status)
	}
}

func TestClientEventsSkipsEmptyPseudonym(t *testing.T) {
	reg := newFakeRegistry("bob")
	c := NewClientEvents(reg)
	c.NormalizeCursor("bob")

	c.OnClientConnected(events.ClientConnected{Pseudonym: ""})

	_, status := c.Next("bob", 30*time.Millisecond)
	if status != StatusNoMessage {
		t.Fatalf("expected an empty pseudonym to be dropped, got %v", status)
	}
}

func TestClientEventsLateSubscriberMissesPastDeltas(t *testing.T) {
	reg := newFakeRegistry("alice", "bob")
	c := NewClientEvents(reg)

	c.OnClientConnected(events.ClientConnected{Pseudonym: "alice"})

	c.NormalizeCursor("bob")
	_, status := c.Next("bob", 30*time.Millisecond)
	if status != StatusNoMessage {
		t.Fatalf("expected a subscriber joining after the fact to miss the earlier delta, got %v", status)
	}
}
