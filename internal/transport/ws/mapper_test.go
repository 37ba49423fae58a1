package ws

import (
	"testing"

	"github.com/quietroom/chatplane/internal/broadcast"
	"github.com/quietroom/chatplane/internal/chatservice"
	"github.com/quietroom/chatplane/internal/wire"
)

func TestConnectedOutboundCarriesRoster(t *testing.T) {
	out := connectedOutbound(chatservice.ConnectResult{Accepted: true, Message: "welcome", Roster: []string{"alice", "bob"}})
	data, ok := out.Data.(wire.ConnectedData)
	if !ok {
		t.Fatalf("expected wire.ConnectedData, got %T", out.Data)
	}
	if !data.Accepted || len(data.Roster) != 2 {
		t.Fatalf("unexpected connected data: %+v", data)
	}
}

func TestClientEventOutboundSyncCarriesFullRoster(t *testing.T) {
	out := clientEventOutbound(chatservice.ClientEventFrame{
		Kind:       chatservice.ClientEventFrameSync,
		Pseudonyms: []string{"alice", "bob"},
	})
	if out.Type != wire.OutboundTypeClientSync {
		t.Fatalf("expected %q, got %q", wire.OutboundTypeClientSync, out.Type)
	}
}

func TestClientEventOutboundAddAndRemove(t *testing.T) {
	add := clientEventOutbound(chatservice.ClientEventFrame{Kind: chatservice.ClientEventFrameAdd, Pseudonyms: []string{"carol"}})
	if add.Type != wire.OutboundTypeClientAdd {
		t.Fatalf("expected %q, got %q", wire.OutboundTypeClientAdd, add.Type)
	}

	remove := clientEventOutbound(chatservice.ClientEventFrame{Kind: chatservice.ClientEventFrameRemove, Pseudonyms: []string{"carol"}})
	if remove.Type != wire.OutboundTypeClientRemove {
		t.Fatalf("expected %q, got %q", wire.OutboundTypeClientRemove, remove.Type)
	}
}

func TestServiceErrorOutboundCarriesCode(t *testing.T) {
	out := serviceErrorOutbound(&chatservice.Error{Code: chatservice.CodeResourceExhausted, Message: "slow down"})
	if out.Error == nil || out.Error.Code != string(chatservice.CodeResourceExhausted) {
		t.Fatalf("unexpected error outbound: %+v", out.Error)
	}
}

func TestDecodeConnectAndSend(t *testing.T) {
	connect, err := decodeConnect([]byte(`{"pseudonym":"alice","gender":"f","country":"fr"}`))
	if err != nil {
		t.Fatalf("decode connect: %v", err)
	}
	if connect.Pseudonym != "alice" {
		t.Fatalf("unexpected connect data: %+v", connect)
	}

	send, err := decodeSend([]byte(`{"content":"hi","recipient":"bob"}`))
	if err != nil {
		t.Fatalf("decode send: %v", err)
	}
	if send.Content != "hi" || send.Recipient != "bob" {
		t.Fatalf("unexpected send data: %+v", send)
	}
}

func TestMessageAndPrivateOutbound(t *testing.T) {
	m := messageOutbound(broadcast.Message{Author: "alice", Content: "hi"})
	if m.Type != wire.OutboundTypeMessage {
		t.Fatalf("unexpected type: %q", m.Type)
	}

	p := privateOutbound(broadcast.PrivateMessage{Author: "alice", Content: "hi"})
	if p.Type != wire.OutboundTypePrivate {
		t.Fatalf("unexpected type: %q", p.Type)
	}
}
