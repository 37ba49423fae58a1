// Package wire defines the JSON envelope exchanged over the websocket
// transport, mirroring the teacher's proto package but shaped for this
// service's connect/send/subscribe surface instead of room join/leave.
package wire

import "encoding/json"

// Inbound message type tags.
const (
	InboundTypeConnect = "connect"
	InboundTypeSend    = "send"
)

// Inbound is a client-to-server frame. Data is dispatched by Type.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ConnectData is the payload of an InboundTypeConnect frame.
type ConnectData struct {
	Pseudonym string `json:"pseudonym"`
	Gender    string `json:"gender,omitempty"`
	Country   string `json:"country,omitempty"`
}

// SendData is the payload of an InboundTypeSend frame. Recipient, when
// set, directs the message privately instead of broadcasting it.
type SendData struct {
	Content   string `json:"content"`
	Recipient string `json:"recipient,omitempty"`
}

// Outbound message type tags.
const (
	OutboundTypeConnected    = "connected"
	OutboundTypeMessage      = "message"
	OutboundTypePrivate      = "private"
	OutboundTypeClientSync   = "client_sync"
	OutboundTypeClientAdd    = "client_add"
	OutboundTypeClientRemove = "client_remove"
	OutboundTypeError        = "error"
)

// Outbound is a server-to-client frame.
type Outbound struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorData  `json:"error,omitempty"`
}

// ConnectedData answers an accepted or rejected connect attempt.
type ConnectedData struct {
	Accepted bool     `json:"accepted"`
	Message  string   `json:"message"`
	Roster   []string `json:"roster,omitempty"`
}

// MessageData carries one public broadcast message.
type MessageData struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// PrivateData carries one directed message.
type PrivateData struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// ClientSyncData carries the full roster snapshot.
type ClientSyncData struct {
	Pseudonyms []string `json:"pseudonyms"`
}

// ClientDeltaData carries a single join or leave.
type ClientDeltaData struct {
	Pseudonym string `json:"pseudonym"`
}

// ErrorData reports a failed operation using the transport-agnostic code
// vocabulary.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
