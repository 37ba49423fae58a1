package ws

import (
	"encoding/json"

	"github.com/quietroom/chatplane/internal/broadcast"
	"github.com/quietroom/chatplane/internal/chatservice"
	"github.com/quietroom/chatplane/internal/wire"
)

func errorOutbound(code chatservice.Code, message string) wire.Outbound {
	return wire.Outbound{
		Type:  wire.OutboundTypeError,
		Error: &wire.ErrorData{Code: string(code), Message: message},
	}
}

func serviceErrorOutbound(err *chatservice.Error) wire.Outbound {
	return errorOutbound(err.Code, err.Message)
}

func connectedOutbound(res chatservice.ConnectResult) wire.Outbound {
	return wire.Outbound{
		Type: wire.OutboundTypeConnected,
		Data: wire.ConnectedData{
			Accepted: res.Accepted,
			Message:  res.Message,
			Roster:   res.Roster,
		},
	}
}

func messageOutbound(m broadcast.Message) wire.Outbound {
	return wire.Outbound{
		Type: wire.OutboundTypeMessage,
		Data: wire.MessageData{Author: m.Author, Content: m.Content},
	}
}

func privateOutbound(m broadcast.PrivateMessage) wire.Outbound {
	return wire.Outbound{
		Type: wire.OutboundTypePrivate,
		Data: wire.PrivateData{Author: m.Author, Content: m.Content},
	}
}

func clientEventOutbound(f chatservice.ClientEventFrame) wire.Outbound {
	switch f.Kind {
	case chatservice.ClientEventFrameSync:
		return wire.Outbound{
			Type: wire.OutboundTypeClientSync,
			Data: wire.ClientSyncData{Pseudonyms: f.Pseudonyms},
		}
	case chatservice.ClientEventFrameRemove:
		return wire.Outbound{
			Type: wire.OutboundTypeClientRemove,
			Data: wire.ClientDeltaData{Pseudonym: f.Pseudonyms[0]},
		}
	default:
		return wire.Outbound{
			Type: wire.OutboundTypeClientAdd,
			Data: wire.ClientDeltaData{Pseudonym: f.Pseudonyms[0]},
		}
	}
}

func decodeConnect(raw json.RawMessage) (wire.ConnectData, error) {
	var data wire.ConnectData
	err := json.Unmarshal(raw, &data)
	return data, err
}

func decodeSend(raw json.RawMessage) (wire.SendData, error) {
	var data wire.SendData
	err := json.Unmarshal(raw, &data)
	return data, err
}
