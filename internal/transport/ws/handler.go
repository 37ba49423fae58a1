// Package ws upgrades HTTP connections to websockets and bridges them to
// the chatservice facade, grounded on the teacher's WSHandler but driving
// five concurrent loops per connection instead of two: one inbound reader,
// one outbound writer, and three streamers feeding the writer (public
// messages, private messages, client events), since this service exposes
// three independent server-streaming RPCs rather than one event feed.
package ws

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quietroom/chatplane/internal/broadcast"
	"github.com/quietroom/chatplane/internal/chatservice"
	"github.com/quietroom/chatplane/internal/log"
	"github.com/quietroom/chatplane/internal/wire"
)

// Handler upgrades HTTP connections and bridges them to the chat service.
type Handler struct {
	service *chatservice.Service
	log     *zerolog.Logger
}

// New builds a websocket Handler over service.
func New(service *chatservice.Service, logger *zerolog.Logger) *Handler {
	return &Handler{service: service, log: logger}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	peer := uuid.NewString()
	connLog := log.WithClient(h.log, peer)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	outbound := make(chan wire.Outbound, 64)
	var subs sync.WaitGroup

	errCh := make(chan error, 2)
	go func() { errCh <- h.writeLoop(ctx, conn, outbound) }()
	go func() { errCh <- h.readLoop(ctx, conn, peer, outbound, &connLog, &subs) }()

	err = <-errCh
	cancel() // stop whichever of read/write is still running
	h.service.Disconnect(peer)
	<-errCh
	subs.Wait()

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			connLog.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// readLoop drives the inbound frame stream. The three outbound subscription
// loops are started here, from the connect frame's handling, rather than up
// front in ServeHTTP: starting them before the client has connected would
// have them observe IsPeerConnected as false and exit immediately, so the
// subscription would never actually deliver anything for the life of the
// connection.
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, peer string, outbound chan<- wire.Outbound, connLog *zerolog.Logger, subs *sync.WaitGroup) error {
	subscribed := false

	for {
		var inbound wire.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			connLog.Warn().Err(err).Msg("read ws inbound")
			return err
		}

		switch inbound.Type {
		case wire.InboundTypeConnect:
			data, err := decodeConnect(inbound.Data)
			if err != nil {
				println("DEBUG decode err", err.Error())
				emit(ctx, outbound, errorOutbound(chatservice.CodeInvalidArgument, "malformed connect payload"))
				continue
			}
			res := h.service.Connect(peer, data.Pseudonym, data.Gender, data.Country)
			println("DEBUG connect result accepted=", res.Accepted)
			emit(ctx, outbound, connectedOutbound(res))
			println("DEBUG emitted connected frame")

			if res.Accepted && !subscribed {
				subscribed = true
				h.startSubscriptions(ctx, peer, outbound, connLog, subs)
			}

		case wire.InboundTypeSend:
			data, err := decodeSend(inbound.Data)
			if err != nil {
				emit(ctx, outbound, errorOutbound(chatservice.CodeInvalidArgument, "malformed send payload"))
				continue
			}
			if svcErr := h.service.SendMessage(peer, data.Content, data.Recipient); svcErr != nil {
				emit(ctx, outbound, serviceErrorOutbound(svcErr))
			}

		default:
			emit(ctx, outbound, errorOutbound(chatservice.CodeInvalidArgument, "unknown frame type"))
		}
	}
}

func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, outbound <-chan wire.Outbound) error {
	for {
		select {
		case frame, ok := <-outbound:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, frame); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// startSubscriptions launches the three outbound streaming loops exactly
// once, after peer has been admitted by a successful Connect.
func (h *Handler) startSubscriptions(ctx context.Context, peer string, outbound chan<- wire.Outbound, connLog *zerolog.Logger, subs *sync.WaitGroup) {
	subs.Add(3)
	go func() { defer subs.Done(); h.messageLoop(ctx, peer, outbound, connLog) }()
	go func() { defer subs.Done(); h.privateLoop(ctx, peer, outbound, connLog) }()
	go func() { defer subs.Done(); h.clientEventLoop(ctx, peer, outbound, connLog) }()
}

func (h *Handler) messageLoop(ctx context.Context, peer string, outbound chan<- wire.Outbound, connLog *zerolog.Logger) {
	err := h.service.SubscribeMessages(ctx, peer, func(m broadcast.Message) error {
		return emitErr(ctx, outbound, messageOutbound(m))
	})
	if err := subscriptionErr(err); err != nil {
		connLog.Warn().Err(err).Msg("message subscription ended unexpectedly")
	}
}

func (h *Handler) privateLoop(ctx context.Context, peer string, outbound chan<- wire.Outbound, connLog *zerolog.Logger) {
	err := h.service.SubscribePrivateMessages(ctx, peer, func(m broadcast.PrivateMessage) error {
		return emitErr(ctx, outbound, privateOutbound(m))
	})
	if err := subscriptionErr(err); err != nil {
		connLog.Warn().Err(err).Msg("private subscription ended unexpectedly")
	}
}

func (h *Handler) clientEventLoop(ctx context.Context, peer string, outbound chan<- wire.Outbound, connLog *zerolog.Logger) {
	err := h.service.SubscribeClientEvents(ctx, peer, func(f chatservice.ClientEventFrame) error {
		return emitErr(ctx, outbound, clientEventOutbound(f))
	})
	if err := subscriptionErr(err); err != nil {
		connLog.Warn().Err(err).Msg("client event subscription ended unexpectedly")
	}
}

// subscriptionErr turns a service-level cancellation or permission-denied
// outcome (both expected once the connection tears down) into nil, so a
// clean subscription end isn't logged as a connection fault.
func subscriptionErr(err *chatservice.Error) error {
	if err == nil {
		return nil
	}
	if err.Code == chatservice.CodeCancelled || err.Code == chatservice.CodePermissionDenied {
		return nil
	}
	return err
}

func emit(ctx context.Context, outbound chan<- wire.Outbound, frame wire.Outbound) {
	select {
	case outbound <- frame:
	case <-ctx.Done():
	}
}

func emitErr(ctx context.Context, outbound chan<- wire.Outbound, frame wire.Outbound) error {
	select {
	case outbound <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
