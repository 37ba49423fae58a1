package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/quietroom/chatplane/internal/broadcast"
	"github.com/quietroom/chatplane/internal/chatservice"
	"github.com/quietroom/chatplane/internal/events"
	"github.com/quietroom/chatplane/internal/registry"
	"github.com/quietroom/chatplane/internal/validation"
	"github.com/quietroom/chatplane/internal/wire"
)

func TestWSConnectWithGinDirect(t *testing.T) {
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
	service := chatservice.New(reg, bus, messages, private, clientEvents, chain, &log, 30*time.Millisecond)
	handler := New(service, &log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	})
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	err = wsjson.Write(ctx, conn, wire.Inbound{
		Type: wire.InboundTypeConnect,
		Data: []byte(`{"pseudonym":"alice"}`),
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	var out wire.Outbound
	err = wsjson.Read(ctx, conn, &out)
	t.Logf("read err=%v out=%+v", err, out)
}
