package ws

import (
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/quietroom/chatplane/internal/chatservice"
)

// NewServer builds the HTTP server hosting the health check and the
// websocket upgrade route, with gin standing in for the router the way the
// teacher uses it for its user/room endpoints.
func NewServer(addr string, readHeaderTimeout time.Duration, service *chatservice.Service, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	handler := New(service, logger)

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	router.GET("/ws", func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	})

	return &stdhttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
