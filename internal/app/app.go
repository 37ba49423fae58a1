// Package app wires the domain packages, the statistics sink, and the
// websocket transport into one running server, in the same New/Run/cleanup
// shape the teacher uses to wire its hub and HTTP server.
package app

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/quietroom/chatplane/internal/broadcast"
	"github.com/quietroom/chatplane/internal/chatservice"
	"github.com/quietroom/chatplane/internal/config"
	"github.com/quietroom/chatplane/internal/events"
	"github.com/quietroom/chatplane/internal/registry"
	"github.com/quietroom/chatplane/internal/stats"
	"github.com/quietroom/chatplane/internal/store/sqlite"
	transportws "github.com/quietroom/chatplane/internal/transport/ws"
	"github.com/quietroom/chatplane/internal/validation"
)

// App wires together the domain and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	store           *sqlite.Store
	log             *zerolog.Logger
}

// New constructs the application from configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	reg := registry.New()
	bus := events.NewBus()

	messages := broadcast.NewMessages(reg)
	private := broadcast.NewPrivate(reg)
	clientEvents := broadcast.NewClientEvents(reg)
	statsObserver := stats.New(store, logger)

	// Registration order matters: the registry must see connect/disconnect
	// before the broadcasters, whose presence checks and cursor cleanup
	// depend on the registry already reflecting the new membership.
	bus.Register(reg)
	bus.Register(messages)
	bus.Register(private)
	bus.Register(clientEvents)
	bus.Register(statsObserver)

	chain := validation.NewChain(
		validation.NewContentValidator(cfg.ContentMinLen, cfg.ContentMaxLen),
		validation.NewRateLimitValidator(cfg.RateLimit),
	)

	service := chatservice.New(reg, bus, messages, private, clientEvents, chain, logger, cfg.NextWaitFor)

	server := transportws.NewServer(cfg.Addr, cfg.ReadHeaderTimeout, service, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           store,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or a
// fatal listener error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the statistics store.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
