package log

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds a zerolog logger with the given level string (debug, info,
// warn, error), tagged with the service name so a log aggregator can
// separate chatplane's lines from any other process sharing its output.
func New(level string) *zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl := parseLevel(level)
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	logger := zerolog.New(output).Level(lvl).With().Timestamp().Str("service", "chatplane").Logger()
	return &logger
}

// WithClient returns a child logger carrying the connection's peer ID, so
// every line logged across a websocket connection's read loop and its three
// outbound streaming loops can be correlated without each call site
// repeating the field by hand.
func WithClient(logger *zerolog.Logger, peer string) zerolog.Logger {
	return logger.With().Str("client_id", peer).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
