// Package stats implements the statistics-persistence observer (spec
// §4.8): it subscribes to the event bus and maps events onto a sink's
// per-pseudonym counters. Persistence faults are logged and swallowed —
// the message path never blocks or fails on the observer's account.
package stats

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/quietroom/chatplane/internal/events"
)

// Sink is the narrow persistence surface the observer needs. It is
// satisfied by the SQLite-backed store in internal/store/sqlite, and by
// any fake in tests.
type Sink interface {
	RecordConnect(pseudonym string) error
	RecordDisconnect(pseudonym string, duration time.Duration) error
	RecordMessage(pseudonym string) error
}

// Observer is the event-bus observer that drives a Sink. It is built with a
// possibly-nil sink so that a deployment without persistence configured
// degrades to a no-op instead of panicking — the same role the original's
// weak handle to its database manager plays. A non-nil sink that has been
// closed keeps returning errors, which are logged and swallowed.
type Observer struct {
	sink Sink
	log  *zerolog.Logger
}

// New builds a statistics observer backed by sink. sink may be nil.
func New(sink Sink, log *zerolog.Logger) *Observer {
	if sink == nil {
		log.Warn().Msg("stats: no sink configured, statistics will not be recorded")
	}
	return &Observer{sink: sink, log: log}
}

// OnClientConnected increments the connection counter for the newly
// connected pseudonym, creating its row if this is the first time it has
// been seen.
func (o *Observer) OnClientConnected(e events.ClientConnected) {
	if o.sink == nil {
		return
	}
	if err := o.sink.RecordConnect(e.Pseudonym); err != nil {
		o.log.Warn().Err(err).Str("pseudonym", e.Pseudonym).Msg("stats: record connect failed")
	}
}

// OnClientDisconnected adds the connection's duration to the pseudonym's
// cumulative connection time.
func (o *Observer) OnClientDisconnected(e events.ClientDisconnected) {
	if o.sink == nil {
		return
	}
	if err := o.sink.RecordDisconnect(e.Pseudonym, e.ConnectionDuration); err != nil {
		o.log.Warn().Err(err).Str("pseudonym", e.Pseudonym).Msg("stats: record disconnect failed")
	}
}

// OnMessageSent increments the sender's transmitted-message counter.
func (o *Observer) OnMessageSent(e events.MessageSent) {
	if o.sink == nil {
		return
	}
	if err := o.sink.RecordMessage(e.Pseudonym); err != nil {
		o.log.Warn().Err(err).Str("pseudonym", e.Pseudonym).Msg("stats: record message failed")
	}
}

// OnPrivateMessageSent increments the sender's transmitted-message counter.
func (o *Observer) OnPrivateMessageSent(e events.PrivateMessageSent) {
	if o.sink == nil {
		return
	}
	if err := o.sink.RecordMessage(e.SenderPseudonym); err != nil {
		o.log.Warn().Err(err).Str("pseudonym", e.SenderPseudonym).Msg("stats: record private message failed")
	}
}
