// Package sink provides delivery backends for admitted capability events.
// Delivery is fire-and-forget; a failing sink never reaches the
// intercepted caller.
package sink

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pagescope/pagescope/pkg/capability"
)

// Sink receives admitted events from the publisher.
type Sink interface {
	// Deliver hands one event to the backend.
	Deliver(ctx context.Context, event capability.Event) error

	// Close cleans up backend resources.
	Close() error
}

// LogSink writes each event as a structured log line.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink logging to logger.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Deliver logs the event.
func (s *LogSink) Deliver(ctx context.Context, event capability.Event) error {
	s.logger.Info().
		Str("capability", string(event.Capability)).
		Str("action", string(event.Action)).
		Str("detection", event.Detection).
		Time("observed_at", event.Timestamp).
		Interface("context", event.Context).
		Msg("capability used")
	return nil
}

// Close is a no-op for the log sink.
func (s *LogSink) Close() error { return nil }
