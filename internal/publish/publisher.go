// Package publish delivers admitted capability events to the configured
// sinks. Delivery is synchronous, within the task that produced the event,
// and must never surface a failure to the intercepted caller.
package publish

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pagescope/pagescope/internal/telemetry"
	"github.com/pagescope/pagescope/pkg/capability"
	"github.com/pagescope/pagescope/sink"
)

// Publisher fans an event out to every sink. Sink errors and panics are
// contained here; the only escape hatch is a log line and a metric.
type Publisher struct {
	sinks     []sink.Sink
	detection string
	logger    zerolog.Logger
	metrics   *telemetry.EventMetrics
	now       func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithMetrics attaches delivery metrics.
func WithMetrics(m *telemetry.EventMetrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

// WithClock overrides the emission time source. Tests use this.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

// New creates a publisher tagging every event with detection.
func New(detection string, logger zerolog.Logger, sinks []sink.Sink, opts ...Option) *Publisher {
	p := &Publisher{
		sinks:     sinks,
		detection: detection,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish stamps the event with the detection tag and emission timestamp and
// hands it to every sink. Never returns an error and never panics: if no
// sink can take the event it is silently discarded.
func (p *Publisher) Publish(ctx context.Context, event capability.Event) {
	event.Detection = p.detection
	event.Timestamp = p.now()

	if p.metrics != nil {
		p.metrics.RecordEmitted(ctx, event)
	}

	for _, s := range p.sinks {
		p.deliver(ctx, s, event)
	}
}

// deliver hands the event to one sink, containing errors and panics.
func (p *Publisher) deliver(ctx context.Context, s sink.Sink, event capability.Event) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug().
				Interface("panic", r).
				Str("key", event.Key()).
				Msg("sink panicked during delivery")
			if p.metrics != nil {
				p.metrics.RecordSinkFailure(ctx, event)
			}
		}
	}()

	if err := s.Deliver(ctx, event); err != nil {
		p.logger.Debug().
			Err(err).
			Str("key", event.Key()).
			Msg("sink delivery failed")
		if p.metrics != nil {
			p.metrics.RecordSinkFailure(ctx, event)
		}
	}
}

// Close closes all sinks.
func (p *Publisher) Close() error {
	var firstErr error
	for _, s := range p.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
