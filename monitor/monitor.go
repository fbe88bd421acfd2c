// Package monitor implements the capability interception layer. It wraps the
// page environment's capability entry points in forwarding decorators that
// observe successful use, derive semantic usage events, and hand admitted
// events to the publisher. Removing the monitor changes nothing the wrapped
// caller can observe: every value, error, and callback passes through intact.
package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pagescope/pagescope/internal/ledger"
	"github.com/pagescope/pagescope/internal/lifecycle"
	"github.com/pagescope/pagescope/internal/publish"
	"github.com/pagescope/pagescope/internal/telemetry"
	"github.com/pagescope/pagescope/pkg/browserapi"
	"github.com/pagescope/pagescope/pkg/capability"
	"github.com/pagescope/pagescope/sink"
)

// Bindings are the real capability implementations to observe. Nil entries
// are tolerated: an absent capability is simply not wrapped.
type Bindings struct {
	Media         browserapi.MediaDevices
	Geolocation   browserapi.Geolocation
	Clipboard     browserapi.Clipboard
	Notifications browserapi.Notifications
}

// Monitor owns the engine state: the suppression ledger, the lifecycle
// trackers, and the publisher. It is the single state container; nothing here
// is ambient or global.
type Monitor struct {
	ledger    *ledger.Ledger
	active    *lifecycle.ActiveSet
	watches   *lifecycle.WatchSet
	publisher *publish.Publisher
	metrics   *telemetry.EventMetrics
	logger    zerolog.Logger

	media         *MediaDevices
	geolocation   *Geolocation
	clipboard     *Clipboard
	notifications *Notifications
}

type options struct {
	debounce  time.Duration
	retention time.Duration
	detection string
	logger    zerolog.Logger
	metrics   *telemetry.EventMetrics
	now       func() time.Time
}

// Option configures a Monitor.
type Option func(*options)

// WithDebounce overrides the suppression window.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithRetention overrides the ledger retention horizon.
func WithRetention(d time.Duration) Option {
	return func(o *options) { o.retention = d }
}

// WithDetection overrides the detection-method tag stamped on events.
func WithDetection(tag string) Option {
	return func(o *options) { o.detection = tag }
}

// WithLogger sets the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics attaches engine metrics.
func WithMetrics(m *telemetry.EventMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock overrides the time source for the ledger, the watch trackers,
// and emission timestamps. Tests use this.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds a monitor over the given bindings, delivering admitted events to
// sinks. State maps start empty and live for the life of the monitor.
func New(bindings Bindings, sinks []sink.Sink, opts ...Option) *Monitor {
	o := options{
		debounce:  ledger.DefaultDebounce,
		retention: ledger.DefaultRetention,
		detection: "api-interception",
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Monitor{
		ledger: ledger.New(
			ledger.WithDebounce(o.debounce),
			ledger.WithRetention(o.retention),
			ledger.WithClock(o.now),
		),
		active:  lifecycle.NewActiveSet(),
		watches: lifecycle.NewWatchSet(o.now),
		publisher: publish.New(o.detection, o.logger, sinks,
			publish.WithMetrics(o.metrics),
			publish.WithClock(o.now),
		),
		metrics: o.metrics,
		logger:  o.logger,
	}

	if bindings.Media != nil {
		m.media = &MediaDevices{real: bindings.Media, mon: m}
	}
	if bindings.Geolocation != nil {
		m.geolocation = &Geolocation{real: bindings.Geolocation, mon: m}
	}
	if bindings.Clipboard != nil {
		m.clipboard = &Clipboard{real: bindings.Clipboard, mon: m}
	}
	if bindings.Notifications != nil {
		m.notifications = &Notifications{real: bindings.Notifications, mon: m}
	}

	return m
}

// MediaDevices returns the wrapped media entry point, nil if unbound.
func (m *Monitor) MediaDevices() *MediaDevices { return m.media }

// Geolocation returns the wrapped location entry point, nil if unbound.
func (m *Monitor) Geolocation() *Geolocation { return m.geolocation }

// Clipboard returns the wrapped clipboard entry point, nil if unbound.
func (m *Monitor) Clipboard() *Clipboard { return m.clipboard }

// Notifications returns the wrapped notification entry point, nil if unbound.
func (m *Monitor) Notifications() *Notifications { return m.notifications }

// Close releases the publisher's sinks.
func (m *Monitor) Close() error {
	return m.publisher.Close()
}

// observe runs one candidate observation through dedup and publication.
// Faults here must never reach the intercepted caller: the core fails open.
func (m *Monitor) observe(ctx context.Context, kind capability.Capability, action capability.Action, payload capability.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Debug().
				Interface("panic", r).
				Str("capability", string(kind)).
				Str("action", string(action)).
				Msg("observation fault contained")
		}
	}()

	event := capability.Event{Capability: kind, Action: action, Context: payload}

	if !m.ledger.Admit(event.Key()) {
		if m.metrics != nil {
			m.metrics.RecordSuppressed(ctx, event)
		}
		return
	}

	m.publisher.Publish(ctx, event)

	if m.metrics != nil {
		m.metrics.RecordLedgerSize(ctx, m.ledger.Len())
	}
}
