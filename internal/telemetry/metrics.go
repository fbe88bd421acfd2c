package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/pagescope/pagescope/pkg/capability"
)

// EventMetrics records interception engine outcomes as OTEL metrics.
type EventMetrics struct {
	meter            metric.Meter
	eventsEmitted    metric.Int64Counter
	eventsSuppressed metric.Int64Counter
	sinkFailures     metric.Int64Counter
	ledgerEntries    metric.Int64Gauge
}

// NewEventMetrics creates the engine's metric instruments.
func NewEventMetrics() (*EventMetrics, error) {
	meter := otel.Meter("pagescope")

	emitted, err := meter.Int64Counter(
		"pagescope_events_emitted_total",
		metric.WithDescription("Total capability events admitted and published"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create counter: %w", err)
	}

	suppressed, err := meter.Int64Counter(
		"pagescope_events_suppressed_total",
		metric.WithDescription("Total capability observations suppressed as duplicates"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create counter: %w", err)
	}

	failures, err := meter.Int64Counter(
		"pagescope_sink_failures_total",
		metric.WithDescription("Total event deliveries that failed at a sink"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create counter: %w", err)
	}

	entries, err := meter.Int64Gauge(
		"pagescope_ledger_entries",
		metric.WithDescription("Live entries in the suppression ledger"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create gauge: %w", err)
	}

	return &EventMetrics{
		meter:            meter,
		eventsEmitted:    emitted,
		eventsSuppressed: suppressed,
		sinkFailures:     failures,
		ledgerEntries:    entries,
	}, nil
}

// RecordEmitted counts one admitted emission.
func (m *EventMetrics) RecordEmitted(ctx context.Context, event capability.Event) {
	m.eventsEmitted.Add(ctx, 1, eventAttrs(event))
}

// RecordSuppressed counts one suppressed observation.
func (m *EventMetrics) RecordSuppressed(ctx context.Context, event capability.Event) {
	m.eventsSuppressed.Add(ctx, 1, eventAttrs(event))
}

// RecordSinkFailure counts one failed delivery.
func (m *EventMetrics) RecordSinkFailure(ctx context.Context, event capability.Event) {
	m.sinkFailures.Add(ctx, 1, eventAttrs(event))
}

// RecordLedgerSize reports the current ledger population.
func (m *EventMetrics) RecordLedgerSize(ctx context.Context, n int) {
	m.ledgerEntries.Record(ctx, int64(n))
}

func eventAttrs(event capability.Event) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("capability", string(event.Capability)),
		attribute.String("action", string(event.Action)),
	)
}
