// Package telemetry holds the OpenTelemetry instruments recorded by the
// scanner. Without an explicit meter the global provider is used, which is a
// no-op until the host application installs one.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName identifies the instrumentation scope.
const MeterName = "github.com/twinfer/searchbin"

// Metrics holds the scan instruments. A nil *Metrics records nothing.
type Metrics struct {
	Searches  metric.Int64Counter
	Matches   metric.Int64Counter
	BytesRead metric.Int64Counter
	Refills   metric.Int64Counter
}

// New creates the instruments on meter, or on the global meter provider when
// meter is nil.
func New(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(MeterName)
	}
	searches, err := meter.Int64Counter("searchbin_searches_total",
		metric.WithDescription("Completed searches, labelled by outcome"))
	if err != nil {
		return nil, err
	}
	matches, err := meter.Int64Counter("searchbin_matches_total",
		metric.WithDescription("Match offsets reported"))
	if err != nil {
		return nil, err
	}
	bytesRead, err := meter.Int64Counter("searchbin_bytes_read_total",
		metric.WithDescription("Bytes read from searched sources"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, err
	}
	refills, err := meter.Int64Counter("searchbin_window_refills_total",
		metric.WithDescription("Window buffer refills"))
	if err != nil {
		return nil, err
	}
	return &Metrics{
		Searches:  searches,
		Matches:   matches,
		BytesRead: bytesRead,
		Refills:   refills,
	}, nil
}

// Read records n bytes read; refill marks reads after the initial one.
func (m *Metrics) Read(ctx context.Context, n int, refill bool) {
	if m == nil {
		return
	}
	m.BytesRead.Add(ctx, int64(n))
	if refill {
		m.Refills.Add(ctx, 1)
	}
}

// Done records the outcome of one search.
func (m *Metrics) Done(ctx context.Context, matches int, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Searches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.Matches.Add(ctx, int64(matches))
}
