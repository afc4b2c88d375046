package allegro

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RefreshMetrics holds the token refresher instruments. Noop-safe: without a
// MeterProvider the instruments silently discard.
type RefreshMetrics struct {
	// Attempts counts refresh attempts labelled by result
	// (success / error / skipped).
	Attempts metric.Int64Counter

	// Retries counts error-backoff rounds of the background refresher.
	Retries metric.Int64Counter

	// LastSuccess records the unix time of the most recent successful
	// refresh.
	LastSuccess metric.Float64Gauge
}

// NewRefreshMetrics creates and registers the refresher instruments.
func NewRefreshMetrics() (*RefreshMetrics, error) {
	meter := otel.Meter("magsync")
	m := &RefreshMetrics{}
	var err error

	if m.Attempts, err = meter.Int64Counter("magsync.token_refresh.attempts",
		metric.WithDescription("Total Allegro token refresh attempts by result")); err != nil {
		return nil, err
	}
	if m.Retries, err = meter.Int64Counter("magsync.token_refresh.retries",
		metric.WithDescription("Total Allegro token refresh retry rounds")); err != nil {
		return nil, err
	}
	if m.LastSuccess, err = meter.Float64Gauge("magsync.token_refresh.last_success",
		metric.WithDescription("Unix time of the last successful Allegro token refresh"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *RefreshMetrics) recordAttempt(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.Attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *RefreshMetrics) recordRetry(ctx context.Context) {
	if m == nil {
		return
	}
	m.Retries.Add(ctx, 1)
}

func (m *RefreshMetrics) recordSuccess(ctx context.Context, unixSeconds float64) {
	if m == nil {
		return
	}
	m.LastSuccess.Record(ctx, unixSeconds)
}
