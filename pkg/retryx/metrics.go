package retryx

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the OTel instruments the invoker reports into. All fields
// are always initialized; without a MeterProvider they are noop instruments,
// so the invoker never has to nil-check before recording.
type Metrics struct {
	// Errors counts failed attempts, labelled by endpoint and status
	// ("exception" for network-level failures).
	Errors metric.Int64Counter

	// Retries counts re-issued attempts, labelled by endpoint.
	Retries metric.Int64Counter

	// SleepSeconds accumulates time spent waiting on backoff or rate-limit
	// headers, labelled by endpoint.
	SleepSeconds metric.Float64Counter
}

// NewMetrics creates and registers the invoker instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("magsync")
	m := &Metrics{}
	var err error

	if m.Errors, err = meter.Int64Counter("magsync.api.errors",
		metric.WithDescription("Total marketplace API request failures")); err != nil {
		return nil, err
	}
	if m.Retries, err = meter.Int64Counter("magsync.api.retries",
		metric.WithDescription("Total marketplace API request retries")); err != nil {
		return nil, err
	}
	if m.SleepSeconds, err = meter.Float64Counter("magsync.api.ratelimit_sleep_seconds",
		metric.WithDescription("Cumulative seconds slept for backoff and rate limits"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) recordError(ctx context.Context, endpoint, status string) {
	if m == nil {
		return
	}
	m.Errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	))
}

func (m *Metrics) recordRetry(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	m.Retries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
	))
}

func (m *Metrics) recordSleep(ctx context.Context, endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.SleepSeconds.Add(ctx, seconds, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
	))
}
