package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PrintMetrics holds the print agent instruments. Noop-safe: without a
// MeterProvider the instruments silently discard.
type PrintMetrics struct {
	// Printed counts labels delivered to the printer.
	Printed metric.Int64Counter

	// Errors counts failed print attempts labelled by stage
	// (label / print / status).
	Errors metric.Int64Counter

	// QueueSize records the number of jobs per status after each poll.
	QueueSize metric.Int64Gauge

	// OldestPending records how long the oldest pending job has waited.
	OldestPending metric.Float64Gauge
}

// NewPrintMetrics creates and registers the print agent instruments.
func NewPrintMetrics() (*PrintMetrics, error) {
	meter := otel.Meter("magsync")
	m := &PrintMetrics{}
	var err error

	if m.Printed, err = meter.Int64Counter("magsync.print.labels",
		metric.WithDescription("Total shipment labels printed")); err != nil {
		return nil, err
	}
	if m.Errors, err = meter.Int64Counter("magsync.print.errors",
		metric.WithDescription("Total print agent failures by stage")); err != nil {
		return nil, err
	}
	if m.QueueSize, err = meter.Int64Gauge("magsync.print.queue_size",
		metric.WithDescription("Print jobs currently stored, by status")); err != nil {
		return nil, err
	}
	if m.OldestPending, err = meter.Float64Gauge("magsync.print.oldest_pending_age",
		metric.WithDescription("Age of the oldest pending print job"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PrintMetrics) recordPrinted(ctx context.Context) {
	if m == nil {
		return
	}
	m.Printed.Add(ctx, 1)
}

func (m *PrintMetrics) recordError(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.Errors.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

func (m *PrintMetrics) recordQueue(ctx context.Context, status string, size int) {
	if m == nil {
		return
	}
	m.QueueSize.Record(ctx, int64(size), metric.WithAttributes(attribute.String("status", status)))
}

func (m *PrintMetrics) recordOldestPending(ctx context.Context, seconds float64) {
	if m == nil {
		return
	}
	m.OldestPending.Record(ctx, seconds)
}

// SyncMetrics holds the background sync instruments.
type SyncMetrics struct {
	// Runs counts sync passes labelled by kind and result.
	Runs metric.Int64Counter

	// Items records how many records the last pass of each kind fetched.
	Items metric.Int64Gauge
}

// NewSyncMetrics creates and registers the sync worker instruments.
func NewSyncMetrics() (*SyncMetrics, error) {
	meter := otel.Meter("magsync")
	m := &SyncMetrics{}
	var err error

	if m.Runs, err = meter.Int64Counter("magsync.sync.runs",
		metric.WithDescription("Total background sync passes by kind and result")); err != nil {
		return nil, err
	}
	if m.Items, err = meter.Int64Gauge("magsync.sync.items",
		metric.WithDescription("Records fetched by the last sync pass of each kind")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SyncMetrics) recordRun(ctx context.Context, kind, result string) {
	if m == nil {
		return
	}
	m.Runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("result", result)))
}

func (m *SyncMetrics) recordItems(ctx context.Context, kind string, count int) {
	if m == nil {
		return
	}
	m.Items.Record(ctx, int64(count), metric.WithAttributes(attribute.String("kind", kind)))
}
