package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/magsync/internal/sync/domain"
	"github.com/aussiebroadwan/magsync/internal/sync/store"
	"github.com/aussiebroadwan/magsync/pkg/baselinker"
	"github.com/aussiebroadwan/magsync/pkg/idx"
)

// drainBatchSize caps how many queued labels one poll works through so a
// huge backlog cannot starve discovery and retention.
const drainBatchSize = 20

// PrintAgent is the background worker behind the label print queue. Each
// poll it discovers new shipment packages on the order platform, enqueues a
// print job per package, drains the pending queue through the Printer, and
// trims finished jobs past retention.
type PrintAgent struct {
	Store   store.Store
	Orders  *baselinker.Client
	Printer Printer
	Logger  *slog.Logger
	Metrics *PrintMetrics

	PollInterval time.Duration
	Retention    time.Duration

	// StatusID is the order status to watch for new shipments. Zero
	// disables discovery; jobs can still be enqueued by hand.
	StatusID int64

	// NextStatusID, when set, is where orders move after their label
	// prints.
	NextStatusID int64

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewPrintAgent creates the label print worker. Poll interval defaults to
// 30 seconds, retention to 30 days.
func NewPrintAgent(st store.Store, orders *baselinker.Client, printer Printer, logger *slog.Logger) *PrintAgent {
	return &PrintAgent{
		Store:        st,
		Orders:       orders,
		Printer:      printer,
		Logger:       logger,
		PollInterval: 30 * time.Second,
		Retention:    30 * 24 * time.Hour,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (a *PrintAgent) Start() {
	go a.run()
	a.Logger.Info("print agent started", "interval", a.PollInterval, "status_id", a.StatusID)
}

// Stop shuts the worker down, blocking until any in-progress poll finishes.
func (a *PrintAgent) Stop() {
	close(a.stopCh)
	<-a.doneCh
	a.Logger.Info("print agent stopped")
}

func (a *PrintAgent) run() {
	defer close(a.doneCh)

	ticker := time.NewTicker(a.PollInterval)
	defer ticker.Stop()

	a.Poll(context.Background())

	for {
		select {
		case <-ticker.C:
			a.Poll(context.Background())
		case <-a.stopCh:
			return
		}
	}
}

// Poll runs one full pass: discovery, drain, retention, gauges. Failures in
// one phase do not stop the others.
func (a *PrintAgent) Poll(ctx context.Context) {
	if err := a.discover(ctx); err != nil {
		a.Logger.Error("print discovery failed", "error", err)
	}
	a.drain(ctx)

	cutoff := time.Now().UTC().Add(-a.Retention)
	if deleted, err := a.Store.PrintJobs().DeleteOlderThan(ctx, cutoff); err != nil {
		a.Logger.Error("print job retention failed", "error", err)
	} else if deleted > 0 {
		a.Logger.Debug("trimmed finished print jobs", "deleted", deleted)
	}

	a.observe(ctx)
}

// discover enqueues a job for every shipment package of orders sitting in
// the watched status that has no job yet.
func (a *PrintAgent) discover(ctx context.Context) error {
	if a.StatusID == 0 {
		return nil
	}

	orders, err := a.Orders.GetOrders(ctx, baselinker.OrderQuery{StatusID: a.StatusID})
	if err != nil {
		return err
	}

	jobs := a.Store.PrintJobs()
	for _, order := range orders {
		packages, err := a.Orders.GetOrderPackages(ctx, order.OrderID)
		if err != nil {
			a.Logger.Error("failed to list packages", "order_id", order.OrderID, "error", err)
			continue
		}
		for _, pkg := range packages {
			if pkg.PackageID == 0 {
				continue
			}
			seen, err := jobs.HasPackage(ctx, pkg.PackageID)
			if err != nil {
				return err
			}
			if seen {
				continue
			}

			job := domain.PrintJob{
				ID:          idx.New().String(),
				OrderID:     order.OrderID,
				PackageID:   pkg.PackageID,
				CourierCode: pkg.CourierCode,
			}
			if err := jobs.Create(ctx, job); err != nil {
				return err
			}
			a.Logger.Info("queued shipment label",
				"job_id", job.ID, "order_id", job.OrderID, "package_id", job.PackageID)
		}
	}
	return nil
}

// drain works through pending jobs oldest first. A failed job is marked
// failed and left for an operator to requeue; it never blocks the queue.
func (a *PrintAgent) drain(ctx context.Context) {
	jobs := a.Store.PrintJobs()
	for range drainBatchSize {
		job, err := jobs.NextPending(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return
		}
		if err != nil {
			a.Logger.Error("failed to read print queue", "error", err)
			return
		}
		a.printOne(ctx, job)
	}
}

func (a *PrintAgent) printOne(ctx context.Context, job domain.PrintJob) {
	jobs := a.Store.PrintJobs()

	label, err := a.Orders.GetLabel(ctx, job.CourierCode, job.PackageID)
	if err != nil {
		a.Metrics.recordError(ctx, "label")
		a.fail(ctx, job, err)
		return
	}

	if err := a.Printer.Print(ctx, job, label); err != nil {
		a.Metrics.recordError(ctx, "print")
		a.fail(ctx, job, err)
		return
	}

	if err := jobs.MarkPrinted(ctx, job.ID); err != nil {
		a.Logger.Error("failed to mark job printed", "job_id", job.ID, "error", err)
		return
	}
	a.Metrics.recordPrinted(ctx)
	a.Logger.Info("label printed", "job_id", job.ID, "order_id", job.OrderID)

	if a.NextStatusID != 0 {
		if err := a.Orders.SetOrderStatus(ctx, job.OrderID, a.NextStatusID); err != nil {
			// The label is out; the order just stays in its status until
			// the next manual move.
			a.Metrics.recordError(ctx, "status")
			a.Logger.Error("failed to advance order status",
				"order_id", job.OrderID, "status_id", a.NextStatusID, "error", err)
		}
	}
}

func (a *PrintAgent) fail(ctx context.Context, job domain.PrintJob, cause error) {
	a.Logger.Error("print job failed", "job_id", job.ID, "error", cause)
	if err := a.Store.PrintJobs().MarkFailed(ctx, job.ID, cause.Error()); err != nil {
		a.Logger.Error("failed to mark job failed", "job_id", job.ID, "error", err)
	}
}

func (a *PrintAgent) observe(ctx context.Context) {
	jobs := a.Store.PrintJobs()

	counts, err := jobs.CountByStatus(ctx)
	if err != nil {
		a.Logger.Error("failed to count print jobs", "error", err)
		return
	}
	for _, status := range []string{domain.PrintJobPending, domain.PrintJobPrinted, domain.PrintJobFailed} {
		a.Metrics.recordQueue(ctx, status, counts[status])
	}

	age, err := jobs.OldestPendingAge(ctx, time.Now().UTC())
	if err != nil {
		a.Logger.Error("failed to read queue age", "error", err)
		return
	}
	a.Metrics.recordOldestPending(ctx, age.Seconds())
}
