package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/magsync/internal/sync/domain"
	"github.com/aussiebroadwan/magsync/internal/sync/store"
	"github.com/aussiebroadwan/magsync/pkg/allegro"
	"github.com/aussiebroadwan/magsync/pkg/idx"
)

// Settings key holding the orders cursor, an RFC 3339 timestamp. Offers are
// always fetched in full; the listing has no incremental filter.
const keyOrdersCursor = "sync.orders.cursor"

// Syncer periodically pulls the marketplace offer and order listings and
// records each pass as a SyncRun row. It fetches and counts only; the rows
// and the orders cursor are the sole state it keeps.
type Syncer struct {
	Store   store.Store
	Allegro *allegro.Client
	Logger  *slog.Logger
	Metrics *SyncMetrics

	Interval  time.Duration
	Retention time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewSyncer creates the background sync worker. Interval defaults to
// 15 minutes, run retention to 30 days.
func NewSyncer(st store.Store, client *allegro.Client, logger *slog.Logger) *Syncer {
	return &Syncer{
		Store:     st,
		Allegro:   client,
		Logger:    logger,
		Interval:  15 * time.Minute,
		Retention: 30 * 24 * time.Hour,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *Syncer) Start() {
	go s.run()
	s.Logger.Info("sync worker started", "interval", s.Interval)
}

// Stop shuts the worker down, blocking until any in-progress pass finishes.
func (s *Syncer) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("sync worker stopped")
}

func (s *Syncer) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sync(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sync(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sync runs one pass over both listings, then trims old run records. Without
// a stored access token the pass is skipped silently; the account is simply
// not connected yet.
func (s *Syncer) Sync(ctx context.Context) {
	token, err := s.Allegro.Tokens.Get(ctx, allegro.KeyAccessToken)
	if err != nil {
		s.Logger.Error("failed to read access token", "error", err)
		return
	}
	if token == "" {
		s.Logger.Debug("sync skipped, no access token stored")
		return
	}

	s.syncOffers(ctx)
	s.syncOrders(ctx)

	cutoff := time.Now().UTC().Add(-s.Retention)
	if deleted, err := s.Store.SyncRuns().DeleteOlderThan(ctx, cutoff); err != nil {
		s.Logger.Error("sync run retention failed", "error", err)
	} else if deleted > 0 {
		s.Logger.Debug("trimmed old sync runs", "deleted", deleted)
	}
}

func (s *Syncer) syncOffers(ctx context.Context) {
	s.runPass(ctx, domain.SyncKindOffers, func(ctx context.Context) (int, error) {
		offers, err := s.Allegro.FetchAllOffers(ctx, allegro.OfferQuery{})
		return len(offers), err
	})
}

// syncOrders fetches checkout forms updated since the stored cursor. The
// cursor only advances after a successful pass, so a failed window is
// re-fetched next time.
func (s *Syncer) syncOrders(ctx context.Context) {
	startedAt := time.Now().UTC()

	ok := s.runPass(ctx, domain.SyncKindOrders, func(ctx context.Context) (int, error) {
		query := allegro.OrderQuery{}
		if cursor, found := s.ordersCursor(ctx); found {
			query.UpdatedAfter = cursor
		}
		orders, err := s.Allegro.FetchAllOrders(ctx, query)
		return len(orders), err
	})
	if !ok {
		return
	}

	cursorValue := startedAt.Format(time.RFC3339)
	err := s.Store.Settings().Update(ctx, map[string]*string{
		keyOrdersCursor: &cursorValue,
	})
	if err != nil {
		s.Logger.Error("failed to advance orders cursor", "error", err)
	}
}

func (s *Syncer) ordersCursor(ctx context.Context) (time.Time, bool) {
	setting, err := s.Store.Settings().Get(ctx, keyOrdersCursor)
	if errors.Is(err, store.ErrNotFound) {
		return time.Time{}, false
	}
	if err != nil {
		s.Logger.Error("failed to read orders cursor", "error", err)
		return time.Time{}, false
	}
	cursor, err := time.Parse(time.RFC3339, setting.Value)
	if err != nil {
		s.Logger.Warn("discarding malformed orders cursor", "value", setting.Value)
		return time.Time{}, false
	}
	return cursor, true
}

// runPass wraps one fetch in a SyncRun record and reports success.
func (s *Syncer) runPass(ctx context.Context, kind string, fetch func(ctx context.Context) (int, error)) bool {
	run := domain.SyncRun{
		ID:        idx.New().String(),
		Kind:      kind,
		StartedAt: time.Now().UTC(),
	}
	if err := s.Store.SyncRuns().Create(ctx, run); err != nil {
		s.Logger.Error("failed to record sync run", "kind", kind, "error", err)
		return false
	}

	count, err := fetch(ctx)
	if err != nil {
		s.Metrics.recordRun(ctx, kind, "error")
		s.Logger.Error("sync pass failed", "kind", kind, "error", err)
		if finishErr := s.Store.SyncRuns().Finish(ctx, run.ID, domain.SyncRunFailed, 0, err.Error()); finishErr != nil {
			s.Logger.Error("failed to finish sync run", "kind", kind, "error", finishErr)
		}
		return false
	}

	s.Metrics.recordRun(ctx, kind, "success")
	s.Metrics.recordItems(ctx, kind, count)
	s.Logger.Info("sync pass completed", "kind", kind, "items", count)
	if err := s.Store.SyncRuns().Finish(ctx, run.ID, domain.SyncRunSucceeded, count, ""); err != nil {
		s.Logger.Error("failed to finish sync run", "kind", kind, "error", err)
		return false
	}
	return true
}
