package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/magsync/internal/sync/domain"
	"github.com/aussiebroadwan/magsync/internal/sync/store"
	"github.com/aussiebroadwan/magsync/internal/sync/store/drivers/sqlite"
	"github.com/aussiebroadwan/magsync/pkg/idx"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.Join(t.TempDir(), "sync.db"))
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

func strPtr(s string) *string { return &s }

func TestSettingsReadOnlyDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sync.db")

	st, err := sqlite.NewStore(fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Settings().Update(ctx, map[string]*string{
		"allegro.access_token": strPtr("at-1"),
	}))
	require.NoError(t, st.Close())

	ro, err := sqlite.NewStore(fmt.Sprintf("file:%s?mode=ro", path))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ro.Close() })

	got, err := ro.Settings().Get(ctx, "allegro.access_token")
	require.NoError(t, err)
	require.Equal(t, "at-1", got.Value)

	err = ro.Settings().Update(ctx, map[string]*string{
		"allegro.access_token": strPtr("at-2"),
	})
	require.Error(t, err)
	require.True(t, store.IsPersistence(err), "writes to a read-only database must surface as a persistence error, got %v", err)
}

func TestStorePing(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Ping(context.Background()))
}

func TestSettingsUpdateAndGet(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	settings := st.Settings()

	require.NoError(t, settings.Update(ctx, map[string]*string{
		"allegro.access_token": strPtr("at-1"),
		"allegro.client_id":    strPtr("client"),
	}))

	got, err := settings.Get(ctx, "allegro.access_token")
	require.NoError(t, err)
	require.Equal(t, "at-1", got.Value)
	require.False(t, got.UpdatedAt.IsZero())

	t.Run("upsert replaces the value", func(t *testing.T) {
		require.NoError(t, settings.Update(ctx, map[string]*string{
			"allegro.access_token": strPtr("at-2"),
		}))
		got, err := settings.Get(ctx, "allegro.access_token")
		require.NoError(t, err)
		require.Equal(t, "at-2", got.Value)
	})

	t.Run("nil value deletes the key", func(t *testing.T) {
		require.NoError(t, settings.Update(ctx, map[string]*string{
			"allegro.access_token": nil,
		}))
		_, err := settings.Get(ctx, "allegro.access_token")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("deleting an absent key is not an error", func(t *testing.T) {
		require.NoError(t, settings.Update(ctx, map[string]*string{
			"never.existed": nil,
		}))
	})

	t.Run("list is ordered by key", func(t *testing.T) {
		require.NoError(t, settings.Update(ctx, map[string]*string{
			"b.key": strPtr("2"),
			"a.key": strPtr("1"),
		}))
		all, err := settings.List(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(all), 2)
		require.Equal(t, "a.key", all[0].Key)
	})
}

func TestSettingsGetMissing(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Settings().Get(context.Background(), "absent")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.False(t, store.IsPersistence(err), "missing value is not a persistence failure")
}

func TestPrintJobsLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	jobs := st.PrintJobs()

	first := domain.PrintJob{ID: idx.New().String(), OrderID: 42, PackageID: 7, CourierCode: "inpost"}
	require.NoError(t, jobs.Create(ctx, first))

	// Created later, must come after first in the pending order.
	time.Sleep(5 * time.Millisecond)
	second := domain.PrintJob{ID: idx.New().String(), OrderID: 43, PackageID: 8, CourierCode: "dpd"}
	require.NoError(t, jobs.Create(ctx, second))

	t.Run("get returns the stored job", func(t *testing.T) {
		got, err := jobs.Get(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, domain.PrintJobPending, got.Status)
		require.EqualValues(t, 42, got.OrderID)
		require.Equal(t, "inpost", got.CourierCode)
		require.Zero(t, got.Attempts)
	})

	t.Run("has package", func(t *testing.T) {
		seen, err := jobs.HasPackage(ctx, 7)
		require.NoError(t, err)
		require.True(t, seen)

		seen, err = jobs.HasPackage(ctx, 999)
		require.NoError(t, err)
		require.False(t, seen)
	})

	t.Run("next pending is the oldest", func(t *testing.T) {
		got, err := jobs.NextPending(ctx)
		require.NoError(t, err)
		require.Equal(t, first.ID, got.ID)
	})

	t.Run("mark printed removes from the pending queue", func(t *testing.T) {
		require.NoError(t, jobs.MarkPrinted(ctx, first.ID))

		got, err := jobs.Get(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, domain.PrintJobPrinted, got.Status)
		require.Equal(t, 1, got.Attempts)

		next, err := jobs.NextPending(ctx)
		require.NoError(t, err)
		require.Equal(t, second.ID, next.ID)
	})

	t.Run("mark failed records the reason", func(t *testing.T) {
		require.NoError(t, jobs.MarkFailed(ctx, second.ID, "label not ready"))

		got, err := jobs.Get(ctx, second.ID)
		require.NoError(t, err)
		require.Equal(t, domain.PrintJobFailed, got.Status)
		require.Equal(t, "label not ready", got.Error)

		_, err = jobs.NextPending(ctx)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("requeue clears the failure", func(t *testing.T) {
		require.NoError(t, jobs.Requeue(ctx, second.ID))

		got, err := jobs.Get(ctx, second.ID)
		require.NoError(t, err)
		require.Equal(t, domain.PrintJobPending, got.Status)
		require.Empty(t, got.Error)
		require.Equal(t, 1, got.Attempts, "requeue does not count as an attempt")
	})

	t.Run("count by status", func(t *testing.T) {
		counts, err := jobs.CountByStatus(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, counts[domain.PrintJobPrinted])
		require.Equal(t, 1, counts[domain.PrintJobPending])
	})

	t.Run("oldest pending age", func(t *testing.T) {
		age, err := jobs.OldestPendingAge(ctx, time.Now().UTC().Add(time.Minute))
		require.NoError(t, err)
		require.Greater(t, age, 50*time.Second)
	})

	t.Run("unknown id maps to not found", func(t *testing.T) {
		_, err := jobs.Get(ctx, "no-such-job")
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, jobs.MarkPrinted(ctx, "no-such-job"), store.ErrNotFound)
		require.ErrorIs(t, jobs.Requeue(ctx, "no-such-job"), store.ErrNotFound)
	})

	t.Run("list filters by status", func(t *testing.T) {
		printed, err := jobs.List(ctx, domain.PrintJobPrinted, 10)
		require.NoError(t, err)
		require.Len(t, printed, 1)
		require.Equal(t, first.ID, printed[0].ID)

		all, err := jobs.List(ctx, "", 10)
		require.NoError(t, err)
		require.Len(t, all, 2)
	})

	t.Run("retention deletes finished jobs only", func(t *testing.T) {
		deleted, err := jobs.DeleteOlderThan(ctx, time.Now().UTC().Add(time.Hour))
		require.NoError(t, err)
		require.Equal(t, 1, deleted, "only the printed job is past retention")

		_, err = jobs.Get(ctx, second.ID)
		require.NoError(t, err, "pending jobs survive retention")
	})
}

func TestOldestPendingAgeEmptyQueue(t *testing.T) {
	st := newTestStore(t)
	age, err := st.PrintJobs().OldestPendingAge(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	require.Zero(t, age)
}

func TestSyncRuns(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	runs := st.SyncRuns()

	offers := domain.SyncRun{ID: idx.New().String(), Kind: "offers"}
	require.NoError(t, runs.Create(ctx, offers))
	time.Sleep(5 * time.Millisecond)
	orders := domain.SyncRun{ID: idx.New().String(), Kind: "orders"}
	require.NoError(t, runs.Create(ctx, orders))

	require.NoError(t, runs.Finish(ctx, offers.ID, domain.SyncRunSucceeded, 120, ""))
	require.NoError(t, runs.Finish(ctx, orders.ID, domain.SyncRunFailed, 0, "boom"))

	t.Run("list newest first", func(t *testing.T) {
		all, err := runs.List(ctx, "", 10)
		require.NoError(t, err)
		require.Len(t, all, 2)
		require.Equal(t, orders.ID, all[0].ID)
	})

	t.Run("list filters by kind", func(t *testing.T) {
		got, err := runs.List(ctx, "offers", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, domain.SyncRunSucceeded, got[0].Status)
		require.Equal(t, 120, got[0].ItemCount)
		require.NotNil(t, got[0].FinishedAt)
	})

	t.Run("failed run carries the error", func(t *testing.T) {
		got, err := runs.List(ctx, "orders", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "boom", got[0].Error)
	})

	t.Run("finish unknown run", func(t *testing.T) {
		require.ErrorIs(t, runs.Finish(ctx, "absent", domain.SyncRunSucceeded, 0, ""), store.ErrNotFound)
	})

	t.Run("retention removes finished runs", func(t *testing.T) {
		deleted, err := runs.DeleteOlderThan(ctx, time.Now().UTC().Add(time.Hour))
		require.NoError(t, err)
		require.Equal(t, 2, deleted)
	})
}
