package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/magsync/internal/sync/domain"
)

var ErrNotFound = errors.New("store: not found")

// PersistenceError wraps a storage-layer failure so callers can tell "the
// value is missing" apart from "the database is broken". The token refresher
// relies on this distinction: a missing token means idle, a broken store
// means back off and complain.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPersistence reports whether err is a storage-layer failure.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Settings() Settings
	PrintJobs() PrintJobs
	SyncRuns() SyncRuns

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Settings is the key/value settings table, which doubles as the token
// store. Update applies all entries atomically; a nil value deletes the key.
type Settings interface {
	// Get returns the value for a key, or ErrNotFound.
	Get(ctx context.Context, key string) (domain.Setting, error)

	// List returns all settings ordered by key.
	List(ctx context.Context) ([]domain.Setting, error)

	// Update applies all entries as one transaction. A nil value deletes
	// the key; others are upserted.
	Update(ctx context.Context, values map[string]*string) error
}

// PrintJobs is the label print queue.
type PrintJobs interface {
	// Create enqueues a new job (id is provided by the caller via ULID).
	Create(ctx context.Context, job domain.PrintJob) error

	// Get returns one job by id, or ErrNotFound.
	Get(ctx context.Context, id string) (domain.PrintJob, error)

	// List returns jobs newest first, optionally filtered by status.
	List(ctx context.Context, status string, limit int) ([]domain.PrintJob, error)

	// NextPending returns the oldest pending job, or ErrNotFound.
	NextPending(ctx context.Context) (domain.PrintJob, error)

	// HasPackage reports whether a job already exists for a shipment
	// package, regardless of status. Discovery uses this to avoid
	// re-printing a label every poll.
	HasPackage(ctx context.Context, packageID int64) (bool, error)

	// MarkPrinted flips a job to printed and bumps updated_at.
	MarkPrinted(ctx context.Context, id string) error

	// MarkFailed flips a job to failed with a reason and increments attempts.
	MarkFailed(ctx context.Context, id, reason string) error

	// Requeue puts a failed job back to pending, clearing the error.
	Requeue(ctx context.Context, id string) error

	// CountByStatus returns the number of jobs per status.
	CountByStatus(ctx context.Context) (map[string]int, error)

	// OldestPendingAge returns how long the oldest pending job has waited.
	// Zero when the queue is empty.
	OldestPendingAge(ctx context.Context, now time.Time) (time.Duration, error)

	// DeleteOlderThan removes printed/failed jobs past the retention cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// SyncRuns records background sync passes.
type SyncRuns interface {
	// Create inserts a run in the running state.
	Create(ctx context.Context, run domain.SyncRun) error

	// Finish sets the terminal status, counts and finished_at.
	Finish(ctx context.Context, id, status string, itemCount int, errMsg string) error

	// List returns runs of one kind, newest first. Empty kind means all.
	List(ctx context.Context, kind string, limit int) ([]domain.SyncRun, error)

	// DeleteOlderThan removes finished runs past the retention cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
