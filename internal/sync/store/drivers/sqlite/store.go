package sqlite

import (
	"context"
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"

	"github.com/aussiebroadwan/magsync/internal/sync/store"
)

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Settings() store.Settings   { return &settingsRepo{db: s.db} }
func (s *Store) PrintJobs() store.PrintJobs { return &printJobsRepo{db: s.db} }
func (s *Store) SyncRuns() store.SyncRuns   { return &syncRunsRepo{db: s.db} }

// wrapErr maps driver errors onto the store error taxonomy: no rows becomes
// ErrNotFound, everything else a PersistenceError.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return &store.PersistenceError{Op: op, Err: err}
}
