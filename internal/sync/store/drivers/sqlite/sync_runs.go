package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/magsync/internal/sync/domain"
	"github.com/aussiebroadwan/magsync/internal/sync/store"
)

type syncRunsRepo struct {
	db *sql.DB
}

func (r *syncRunsRepo) Create(ctx context.Context, run domain.SyncRun) error {
	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sync_runs (id, kind, status, item_count, error, started_at)
		 VALUES (?, ?, ?, 0, '', ?)`,
		run.ID, run.Kind, domain.SyncRunRunning, startedAt)
	return wrapErr("sync_runs.create", err)
}

func (r *syncRunsRepo) Finish(ctx context.Context, id, status string, itemCount int, errMsg string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sync_runs SET status = ?, item_count = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, itemCount, errMsg, time.Now().UTC(), id)
	if err != nil {
		return wrapErr("sync_runs.finish", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return wrapErr("sync_runs.finish", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *syncRunsRepo) List(ctx context.Context, kind string, limit int) ([]domain.SyncRun, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, kind, status, item_count, error, started_at, finished_at FROM sync_runs`
	args := []any{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("sync_runs.list", err)
	}
	defer rows.Close()

	var runs []domain.SyncRun
	for rows.Next() {
		var run domain.SyncRun
		var finishedAt sql.NullTime
		if err := rows.Scan(&run.ID, &run.Kind, &run.Status, &run.ItemCount,
			&run.Error, &run.StartedAt, &finishedAt); err != nil {
			return nil, wrapErr("sync_runs.list", err)
		}
		if finishedAt.Valid {
			t := finishedAt.Time
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, wrapErr("sync_runs.list", rows.Err())
}

func (r *syncRunsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sync_runs WHERE finished_at IS NOT NULL AND finished_at < ?`, cutoff)
	if err != nil {
		return 0, wrapErr("sync_runs.delete_old", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, wrapErr("sync_runs.delete_old", err)
	}
	return int(affected), nil
}
