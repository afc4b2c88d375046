package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/magsync/internal/sync/domain"
	"github.com/aussiebroadwan/magsync/internal/sync/store"
)

type printJobsRepo struct {
	db *sql.DB
}

const printJobColumns = `id, order_id, package_id, courier_code, status, error, attempts, created_at, updated_at`

func scanPrintJob(row interface{ Scan(...any) error }) (domain.PrintJob, error) {
	var j domain.PrintJob
	err := row.Scan(&j.ID, &j.OrderID, &j.PackageID, &j.CourierCode,
		&j.Status, &j.Error, &j.Attempts, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

func (r *printJobsRepo) Create(ctx context.Context, job domain.PrintJob) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO print_jobs (id, order_id, package_id, courier_code, status, error, attempts, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, '', 0, ?, ?)`,
		job.ID, job.OrderID, job.PackageID, job.CourierCode, domain.PrintJobPending, now, now)
	return wrapErr("print_jobs.create", err)
}

func (r *printJobsRepo) Get(ctx context.Context, id string) (domain.PrintJob, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+printJobColumns+` FROM print_jobs WHERE id = ?`, id)
	job, err := scanPrintJob(row)
	if err != nil {
		return domain.PrintJob{}, wrapErr("print_jobs.get", err)
	}
	return job, nil
}

func (r *printJobsRepo) List(ctx context.Context, status string, limit int) ([]domain.PrintJob, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + printJobColumns + ` FROM print_jobs`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("print_jobs.list", err)
	}
	defer rows.Close()

	var jobs []domain.PrintJob
	for rows.Next() {
		job, err := scanPrintJob(rows)
		if err != nil {
			return nil, wrapErr("print_jobs.list", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, wrapErr("print_jobs.list", rows.Err())
}

func (r *printJobsRepo) NextPending(ctx context.Context) (domain.PrintJob, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+printJobColumns+` FROM print_jobs
		 WHERE status = ? ORDER BY created_at LIMIT 1`, domain.PrintJobPending)
	job, err := scanPrintJob(row)
	if err != nil {
		return domain.PrintJob{}, wrapErr("print_jobs.next_pending", err)
	}
	return job, nil
}

func (r *printJobsRepo) HasPackage(ctx context.Context, packageID int64) (bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM print_jobs WHERE package_id = ?`, packageID)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, wrapErr("print_jobs.has_package", err)
	}
	return count > 0, nil
}

func (r *printJobsRepo) MarkPrinted(ctx context.Context, id string) error {
	return r.setStatus(ctx, "print_jobs.mark_printed", id, domain.PrintJobPrinted, "", true)
}

func (r *printJobsRepo) MarkFailed(ctx context.Context, id, reason string) error {
	return r.setStatus(ctx, "print_jobs.mark_failed", id, domain.PrintJobFailed, reason, true)
}

func (r *printJobsRepo) Requeue(ctx context.Context, id string) error {
	return r.setStatus(ctx, "print_jobs.requeue", id, domain.PrintJobPending, "", false)
}

func (r *printJobsRepo) setStatus(ctx context.Context, op, id, status, reason string, bumpAttempts bool) error {
	attempts := 0
	if bumpAttempts {
		attempts = 1
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE print_jobs SET status = ?, error = ?, attempts = attempts + ?, updated_at = ? WHERE id = ?`,
		status, reason, attempts, time.Now().UTC(), id)
	if err != nil {
		return wrapErr(op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return wrapErr(op, err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *printJobsRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM print_jobs GROUP BY status`)
	if err != nil {
		return nil, wrapErr("print_jobs.count", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, wrapErr("print_jobs.count", err)
		}
		counts[status] = count
	}
	return counts, wrapErr("print_jobs.count", rows.Err())
}

func (r *printJobsRepo) OldestPendingAge(ctx context.Context, now time.Time) (time.Duration, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT created_at FROM print_jobs WHERE status = ? ORDER BY created_at LIMIT 1`,
		domain.PrintJobPending)

	var createdAt time.Time
	if err := row.Scan(&createdAt); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, wrapErr("print_jobs.oldest_pending", err)
	}
	return now.Sub(createdAt), nil
}

func (r *printJobsRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM print_jobs WHERE status != ? AND updated_at < ?`,
		domain.PrintJobPending, cutoff)
	if err != nil {
		return 0, wrapErr("print_jobs.delete_old", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, wrapErr("print_jobs.delete_old", err)
	}
	return int(affected), nil
}
