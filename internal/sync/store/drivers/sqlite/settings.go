package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/magsync/internal/sync/domain"
)

type settingsRepo struct {
	db *sql.DB
}

func (r *settingsRepo) Get(ctx context.Context, key string) (domain.Setting, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM app_settings WHERE key = ?`, key)

	var s domain.Setting
	if err := row.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
		return domain.Setting{}, wrapErr("settings.get", err)
	}
	return s, nil
}

func (r *settingsRepo) List(ctx context.Context) ([]domain.Setting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value, updated_at FROM app_settings ORDER BY key`)
	if err != nil {
		return nil, wrapErr("settings.list", err)
	}
	defer rows.Close()

	var settings []domain.Setting
	for rows.Next() {
		var s domain.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, wrapErr("settings.list", err)
		}
		settings = append(settings, s)
	}
	return settings, wrapErr("settings.list", rows.Err())
}

// Update applies all entries in one transaction so a token pair and its
// metadata land together or not at all.
func (r *settingsRepo) Update(ctx context.Context, values map[string]*string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("settings.update", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for key, value := range values {
		if value == nil {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM app_settings WHERE key = ?`, key)
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO app_settings (key, value, updated_at) VALUES (?, ?, ?)
				 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
				key, *value, now)
		}
		if err != nil {
			return wrapErr("settings.update", err)
		}
	}

	return wrapErr("settings.update", tx.Commit())
}
