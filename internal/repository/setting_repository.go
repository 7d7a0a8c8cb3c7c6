package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingRepository is the flat key/value configuration store.
type SettingRepository interface {
	GetSetting(ctx context.Context, key, fallback string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

type settingRepository struct {
	pool *pgxpool.Pool
}

// NewSettingRepository instantiates repository.
func NewSettingRepository(pool *pgxpool.Pool) SettingRepository {
	return &settingRepository{pool: pool}
}

// GetSetting returns the stored value, or the fallback when the key
// does not exist.
func (r *settingRepository) GetSetting(ctx context.Context, key, fallback string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key=$1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}
	return value, nil
}

// SetSetting inserts or replaces one value.
func (r *settingRepository) SetSetting(ctx context.Context, key, value string) error {
	const sql = `
        INSERT INTO settings (key, value, updated_at)
        VALUES ($1,$2,NOW())
        ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`
	_, err := r.pool.Exec(ctx, sql, key, value)
	return err
}
