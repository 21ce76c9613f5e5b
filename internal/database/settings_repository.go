package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
)

// Setting names
const (
	SettingWordsInitialized = "words_initialized"
	SettingRemindersEnabled = "reminders_enabled"
)

// SettingsRepository stores small named values
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new repository instance
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns a setting. ok is false when it was never set.
func (r *SettingsRepository) Get(ctx context.Context, name string) (value string, ok bool, err error) {
	err = r.db.GetContext(ctx, &value, r.db.Rebind("SELECT value FROM settings WHERE name = ?"), name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", name, err)
	}
	return value, true, nil
}

// Set creates or overwrites a setting
func (r *SettingsRepository) Set(ctx context.Context, name, value string) error {
	return setSetting(ctx, r.db, name, value)
}

// GetBool returns a boolean setting or def when unset or malformed
func (r *SettingsRepository) GetBool(ctx context.Context, name string, def bool) (bool, error) {
	v, ok, err := r.Get(ctx, name)
	if err != nil || !ok {
		return def, err
	}
	b, perr := strconv.ParseBool(v)
	if perr != nil {
		return def, nil
	}
	return b, nil
}

// SetBool stores a boolean setting
func (r *SettingsRepository) SetBool(ctx context.Context, name string, value bool) error {
	return r.Set(ctx, name, strconv.FormatBool(value))
}

// setSetting upserts through any executor so it can join a transaction
func setSetting(ctx context.Context, ex sqlx.ExtContext, name, value string) error {
	query := ex.Rebind(`
		INSERT INTO settings (name, value) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value
	`)
	if _, err := ex.ExecContext(ctx, query, name, value); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", name, err)
	}
	return nil
}
