package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/mprates/dailylesson/internal/logger"
	"github.com/mprates/dailylesson/internal/models"
	"github.com/mprates/dailylesson/internal/repository"
)

type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates an SQLite-backed SettingsRepository.
// Settings are stored as a single JSON document.
func NewSettingsRepository(db *sql.DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (models.Settings, error) {
	log := logger.FromContext(ctx).WithPrefix("settings_repo")

	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM settings WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		log.Error("failed to get settings: %v", err)
		return models.Settings{}, err
	}

	var s models.Settings
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		log.Warn("stored settings unreadable, using defaults: %v", err)
		return models.DefaultSettings(), nil
	}
	return s, nil
}

func (r *settingsRepository) Save(ctx context.Context, s models.Settings) error {
	log := logger.FromContext(ctx).WithPrefix("settings_repo")

	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO settings (id, payload) VALUES (1, ?)
ON CONFLICT(id) DO UPDATE SET payload = excluded.payload
`, string(payload))
	if err != nil {
		log.Error("failed to save settings: %v", err)
	}
	return err
}

func (r *settingsRepository) Seed(ctx context.Context, s models.Settings) error {
	log := logger.FromContext(ctx).WithPrefix("settings_repo")

	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO settings (id, payload) VALUES (1, ?)
ON CONFLICT(id) DO NOTHING
`, string(payload))
	if err != nil {
		log.Error("failed to seed settings: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Info("seeded initial settings")
	}
	return nil
}
