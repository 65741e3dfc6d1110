package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/finance-tracker/internal/database"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// SettingsRepository handles user settings database operations.
type SettingsRepository struct {
	db database.PGXDB
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db database.PGXDB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves a user's settings. Returns (nil, nil) when the user has no
// stored settings yet; the caller creates defaults.
func (r *SettingsRepository) Get(ctx context.Context, userID string) (*models.UserSettings, error) {
	var profile, notifications, privacy, appearance []byte
	settings := &models.UserSettings{UserID: userID}

	err := r.db.QueryRow(ctx, `
		SELECT profile, notifications, privacy, appearance, updated_at
		FROM user_settings WHERE user_id = $1
	`, userID).Scan(&profile, &notifications, &privacy, &appearance, &settings.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	for _, pair := range []struct {
		raw  []byte
		dest any
	}{
		{profile, &settings.Profile},
		{notifications, &settings.Notifications},
		{privacy, &settings.Privacy},
		{appearance, &settings.Appearance},
	} {
		if err := json.Unmarshal(pair.raw, pair.dest); err != nil {
			return nil, fmt.Errorf("failed to decode settings group: %w", err)
		}
	}
	return settings, nil
}

// Upsert stores a user's settings, replacing the previous row.
func (r *SettingsRepository) Upsert(ctx context.Context, settings *models.UserSettings) error {
	profile, err := json.Marshal(settings.Profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	notifications, err := json.Marshal(settings.Notifications)
	if err != nil {
		return fmt.Errorf("failed to encode notifications: %w", err)
	}
	privacy, err := json.Marshal(settings.Privacy)
	if err != nil {
		return fmt.Errorf("failed to encode privacy: %w", err)
	}
	appearance, err := json.Marshal(settings.Appearance)
	if err != nil {
		return fmt.Errorf("failed to encode appearance: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO user_settings (user_id, profile, notifications, privacy, appearance, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			profile = EXCLUDED.profile,
			notifications = EXCLUDED.notifications,
			privacy = EXCLUDED.privacy,
			appearance = EXCLUDED.appearance,
			updated_at = NOW()
		RETURNING updated_at
	`, settings.UserID, profile, notifications, privacy, appearance).Scan(&settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}
