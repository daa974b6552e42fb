package repository

import (
	"context"
	"fmt"

	"parley/database"

	"github.com/jackc/pgx/v5"
)

// SettingsRepository implements the SettingsRepository interface
type SettingsRepository struct {
	q queryable
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{q: db.Pool}
}

// GetModel retrieves the user's one-shot model override without consuming it
func (r *SettingsRepository) GetModel(ctx context.Context, userID int64) (*string, error) {
	query := `
		SELECT model
		FROM user_settings
		WHERE user_id = $1
	`

	var model *string
	err := r.q.QueryRow(ctx, query, userID).Scan(&model)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get model setting for user %d: %w", userID, err)
	}

	return model, nil
}

// SetModel stores or clears the user's one-shot model override
func (r *SettingsRepository) SetModel(ctx context.Context, userID int64, model *string) error {
	query := `
		INSERT INTO user_settings (user_id, model)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
			DO UPDATE SET model = excluded.model
	`

	if _, err := r.q.Exec(ctx, query, userID, model); err != nil {
		return fmt.Errorf("failed to set model setting for user %d: %w", userID, err)
	}

	return nil
}

// ConsumeModel atomically reads and clears the user's one-shot model override.
// A single statement avoids the read-then-write race between concurrent
// queries from the same user.
func (r *SettingsRepository) ConsumeModel(ctx context.Context, userID int64) (*string, error) {
	query := `
		WITH current AS (
			SELECT user_id, model
			FROM user_settings
			WHERE user_id = $1 AND model IS NOT NULL
		)
		UPDATE user_settings
		SET model = NULL
		FROM current
		WHERE user_settings.user_id = current.user_id
		RETURNING current.model
	`

	var model *string
	err := r.q.QueryRow(ctx, query, userID).Scan(&model)

	if err == pgx.ErrNoRows {
		// No row, or no override set
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume model setting for user %d: %w", userID, err)
	}

	return model, nil
}

// GetPersonality retrieves the user's sticky personality setting
func (r *SettingsRepository) GetPersonality(ctx context.Context, userID int64) (*string, error) {
	query := `
		SELECT personality
		FROM user_settings
		WHERE user_id = $1
	`

	var personality *string
	err := r.q.QueryRow(ctx, query, userID).Scan(&personality)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get personality setting for user %d: %w", userID, err)
	}

	return personality, nil
}

// SetPersonality stores or clears the user's sticky personality setting
func (r *SettingsRepository) SetPersonality(ctx context.Context, userID int64, personality *string) error {
	query := `
		INSERT INTO user_settings (user_id, personality)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
			DO UPDATE SET personality = excluded.personality
	`

	if _, err := r.q.Exec(ctx, query, userID, personality); err != nil {
		return fmt.Errorf("failed to set personality setting for user %d: %w", userID, err)
	}

	return nil
}
