package repository

import (
	"context"
	"fmt"
	"time"

	"parley/database"
	"parley/models"

	"github.com/jackc/pgx/v5"
)

// AllowanceRepository implements the AllowanceRepository interface
type AllowanceRepository struct {
	q queryable
}

// NewAllowanceRepository creates a new allowance repository
func NewAllowanceRepository(db *database.DB) *AllowanceRepository {
	return &AllowanceRepository{q: db.Pool}
}

// NewAllowanceRepositoryWithTx creates a new allowance repository bound to a transaction
func NewAllowanceRepositoryWithTx(tx pgx.Tx) *AllowanceRepository {
	return &AllowanceRepository{q: tx}
}

// GetTimeToFull retrieves the stored replenishment instant for a user.
// Returns nil when the user has no account row, meaning the quota is full.
func (r *AllowanceRepository) GetTimeToFull(ctx context.Context, userID int64) (*time.Time, error) {
	query := `
		SELECT time_to_full
		FROM allowances
		WHERE user_id = $1
	`

	var timeToFull time.Time
	err := r.q.QueryRow(ctx, query, userID).Scan(&timeToFull)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get time to full for user %d: %w", userID, err)
	}

	return &timeToFull, nil
}

// SetTimeToFull stores the replenishment instant for a user, overwriting any
// previous value. Account rows are never deleted.
func (r *AllowanceRepository) SetTimeToFull(ctx context.Context, userID int64, timeToFull time.Time) error {
	query := `
		INSERT INTO allowances (user_id, time_to_full)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
			DO UPDATE SET time_to_full = excluded.time_to_full
	`

	if _, err := r.q.Exec(ctx, query, userID, timeToFull); err != nil {
		return fmt.Errorf("failed to set time to full for user %d: %w", userID, err)
	}

	return nil
}

// RecordSpending appends a spending record for one priced completion call
func (r *AllowanceRepository) RecordSpending(ctx context.Context, record *models.SpendingRecord) error {
	query := `
		INSERT INTO spending (user_id, cost, input_tokens, output_tokens, model)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		record.UserID,
		record.Cost,
		record.InputTokens,
		record.OutputTokens,
		record.Model,
	).Scan(&record.ID, &record.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record spending for user %d: %w", record.UserID, err)
	}

	return nil
}

// TotalSpendingByUser returns the summed cost of all recorded spending for a user
func (r *AllowanceRepository) TotalSpendingByUser(ctx context.Context, userID int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(cost), 0)
		FROM spending
		WHERE user_id = $1
	`

	var total int64
	if err := r.q.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to get total spending for user %d: %w", userID, err)
	}

	return total, nil
}

// TotalSpending returns the summed cost of all recorded spending across all users
func (r *AllowanceRepository) TotalSpending(ctx context.Context) (int64, error) {
	query := `
		SELECT COALESCE(SUM(cost), 0)
		FROM spending
	`

	var total int64
	if err := r.q.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to get total spending: %w", err)
	}

	return total, nil
}
