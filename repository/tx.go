package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"parley/database"
	"parley/service"
)

// AllowanceTxRunner runs allowance repository operations inside a single
// database transaction
type AllowanceTxRunner struct {
	db *database.DB
}

// NewAllowanceTxRunner creates a transaction runner backed by the database pool
func NewAllowanceTxRunner(db *database.DB) *AllowanceTxRunner {
	return &AllowanceTxRunner{db: db}
}

func (r *AllowanceTxRunner) Run(ctx context.Context, fn func(repo service.AllowanceRepository) error) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return fn(NewAllowanceRepositoryWithTx(tx))
	})
}
