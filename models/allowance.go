package models

import (
	"time"
)

// AllowanceAccount tracks a user's spending quota as the instant at which it
// will be fully replenished. A missing row means the quota is full now.
type AllowanceAccount struct {
	UserID     int64     `db:"user_id"`
	TimeToFull time.Time `db:"time_to_full"`
}

// Balance is a point-in-time allowance reading. Unlimited marks users whose
// requests are billed to their own API key, so no quota applies.
type Balance struct {
	Nanodollars int64
	Unlimited   bool
	FullAt      time.Time // when the balance reaches its cap; zero when already full
}

// SpendingRecord is an append-only audit entry for one priced completion call.
// It feeds the /spent aggregates and is never read by the ledger itself.
type SpendingRecord struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	Cost         int64     `db:"cost"` // nanodollars
	InputTokens  int64     `db:"input_tokens"`
	OutputTokens int64     `db:"output_tokens"`
	Model        string    `db:"model"`
	CreatedAt    time.Time `db:"created_at"`
}
