package models

// UserSettings holds a user's stored preferences in one row. Model is a
// one-shot override cleared the next time it is read; Personality is sticky
// and applies to new threads until changed. Both are encoded storage strings.
type UserSettings struct {
	UserID      int64   `db:"user_id"`
	Model       *string `db:"model"`
	Personality *string `db:"personality"`
}
