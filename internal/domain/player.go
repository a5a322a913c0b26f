package domain

import "time"

// PlayerProfile is one row in the users table, keyed by the platform-issued
// telegram_id. Farcaster fids share the same keyspace.
type PlayerProfile struct {
	TelegramID    int64     `db:"telegram_id" json:"telegram_id"`
	Username      string    `db:"username" json:"username"`
	TotalSnips    int64     `db:"total_snips" json:"total_snips"`
	AllTimeSnips  int64     `db:"all_time_snips" json:"all_time_snips"`
	EnergyCurrent int64     `db:"energy_current" json:"energy_current"`
	LastActive    time.Time `db:"last_active" json:"last_active"`
	ReferredBy    *int64    `db:"referred_by" json:"referred_by,omitempty"`
}
