package repository

import (
	"context"
	"errors"
	"time"

	"clankertap/internal/domain"
	"clankertap/internal/game"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound marks a point-lookup miss, which callers treat as the
// creation path rather than a failure.
var ErrNotFound = errors.New("player not found")

type PlayerRepository struct {
	db *pgxpool.Pool
}

func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

const playerColumns = `telegram_id, COALESCE(username, ''), total_snips, all_time_snips, energy_current, last_active, referred_by`

func scanPlayer(row pgx.Row) (*domain.PlayerProfile, error) {
	var p domain.PlayerProfile
	err := row.Scan(
		&p.TelegramID,
		&p.Username,
		&p.TotalSnips,
		&p.AllTimeSnips,
		&p.EnergyCurrent,
		&p.LastActive,
		&p.ReferredBy,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlayerRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.PlayerProfile, error) {
	return scanPlayer(r.db.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM users WHERE telegram_id = $1`,
		telegramID,
	))
}

// Create inserts a new player row. referred_by is set here or never, aside
// from the single late-binding correction in SetReferrer.
func (r *PlayerRepository) Create(ctx context.Context, p *domain.PlayerProfile) error {
	p.LastActive = time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (telegram_id, username, total_snips, all_time_snips, energy_current, last_active, referred_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.TelegramID, p.Username, p.TotalSnips, p.AllTimeSnips, p.EnergyCurrent, p.LastActive, p.ReferredBy,
	)
	return err
}

// SetReferrer applies the one-time late referral binding. The guard on
// referred_by IS NULL makes the bind first-wins: once set it never changes,
// no matter what referral parameter later visits carry.
func (r *PlayerRepository) SetReferrer(ctx context.Context, telegramID, referrerID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET referred_by = $1 WHERE telegram_id = $2 AND referred_by IS NULL`,
		referrerID, telegramID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SaveSnapshot publishes the latest session snapshot. Idempotent by
// construction: it overwrites the row with whatever the engine holds at
// fire time, plus a fresh last_active stamp.
func (r *PlayerRepository) SaveSnapshot(ctx context.Context, telegramID int64, s game.Snapshot) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users
		 SET total_snips = $1, all_time_snips = $2, energy_current = $3, last_active = $4
		 WHERE telegram_id = $5`,
		s.Snips, s.AllTimeSnips, s.Energy, time.Now().UTC(), telegramID,
	)
	return err
}

// TopByAllTime returns the leaderboard window, ordered by lifetime snips.
// telegram_id breaks ties so pagination stays stable.
func (r *PlayerRepository) TopByAllTime(ctx context.Context, limit int) ([]domain.PlayerProfile, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+playerColumns+` FROM users
		 ORDER BY all_time_snips DESC, telegram_id ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.PlayerProfile
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *p)
	}
	return res, rows.Err()
}

// Rank computes a player's leaderboard position as the count of players
// with strictly more lifetime snips, plus one.
func (r *PlayerRepository) Rank(ctx context.Context, telegramID int64) (int64, error) {
	var rank int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) + 1 FROM users
		 WHERE all_time_snips > (SELECT all_time_snips FROM users WHERE telegram_id = $1)`,
		telegramID,
	).Scan(&rank)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return rank, err
}

// CountPlayers returns the total number of profiles.
func (r *PlayerRepository) CountPlayers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CountReferred returns how many players a given player has referred.
func (r *PlayerRepository) CountReferred(ctx context.Context, telegramID int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE referred_by = $1`,
		telegramID,
	).Scan(&n)
	return n, err
}
