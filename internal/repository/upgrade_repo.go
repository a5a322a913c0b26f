package repository

import (
	"context"

	"clankertap/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UpgradeRepository struct {
	db *pgxpool.Pool
}

func NewUpgradeRepository(db *pgxpool.Pool) *UpgradeRepository {
	return &UpgradeRepository{db: db}
}

// LevelsFor loads a player's upgrade levels as a map keyed by type. Missing
// tracks are simply absent (level 0).
func (r *UpgradeRepository) LevelsFor(ctx context.Context, userID int64) (map[domain.UpgradeType]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT upgrade_type, current_level FROM user_upgrades WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := make(map[domain.UpgradeType]int)
	for rows.Next() {
		var t domain.UpgradeType
		var lvl int
		if err := rows.Scan(&t, &lvl); err != nil {
			return nil, err
		}
		if t.Valid() {
			levels[t] = lvl
		}
	}
	return levels, rows.Err()
}

// UpsertLevel writes one level in place. The composite key keeps at most one
// row per (user, type): purchases upsert, never append.
func (r *UpgradeRepository) UpsertLevel(ctx context.Context, userID int64, kind domain.UpgradeType, level int) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO user_upgrades (user_id, upgrade_type, current_level)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, upgrade_type) DO UPDATE SET current_level = EXCLUDED.current_level`,
		userID, kind, level,
	)
	return err
}
