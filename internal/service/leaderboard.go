package service

import (
	"context"

	"clankertap/internal/domain"
)

// LeaderboardStore is the read-only slice of the player repository the
// leaderboard needs.
type LeaderboardStore interface {
	TopByAllTime(ctx context.Context, limit int) ([]domain.PlayerProfile, error)
	Rank(ctx context.Context, telegramID int64) (int64, error)
}

// LeaderboardEntry is one ranked row of the board.
type LeaderboardEntry struct {
	Rank         int64  `json:"rank"`
	TelegramID   int64  `json:"telegram_id"`
	Username     string `json:"username"`
	AllTimeSnips int64  `json:"all_time_snips"`
}

type LeaderboardService struct {
	players LeaderboardStore // nil in demo mode
}

func NewLeaderboardService(players LeaderboardStore) *LeaderboardService {
	return &LeaderboardService{players: players}
}

// Top returns the top-N window ordered by lifetime snips. Ranks are assigned
// from the scan order; the backend's secondary sort key keeps them stable.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if s.players == nil {
		return []LeaderboardEntry{}, nil
	}

	players, err := s.players.TopByAllTime(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(players))
	for i, p := range players {
		entries = append(entries, LeaderboardEntry{
			Rank:         int64(i + 1),
			TelegramID:   p.TelegramID,
			Username:     p.Username,
			AllTimeSnips: p.AllTimeSnips,
		})
	}
	return entries, nil
}

// RankFor computes the player's own rank: the count of players with strictly
// more lifetime snips, plus one. Used when the player falls outside the
// top-N window.
func (s *LeaderboardService) RankFor(ctx context.Context, telegramID int64) (int64, error) {
	if s.players == nil {
		return 1, nil
	}
	return s.players.Rank(ctx, telegramID)
}
