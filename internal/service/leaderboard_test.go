package service

import (
	"context"
	"testing"

	"clankertap/internal/domain"
)

type fakeBoard struct {
	players []domain.PlayerProfile
}

func (f *fakeBoard) TopByAllTime(_ context.Context, limit int) ([]domain.PlayerProfile, error) {
	if limit > len(f.players) {
		limit = len(f.players)
	}
	return f.players[:limit], nil
}

func (f *fakeBoard) Rank(_ context.Context, telegramID int64) (int64, error) {
	var own int64
	for _, p := range f.players {
		if p.TelegramID == telegramID {
			own = p.AllTimeSnips
		}
	}
	rank := int64(1)
	for _, p := range f.players {
		if p.AllTimeSnips > own {
			rank++
		}
	}
	return rank, nil
}

func TestLeaderboardRanksFromScanOrder(t *testing.T) {
	board := &fakeBoard{players: []domain.PlayerProfile{
		{TelegramID: 1, Username: "a", AllTimeSnips: 900},
		{TelegramID: 2, Username: "b", AllTimeSnips: 500},
		{TelegramID: 3, Username: "c", AllTimeSnips: 500},
		{TelegramID: 4, Username: "d", AllTimeSnips: 10},
	}}
	svc := NewLeaderboardService(board)

	entries, err := svc.Top(context.Background(), 3)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d; want 3", len(entries))
	}
	for i, e := range entries {
		if e.Rank != int64(i+1) {
			t.Fatalf("entry %d rank = %d", i, e.Rank)
		}
	}
	if entries[1].TelegramID != 2 || entries[2].TelegramID != 3 {
		t.Fatalf("tie order changed: %+v", entries)
	}
}

func TestRankCountsStrictlyGreater(t *testing.T) {
	board := &fakeBoard{players: []domain.PlayerProfile{
		{TelegramID: 1, AllTimeSnips: 900},
		{TelegramID: 2, AllTimeSnips: 500},
		{TelegramID: 3, AllTimeSnips: 500},
	}}
	svc := NewLeaderboardService(board)

	// Tied players share the strictly-greater count.
	for _, id := range []int64{2, 3} {
		rank, err := svc.RankFor(context.Background(), id)
		if err != nil {
			t.Fatalf("rank: %v", err)
		}
		if rank != 2 {
			t.Fatalf("rank(%d) = %d; want 2", id, rank)
		}
	}
}

func TestLeaderboardDemoMode(t *testing.T) {
	svc := NewLeaderboardService(nil)

	entries, err := svc.Top(context.Background(), 10)
	if err != nil || entries == nil || len(entries) != 0 {
		t.Fatalf("demo top = %v, %v; want empty slice", entries, err)
	}
	rank, err := svc.RankFor(context.Background(), 1)
	if err != nil || rank != 1 {
		t.Fatalf("demo rank = %d, %v; want 1", rank, err)
	}
}
