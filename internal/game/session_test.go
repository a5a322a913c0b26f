package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"clankertap/internal/domain"
)

type recordingSaver struct {
	mu    sync.Mutex
	saves []Snapshot
	fail  error
}

func (r *recordingSaver) SaveSnapshot(_ context.Context, _ int64, s Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.saves = append(r.saves, s)
	return nil
}

func (r *recordingSaver) last() (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saves) == 0 {
		return Snapshot{}, false
	}
	return r.saves[len(r.saves)-1], true
}

type recordingUpgrades struct {
	mu     sync.Mutex
	levels map[domain.UpgradeType]int
}

func (r *recordingUpgrades) UpsertLevel(_ context.Context, _ int64, kind domain.UpgradeType, level int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.levels == nil {
		r.levels = make(map[domain.UpgradeType]int)
	}
	r.levels[kind] = level
	return nil
}

func testProfile() *domain.PlayerProfile {
	return &domain.PlayerProfile{TelegramID: 7, Username: "tester", EnergyCurrent: 1000}
}

func TestFlushReadsLiveState(t *testing.T) {
	saver := &recordingSaver{}
	s := newSession(testProfile(), nil, "telegram", saver, nil)

	s.flush(context.Background())
	first, ok := saver.last()
	if !ok || first.Snips != 0 {
		t.Fatalf("first flush: %+v, ok=%v", first, ok)
	}

	// State mutated after the first flush must show up in the next one:
	// each flush snapshots at fire time, never a copy captured at setup.
	for i := 0; i < 5; i++ {
		s.Tap()
	}
	s.flush(context.Background())
	second, _ := saver.last()
	if second.Snips != 5 || second.Energy != 995 {
		t.Fatalf("second flush = %+v; want snips 5, energy 995", second)
	}
}

func TestFlushErrorDoesNotLoseState(t *testing.T) {
	saver := &recordingSaver{fail: context.DeadlineExceeded}
	s := newSession(testProfile(), nil, "telegram", saver, nil)

	s.Tap()
	s.flush(context.Background())

	// The failed flush dropped nothing in memory; clearing the fault lets
	// the next flush carry the full state.
	saver.mu.Lock()
	saver.fail = nil
	saver.mu.Unlock()
	s.flush(context.Background())

	snap, ok := saver.last()
	if !ok || snap.Snips != 1 {
		t.Fatalf("recovered flush = %+v, ok=%v; want snips 1", snap, ok)
	}
}

func TestFlushNoopWithoutSaver(t *testing.T) {
	s := newSession(testProfile(), nil, "web", nil, nil)
	s.Tap()
	s.flush(context.Background()) // must not panic in demo mode
}

func TestPurchasePersistsLevel(t *testing.T) {
	ups := &recordingUpgrades{}
	s := newSession(testProfile(), nil, "telegram", nil, ups)
	s.Grant(50)

	level, _, ok := s.Purchase(context.Background(), domain.UpgradeTapPower)
	if !ok || level != 1 {
		t.Fatalf("purchase: level=%d ok=%v", level, ok)
	}
	ups.mu.Lock()
	got := ups.levels[domain.UpgradeTapPower]
	ups.mu.Unlock()
	if got != 1 {
		t.Fatalf("persisted level = %d; want 1", got)
	}
}

func TestSubscribeReceivesTapEvents(t *testing.T) {
	s := newSession(testProfile(), nil, "telegram", nil, nil)
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	s.Tap()

	select {
	case ev := <-ch:
		if ev.Type != EventCombo {
			t.Fatalf("event type = %s; want %s", ev.Type, EventCombo)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event received after tap")
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	s := newSession(testProfile(), nil, "telegram", nil, nil)
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	// Overfill the buffer without reading; taps must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.Tap()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("taps blocked on a slow subscriber")
	}
}

func TestManagerSharesSessionPerPlayer(t *testing.T) {
	m := NewManager(nil, nil, time.Hour, time.Hour, time.Hour)
	defer m.Shutdown()

	p := testProfile()
	a := m.Acquire(p, nil, "telegram")
	b := m.Acquire(p, nil, "farcaster")
	if a != b {
		t.Fatalf("same player produced two sessions")
	}
	// The session keeps its original platform; a second client does not
	// restart or rebrand it.
	if a.Platform != "telegram" {
		t.Fatalf("platform = %q; want telegram", a.Platform)
	}

	if _, ok := m.Get(p.TelegramID); !ok {
		t.Fatalf("Get missed a live session")
	}
	if _, ok := m.Get(404); ok {
		t.Fatalf("Get returned a session for an unknown player")
	}
}

func TestRunLoopRegeneratesAndFlushes(t *testing.T) {
	saver := &recordingSaver{}
	m := NewManager(saver, nil, 5*time.Millisecond, 10*time.Millisecond, time.Hour)

	p := testProfile()
	p.EnergyCurrent = 0
	s := m.Acquire(p, nil, "telegram")

	time.Sleep(150 * time.Millisecond)
	if snap := s.Engine().Snapshot(); snap.Energy == 0 {
		t.Fatalf("regen ticker never raised energy")
	}
	if _, ok := saver.last(); !ok {
		t.Fatalf("autosave ticker never flushed")
	}
	m.Shutdown()
}

func TestShutdownPerformsFinalFlush(t *testing.T) {
	saver := &recordingSaver{}
	m := NewManager(saver, nil, time.Hour, time.Hour, time.Hour)

	s := m.Acquire(testProfile(), nil, "telegram")
	for i := 0; i < 3; i++ {
		s.Tap()
	}
	m.Shutdown()

	snap, ok := saver.last()
	if !ok {
		t.Fatalf("no flush on shutdown")
	}
	if snap.Snips != 3 {
		t.Fatalf("final flush snips = %d; want 3", snap.Snips)
	}
	if _, ok := m.Get(s.TelegramID); ok {
		t.Fatalf("session survived shutdown")
	}
}

func TestEvictIdleStopsAndFlushes(t *testing.T) {
	saver := &recordingSaver{}
	m := NewManager(saver, nil, time.Hour, time.Hour, 10*time.Millisecond)

	s := m.Acquire(testProfile(), nil, "telegram")
	s.Tap()

	time.Sleep(20 * time.Millisecond)
	m.evictIdle()

	if _, ok := m.Get(s.TelegramID); ok {
		t.Fatalf("idle session not evicted")
	}
	if snap, ok := saver.last(); !ok || snap.Snips != 1 {
		t.Fatalf("eviction flush = %+v, ok=%v; want snips 1", snap, ok)
	}
}
