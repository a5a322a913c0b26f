package game

import (
	"context"
	"sync"
	"time"

	"clankertap/internal/domain"
	"clankertap/internal/logger"
)

// Saver publishes a session snapshot to the users row. nil in demo mode.
type Saver interface {
	SaveSnapshot(ctx context.Context, telegramID int64, s Snapshot) error
}

// UpgradeSaver upserts one upgrade level by (user, type). nil in demo mode.
type UpgradeSaver interface {
	UpsertLevel(ctx context.Context, userID int64, kind domain.UpgradeType, level int) error
}

// Session is one player's live game loop: the economy engine, the combo
// modifier and the event stream, plus the two tickers that drive them. Taps
// are accepted or rejected synchronously against in-memory energy; the
// remote store is only ever touched from the tick goroutine.
type Session struct {
	TelegramID int64
	Username   string
	Platform   string

	engine   *Engine
	combo    *Combo
	players  Saver
	upgrades UpgradeSaver

	mu       sync.Mutex
	subs     map[chan Event]struct{}
	lastSeen time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func newSession(p *domain.PlayerProfile, levels map[domain.UpgradeType]int, platformName string, players Saver, upgrades UpgradeSaver) *Session {
	s := &Session{
		TelegramID: p.TelegramID,
		Username:   p.Username,
		Platform:   platformName,
		players:    players,
		upgrades:   upgrades,
		subs:       make(map[chan Event]struct{}),
		lastSeen:   time.Now(),
		done:       make(chan struct{}),
	}
	s.engine = NewEngine(p, levels)
	s.combo = NewCombo(s.engine, s.publish)
	return s
}

// run drives the two fixed-period timers. Their relative phase is
// unspecified; each save reads whatever the engine holds at fire time.
// Cancelling ctx tears both down and performs a final flush so teardown
// never loses more than it has to.
func (s *Session) run(ctx context.Context, regenEvery, saveEvery time.Duration) {
	regen := time.NewTicker(regenEvery)
	save := time.NewTicker(saveEvery)
	defer regen.Stop()
	defer save.Stop()
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			s.combo.Stop()
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.flush(flushCtx)
			cancel()
			return
		case <-regen.C:
			s.engine.Tick()
			s.publish(Event{Type: EventSnapshot, Payload: s.engine.Snapshot()})
		case <-save.C:
			s.flush(ctx)
		}
	}
}

// flush persists the live snapshot. Failures are logged and dropped: the
// next tick retries with fresher state, and loss is bounded to one interval.
func (s *Session) flush(ctx context.Context) {
	if s.players == nil {
		return
	}
	snap := s.engine.Snapshot()
	if err := s.players.SaveSnapshot(ctx, s.TelegramID, snap); err != nil {
		flushErrors.Inc()
		logger.Error("session flush failed", "user", s.TelegramID, "error", err)
		return
	}
	flushTotal.Inc()
}

// Tap runs one tap through the engine and, when it lands, through the combo
// layer. ok is false only for insufficient energy.
func (s *Session) Tap() (TapResult, bool) {
	s.Touch()
	yield, ok := s.engine.Tap()
	if !ok {
		return TapResult{}, false
	}
	return s.combo.OnTap(yield), true
}

// Purchase buys an upgrade level and, outside demo mode, upserts the new
// level immediately. The engine state is authoritative; a failed upsert is
// logged and the level retries on the next purchase of the same kind.
func (s *Session) Purchase(ctx context.Context, kind domain.UpgradeType) (newLevel int, cost int64, ok bool) {
	s.Touch()
	newLevel, cost, ok = s.engine.Purchase(kind)
	if ok && s.upgrades != nil {
		if err := s.upgrades.UpsertLevel(ctx, s.TelegramID, kind, newLevel); err != nil {
			logger.Error("upgrade upsert failed", "user", s.TelegramID, "type", kind, "error", err)
		}
	}
	return newLevel, cost, ok
}

// Grant credits a reward (missions, admin) through the engine.
func (s *Session) Grant(amount float64) {
	s.Touch()
	s.engine.Grant(amount)
}

// Engine exposes the underlying engine for read paths.
func (s *Session) Engine() *Engine { return s.engine }

// Combo exposes the combo layer for read paths.
func (s *Session) Combo() *Combo { return s.combo }

// Subscribe attaches a stream consumer. Slow consumers drop events rather
// than stall the tick loop.
func (s *Session) Subscribe() chan Event {
	ch := make(chan Event, 32)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Session) Unsubscribe(ch chan Event) {
	s.mu.Lock()
	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
	s.mu.Unlock()
}

func (s *Session) publish(ev Event) {
	s.mu.Lock()
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

// Touch marks the session as recently used for idle eviction.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleFor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastSeen)
}

// stop cancels the tick loop and waits for the final flush.
func (s *Session) stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
}
