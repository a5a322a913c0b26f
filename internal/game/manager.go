package game

import (
	"context"
	"sync"
	"time"

	"clankertap/internal/domain"
	"clankertap/internal/logger"
)

// Manager owns the live sessions, one per telegram_id. Two clients
// authenticating as the same player share a session, which collapses the
// multi-tab write race the original client had; across server instances the
// flush is still last-write-wins by design.
type Manager struct {
	mu       sync.Mutex
	sessions map[int64]*Session

	players  Saver
	upgrades UpgradeSaver

	regenEvery time.Duration
	saveEvery  time.Duration
	idleTTL    time.Duration
}

func NewManager(players Saver, upgrades UpgradeSaver, regenEvery, saveEvery, idleTTL time.Duration) *Manager {
	return &Manager{
		sessions:   make(map[int64]*Session),
		players:    players,
		upgrades:   upgrades,
		regenEvery: regenEvery,
		saveEvery:  saveEvery,
		idleTTL:    idleTTL,
	}
}

// Acquire returns the live session for the profile, creating and starting
// one from the persisted state if none exists.
func (m *Manager) Acquire(p *domain.PlayerProfile, levels map[domain.UpgradeType]int, platformName string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[p.TelegramID]; ok {
		s.Touch()
		return s
	}

	s := newSession(p, levels, platformName, m.players, m.upgrades)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx, m.regenEvery, m.saveEvery)

	m.sessions[p.TelegramID] = s
	logger.Info("session started", "user", p.TelegramID, "platform", platformName)
	return s
}

// Get returns the live session for a player, if any.
func (m *Manager) Get(telegramID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[telegramID]
	return s, ok
}

// StartCleanup evicts sessions idle past the TTL. Eviction cancels the tick
// loop, which performs a final flush before the session is dropped.
func (m *Manager) StartCleanup() {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			m.evictIdle()
		}
	}()
}

func (m *Manager) evictIdle() {
	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.idleFor() >= m.idleTTL {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.stop()
		logger.Info("session evicted", "user", s.TelegramID)
	}
}

// Shutdown stops every session, waiting for their final flushes.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range all {
		s.stop()
	}
}
