package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"clankertap/internal/domain"
	"clankertap/internal/logger"
	"clankertap/internal/store"
)

var (
	ErrUnknownMission   = errors.New("unknown mission")
	ErrMissionCompleted = errors.New("mission already completed")
	ErrClaimInFlight    = errors.New("mission claim already in progress")
)

// MissionStatus is a catalog entry joined with the player's completion state.
type MissionStatus struct {
	domain.Mission
	Completed bool `json:"completed"`
	Claiming  bool `json:"claiming"`
}

// ClaimResult describes what a claim did. Pending claims (link missions)
// credit the reward after the verification wait elapses.
type ClaimResult struct {
	Mission     domain.Mission `json:"mission"`
	Pending     bool           `json:"pending"`
	WaitSeconds int            `json:"wait_seconds,omitempty"`
}

// ledgerState is the per-player JSON blob in the KV store: the set of
// completed mission ids plus the UTC day the daily entries were last reset.
type ledgerState struct {
	Completed []string `json:"completed"`
	ResetDate string   `json:"reset_date"`
}

func (st *ledgerState) has(id string) bool {
	for _, c := range st.Completed {
		if c == id {
			return true
		}
	}
	return false
}

// MissionLedger tracks one-time and daily completions outside the row store.
// Link-based claims open externally on the client and sit in a fixed
// "claiming" wait here before the reward lands; no actual verification is
// performed.
type MissionLedger struct {
	kv        store.KV
	claimWait time.Duration
	now       func() time.Time

	mu      sync.Mutex
	pending map[string]struct{} // "<user>:<mission>" claims in their wait window
}

func NewMissionLedger(kv store.KV, claimWait time.Duration) *MissionLedger {
	return &MissionLedger{
		kv:        kv,
		claimWait: claimWait,
		now:       time.Now,
		pending:   make(map[string]struct{}),
	}
}

// Statuses returns the full catalog with the player's completion flags,
// applying the daily reset first.
func (l *MissionLedger) Statuses(ctx context.Context, userID int64) ([]MissionStatus, error) {
	st, err := l.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	res := make([]MissionStatus, 0, len(domain.Missions))
	for _, m := range domain.Missions {
		_, claiming := l.pending[claimKey(userID, m.ID)]
		res = append(res, MissionStatus{
			Mission:   m,
			Completed: st.has(m.ID),
			Claiming:  claiming,
		})
	}
	return res, nil
}

// Claim starts or completes a mission claim. Instant missions credit
// immediately through grant; link missions enter the claiming state and
// credit after the wait. A completed mission cannot be claimed again until
// its daily reset (or ever, for one-time missions).
func (l *MissionLedger) Claim(ctx context.Context, userID int64, missionID string, grant func(amount float64)) (*ClaimResult, error) {
	mission, ok := domain.MissionByID(missionID)
	if !ok {
		return nil, ErrUnknownMission
	}

	st, err := l.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st.has(mission.ID) {
		return nil, ErrMissionCompleted
	}

	key := claimKey(userID, mission.ID)
	l.mu.Lock()
	if _, inFlight := l.pending[key]; inFlight {
		l.mu.Unlock()
		return nil, ErrClaimInFlight
	}
	if !mission.Instant() && l.claimWait > 0 {
		l.pending[key] = struct{}{}
	}
	l.mu.Unlock()

	if mission.Instant() || l.claimWait <= 0 {
		if err := l.complete(ctx, userID, mission, grant); err != nil {
			return nil, err
		}
		return &ClaimResult{Mission: mission}, nil
	}

	time.AfterFunc(l.claimWait, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := l.complete(ctx, userID, mission, grant); err != nil {
			logger.Error("mission claim failed", "user", userID, "mission", mission.ID, "error", err)
		}
		l.mu.Lock()
		delete(l.pending, key)
		l.mu.Unlock()
	})

	return &ClaimResult{
		Mission:     mission,
		Pending:     true,
		WaitSeconds: int(l.claimWait / time.Second),
	}, nil
}

func (l *MissionLedger) complete(ctx context.Context, userID int64, mission domain.Mission, grant func(float64)) error {
	st, err := l.load(ctx, userID)
	if err != nil {
		return err
	}
	if st.has(mission.ID) {
		return ErrMissionCompleted
	}

	st.Completed = append(st.Completed, mission.ID)
	if err := l.save(ctx, userID, st); err != nil {
		return err
	}

	grant(float64(mission.Reward))
	logger.Info("mission completed", "user", userID, "mission", mission.ID, "reward", mission.Reward)
	return nil
}

// load reads the player's ledger and applies the daily reset: when the
// stored UTC day differs from today, daily-tagged completions are pruned and
// the stamp advances. One-time completions are untouched.
func (l *MissionLedger) load(ctx context.Context, userID int64) (*ledgerState, error) {
	today := l.now().UTC().Format("2006-01-02")

	raw, ok, err := l.kv.Get(ctx, ledgerKey(userID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return &ledgerState{ResetDate: today}, nil
	}

	var st ledgerState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		// Corrupt entry: start over rather than brick the missions screen.
		logger.Warn("mission ledger corrupt, resetting", "user", userID, "error", err)
		return &ledgerState{ResetDate: today}, nil
	}

	if st.ResetDate != today {
		kept := st.Completed[:0]
		for _, id := range st.Completed {
			if m, ok := domain.MissionByID(id); ok && !m.Daily {
				kept = append(kept, id)
			}
		}
		st.Completed = kept
		st.ResetDate = today
		if err := l.save(ctx, userID, &st); err != nil {
			return nil, err
		}
	}

	return &st, nil
}

func (l *MissionLedger) save(ctx context.Context, userID int64, st *ledgerState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return l.kv.Set(ctx, ledgerKey(userID), string(raw))
}

func ledgerKey(userID int64) string {
	return "missions:" + strconv.FormatInt(userID, 10)
}

func claimKey(userID int64, missionID string) string {
	return strconv.FormatInt(userID, 10) + ":" + missionID
}
