package game

import (
	"math"
	"sync"

	"clankertap/internal/domain"
)

const (
	baseTapPower    = 1.0
	baseEnergyMax   = 1000.0
	baseEnergyRegen = 1.0
)

// Engine owns one player's economy state: energy, spendable snips, all-time
// snips and upgrade levels. Tap power, passive income, max energy and regen
// are pure projections of the levels and are recomputed on every read so the
// two can never drift apart. Balances are floats internally (regen and
// passive income are per-second reals) and floored at the snapshot boundary.
//
// A single mutex serializes every operation, which gives taps the same
// atomicity the original had from running on one event loop: no caller ever
// observes an energy debit without its matching snip credit.
type Engine struct {
	mu      sync.Mutex
	energy  float64
	snips   float64
	allTime float64
	levels  map[domain.UpgradeType]int
}

// Snapshot is a floored, self-consistent copy of engine state, used for
// persistence flushes and API responses.
type Snapshot struct {
	Energy        int64                      `json:"energy"`
	MaxEnergy     int64                      `json:"max_energy"`
	Snips         int64                      `json:"snips"`
	AllTimeSnips  int64                      `json:"all_time_snips"`
	TapPower      float64                    `json:"tap_power"`
	PassiveIncome float64                    `json:"passive_income"`
	EnergyRegen   float64                    `json:"energy_regen"`
	Levels        map[domain.UpgradeType]int `json:"levels"`
}

// NewEngine seeds an engine from a persisted profile and its upgrade levels.
// Energy is clamped into [0, max] in case the stored value predates an
// energy_max purchase made in another session.
func NewEngine(p *domain.PlayerProfile, levels map[domain.UpgradeType]int) *Engine {
	e := &Engine{
		energy:  float64(p.EnergyCurrent),
		snips:   float64(p.TotalSnips),
		allTime: float64(p.AllTimeSnips),
		levels:  make(map[domain.UpgradeType]int, len(levels)),
	}
	if e.allTime < e.snips {
		e.allTime = e.snips
	}
	for t, lvl := range levels {
		if lvl > 0 {
			e.levels[t] = lvl
		}
	}
	e.energy = math.Max(0, math.Min(e.energy, e.maxEnergyLocked()))
	return e
}

// derived projections; callers must hold e.mu

func (e *Engine) tapPowerLocked() float64 {
	return baseTapPower + float64(e.levels[domain.UpgradeTapPower])*domain.UpgradeDefinitions[domain.UpgradeTapPower].Effect
}

func (e *Engine) passiveIncomeLocked() float64 {
	return float64(e.levels[domain.UpgradePassiveIncome]) * domain.UpgradeDefinitions[domain.UpgradePassiveIncome].Effect
}

func (e *Engine) maxEnergyLocked() float64 {
	return baseEnergyMax + float64(e.levels[domain.UpgradeEnergyMax])*domain.UpgradeDefinitions[domain.UpgradeEnergyMax].Effect
}

func (e *Engine) energyRegenLocked() float64 {
	return baseEnergyRegen + float64(e.levels[domain.UpgradeEnergyRegen])*domain.UpgradeDefinitions[domain.UpgradeEnergyRegen].Effect
}

// TapPower returns the current per-tap yield before combo/lucky modifiers.
func (e *Engine) TapPower() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tapPowerLocked()
}

// Tap spends one energy for one tap's worth of snips. Insufficient energy is
// a normal rejection, not an error: nothing changes and ok is false. Energy
// availability is the only gate on tap frequency.
func (e *Engine) Tap() (yield float64, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.energy < 1 {
		tapsRejected.Inc()
		return 0, false
	}

	yield = e.tapPowerLocked()
	e.energy--
	e.snips += yield
	e.allTime += yield
	tapsTotal.Inc()
	return yield, true
}

// Grant credits amount to both balances unconditionally. Mission rewards and
// combo/lucky bonuses come through here; negative amounts are ignored.
func (e *Engine) Grant(amount float64) {
	if amount <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snips += amount
	e.allTime += amount
}

// Purchase buys the next level of an upgrade track. The cost is
// floor(baseCost * 1.5^level); an unaffordable purchase is a silent no-op
// with ok false.
func (e *Engine) Purchase(kind domain.UpgradeType) (newLevel int, cost int64, ok bool) {
	if !kind.Valid() {
		return 0, 0, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	level := e.levels[kind]
	cost = domain.UpgradeCost(kind, level)
	if e.snips < float64(cost) {
		return level, cost, false
	}

	e.snips -= float64(cost)
	e.levels[kind] = level + 1
	purchasesTotal.WithLabelValues(string(kind)).Inc()
	return level + 1, cost, true
}

// Tick applies one second of regeneration and passive income. Energy climbs
// toward max; if passive income is non-zero both balances grow, whether or
// not the player is tapping.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if max := e.maxEnergyLocked(); e.energy < max {
		e.energy = math.Min(e.energy+e.energyRegenLocked(), max)
	}
	if passive := e.passiveIncomeLocked(); passive > 0 {
		e.snips += passive
		e.allTime += passive
	}
}

// Snapshot returns the current state, floored for persistence/display. It
// always reads live values: the autosave ticker calls this at fire time, so
// it can never flush a copy captured at setup.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	levels := make(map[domain.UpgradeType]int, len(e.levels))
	for t, lvl := range e.levels {
		levels[t] = lvl
	}
	return Snapshot{
		Energy:        int64(math.Floor(e.energy)),
		MaxEnergy:     int64(e.maxEnergyLocked()),
		Snips:         int64(math.Floor(e.snips)),
		AllTimeSnips:  int64(math.Floor(e.allTime)),
		TapPower:      e.tapPowerLocked(),
		PassiveIncome: e.passiveIncomeLocked(),
		EnergyRegen:   e.energyRegenLocked(),
		Levels:        levels,
	}
}
