package game

import (
	"math/rand"
	"sync"
	"time"
)

const (
	comboWindow  = 1500 * time.Millisecond // idle gap that zeroes the combo
	streakWindow = 2 * time.Second         // idle gap that zeroes the streak
	luckyDisplay = 2500 * time.Millisecond // lucky overlay lifetime

	luckyThreshold = 20   // taps before the lucky gate opens
	luckyChance    = 0.03 // roll once the gate fires
)

var luckyMultipliers = []int{5, 10, 15, 20, 25, 50}

// comboMultiplier is the step function from combo count to tap multiplier.
func comboMultiplier(count int) int {
	switch {
	case count >= 50:
		return 10
	case count >= 30:
		return 5
	case count >= 15:
		return 3
	case count >= 5:
		return 2
	default:
		return 1
	}
}

// TapResult reports what a single successful tap did beyond its base yield.
type TapResult struct {
	Combo           int     `json:"combo"`
	Multiplier      int     `json:"multiplier"`
	Streak          int     `json:"streak"`
	SteppedUp       bool    `json:"stepped_up,omitempty"`
	StepBonus       float64 `json:"step_bonus,omitempty"`
	Lucky           bool    `json:"lucky,omitempty"`
	LuckyMultiplier int     `json:"lucky_multiplier,omitempty"`
	LuckyBonus      float64 `json:"lucky_bonus,omitempty"`
}

// Combo layers the session-local cadence modifiers on top of successful
// taps: the decaying combo multiplier, the cosmetic streak counter and the
// probabilistic lucky-tap bonus. None of it is ever persisted.
//
// State expires two ways: lazily, by checking the gap to the previous tap
// before the next one is counted, and eagerly via per-slot timers that push
// end events to the stream. Timers are cancel-then-rearm (arming a slot
// always stops the previous timer first) and their callbacks re-check the
// idle gap so a stale timer can never zero a combo a later tap rebuilt.
type Combo struct {
	engine *Engine
	emit   func(Event) // nil when no stream is attached

	// injectable for tests
	now       func() time.Time
	rollFloat func() float64
	pickIndex func(n int) int

	mu            sync.Mutex
	comboCount    int
	prevMult      int
	lastComboTap  time.Time
	streakCount   int
	lastStreakTap time.Time
	luckyCounter  int

	comboTimer  *time.Timer
	streakTimer *time.Timer
	luckyTimer  *time.Timer
}

func NewCombo(engine *Engine, emit func(Event)) *Combo {
	return &Combo{
		engine:    engine,
		emit:      emit,
		now:       time.Now,
		rollFloat: rand.Float64,
		pickIndex: rand.Intn,
		prevMult:  1,
	}
}

// OnTap processes one successful tap with the given base yield. Step-up and
// lucky bonuses are granted through the engine on top of the base yield the
// tap itself already credited; both can land on the same tap.
func (c *Combo) OnTap(tapPower float64) TapResult {
	c.mu.Lock()

	now := c.now()
	if !c.lastComboTap.IsZero() && now.Sub(c.lastComboTap) >= comboWindow {
		c.comboCount = 0
		c.prevMult = 1
	}
	if !c.lastStreakTap.IsZero() && now.Sub(c.lastStreakTap) >= streakWindow {
		c.streakCount = 0
	}

	c.comboCount++
	c.streakCount++
	c.lastComboTap = now
	c.lastStreakTap = now

	mult := comboMultiplier(c.comboCount)
	res := TapResult{Combo: c.comboCount, Multiplier: mult, Streak: c.streakCount}

	// One-time bonus only when the multiplier steps up, not on every tap
	// while sitting at a step.
	var bonus float64
	if mult > c.prevMult {
		res.SteppedUp = true
		res.StepBonus = tapPower * float64(mult-1)
		bonus += res.StepBonus
		comboStepUps.Inc()
	}
	c.prevMult = mult

	c.luckyCounter++
	if c.luckyCounter >= luckyThreshold {
		// The gate re-arms on the check itself, win or lose.
		c.luckyCounter = 0
		if c.rollFloat() < luckyChance {
			m := luckyMultipliers[c.pickIndex(len(luckyMultipliers))]
			res.Lucky = true
			res.LuckyMultiplier = m
			res.LuckyBonus = tapPower * float64(m)
			bonus += res.LuckyBonus
			luckyTotal.Inc()
		}
	}

	c.rearmTimersLocked(res.Lucky)
	c.mu.Unlock()

	if bonus > 0 {
		c.engine.Grant(bonus)
	}

	if c.emit != nil {
		c.emit(Event{Type: EventCombo, Payload: ComboPayload{
			Combo: res.Combo, Multiplier: res.Multiplier, Streak: res.Streak, StepBonus: res.StepBonus,
		}})
		if res.Lucky {
			c.emit(Event{Type: EventLucky, Payload: LuckyPayload{
				Multiplier: res.LuckyMultiplier, Bonus: res.LuckyBonus,
			}})
		}
	}

	return res
}

func (c *Combo) rearmTimersLocked(lucky bool) {
	rearm(&c.comboTimer, comboWindow, c.expireCombo)
	rearm(&c.streakTimer, streakWindow, c.expireStreak)
	if lucky {
		rearm(&c.luckyTimer, luckyDisplay, func() {
			if c.emit != nil {
				c.emit(Event{Type: EventLuckyEnd})
			}
		})
	}
}

// rearm cancels any previously scheduled fire for the slot before arming a
// new one, so timers never stack.
func rearm(slot **time.Timer, d time.Duration, f func()) {
	if *slot != nil {
		(*slot).Stop()
	}
	*slot = time.AfterFunc(d, f)
}

func (c *Combo) expireCombo() {
	c.mu.Lock()
	// A tap may have slipped in between the timer firing and this lock;
	// only a genuinely idle combo resets.
	stale := !c.lastComboTap.IsZero() && c.now().Sub(c.lastComboTap) >= comboWindow
	if stale {
		c.comboCount = 0
		c.prevMult = 1
	}
	c.mu.Unlock()

	if stale && c.emit != nil {
		c.emit(Event{Type: EventComboEnd})
	}
}

func (c *Combo) expireStreak() {
	c.mu.Lock()
	stale := !c.lastStreakTap.IsZero() && c.now().Sub(c.lastStreakTap) >= streakWindow
	if stale {
		c.streakCount = 0
	}
	c.mu.Unlock()

	if stale && c.emit != nil {
		c.emit(Event{Type: EventStreakEnd})
	}
}

// State returns the current combo/streak counters and multiplier, applying
// lazy expiry so a stale combo is never reported as live.
func (c *Combo) State() (combo, multiplier, streak int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	cc, sc := c.comboCount, c.streakCount
	if !c.lastComboTap.IsZero() && now.Sub(c.lastComboTap) >= comboWindow {
		cc = 0
	}
	if !c.lastStreakTap.IsZero() && now.Sub(c.lastStreakTap) >= streakWindow {
		sc = 0
	}
	return cc, comboMultiplier(cc), sc
}

// Stop cancels all pending timers. Called on session teardown so nothing
// fires after the session is gone.
func (c *Combo) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range []*time.Timer{c.comboTimer, c.streakTimer, c.luckyTimer} {
		if t != nil {
			t.Stop()
		}
	}
}
