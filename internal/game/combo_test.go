package game

import (
	"testing"
	"time"

	"clankertap/internal/domain"
)

// testCombo returns a combo with a controllable clock and a rigged lucky
// roll that never wins unless a test overrides it.
func testCombo(t *testing.T, e *Engine) (*Combo, *time.Time) {
	t.Helper()
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCombo(e, nil)
	c.now = func() time.Time { return clock }
	c.rollFloat = func() float64 { return 1.0 }
	t.Cleanup(c.Stop)
	return c, &clock
}

func TestComboMultiplierSteps(t *testing.T) {
	cases := []struct {
		count int
		want  int
	}{
		{1, 1}, {4, 1}, {5, 2}, {14, 2}, {15, 3}, {29, 3}, {30, 5}, {49, 5}, {50, 10}, {500, 10},
	}
	for _, tc := range cases {
		if got := comboMultiplier(tc.count); got != tc.want {
			t.Fatalf("comboMultiplier(%d) = %d; want %d", tc.count, got, tc.want)
		}
	}
}

func TestStepUpBonusGrantedOncePerStep(t *testing.T) {
	e := freshEngine(t)
	c, _ := testCombo(t, e)

	var stepUps int
	for i := 1; i <= 14; i++ {
		res := c.OnTap(1)
		if res.Combo != i {
			t.Fatalf("tap %d: combo = %d", i, res.Combo)
		}
		if res.SteppedUp {
			stepUps++
			if i != 5 {
				t.Fatalf("step-up on tap %d; want only tap 5", i)
			}
			if res.StepBonus != 1 {
				t.Fatalf("step bonus = %v; want tapPower*(2-1) = 1", res.StepBonus)
			}
		}
	}
	if stepUps != 1 {
		t.Fatalf("step-ups = %d; want 1 across taps 1..14", stepUps)
	}

	// The bonus landed in the engine exactly once.
	if snap := e.Snapshot(); snap.Snips != 1 {
		t.Fatalf("snips = %d; want 1 (engine taps not routed through combo here)", snap.Snips)
	}

	// Tap 15 crosses the next threshold: multiplier 3, bonus tapPower*2.
	res := c.OnTap(1)
	if !res.SteppedUp || res.Multiplier != 3 || res.StepBonus != 2 {
		t.Fatalf("tap 15: %+v; want step-up to x3 with bonus 2", res)
	}
}

func TestComboResetsAfterIdleWindow(t *testing.T) {
	e := freshEngine(t)
	c, clock := testCombo(t, e)

	for i := 0; i < 10; i++ {
		c.OnTap(1)
	}
	if combo, mult, _ := c.State(); combo != 10 || mult != 2 {
		t.Fatalf("combo=%d mult=%d; want 10, x2", combo, mult)
	}

	*clock = clock.Add(1500 * time.Millisecond)

	// Lazy expiry: the stale combo reads as zero even before any timer fires.
	if combo, mult, _ := c.State(); combo != 0 || mult != 1 {
		t.Fatalf("stale combo reported live: combo=%d mult=%d", combo, mult)
	}

	// The next tap restarts from 1, and crossing 5 again pays the step
	// bonus again: the epoch reset also reset the step tracker.
	res := c.OnTap(1)
	if res.Combo != 1 || res.Multiplier != 1 {
		t.Fatalf("post-idle tap: %+v; want combo restart at 1", res)
	}
	for i := 0; i < 3; i++ {
		c.OnTap(1)
	}
	if res := c.OnTap(1); !res.SteppedUp {
		t.Fatalf("no step-up at 5 in the new epoch: %+v", res)
	}
}

func TestTapJustInsideWindowKeepsCombo(t *testing.T) {
	e := freshEngine(t)
	c, clock := testCombo(t, e)

	c.OnTap(1)
	*clock = clock.Add(1499 * time.Millisecond)
	if res := c.OnTap(1); res.Combo != 2 {
		t.Fatalf("combo = %d; want 2 at gap just under the window", res.Combo)
	}
}

func TestStreakOutlivesCombo(t *testing.T) {
	e := freshEngine(t)
	c, clock := testCombo(t, e)

	for i := 0; i < 6; i++ {
		c.OnTap(1)
	}

	// 1.6s gap kills the combo but not the 2s streak.
	*clock = clock.Add(1600 * time.Millisecond)
	res := c.OnTap(1)
	if res.Combo != 1 {
		t.Fatalf("combo = %d; want reset to 1", res.Combo)
	}
	if res.Streak != 7 {
		t.Fatalf("streak = %d; want 7 (window is 2s)", res.Streak)
	}

	// 2s gap kills the streak too.
	*clock = clock.Add(2 * time.Second)
	if res := c.OnTap(1); res.Streak != 1 {
		t.Fatalf("streak = %d; want reset to 1", res.Streak)
	}
}

func TestLuckyGateRearmsOnLoss(t *testing.T) {
	e := freshEngine(t)
	c, _ := testCombo(t, e)

	var rolls int
	c.rollFloat = func() float64 { rolls++; return 1.0 }

	for i := 0; i < 60; i++ {
		if res := c.OnTap(1); res.Lucky {
			t.Fatalf("lucky on tap %d with a losing roll", i+1)
		}
	}
	// Gate opens on taps 20, 40 and 60; a losing roll still closes it.
	if rolls != 3 {
		t.Fatalf("rolls = %d; want 3 over 60 taps", rolls)
	}
}

func TestLuckyWinGrantsBonus(t *testing.T) {
	e := freshEngine(t)
	c, _ := testCombo(t, e)

	c.rollFloat = func() float64 { return 0.0 }
	c.pickIndex = func(n int) int { return n - 1 } // highest tier

	var win TapResult
	for i := 0; i < 20; i++ {
		if res := c.OnTap(2); res.Lucky {
			win = res
		}
	}
	if !win.Lucky {
		t.Fatalf("no lucky tap in 20 taps with a winning roll")
	}
	if win.LuckyMultiplier != 50 || win.LuckyBonus != 100 {
		t.Fatalf("lucky mult=%d bonus=%v; want x50, 100", win.LuckyMultiplier, win.LuckyBonus)
	}
	if snap := e.Snapshot(); snap.Snips < 100 {
		t.Fatalf("snips = %d; lucky bonus not granted", snap.Snips)
	}
}

func TestStepUpAndLuckyOnSameTap(t *testing.T) {
	e := freshEngine(t)
	c, _ := testCombo(t, e)
	c.rollFloat = func() float64 { return 0.0 }
	c.pickIndex = func(int) int { return 0 } // x5

	// Taps 1..19 at losing rolls are impossible here (roll always wins), so
	// hold the gate shut by keeping the counter under threshold: 19 taps.
	for i := 0; i < 19; i++ {
		c.OnTap(1)
	}
	before := e.Snapshot().Snips

	// Tap 20: gate fires AND combo count 20 is already past the x2/x3 steps,
	// so no step-up. Reset the step tracker to force both on one tap instead.
	c.mu.Lock()
	c.comboCount = 29
	c.prevMult = 3
	c.mu.Unlock()
	res := c.OnTap(1)
	if !res.SteppedUp || res.Multiplier != 5 {
		t.Fatalf("expected step-up to x5: %+v", res)
	}
	if !res.Lucky || res.LuckyBonus != 5 {
		t.Fatalf("expected lucky x5: %+v", res)
	}
	granted := e.Snapshot().Snips - before
	if granted != 9 { // step bonus 4 + lucky bonus 5
		t.Fatalf("granted = %d; want 9", granted)
	}
}

func TestStaleTimerCannotZeroRebuiltCombo(t *testing.T) {
	e := freshEngine(t)
	c, clock := testCombo(t, e)

	c.OnTap(1)
	c.OnTap(1)

	// Simulate a timer that was scheduled for the old epoch firing after new
	// taps arrived: the gap re-check must keep the combo alive.
	*clock = clock.Add(500 * time.Millisecond)
	c.expireCombo()
	if combo, _, _ := c.State(); combo != 2 {
		t.Fatalf("combo = %d after premature expiry; want 2", combo)
	}

	// A genuinely idle combo does expire.
	*clock = clock.Add(comboWindow)
	c.expireCombo()
	if combo, _, _ := c.State(); combo != 0 {
		t.Fatalf("combo = %d after idle expiry; want 0", combo)
	}
}

func TestComboEventsEmitted(t *testing.T) {
	e := NewEngine(&domain.PlayerProfile{EnergyCurrent: 100}, nil)
	var events []Event
	c := NewCombo(e, func(ev Event) { events = append(events, ev) })
	c.rollFloat = func() float64 { return 1.0 }
	defer c.Stop()

	c.OnTap(1)
	if len(events) != 1 || events[0].Type != EventCombo {
		t.Fatalf("events = %+v; want one combo event", events)
	}
	p, ok := events[0].Payload.(ComboPayload)
	if !ok || p.Combo != 1 || p.Multiplier != 1 {
		t.Fatalf("payload = %+v", events[0].Payload)
	}
}
