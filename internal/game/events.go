package game

// EventType tags session stream events pushed to connected clients.
type EventType string

const (
	// EventSnapshot carries the full economy snapshot, sent each regen tick.
	EventSnapshot EventType = "snapshot"
	// EventCombo announces the combo state after a successful tap.
	EventCombo EventType = "combo"
	// EventComboEnd fires when the 1.5s idle window elapses without a tap.
	EventComboEnd EventType = "combo_end"
	// EventStreakEnd fires when the 2s streak window elapses.
	EventStreakEnd EventType = "streak_end"
	// EventLucky announces a lucky tap bonus; EventLuckyEnd clears the
	// celebratory overlay after its fixed display window.
	EventLucky    EventType = "lucky_tap"
	EventLuckyEnd EventType = "lucky_end"
)

// Event is one message on a session's presentation stream.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// ComboPayload is the payload of EventCombo.
type ComboPayload struct {
	Combo      int     `json:"combo"`
	Multiplier int     `json:"multiplier"`
	Streak     int     `json:"streak"`
	StepBonus  float64 `json:"step_bonus,omitempty"`
}

// LuckyPayload is the payload of EventLucky.
type LuckyPayload struct {
	Multiplier int     `json:"multiplier"`
	Bonus      float64 `json:"bonus"`
}
