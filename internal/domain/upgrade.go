package domain

import "math"

// UpgradeType enumerates the four purchasable upgrade tracks.
type UpgradeType string

const (
	UpgradeTapPower      UpgradeType = "tap_power"
	UpgradePassiveIncome UpgradeType = "passive_income"
	UpgradeEnergyMax     UpgradeType = "energy_max"
	UpgradeEnergyRegen   UpgradeType = "energy_regen"
)

// Valid reports whether t is a known upgrade type.
func (t UpgradeType) Valid() bool {
	_, ok := UpgradeDefinitions[t]
	return ok
}

// UpgradeDef describes one upgrade track. Effect is what a single level adds
// to the corresponding derived rate.
type UpgradeDef struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	BaseCost    int64   `json:"base_cost"`
	Effect      float64 `json:"effect"`
}

var UpgradeDefinitions = map[UpgradeType]UpgradeDef{
	UpgradeTapPower: {
		Name:        "Money Grabber",
		Description: "+1 Snip per tap",
		BaseCost:    50,
		Effect:      1,
	},
	UpgradePassiveIncome: {
		Name:        "Auto-Bagger",
		Description: "+1 Snip per sec",
		BaseCost:    200,
		Effect:      1,
	},
	UpgradeEnergyMax: {
		Name:        "Vault Expansion",
		Description: "+500 Max Energy",
		BaseCost:    150,
		Effect:      500,
	},
	UpgradeEnergyRegen: {
		Name:        "Passive Income Stream",
		Description: "+1 Energy per sec",
		BaseCost:    300,
		Effect:      1,
	},
}

// UpgradeCost returns the price of buying the next level when the track is
// currently at level. Costs scale geometrically: floor(base * 1.5^level).
func UpgradeCost(t UpgradeType, level int) int64 {
	def, ok := UpgradeDefinitions[t]
	if !ok || level < 0 {
		return 0
	}
	return int64(math.Floor(float64(def.BaseCost) * math.Pow(1.5, float64(level))))
}

// UpgradeRecord is one row in user_upgrades, unique per (user, type).
type UpgradeRecord struct {
	UserID       int64       `db:"user_id" json:"user_id"`
	UpgradeType  UpgradeType `db:"upgrade_type" json:"upgrade_type"`
	CurrentLevel int         `db:"current_level" json:"current_level"`
}
