package domain

import "testing"

func TestUpgradeCostTable(t *testing.T) {
	cases := []struct {
		kind  UpgradeType
		level int
		want  int64
	}{
		{UpgradeTapPower, 0, 50},
		{UpgradeTapPower, 1, 75},
		{UpgradeTapPower, 2, 112},
		{UpgradeTapPower, 3, 168},
		{UpgradePassiveIncome, 0, 200},
		{UpgradePassiveIncome, 1, 300},
		{UpgradeEnergyMax, 0, 150},
		{UpgradeEnergyMax, 1, 225},
		{UpgradeEnergyRegen, 0, 300},
		{UpgradeEnergyRegen, 1, 450},
	}
	for _, tc := range cases {
		if got := UpgradeCost(tc.kind, tc.level); got != tc.want {
			t.Fatalf("UpgradeCost(%s, %d) = %d; want %d", tc.kind, tc.level, got, tc.want)
		}
	}
}

func TestUpgradeCostStrictlyIncreasing(t *testing.T) {
	for kind := range UpgradeDefinitions {
		prev := int64(0)
		for level := 0; level < 30; level++ {
			cost := UpgradeCost(kind, level)
			if cost <= prev {
				t.Fatalf("%s: cost(%d) = %d not above cost(%d) = %d", kind, level, cost, level-1, prev)
			}
			prev = cost
		}
	}
}

func TestUpgradeCostUnknownType(t *testing.T) {
	if got := UpgradeCost("jetpack", 0); got != 0 {
		t.Fatalf("unknown type cost = %d; want 0", got)
	}
	if got := UpgradeCost(UpgradeTapPower, -1); got != 0 {
		t.Fatalf("negative level cost = %d; want 0", got)
	}
}

func TestUpgradeTypeValid(t *testing.T) {
	for _, kind := range []UpgradeType{UpgradeTapPower, UpgradePassiveIncome, UpgradeEnergyMax, UpgradeEnergyRegen} {
		if !kind.Valid() {
			t.Fatalf("%s not valid", kind)
		}
	}
	if UpgradeType("jetpack").Valid() {
		t.Fatalf("unknown type reported valid")
	}
}

func TestMissionCatalog(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Missions {
		if seen[m.ID] {
			t.Fatalf("duplicate mission id %s", m.ID)
		}
		seen[m.ID] = true
		if m.Reward <= 0 {
			t.Fatalf("mission %s has no reward", m.ID)
		}
		if m.Daily && !m.Instant() {
			t.Fatalf("mission %s is daily but link-based", m.ID)
		}
	}

	if _, ok := MissionByID("daily_login"); !ok {
		t.Fatalf("daily_login missing from catalog")
	}
	if _, ok := MissionByID("nope"); ok {
		t.Fatalf("MissionByID matched an unknown id")
	}
}
