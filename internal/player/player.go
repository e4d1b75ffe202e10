// Package player holds the bounded stat model for a game session.
package player

// Stat bounds. Every mutation saturates at these limits.
const (
	StatMin = 0
	StatMax = 100
)

// DefaultName is used when the player confirms an empty name.
const DefaultName = "Traveler"

// StatNames lists the recognized stats in display order.
var StatNames = []string{"health", "food", "gold", "morale"}

// State is the mutable player state used by game logic and rendering.
type State struct {
	Name   string
	Health int
	Food   int
	Gold   int
	Morale int
}

// Effect maps a stat name to a signed delta, applied additively then clamped.
type Effect map[string]int

// UpkeepConfig tunes the per-transition decay schedule. Ordering is fixed:
// food decays first, then health or morale follows from the resulting food.
type UpkeepConfig struct {
	FoodCost           int
	StarvingHealthCost int
	LowFoodThreshold   int
	LowFoodMoraleCost  int
}

// DefaultUpkeep mirrors the original tuning.
func DefaultUpkeep() UpkeepConfig {
	return UpkeepConfig{
		FoodCost:           1,
		StarvingHealthCost: 5,
		LowFoodThreshold:   20,
		LowFoodMoraleCost:  1,
	}
}

// New returns a fresh player state with starting stats.
func New(name string) State {
	if name == "" {
		name = DefaultName
	}
	return State{
		Name:   name,
		Health: StatMax,
		Food:   StatMax,
		Gold:   0,
		Morale: StatMax,
	}
}

func clamp(v int) int {
	if v < StatMin {
		return StatMin
	}
	if v > StatMax {
		return StatMax
	}
	return v
}

// Clamp forces every stat back into bounds. Used after constructing a state
// from external data.
func (s State) Clamp() State {
	s.Health = clamp(s.Health)
	s.Food = clamp(s.Food)
	s.Gold = clamp(s.Gold)
	s.Morale = clamp(s.Morale)
	if s.Name == "" {
		s.Name = DefaultName
	}
	return s
}

// Stat returns the named stat, or 0 for an unknown name. Unknown names are
// rejected at story load time, so runtime callers always pass valid names.
func (s State) Stat(name string) int {
	switch name {
	case "health":
		return s.Health
	case "food":
		return s.Food
	case "gold":
		return s.Gold
	case "morale":
		return s.Morale
	}
	return 0
}

// KnownStat reports whether name is one of the four recognized stats.
func KnownStat(name string) bool {
	switch name {
	case "health", "food", "gold", "morale":
		return true
	}
	return false
}

func (s State) withStat(name string, v int) State {
	switch name {
	case "health":
		s.Health = clamp(v)
	case "food":
		s.Food = clamp(v)
	case "gold":
		s.Gold = clamp(v)
	case "morale":
		s.Morale = clamp(v)
	}
	return s
}

// ApplyEffect adds each delta to its stat and clamps the result.
func (s State) ApplyEffect(e Effect) State {
	for _, name := range StatNames {
		delta, ok := e[name]
		if !ok {
			continue
		}
		s = s.withStat(name, s.Stat(name)+delta)
	}
	return s
}

// ApplyUpkeep applies the per-transition survival decay. Food always drops;
// at zero food health drops, at low food morale drops.
func (s State) ApplyUpkeep(cfg UpkeepConfig) State {
	s = s.withStat("food", s.Food-abs(cfg.FoodCost))
	if s.Food <= 0 {
		s = s.withStat("health", s.Health-abs(cfg.StarvingHealthCost))
	} else if s.Food <= cfg.LowFoodThreshold {
		s = s.withStat("morale", s.Morale-abs(cfg.LowFoodMoraleCost))
	}
	return s
}

// CanAfford reports whether the player holds at least amount gold. Negative
// amounts are treated as free.
func (s State) CanAfford(amount int) bool {
	if amount < 0 {
		amount = 0
	}
	return s.Gold >= amount
}

// IsAlive reports whether health is above zero.
func (s State) IsAlive() bool { return s.Health > 0 }

// IsStarving reports whether food has run out.
func (s State) IsStarving() bool { return s.Food <= 0 }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
