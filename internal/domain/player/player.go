// Package player defines the core per-player survival data owned by the
// Player Stat Store (C4). This package is PURE and must NOT import any
// infrastructure packages (hostport, persistence, engine).
package player

import (
	"time"

	"github.com/google/uuid"
)

// ID is the opaque 128-bit player identity used throughout the engine.
type ID = uuid.UUID

// Activity is the classified movement/combat state used to scale
// depletion rates (C5).
type Activity int

const (
	ActivityIdle Activity = iota
	ActivityWalking
	ActivitySprinting
	ActivitySwimming
	ActivityCombat
	ActivityJumping
)

func (a Activity) String() string {
	switch a {
	case ActivityIdle:
		return "IDLE"
	case ActivityWalking:
		return "WALKING"
	case ActivitySprinting:
		return "SPRINTING"
	case ActivitySwimming:
		return "SWIMMING"
	case ActivityCombat:
		return "COMBAT"
	case ActivityJumping:
		return "JUMPING"
	default:
		return "UNKNOWN"
	}
}

// Stat identifies one of the three depletable vitals.
type Stat int

const (
	StatHunger Stat = iota
	StatThirst
	StatEnergy
)

func (s Stat) String() string {
	switch s {
	case StatHunger:
		return "HUNGER"
	case StatThirst:
		return "THIRST"
	case StatEnergy:
		return "ENERGY"
	default:
		return "UNKNOWN"
	}
}

// Defaults holds the configured initial values a fresh or reset PlayerStats
// is populated with (the "config default" the invariants reference).
type Defaults struct {
	Hunger float64
	Thirst float64
	Energy float64
}

// combatStickyDuration is how long the COMBAT activity window persists
// after the last observed damage edge (§3 Activity: "Combat is sticky").
const combatStickyDuration = 5 * time.Second

// Stats is the per-player mutable record owned exclusively by the Player
// Stat Store (C4). Hunger/Thirst/Energy are always clamped to [0,100].
// Timestamps are monotonic logical ticks (milliseconds since engine start)
// and never decrease.
type Stats struct {
	PlayerID ID

	Hunger float64
	Thirst float64
	Energy float64

	CurrentActivity Activity

	LastDepletionMs [3]int64 // indexed by Stat

	CombatWindowEndMs int64

	PauseHunger  bool
	PauseStamina bool // pauses Energy depletion
}

// New creates a fresh Stats record populated from configured defaults
// (§3: "new player values come from config defaults").
func New(id ID, defaults Defaults, nowMs int64) *Stats {
	return &Stats{
		PlayerID:        id,
		Hunger:          clamp(defaults.Hunger),
		Thirst:          clamp(defaults.Thirst),
		Energy:          clamp(defaults.Energy),
		CurrentActivity: ActivityIdle,
		LastDepletionMs: [3]int64{nowMs, nowMs, nowMs},
	}
}

// Reset restores configured defaults, used by the Death Broadcaster (C18).
func (s *Stats) Reset(defaults Defaults, nowMs int64) {
	s.Hunger = clamp(defaults.Hunger)
	s.Thirst = clamp(defaults.Thirst)
	s.Energy = clamp(defaults.Energy)
	s.LastDepletionMs = [3]int64{nowMs, nowMs, nowMs}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Get returns the current value of the given stat.
func (s *Stats) Get(stat Stat) float64 {
	switch stat {
	case StatHunger:
		return s.Hunger
	case StatThirst:
		return s.Thirst
	case StatEnergy:
		return s.Energy
	default:
		return 0
	}
}

// Set clamps and assigns the given stat, per §4.4 ("Any setter clamps to
// [0,100]").
func (s *Stats) Set(stat Stat, value float64) {
	value = clamp(value)
	switch stat {
	case StatHunger:
		s.Hunger = value
	case StatThirst:
		s.Thirst = value
	case StatEnergy:
		s.Energy = value
	}
}

// Add clamps and adjusts the given stat by delta, returning the new value.
func (s *Stats) Add(stat Stat, delta float64) float64 {
	s.Set(stat, s.Get(stat)+delta)
	return s.Get(stat)
}

// Restore saturates the stat at 100, used by consumable restores (§4.7:
// "restores always saturate at 100").
func (s *Stats) Restore(stat Stat, amount float64) {
	s.Set(stat, s.Get(stat)+amount)
}

// PauseFlag returns whether depletion is currently paused for the stat.
// Only hunger and energy ("stamina") support pausing per §4.4/§4.6.
func (s *Stats) PauseFlag(stat Stat) bool {
	switch stat {
	case StatHunger:
		return s.PauseHunger
	case StatEnergy:
		return s.PauseStamina
	default:
		return false
	}
}

// PauseHungerDepletion is the C4 contract consulted by the Depletion Engine.
func (s *Stats) PauseHungerDepletion(pause bool) {
	s.PauseHunger = pause
}

// PauseStaminaDepletion is the C4 contract consulted by the Depletion Engine.
func (s *Stats) PauseStaminaDepletion(pause bool) {
	s.PauseStamina = pause
}

// RefreshCombatWindow extends the sticky combat window from the observed
// damage edge (onDamageDealt) to nowMs+5s, per §3/§4.5.
func (s *Stats) RefreshCombatWindow(nowMs int64) {
	s.CombatWindowEndMs = nowMs + combatStickyDuration.Milliseconds()
}

// InCombatWindow reports whether the sticky combat window is still active.
func (s *Stats) InCombatWindow(nowMs int64) bool {
	return nowMs < s.CombatWindowEndMs
}
