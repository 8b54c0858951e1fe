// Package config holds the frozen, validated configuration surface
// consumed once at engine construction (§6 "Configuration surface"). It is
// not reloaded at runtime. This package defines only the struct tree and
// its validation; JSON file I/O, schema migration, and on-disk backup are
// explicitly out of scope per spec.md §1 and live outside this repository.
//
// Validation follows the teacher's internal/domain/rules style (small,
// pure, exported functions) and rgonzalez12-dbd-analytics's
// internal/api/config.go pattern of aggregating field errors before
// returning a single wrapped error.
package config

import (
	"errors"
	"fmt"

	"github.com/briarwatch/survivalcore/internal/domain/leveling"
	"github.com/briarwatch/survivalcore/internal/domain/player"
)

// MetabolismConfig is §6 "metabolism".
type MetabolismConfig struct {
	BaseRateSec        map[player.Stat]float64 // seconds per 1 point, at ActivityIdle multiplier 1.0
	ActivityMultiplier map[player.Activity]float64
	Initial            player.Defaults
	Enabled            map[player.Stat]bool
}

// DebuffMagnitudeSchedule is the per-kind damage/drain ramp of §4.8
// (STARVING ramps from Initial by Increment per tick, capped at Max).
type DebuffMagnitudeSchedule struct {
	Initial   float64
	Increment float64
	Max       float64
}

// DebuffKindConfig is one entry of §6 "debuffs".
type DebuffKindConfig struct {
	Enabled        bool
	EntryThreshold float64
	ExitThreshold  float64
	TickIntervalMs int64
	Magnitude      DebuffMagnitudeSchedule
}

// BuffKindConfig is one entry of §6 "buffs".
type BuffKindConfig struct {
	Enabled               bool
	ActivationThreshold   float64
	DeactivationThreshold float64
	StatMaxAdditive       float64 // DEFENSE / STAMINA
	SpeedMultiplierDelta  float64 // SPEED only
}

// ConsumablePoisonConfig is one entry of §6 "poison.consumable".
type ConsumablePoisonConfig struct {
	DrainHunger float64
	DrainThirst float64
	DrainEnergy float64
	TickMs      int64
	DurationMs  int64
	RecoveryMs  int64 // 0 unless the variant has a recovery phase (PURGE)
}

// NativePoisonTierMultipliers is §6 "poison.native" tier multiplier table
// (POISON only has tiers; other native kinds use 1.0 implicitly).
type NativePoisonTierMultipliers struct {
	T1 float64
	T2 float64
	T3 float64
}

// NativeDebuffConfig is one entry of §6 "poison.native".
type NativeDebuffConfig struct {
	Enabled     bool
	DrainHunger float64
	DrainThirst float64
	DrainEnergy float64
	TickMs      int64
}

// ConsumableAction tags what a matched consumable pattern does.
type ConsumableAction int

const (
	ActionRestoreHunger ConsumableAction = iota
	ActionRestoreThirst
	ActionRestoreEnergy
	ActionRestoreCombined
	ActionPoison
)

// ConsumableRule is one ordered entry of §6 "consumables": a prefix or
// exact effect-id pattern mapped to a restore or poison action.
type ConsumableRule struct {
	Pattern  string // "Prefix_*" or an exact id like "Antidote"
	Action   ConsumableAction
	Amount   float64 // hunger/thirst/energy restore; ignored for combined/poison
	Combined player.Defaults
	Poison   PoisonRuleVariant
}

// PoisonRuleVariant names which ConsumablePoisonVariant a poison rule maps
// to (kept as a small string-backed type to avoid importing the player
// package's iota values directly into config literals).
type PoisonRuleVariant string

const (
	PoisonRuleMildToxin  PoisonRuleVariant = "MILD_TOXIN"
	PoisonRuleSlowPoison PoisonRuleVariant = "SLOW_POISON"
	PoisonRulePurge      PoisonRuleVariant = "PURGE"
	PoisonRuleRandom     PoisonRuleVariant = "RANDOM"
)

// SleepConfig is §6 "sleep".
type SleepConfig struct {
	BedBlockIDPatterns []string
	EnergyRestore      float64
	CooldownMs         int64
	RespectSchedule    bool
}

// LevelingConfig is §6 "leveling".
type LevelingConfig struct {
	Enabled             bool
	MaxLevel            int
	BaseXPPerLevel      float64
	Scaling             float64
	StatBonusesPerLevel float64
	SkillPointsPerLevel int
}

// Config is the full frozen configuration surface of §6, validated once at
// construction via New.
type Config struct {
	Metabolism        MetabolismConfig
	Debuffs           map[player.DebuffKind]DebuffKindConfig
	Buffs             map[player.BuffKind]BuffKindConfig
	Consumable        map[string]ConsumablePoisonConfig // keyed by PoisonRuleVariant string
	Native            map[string]NativeDebuffConfig     // keyed by native kind name (POISON/BURN/STUN/FREEZE/ROOT/SLOW)
	NativePoisonTiers NativePoisonTierMultipliers
	ConsumableRules   []ConsumableRule
	Sleep             SleepConfig
	Leveling          LevelingConfig
	Abilities         leveling.Table
}

// New validates raw and returns a frozen Config, or a wrapped error
// describing every violation found (§7 "Configuration error": rejected at
// construction via validation).
func New(raw Config) (*Config, error) {
	var errs []error

	if raw.Leveling.Enabled {
		if raw.Leveling.MaxLevel < 1 || raw.Leveling.MaxLevel > 1000 {
			errs = append(errs, fmt.Errorf("leveling.maxLevel must be in [1,1000], got %d", raw.Leveling.MaxLevel))
		}
		if raw.Leveling.Scaling < 1.0 {
			errs = append(errs, fmt.Errorf("leveling.scaling must be >= 1.0, got %f", raw.Leveling.Scaling))
		}
		if raw.Leveling.BaseXPPerLevel <= 0 {
			errs = append(errs, fmt.Errorf("leveling.baseXpPerLevel must be > 0, got %f", raw.Leveling.BaseXPPerLevel))
		}
		if raw.Leveling.SkillPointsPerLevel < 0 {
			errs = append(errs, fmt.Errorf("leveling.skillPointsPerLevel must be >= 0, got %d", raw.Leveling.SkillPointsPerLevel))
		}
	}

	for kind, d := range raw.Debuffs {
		if !d.Enabled {
			continue
		}
		if d.Magnitude.Max < d.Magnitude.Initial {
			errs = append(errs, fmt.Errorf("debuffs[%s].magnitude.max must be >= initial", kind))
		}
		// PARCHED and TIRED carry no periodic side effect (speed only), so a
		// zero tick interval is their sentinel rather than a config error.
		if d.TickIntervalMs <= 0 && kind != player.DebuffParched && kind != player.DebuffTired {
			errs = append(errs, fmt.Errorf("debuffs[%s].tickInterval must be > 0", kind))
		}
	}

	for id, ab := range raw.Abilities {
		if !ab.Enabled {
			continue
		}
		if ab.Tier != leveling.TierPermanent && ab.MaxChance < ab.BaseChance {
			errs = append(errs, fmt.Errorf("abilities[%s].maxChance must be >= baseChance", id))
		}
		if ab.UnlockLevel < 1 {
			errs = append(errs, fmt.Errorf("abilities[%s].unlockLevel must be >= 1", id))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}

	cfg := raw
	return &cfg, nil
}
