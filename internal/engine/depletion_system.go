package engine

import (
	"github.com/briarwatch/survivalcore/internal/config"
	"github.com/briarwatch/survivalcore/internal/domain/player"
)

// MetabolismMultipliers is populated once per player per main tick before
// the Depletion Engine runs, resolving the "Cyclic/back-references" design
// note (§9): the stat engine never looks up ability state directly, it
// only consults this struct, which the orchestrator fills in from the
// Permanent Buff Manager (C16).
type MetabolismMultipliers struct {
	// ReductionFraction is 0 unless the tier-3 Survivalist ability is
	// installed, in which case it is the configured fraction (default
	// 0.15) applied to hunger and thirst depletion (§4.6).
	ReductionFraction float64
}

// DepletionSystem is the Depletion Engine (C6): converts elapsed time,
// activity multiplier, and pause flags into stat decrements at a constant
// average rate robust to tick jitter (§4.6).
type DepletionSystem struct {
	cfg *config.Config
}

// NewDepletionSystem constructs a DepletionSystem.
func NewDepletionSystem(cfg *config.Config) *DepletionSystem {
	return &DepletionSystem{cfg: cfg}
}

// Run applies depletion to every enabled stat for entry, given the current
// tick time and the metabolism multipliers resolved for this player this
// tick.
func (d *DepletionSystem) Run(entry *PlayerEntry, nowMs int64, mult MetabolismMultipliers) {
	for _, stat := range []player.Stat{player.StatHunger, player.StatThirst, player.StatEnergy} {
		if !d.cfg.Metabolism.Enabled[stat] {
			continue
		}
		if entry.Stats.PauseFlag(stat) {
			continue
		}

		baseRate := d.cfg.Metabolism.BaseRateSec[stat]
		if baseRate <= 0 {
			continue
		}
		activityMult := d.cfg.Metabolism.ActivityMultiplier[entry.Stats.CurrentActivity]
		if activityMult <= 0 {
			activityMult = 1.0
		}

		reduction := 0.0
		if stat == player.StatHunger || stat == player.StatThirst {
			reduction = mult.ReductionFraction
		}
		staminaMult := 1.0
		if stat == player.StatEnergy {
			staminaMult = entry.StaminaConsumptionMultiplier
			if staminaMult <= 0 {
				staminaMult = 1.0
			}
		}
		adjustedIntervalSec := baseRate / activityMult / staminaMult * (1 - reduction)
		if adjustedIntervalSec <= 0 {
			continue
		}
		intervalMs := int64(adjustedIntervalSec * 1000)
		if intervalMs <= 0 {
			continue
		}

		last := entry.Stats.LastDepletionMs[stat]
		for nowMs-last >= intervalMs {
			entry.Stats.Add(stat, -1)
			last += intervalMs
		}
		entry.Stats.LastDepletionMs[stat] = last
	}
}
