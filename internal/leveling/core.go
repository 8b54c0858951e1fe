// Package leveling implements the leveling subsystem (C13-C16): XP award
// and level-up detection, the ability cache and dispatcher, timed buffs,
// and permanent buffs with versioned host application. It depends only on
// the pure internal/domain/leveling value types and internal/config; it
// never imports hostport or engine directly except through the small
// interfaces declared alongside each manager, keeping the dependency
// direction one-way per the "Cyclic/back-references" design note (§9).
package leveling

import (
	"math"
	"sync"

	"github.com/briarwatch/survivalcore/internal/config"
	domlvl "github.com/briarwatch/survivalcore/internal/domain/leveling"
)

// MetabolismSnapshot is the read-only feedback the stat engine publishes
// for one player before each XP award, resolving the "stat engine never
// looks up ability state directly" rule of §9 by flowing data the other
// direction instead.
type MetabolismSnapshot struct {
	Hunger, Thirst, Energy float64
}

// FeedbackMultiplier is the ×1.25/×0.5/×1.0 XP multiplier of §4.13.
func (m MetabolismSnapshot) FeedbackMultiplier() float64 {
	if m.Hunger > 80 && m.Thirst > 80 && m.Energy > 80 {
		return 1.25
	}
	if m.Hunger < 20 || m.Thirst < 20 || m.Energy < 20 {
		return 0.5
	}
	return 1.0
}

// XPForNextLevel is the cost, in xp, of advancing from nextLevel-1 to
// nextLevel (§4.13: `baseXp × scaling^(level − 2)`, level here being the
// level about to be reached).
func XPForNextLevel(cfg config.LevelingConfig, nextLevel int) float64 {
	return cfg.BaseXPPerLevel * math.Pow(cfg.Scaling, float64(nextLevel-2))
}

// LevelUpEvent is emitted for each level crossed within one AwardXP call.
type LevelUpEvent struct {
	Profession         domlvl.Profession
	NewLevel           int
	SkillPointsAwarded int
}

// Core is the Leveling Core (C13).
type Core struct {
	cfg *config.Config

	blocksMu sync.Mutex
	// placedBlocks is the persistent per-world anti-grief set of §4.13,
	// owned here per the design note (§9) resolving the source's static
	// global set into a concrete component with explicit ownership.
	placedBlocks map[placedBlockKey]struct{}
}

type placedBlockKey struct {
	WorldID string
	X, Y, Z int
}

// NewCore constructs a Core with an empty placed-block set. A host that
// wires a persistence port should rehydrate the set at startup by calling
// RecordPlacedBlock for every persisted position.
func NewCore(cfg *config.Config) *Core {
	return &Core{cfg: cfg, placedBlocks: make(map[placedBlockKey]struct{})}
}

// RecordPlacedBlock records a block-place edge (§6 "onBlockPlace").
func (c *Core) RecordPlacedBlock(worldID string, x, y, z int) {
	c.blocksMu.Lock()
	defer c.blocksMu.Unlock()
	c.placedBlocks[placedBlockKey{worldID, x, y, z}] = struct{}{}
}

// RemovePlacedBlock clears a block-break edge regardless of prior presence
// (§6 "onBlockBreak").
func (c *Core) RemovePlacedBlock(worldID string, x, y, z int) {
	c.blocksMu.Lock()
	defer c.blocksMu.Unlock()
	delete(c.placedBlocks, placedBlockKey{worldID, x, y, z})
}

// IsPlacedBlock reports whether position was recorded as player-placed
// (§8 invariant 10).
func (c *Core) IsPlacedBlock(worldID string, x, y, z int) bool {
	c.blocksMu.Lock()
	defer c.blocksMu.Unlock()
	_, ok := c.placedBlocks[placedBlockKey{worldID, x, y, z}]
	return ok
}

// AwardXP applies metabolism feedback and the caller-resolved tier-1
// ability multiplier, then runs the level-up loop, discarding overflow xp
// at max level (§4.13). Returns the updated Progress value (callers
// atomically replace their stored copy) and any level-up events fired.
func (c *Core) AwardXP(progress domlvl.Progress, profession domlvl.Profession, amount float64, feedback MetabolismSnapshot, abilityMultiplier float64) (domlvl.Progress, []LevelUpEvent) {
	if !c.cfg.Leveling.Enabled || amount <= 0 {
		return progress, nil
	}

	amount *= feedback.FeedbackMultiplier()
	amount *= 1 + abilityMultiplier

	rec := progress.Get(profession)
	if rec.Level >= c.cfg.Leveling.MaxLevel {
		return progress, nil
	}

	rec.XP += amount
	rec.CumulativeXP += amount

	var events []LevelUpEvent
	for rec.Level < c.cfg.Leveling.MaxLevel {
		need := XPForNextLevel(c.cfg.Leveling, rec.Level+1)
		if rec.XP < need {
			break
		}
		rec.XP -= need
		rec.Level++
		rec.SkillPoints += c.cfg.Leveling.SkillPointsPerLevel
		events = append(events, LevelUpEvent{
			Profession:         profession,
			NewLevel:           rec.Level,
			SkillPointsAwarded: c.cfg.Leveling.SkillPointsPerLevel,
		})
	}
	if rec.Level >= c.cfg.Leveling.MaxLevel {
		rec.XP = 0
	}

	return progress.With(profession, rec), events
}

// DeathPenalty is the §4.18 leveling death penalty: two distinct
// professions chosen uniformly at random, each losing 85% of its
// within-level xp, clamped at the level floor (never losing a level).
type DeathPenalty struct {
	Profession domlvl.Profession
	LostXP     float64
}

// ApplyDeathPenalty picks 2 distinct professions uniformly at random (via
// the injected chooser, so tests can supply a deterministic one) and
// applies "clamp after": newXp = max(0, oldXp - 0.85*oldXp) (§9 Open
// Questions).
func ApplyDeathPenalty(progress domlvl.Progress, pickTwo func() [2]domlvl.Profession) (domlvl.Progress, []DeathPenalty) {
	chosen := pickTwo()
	var penalties []DeathPenalty
	for _, prof := range chosen {
		rec := progress.Get(prof)
		oldXP := rec.XP
		newXP := oldXP - 0.85*oldXP
		if newXP < 0 {
			newXP = 0
		}
		lost := oldXP - newXP
		rec.XP = newXP
		progress = progress.With(prof, rec)
		penalties = append(penalties, DeathPenalty{Profession: prof, LostXP: lost})
	}
	return progress, penalties
}
