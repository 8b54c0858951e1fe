package engine

import (
	"context"

	"github.com/briarwatch/survivalcore/internal/config"
	"github.com/briarwatch/survivalcore/internal/domain/player"
	"github.com/briarwatch/survivalcore/internal/hostport"
	"github.com/briarwatch/survivalcore/internal/platform/logger"
)

// defenseModifierKey and staminaModifierKey are the stable host-modifier
// keys DEFENSE/STAMINA install under (§4.9: "stable keys, e.g.
// engine_buff_defense").
const (
	defenseModifierKey = "engine_buff_defense"
	staminaModifierKey = "engine_buff_stamina"
)

// BuffSystem is the Buff State Machine (C9): three independently
// hysteresis-gated kinds, forcibly suppressed whenever any C8 debuff is
// active (§4.9's global precedence rule). Grounded on the same
// subscriber-system shape as DebuffSystem, sharing its per-tick method
// signature.
type BuffSystem struct {
	cfg     *config.Config
	host    hostport.HostAdapter
	arbiter *SpeedArbiter
	logger  *logger.Logger
}

// NewBuffSystem constructs a BuffSystem.
func NewBuffSystem(cfg *config.Config, host hostport.HostAdapter, arbiter *SpeedArbiter, log *logger.Logger) *BuffSystem {
	return &BuffSystem{cfg: cfg, host: host, arbiter: arbiter, logger: log}
}

// Run evaluates every buff kind, suppressing all of them if any debuff is
// active. SPEED's contribution is pushed straight into the Speed Arbiter
// (C12) on activation/deactivation via AddBuffMultiplier, per its "atomic
// delta on transition" contract (§4.12) -- Run itself returns nothing.
func (b *BuffSystem) Run(ctx context.Context, entry *PlayerEntry) {
	playerID := entry.ID.String()

	if entry.Debuffs.AnyActive() {
		for _, kind := range player.AllBuffKinds {
			if entry.Buffs.IsActive(kind) {
				b.deactivate(ctx, entry, kind, playerID)
			}
		}
		return
	}

	for _, kind := range player.AllBuffKinds {
		cfg, ok := b.cfg.Buffs[kind]
		if !ok || !cfg.Enabled {
			continue
		}
		statValue := b.statFor(entry, kind)
		wasActive := entry.Buffs.IsActive(kind)

		switch {
		case !wasActive && statValue >= cfg.ActivationThreshold:
			entry.Buffs.Enter(kind)
			b.activate(ctx, entry, kind, cfg, playerID)
		case wasActive && statValue < cfg.DeactivationThreshold:
			b.deactivate(ctx, entry, kind, playerID)
		}
	}
}

func (b *BuffSystem) statFor(entry *PlayerEntry, kind player.BuffKind) float64 {
	switch kind {
	case player.BuffSpeed:
		return entry.Stats.Energy
	case player.BuffDefense:
		return entry.Stats.Hunger
	case player.BuffStamina:
		return entry.Stats.Thirst
	default:
		return 0
	}
}

func (b *BuffSystem) activate(ctx context.Context, entry *PlayerEntry, kind player.BuffKind, cfg config.BuffKindConfig, playerID string) {
	switch kind {
	case player.BuffSpeed:
		b.arbiter.AddBuffMultiplier(entry, cfg.SpeedMultiplierDelta)
	case player.BuffDefense:
		amount := cfg.StatMaxAdditive
		scheduleHost(ctx, b.host, b.logger, playerID, "", 0, func() {
			if err := b.host.ApplyStatMaxModifier(ctx, playerID, hostport.StatHealth, defenseModifierKey, hostport.ModifierAdditive, amount); err != nil {
				b.logger.Warn("ApplyStatMaxModifier(DEFENSE) failed for " + playerID + ": " + err.Error())
			}
		})
	case player.BuffStamina:
		amount := cfg.StatMaxAdditive
		scheduleHost(ctx, b.host, b.logger, playerID, "", 0, func() {
			if err := b.host.ApplyStatMaxModifier(ctx, playerID, hostport.StatStamina, staminaModifierKey, hostport.ModifierAdditive, amount); err != nil {
				b.logger.Warn("ApplyStatMaxModifier(STAMINA) failed for " + playerID + ": " + err.Error())
			}
		})
	}
	b.logger.Event("BUFF_ENTER", playerID, kind.String())
}

func (b *BuffSystem) deactivate(ctx context.Context, entry *PlayerEntry, kind player.BuffKind, playerID string) {
	entry.Buffs.Exit(kind)
	switch kind {
	case player.BuffSpeed:
		b.arbiter.AddBuffMultiplier(entry, -b.cfg.Buffs[player.BuffSpeed].SpeedMultiplierDelta)
	case player.BuffDefense:
		scheduleHost(ctx, b.host, b.logger, playerID, "", 0, func() {
			if err := b.host.RemoveStatMaxModifier(ctx, playerID, hostport.StatHealth, defenseModifierKey); err != nil {
				b.logger.Warn("RemoveStatMaxModifier(DEFENSE) failed for " + playerID + ": " + err.Error())
			}
		})
	case player.BuffStamina:
		scheduleHost(ctx, b.host, b.logger, playerID, "", 0, func() {
			if err := b.host.RemoveStatMaxModifier(ctx, playerID, hostport.StatStamina, staminaModifierKey); err != nil {
				b.logger.Warn("RemoveStatMaxModifier(STAMINA) failed for " + playerID + ": " + err.Error())
			}
		})
	}
	b.logger.Event("BUFF_EXIT", playerID, kind.String())
}
