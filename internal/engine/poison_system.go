package engine

import (
	"math/rand"

	"github.com/briarwatch/survivalcore/internal/config"
	"github.com/briarwatch/survivalcore/internal/domain/player"
	"github.com/briarwatch/survivalcore/internal/platform/logger"
)

// PoisonSystem is the Consumable-Poison Engine (C10): tick-driven
// MILD_TOXIN/SLOW_POISON/PURGE drain with PURGE's recovery phase (§4.10).
// At most one ActivePoison exists per player (§8 invariant 5); a fresh
// match replaces an older one, except while a PURGE recovery phase is
// blocking new poisons from starting.
type PoisonSystem struct {
	cfg    *config.Config
	logger *logger.Logger
}

// NewPoisonSystem constructs a PoisonSystem.
func NewPoisonSystem(cfg *config.Config, log *logger.Logger) *PoisonSystem {
	return &PoisonSystem{cfg: cfg, logger: log}
}

// Apply starts (or replaces) entry's ActivePoison with variant, resolving
// RANDOM uniformly at apply time (§4.10). A no-op while a PURGE recovery
// phase is blocking new poisons.
func (p *PoisonSystem) Apply(entry *PlayerEntry, variant player.ConsumablePoisonVariant, nowMs int64) {
	if ap := entry.Poison; ap != nil && ap.Variant == player.PoisonPurge && ap.RecoveryActive {
		return
	}

	resolved := variant
	if resolved == player.PoisonRandom {
		resolved = randomPoisonVariant()
	}
	variantCfg, ok := p.cfg.Consumable[resolved.String()]
	if !ok {
		p.logger.Warn("no configuration for consumable poison variant " + resolved.String())
		return
	}

	entry.Poison = &player.ActivePoison{
		Variant:    resolved,
		StartMs:    nowMs,
		DurationMs: variantCfg.DurationMs,
		LastTickMs: nowMs,
	}
	p.logger.Event("POISON_APPLY", entry.ID.String(), resolved.String())
}

// Tick advances entry's ActivePoison by one main-tick step, draining on
// its own interval and transitioning PURGE into/out of its recovery
// phase. Clears the slot once fully expired (§4.10).
func (p *PoisonSystem) Tick(entry *PlayerEntry, nowMs int64) {
	ap := entry.Poison
	if ap == nil {
		return
	}

	if ap.Variant == player.PoisonPurge && ap.RecoveryActive {
		if ap.RecoveryExpired(nowMs) {
			entry.Poison = nil
			p.logger.Event("POISON_EXPIRE", entry.ID.String(), ap.Variant.String())
		}
		return
	}

	variantCfg, ok := p.cfg.Consumable[ap.Variant.String()]
	if !ok {
		entry.Poison = nil
		return
	}

	if nowMs-ap.LastTickMs >= variantCfg.TickMs {
		ap.LastTickMs = nowMs
		ap.TicksApplied++
		entry.Stats.Add(player.StatHunger, -variantCfg.DrainHunger)
		entry.Stats.Add(player.StatThirst, -variantCfg.DrainThirst)
		entry.Stats.Add(player.StatEnergy, -variantCfg.DrainEnergy)
	}

	if ap.DrainExpired(nowMs) {
		if ap.Variant == player.PoisonPurge {
			ap.RecoveryActive = true
			ap.RecoveryStartMs = nowMs
			ap.RecoveryMs = variantCfg.RecoveryMs
		} else {
			entry.Poison = nil
			p.logger.Event("POISON_EXPIRE", entry.ID.String(), ap.Variant.String())
		}
	}
}

func randomPoisonVariant() player.ConsumablePoisonVariant {
	switch rand.Intn(3) {
	case 0:
		return player.PoisonMildToxin
	case 1:
		return player.PoisonSlowPoison
	default:
		return player.PoisonPurge
	}
}
