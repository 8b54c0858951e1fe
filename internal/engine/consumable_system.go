package engine

import (
	"context"
	"strings"

	"github.com/briarwatch/survivalcore/internal/config"
	"github.com/briarwatch/survivalcore/internal/domain/player"
	"github.com/briarwatch/survivalcore/internal/hostport"
	"github.com/briarwatch/survivalcore/internal/platform/logger"
)

// detectionBatchSize is the rolling-batch width of §4.7 ("up to 10 players
// per tick").
const detectionBatchSize = 10

// ConsumableSystem is the Consumable Detector (C7): processes a rolling
// batch of players per detection tick, pattern-matching newly observed
// active-effect ids against the ordered consumables table and dispatching
// restores directly or poison applications via the Poison Engine (C10).
// The 200 ms processed-index dedup lives on PlayerEntry (§4.7).
type ConsumableSystem struct {
	cfg    *config.Config
	host   hostport.HostAdapter
	poison *PoisonSystem
	logger *logger.Logger
}

// NewConsumableSystem constructs a ConsumableSystem.
func NewConsumableSystem(cfg *config.Config, host hostport.HostAdapter, poison *PoisonSystem, log *logger.Logger) *ConsumableSystem {
	return &ConsumableSystem{cfg: cfg, host: host, poison: poison, logger: log}
}

// RunDetectionTick pulls the next rolling batch from registry and
// processes each member's active-effect list.
func (c *ConsumableSystem) RunDetectionTick(ctx context.Context, registry *Registry, nowMs int64) {
	for _, entry := range registry.NextBatch(detectionBatchSize) {
		c.processPlayer(ctx, entry, nowMs)
	}
}

func (c *ConsumableSystem) processPlayer(ctx context.Context, entry *PlayerEntry, nowMs int64) {
	effects, ok, err := c.host.ReadActiveEffects(ctx, entry.ID.String())
	if err != nil {
		c.logger.Warn("ReadActiveEffects failed for " + entry.ID.String() + ": " + err.Error())
		return
	}
	if !ok {
		return
	}

	for _, eff := range effects {
		if entry.AlreadyConsumed(eff.EffectIndex) {
			continue
		}
		rule, matched := classifyConsumable(eff.EffectID, c.cfg.ConsumableRules)
		if !matched {
			continue
		}
		entry.MarkConsumed(eff.EffectIndex)
		c.apply(entry, rule, nowMs)
	}
}

// classifyConsumable implements the "single classify(effectId) ->
// ConsumableAction?" function the design notes call for (§9), walking the
// ordered prefix/exact-match table once.
func classifyConsumable(effectID string, rules []config.ConsumableRule) (config.ConsumableRule, bool) {
	for _, rule := range rules {
		if strings.HasSuffix(rule.Pattern, "*") {
			prefix := strings.TrimSuffix(rule.Pattern, "*")
			if strings.HasPrefix(effectID, prefix) {
				return rule, true
			}
		} else if effectID == rule.Pattern {
			return rule, true
		}
	}
	return config.ConsumableRule{}, false
}

func (c *ConsumableSystem) apply(entry *PlayerEntry, rule config.ConsumableRule, nowMs int64) {
	switch rule.Action {
	case config.ActionRestoreHunger:
		entry.Stats.Restore(player.StatHunger, rule.Amount)
	case config.ActionRestoreThirst:
		entry.Stats.Restore(player.StatThirst, rule.Amount)
	case config.ActionRestoreEnergy:
		entry.Stats.Restore(player.StatEnergy, rule.Amount)
	case config.ActionRestoreCombined:
		entry.Stats.Restore(player.StatHunger, rule.Combined.Hunger)
		entry.Stats.Restore(player.StatThirst, rule.Combined.Thirst)
		entry.Stats.Restore(player.StatEnergy, rule.Combined.Energy)
	case config.ActionPoison:
		if rule.Poison == "" {
			// Antidote: clears rather than applies (defaults.go note).
			entry.Poison = nil
			return
		}
		variant, ok := poisonVariantFromRule(rule.Poison)
		if !ok {
			c.logger.Warn("unknown poison rule variant: " + string(rule.Poison))
			return
		}
		c.poison.Apply(entry, variant, nowMs)
	}
}

func poisonVariantFromRule(v config.PoisonRuleVariant) (player.ConsumablePoisonVariant, bool) {
	switch v {
	case config.PoisonRuleMildToxin:
		return player.PoisonMildToxin, true
	case config.PoisonRuleSlowPoison:
		return player.PoisonSlowPoison, true
	case config.PoisonRulePurge:
		return player.PoisonPurge, true
	case config.PoisonRuleRandom:
		return player.PoisonRandom, true
	default:
		return 0, false
	}
}
