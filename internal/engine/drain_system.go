package engine

import (
	"context"
	"strings"

	"github.com/briarwatch/survivalcore/internal/config"
	"github.com/briarwatch/survivalcore/internal/domain/player"
	"github.com/briarwatch/survivalcore/internal/hostport"
	"github.com/briarwatch/survivalcore/internal/platform/logger"
)

// nativeKindPrefixes is the id-prefix table of §4.11, matched in
// declaration order; the first matching kind wins.
var nativeKindPrefixes = []struct {
	kind     string
	prefixes []string
}{
	{"POISON", []string{"Poison"}},
	{"BURN", []string{"Burn", "Lava_Burn", "Flame_Staff_Burn"}},
	{"STUN", []string{"Stun", "Bomb_Explode_Stun"}},
	{"FREEZE", []string{"Freeze"}},
	{"ROOT", []string{"Root"}},
	{"SLOW", []string{"Slow", "Two_Handed_Bow_Ability2_Slow"}},
}

// DrainSystem is the Native-Effect Drain Engine (C11): drains stats while
// the host reports a matching native status effect active, independent of
// C8's damage rules (§4.11).
type DrainSystem struct {
	cfg    *config.Config
	host   hostport.HostAdapter
	logger *logger.Logger
}

// NewDrainSystem constructs a DrainSystem.
func NewDrainSystem(cfg *config.Config, host hostport.HostAdapter, log *logger.Logger) *DrainSystem {
	return &DrainSystem{cfg: cfg, host: host, logger: log}
}

// Run reads entry's active effects and applies any matching kind's drain
// on that kind's own tick interval.
func (d *DrainSystem) Run(ctx context.Context, entry *PlayerEntry, nowMs int64) {
	effects, ok, err := d.host.ReadActiveEffects(ctx, entry.ID.String())
	if err != nil {
		d.logger.Warn("ReadActiveEffects failed for " + entry.ID.String() + ": " + err.Error())
		return
	}
	if !ok {
		return
	}

	active := make(map[string]string) // kind -> matched effect id (for tier lookup)
	for _, eff := range effects {
		kind, matched := classifyNativeEffect(eff.EffectID)
		if matched {
			active[kind] = eff.EffectID
		}
	}

	for kind, effectID := range active {
		cfg, ok := d.cfg.Native[kind]
		if !ok || !cfg.Enabled {
			continue
		}
		last := entry.nativeDrainLastMs[kind]
		if nowMs-last < cfg.TickMs {
			continue
		}
		entry.nativeDrainLastMs[kind] = nowMs

		tierMultiplier := 1.0
		if kind == "POISON" {
			tierMultiplier = poisonTierMultiplier(effectID, d.cfg.NativePoisonTiers)
		}

		entry.Stats.Add(player.StatHunger, -cfg.DrainHunger*tierMultiplier)
		entry.Stats.Add(player.StatThirst, -cfg.DrainThirst*tierMultiplier)
		entry.Stats.Add(player.StatEnergy, -cfg.DrainEnergy*tierMultiplier)
	}
}

func classifyNativeEffect(effectID string) (kind string, matched bool) {
	for _, entry := range nativeKindPrefixes {
		for _, prefix := range entry.prefixes {
			if strings.HasPrefix(effectID, prefix) {
				return entry.kind, true
			}
		}
	}
	return "", false
}

func poisonTierMultiplier(effectID string, tiers config.NativePoisonTierMultipliers) float64 {
	switch {
	case strings.HasSuffix(effectID, "_T1"):
		return tiers.T1
	case strings.HasSuffix(effectID, "_T2"):
		return tiers.T2
	case strings.HasSuffix(effectID, "_T3"):
		return tiers.T3
	default:
		return tiers.T1
	}
}
