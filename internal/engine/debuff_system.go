package engine

import (
	"context"

	"github.com/briarwatch/survivalcore/internal/config"
	"github.com/briarwatch/survivalcore/internal/domain/player"
	"github.com/briarwatch/survivalcore/internal/hostport"
	"github.com/briarwatch/survivalcore/internal/platform/logger"
)

// DebuffSystem is the Debuff State Machine (C8): five independently
// hysteresis-gated kinds, each with its own entry/exit predicate and
// damage/side-effect policy (§4.8). Grounded on the teacher's
// sanity_system.go shape (one system, state map, chat-on-transition) but
// driven by tick time rather than subscribed events.
type DebuffSystem struct {
	cfg    *config.Config
	host   hostport.HostAdapter
	logger *logger.Logger
}

// NewDebuffSystem constructs a DebuffSystem.
func NewDebuffSystem(cfg *config.Config, host hostport.HostAdapter, log *logger.Logger) *DebuffSystem {
	return &DebuffSystem{cfg: cfg, host: host, logger: log}
}

// Run evaluates every debuff kind for entry for this player this tick,
// applying scheduled damage/drain and chat edges, and returns the
// PARCHED/TIRED speed multiplier contribution for the Speed Arbiter (C12).
// Returning 1.0 means "no contribution".
func (d *DebuffSystem) Run(ctx context.Context, entry *PlayerEntry, nowMs int64) (speedMultiplier float64) {
	speedMultiplier = 1.0
	playerID := entry.ID.String()

	for _, kind := range player.AllDebuffKinds {
		cfg, ok := d.cfg.Debuffs[kind]
		if !ok || !cfg.Enabled {
			continue
		}

		statValue, entering, exiting := d.evaluate(kind, entry, cfg)
		wasActive := entry.Debuffs.IsActive(kind)

		if !wasActive && entering {
			entry.Debuffs.Enter(kind, nowMs)
			sendChat(ctx, d.host, d.logger, playerID, "You are "+debuffChatVerb(kind)+"!", "red")
			d.logger.Event("DEBUFF_ENTER", playerID, kind.String())
		} else if wasActive && exiting {
			entry.Debuffs.Exit(kind)
			sendChat(ctx, d.host, d.logger, playerID, "You are no longer "+debuffChatVerb(kind)+".", "green")
			d.logger.Event("DEBUFF_EXIT", playerID, kind.String())
			wasActive = false
		}

		if entry.Debuffs.IsActive(kind) {
			d.applySideEffect(ctx, entry, kind, cfg, nowMs)
		}

		switch kind {
		case player.DebuffParched:
			if entry.Debuffs.IsActive(kind) {
				speedMultiplier *= interpolate(statValue, cfg.ExitThreshold, 0.45)
			}
		case player.DebuffTired:
			if entry.Debuffs.IsActive(kind) {
				speedMultiplier *= interpolate(statValue, cfg.ExitThreshold, 0.60)
				// Stamina consumption multiplier ranges 1.0->1.5 over the
				// same band as the speed curve (§4.8).
				entry.StaminaConsumptionMultiplier = interpolate(statValue, cfg.ExitThreshold, 1.5)
			} else {
				entry.StaminaConsumptionMultiplier = 1.0
			}
		}
	}

	return speedMultiplier
}

// evaluate returns the relevant stat's current value plus whether the
// entry/exit predicate for kind currently holds. STARVING/DEHYDRATED/
// EXHAUSTED enter only at the stat's floor (0); PARCHED/TIRED enter
// anywhere strictly below the threshold. Both exit at-or-above the
// (shared) exit threshold -- this asymmetry is what gives each kind a
// genuine hysteresis band rather than a single crossing point.
func (d *DebuffSystem) evaluate(kind player.DebuffKind, entry *PlayerEntry, cfg config.DebuffKindConfig) (statValue float64, entering, exiting bool) {
	switch kind {
	case player.DebuffStarving:
		statValue = entry.Stats.Hunger
		entering = statValue <= cfg.EntryThreshold
	case player.DebuffDehydrated:
		statValue = entry.Stats.Thirst
		entering = statValue <= cfg.EntryThreshold
	case player.DebuffExhausted:
		statValue = entry.Stats.Energy
		entering = statValue <= cfg.EntryThreshold
	case player.DebuffParched:
		statValue = entry.Stats.Thirst
		entering = statValue < cfg.EntryThreshold
	case player.DebuffTired:
		statValue = entry.Stats.Energy
		entering = statValue < cfg.EntryThreshold
	}
	exiting = statValue >= cfg.ExitThreshold
	return
}

// applySideEffect runs the per-kind periodic damage/drain policy of the
// table in §4.8, gated by the kind's own tick interval and independent of
// the other kinds' schedules.
func (d *DebuffSystem) applySideEffect(ctx context.Context, entry *PlayerEntry, kind player.DebuffKind, cfg config.DebuffKindConfig, nowMs int64) {
	if cfg.TickIntervalMs <= 0 {
		return // PARCHED/TIRED have no periodic side effect, only speed.
	}
	last := entry.Debuffs.LastDamageMs[kind]
	if nowMs-last < cfg.TickIntervalMs {
		return
	}
	entry.Debuffs.LastDamageMs[kind] = nowMs

	magnitude := entry.Debuffs.DamageCounter[kind]
	if magnitude <= 0 {
		magnitude = cfg.Magnitude.Initial
	} else {
		magnitude += cfg.Magnitude.Increment
	}
	if magnitude > cfg.Magnitude.Max {
		magnitude = cfg.Magnitude.Max
	}
	entry.Debuffs.DamageCounter[kind] = magnitude

	playerID := entry.ID.String()
	switch kind {
	case player.DebuffStarving, player.DebuffDehydrated:
		cause := kind.String()
		scheduleHost(ctx, d.host, d.logger, playerID, "", 0, func() {
			if err := d.host.ApplyDamage(ctx, playerID, magnitude, cause); err != nil {
				d.logger.Warn("ApplyDamage failed for " + playerID + ": " + err.Error())
			}
		})
	case player.DebuffExhausted:
		scheduleHost(ctx, d.host, d.logger, playerID, "", 0, func() {
			if err := d.host.DrainStamina(ctx, playerID, magnitude); err != nil {
				d.logger.Warn("DrainStamina failed for " + playerID + ": " + err.Error())
			}
		})
	}
}

// interpolate linearly blends between endValue at stat=0 and 1.0 at
// stat=threshold, clamping the fraction to [0,1] first (§4.8 PARCHED/TIRED
// curves: endValue is a speed floor below 1.0, or a consumption ceiling
// above 1.0).
func interpolate(value, threshold, endValue float64) float64 {
	if threshold <= 0 {
		return 1.0
	}
	t := value / threshold
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return endValue + t*(1-endValue)
}

func debuffChatVerb(kind player.DebuffKind) string {
	switch kind {
	case player.DebuffStarving:
		return "starving"
	case player.DebuffDehydrated:
		return "dehydrated"
	case player.DebuffExhausted:
		return "exhausted"
	case player.DebuffParched:
		return "parched"
	case player.DebuffTired:
		return "tired"
	default:
		return "afflicted"
	}
}
