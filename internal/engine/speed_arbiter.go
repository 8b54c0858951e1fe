package engine

import (
	"context"
	"math"

	"github.com/briarwatch/survivalcore/internal/hostport"
	"github.com/briarwatch/survivalcore/internal/platform/logger"
)

// speedChangeThreshold is the minimum relative change in the composite
// speed multiplier that warrants a fresh setBaseSpeed call (§4.12: "if
// composite changed by >= 0.5%").
const speedChangeThreshold = 0.005

// SpeedArbiter is the Speed Arbiter (C12): the single owner of the host's
// speed interface, composing debuff, buff, and ability contributions into
// one setBaseSpeed/resetBaseSpeed decision per player per tick, so buffs
// and debuffs never race each other for the last word on speed (§4.12).
type SpeedArbiter struct {
	host   hostport.HostAdapter
	logger *logger.Logger
}

// NewSpeedArbiter constructs a SpeedArbiter.
func NewSpeedArbiter(host hostport.HostAdapter, log *logger.Logger) *SpeedArbiter {
	return &SpeedArbiter{host: host, logger: log}
}

// SetDebuffMultiplier sets the multiplicative PARCHED/TIRED contribution
// (<= 1.0), recomputed fresh every tick by the Debuff State Machine.
func (s *SpeedArbiter) SetDebuffMultiplier(entry *PlayerEntry, value float64) {
	entry.Speed.mu.Lock()
	entry.Speed.debuffMultiplier = value
	entry.Speed.mu.Unlock()
}

// AddBuffMultiplier atomically adjusts the additive SPEED-buff
// contribution by delta; callers add on activation and subtract the same
// delta on deactivation (§4.12 "addBuffMultiplier(delta) is atomic").
func (s *SpeedArbiter) AddBuffMultiplier(entry *PlayerEntry, delta float64) {
	entry.Speed.mu.Lock()
	entry.Speed.buffMultiplier += delta
	entry.Speed.mu.Unlock()
}

// AddAbilityMultiplier atomically adjusts the additive ability-effect
// contribution (tier-3 SPEED_BONUS, or a C15 SPEED_BOOST timed buff).
func (s *SpeedArbiter) AddAbilityMultiplier(entry *PlayerEntry, delta float64) {
	entry.Speed.mu.Lock()
	entry.Speed.abilityMultiplier += delta
	entry.Speed.mu.Unlock()
}

// Recompute composes the three contributions and, if the result changed
// meaningfully (or has never been scheduled), posts a setBaseSpeed (or
// resetBaseSpeed, when the composite is exactly neutral) to the host
// thread (§4.12, §8 invariant 7).
func (s *SpeedArbiter) Recompute(ctx context.Context, entry *PlayerEntry) {
	entry.Speed.mu.Lock()
	composite := entry.Speed.debuffMultiplier * (1 + entry.Speed.buffMultiplier + entry.Speed.abilityMultiplier)
	changed := !entry.Speed.hasLast || math.Abs(composite-entry.Speed.lastComposite) >= speedChangeThreshold*math.Max(1, entry.Speed.lastComposite)
	entry.Speed.lastComposite = composite
	entry.Speed.hasLast = true
	entry.Speed.mu.Unlock()

	if !changed {
		return
	}

	playerID := entry.ID.String()
	if composite == 1.0 {
		scheduleHost(ctx, s.host, s.logger, playerID, "", 0, func() {
			if err := s.host.ResetBaseSpeed(ctx, playerID); err != nil {
				s.logger.Warn("ResetBaseSpeed failed for " + playerID + ": " + err.Error())
			}
		})
		return
	}

	scheduleHost(ctx, s.host, s.logger, playerID, "", 0, func() {
		if err := s.host.SetBaseSpeed(ctx, playerID, composite); err != nil {
			s.logger.Warn("SetBaseSpeed failed for " + playerID + ": " + err.Error())
		}
	})
}
