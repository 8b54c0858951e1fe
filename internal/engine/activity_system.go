package engine

import (
	"context"

	"github.com/briarwatch/survivalcore/internal/domain/player"
	"github.com/briarwatch/survivalcore/internal/hostport"
	"github.com/briarwatch/survivalcore/internal/platform/logger"
)

// ActivitySystem is the Activity Classifier (C5): maps host movement
// flags plus the sticky combat window into an Activity enum, per the
// precedence table of §4.5. Grounded on the teacher's subsystem shape
// (one struct, one host/registry dependency, one per-tick method) as seen
// in metabolism_system.go, generalized from prisoner state to Activity
// classification.
type ActivitySystem struct {
	host   hostport.HostAdapter
	logger *logger.Logger
}

// NewActivitySystem constructs an ActivitySystem.
func NewActivitySystem(host hostport.HostAdapter, log *logger.Logger) *ActivitySystem {
	return &ActivitySystem{host: host, logger: log}
}

// Classify updates entry.Stats.CurrentActivity in place, following the
// fixed precedence: combat window active -> COMBAT; sprinting ->
// SPRINTING; swimming -> SWIMMING; walking -> WALKING; else IDLE. JUMPING
// shadows WALKING/IDLE for one tick only if reported (§4.5).
func (a *ActivitySystem) Classify(ctx context.Context, entry *PlayerEntry, nowMs int64) {
	inputs, ok, err := a.host.ReadActivityInputs(ctx, entry.ID.String())
	if err != nil {
		a.logger.Warn("ReadActivityInputs failed for " + entry.ID.String() + ": " + err.Error())
		return
	}
	if !ok {
		// Host contract error: silent no-op this tick, retried next (§7).
		return
	}

	switch {
	case entry.Stats.InCombatWindow(nowMs):
		entry.Stats.CurrentActivity = player.ActivityCombat
	case inputs.IsSprinting:
		entry.Stats.CurrentActivity = player.ActivitySprinting
	case inputs.IsSwimming:
		entry.Stats.CurrentActivity = player.ActivitySwimming
	case inputs.IsJumping:
		entry.Stats.CurrentActivity = player.ActivityJumping
	case inputs.IsWalking:
		entry.Stats.CurrentActivity = player.ActivityWalking
	default:
		entry.Stats.CurrentActivity = player.ActivityIdle
	}
}

// OnDamageDealt refreshes the sticky combat window from the host's
// onDamageDealt edge (§6 "Invocation contract from host").
func (a *ActivitySystem) OnDamageDealt(entry *PlayerEntry, nowMs int64) {
	entry.Stats.RefreshCombatWindow(nowMs)
}
