package engine

import (
	"context"
	"strings"

	"github.com/briarwatch/survivalcore/internal/config"
	"github.com/briarwatch/survivalcore/internal/domain/player"
	"github.com/briarwatch/survivalcore/internal/hostport"
	"github.com/briarwatch/survivalcore/internal/platform/logger"
)

// SleepSystem restores energy when a player uses a bed block, gated by a
// per-player cooldown. The host reports the bed interaction as an edge with
// the block id it observed; the engine decides whether the block counts as
// a bed and whether the restore fires.
type SleepSystem struct {
	cfg    *config.Config
	host   hostport.HostAdapter
	logger *logger.Logger
}

// NewSleepSystem constructs a SleepSystem.
func NewSleepSystem(cfg *config.Config, host hostport.HostAdapter, log *logger.Logger) *SleepSystem {
	return &SleepSystem{cfg: cfg, host: host, logger: log}
}

// TrySleep handles one bed-interaction edge. isNight is the host's own
// day/night truth; it is only consulted when the schedule flag is set.
// Returns true if the restore fired.
func (s *SleepSystem) TrySleep(ctx context.Context, entry *PlayerEntry, bedBlockID string, isNight bool, nowMs int64) bool {
	if !matchesBedPattern(bedBlockID, s.cfg.Sleep.BedBlockIDPatterns) {
		return false
	}
	playerID := entry.ID.String()

	if s.cfg.Sleep.RespectSchedule && !isNight {
		sendChat(ctx, s.host, s.logger, playerID, "You can only sleep at night.", "red")
		return false
	}
	if entry.lastSleepMs > 0 && nowMs-entry.lastSleepMs < s.cfg.Sleep.CooldownMs {
		sendChat(ctx, s.host, s.logger, playerID, "You are not tired enough to sleep again yet.", "red")
		return false
	}

	entry.lastSleepMs = nowMs
	entry.Stats.Restore(player.StatEnergy, s.cfg.Sleep.EnergyRestore)
	sendChat(ctx, s.host, s.logger, playerID, "You feel well rested.", "green")
	s.logger.Event("SLEEP", playerID, "energy restored "+logger.Magnitude(s.cfg.Sleep.EnergyRestore))
	return true
}

func matchesBedPattern(blockID string, patterns []string) bool {
	for _, p := range patterns {
		if strings.HasSuffix(p, "*") {
			if strings.HasPrefix(blockID, strings.TrimSuffix(p, "*")) {
				return true
			}
		} else if blockID == p {
			return true
		}
	}
	return false
}
