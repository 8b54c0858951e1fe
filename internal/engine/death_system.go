package engine

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/briarwatch/survivalcore/internal/config"
	domlvl "github.com/briarwatch/survivalcore/internal/domain/leveling"
	"github.com/briarwatch/survivalcore/internal/domain/player"
	"github.com/briarwatch/survivalcore/internal/hostport"
	"github.com/briarwatch/survivalcore/internal/leveling"
	"github.com/briarwatch/survivalcore/internal/persistence"
	"github.com/briarwatch/survivalcore/internal/platform/logger"
)

// DeathSystem is the Death Broadcaster (C18): resets vitals to configured
// defaults, applies the leveling death penalty to two randomly chosen
// professions, clears transient state, forces a persistence save ahead of
// the respawn, and chats a summary (§4.18). Grounded on the teacher's
// `internal/engine/hardcore_test.go` reset-and-notify sequence generalized
// from a prisoner lockdown reset to a player respawn.
type DeathSystem struct {
	cfg     *config.Config
	host    hostport.HostAdapter
	persist persistence.Port
	logger  *logger.Logger
}

// NewDeathSystem constructs a DeathSystem.
func NewDeathSystem(cfg *config.Config, host hostport.HostAdapter, persist persistence.Port, log *logger.Logger) *DeathSystem {
	return &DeathSystem{cfg: cfg, host: host, persist: persist, logger: log}
}

// OnDeath handles the death edge (§6 "onDeath(playerId)").
func (d *DeathSystem) OnDeath(ctx context.Context, entry *PlayerEntry, nowMs int64) {
	playerID := entry.ID.String()

	entry.Stats.Reset(d.cfg.Metabolism.Initial, nowMs)

	progress, penalties := leveling.ApplyDeathPenalty(entry.Progress, pickTwoDistinctProfessions)
	entry.Progress = progress

	for _, kind := range player.AllDebuffKinds {
		entry.Debuffs.Exit(kind)
	}
	entry.Poison = nil

	d.forceSave(ctx, entry)

	summary := deathChatSummary(penalties)
	sendChat(ctx, d.host, d.logger, playerID, summary, "yellow")
	d.logger.Event("PLAYER_DEATH", playerID, summary)
}

// forceSave runs the final-before-respawn persistence save (§4.17 "one
// final persistence save"); failures are logged, never propagated — a
// failed death save should not block the respawn itself.
func (d *DeathSystem) forceSave(ctx context.Context, entry *PlayerEntry) {
	if err := d.persist.SaveStats(ctx, persistence.StatRecord{
		PlayerID: entry.ID,
		Hunger:   entry.Stats.Hunger,
		Thirst:   entry.Stats.Thirst,
		Energy:   entry.Stats.Energy,
	}); err != nil {
		d.logger.Warn("SaveStats failed on death for " + entry.ID.String() + ": " + err.Error())
	}
	if err := d.persist.SaveLeveling(ctx, persistence.LevelingRecord{
		PlayerID: entry.ID,
		Progress: entry.Progress,
	}); err != nil {
		d.logger.Warn("SaveLeveling failed on death for " + entry.ID.String() + ": " + err.Error())
	}
}

// pickTwoDistinctProfessions draws 2 distinct professions uniformly at
// random by shuffling a copy of all professions (rand.Shuffle) and taking
// the first two, satisfying the injected
// chooser signature of leveling.ApplyDeathPenalty.
func pickTwoDistinctProfessions() [2]domlvl.Profession {
	all := append([]domlvl.Profession(nil), domlvl.AllProfessions...)
	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return [2]domlvl.Profession{all[0], all[1]}
}

func deathChatSummary(penalties []leveling.DeathPenalty) string {
	if len(penalties) == 0 {
		return "You died. No progress was lost."
	}
	msg := "You died."
	for _, p := range penalties {
		msg += fmt.Sprintf(" Lost %.1f %s xp.", p.LostXP, p.Profession.String())
	}
	return msg
}
