// Package persistence defines the pure Persistence Port (C17, §4.17). The
// engine calls Load on the ready edge and Save on disconnect; it mandates
// no file format. Grounded on the shape of the teacher's
// internal/infra/storage.EventRepository interface (context-taking CRUD
// methods returning (T, error)).
package persistence

import (
	"context"

	"github.com/briarwatch/survivalcore/internal/domain/leveling"
	"github.com/briarwatch/survivalcore/internal/domain/player"
)

// StatRecord is the persisted snapshot of a player's vitals.
type StatRecord struct {
	PlayerID player.ID
	Hunger   float64
	Thirst   float64
	Energy   float64
}

// LevelingRecord is the persisted snapshot of a player's profession
// progress.
type LevelingRecord struct {
	PlayerID player.ID
	Progress leveling.Progress
}

// Port is the abstract load/save boundary for per-player stat/level
// records (§4.17). No in-engine file format is mandated; see
// internal/infra/storage for reference SQLite and MongoDB backends.
type Port interface {
	LoadStats(ctx context.Context, id player.ID) (*StatRecord, bool, error)
	SaveStats(ctx context.Context, rec StatRecord) error

	LoadLeveling(ctx context.Context, id player.ID) (*LevelingRecord, bool, error)
	SaveLeveling(ctx context.Context, rec LevelingRecord) error
}

// NoopPort is a Port that persists nothing; useful for tests and for hosts
// that opt out of persistence entirely. Every Load reports "not found" so
// callers fall back to configured defaults, per §7 ("Persistence failure:
// load returns absent -> use configured defaults").
type NoopPort struct{}

func (NoopPort) LoadStats(context.Context, player.ID) (*StatRecord, bool, error) { return nil, false, nil }
func (NoopPort) SaveStats(context.Context, StatRecord) error                     { return nil }
func (NoopPort) LoadLeveling(context.Context, player.ID) (*LevelingRecord, bool, error) {
	return nil, false, nil
}
func (NoopPort) SaveLeveling(context.Context, LevelingRecord) error { return nil }
