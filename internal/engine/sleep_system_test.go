package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"

	domlvl "github.com/briarwatch/survivalcore/internal/domain/leveling"
	"github.com/briarwatch/survivalcore/internal/domain/player"
	"github.com/briarwatch/survivalcore/internal/persistence"
)

// TestSleepRestoresEnergyWithCooldown covers the bed restore path: pattern
// gating, the night-schedule gate, the energy restore itself, and the
// per-player cooldown.
func TestSleepRestoresEnergyWithCooldown(t *testing.T) {
	cfg := testConfig(t)
	host := newFakeHost()
	id := uuid.New()
	entry := &PlayerEntry{
		ID:    id,
		Stats: player.New(id, player.Defaults{Hunger: 100, Thirst: 100, Energy: 40}, 0),
	}
	sleep := NewSleepSystem(cfg, host, testLogger())
	ctx := context.Background()

	if sleep.TrySleep(ctx, entry, "Stone_Block", true, 1000) {
		t.Fatal("expected a non-bed block to be ignored")
	}

	// RespectSchedule is on by default: daytime sleep is refused.
	if sleep.TrySleep(ctx, entry, "Bed_Simple", false, 1000) {
		t.Fatal("expected daytime sleep refused while RespectSchedule is set")
	}
	if entry.Stats.Energy != 40 {
		t.Fatalf("Energy = %v, want unchanged after refused sleep", entry.Stats.Energy)
	}

	if !sleep.TrySleep(ctx, entry, "Bed_Simple", true, 1000) {
		t.Fatal("expected nighttime sleep in a bed to fire")
	}
	if entry.Stats.Energy != 90 {
		t.Errorf("Energy = %v, want 40 + configured 50 restore", entry.Stats.Energy)
	}

	// A second sleep inside the cooldown window is refused.
	if sleep.TrySleep(ctx, entry, "Bed_Simple", true, 1000+cfg.Sleep.CooldownMs-1) {
		t.Error("expected sleep refused inside the cooldown window")
	}

	// Past the cooldown, the restore fires again, saturating at 100.
	if !sleep.TrySleep(ctx, entry, "Bed_Simple", true, 1000+cfg.Sleep.CooldownMs) {
		t.Error("expected sleep to fire once the cooldown elapses")
	}
	if entry.Stats.Energy != 100 {
		t.Errorf("Energy = %v, want saturated at 100", entry.Stats.Energy)
	}
}

// TestLevelStatBonusTracksTotalLevels verifies the flat per-level
// max-health bonus is reinstalled from current total levels under its
// stable key, and removed again when there is nothing to grant.
func TestLevelStatBonusTracksTotalLevels(t *testing.T) {
	raw := testConfig(t)
	cfgCopy := *raw
	cfgCopy.Leveling.StatBonusesPerLevel = 0.5
	cfg := &cfgCopy

	host := newFakeHost()
	eng := New(cfg, host, persistence.NoopPort{}, testLogger())
	id := uuid.New()
	entry := eng.OnPlayerReady(context.Background(), id)

	// Everyone starts at level 1 in every profession: the ready edge cleans
	// up any stale bonus rather than installing one.
	if len(host.removedMaxKeys) != 1 || host.removedMaxKeys[0] != "engine_level_health" {
		t.Fatalf("expected a stale-bonus cleanup on ready, got %+v", host.removedMaxKeys)
	}
	if len(host.statMaxCalls) != 0 {
		t.Fatalf("expected no bonus installed at total level 0, got %+v", host.statMaxCalls)
	}

	entry.Progress = entry.Progress.
		With(domlvl.ProfessionCombat, domlvl.ProgressRecord{Level: 5}).
		With(domlvl.ProfessionMining, domlvl.ProgressRecord{Level: 3})
	eng.syncLevelStatBonus(context.Background(), entry)

	if len(host.statMaxCalls) != 1 {
		t.Fatalf("expected one bonus install, got %d", len(host.statMaxCalls))
	}
	call := host.statMaxCalls[0]
	if call.key != "engine_level_health" {
		t.Errorf("key = %q, want engine_level_health", call.key)
	}
	if call.amount != 0.5*6 { // (5-1)+(3-1) levels above 1
		t.Errorf("amount = %v, want %v", call.amount, 0.5*6)
	}
}
