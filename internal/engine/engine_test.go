package engine

import (
	"context"
	"io"
	"testing"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/google/uuid"

	"github.com/briarwatch/survivalcore/internal/config"
	domlvl "github.com/briarwatch/survivalcore/internal/domain/leveling"
	"github.com/briarwatch/survivalcore/internal/domain/player"
	"github.com/briarwatch/survivalcore/internal/hostport"
	"github.com/briarwatch/survivalcore/internal/persistence"
	"github.com/briarwatch/survivalcore/internal/platform/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.New(config.Default())
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}
	return cfg
}

func testLogger() *logger.Logger {
	return logger.New(io.Discard)
}

// TestDepletionBaselineIdle is spec.md §8 S1: hunger=100, IDLE, baseRate 60s,
// idle multiplier 1.0 -- after 600s, hunger=90, no debuff.
func TestDepletionBaselineIdle(t *testing.T) {
	cfg := testConfig(t)
	id := uuid.New()
	stats := player.New(id, cfg.Metabolism.Initial, 0)
	entry := &PlayerEntry{ID: id, Stats: stats, Debuffs: player.NewDebuffState()}

	depletion := NewDepletionSystem(cfg)
	depletion.Run(entry, 600_000, MetabolismMultipliers{})

	if got := entry.Stats.Hunger; got < 89 || got > 91 {
		t.Errorf("Hunger after 600s idle = %v, want 90±1", got)
	}
	if entry.Debuffs.IsActive(player.DebuffStarving) {
		t.Error("expected no STARVING debuff at hunger=90")
	}
}

// TestDepletionSprintDoublesRate verifies the activity multiplier halves
// the effective interval (spec.md §8 S2 setup: sprint multiplier 2.0 means
// hunger=3 depletes to 0 after 90s of sprinting, since 60/2=30s/point).
func TestDepletionSprintDoublesRate(t *testing.T) {
	cfg := testConfig(t)
	id := uuid.New()
	stats := player.New(id, player.Defaults{Hunger: 3, Thirst: 100, Energy: 100}, 0)
	stats.CurrentActivity = player.ActivitySprinting
	entry := &PlayerEntry{ID: id, Stats: stats, Debuffs: player.NewDebuffState()}

	depletion := NewDepletionSystem(cfg)
	depletion.Run(entry, 90_000, MetabolismMultipliers{})

	if entry.Stats.Hunger != 0 {
		t.Fatalf("Hunger after 90s sprinting from 3 = %v, want 0", entry.Stats.Hunger)
	}
}

// TestDepletionPauseFreezesValueAndTimestamp checks §4.4/§4.6's pause-flag
// contract: both the stat and its lastDepletion timestamp stay frozen.
func TestDepletionPauseFreezesValueAndTimestamp(t *testing.T) {
	cfg := testConfig(t)
	id := uuid.New()
	stats := player.New(id, cfg.Metabolism.Initial, 0)
	stats.PauseHungerDepletion(true)
	entry := &PlayerEntry{ID: id, Stats: stats, Debuffs: player.NewDebuffState()}

	depletion := NewDepletionSystem(cfg)
	depletion.Run(entry, 10_000_000, MetabolismMultipliers{})

	if entry.Stats.Hunger != 100 {
		t.Errorf("Hunger = %v, want frozen at 100 while paused", entry.Stats.Hunger)
	}
	if entry.Stats.LastDepletionMs[player.StatHunger] != 0 {
		t.Errorf("LastDepletionMs = %v, want frozen at 0 while paused", entry.Stats.LastDepletionMs[player.StatHunger])
	}
}

// TestSurvivalistReducesHungerAndThirstOnly checks the metabolism
// reduction fraction only applies to hunger/thirst, not energy (§4.6).
func TestSurvivalistReducesHungerAndThirstOnly(t *testing.T) {
	cfg := testConfig(t)
	id := uuid.New()
	stats := player.New(id, cfg.Metabolism.Initial, 0)
	entryReduced := &PlayerEntry{ID: id, Stats: stats, Debuffs: player.NewDebuffState()}

	depletion := NewDepletionSystem(cfg)
	depletion.Run(entryReduced, 60_000, MetabolismMultipliers{ReductionFraction: 0.15})

	// 60s / (60/60=1.0 rate -> interval 60000ms*(1-0.15)=51000ms), so within
	// 60000ms hunger/thirst tick exactly once (the first point needs
	// 51000ms, which fits once inside 60000ms).
	if entryReduced.Stats.Hunger != 99 {
		t.Errorf("Hunger = %v, want exactly one point lost within 60s at a reduced 51s interval", entryReduced.Stats.Hunger)
	}
	if entryReduced.Stats.Energy != 100 {
		// Energy has no reduction applied and its own 90s/point base rate
		// hasn't completed a full interval within this 60s window.
		t.Errorf("Energy = %v, want unaffected by metabolism reduction within 60s", entryReduced.Stats.Energy)
	}
}

// TestStarvingRampAndReset exercises the STARVING damage ramp of §4.8's
// table (initial 1, +0.5 per tick, cap 5) and the reset-on-exit rule.
func TestStarvingRampAndReset(t *testing.T) {
	cfg := testConfig(t)
	host := newFakeHost()
	id := uuid.New()
	stats := player.New(id, player.Defaults{Hunger: 0, Thirst: 100, Energy: 100}, 0)
	entry := &PlayerEntry{ID: id, Stats: stats, Debuffs: player.NewDebuffState(), Buffs: player.NewBuffState()}

	debuffs := NewDebuffSystem(cfg, host, testLogger())
	ctx := context.Background()

	// Entry edge.
	debuffs.Run(ctx, entry, 0)
	if !entry.Debuffs.IsActive(player.DebuffStarving) {
		t.Fatal("expected STARVING active at hunger=0")
	}
	if len(host.chats) != 1 || host.chats[0].colorTag != "red" {
		t.Fatalf("expected one red entry chat, got %+v", host.chats)
	}

	wantRamp := []float64{1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5, 5}
	now := int64(0)
	for i, want := range wantRamp {
		now += 3000
		debuffs.Run(ctx, entry, now)
		if i >= len(host.damageCalls) {
			t.Fatalf("tick %d: no damage call recorded", i)
		}
		if got := host.damageCalls[i].amount; got != want {
			t.Errorf("tick %d: damage = %v, want %v", i, got, want)
		}
		if host.damageCalls[i].cause != "STARVING" {
			t.Errorf("tick %d: cause = %q, want STARVING", i, host.damageCalls[i].cause)
		}
	}

	// Exit: hunger restored to >= 30.
	entry.Stats.Set(player.StatHunger, 30)
	debuffs.Run(ctx, entry, now+3000)
	if entry.Debuffs.IsActive(player.DebuffStarving) {
		t.Fatal("expected STARVING cleared once hunger >= 30")
	}

	// Re-entry resets the ramp.
	entry.Stats.Set(player.StatHunger, 0)
	now += 6000
	debuffs.Run(ctx, entry, now)
	now += 3000
	debuffs.Run(ctx, entry, now)
	if got := host.damageCalls[len(host.damageCalls)-1].amount; got != 1 {
		t.Errorf("first damage tick after re-entry = %v, want reset to 1", got)
	}
}

// TestParchedSpeedInterpolation checks the linear speed curve of §4.8:
// 1.0 at the exit threshold down to 0.45 at thirst=0.
func TestParchedSpeedInterpolation(t *testing.T) {
	cfg := testConfig(t)
	host := newFakeHost()
	id := uuid.New()
	stats := player.New(id, player.Defaults{Hunger: 100, Thirst: 0, Energy: 100}, 0)
	entry := &PlayerEntry{ID: id, Stats: stats, Debuffs: player.NewDebuffState(), Buffs: player.NewBuffState()}

	debuffs := NewDebuffSystem(cfg, host, testLogger())
	mult := debuffs.Run(context.Background(), entry, 0)
	if mult != 0.45 {
		t.Errorf("speed multiplier at thirst=0 = %v, want 0.45", mult)
	}

	entry2 := &PlayerEntry{ID: id, Stats: player.New(id, player.Defaults{Hunger: 100, Thirst: 15, Energy: 100}, 0), Debuffs: player.NewDebuffState(), Buffs: player.NewBuffState()}
	mult2 := debuffs.Run(context.Background(), entry2, 0)
	want := 0.45 + 0.5*(1-0.45)
	if mult2 != want {
		t.Errorf("speed multiplier at thirst=15 (half threshold) = %v, want %v", mult2, want)
	}
}

// TestBuffSuppressedByAnyActiveDebuff is spec.md §8 invariant 4 / S3: a
// buff active before a debuff enters is forcibly removed the same tick,
// and the corresponding host modifier removal is scheduled.
func TestBuffSuppressedByAnyActiveDebuff(t *testing.T) {
	cfg := testConfig(t)
	host := newFakeHost()
	arbiter := NewSpeedArbiter(host, testLogger())
	id := uuid.New()
	entry := &PlayerEntry{
		ID:      id,
		Stats:   player.New(id, player.Defaults{Hunger: 95, Thirst: 50, Energy: 50}, 0),
		Debuffs: player.NewDebuffState(),
		Buffs:   player.NewBuffState(),
		Speed:   newSpeedState(),
	}

	buffs := NewBuffSystem(cfg, host, arbiter, testLogger())
	ctx := context.Background()

	// DEFENSE activates (hunger=95 >= 90).
	buffs.Run(ctx, entry)
	if !entry.Buffs.IsActive(player.BuffDefense) {
		t.Fatal("expected DEFENSE active at hunger=95")
	}
	if len(host.statMaxCalls) != 1 {
		t.Fatalf("expected one ApplyStatMaxModifier call, got %d", len(host.statMaxCalls))
	}

	// A debuff becomes active; BuffSystem must forcibly clear DEFENSE.
	entry.Debuffs.Enter(player.DebuffDehydrated, 0)
	buffs.Run(ctx, entry)
	if entry.Buffs.IsActive(player.BuffDefense) {
		t.Error("expected DEFENSE suppressed while any debuff is active")
	}
	if len(host.removedMaxKeys) != 1 || host.removedMaxKeys[0] != "engine_buff_defense" {
		t.Errorf("expected engine_buff_defense removal scheduled, got %+v", host.removedMaxKeys)
	}

	// Once the debuff clears and hunger is still >= 90 (hysteresis), DEFENSE
	// re-enters without needing to cross 90 again (entry threshold is 90,
	// exit 80 -- hunger never dropped below 90 here so it stays eligible).
	entry.Debuffs.Exit(player.DebuffDehydrated)
	buffs.Run(ctx, entry)
	if !entry.Buffs.IsActive(player.BuffDefense) {
		t.Error("expected DEFENSE to re-enter once no debuff is active and hunger still >= 90")
	}
}

// TestBuffHysteresisNoFlicker is spec.md §8 invariant 3: a buff entered at
// 90 does not exit until below 80, so a value in between (e.g. 85) keeps
// prior membership rather than re-evaluating from scratch.
func TestBuffHysteresisNoFlicker(t *testing.T) {
	cfg := testConfig(t)
	host := newFakeHost()
	arbiter := NewSpeedArbiter(host, testLogger())
	id := uuid.New()
	entry := &PlayerEntry{
		ID:      id,
		Stats:   player.New(id, player.Defaults{Hunger: 90, Thirst: 100, Energy: 100}, 0),
		Debuffs: player.NewDebuffState(),
		Buffs:   player.NewBuffState(),
		Speed:   newSpeedState(),
	}
	buffs := NewBuffSystem(cfg, host, arbiter, testLogger())
	ctx := context.Background()

	buffs.Run(ctx, entry)
	if !entry.Buffs.IsActive(player.BuffDefense) {
		t.Fatal("expected DEFENSE active at hunger=90")
	}

	entry.Stats.Set(player.StatHunger, 85) // between exit(80) and entry(90)
	buffs.Run(ctx, entry)
	if !entry.Buffs.IsActive(player.BuffDefense) {
		t.Error("expected DEFENSE to remain active at hunger=85 (hysteresis band)")
	}

	entry.Stats.Set(player.StatHunger, 79)
	buffs.Run(ctx, entry)
	if entry.Buffs.IsActive(player.BuffDefense) {
		t.Error("expected DEFENSE to exit once hunger < 80")
	}
}

// TestPoisonSlowPoisonDrainSchedule is spec.md §8 S4: SLOW_POISON drains
// (1, 1, 0.5) every 3s for 45s; starting at (60,70,80) it ends at
// (45,55,72.5) after 15 ticks.
func TestPoisonSlowPoisonDrainSchedule(t *testing.T) {
	cfg := testConfig(t)
	id := uuid.New()
	stats := player.New(id, player.Defaults{Hunger: 60, Thirst: 70, Energy: 80}, 0)
	entry := &PlayerEntry{ID: id, Stats: stats}

	poison := NewPoisonSystem(cfg, testLogger())
	poison.Apply(entry, player.PoisonSlowPoison, 0)
	if entry.Poison == nil || entry.Poison.Variant != player.PoisonSlowPoison {
		t.Fatal("expected SLOW_POISON applied")
	}

	now := int64(0)
	for i := 0; i < 15; i++ {
		now += 3000
		poison.Tick(entry, now)
	}

	if entry.Stats.Hunger != 45 {
		t.Errorf("Hunger = %v, want 45", entry.Stats.Hunger)
	}
	if entry.Stats.Thirst != 55 {
		t.Errorf("Thirst = %v, want 55", entry.Stats.Thirst)
	}
	if entry.Stats.Energy != 72.5 {
		t.Errorf("Energy = %v, want 72.5", entry.Stats.Energy)
	}

	// 45s total elapsed -> drain phase expired, slot cleared (no recovery
	// phase for SLOW_POISON).
	poison.Tick(entry, now)
	if entry.Poison != nil {
		t.Error("expected SLOW_POISON cleared once its duration elapses")
	}
}

// TestPoisonExclusionOneAtATime is spec.md §8 invariant 5: at most one
// ActivePoison per player; PURGE's recovery phase blocks a new poison from
// starting until it elapses.
func TestPoisonExclusionOneAtATime(t *testing.T) {
	cfg := testConfig(t)
	id := uuid.New()
	entry := &PlayerEntry{ID: id, Stats: player.New(id, player.Defaults{Hunger: 100, Thirst: 100, Energy: 100}, 0)}
	poison := NewPoisonSystem(cfg, testLogger())

	poison.Apply(entry, player.PoisonPurge, 0)
	now := int64(0)
	for i := 0; i < 10; i++ { // 10 * 500ms = 5s drain phase
		now += 500
		poison.Tick(entry, now)
	}
	if entry.Poison == nil || !entry.Poison.RecoveryActive {
		t.Fatal("expected PURGE to enter recovery phase after its 5s drain")
	}

	// A new poison application must be rejected while recovery blocks.
	poison.Apply(entry, player.PoisonSlowPoison, now)
	if entry.Poison.Variant != player.PoisonPurge {
		t.Error("expected new poison application blocked during PURGE recovery")
	}

	now += 20_000 // recovery duration
	poison.Tick(entry, now)
	if entry.Poison != nil {
		t.Error("expected PURGE cleared once recovery elapses")
	}

	poison.Apply(entry, player.PoisonSlowPoison, now)
	if entry.Poison == nil || entry.Poison.Variant != player.PoisonSlowPoison {
		t.Error("expected a new poison to be acceptable once the slot is free")
	}
}

// TestSpeedArbiterComposite is spec.md §8 invariant 7: the composite speed
// equals debuffMultiplier * (1 + buffMultiplier + abilityMultiplier)
// exactly, and a resetBaseSpeed is issued once the composite returns to
// neutral.
func TestSpeedArbiterComposite(t *testing.T) {
	host := newFakeHost()
	arbiter := NewSpeedArbiter(host, testLogger())
	id := uuid.New()
	entry := &PlayerEntry{ID: id, Speed: newSpeedState()}
	ctx := context.Background()

	arbiter.SetDebuffMultiplier(entry, 0.6)
	arbiter.AddBuffMultiplier(entry, 0.15)
	arbiter.AddAbilityMultiplier(entry, 0.10)
	arbiter.Recompute(ctx, entry)

	want := 0.6 * (1 + 0.15 + 0.10)
	if len(host.speedCalls) != 1 || host.speedCalls[0] != want {
		t.Fatalf("SetBaseSpeed calls = %+v, want exactly [%v]", host.speedCalls, want)
	}

	// A sub-threshold change should not re-trigger a call.
	arbiter.AddBuffMultiplier(entry, 0.0001)
	arbiter.Recompute(ctx, entry)
	if len(host.speedCalls) != 1 {
		t.Errorf("expected no additional SetBaseSpeed for a sub-threshold change, got %d calls", len(host.speedCalls))
	}

	// Returning to neutral issues a reset.
	arbiter.SetDebuffMultiplier(entry, 1.0)
	arbiter.AddBuffMultiplier(entry, -(0.15 + 0.0001))
	arbiter.AddAbilityMultiplier(entry, -0.10)
	arbiter.Recompute(ctx, entry)
	if host.speedResets != 1 {
		t.Errorf("expected exactly one ResetBaseSpeed once composite returned to 1.0, got %d", host.speedResets)
	}
}

// TestActivityClassifierPrecedence is spec.md §4.5/§9: combat wins over
// sprinting/swimming collisions, and jumping shadows walking/idle only.
func TestActivityClassifierPrecedence(t *testing.T) {
	host := newFakeHost()
	id := uuid.New()
	entry := &PlayerEntry{ID: id, Stats: player.New(id, player.Defaults{}, 0)}
	activity := NewActivitySystem(host, testLogger())
	ctx := context.Background()

	entry.Stats.RefreshCombatWindow(0)
	host.setActivity(id.String(), hostport.ActivityInputs{IsSprinting: true, IsSwimming: true})
	activity.Classify(ctx, entry, 0)
	if entry.Stats.CurrentActivity != player.ActivityCombat {
		t.Errorf("activity = %v, want COMBAT (sticky window beats sprint/swim)", entry.Stats.CurrentActivity)
	}

	host.setActivity(id.String(), hostport.ActivityInputs{IsSwimming: true})
	activity.Classify(ctx, entry, 6000) // past the 5s combat window
	if entry.Stats.CurrentActivity != player.ActivitySwimming {
		t.Errorf("activity = %v, want SWIMMING once combat window lapses", entry.Stats.CurrentActivity)
	}

	host.setActivity(id.String(), hostport.ActivityInputs{IsJumping: true})
	activity.Classify(ctx, entry, 6001)
	if entry.Stats.CurrentActivity != player.ActivityJumping {
		t.Errorf("activity = %v, want JUMPING to shadow IDLE", entry.Stats.CurrentActivity)
	}
}

// TestConsumableDetectionDedupAndDistinctIndices is spec.md §8 invariant 9
// and S6: the same effect index within the window yields at most one
// action, but a distinct index (a fresh item of the same type) is counted
// immediately.
func TestConsumableDetectionDedupAndDistinctIndices(t *testing.T) {
	cfg := testConfig(t)
	host := newFakeHost()
	poison := NewPoisonSystem(cfg, testLogger())
	consumable := NewConsumableSystem(cfg, host, poison, testLogger())
	id := uuid.New()
	entry := &PlayerEntry{
		ID:             id,
		Stats:          player.New(id, player.Defaults{Hunger: 10, Thirst: 100, Energy: 100}, 0),
		consumableSeen: newTestDedupSet(),
	}
	registry := &Registry{players: map[player.ID]*PlayerEntry{id: entry}, order: []player.ID{id}, abilityTable: cfg.Abilities}

	host.setEffects(id.String(), []hostport.ActiveEffect{{EffectID: "Food_Bread", EffectIndex: 1}})
	consumable.RunDetectionTick(context.Background(), registry, 0)
	if entry.Stats.Hunger != 35 {
		t.Fatalf("Hunger after first Food_Bread = %v, want 35", entry.Stats.Hunger)
	}

	// Same index again: must not double count.
	consumable.RunDetectionTick(context.Background(), registry, 10)
	if entry.Stats.Hunger != 35 {
		t.Errorf("Hunger after repeat of same index = %v, want unchanged at 35", entry.Stats.Hunger)
	}

	// Distinct index (a second, fresh item): counted immediately.
	host.setEffects(id.String(), []hostport.ActiveEffect{
		{EffectID: "Food_Bread", EffectIndex: 1},
		{EffectID: "Food_Bread", EffectIndex: 2},
	})
	consumable.RunDetectionTick(context.Background(), registry, 20)
	if entry.Stats.Hunger != 60 {
		t.Errorf("Hunger after second distinct Food_Bread index = %v, want 60", entry.Stats.Hunger)
	}
}

// TestDrainSystemNativePoisonTier checks the POISON tier multiplier table
// of §4.11 (T1:0.75, T2:1.0, T3:1.5).
func TestDrainSystemNativePoisonTier(t *testing.T) {
	cfg := testConfig(t)
	host := newFakeHost()
	id := uuid.New()
	entry := &PlayerEntry{
		ID:                id,
		Stats:             player.New(id, player.Defaults{Hunger: 100, Thirst: 100, Energy: 100}, 0),
		nativeDrainLastMs: make(map[string]int64),
	}
	host.setEffects(id.String(), []hostport.ActiveEffect{{EffectID: "Poison_T3"}})

	// nativeDrainLastMs defaults to 0 for an unseen kind, so the first drain
	// only fires once at least one full tick interval has elapsed.
	drain := NewDrainSystem(cfg, host, testLogger())
	drain.Run(context.Background(), entry, cfg.Native["POISON"].TickMs)

	wantHunger := 100 - cfg.Native["POISON"].DrainHunger*1.5
	wantThirst := 100 - cfg.Native["POISON"].DrainThirst*1.5
	if entry.Stats.Hunger != wantHunger {
		t.Errorf("Hunger = %v, want %v (T3 tier multiplier)", entry.Stats.Hunger, wantHunger)
	}
	if entry.Stats.Thirst != wantThirst {
		t.Errorf("Thirst = %v, want %v", entry.Stats.Thirst, wantThirst)
	}
}

// TestRegistryReadyIsIdempotent is §4.2: re-ready replaces nothing,
// returning the same tracked entry.
func TestRegistryReadyIsIdempotent(t *testing.T) {
	registry := NewRegistry(nil)
	id := uuid.New()
	first := registry.OnReady(id, player.Defaults{Hunger: 100, Thirst: 100, Energy: 100}, 0)
	first.Stats.Set(player.StatHunger, 42)

	second := registry.OnReady(id, player.Defaults{Hunger: 100, Thirst: 100, Energy: 100}, 1000)
	if second != first {
		t.Fatal("expected re-ready to return the existing entry")
	}
	if second.Stats.Hunger != 42 {
		t.Errorf("expected state to survive re-ready, got hunger=%v", second.Stats.Hunger)
	}
}

// TestRegistryDisconnectRemoves verifies the disconnect edge tears down
// tracking (§4.2).
func TestRegistryDisconnectRemoves(t *testing.T) {
	registry := NewRegistry(nil)
	id := uuid.New()
	registry.OnReady(id, player.Defaults{}, 0)

	if _, ok := registry.OnDisconnect(id); !ok {
		t.Fatal("expected disconnect to find the tracked entry")
	}
	if _, ok := registry.Get(id); ok {
		t.Error("expected entry to no longer be tracked after disconnect")
	}
	if _, ok := registry.OnDisconnect(id); ok {
		t.Error("expected a second disconnect to be a no-op")
	}
}

// TestRegistryNextBatchRotatesOverAllEntries is §4.7: "up to 10 players
// per tick", rolling so every ready player is eventually visited.
func TestRegistryNextBatchRotatesOverAllEntries(t *testing.T) {
	registry := NewRegistry(nil)
	ids := make(map[player.ID]bool)
	for i := 0; i < 25; i++ {
		id := uuid.New()
		ids[id] = true
		registry.OnReady(id, player.Defaults{}, 0)
	}

	seen := make(map[player.ID]bool)
	for i := 0; i < 5; i++ { // 5 batches of 10 covers 25 with one wraparound
		for _, e := range registry.NextBatch(10) {
			seen[e.ID] = true
		}
	}
	if len(seen) != 25 {
		t.Errorf("expected all 25 players visited across rolling batches, saw %d", len(seen))
	}
}

// TestOreBreakTriggersRestoreAbilities drives the §4.14 ore-break edge
// end-to-end: with both mining abilities forced to certain triggers, the
// tier-1 restores energy and the tier-2 restores hunger/thirst.
func TestOreBreakTriggersRestoreAbilities(t *testing.T) {
	cfg := testConfig(t)
	for _, ability := range []domlvl.AbilityType{domlvl.AbilityOreSense, domlvl.AbilityDeepVein} {
		def := cfg.Abilities[ability]
		def.BaseChance = 1.0
		def.MaxChance = 1.0
		cfg.Abilities[ability] = def
	}

	host := newFakeHost()
	eng := New(cfg, host, persistence.NoopPort{}, testLogger())
	id := uuid.New()
	entry := eng.OnPlayerReady(context.Background(), id)
	entry.Stats.Set(player.StatHunger, 50)
	entry.Stats.Set(player.StatThirst, 50)
	entry.Stats.Set(player.StatEnergy, 50)
	entry.Progress = entry.Progress.With(domlvl.ProfessionMining, domlvl.ProgressRecord{Level: 40})
	entry.Abilities.Invalidate()

	eng.OnOreBreak(context.Background(), id, 0) // zero xp keeps the award path inert

	if got := entry.Stats.Energy; got != 58 {
		t.Errorf("Energy = %v, want 50 + tier-1 restore of 8", got)
	}
	if got := entry.Stats.Hunger; got != 65 {
		t.Errorf("Hunger = %v, want 50 + tier-2 restore of 15", got)
	}
	if got := entry.Stats.Thirst; got != 65 {
		t.Errorf("Thirst = %v, want 50 + tier-2 restore of 15", got)
	}
}

// TestDeathResetsStateAndAppliesPenalty drives the death edge (§4.18):
// vitals return to configured defaults, poison and held timed buffs are
// cleared (with installation reversed), and exactly two professions lose
// 85% of their within-level xp without losing a level.
func TestDeathResetsStateAndAppliesPenalty(t *testing.T) {
	cfg := testConfig(t)
	host := newFakeHost()
	eng := New(cfg, host, persistence.NoopPort{}, testLogger())
	id := uuid.New()
	ctx := context.Background()
	entry := eng.OnPlayerReady(ctx, id)

	entry.Stats.Set(player.StatHunger, 5)
	entry.Stats.Set(player.StatThirst, 5)
	entry.Stats.Set(player.StatEnergy, 5)
	entry.Poison = &player.ActivePoison{Variant: player.PoisonMildToxin}
	eng.installTimed(ctx, entry, domlvl.TimedSpeedBoost, 0.25, 60)
	for _, prof := range domlvl.AllProfessions {
		entry.Progress = entry.Progress.With(prof, domlvl.ProgressRecord{Level: 4, XP: 100})
	}

	eng.OnDeath(ctx, id)

	if entry.Stats.Hunger != 100 || entry.Stats.Thirst != 100 || entry.Stats.Energy != 100 {
		t.Errorf("vitals = (%v,%v,%v), want reset to configured defaults",
			entry.Stats.Hunger, entry.Stats.Thirst, entry.Stats.Energy)
	}
	if entry.Poison != nil {
		t.Error("expected active poison cleared on death")
	}
	if len(entry.TimedBuffs.Entries) != 0 {
		t.Error("expected held timed buffs removed on death")
	}
	if entry.Speed.abilityMultiplier != 0 {
		t.Errorf("abilityMultiplier = %v, want the speed boost reversed on death", entry.Speed.abilityMultiplier)
	}

	penalized := 0
	for _, prof := range domlvl.AllProfessions {
		rec := entry.Progress.Get(prof)
		if rec.Level != 4 {
			t.Errorf("%s level = %d, want death to never cost a level", prof, rec.Level)
		}
		switch rec.XP {
		case 15: // 100 - 0.85*100
			penalized++
		case 100:
		default:
			t.Errorf("%s xp = %v, want 100 (untouched) or 15 (penalized)", prof, rec.XP)
		}
	}
	if penalized != 2 {
		t.Errorf("penalized professions = %d, want exactly 2", penalized)
	}
}

// newTestDedupSet returns an empty consumable-dedup index, mirroring
// newPlayerEntry's construction without needing a full ability table.
func newTestDedupSet() *lru.LRU[int, struct{}] {
	return lru.NewLRU[int, struct{}](4096, nil, consumableDedupWindow)
}
