package engine

import (
	"context"
	"fmt"

	"github.com/briarwatch/survivalcore/internal/config"
	domlvl "github.com/briarwatch/survivalcore/internal/domain/leveling"
	"github.com/briarwatch/survivalcore/internal/domain/player"
	"github.com/briarwatch/survivalcore/internal/hostport"
	"github.com/briarwatch/survivalcore/internal/leveling"
	"github.com/briarwatch/survivalcore/internal/persistence"
	"github.com/briarwatch/survivalcore/internal/platform/logger"
)

// Engine wires every component (C1-C18) into the two-cadence tick loop and
// exposes the host-facing edge methods of §6. It is the sole construction
// surface a host needs; nothing else in this module is meant to be driven
// directly. Grounded on the teacher's own top-level engine.go (one struct
// owning every subsystem plus the registry/ticker it drives) generalized
// from prisoner subsystems to the stat/leveling subsystems of this spec.
type Engine struct {
	cfg     *config.Config
	host    hostport.HostAdapter
	persist persistence.Port
	logger  *logger.Logger

	clock     *Clock
	scheduler *Scheduler
	registry  *Registry

	activity   *ActivitySystem
	depletion  *DepletionSystem
	debuffs    *DebuffSystem
	buffs      *BuffSystem
	poison     *PoisonSystem
	drain      *DrainSystem
	arbiter    *SpeedArbiter
	consumable *ConsumableSystem
	sleep      *SleepSystem
	death      *DeathSystem

	core       *leveling.Core
	dispatcher *leveling.Dispatcher
	permanent  *leveling.PermanentBuffManager
}

// New constructs an Engine around the given configuration, host adapter,
// and persistence port. Call Start to begin ticking.
func New(cfg *config.Config, host hostport.HostAdapter, persist persistence.Port, log *logger.Logger) *Engine {
	clock := NewClock()
	registry := NewRegistry(cfg.Abilities)
	arbiter := NewSpeedArbiter(host, log)
	poison := NewPoisonSystem(cfg, log)

	e := &Engine{
		cfg:        cfg,
		host:       host,
		persist:    persist,
		logger:     log,
		clock:      clock,
		registry:   registry,
		activity:   NewActivitySystem(host, log),
		depletion:  NewDepletionSystem(cfg),
		debuffs:    NewDebuffSystem(cfg, host, log),
		buffs:      NewBuffSystem(cfg, host, arbiter, log),
		poison:     poison,
		drain:      NewDrainSystem(cfg, host, log),
		arbiter:    arbiter,
		consumable: NewConsumableSystem(cfg, host, poison, log),
		sleep:      NewSleepSystem(cfg, host, log),
		death:      NewDeathSystem(cfg, host, persist, log),
		core:       leveling.NewCore(cfg),
		dispatcher: leveling.NewDispatcher(cfg),
		permanent:  leveling.NewPermanentBuffManager(cfg),
	}
	e.scheduler = NewScheduler(clock, log, e.runMainTick, e.runDetectionTick)
	return e
}

// Start begins both tick loops in the background (§4.1).
func (e *Engine) Start(ctx context.Context) {
	e.scheduler.Run(ctx)
}

// Stop performs the bounded shutdown of §5.
func (e *Engine) Stop() {
	e.scheduler.Shutdown()
}

// Registry exposes the player registry for host-side lookups (e.g. reading
// a player's current Stats for a HUD, which is otherwise out of scope).
func (e *Engine) Registry() *Registry {
	return e.registry
}

func (e *Engine) runMainTick(ctx context.Context, nowMs int64) {
	e.registry.Range(func(entry *PlayerEntry) {
		e.activity.Classify(ctx, entry, nowMs)

		mult := MetabolismMultipliers{
			ReductionFraction: e.permanent.MetabolismReductionFraction(entry.PermanentBuffs),
		}
		e.depletion.Run(entry, nowMs, mult)

		debuffSpeed := e.debuffs.Run(ctx, entry, nowMs)
		e.arbiter.SetDebuffMultiplier(entry, debuffSpeed)

		e.buffs.Run(ctx, entry)
		e.poison.Tick(entry, nowMs)
		e.drain.Run(ctx, entry, nowMs)

		e.arbiter.Recompute(ctx, entry)
	})
}

func (e *Engine) runDetectionTick(ctx context.Context, nowMs int64) {
	e.consumable.RunDetectionTick(ctx, e.registry, nowMs)

	e.registry.Range(func(entry *PlayerEntry) {
		entry.TimedManager.Sweep(entry.TimedBuffs, nowMs, func(kind domlvl.TimedBuffKind, held domlvl.TimedEntry) {
			e.applyTimedEffect(ctx, entry, kind, held.Strength, false)
		})
	})
}

// OnPlayerReady implements the ready edge (§4.2): rehydrates persisted
// state (or leaves configured defaults if absent) and applies every
// permanent buff already unlocked, cleaning up any stale modifier left
// over from a level lost while offline or a disabled ability (§4.16).
func (e *Engine) OnPlayerReady(ctx context.Context, id player.ID) *PlayerEntry {
	nowMs := e.clock.NowMs()
	entry := e.registry.OnReady(id, e.cfg.Metabolism.Initial, nowMs)

	if rec, ok, err := e.persist.LoadStats(ctx, id); err != nil {
		e.logger.Warn("LoadStats failed for " + id.String() + ": " + err.Error())
	} else if ok {
		entry.Stats.Set(player.StatHunger, rec.Hunger)
		entry.Stats.Set(player.StatThirst, rec.Thirst)
		entry.Stats.Set(player.StatEnergy, rec.Energy)
	}
	if rec, ok, err := e.persist.LoadLeveling(ctx, id); err != nil {
		e.logger.Warn("LoadLeveling failed for " + id.String() + ": " + err.Error())
	} else if ok {
		entry.Progress = rec.Progress
	}

	ops := e.permanent.ApplyUnlockedBuffs(entry.Progress, entry.Abilities, e.dispatcher, entry.PermanentBuffs)
	e.applyPermanentOps(ctx, entry, ops)
	e.syncLevelStatBonus(ctx, entry)
	return entry
}

// OnPlayerDisconnect implements the disconnect edge: held timed buffs are
// reversed first (§4.15), then one final save, then the entry is destroyed
// (§4.2, §4.17).
func (e *Engine) OnPlayerDisconnect(ctx context.Context, id player.ID) {
	entry, ok := e.registry.OnDisconnect(id)
	if !ok {
		return
	}
	e.clearTimedBuffs(ctx, entry)
	e.saveEntry(ctx, entry)
}

// clearTimedBuffs reverses and removes every held timed buff for entry.
func (e *Engine) clearTimedBuffs(ctx context.Context, entry *PlayerEntry) {
	for kind, held := range entry.TimedBuffs.Entries {
		e.applyTimedEffect(ctx, entry, kind, held.Strength, false)
		delete(entry.TimedBuffs.Entries, kind)
	}
}

func (e *Engine) saveEntry(ctx context.Context, entry *PlayerEntry) {
	if err := e.persist.SaveStats(ctx, persistence.StatRecord{
		PlayerID: entry.ID, Hunger: entry.Stats.Hunger, Thirst: entry.Stats.Thirst, Energy: entry.Stats.Energy,
	}); err != nil {
		e.logger.Warn("SaveStats failed for " + entry.ID.String() + ": " + err.Error())
	}
	if err := e.persist.SaveLeveling(ctx, persistence.LevelingRecord{
		PlayerID: entry.ID, Progress: entry.Progress,
	}); err != nil {
		e.logger.Warn("SaveLeveling failed for " + entry.ID.String() + ": " + err.Error())
	}
}

// OnDamageDealt implements the combat edge refreshing the sticky combat
// window (§6).
func (e *Engine) OnDamageDealt(id player.ID) {
	entry, ok := e.registry.Get(id)
	if !ok {
		return
	}
	e.activity.OnDamageDealt(entry, e.clock.NowMs())
}

// OnDeath implements the death edge (§4.18, §6). Timed and stat buffs are
// unwound here, where their installation lives, before the Death
// Broadcaster resets vitals and applies the leveling penalty.
func (e *Engine) OnDeath(ctx context.Context, id player.ID) {
	entry, ok := e.registry.Get(id)
	if !ok {
		return
	}
	e.clearTimedBuffs(ctx, entry)
	playerID := entry.ID.String()
	for _, kind := range player.AllBuffKinds {
		if entry.Buffs.IsActive(kind) {
			e.buffs.deactivate(ctx, entry, kind, playerID)
		}
	}
	e.death.OnDeath(ctx, entry, e.clock.NowMs())
}

// OnKill awards combat XP and consults combat's tier-1/tier-2 abilities
// (§4.14 "on kill edge").
func (e *Engine) OnKill(ctx context.Context, id player.ID, xpAmount float64) {
	e.awardXP(ctx, id, domlvl.ProfessionCombat, xpAmount)
	entry, ok := e.registry.Get(id)
	if !ok {
		return
	}
	e.dispatchKillTriggers(ctx, entry)
}

// OnOreBreak awards mining XP and consults mining's triggered abilities.
func (e *Engine) OnOreBreak(ctx context.Context, id player.ID, xpAmount float64) {
	e.awardXP(ctx, id, domlvl.ProfessionMining, xpAmount)
	if entry, ok := e.registry.Get(id); ok {
		e.dispatchTierTriggers(ctx, entry, leveling.EventOreBreak, domlvl.ProfessionMining)
	}
}

// OnTreeBreak awards logging XP and consults logging's triggered abilities.
func (e *Engine) OnTreeBreak(ctx context.Context, id player.ID, xpAmount float64) {
	e.awardXP(ctx, id, domlvl.ProfessionLogging, xpAmount)
	if entry, ok := e.registry.Get(id); ok {
		e.dispatchTierTriggers(ctx, entry, leveling.EventTreeBreak, domlvl.ProfessionLogging)
	}
}

// OnPickup awards gathering XP and consults gathering's triggered
// abilities.
func (e *Engine) OnPickup(ctx context.Context, id player.ID, xpAmount float64) {
	e.awardXP(ctx, id, domlvl.ProfessionGathering, xpAmount)
	if entry, ok := e.registry.Get(id); ok {
		e.dispatchTierTriggers(ctx, entry, leveling.EventPickup, domlvl.ProfessionGathering)
	}
}

// OnSleep handles a bed-interaction edge: if the block is a configured bed
// and the cooldown allows it, restores energy (§6 "sleep" configuration).
func (e *Engine) OnSleep(ctx context.Context, id player.ID, bedBlockID string, isNight bool) {
	entry, ok := e.registry.Get(id)
	if !ok {
		return
	}
	e.sleep.TrySleep(ctx, entry, bedBlockID, isNight, e.clock.NowMs())
}

// OnBlockPlace records the position in the anti-grief set and awards
// building XP (§4.13).
func (e *Engine) OnBlockPlace(ctx context.Context, id player.ID, worldID string, x, y, z int, xpAmount float64) {
	e.core.RecordPlacedBlock(worldID, x, y, z)
	e.awardXP(ctx, id, domlvl.ProfessionBuilding, xpAmount)
	if entry, ok := e.registry.Get(id); ok {
		e.dispatchTierTriggers(ctx, entry, leveling.EventBlockPlace, domlvl.ProfessionBuilding)
	}
}

// OnBlockBreak clears the anti-grief position and awards building XP
// unless the broken block was itself player-placed (§4.13, §8 invariant
// 10).
func (e *Engine) OnBlockBreak(ctx context.Context, id player.ID, worldID string, x, y, z int, xpAmount float64) {
	wasPlaced := e.core.IsPlacedBlock(worldID, x, y, z)
	e.core.RemovePlacedBlock(worldID, x, y, z)
	if wasPlaced {
		return
	}
	e.awardXP(ctx, id, domlvl.ProfessionBuilding, xpAmount)
}

// awardXP resolves the profession's XP-boost tier-1 ability, applies the
// metabolism feedback and ability multiplier, then runs the level-up loop
// and any consequent permanent-buff diff (§4.13, §4.14, §4.16).
func (e *Engine) awardXP(ctx context.Context, id player.ID, profession domlvl.Profession, amount float64) {
	entry, ok := e.registry.Get(id)
	if !ok {
		return
	}

	abilityMult := e.dispatcher.XPBoostMultiplier(entry.Abilities, entry.Progress, profession)
	feedback := leveling.MetabolismSnapshot{Hunger: entry.Stats.Hunger, Thirst: entry.Stats.Thirst, Energy: entry.Stats.Energy}

	progress, levelUps := e.core.AwardXP(entry.Progress, profession, amount, feedback, abilityMult)
	entry.Progress = progress
	if len(levelUps) == 0 {
		return
	}

	entry.Abilities.Invalidate()
	ops := e.permanent.CheckLevelChange(entry.Progress, entry.Abilities, e.dispatcher, entry.PermanentBuffs)
	e.applyPermanentOps(ctx, entry, ops)
	e.syncLevelStatBonus(ctx, entry)

	playerID := entry.ID.String()
	for _, lu := range levelUps {
		sendChat(ctx, e.host, e.logger, playerID, fmt.Sprintf("%s leveled up to %d!", lu.Profession.String(), lu.NewLevel), "green")
	}
}

// dispatchKillTriggers consults combat's tier-1 (Adrenaline Rush -> speed
// timed buff) and tier-2 (Warrior's Resilience -> health restore)
// abilities (§4.14).
func (e *Engine) dispatchKillTriggers(ctx context.Context, entry *PlayerEntry) {
	e.dispatchTierTriggers(ctx, entry, leveling.EventKill, domlvl.ProfessionCombat)
}

func (e *Engine) dispatchTierTriggers(ctx context.Context, entry *PlayerEntry, event leveling.EventKind, profession domlvl.Profession) {
	if ability, ok := e.dispatcher.ConsultTier1(entry.Abilities, entry.Progress, event, profession); ok {
		e.applyAbilityEffect(ctx, entry, ability)
	}
	if ability, ok := e.dispatcher.ConsultTier2(entry.Abilities, entry.Progress, event, profession); ok {
		e.applyAbilityEffect(ctx, entry, ability)
	}
}

// abilityTimedKind maps each triggered (tier-1/2) ability to the timed-buff
// kind its effect installs. Restore kinds fire once and are never stored;
// held kinds (only Adrenaline Rush's speed boost today) stay active for the
// ability's configured duration. Abilities absent from this table have no
// triggered effect of their own — the per-profession XP boosts feed the
// award path through XPBoostMultiplier instead.
var abilityTimedKind = map[domlvl.AbilityType]domlvl.TimedBuffKind{
	domlvl.AbilityAdrenalineRush:     domlvl.TimedSpeedBoost,
	domlvl.AbilityWarriorsResilience: domlvl.TimedHealthRestore,
	domlvl.AbilityOreSense:           domlvl.TimedEnergyRestore,
	domlvl.AbilityDeepVein:           domlvl.TimedHungerThirstRestore,
	domlvl.AbilityFellingStrike:      domlvl.TimedEnergyRestore,
	domlvl.AbilityLumberjack:         domlvl.TimedHungerThirstRestore,
	domlvl.AbilityMasterBuilder:      domlvl.TimedEnergyRestore,
	domlvl.AbilityForager:            domlvl.TimedHungerThirstRestore,
}

func (e *Engine) applyAbilityEffect(ctx context.Context, entry *PlayerEntry, ability domlvl.AbilityType) {
	kind, ok := abilityTimedKind[ability]
	if !ok {
		return
	}
	def, ok := e.dispatcher.Definition(ability)
	if !ok {
		return
	}
	if !kind.IsRestoreKind() && def.EffectDuration <= 0 {
		return
	}
	e.installTimed(ctx, entry, kind, def.EffectStrength, def.EffectDuration)
	e.logger.Event("ABILITY_TRIGGER", entry.ID.String(), string(ability))
}

func (e *Engine) installTimed(ctx context.Context, entry *PlayerEntry, kind domlvl.TimedBuffKind, strength, durationSec float64) {
	entry.TimedManager.Install(entry.TimedBuffs, kind, strength, durationSec, e.clock.NowMs(), func() {
		e.applyTimedEffect(ctx, entry, kind, strength, true)
	})
}

// applyTimedEffect installs (apply=true) or reverses (apply=false) one
// held timed-buff kind's concrete effect (§4.15).
func (e *Engine) applyTimedEffect(ctx context.Context, entry *PlayerEntry, kind domlvl.TimedBuffKind, strength float64, apply bool) {
	sign := 1.0
	if !apply {
		sign = -1.0
	}
	switch kind {
	case domlvl.TimedSpeedBoost:
		e.arbiter.AddAbilityMultiplier(entry, sign*strength)
	case domlvl.TimedHungerPause:
		entry.Stats.PauseHungerDepletion(apply)
	case domlvl.TimedStaminaPause:
		entry.Stats.PauseStaminaDepletion(apply)
	case domlvl.TimedEnergyRestore:
		if apply {
			entry.Stats.Restore(player.StatEnergy, strength)
		}
	case domlvl.TimedHealthRestore:
		if apply {
			playerID := entry.ID.String()
			scheduleHost(ctx, e.host, e.logger, playerID, "", 0, func() {
				if err := e.host.RestoreHealthFraction(ctx, playerID, strength); err != nil {
					e.logger.Warn("RestoreHealthFraction failed for " + playerID + ": " + err.Error())
				}
			})
		}
	case domlvl.TimedHungerThirstRestore:
		if apply {
			entry.Stats.Restore(player.StatHunger, strength)
			entry.Stats.Restore(player.StatThirst, strength)
		}
	}
}

// applyPermanentOps executes the Permanent Buff Manager's decided
// operations (§4.16). HEALTH_BONUS/STAMINA_BONUS go through the host's
// versioned stat-max modifier calls; SPEED_BONUS is an in-engine ability
// multiplier; METABOLISM_REDUCTION needs no push, it is read lazily every
// tick via MetabolismReductionFraction.
func (e *Engine) applyPermanentOps(ctx context.Context, entry *PlayerEntry, ops []leveling.PermanentModifierOp) {
	for _, op := range ops {
		switch op.Kind {
		case domlvl.PermanentHealthBonus:
			e.scheduleStatMax(ctx, entry, op, hostport.StatHealth, "engine_permanent_health")
		case domlvl.PermanentStaminaBonus:
			e.scheduleStatMax(ctx, entry, op, hostport.StatStamina, "engine_permanent_stamina")
		case domlvl.PermanentSpeedBonus:
			sign := 1.0
			if !op.Install {
				sign = -1.0
			}
			e.arbiter.AddAbilityMultiplier(entry, sign*op.EffectStrength)
		case domlvl.PermanentMetabolismReduction:
			// No-op: consumed lazily, see MetabolismReductionFraction.
		}
	}
}

// syncLevelStatBonus reinstalls the flat per-level max-health bonus
// (leveling.statBonusesPerLevel) to match the player's current total levels
// across all professions. The key is stable, so reapplication replaces the
// prior modifier; no versioning is needed because the amount is derived
// from Progress at call time, not captured ahead of an async toggle.
func (e *Engine) syncLevelStatBonus(ctx context.Context, entry *PlayerEntry) {
	perLevel := e.cfg.Leveling.StatBonusesPerLevel
	if perLevel <= 0 {
		return
	}
	totalLevels := 0
	for _, prof := range domlvl.AllProfessions {
		totalLevels += entry.Progress.Get(prof).Level - 1
	}
	amount := perLevel * float64(totalLevels)
	playerID := entry.ID.String()
	scheduleHost(ctx, e.host, e.logger, playerID, "", 0, func() {
		if amount <= 0 {
			if err := e.host.RemoveStatMaxModifier(ctx, playerID, hostport.StatHealth, "engine_level_health"); err != nil {
				e.logger.Warn("RemoveStatMaxModifier failed for " + playerID + ": " + err.Error())
			}
			return
		}
		if err := e.host.ApplyStatMaxModifier(ctx, playerID, hostport.StatHealth, "engine_level_health", hostport.ModifierAdditive, amount); err != nil {
			e.logger.Warn("ApplyStatMaxModifier failed for " + playerID + ": " + err.Error())
		}
	})
}

// scheduleStatMax posts a versioned ApplyStatMaxModifier/RemoveStatMaxModifier
// call, capturing op.Kind's OperationVersion so a stale, superseded call
// (e.g. unlocked then immediately re-locked within one tick) is discarded
// by the host-executed closure rather than clobbering a newer one (§4.16,
// §8 invariant 8).
func (e *Engine) scheduleStatMax(ctx context.Context, entry *PlayerEntry, op leveling.PermanentModifierOp, stat hostport.StatKind, key string) {
	version := entry.VersionFor(op.Kind)
	captured := version.Next()
	playerID := entry.ID.String()
	scheduleHost(ctx, e.host, e.logger, playerID, key, captured, func() {
		if version.IsStale(captured) {
			return
		}
		if op.Install {
			if err := e.host.ApplyStatMaxModifier(ctx, playerID, stat, key, hostport.ModifierAdditive, op.EffectStrength); err != nil {
				e.logger.Warn("ApplyStatMaxModifier failed for " + playerID + ": " + err.Error())
			}
		} else {
			if err := e.host.RemoveStatMaxModifier(ctx, playerID, stat, key); err != nil {
				e.logger.Warn("RemoveStatMaxModifier failed for " + playerID + ": " + err.Error())
			}
		}
	})
}
