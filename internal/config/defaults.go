package config

import (
	"github.com/briarwatch/survivalcore/internal/domain/leveling"
	"github.com/briarwatch/survivalcore/internal/domain/player"
)

// Default returns the reference configuration matching every numeric
// default named explicitly in spec.md (§4, §6, §8 scenarios). It is meant
// as a starting point for hosts and as the fixture used by the engine's own
// tests.
func Default() Config {
	return Config{
		Metabolism: MetabolismConfig{
			BaseRateSec: map[player.Stat]float64{
				player.StatHunger: 60,
				player.StatThirst: 60,
				player.StatEnergy: 90,
			},
			ActivityMultiplier: map[player.Activity]float64{
				player.ActivityIdle:      1.0,
				player.ActivityWalking:   1.2,
				player.ActivitySprinting: 2.0,
				player.ActivitySwimming:  1.5,
				player.ActivityCombat:    1.5,
				player.ActivityJumping:   1.2,
			},
			Initial: player.Defaults{Hunger: 100, Thirst: 100, Energy: 100},
			Enabled: map[player.Stat]bool{
				player.StatHunger: true,
				player.StatThirst: true,
				player.StatEnergy: true,
			},
		},
		Debuffs: map[player.DebuffKind]DebuffKindConfig{
			player.DebuffStarving: {
				Enabled: true, EntryThreshold: 0, ExitThreshold: 30, TickIntervalMs: 3000,
				Magnitude: DebuffMagnitudeSchedule{Initial: 1, Increment: 0.5, Max: 5},
			},
			player.DebuffDehydrated: {
				Enabled: true, EntryThreshold: 0, ExitThreshold: 30, TickIntervalMs: 4000,
				Magnitude: DebuffMagnitudeSchedule{Initial: 1.5, Increment: 0, Max: 1.5},
			},
			player.DebuffExhausted: {
				Enabled: true, EntryThreshold: 0, ExitThreshold: 50, TickIntervalMs: 1000,
				Magnitude: DebuffMagnitudeSchedule{Initial: 5, Increment: 0, Max: 5},
			},
			player.DebuffParched: {
				Enabled: true, EntryThreshold: 30, ExitThreshold: 30,
			},
			player.DebuffTired: {
				Enabled: true, EntryThreshold: 30, ExitThreshold: 30,
			},
		},
		Buffs: map[player.BuffKind]BuffKindConfig{
			player.BuffSpeed:   {Enabled: true, ActivationThreshold: 90, DeactivationThreshold: 80, SpeedMultiplierDelta: 0.15},
			player.BuffDefense: {Enabled: true, ActivationThreshold: 90, DeactivationThreshold: 80, StatMaxAdditive: 20},
			player.BuffStamina: {Enabled: true, ActivationThreshold: 90, DeactivationThreshold: 80, StatMaxAdditive: 20},
		},
		Consumable: map[string]ConsumablePoisonConfig{
			string(PoisonRuleMildToxin):  {DrainHunger: 2, DrainThirst: 1.5, DrainEnergy: 1, TickMs: 1000, DurationMs: 8000},
			string(PoisonRuleSlowPoison): {DrainHunger: 1, DrainThirst: 1, DrainEnergy: 0.5, TickMs: 3000, DurationMs: 45000},
			string(PoisonRulePurge):      {DrainHunger: 3, DrainThirst: 2.5, DrainEnergy: 2, TickMs: 500, DurationMs: 5000, RecoveryMs: 20000},
		},
		Native: map[string]NativeDebuffConfig{
			"POISON": {Enabled: true, DrainHunger: 1, DrainThirst: 1, DrainEnergy: 0, TickMs: 2000},
			"BURN":   {Enabled: true, DrainHunger: 0, DrainThirst: 1, DrainEnergy: 0, TickMs: 1000},
			"STUN":   {Enabled: true, DrainHunger: 0, DrainThirst: 0, DrainEnergy: 2, TickMs: 1000},
			"FREEZE": {Enabled: true, DrainHunger: 0.5, DrainThirst: 0, DrainEnergy: 1, TickMs: 1000},
			"ROOT":   {Enabled: true, DrainHunger: 0, DrainThirst: 0, DrainEnergy: 1, TickMs: 1000},
			"SLOW":   {Enabled: true, DrainHunger: 0, DrainThirst: 0.5, DrainEnergy: 0, TickMs: 1000},
		},
		NativePoisonTiers: NativePoisonTierMultipliers{T1: 0.75, T2: 1.0, T3: 1.5},
		ConsumableRules: []ConsumableRule{
			{Pattern: "Food_*", Action: ActionRestoreHunger, Amount: 25},
			{Pattern: "Water_*", Action: ActionRestoreThirst, Amount: 30},
			{Pattern: "Stamina_*", Action: ActionRestoreEnergy, Amount: 30},
			{Pattern: "Feast_*", Action: ActionRestoreCombined, Combined: player.Defaults{Hunger: 20, Thirst: 20, Energy: 10}},
			{Pattern: "Antidote", Action: ActionPoison, Poison: ""}, // exact match, clears rather than applies; handled specially
			{Pattern: "Potion_Poison", Action: ActionPoison, Poison: PoisonRuleSlowPoison},
			{Pattern: "Potion_Toxin_*", Action: ActionPoison, Poison: PoisonRuleMildToxin},
			{Pattern: "Potion_Purge_*", Action: ActionPoison, Poison: PoisonRulePurge},
			{Pattern: "Potion_Random_*", Action: ActionPoison, Poison: PoisonRuleRandom},
		},
		Sleep: SleepConfig{
			BedBlockIDPatterns: []string{"Bed_*"},
			EnergyRestore:      50,
			CooldownMs:         60000,
			RespectSchedule:    true,
		},
		Leveling: LevelingConfig{
			Enabled:             true,
			MaxLevel:            100,
			BaseXPPerLevel:      100,
			Scaling:             1.15,
			StatBonusesPerLevel: 0,
			SkillPointsPerLevel: 1,
		},
		Abilities: defaultAbilityTable(),
	}
}

func defaultAbilityTable() leveling.Table {
	const perLevel = 0.005 // +0.5%/level, fixed per spec.md §9 Open Questions

	mk := func(id leveling.AbilityType, tier leveling.AbilityTier, prof leveling.Profession, unlock int, base, max, strength, duration float64, permanent bool) leveling.Definition {
		return leveling.Definition{
			Type: id, Tier: tier, Profession: prof, Enabled: true,
			UnlockLevel: unlock, BaseChance: base, MaxChance: max,
			ChancePerLevel: perLevel, EffectStrength: strength, EffectDuration: duration,
			Permanent: permanent,
		}
	}

	t := leveling.Table{}
	for _, prof := range leveling.AllProfessions {
		var xpID leveling.AbilityType
		switch prof {
		case leveling.ProfessionCombat:
			xpID = leveling.AbilityXPBoostCombat
		case leveling.ProfessionMining:
			xpID = leveling.AbilityXPBoostMining
		case leveling.ProfessionLogging:
			xpID = leveling.AbilityXPBoostLogging
		case leveling.ProfessionBuilding:
			xpID = leveling.AbilityXPBoostBuilding
		case leveling.ProfessionGathering:
			xpID = leveling.AbilityXPBoostGathering
		}
		t[xpID] = mk(xpID, leveling.TierXPBoost, prof, 15, 0.05, 0.30, 0.10, 0, false)
	}

	// Triggered abilities: Adrenaline Rush holds a speed boost for its
	// duration; Warrior's Resilience restores a fraction of max health; the
	// rest restore stats in points and need no duration.
	t[leveling.AbilityAdrenalineRush] = mk(leveling.AbilityAdrenalineRush, leveling.TierXPBoost, leveling.ProfessionCombat, 15, 0.10, 0.40, 0.25, 8, false)
	t[leveling.AbilityWarriorsResilience] = mk(leveling.AbilityWarriorsResilience, leveling.TierTriggeredEffect, leveling.ProfessionCombat, 35, 0.15, 0.50, 0.20, 0, false)
	t[leveling.AbilityOreSense] = mk(leveling.AbilityOreSense, leveling.TierXPBoost, leveling.ProfessionMining, 15, 0.10, 0.40, 8, 0, false)
	t[leveling.AbilityDeepVein] = mk(leveling.AbilityDeepVein, leveling.TierTriggeredEffect, leveling.ProfessionMining, 35, 0.15, 0.50, 15, 0, false)
	t[leveling.AbilityFellingStrike] = mk(leveling.AbilityFellingStrike, leveling.TierXPBoost, leveling.ProfessionLogging, 15, 0.10, 0.40, 8, 0, false)
	t[leveling.AbilityLumberjack] = mk(leveling.AbilityLumberjack, leveling.TierTriggeredEffect, leveling.ProfessionLogging, 35, 0.15, 0.50, 15, 0, false)
	t[leveling.AbilityMasterBuilder] = mk(leveling.AbilityMasterBuilder, leveling.TierXPBoost, leveling.ProfessionBuilding, 15, 0.10, 0.40, 8, 0, false)
	t[leveling.AbilityForager] = mk(leveling.AbilityForager, leveling.TierXPBoost, leveling.ProfessionGathering, 15, 0.10, 0.40, 10, 0, false)

	t[leveling.AbilityIronConstitution] = mk(leveling.AbilityIronConstitution, leveling.TierPermanent, leveling.ProfessionCombat, 60, 0, 0, 25, 0, true)
	t[leveling.AbilityMarathoner] = mk(leveling.AbilityMarathoner, leveling.TierPermanent, leveling.ProfessionGathering, 60, 0, 0, 20, 0, true)
	t[leveling.AbilityFleetFooted] = mk(leveling.AbilityFleetFooted, leveling.TierPermanent, leveling.ProfessionLogging, 60, 0, 0, 0.10, 0, true)
	t[leveling.AbilitySurvivalist] = mk(leveling.AbilitySurvivalist, leveling.TierPermanent, leveling.ProfessionGathering, 60, 0, 0, 0.15, 0, true)

	return t
}
