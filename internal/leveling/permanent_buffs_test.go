package leveling

import (
	"testing"

	domlvl "github.com/briarwatch/survivalcore/internal/domain/leveling"
)

func permanentTestTable() domlvl.Table {
	return domlvl.Table{
		domlvl.AbilityIronConstitution: {
			Type: domlvl.AbilityIronConstitution, Tier: domlvl.TierPermanent, Profession: domlvl.ProfessionCombat,
			Enabled: true, UnlockLevel: 10, Permanent: true, EffectStrength: 20,
		},
		domlvl.AbilitySurvivalist: {
			Type: domlvl.AbilitySurvivalist, Tier: domlvl.TierPermanent, Profession: domlvl.ProfessionGathering,
			Enabled: true, UnlockLevel: 15, Permanent: true, EffectStrength: 0.1,
		},
	}
}

func TestPermanentBuffManagerInstallsOnUnlock(t *testing.T) {
	cfg := testConfig(t)
	cfg.Abilities = permanentTestTable()
	dispatcher := NewDispatcher(cfg)
	mgr := NewPermanentBuffManager(cfg)
	cache := NewAbilityCache(cfg.Abilities)
	installed := domlvl.NewPermanentSet()

	progress := domlvl.NewProgress()
	progress = progress.With(domlvl.ProfessionCombat, domlvl.ProgressRecord{Level: 10})

	ops := mgr.ApplyUnlockedBuffs(progress, cache, dispatcher, installed)
	if len(ops) != 1 {
		t.Fatalf("expected 1 install op, got %d", len(ops))
	}
	if !ops[0].Install || ops[0].Kind != domlvl.PermanentHealthBonus {
		t.Errorf("unexpected op: %+v", ops[0])
	}
	if !installed.IsInstalled(domlvl.PermanentHealthBonus) {
		t.Error("expected installed set updated")
	}
}

func TestPermanentBuffManagerRemovesStaleModifierOnLevelLoss(t *testing.T) {
	cfg := testConfig(t)
	cfg.Abilities = permanentTestTable()
	dispatcher := NewDispatcher(cfg)
	mgr := NewPermanentBuffManager(cfg)
	cache := NewAbilityCache(cfg.Abilities)
	installed := domlvl.NewPermanentSet()
	installed.Installed[domlvl.PermanentHealthBonus] = true

	progress := domlvl.NewProgress()
	progress = progress.With(domlvl.ProfessionCombat, domlvl.ProgressRecord{Level: 5}) // below unlock level 10

	ops := mgr.CheckLevelChange(progress, cache, dispatcher, installed)
	if len(ops) != 1 || ops[0].Install {
		t.Fatalf("expected exactly one removal op, got %+v", ops)
	}
	if installed.IsInstalled(domlvl.PermanentHealthBonus) {
		t.Error("expected stale modifier cleared from installed set")
	}
}

func TestPermanentBuffManagerNoOpWhenNothingChanged(t *testing.T) {
	cfg := testConfig(t)
	cfg.Abilities = permanentTestTable()
	dispatcher := NewDispatcher(cfg)
	mgr := NewPermanentBuffManager(cfg)
	cache := NewAbilityCache(cfg.Abilities)
	installed := domlvl.NewPermanentSet()

	progress := domlvl.NewProgress() // everyone level 1, nothing unlocked, nothing installed
	ops := mgr.ApplyUnlockedBuffs(progress, cache, dispatcher, installed)
	if len(ops) != 0 {
		t.Errorf("expected no ops when nothing is unlocked or installed, got %+v", ops)
	}
}

func TestMetabolismReductionFraction(t *testing.T) {
	cfg := testConfig(t)
	cfg.Abilities = permanentTestTable()
	mgr := NewPermanentBuffManager(cfg)
	installed := domlvl.NewPermanentSet()

	if got := mgr.MetabolismReductionFraction(installed); got != 0 {
		t.Errorf("expected 0 reduction when not installed, got %v", got)
	}
	installed.Installed[domlvl.PermanentMetabolismReduction] = true
	if got := mgr.MetabolismReductionFraction(installed); got != 0.1 {
		t.Errorf("MetabolismReductionFraction = %v, want 0.1", got)
	}
}
