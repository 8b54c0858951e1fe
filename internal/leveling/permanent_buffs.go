package leveling

import (
	"github.com/briarwatch/survivalcore/internal/config"
	domlvl "github.com/briarwatch/survivalcore/internal/domain/leveling"
)

// abilityToPermanentKind maps each tier-3 ability to the PermanentBuffKind
// it installs (§4.16).
var abilityToPermanentKind = map[domlvl.AbilityType]domlvl.PermanentBuffKind{
	domlvl.AbilityIronConstitution: domlvl.PermanentHealthBonus,
	domlvl.AbilityMarathoner:       domlvl.PermanentStaminaBonus,
	domlvl.AbilityFleetFooted:      domlvl.PermanentSpeedBonus,
	domlvl.AbilitySurvivalist:      domlvl.PermanentMetabolismReduction,
}

// PermanentModifierOp is a decided install or removal for one permanent buff
// kind. This package stays free of hostport so the decision (pure, testable)
// is separated from its versioned, async execution, which belongs to engine
// where the HostAdapter and OperationVersion are actually consulted (§9
// "Cyclic/back-references").
type PermanentModifierOp struct {
	Ability        domlvl.AbilityType
	Kind           domlvl.PermanentBuffKind
	Install        bool // true: apply; false: remove
	EffectStrength float64
}

// PermanentBuffManager is the Permanent Buff Manager (C16)'s decision half:
// it diffs which tier-3 abilities are unlocked against what is currently
// installed and returns the operations the caller must execute.
type PermanentBuffManager struct {
	cfg *config.Config
}

// NewPermanentBuffManager constructs a PermanentBuffManager.
func NewPermanentBuffManager(cfg *config.Config) *PermanentBuffManager {
	return &PermanentBuffManager{cfg: cfg}
}

// diff walks every tier-3 ability once and reports the install/remove ops
// needed to bring installed in line with what progress currently unlocks.
func (m *PermanentBuffManager) diff(progress domlvl.Progress, cache *AbilityCache, dispatcher *Dispatcher, installed *domlvl.PermanentSet) []PermanentModifierOp {
	var ops []PermanentModifierOp
	for ability, kind := range abilityToPermanentKind {
		def, ok := m.cfg.Abilities[ability]
		if !ok {
			continue
		}
		unlocked := def.Enabled && dispatcher.ShouldTrigger(cache, progress, ability)
		isInstalled := installed.IsInstalled(kind)
		switch {
		case unlocked && !isInstalled:
			ops = append(ops, PermanentModifierOp{Ability: ability, Kind: kind, Install: true, EffectStrength: def.EffectStrength})
			installed.Installed[kind] = true
		case !unlocked && isInstalled:
			ops = append(ops, PermanentModifierOp{Ability: ability, Kind: kind, Install: false})
			delete(installed.Installed, kind)
		}
	}
	return ops
}

// ApplyUnlockedBuffs runs the full diff on the ready edge (§4.16
// "applyUnlockedBuffs on ready, covering stale modifiers from a level lost
// while offline or a disabled ability").
func (m *PermanentBuffManager) ApplyUnlockedBuffs(progress domlvl.Progress, cache *AbilityCache, dispatcher *Dispatcher, installed *domlvl.PermanentSet) []PermanentModifierOp {
	return m.diff(progress, cache, dispatcher, installed)
}

// CheckLevelChange re-runs the same diff after a level-up event; the cache
// has already been invalidated by the caller so this sees the fresh unlock
// state (§4.16 "checkLevelChange").
func (m *PermanentBuffManager) CheckLevelChange(progress domlvl.Progress, cache *AbilityCache, dispatcher *Dispatcher, installed *domlvl.PermanentSet) []PermanentModifierOp {
	return m.diff(progress, cache, dispatcher, installed)
}

// MetabolismReductionFraction returns Survivalist's configured reduction
// fraction if installed, else 0, for the Depletion Engine's
// MetabolismMultipliers (§9's one-way data flow: consumed, never queried
// back through).
func (m *PermanentBuffManager) MetabolismReductionFraction(installed *domlvl.PermanentSet) float64 {
	if !installed.IsInstalled(domlvl.PermanentMetabolismReduction) {
		return 0
	}
	return m.cfg.Abilities[domlvl.AbilitySurvivalist].EffectStrength
}
