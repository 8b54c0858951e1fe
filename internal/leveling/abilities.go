package leveling

import (
	"math/rand"
	"sync"

	"github.com/briarwatch/survivalcore/internal/config"
	domlvl "github.com/briarwatch/survivalcore/internal/domain/leveling"
)

// InvalidateListener is notified whenever a player's AbilityCache is
// invalidated (§3: "listeners notified on invalidation"); the only
// prescribed consumer is a HUD, which is out of scope here (spec.md §1),
// so this is an unwired extension point rather than dead code: any host
// wiring a HUD attaches here without touching the cache itself.
type InvalidateListener func()

// AbilityCache is the per-player AbilityUnlockCache of §3: a dense set of
// unlocked AbilityType values, lazily rebuilt on cache miss and
// invalidated on any level change (C14).
type AbilityCache struct {
	table domlvl.Table

	mu        sync.Mutex
	valid     bool
	unlocked  map[domlvl.AbilityType]bool
	listeners []InvalidateListener
}

// NewAbilityCache constructs an empty, invalid cache bound to table.
func NewAbilityCache(table domlvl.Table) *AbilityCache {
	return &AbilityCache{table: table}
}

// AddListener registers a callback fired on every Invalidate.
func (c *AbilityCache) AddListener(l InvalidateListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Invalidate marks the cache for rebuild on next access, per any level
// change (§3, §4.14).
func (c *AbilityCache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	listeners := append([]InvalidateListener(nil), c.listeners...)
	c.mu.Unlock()
	for _, l := range listeners {
		l()
	}
}

func (c *AbilityCache) rebuildLocked(progress domlvl.Progress) {
	c.unlocked = make(map[domlvl.AbilityType]bool, len(c.table))
	for id, def := range c.table {
		if !def.Enabled {
			continue
		}
		if progress.Get(def.Profession).Level >= def.UnlockLevel {
			c.unlocked[id] = true
		}
	}
	c.valid = true
}

// IsUnlocked reports whether ability is currently unlocked for progress,
// rebuilding the cache first if it is stale.
func (c *AbilityCache) IsUnlocked(progress domlvl.Progress, ability domlvl.AbilityType) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		c.rebuildLocked(progress)
	}
	return c.unlocked[ability]
}

// EventKind tags the edges the Ability Dispatcher consults per §4.14's
// bullet list, expressed as the tagged-enum-over-a-table the design notes
// call for (§9 "Dispatch across ability kinds") instead of class-per-
// handler registration.
type EventKind string

const (
	EventXPAward    EventKind = "XP_AWARD"
	EventKill       EventKind = "KILL"
	EventOreBreak   EventKind = "ORE_BREAK"
	EventTreeBreak  EventKind = "TREE_BREAK"
	EventBlockPlace EventKind = "BLOCK_PLACE"
	EventPickup     EventKind = "PICKUP"
)

// tier1Dispatch and tier2Dispatch are the (event kind x profession) ->
// ability id tables of §4.14.
var tier1Dispatch = map[EventKind]map[domlvl.Profession]domlvl.AbilityType{
	EventXPAward: {
		domlvl.ProfessionCombat:    domlvl.AbilityXPBoostCombat,
		domlvl.ProfessionMining:    domlvl.AbilityXPBoostMining,
		domlvl.ProfessionLogging:   domlvl.AbilityXPBoostLogging,
		domlvl.ProfessionBuilding:  domlvl.AbilityXPBoostBuilding,
		domlvl.ProfessionGathering: domlvl.AbilityXPBoostGathering,
	},
	EventKill:       {domlvl.ProfessionCombat: domlvl.AbilityAdrenalineRush},
	EventOreBreak:   {domlvl.ProfessionMining: domlvl.AbilityOreSense},
	EventTreeBreak:  {domlvl.ProfessionLogging: domlvl.AbilityFellingStrike},
	EventBlockPlace: {domlvl.ProfessionBuilding: domlvl.AbilityMasterBuilder},
	EventPickup:     {domlvl.ProfessionGathering: domlvl.AbilityForager},
}

var tier2Dispatch = map[EventKind]map[domlvl.Profession]domlvl.AbilityType{
	EventKill:      {domlvl.ProfessionCombat: domlvl.AbilityWarriorsResilience},
	EventOreBreak:  {domlvl.ProfessionMining: domlvl.AbilityDeepVein},
	EventTreeBreak: {domlvl.ProfessionLogging: domlvl.AbilityLumberjack},
}

// Dispatcher is the Ability Cache & Dispatcher (C14)'s trigger-roll half.
type Dispatcher struct {
	cfg *config.Config
	rng func() float64
}

// NewDispatcher constructs a Dispatcher using math/rand's default source.
func NewDispatcher(cfg *config.Config) *Dispatcher {
	return &Dispatcher{cfg: cfg, rng: rand.Float64}
}

// ShouldTrigger implements §4.14's shouldTrigger: false if not unlocked;
// true unconditionally for tier-3; otherwise an independent uniform draw
// against chance-at-level.
func (d *Dispatcher) ShouldTrigger(cache *AbilityCache, progress domlvl.Progress, ability domlvl.AbilityType) bool {
	def, ok := d.cfg.Abilities[ability]
	if !ok || !def.Enabled {
		return false
	}
	if !cache.IsUnlocked(progress, ability) {
		return false
	}
	if def.Tier == domlvl.TierPermanent {
		return true
	}
	level := progress.Get(def.Profession).Level
	return d.rng() < def.ChanceAtLevel(level)
}

// XPBoostMultiplier consults the profession's XP-award tier-1 ability and
// returns its pre-feedback effect strength if triggered, else 0 (§4.14
// "multiply the XP by 1 + effectStrength (pre-feedback)").
func (d *Dispatcher) XPBoostMultiplier(cache *AbilityCache, progress domlvl.Progress, profession domlvl.Profession) float64 {
	id, ok := tier1Dispatch[EventXPAward][profession]
	if !ok || !d.ShouldTrigger(cache, progress, id) {
		return 0
	}
	return d.cfg.Abilities[id].EffectStrength
}

// ConsultTier1 resolves the tier-1 ability for (event, profession) and
// reports whether it triggered.
func (d *Dispatcher) ConsultTier1(cache *AbilityCache, progress domlvl.Progress, event EventKind, profession domlvl.Profession) (domlvl.AbilityType, bool) {
	id, ok := tier1Dispatch[event][profession]
	if !ok {
		return "", false
	}
	return id, d.ShouldTrigger(cache, progress, id)
}

// ConsultTier2 resolves the tier-2 ability for (event, profession) and
// reports whether it triggered.
func (d *Dispatcher) ConsultTier2(cache *AbilityCache, progress domlvl.Progress, event EventKind, profession domlvl.Profession) (domlvl.AbilityType, bool) {
	id, ok := tier2Dispatch[event][profession]
	if !ok {
		return "", false
	}
	return id, d.ShouldTrigger(cache, progress, id)
}

// Definition exposes the ability's tunables for callers applying its
// effect (e.g. EffectStrength, EffectDuration).
func (d *Dispatcher) Definition(ability domlvl.AbilityType) (domlvl.Definition, bool) {
	def, ok := d.cfg.Abilities[ability]
	return def, ok
}
