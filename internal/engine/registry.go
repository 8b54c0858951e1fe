package engine

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	domlvl "github.com/briarwatch/survivalcore/internal/domain/leveling"
	"github.com/briarwatch/survivalcore/internal/domain/player"
	"github.com/briarwatch/survivalcore/internal/leveling"
)

// consumableDedupWindow is the 200 ms window the Consumable Detector (C7)
// uses to avoid counting the same effect index twice (§4.7).
const consumableDedupWindow = 200 * time.Millisecond

// speedState is the Speed Arbiter's (C12) per-player bookkeeping: the
// three composable contributions plus the last value actually scheduled,
// so recomputation can tell whether a new setBaseSpeed call is warranted.
type speedState struct {
	mu                sync.Mutex
	debuffMultiplier  float64 // <= 1.0
	buffMultiplier    float64 // additive, >= 0
	abilityMultiplier float64 // additive, >= 0
	lastComposite     float64
	hasLast           bool
}

func newSpeedState() *speedState {
	return &speedState{debuffMultiplier: 1.0}
}

// PlayerEntry is everything owned across C4/C8/C9/C10/C12/C14/C15/C16 for
// one tracked player, held in one place because the main tick runs each
// system over the same player in fixed order (§5 "Ordering guarantees")
// and single-player access is otherwise unserialized across goroutines.
type PlayerEntry struct {
	ID player.ID

	Stats   *player.Stats
	Debuffs *player.DebuffState
	Buffs   *player.BuffState
	Poison  *player.ActivePoison // nil when no poison is active

	Progress       domlvl.Progress
	TimedBuffs     *domlvl.TimedSet
	PermanentBuffs *domlvl.PermanentSet
	// PermanentVersions is one OperationVersion per PermanentBuffKind,
	// consulted by C16's versioned apply/remove (§3 OperationVersion).
	PermanentVersions map[domlvl.PermanentBuffKind]*domlvl.OperationVersion

	// Abilities is the per-player Ability Unlock Cache (C14), rebuilt
	// lazily and invalidated on every level change.
	Abilities *leveling.AbilityCache

	// TimedManager owns this player's 2 Hz expiry sweep gate (C15); kept
	// per-player rather than shared so one player's sweep cadence never
	// throttles another's.
	TimedManager *leveling.TimedBuffManager

	Speed *speedState

	// StaminaConsumptionMultiplier is TIRED's secondary contribution
	// (§4.8): linear 1.0->1.5 over the same range as its speed curve,
	// applied to energy depletion by the Depletion Engine on the
	// following tick (the debuff machine runs after depletion in a
	// tick's fixed order, so this is a one-tick-lagged feedback, matching
	// the MetabolismMultipliers pattern used for Survivalist).
	StaminaConsumptionMultiplier float64

	// nativeDrainLastMs is C11's per-kind last-drain timestamp, keyed by
	// native debuff kind name (POISON/BURN/STUN/FREEZE/ROOT/SLOW).
	nativeDrainLastMs map[string]int64

	// lastSleepMs gates the bed energy restore to the configured cooldown;
	// zero means the player has not slept this session.
	lastSleepMs int64

	// consumableSeen is C7's processed-index set: presence means "already
	// counted", and entries expire after consumableDedupWindow (§4.7).
	consumableSeen *lru.LRU[int, struct{}]
}

func newPlayerEntry(id player.ID, defaults player.Defaults, abilityTable domlvl.Table, nowMs int64) *PlayerEntry {
	return &PlayerEntry{
		ID:                           id,
		Stats:                        player.New(id, defaults, nowMs),
		Debuffs:                      player.NewDebuffState(),
		Buffs:                        player.NewBuffState(),
		Progress:                     domlvl.NewProgress(),
		TimedBuffs:                   domlvl.NewTimedSet(),
		PermanentBuffs:               domlvl.NewPermanentSet(),
		PermanentVersions:            make(map[domlvl.PermanentBuffKind]*domlvl.OperationVersion),
		Abilities:                    leveling.NewAbilityCache(abilityTable),
		TimedManager:                 leveling.NewTimedBuffManager(),
		Speed:                        newSpeedState(),
		StaminaConsumptionMultiplier: 1.0,
		nativeDrainLastMs:            make(map[string]int64),
		consumableSeen:               lru.NewLRU[int, struct{}](4096, nil, consumableDedupWindow),
	}
}

// VersionFor returns (creating if absent) the OperationVersion for the
// given permanent buff kind.
func (e *PlayerEntry) VersionFor(kind domlvl.PermanentBuffKind) *domlvl.OperationVersion {
	if v, ok := e.PermanentVersions[kind]; ok {
		return v
	}
	v := &domlvl.OperationVersion{}
	e.PermanentVersions[kind] = v
	return v
}

// MarkConsumed records effectIndex as processed for the dedup window.
func (e *PlayerEntry) MarkConsumed(effectIndex int) {
	e.consumableSeen.Add(effectIndex, struct{}{})
}

// AlreadyConsumed reports whether effectIndex was processed within the
// dedup window.
func (e *PlayerEntry) AlreadyConsumed(effectIndex int) bool {
	_, ok := e.consumableSeen.Get(effectIndex)
	return ok
}

// Registry is the Player Registry (C2): tracks active player identities
// between the ready and disconnect edges. Ready is idempotent (§4.2); a
// re-ready replaces nothing structural but returns the existing entry so
// state survives a reconnect blip.
type Registry struct {
	mu      sync.RWMutex
	players map[player.ID]*PlayerEntry
	// order is the stable ready-order of tracked ids backing NextBatch's
	// rolling cursor; ranging over the players map instead would reshuffle
	// on every call and the cursor window would stop being contiguous.
	order        []player.ID
	abilityTable domlvl.Table

	// cursor is C7's rolling-batch position across calls to NextBatch.
	// Lock order: mu before cursorMu, always.
	cursorMu sync.Mutex
	cursor   int
}

// NewRegistry returns an empty Registry backed by the given ability table,
// used to construct each player's Ability Unlock Cache (C14).
func NewRegistry(abilityTable domlvl.Table) *Registry {
	return &Registry{players: make(map[player.ID]*PlayerEntry), abilityTable: abilityTable}
}

// OnReady implements the ready edge of §4.2. If the player is already
// tracked, the existing entry is returned unchanged (idempotent); callers
// needing a hard reset should disconnect first.
func (r *Registry) OnReady(id player.ID, defaults player.Defaults, nowMs int64) *PlayerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.players[id]; ok {
		return existing
	}
	entry := newPlayerEntry(id, defaults, r.abilityTable, nowMs)
	r.players[id] = entry
	r.order = append(r.order, id)
	return entry
}

// OnDisconnect implements the disconnect edge: the entry is removed. The
// caller is responsible for the final persistence save before calling this
// (§3 "destroyed on disconnect after one final persistence save").
func (r *Registry) OnDisconnect(id player.ID) (*PlayerEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.players[id]
	if ok {
		delete(r.players, id)
		for i, oid := range r.order {
			if oid != id {
				continue
			}
			r.order[i] = r.order[len(r.order)-1]
			r.order = r.order[:len(r.order)-1]
			r.cursorMu.Lock()
			if i < r.cursor {
				r.cursor--
			}
			r.cursorMu.Unlock()
			break
		}
	}
	return entry, ok
}

// Get returns the tracked entry for id, or false if not ready.
func (r *Registry) Get(id player.ID) (*PlayerEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.players[id]
	return e, ok
}

// Range iterates every currently-ready entry; used by the main tick (§4
// "for each tracked player"). Iteration order is unspecified, matching
// §5's "across players no ordering is guaranteed".
func (r *Registry) Range(fn func(*PlayerEntry)) {
	r.mu.RLock()
	entries := make([]*PlayerEntry, 0, len(r.players))
	for _, e := range r.players {
		entries = append(entries, e)
	}
	r.mu.RUnlock()
	for _, e := range entries {
		fn(e)
	}
}

// NextBatch returns up to n entries for the detection tick's rolling batch
// (§4.7: "up to 10 players per tick"), advancing a cursor over the stable
// ready-order so the window is contiguous across calls and every tracked
// player is visited within ceil(N/n) batches.
func (r *Registry) NextBatch(n int) []*PlayerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.order) == 0 || n <= 0 {
		return nil
	}

	r.cursorMu.Lock()
	defer r.cursorMu.Unlock()
	if r.cursor >= len(r.order) {
		r.cursor = 0
	}
	count := n
	if count > len(r.order) {
		count = len(r.order)
	}
	batch := make([]*PlayerEntry, 0, count)
	for i := 0; i < count; i++ {
		id := r.order[(r.cursor+i)%len(r.order)]
		batch = append(batch, r.players[id])
	}
	r.cursor = (r.cursor + count) % len(r.order)
	return batch
}

// Count returns the number of currently tracked players.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
