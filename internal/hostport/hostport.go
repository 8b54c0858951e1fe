// Package hostport defines the abstract boundary between the stat/effect
// engine and the host game (§4.3, §6). The engine never imports a concrete
// game runtime; every side effect on the game world flows through the
// HostAdapter interface injected at construction, grounded on the teacher's
// own boundary-interface instinct (events.EventPersister in
// internal/events/eventlog.go) generalized to the operations below.
package hostport

import "context"

// StatKind identifies a host-side stat whose max can be modified (§4.3).
// HEALTH and STAMINA are used by this engine; the host may define more.
type StatKind string

const (
	StatHealth  StatKind = "HEALTH"
	StatStamina StatKind = "STAMINA"
)

// ModifierMode selects how an installed stat-max modifier combines with
// the host's base value. Per spec §9 (Open Questions, last bullet), this
// engine only ever installs ADDITIVE modifiers.
type ModifierMode string

const (
	ModifierAdditive       ModifierMode = "ADDITIVE"
	ModifierMultiplicative ModifierMode = "MULTIPLICATIVE"
)

// EffectVariant classifies a host-reported active effect for the purposes
// of the Consumable Detector (C7) and Native-Effect Drain Engine (C11).
type EffectVariant int

const (
	EffectOther EffectVariant = iota
	EffectDebuff
	EffectBuff
)

// ActivityInputs are the raw movement flags read from the host (§4.3).
type ActivityInputs struct {
	IsSprinting bool
	IsSwimming  bool
	IsWalking   bool
	IsJumping   bool
}

// ActiveEffect is one entry in the host's active-effect list (§4.3).
type ActiveEffect struct {
	EffectID    string
	EffectIndex int
	Variant     EffectVariant
	RemainingMs int64
	InitialMs   int64
}

// HostAction is the tagged closure type posted to the host thread via
// ScheduleOnHostThread, per the "Async application of modifiers" design
// note (§9): message passing over captured-state closures, carrying an
// explicit (versionKey, capturedVersion) pair so the consumer can discard
// stale actions without re-deriving engine state.
type HostAction struct {
	PlayerID        string
	VersionKey      string
	CapturedVersion uint64
	Run             func()
}

// HostAdapter is the sole boundary to the game (§4.3). Implementations are
// injected at construction; every method is best-effort — the engine
// assumes exceptions are possible and will be converted to an error return
// here rather than a panic, matching §7's "Adapter exception" policy.
type HostAdapter interface {
	// ReadActivityInputs returns current movement flags for the player.
	// Returns ok=false if the player handle is not ready (§4.2).
	ReadActivityInputs(ctx context.Context, playerID string) (inputs ActivityInputs, ok bool, err error)

	// ReadActiveEffects enumerates all active status effects on the player.
	ReadActiveEffects(ctx context.Context, playerID string) (effects []ActiveEffect, ok bool, err error)

	// ApplyStatMaxModifier installs a named modifier, idempotent under a
	// given key; a prior modifier with the same key is replaced.
	// Implementations must rescale the stat's current value proportionally
	// to the new max, so an added bonus is visible immediately rather than
	// locked behind regeneration.
	ApplyStatMaxModifier(ctx context.Context, playerID string, stat StatKind, key string, mode ModifierMode, amount float64) error

	// RemoveStatMaxModifier is an idempotent no-op if the key is absent.
	RemoveStatMaxModifier(ctx context.Context, playerID string, stat StatKind, key string) error

	// SetBaseSpeed sets a scalar multiplier applied to the entity's base
	// speed; the adapter stores the original on first call.
	SetBaseSpeed(ctx context.Context, playerID string, multiplier float64) error

	// ResetBaseSpeed restores the multiplier captured on first SetBaseSpeed.
	ResetBaseSpeed(ctx context.Context, playerID string) error

	// ApplyDamage applies amount damage, tagged with a cause for logging.
	ApplyDamage(ctx context.Context, playerID string, amount float64, cause string) error

	// RestoreHealthFraction restores a fraction (0..1) of the player's max health.
	RestoreHealthFraction(ctx context.Context, playerID string, fraction float64) error

	// DrainStamina removes amount from the host-tracked stamina resource,
	// used by EXHAUSTED's side effect (§4.8).
	DrainStamina(ctx context.Context, playerID string, amount float64) error

	// SendChat sends a localized chat line colored by colorTag (e.g. "red",
	// "green").
	SendChat(ctx context.Context, playerID string, text string, colorTag string) error

	// ScheduleOnHostThread enqueues action to run on the host-owned thread
	// permitted to mutate that entity's components. It may run later; this
	// is the only legal path for stat/speed operations (§4.3).
	ScheduleOnHostThread(ctx context.Context, action HostAction) error
}
