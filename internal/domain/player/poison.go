package player

// ConsumablePoisonVariant enumerates the consumable-driven poison state
// machines of §4.10.
type ConsumablePoisonVariant int

const (
	PoisonMildToxin ConsumablePoisonVariant = iota
	PoisonSlowPoison
	PoisonPurge
	// PoisonRandom resolves to one of the above at apply time via uniform
	// choice (§4.10) and is never stored on an ActivePoison itself.
	PoisonRandom
)

func (v ConsumablePoisonVariant) String() string {
	switch v {
	case PoisonMildToxin:
		return "MILD_TOXIN"
	case PoisonSlowPoison:
		return "SLOW_POISON"
	case PoisonPurge:
		return "PURGE"
	case PoisonRandom:
		return "RANDOM"
	default:
		return "UNKNOWN"
	}
}

// ActivePoison is the 0..1 per-player poison instance described in §3.
type ActivePoison struct {
	Variant ConsumablePoisonVariant

	StartMs    int64
	DurationMs int64

	TicksApplied int
	LastTickMs   int64

	// RecoveryActive is true once PURGE has entered its no-drain recovery
	// phase; the slot stays occupied (blocking new poisons) until recovery
	// elapses.
	RecoveryActive  bool
	RecoveryStartMs int64
	RecoveryMs      int64
}

// ElapsedMs returns how long the poison (drain phase only) has been active.
func (p *ActivePoison) ElapsedMs(nowMs int64) int64 {
	return nowMs - p.StartMs
}

// DrainExpired reports whether the drain phase has run its full duration.
func (p *ActivePoison) DrainExpired(nowMs int64) bool {
	return p.ElapsedMs(nowMs) >= p.DurationMs
}

// RecoveryExpired reports whether a PURGE recovery phase has elapsed.
func (p *ActivePoison) RecoveryExpired(nowMs int64) bool {
	if !p.RecoveryActive {
		return false
	}
	return nowMs-p.RecoveryStartMs >= p.RecoveryMs
}

// Expired reports whether the instance should be cleared this tick, per
// §3/§4.10: drain complete (non-PURGE), or PURGE recovery complete.
func (p *ActivePoison) Expired(nowMs int64) bool {
	if p.Variant == PoisonPurge {
		return p.RecoveryActive && p.RecoveryExpired(nowMs)
	}
	return p.DrainExpired(nowMs)
}
