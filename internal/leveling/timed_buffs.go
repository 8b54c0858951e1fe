package leveling

import (
	domlvl "github.com/briarwatch/survivalcore/internal/domain/leveling"
)

// timedSweepIntervalMs is the 2 Hz expiry sweep cadence of §4.15.
const timedSweepIntervalMs = 500

// TimedBuffManager is the Timed Buff Manager (C15): installs
// duration-limited effects (refreshing the duration on reapplication) and
// expires them on a 2 Hz sweep, reversing whatever the install applied.
type TimedBuffManager struct {
	lastSweepMs int64
}

// NewTimedBuffManager constructs an empty manager.
func NewTimedBuffManager() *TimedBuffManager {
	return &TimedBuffManager{}
}

// Install applies kind's effect to set, refreshing the expiry if the kind is
// already held (§4.15: "reapplication refreshes duration, does not stack").
// Restore kinds (§3 IsRestoreKind) are applied once by apply() and never
// stored, matching the domain's "removed immediately after effect" note.
func (m *TimedBuffManager) Install(set *domlvl.TimedSet, kind domlvl.TimedBuffKind, strength float64, durationSec float64, nowMs int64, apply func()) {
	apply()
	if kind.IsRestoreKind() {
		return
	}
	set.Entries[kind] = domlvl.TimedEntry{
		Strength: strength,
		ExpiryMs: nowMs + int64(durationSec*1000),
	}
}

// Sweep checks every held entry for expiry, invoking reverse(kind, entry)
// for each one past its ExpiryMs and removing it from set. The manager
// self-gates to the 2 Hz cadence of §4.15 regardless of how often the
// caller invokes Sweep, so engine can call it every main tick.
func (m *TimedBuffManager) Sweep(set *domlvl.TimedSet, nowMs int64, reverse func(domlvl.TimedBuffKind, domlvl.TimedEntry)) {
	if nowMs-m.lastSweepMs < timedSweepIntervalMs {
		return
	}
	m.lastSweepMs = nowMs
	for kind, entry := range set.Entries {
		if nowMs >= entry.ExpiryMs {
			reverse(kind, entry)
			delete(set.Entries, kind)
		}
	}
}
