package leveling

import "sync/atomic"

// OperationVersion is the monotonic per-(player, permanent-buff-kind)
// counter described in §3. Every asynchronous host modifier call captures
// the version at scheduling time; the host-executed closure compares its
// captured version to the current counter and discards the call if stale
// (§4.16, §5, §8 invariant 8).
type OperationVersion struct {
	counter atomic.Uint64
}

// Next increments the counter and returns the new version, to be captured
// by the caller before scheduling a host closure.
func (v *OperationVersion) Next() uint64 {
	return v.counter.Add(1)
}

// Current returns the counter's present value without incrementing it —
// used inside a host-executed closure to check for staleness.
func (v *OperationVersion) Current() uint64 {
	return v.counter.Load()
}

// IsStale reports whether capturedVersion is behind the current counter,
// i.e. a newer apply/remove has been scheduled since.
func (v *OperationVersion) IsStale(capturedVersion uint64) bool {
	return capturedVersion != v.Current()
}
