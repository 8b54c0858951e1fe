package engine

import "time"

// Clock is the monotonic logical clock of C1: milliseconds since the
// engine started, immune to wall-clock adjustment mid-session. Rates
// throughout the engine are expressed in seconds of accumulated in-engine
// time, per spec.md §1's non-goal of assuming wall-clock monotonicity
// across saves.
type Clock struct {
	startedAt time.Time
}

// NewClock returns a Clock anchored at the current instant.
func NewClock() *Clock {
	return &Clock{startedAt: time.Now()}
}

// NowMs returns elapsed milliseconds since the clock was created.
func (c *Clock) NowMs() int64 {
	return time.Since(c.startedAt).Milliseconds()
}

// StartedAt exposes the anchor instant, used by the logger's GameTime
// formatter to render a human timestamp from an engine-relative ms value.
func (c *Clock) StartedAt() time.Time {
	return c.startedAt
}
