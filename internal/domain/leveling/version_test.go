package leveling

import "testing"

// TestOperationVersionLatestWinsRegardlessOfExecutionOrder exercises §8
// invariant 8: for any sequence of captured versions, only the call whose
// captured version matches the current (highest) counter should survive a
// scrambled execution order.
func TestOperationVersionLatestWinsRegardlessOfExecutionOrder(t *testing.T) {
	v := &OperationVersion{}
	v1 := v.Next() // apply
	v2 := v.Next() // remove
	v3 := v.Next() // apply

	// Host executes out of order: v2, v1, v3.
	var applied []uint64
	for _, captured := range []uint64{v2, v1, v3} {
		if v.IsStale(captured) {
			continue
		}
		applied = append(applied, captured)
	}

	if len(applied) != 1 || applied[0] != v3 {
		t.Fatalf("expected only the highest captured version (%d) to survive, got %v", v3, applied)
	}
}

func TestOperationVersionNotStaleWhenUnchanged(t *testing.T) {
	v := &OperationVersion{}
	captured := v.Next()
	if v.IsStale(captured) {
		t.Error("expected the most recently captured version to not be stale")
	}
}
