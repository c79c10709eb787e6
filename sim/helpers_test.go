package sim

import (
	"math/rand"
	"testing"
)

// assertResidentSetConsistent checks the order/membership mirror and the
// capacity bound.
func assertResidentSetConsistent(t *testing.T, rs *ResidentSet) {
	t.Helper()
	keys := rs.Keys()
	if len(keys) != rs.Len() {
		t.Fatalf("order has %d keys but members has %d", len(keys), rs.Len())
	}
	if rs.Len() > rs.Capacity() {
		t.Fatalf("resident set holds %d keys, capacity %d", rs.Len(), rs.Capacity())
	}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			t.Fatalf("key %q appears twice in order %v", k, keys)
		}
		seen[k] = true
		idx, ok := rs.index(k)
		if !ok {
			t.Fatalf("key %q in order but not in members", k)
		}
		if rs.keyAt(idx) != k {
			t.Fatalf("members maps %q to node holding %q", k, rs.keyAt(idx))
		}
	}
	if oldest, ok := rs.Oldest(); ok != (len(keys) > 0) || (ok && oldest != keys[len(keys)-1]) {
		t.Fatalf("Oldest() = %q,%v but order is %v", oldest, ok, keys)
	}
}

// assertEngineConsistent adds the CLOCK invariants on top of the set ones.
func assertEngineConsistent(t *testing.T, e *Engine) {
	t.Helper()
	assertResidentSetConsistent(t, e.set)
	c, ok := e.repl.(*clockHand)
	if !ok {
		return
	}
	if len(c.refBits) != e.set.Len() {
		t.Fatalf("clock has %d reference bits for %d residents", len(c.refBits), e.set.Len())
	}
	for k := range c.refBits {
		if !e.set.Contains(k) {
			t.Fatalf("reference bit for non-resident %q", k)
		}
	}
	if e.set.Len() == 0 {
		if c.hand != noNode {
			t.Fatalf("empty clock has hand %d", c.hand)
		}
		return
	}
	if c.hand == noNode {
		t.Fatalf("non-empty clock has no hand")
	}
	if !e.set.Contains(e.set.keyAt(c.hand)) {
		t.Fatalf("clock hand on non-resident slot %d", c.hand)
	}
}

func newTestEngine(t *testing.T, p Policy, capacity int) *Engine {
	t.Helper()
	e, err := NewEngine(p, capacity)
	if err != nil {
		t.Fatalf("NewEngine(%s, %d): %v", p, capacity, err)
	}
	return e
}

// accessAll feeds keys and returns the per-access results.
func accessAll(t *testing.T, e *Engine, keys []string) []AccessResult {
	t.Helper()
	results := make([]AccessResult, 0, len(keys))
	for _, k := range keys {
		r, err := e.Access(k)
		if err != nil {
			t.Fatalf("Access(%q): %v", k, err)
		}
		assertEngineConsistent(t, e)
		results = append(results, r)
	}
	return results
}

func handKey(t *testing.T, e *Engine) string {
	t.Helper()
	c := e.repl.(*clockHand)
	if c.hand == noNode {
		t.Fatal("clock hand unset")
	}
	return e.set.keyAt(c.hand)
}

func newRandForTest(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
