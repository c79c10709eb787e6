package sim

import "fmt"

// AccessResult describes what one engine did with one access.
type AccessResult struct {
	Hit     bool   // key was resident
	Evicted bool   // a victim was removed to make room
	Victim  string // evicted key; meaningful only when Evicted
}

// Engine runs one replacement policy over an access stream.
// Counters only grow; an Engine is never reset.
//
// Thread-safety: NOT thread-safe. Callers serialize Access.
type Engine struct {
	policy Policy
	set    *ResidentSet
	repl   replacement
	hits   int64
	misses int64
}

// NewEngine creates an Engine for policy with a fixed capacity.
func NewEngine(policy Policy, capacity int) (*Engine, error) {
	set, err := NewResidentSet(capacity)
	if err != nil {
		return nil, err
	}
	repl, err := newReplacement(policy)
	if err != nil {
		return nil, err
	}
	return &Engine{policy: policy, set: set, repl: repl}, nil
}

// Policy returns the variant this engine runs.
func (e *Engine) Policy() Policy { return e.policy }

// Capacity returns the resident-set bound.
func (e *Engine) Capacity() int { return e.set.Capacity() }

// Access processes one access to key. A hit never evicts; a miss at
// capacity evicts exactly one victim before key is admitted.
func (e *Engine) Access(key string) (AccessResult, error) {
	if e.set.Contains(key) {
		e.hits++
		if err := e.repl.onHit(e.set, key); err != nil {
			return AccessResult{}, fmt.Errorf("%s hit on %q: %w", e.policy, key, err)
		}
		return AccessResult{Hit: true}, nil
	}

	e.misses++
	var result AccessResult
	if e.set.Full() {
		victim, err := e.repl.victim(e.set)
		if err != nil {
			return AccessResult{}, fmt.Errorf("%s victim selection: %w", e.policy, err)
		}
		if err := e.set.Remove(victim); err != nil {
			return AccessResult{}, fmt.Errorf("%s evicting %q: %w", e.policy, victim, err)
		}
		e.repl.onEvict(victim)
		result = AccessResult{Evicted: true, Victim: victim}
	}
	if err := e.set.InsertFront(key); err != nil {
		return AccessResult{}, fmt.Errorf("%s admitting %q: %w", e.policy, key, err)
	}
	e.repl.onAdmit(e.set, key)
	return result, nil
}

// Stats returns the current cumulative statistics. The returned key slice is
// a copy owned by the caller.
func (e *Engine) Stats() PolicyStats {
	return PolicyStats{
		ResidentKeys: e.set.Keys(),
		Hits:         e.hits,
		Misses:       e.misses,
		HitRatio:     HitRatio(e.hits, e.misses),
	}
}
