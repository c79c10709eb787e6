package sim

import (
	"fmt"
	"sync"
)

// Coordinator owns one Engine per policy and feeds every access to all of
// them in lock-step: FIFO, LRU, CLOCK, then the arrival-order variant. After
// the four updates it hands exactly one Snapshot to its Sink.
//
// Thread-safety: NOT thread-safe; OnAccess is non-reentrant. Wrap it in a
// SerializedCoordinator when several goroutines produce accesses.
type Coordinator struct {
	engines   [NumPolicies]*Engine
	sink      Sink
	observers []Observer
	seq       int64
	lastKey   string
	err       error // first engine failure; the coordinator is unusable after it
}

// CoordinatorOption configures optional Coordinator behavior.
type CoordinatorOption func(*Coordinator)

// WithObserver registers an Observer for per-policy access outcomes.
func WithObserver(o Observer) CoordinatorOption {
	return func(c *Coordinator) { c.observers = append(c.observers, o) }
}

// NewCoordinator builds the four engines with a shared capacity. A nil sink
// discards snapshots.
func NewCoordinator(capacity int, sink Sink, opts ...CoordinatorOption) (*Coordinator, error) {
	if sink == nil {
		sink = DiscardSink
	}
	c := &Coordinator{sink: sink}
	for _, p := range AllPolicies {
		e, err := NewEngine(p, capacity)
		if err != nil {
			return nil, err
		}
		c.engines[p] = e
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Capacity returns the capacity shared by all engines.
func (c *Coordinator) Capacity() int { return c.engines[PolicyFIFO].Capacity() }

// Accesses returns the number of accesses processed so far.
func (c *Coordinator) Accesses() int64 { return c.seq }

// Engine returns the engine running policy p.
func (c *Coordinator) Engine(p Policy) *Engine { return c.engines[p] }

// OnAccess processes one access and delivers the resulting Snapshot.
// An error means an engine invariant broke. The engines that already ran
// have applied the access, no snapshot is delivered, and the coordinator is
// unusable afterwards: every later call returns the same error.
func (c *Coordinator) OnAccess(key string) error {
	if c.err != nil {
		return c.err
	}
	c.seq++
	c.lastKey = key
	for _, e := range c.engines {
		result, err := e.Access(key)
		if err != nil {
			c.err = fmt.Errorf("access %d: %w", c.seq, err)
			return c.err
		}
		for _, o := range c.observers {
			o.Observe(c.seq, e.Policy(), key, result)
		}
	}
	c.sink.Deliver(c.Snapshot())
	return nil
}

// Snapshot assembles the current state without processing an access.
func (c *Coordinator) Snapshot() Snapshot {
	snap := Snapshot{Seq: c.seq, Key: c.lastKey}
	for i, e := range c.engines {
		snap.Policies[i] = e.Stats()
	}
	return snap
}

// SerializedCoordinator guards a Coordinator with a mutex so that concurrent
// producers and readers see whole accesses only.
type SerializedCoordinator struct {
	mu sync.Mutex
	c  *Coordinator
}

// NewSerializedCoordinator wraps c.
func NewSerializedCoordinator(c *Coordinator) *SerializedCoordinator {
	return &SerializedCoordinator{c: c}
}

// OnAccess processes one access under the lock, sink delivery included.
func (s *SerializedCoordinator) OnAccess(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.OnAccess(key)
}

// Snapshot returns the current state under the lock.
func (s *SerializedCoordinator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Snapshot()
}
