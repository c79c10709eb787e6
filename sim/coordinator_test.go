package sim

import (
	"errors"
	"sync"
	"testing"

	"github.com/framesim/framesim/sim/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectingSink struct {
	snapshots []Snapshot
}

func (c *collectingSink) Deliver(s Snapshot) { c.snapshots = append(c.snapshots, s) }

func TestNewCoordinator_InvalidCapacity(t *testing.T) {
	_, err := NewCoordinator(0, nil)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestCoordinator_OneSnapshotPerAccess(t *testing.T) {
	// GIVEN a coordinator with a collecting sink
	sink := &collectingSink{}
	c, err := NewCoordinator(2, sink)
	require.NoError(t, err)

	// WHEN four accesses are processed
	for _, k := range testutil.Keys("A B A C") {
		require.NoError(t, c.OnAccess(k))
	}

	// THEN exactly four snapshots arrive, numbered and keyed in order
	require.Len(t, sink.snapshots, 4)
	for i, k := range testutil.Keys("A B A C") {
		assert.Equal(t, int64(i+1), sink.snapshots[i].Seq)
		assert.Equal(t, k, sink.snapshots[i].Key)
	}
	last := sink.snapshots[3]
	assert.Equal(t, []string{"C", "B"}, last.For(PolicyFIFO).ResidentKeys)
	assert.Equal(t, []string{"C", "A"}, last.For(PolicyLRU).ResidentKeys)
	assert.Equal(t, []string{"C", "B"}, last.For(PolicyArrivalOrder).ResidentKeys)
	for _, p := range AllPolicies {
		ps := last.For(p)
		assert.Equal(t, int64(1), ps.Hits, p.String())
		assert.Equal(t, int64(3), ps.Misses, p.String())
		assert.Equal(t, 0.25, ps.HitRatio, p.String())
	}
	assert.Equal(t, int64(4), c.Accesses())
}

func TestCoordinator_DispatchOrderIsFixed(t *testing.T) {
	var order []Policy
	obs := ObserverFunc(func(_ int64, p Policy, _ string, _ AccessResult) { order = append(order, p) })
	c, err := NewCoordinator(3, nil, WithObserver(obs))
	require.NoError(t, err)

	require.NoError(t, c.OnAccess("A"))
	require.NoError(t, c.OnAccess("B"))

	want := []Policy{PolicyFIFO, PolicyLRU, PolicyClock, PolicyArrivalOrder, PolicyFIFO, PolicyLRU, PolicyClock, PolicyArrivalOrder}
	assert.Equal(t, want, order)
}

func TestCoordinator_ObserverSeesVictims(t *testing.T) {
	victims := map[Policy][]string{}
	obs := ObserverFunc(func(seq int64, p Policy, key string, r AccessResult) {
		if r.Evicted {
			victims[p] = append(victims[p], r.Victim)
		}
	})
	c, err := NewCoordinator(2, nil, WithObserver(obs))
	require.NoError(t, err)
	for _, k := range testutil.Keys("A B A C") {
		require.NoError(t, c.OnAccess(k))
	}
	assert.Equal(t, []string{"A"}, victims[PolicyFIFO])
	assert.Equal(t, []string{"B"}, victims[PolicyLRU])
	assert.Equal(t, []string{"A"}, victims[PolicyArrivalOrder])
	assert.Len(t, victims[PolicyClock], 1)
}

func TestCoordinator_Independence_IdenticalSnapshots(t *testing.T) {
	// GIVEN two separately constructed coordinators
	a, b := &collectingSink{}, &collectingSink{}
	ca, err := NewCoordinator(4, a)
	require.NoError(t, err)
	cb, err := NewCoordinator(4, b)
	require.NoError(t, err)

	// WHEN the same sequence is fed to both
	for _, k := range testutil.RandomAccesses(99, 400, 10) {
		require.NoError(t, ca.OnAccess(k))
		require.NoError(t, cb.OnAccess(k))
	}

	// THEN every step's snapshot is identical
	assert.Equal(t, a.snapshots, b.snapshots)
}

func TestCoordinator_HitMissConservation(t *testing.T) {
	sink := &collectingSink{}
	c, err := NewCoordinator(3, sink)
	require.NoError(t, err)
	for n, k := range testutil.RandomAccesses(4, 250, 7) {
		require.NoError(t, c.OnAccess(k))
		snap := sink.snapshots[n]
		for _, p := range AllPolicies {
			ps := snap.For(p)
			require.Equal(t, int64(n+1), ps.Accesses())
			require.LessOrEqual(t, len(ps.ResidentKeys), 3)
		}
	}
}

func TestCoordinator_SnapshotsDoNotAlias(t *testing.T) {
	sink := &collectingSink{}
	c, err := NewCoordinator(2, sink)
	require.NoError(t, err)
	require.NoError(t, c.OnAccess("A"))

	sink.snapshots[0].Policies[PolicyLRU].ResidentKeys[0] = "mutated"
	require.NoError(t, c.OnAccess("B"))

	assert.Equal(t, []string{"B", "A"}, sink.snapshots[1].For(PolicyLRU).ResidentKeys)
}

func TestCoordinator_SnapshotBeforeAnyAccess(t *testing.T) {
	c, err := NewCoordinator(2, nil)
	require.NoError(t, err)
	snap := c.Snapshot()
	assert.Equal(t, int64(0), snap.Seq)
	for _, p := range AllPolicies {
		ps := snap.For(p)
		assert.Empty(t, ps.ResidentKeys)
		assert.Zero(t, ps.Hits)
		assert.Zero(t, ps.Misses)
		assert.Zero(t, ps.HitRatio)
	}
}

func TestCoordinator_UnusableAfterEngineFailure(t *testing.T) {
	// GIVEN a coordinator whose CLOCK engine lost the reference bit of a resident key
	sink := &collectingSink{}
	c, err := NewCoordinator(2, sink)
	require.NoError(t, err)
	require.NoError(t, c.OnAccess("A"))
	delete(c.Engine(PolicyClock).repl.(*clockHand).refBits, "A")

	// WHEN A is hit again
	err = c.OnAccess("A")

	// THEN the access fails without a snapshot
	require.True(t, errors.Is(err, ErrInvariantViolation), "got %v", err)
	assert.Len(t, sink.snapshots, 1)

	// AND every later access returns the same error without touching the engines
	err2 := c.OnAccess("B")
	assert.Equal(t, err, err2)
	assert.Len(t, sink.snapshots, 1)
	assert.Equal(t, int64(2), c.Accesses())
	assert.False(t, c.Engine(PolicyFIFO).set.Contains("B"))
}

func TestMultiSink_DeliversToAllInOrder(t *testing.T) {
	var calls []string
	m := MultiSink{
		SinkFunc(func(Snapshot) { calls = append(calls, "first") }),
		SinkFunc(func(Snapshot) { calls = append(calls, "second") }),
	}
	c, err := NewCoordinator(1, m)
	require.NoError(t, err)
	require.NoError(t, c.OnAccess("A"))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestSerializedCoordinator_ConcurrentProducers(t *testing.T) {
	// GIVEN a serialized coordinator fed by eight goroutines
	var delivered int
	c, err := NewCoordinator(4, SinkFunc(func(Snapshot) { delivered++ }))
	require.NoError(t, err)
	sc := NewSerializedCoordinator(c)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			for _, k := range testutil.RandomAccesses(seed, 100, 12) {
				if err := sc.OnAccess(k); err != nil {
					t.Error(err)
					return
				}
				_ = sc.Snapshot()
			}
		}(int64(g))
	}
	wg.Wait()

	// THEN every access was processed exactly once
	assert.Equal(t, 800, delivered)
	snap := sc.Snapshot()
	assert.Equal(t, int64(800), snap.Seq)
	for _, p := range AllPolicies {
		assert.Equal(t, int64(800), snap.For(p).Accesses())
	}
}
