package sim

import (
	"errors"
	"fmt"
	"testing"

	"github.com/framesim/framesim/sim/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine_InvalidConfiguration(t *testing.T) {
	_, err := NewEngine(PolicyLRU, 0)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	_, err = NewEngine(Policy(9), 4)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestEngine_FIFO_EvictsFirstAdmittedDespiteRepeatedHits(t *testing.T) {
	// GIVEN a FIFO engine of capacity 4 filled with A..D, then B, C, D re-accessed
	e := newTestEngine(t, PolicyFIFO, 4)
	results := accessAll(t, e, testutil.Keys("A B C D B C D"))
	for _, r := range results[4:] {
		assert.True(t, r.Hit)
	}

	// WHEN E is admitted
	r, err := e.Access("E")
	require.NoError(t, err)

	// THEN A, the first admitted, is the victim; hits never reordered anything
	assert.Equal(t, AccessResult{Evicted: true, Victim: "A"}, r)
	assert.Equal(t, []string{"E", "D", "C", "B"}, e.Stats().ResidentKeys)
}

func TestEngine_LRU_EvictsLeastRecentlyUsed(t *testing.T) {
	// GIVEN capacity 2 and accesses A B A
	e := newTestEngine(t, PolicyLRU, 2)
	accessAll(t, e, testutil.Keys("A B A"))

	// WHEN C is admitted
	r, err := e.Access("C")
	require.NoError(t, err)

	// THEN B is evicted because A was refreshed
	assert.Equal(t, "B", r.Victim)
	assert.Equal(t, []string{"C", "A"}, e.Stats().ResidentKeys)
}

func TestEngine_ArrivalOrderMatchesFIFO(t *testing.T) {
	// The "optimal" label evicts in arrival order; it must track FIFO exactly.
	keys := testutil.RandomAccesses(11, 500, 9)
	for capacity := 1; capacity <= 6; capacity++ {
		fifo := newTestEngine(t, PolicyFIFO, capacity)
		arrival := newTestEngine(t, PolicyArrivalOrder, capacity)
		for _, k := range keys {
			rf, err := fifo.Access(k)
			require.NoError(t, err)
			ra, err := arrival.Access(k)
			require.NoError(t, err)
			require.Equal(t, rf, ra)
		}
		assert.Equal(t, fifo.Stats(), arrival.Stats(), "capacity %d", capacity)
	}
}

func TestEngine_Properties_RandomStreams(t *testing.T) {
	// Capacity bound, invariants and hit/miss conservation after every access.
	for _, p := range AllPolicies {
		for capacity := 1; capacity <= 5; capacity++ {
			for seed := int64(1); seed <= 3; seed++ {
				t.Run(fmt.Sprintf("%s/cap%d/seed%d", p, capacity, seed), func(t *testing.T) {
					e := newTestEngine(t, p, capacity)
					keys := testutil.RandomAccesses(seed, 300, capacity+3)
					for n, k := range keys {
						r, err := e.Access(k)
						require.NoError(t, err)
						assertEngineConsistent(t, e)

						stats := e.Stats()
						require.LessOrEqual(t, len(stats.ResidentKeys), capacity)
						require.Equal(t, int64(n+1), stats.Hits+stats.Misses)
						require.Contains(t, stats.ResidentKeys, k, "accessed key must be resident afterwards")
						if r.Hit {
							require.False(t, r.Evicted, "a hit never evicts")
						}
						if r.Evicted {
							require.NotContains(t, stats.ResidentKeys, r.Victim)
							require.Len(t, stats.ResidentKeys, capacity)
						}
					}
				})
			}
		}
	}
}

func TestEngine_HitRatio_ExactRational(t *testing.T) {
	for _, p := range AllPolicies {
		e := newTestEngine(t, p, 3)
		// no accesses yet
		assert.Equal(t, 0.0, e.Stats().HitRatio)

		for _, k := range testutil.RandomAccesses(5, 200, 6) {
			_, err := e.Access(k)
			require.NoError(t, err)
			s := e.Stats()
			require.Equal(t, float64(s.Hits)/float64(s.Hits+s.Misses), s.HitRatio)
			require.GreaterOrEqual(t, s.HitRatio, 0.0)
			require.LessOrEqual(t, s.HitRatio, 1.0)
		}
	}
}

func TestHitRatio(t *testing.T) {
	tests := []struct {
		hits, misses int64
		want         float64
	}{
		{0, 0, 0},
		{0, 5, 0},
		{5, 0, 1},
		{1, 3, 0.25},
		{2, 1, 2.0 / 3.0},
	}
	for _, tt := range tests {
		if got := HitRatio(tt.hits, tt.misses); got != tt.want {
			t.Errorf("HitRatio(%d, %d) = %v, want %v", tt.hits, tt.misses, got, tt.want)
		}
	}
}

func TestEngine_IdempotentHits(t *testing.T) {
	for _, p := range AllPolicies {
		t.Run(p.String(), func(t *testing.T) {
			// GIVEN a full engine
			e := newTestEngine(t, p, 3)
			accessAll(t, e, testutil.Keys("A B C"))
			before := e.Stats()

			// WHEN the same resident key is accessed many times
			results := accessAll(t, e, testutil.Keys("B B B B B B B B B B"))

			// THEN membership is unchanged, only hits grow
			after := e.Stats()
			assert.ElementsMatch(t, before.ResidentKeys, after.ResidentKeys)
			assert.Equal(t, before.Misses, after.Misses)
			assert.Equal(t, before.Hits+10, after.Hits)
			for _, r := range results {
				assert.Equal(t, AccessResult{Hit: true}, r)
			}
		})
	}
}

func TestEngine_EmptyKeyIsAccepted(t *testing.T) {
	e := newTestEngine(t, PolicyClock, 2)
	accessAll(t, e, []string{"", "", "x"})
	s := e.Stats()
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(2), s.Misses)
	assert.Equal(t, []string{"x", ""}, s.ResidentKeys)
}

func TestEngine_Stats_ReturnsCopy(t *testing.T) {
	e := newTestEngine(t, PolicyLRU, 2)
	accessAll(t, e, testutil.Keys("A B"))
	s := e.Stats()
	s.ResidentKeys[0] = "mutated"
	assert.Equal(t, []string{"B", "A"}, e.Stats().ResidentKeys)
}

func TestEngine_TextbookFaultCounts(t *testing.T) {
	// Classic reference string with 3 frames: FIFO 15 faults, LRU 12 faults.
	keys := testutil.Keys("7 0 1 2 0 3 0 4 2 3 0 3 2 1 2 0 1 7 0 1")
	tests := []struct {
		policy Policy
		misses int64
	}{
		{PolicyFIFO, 15},
		{PolicyLRU, 12},
		{PolicyArrivalOrder, 15},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			e := newTestEngine(t, tt.policy, 3)
			accessAll(t, e, keys)
			s := e.Stats()
			assert.Equal(t, tt.misses, s.Misses)
			assert.Equal(t, int64(len(keys))-tt.misses, s.Hits)
		})
	}
}
