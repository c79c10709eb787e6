// Package wire defines the JSON record observers receive for every access.
// Field names match the browser dashboard: each policy reports its frames
// (resident keys, newest first), hits, misses, faults and hit ratio.
package wire

import "github.com/framesim/framesim/sim"

// Policy is one policy's statistics on the wire.
type Policy struct {
	Frames   []string `json:"frames"`
	Hits     int64    `json:"hits"`
	Misses   int64    `json:"misses"`
	Faults   int64    `json:"faults"` // same as misses; kept for dashboard compatibility
	HitRatio float64  `json:"hitRatio"`
}

// Snapshot is the record pushed to observers after each access.
type Snapshot struct {
	Seq     int64  `json:"seq"`
	Page    string `json:"page"`
	FIFO    Policy `json:"fifo"`
	LRU     Policy `json:"lru"`
	Clock   Policy `json:"clock"`
	Optimal Policy `json:"optimal"`
}

// FromSnapshot converts an engine snapshot into its wire form.
func FromSnapshot(s sim.Snapshot) Snapshot {
	return Snapshot{
		Seq:     s.Seq,
		Page:    s.Key,
		FIFO:    fromStats(s.For(sim.PolicyFIFO)),
		LRU:     fromStats(s.For(sim.PolicyLRU)),
		Clock:   fromStats(s.For(sim.PolicyClock)),
		Optimal: fromStats(s.For(sim.PolicyArrivalOrder)),
	}
}

// ToSnapshot converts a wire record back into an engine snapshot.
func (w Snapshot) ToSnapshot() sim.Snapshot {
	s := sim.Snapshot{Seq: w.Seq, Key: w.Page}
	s.Policies[sim.PolicyFIFO] = w.FIFO.toStats()
	s.Policies[sim.PolicyLRU] = w.LRU.toStats()
	s.Policies[sim.PolicyClock] = w.Clock.toStats()
	s.Policies[sim.PolicyArrivalOrder] = w.Optimal.toStats()
	return s
}

func fromStats(ps sim.PolicyStats) Policy {
	frames := ps.ResidentKeys
	if frames == nil {
		// the dashboard iterates frames; never send null
		frames = []string{}
	}
	return Policy{
		Frames:   frames,
		Hits:     ps.Hits,
		Misses:   ps.Misses,
		Faults:   ps.Misses,
		HitRatio: ps.HitRatio,
	}
}

func (p Policy) toStats() sim.PolicyStats {
	return sim.PolicyStats{
		ResidentKeys: p.Frames,
		Hits:         p.Hits,
		Misses:       p.Misses,
		HitRatio:     p.HitRatio,
	}
}
