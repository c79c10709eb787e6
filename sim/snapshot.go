package sim

// PolicyStats is the per-policy part of a Snapshot.
type PolicyStats struct {
	ResidentKeys []string // newest first
	Hits         int64
	Misses       int64
	HitRatio     float64
}

// Accesses returns hits + misses.
func (ps PolicyStats) Accesses() int64 { return ps.Hits + ps.Misses }

// Snapshot is the combined record produced after every access. It owns its
// key slices, so sinks may keep it.
type Snapshot struct {
	Seq      int64  // 1-based number of the access that produced it; 0 before any access
	Key      string // triggering key
	Policies [NumPolicies]PolicyStats
}

// For returns the statistics of one policy.
func (s Snapshot) For(p Policy) PolicyStats { return s.Policies[p] }

// HitRatio returns hits / (hits + misses), or 0 when there were no accesses.
func HitRatio(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
