package trace

import "sort"

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvictions     int
	PerPolicy          map[string]int // policy -> evictions
	UniqueVictims      int
	VictimDistribution map[string]int // victim key -> times evicted, all policies
	// Divergent counts accesses where the policies did not all pick the same victim.
	Divergent int
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		PerPolicy:          make(map[string]int),
		VictimDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalEvictions = len(st.Evictions)
	victimsBySeq := make(map[int64]map[string]bool)
	for _, r := range st.Evictions {
		summary.PerPolicy[r.Policy]++
		summary.VictimDistribution[r.Victim]++
		if victimsBySeq[r.Seq] == nil {
			victimsBySeq[r.Seq] = make(map[string]bool)
		}
		victimsBySeq[r.Seq][r.Victim] = true
	}
	for _, victims := range victimsBySeq {
		if len(victims) > 1 {
			summary.Divergent++
		}
	}
	summary.UniqueVictims = len(summary.VictimDistribution)

	return summary
}

// TopVictims returns up to k victim keys ordered by eviction count, descending,
// ties broken by key.
func (s *TraceSummary) TopVictims(k int) []string {
	keys := make([]string, 0, len(s.VictimDistribution))
	for key := range s.VictimDistribution {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := s.VictimDistribution[keys[i]], s.VictimDistribution[keys[j]]
		if ci != cj {
			return ci > cj
		}
		return keys[i] < keys[j]
	})
	if k < len(keys) {
		keys = keys[:k]
	}
	return keys
}
