package sim

import "math"

// SimulateBelady replays a fully known access sequence under Belady's optimal
// policy: on a miss at capacity it evicts the resident key whose next use lies
// furthest in the future. Keys never used again go first; ties are broken by
// oldest arrival. The live Coordinator cannot run this policy because it needs
// the whole future sequence.
func SimulateBelady(keys []string, capacity int) (PolicyStats, error) {
	set, err := NewResidentSet(capacity)
	if err != nil {
		return PolicyStats{}, err
	}

	// nextUse[i] is the position of the next access to keys[i] after i.
	nextUse := make([]int, len(keys))
	seen := make(map[string]int, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if j, ok := seen[keys[i]]; ok {
			nextUse[i] = j
		} else {
			nextUse[i] = math.MaxInt
		}
		seen[keys[i]] = i
	}

	residentNext := make(map[string]int, capacity)
	var hits, misses int64
	for i, key := range keys {
		if set.Contains(key) {
			hits++
			residentNext[key] = nextUse[i]
			continue
		}
		misses++
		if set.Full() {
			victim := furthestNextUse(set, residentNext)
			if err := set.Remove(victim); err != nil {
				return PolicyStats{}, err
			}
			delete(residentNext, victim)
		}
		if err := set.InsertFront(key); err != nil {
			return PolicyStats{}, err
		}
		residentNext[key] = nextUse[i]
	}

	return PolicyStats{
		ResidentKeys: set.Keys(),
		Hits:         hits,
		Misses:       misses,
		HitRatio:     HitRatio(hits, misses),
	}, nil
}

// furthestNextUse scans from the oldest arrival forward so the oldest key wins ties.
func furthestNextUse(set *ResidentSet, residentNext map[string]int) string {
	resident := set.Keys()
	victim := resident[len(resident)-1]
	best := residentNext[victim]
	for i := len(resident) - 2; i >= 0; i-- {
		if n := residentNext[resident[i]]; n > best {
			victim, best = resident[i], n
		}
	}
	return victim
}
