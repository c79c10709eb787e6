package sim

import (
	"hash/fnv"
	"math/rand"
)

// Named random streams used by the synthetic generator.
const (
	// StreamAccess picks the popularity rank of each access. It is seeded
	// with the run seed itself, so a given --seed always yields the same
	// rank sequence.
	StreamAccess = "access"

	// StreamKeyOrder shuffles key names over popularity ranks so the hot
	// keys of a zipf stream are not always page_0, page_1 and so on.
	StreamKeyOrder = "key-order"
)

// RandomStreams derives independent deterministic generators from one seed,
// one per stream name. Drawing from one stream never shifts another.
// Not safe for concurrent use.
type RandomStreams struct {
	seed    int64
	streams map[string]*rand.Rand
}

// NewRandomStreams returns the stream set for seed.
func NewRandomStreams(seed int64) *RandomStreams {
	return &RandomStreams{seed: seed, streams: make(map[string]*rand.Rand)}
}

// Seed returns the seed the streams derive from.
func (r *RandomStreams) Seed() int64 { return r.seed }

// Stream returns the generator for name, creating it on first use.
// StreamAccess uses the seed directly; other names use seed XOR fnv1a(name).
func (r *RandomStreams) Stream(name string) *rand.Rand {
	if rng, ok := r.streams[name]; ok {
		return rng
	}
	seed := r.seed
	if name != StreamAccess {
		seed ^= nameHash(name)
	}
	rng := rand.New(rand.NewSource(seed))
	r.streams[name] = rng
	return rng
}

func nameHash(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}
