package workload

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/framesim/framesim/sim"
)

// SyntheticConfig parameterizes a generated access stream.
type SyntheticConfig struct {
	Keys         int     // number of distinct keys
	Count        int     // number of accesses
	Distribution string  // "uniform" or "zipf" (default)
	ZipfS        float64 // zipf exponent, > 1
	Seed         int64
	Interval     time.Duration // pacing between accesses in Run
}

// KeySampler draws the popularity rank of the next accessed key.
type KeySampler interface {
	// Sample returns a rank in [0, keys).
	Sample() int
}

// UniformSampler gives every key the same probability.
type UniformSampler struct {
	rng  *rand.Rand
	keys int
}

func (s *UniformSampler) Sample() int { return s.rng.Intn(s.keys) }

// ZipfSampler favours low ranks: rank k is drawn with probability ∝ 1/(k+1)^s.
type ZipfSampler struct {
	zipf *rand.Zipf
	keys int
}

func (s *ZipfSampler) Sample() int {
	rank := int(s.zipf.Uint64())
	if rank >= s.keys {
		return s.keys - 1
	}
	return rank
}

// NewKeySampler creates the sampler for distribution over keys ranks.
func NewKeySampler(rng *rand.Rand, distribution string, keys int, zipfS float64) (KeySampler, error) {
	if keys <= 0 {
		return nil, fmt.Errorf("%w: synthetic keys must be positive, got %d", sim.ErrInvalidConfiguration, keys)
	}
	switch distribution {
	case "uniform":
		return &UniformSampler{rng: rng, keys: keys}, nil
	case "", "zipf":
		z := rand.NewZipf(rng, zipfS, 1, uint64(keys-1))
		if z == nil {
			return nil, fmt.Errorf("%w: zipf_s must be > 1, got %f", sim.ErrInvalidConfiguration, zipfS)
		}
		return &ZipfSampler{zipf: z, keys: keys}, nil
	default:
		return nil, fmt.Errorf("%w: unknown distribution %q", sim.ErrInvalidConfiguration, distribution)
	}
}

// GenerateAccesses returns a deterministic access sequence for cfg.
func GenerateAccesses(cfg SyntheticConfig) ([]string, error) {
	if cfg.Count < 0 {
		return nil, fmt.Errorf("%w: synthetic count must be non-negative, got %d", sim.ErrInvalidConfiguration, cfg.Count)
	}
	streams := sim.NewRandomStreams(cfg.Seed)
	sampler, err := NewKeySampler(streams.Stream(sim.StreamAccess), cfg.Distribution, cfg.Keys, cfg.ZipfS)
	if err != nil {
		return nil, err
	}

	// rank -> key name, shuffled so popularity does not follow the numbering
	names := make([]string, cfg.Keys)
	for rank, id := range streams.Stream(sim.StreamKeyOrder).Perm(cfg.Keys) {
		names[rank] = fmt.Sprintf("page_%d", id)
	}

	keys := make([]string, cfg.Count)
	for i := range keys {
		keys[i] = names[sampler.Sample()]
	}
	return keys, nil
}

// NewSyntheticSource pre-generates the sequence and replays it.
func NewSyntheticSource(cfg SyntheticConfig) (*ReplaySource, error) {
	keys, err := GenerateAccesses(cfg)
	if err != nil {
		return nil, err
	}
	return NewReplaySource(keys, cfg.Interval), nil
}

// Drain runs src to completion and collects every emitted key.
func Drain(ctx context.Context, src Source) ([]string, error) {
	var keys []string
	err := src.Run(ctx, func(key string) { keys = append(keys, key) })
	return keys, err
}
