// Package workload provides the access-event sources that drive the engine:
// a periodic process sampler, access-trace replay and a seeded synthetic
// generator.
package workload

import (
	"context"
	"fmt"
	"time"

	"github.com/framesim/framesim/sim"
)

// Source produces access keys. Run calls emit synchronously, once per access,
// from a single goroutine, and blocks until the source is exhausted or ctx is
// done. Cancellation is a clean stop and returns nil.
type Source interface {
	Run(ctx context.Context, emit func(key string)) error
}

// NewSource builds the source selected by cfg.Kind.
func NewSource(cfg sim.SourceConfig) (Source, error) {
	switch cfg.Kind {
	case "", "process":
		return NewProcessSampler(cfg.Interval, cfg.Filter, nil), nil
	case "replay":
		keys, err := LoadAccessTrace(cfg.Path)
		if err != nil {
			return nil, err
		}
		return NewReplaySource(keys, cfg.Interval), nil
	case "synthetic":
		return NewSyntheticSource(SyntheticConfig{
			Keys:         cfg.Keys,
			Count:        cfg.Count,
			Distribution: cfg.Distribution,
			ZipfS:        cfg.ZipfS,
			Seed:         cfg.Seed,
			Interval:     cfg.Interval,
		})
	default:
		return nil, fmt.Errorf("%w: unknown source kind %q", sim.ErrInvalidConfiguration, cfg.Kind)
	}
}

// wait sleeps for d or until ctx is done. It reports false on cancellation.
// A zero d only checks ctx.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
