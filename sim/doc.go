// Package sim provides the page-replacement engine behind framesim.
//
// # Reading Guide
//
// Start with these files:
//   - resident_set.go: the bounded, ordered set of resident keys every policy builds on
//   - engine.go: the shared hit/miss/evict algorithm
//   - policy.go and clock.go: victim selection for FIFO, LRU, CLOCK and the arrival-order variant
//   - coordinator.go: fan-out of one access to all four engines and snapshot assembly
//
// # Architecture
//
// The sim package holds the pure, single-threaded engine. Everything that
// touches the outside world lives in sub-packages:
//   - sim/workload/: access-event sources (process sampler, trace replay, synthetic)
//   - sim/dashboard/: websocket broadcast and the static dashboard
//   - sim/telemetry/: Prometheus sink
//   - sim/recorder/: compressed snapshot recording
//   - sim/trace/: eviction decision trace
//   - sim/wire/: the JSON record sinks publish
//
// # Key Interfaces
//
//   - Sink: receives one Snapshot per access
//   - Observer: sees each engine's AccessResult (hit, victim)
//
// The fourth policy is labelled "optimal" on the wire for compatibility with
// the dashboard but evicts in arrival order. SimulateBelady computes the real
// optimum for a recorded sequence.
package sim
