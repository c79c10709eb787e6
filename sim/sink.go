package sim

// Sink receives one Snapshot per access. Delivery has no error return:
// transport failures belong to the sink and must never reach the engine.
type Sink interface {
	Deliver(snapshot Snapshot)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Snapshot)

// Deliver calls f(snapshot).
func (f SinkFunc) Deliver(snapshot Snapshot) { f(snapshot) }

// MultiSink delivers every snapshot to each sink in order.
type MultiSink []Sink

// Deliver forwards snapshot to all sinks.
func (m MultiSink) Deliver(snapshot Snapshot) {
	for _, s := range m {
		s.Deliver(snapshot)
	}
}

// DiscardSink drops every snapshot.
var DiscardSink Sink = SinkFunc(func(Snapshot) {})

// Observer sees the per-policy outcome of every access before the snapshot is
// assembled. Used for eviction tracing and eviction counters.
type Observer interface {
	Observe(seq int64, policy Policy, key string, result AccessResult)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(seq int64, policy Policy, key string, result AccessResult)

// Observe calls f.
func (f ObserverFunc) Observe(seq int64, policy Policy, key string, result AccessResult) {
	f(seq, policy, key, result)
}
