// Package telemetry exports per-policy replacement statistics as Prometheus
// metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/framesim/framesim/sim"
)

const namespace = "framesim"

// Collector is both a sim.Observer (per-access counters) and a sim.Sink
// (gauges refreshed from each snapshot).
type Collector struct {
	accesses  prometheus.Counter
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	evictions *prometheus.CounterVec
	resident  *prometheus.GaugeVec
	hitRatio  *prometheus.GaugeVec
	capacity  prometheus.Gauge
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer, capacity int) (*Collector, error) {
	c := &Collector{
		accesses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accesses_total",
			Help:      "Number of key accesses processed.",
		}),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "policy",
			Name:      "hits_total",
			Help:      "Accesses that found the key resident.",
		}, []string{"policy"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "policy",
			Name:      "misses_total",
			Help:      "Accesses that had to admit the key.",
		}, []string{"policy"}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "policy",
			Name:      "evictions_total",
			Help:      "Keys evicted to make room for an admission.",
		}, []string{"policy"}),
		resident: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "policy",
			Name:      "resident_keys",
			Help:      "Keys currently resident.",
		}, []string{"policy"}),
		hitRatio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "policy",
			Name:      "hit_ratio",
			Help:      "Hits divided by accesses so far.",
		}, []string{"policy"}),
		capacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "capacity_keys",
			Help:      "Configured resident-set capacity shared by all policies.",
		}),
	}
	for _, m := range []prometheus.Collector{c.accesses, c.hits, c.misses, c.evictions, c.resident, c.hitRatio, c.capacity} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	c.capacity.Set(float64(capacity))
	// Pre-create label sets so every policy is exported from the start.
	for _, p := range sim.AllPolicies {
		name := p.String()
		c.hits.WithLabelValues(name)
		c.misses.WithLabelValues(name)
		c.evictions.WithLabelValues(name)
		c.resident.WithLabelValues(name)
		c.hitRatio.WithLabelValues(name)
	}
	return c, nil
}

// Observe implements sim.Observer.
func (c *Collector) Observe(_ int64, policy sim.Policy, _ string, result sim.AccessResult) {
	name := policy.String()
	if result.Hit {
		c.hits.WithLabelValues(name).Inc()
	} else {
		c.misses.WithLabelValues(name).Inc()
	}
	if result.Evicted {
		c.evictions.WithLabelValues(name).Inc()
	}
}

// Deliver implements sim.Sink.
func (c *Collector) Deliver(snapshot sim.Snapshot) {
	c.accesses.Inc()
	for _, p := range sim.AllPolicies {
		stats := snapshot.For(p)
		c.resident.WithLabelValues(p.String()).Set(float64(len(stats.ResidentKeys)))
		c.hitRatio.WithLabelValues(p.String()).Set(stats.HitRatio)
	}
}
