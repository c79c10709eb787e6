package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/framesim/framesim/sim"
	"github.com/framesim/framesim/sim/dashboard"
	"github.com/framesim/framesim/sim/recorder"
	"github.com/framesim/framesim/sim/telemetry"
	"github.com/framesim/framesim/sim/trace"
	"github.com/framesim/framesim/sim/workload"
)

// keyBuffer decouples the source from the dispatch goroutine.
const keyBuffer = 256

// session wires one coordinator to every sink and observer of a run.
type session struct {
	cfg      sim.RunConfig
	coord    *sim.SerializedCoordinator
	metrics  *sim.Metrics
	trace    *trace.SimulationTrace
	hub      *dashboard.Hub
	registry *prometheus.Registry
	recorder *recorder.Recorder
}

func newSession(cfg sim.RunConfig) (*session, error) {
	s := &session{
		cfg:      cfg,
		metrics:  sim.NewMetrics(cfg.Capacity),
		trace:    trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(cfg.Trace.Level)}),
		hub:      dashboard.NewHub(dashboard.DefaultQueueSize),
		registry: prometheus.NewRegistry(),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	col, err := telemetry.NewCollector(s.registry, cfg.Capacity)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	sinks := sim.MultiSink{s.metrics, col, s.hub}
	if cfg.Record.Path != "" {
		if s.recorder, err = recorder.Create(cfg.Record.Path); err != nil {
			return nil, err
		}
		sinks = append(sinks, s.recorder)
	}

	c, err := sim.NewCoordinator(cfg.Capacity, sinks,
		sim.WithObserver(s.metrics),
		sim.WithObserver(col),
		sim.WithObserver(evictionTracer(s.trace)),
	)
	if err != nil {
		if s.recorder != nil {
			_ = s.recorder.Close()
		}
		return nil, err
	}
	s.coord = sim.NewSerializedCoordinator(c)
	return s, nil
}

// evictionTracer logs every eviction at debug level and records it when
// the trace is enabled.
func evictionTracer(st *trace.SimulationTrace) sim.Observer {
	return sim.ObserverFunc(func(seq int64, policy sim.Policy, key string, result sim.AccessResult) {
		if !result.Evicted {
			return
		}
		logrus.Debugf("[%06d] %-7s evicted %q for %q", seq, policy, result.Victim, key)
		if st.Enabled() {
			st.RecordEviction(trace.EvictionRecord{Seq: seq, Policy: policy.String(), Key: key, Victim: result.Victim})
		}
	})
}

// run drives src through the coordinator until the source is exhausted
// (or, with the dashboard enabled, until ctx is done). A single goroutine
// calls OnAccess; the dashboard reads snapshots through the same lock.
func (s *session) run(ctx context.Context, src workload.Source) error {
	g, gctx := errgroup.WithContext(ctx)
	keys := make(chan string, keyBuffer)

	g.Go(func() error {
		defer close(keys)
		return src.Run(gctx, func(key string) {
			select {
			case keys <- key:
			case <-gctx.Done():
			}
		})
	})

	g.Go(func() error {
		for key := range keys {
			if err := s.coord.OnAccess(key); err != nil {
				return err
			}
		}
		if s.cfg.Server.Addr != "" && gctx.Err() == nil {
			logrus.Info("Source exhausted; dashboard keeps serving until interrupted")
		}
		return nil
	})

	if addr := s.cfg.Server.Addr; addr != "" {
		srv := dashboard.NewServer(s.hub, s.coord.Snapshot, s.registry)
		g.Go(func() error {
			return srv.ListenAndServe(gctx, addr)
		})
	}

	err := g.Wait()
	if s.recorder != nil {
		if cerr := s.recorder.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing recording: %w", cerr))
		}
	}
	return err
}

// report prints the metrics table and, when tracing, the eviction summary.
func (s *session) report(w io.Writer, topVictims int) {
	s.metrics.Print(w)
	if !s.trace.Enabled() {
		return
	}
	summary := trace.Summarize(s.trace)
	fmt.Fprintln(w, "=== Eviction Trace ===")
	fmt.Fprintf(w, "Evictions            : %d\n", summary.TotalEvictions)
	for _, p := range sim.AllPolicies {
		fmt.Fprintf(w, "  %-19s: %d\n", p, summary.PerPolicy[p.String()])
	}
	fmt.Fprintf(w, "Unique Victims       : %d\n", summary.UniqueVictims)
	fmt.Fprintf(w, "Divergent Decisions  : %d\n", summary.Divergent)
	if topVictims <= 0 {
		return
	}
	fmt.Fprintln(w, "Most Evicted:")
	for _, key := range summary.TopVictims(topVictims) {
		fmt.Fprintf(w, "  %-19s: %d\n", key, summary.VictimDistribution[key])
	}
}
