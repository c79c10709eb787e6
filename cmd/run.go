package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/framesim/framesim/sim"
	"github.com/framesim/framesim/sim/workload"
)

// runFlags holds the `run` command line. Flags the user sets explicitly
// override values loaded from --config.
type runFlags struct {
	configPath   string        // YAML run config
	capacity     int           // Frames shared by all policies
	source       string        // Event source kind
	interval     time.Duration // Sampling period / replay pacing
	filter       string        // Process name substring filter
	input        string        // Access trace for the replay source
	keys         int           // Distinct synthetic keys
	count        int           // Synthetic access count
	distribution string        // Synthetic key distribution
	zipfS        float64       // Zipf exponent
	seed         int64         // Synthetic seed
	addr         string        // Dashboard listen address, empty disables it
	record       string        // Snapshot recording path
	traceLevel   string        // Eviction trace level
	topVictims   int           // Most-evicted keys to list in the trace summary
}

var runOpts runFlags

// runCmd drives live (or replayed) accesses through all policies and serves the dashboard
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run all replacement policies on an access stream and serve the dashboard",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := runOpts.resolve(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logrus.Infof("Starting %s source with %d frames", sourceKindName(cfg.Source.Kind), cfg.Capacity)
		if err := runLive(ctx, cfg, runOpts.topVictims, os.Stdout); err != nil {
			logrus.Fatalf("Run failed: %v", err)
		}
	},
}

func addRunFlags(fs *pflag.FlagSet, f *runFlags) {
	d := sim.DefaultRunConfig()

	fs.StringVar(&f.configPath, "config", "", "Path to a YAML run config; explicit flags override it")
	fs.IntVar(&f.capacity, "capacity", d.Capacity, "Number of frames (resident keys) per policy")

	// Event source
	fs.StringVar(&f.source, "source", d.Source.Kind, "Event source (process, replay, synthetic)")
	fs.DurationVar(&f.interval, "interval", d.Source.Interval, "Process sampling period, or pacing between replayed accesses")
	fs.StringVar(&f.filter, "filter", d.Source.Filter, "Only sample processes whose name contains this (case-insensitive)")
	fs.StringVar(&f.input, "input", d.Source.Path, "Access trace file for the replay source")
	fs.IntVar(&f.keys, "keys", d.Source.Keys, "Distinct keys for the synthetic source")
	fs.IntVar(&f.count, "count", d.Source.Count, "Accesses generated by the synthetic source")
	fs.StringVar(&f.distribution, "distribution", d.Source.Distribution, "Synthetic key distribution (uniform, zipf)")
	fs.Float64Var(&f.zipfS, "zipf-s", d.Source.ZipfS, "Zipf exponent for the synthetic source (> 1)")
	fs.Int64Var(&f.seed, "seed", d.Source.Seed, "Seed for the synthetic source")

	// Outputs
	fs.StringVar(&f.addr, "addr", d.Server.Addr, "Dashboard listen address (empty disables the dashboard)")
	fs.StringVar(&f.record, "record", d.Record.Path, "Record every snapshot as JSON lines (.zst compresses)")
	fs.StringVar(&f.traceLevel, "trace-level", d.Trace.Level, "Eviction trace level (none, evictions)")
	fs.IntVar(&f.topVictims, "top-victims", 5, "Most-evicted keys listed in the trace summary")
}

// resolve builds the run config: defaults, then --config, then flags the
// user set explicitly.
func (f *runFlags) resolve(fs *pflag.FlagSet) (sim.RunConfig, error) {
	cfg := sim.DefaultRunConfig()
	if f.configPath != "" {
		loaded, err := sim.LoadRunConfig(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	if fs.Changed("capacity") {
		cfg.Capacity = f.capacity
	}
	if fs.Changed("source") {
		cfg.Source.Kind = f.source
	}
	if fs.Changed("interval") {
		cfg.Source.Interval = f.interval
	}
	if fs.Changed("filter") {
		cfg.Source.Filter = f.filter
	}
	if fs.Changed("input") {
		cfg.Source.Path = f.input
	}
	if fs.Changed("keys") {
		cfg.Source.Keys = f.keys
	}
	if fs.Changed("count") {
		cfg.Source.Count = f.count
	}
	if fs.Changed("distribution") {
		cfg.Source.Distribution = f.distribution
	}
	if fs.Changed("zipf-s") {
		cfg.Source.ZipfS = f.zipfS
	}
	if fs.Changed("seed") {
		cfg.Source.Seed = f.seed
	}
	if fs.Changed("addr") {
		cfg.Server.Addr = f.addr
	}
	if fs.Changed("record") {
		cfg.Record.Path = f.record
	}
	if fs.Changed("trace-level") {
		cfg.Trace.Level = f.traceLevel
	}
	return cfg, cfg.Validate()
}

// runLive runs one session from cfg's source and prints the report to w.
func runLive(ctx context.Context, cfg sim.RunConfig, topVictims int, w io.Writer) error {
	src, err := workload.NewSource(cfg.Source)
	if err != nil {
		return err
	}
	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	if err := s.run(ctx, src); err != nil {
		return err
	}
	s.report(w, topVictims)
	return nil
}

func sourceKindName(kind string) string {
	if kind == "" {
		return "process"
	}
	return kind
}

func init() {
	addRunFlags(runCmd.Flags(), &runOpts)
}
