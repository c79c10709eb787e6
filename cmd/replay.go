package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/framesim/framesim/sim"
	"github.com/framesim/framesim/sim/recorder"
	"github.com/framesim/framesim/sim/trace"
	"github.com/framesim/framesim/sim/workload"
)

// replayOptions configures an offline comparison over a recorded sequence.
type replayOptions struct {
	input      string // access trace or snapshot recording
	capacity   int
	belady     bool   // add the lookahead-optimal row
	traceLevel string // eviction trace level
	topVictims int
	record     string // snapshot recording path
}

var replayOpts replayOptions

// replayCmd runs a recorded access sequence through every policy without the dashboard
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Compare the policies offline on an access trace or a recording",
	Run: func(cmd *cobra.Command, args []string) {
		if replayOpts.input == "" {
			logrus.Fatalf("--input is required")
		}
		if err := replayTrace(replayOpts, os.Stdout); err != nil {
			logrus.Fatalf("Replay failed: %v", err)
		}
	},
}

// isRecording reports whether path names a snapshot recording rather than
// an access trace.
func isRecording(path string) bool {
	return strings.HasSuffix(strings.TrimSuffix(path, ".zst"), ".jsonl")
}

// loadReplayKeys reads the access sequence from a trace or a recording.
func loadReplayKeys(path string) ([]string, error) {
	if !isRecording(path) {
		return workload.LoadAccessTrace(path)
	}
	records, err := recorder.ReadAll(path)
	if err != nil {
		return nil, err
	}
	return recorder.Keys(records), nil
}

// replayTrace runs opts.input through every policy and prints the report to w.
func replayTrace(opts replayOptions, w io.Writer) error {
	keys, err := loadReplayKeys(opts.input)
	if err != nil {
		return err
	}
	logrus.Infof("Replaying %d accesses from %s with %d frames", len(keys), opts.input, opts.capacity)

	cfg := sim.DefaultRunConfig()
	cfg.Capacity = opts.capacity
	cfg.Source = sim.SourceConfig{Kind: "replay", Path: opts.input}
	cfg.Server.Addr = ""
	cfg.Record.Path = opts.record
	cfg.Trace.Level = opts.traceLevel
	if err := cfg.Validate(); err != nil {
		return err
	}

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	if err := s.run(context.Background(), workload.NewReplaySource(keys, 0)); err != nil {
		return err
	}
	if opts.belady {
		stats, err := sim.SimulateBelady(keys, cfg.Capacity)
		if err != nil {
			return fmt.Errorf("belady: %w", err)
		}
		s.metrics.AddRow(sim.ReportRow{Name: "belady", Stats: stats})
	}
	s.report(w, opts.topVictims)
	return nil
}

func init() {
	replayCmd.Flags().StringVar(&replayOpts.input, "input", "", "Access trace (lines or CSV with a key column) or snapshot recording (.jsonl[.zst])")
	replayCmd.Flags().IntVar(&replayOpts.capacity, "capacity", sim.DefaultRunConfig().Capacity, "Number of frames (resident keys) per policy")
	replayCmd.Flags().BoolVar(&replayOpts.belady, "belady", false, "Add a row for Belady's lookahead-optimal policy")
	replayCmd.Flags().StringVar(&replayOpts.traceLevel, "trace-level", string(trace.TraceLevelNone), "Eviction trace level (none, evictions)")
	replayCmd.Flags().IntVar(&replayOpts.topVictims, "top-victims", 5, "Most-evicted keys listed in the trace summary")
	replayCmd.Flags().StringVar(&replayOpts.record, "record", "", "Record every snapshot as JSON lines (.zst compresses)")
}
