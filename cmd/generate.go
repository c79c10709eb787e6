package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/framesim/framesim/sim"
	"github.com/framesim/framesim/sim/workload"
)

var (
	generateOutput string                   // Trace output path
	generateCfg    workload.SyntheticConfig // Generator parameters
)

// generateCmd writes a synthetic access trace for later replay
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a seeded synthetic access trace",
	Run: func(cmd *cobra.Command, args []string) {
		if generateOutput == "" {
			logrus.Fatalf("--output is required")
		}
		n, err := generateTrace(generateCfg, generateOutput)
		if err != nil {
			logrus.Fatalf("Generate failed: %v", err)
		}
		logrus.Infof("Wrote %d accesses to %s", n, generateOutput)
	},
}

// generateTrace writes the sequence for cfg to path and returns its length.
func generateTrace(cfg workload.SyntheticConfig, path string) (int, error) {
	keys, err := workload.GenerateAccesses(cfg)
	if err != nil {
		return 0, err
	}
	if err := workload.ExportAccessTrace(path, keys); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func init() {
	d := sim.DefaultRunConfig().Source

	generateCmd.Flags().StringVar(&generateOutput, "output", "", "Output trace path (.zst compresses)")
	generateCmd.Flags().IntVar(&generateCfg.Keys, "keys", d.Keys, "Distinct keys")
	generateCmd.Flags().IntVar(&generateCfg.Count, "count", d.Count, "Number of accesses")
	generateCmd.Flags().StringVar(&generateCfg.Distribution, "distribution", d.Distribution, "Key distribution (uniform, zipf)")
	generateCmd.Flags().Float64Var(&generateCfg.ZipfS, "zipf-s", d.ZipfS, "Zipf exponent (> 1)")
	generateCmd.Flags().Int64Var(&generateCfg.Seed, "seed", d.Seed, "Generator seed")
}
