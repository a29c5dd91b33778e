package cmd

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/haofrank/InferenceMAX/matrix"
)

var (
	fullSweepCommon commonFlags

	// Optional catalog filters
	fullSweepModelPrefix []string // Model prefix(es) matched against config keys
	fullSweepPrecision   []string // Precision(s), e.g. fp4, fp8
	fullSweepFramework   []string // Framework(s), e.g. vllm, trt, sglang
	fullSweepRunnerType  []string // Runner type(s), e.g. h200, h100
	fullSweepSeqLens     []string // Sequence length short names

	// Expansion controls
	fullSweepStepSize int // Geometric step for concurrency ranges
	fullSweepMinConc  int
	fullSweepMaxConc  int
	fullSweepMaxTP    int
	fullSweepMaxEP    int

	fullSweepSingleNode bool
	fullSweepMultiNode  bool
)

// fullSweepCmd expands the whole catalog, subject to the optional filters.
var fullSweepCmd = &cobra.Command{
	Use:   "full-sweep",
	Short: "Generate full sweep configurations with optional filtering by model, precision, framework, runner type, and sequence lengths",
	Run: func(cmd *cobra.Command, args []string) {
		catalog, runners := loadCatalogs(&fullSweepCommon)

		opts := matrix.FullSweepOptions{
			Filter: matrix.SweepFilter{
				ModelPrefixes: fullSweepModelPrefix,
				Precisions:    fullSweepPrecision,
				Frameworks:    fullSweepFramework,
				RunnerTypes:   fullSweepRunnerType,
				SeqLens:       fullSweepSeqLens,
			},
			MultiNode: fullSweepMultiNode,
			StepSize:  fullSweepStepSize,
			Bounds: matrix.ConcurrencyBounds{
				Min: intFlagValue(cmd, "min-conc", &fullSweepMinConc),
				Max: intFlagValue(cmd, "max-conc", &fullSweepMaxConc),
			},
			MaxTP:            intFlagValue(cmd, "max-tp", &fullSweepMaxTP),
			MaxEP:            intFlagValue(cmd, "max-ep", &fullSweepMaxEP),
			RunnerNodeFilter: fullSweepCommon.runnerNodeFilter,
		}

		entries, err := matrix.GenerateFullSweep(opts, catalog, runners)
		if err != nil {
			logrus.Fatalf("full-sweep failed: %v", err)
		}
		emitMatrix(entries, &fullSweepCommon)
	},
}

func init() {
	addCommonFlags(fullSweepCmd, &fullSweepCommon)

	fullSweepCmd.Flags().StringSliceVar(&fullSweepModelPrefix, "model-prefix", nil, "Model prefix(es) to filter configurations")
	fullSweepCmd.Flags().StringSliceVar(&fullSweepPrecision, "precision", nil, "Precision(s) to filter by (e.g., fp4, fp8)")
	fullSweepCmd.Flags().StringSliceVar(&fullSweepFramework, "framework", nil, "Framework(s) to filter by (e.g., vllm, trt, sglang)")
	fullSweepCmd.Flags().StringSliceVar(&fullSweepRunnerType, "runner-type", nil, "Runner type(s) to filter by (e.g., h200, h100)")
	fullSweepCmd.Flags().StringSliceVar(&fullSweepSeqLens, "seq-lens", nil, "Sequence length configurations to include: "+strings.Join(matrix.SeqLenNames(), ", ")+". If not specified, all sequence lengths are included")
	fullSweepCmd.Flags().IntVar(&fullSweepStepSize, "step-size", 2, "Step size for concurrency values")
	fullSweepCmd.Flags().IntVar(&fullSweepMinConc, "min-conc", 0, "Minimum concurrency value to include (filters out lower concurrency values)")
	fullSweepCmd.Flags().IntVar(&fullSweepMaxConc, "max-conc", 0, "Maximum concurrency value to include (filters out higher concurrency values)")
	fullSweepCmd.Flags().IntVar(&fullSweepMaxTP, "max-tp", 0, "Maximum tensor parallelism value to include (single-node only)")
	fullSweepCmd.Flags().IntVar(&fullSweepMaxEP, "max-ep", 0, "Maximum expert parallelism value to include (single-node only)")
	fullSweepCmd.Flags().BoolVar(&fullSweepSingleNode, "single-node", false, "Only generate single-node configurations")
	fullSweepCmd.Flags().BoolVar(&fullSweepMultiNode, "multi-node", false, "Only generate multi-node configurations")
	fullSweepCmd.MarkFlagsMutuallyExclusive("single-node", "multi-node")
	fullSweepCmd.MarkFlagsOneRequired("single-node", "multi-node")

	rootCmd.AddCommand(fullSweepCmd)
}
