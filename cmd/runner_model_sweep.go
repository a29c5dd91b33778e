package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/haofrank/InferenceMAX/matrix"
)

var (
	runnerSweepCommon commonFlags

	runnerSweepRunnerType  string
	runnerSweepModelPrefix []string
	runnerSweepPrecision   []string
	runnerSweepFramework   []string
	runnerSweepConc        int
	runnerSweepSingleNode  bool
	runnerSweepMultiNode   bool
)

// runnerModelSweepCmd validates that every node of a runner type can run a
// representative benchmark point of each config declared on that type.
var runnerModelSweepCmd = &cobra.Command{
	Use:   "runner-model-sweep",
	Short: "Run one representative benchmark per matching config on every individual runner node of the specified runner type",
	Run: func(cmd *cobra.Command, args []string) {
		catalog, runners := loadCatalogs(&runnerSweepCommon)

		opts := matrix.RunnerModelSweepOptions{
			RunnerType: runnerSweepRunnerType,
			MultiNode:  runnerSweepMultiNode,
			Filter: matrix.SweepFilter{
				ModelPrefixes: runnerSweepModelPrefix,
				Precisions:    runnerSweepPrecision,
				Frameworks:    runnerSweepFramework,
			},
			Conc:             intFlagValue(cmd, "conc", &runnerSweepConc),
			RunnerNodeFilter: runnerSweepCommon.runnerNodeFilter,
		}

		entries, err := matrix.GenerateRunnerModelSweep(opts, catalog, runners)
		if err != nil {
			logrus.Fatalf("runner-model-sweep failed: %v", err)
		}
		emitMatrix(entries, &runnerSweepCommon)
	},
}

func init() {
	addCommonFlags(runnerModelSweepCmd, &runnerSweepCommon)

	runnerModelSweepCmd.Flags().StringVar(&runnerSweepRunnerType, "runner-type", "", "Runner type (e.g., b200-trt, h100)")
	runnerModelSweepCmd.Flags().StringSliceVar(&runnerSweepModelPrefix, "model-prefix", nil, "Model prefix(es) to filter configurations")
	runnerModelSweepCmd.Flags().StringSliceVar(&runnerSweepPrecision, "precision", nil, "Precision(s) to filter by (e.g., fp4, fp8)")
	runnerModelSweepCmd.Flags().StringSliceVar(&runnerSweepFramework, "framework", nil, "Framework(s) to filter by (e.g., vllm, trt, sglang)")
	runnerModelSweepCmd.Flags().IntVar(&runnerSweepConc, "conc", 0, "Override concurrency value for all runs (default: uses lowest concurrency from config)")
	runnerModelSweepCmd.Flags().BoolVar(&runnerSweepSingleNode, "single-node", false, "Generate single-node configurations only")
	runnerModelSweepCmd.Flags().BoolVar(&runnerSweepMultiNode, "multi-node", false, "Generate multi-node configurations only")
	if err := runnerModelSweepCmd.MarkFlagRequired("runner-type"); err != nil {
		panic(err)
	}
	runnerModelSweepCmd.MarkFlagsMutuallyExclusive("single-node", "multi-node")
	runnerModelSweepCmd.MarkFlagsOneRequired("single-node", "multi-node")

	rootCmd.AddCommand(runnerModelSweepCmd)
}
