package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/haofrank/InferenceMAX/matrix/report"
)

// summarizeCmd renders previously produced benchmark result files as sorted
// markdown tables.
var summarizeCmd = &cobra.Command{
	Use:   "summarize <results-dir>",
	Short: "Summarize benchmark result files as markdown tables",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		results, err := report.LoadResults(args[0])
		if err != nil {
			logrus.Fatalf("Failed to load results: %v", err)
		}
		report.WriteSummary(os.Stdout, results)
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}
