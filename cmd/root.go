package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/haofrank/InferenceMAX/matrix"
)

var logLevel string // Log verbosity level

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "infmax-matrix",
	Short: "Generate benchmark matrix configurations from YAML config files",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// commonFlags are shared by every matrix-generating subcommand.
type commonFlags struct {
	configFiles      []string
	runnerConfig     string
	runEvals         bool
	evalsOnly        bool
	runnerNodeFilter string
}

// addCommonFlags registers the shared flags on a subcommand.
func addCommonFlags(cmd *cobra.Command, f *commonFlags) {
	cmd.Flags().StringSliceVar(&f.configFiles, "config-files", nil, "One or more configuration files (YAML format)")
	cmd.Flags().StringVar(&f.runnerConfig, "runner-config", ".github/configs/runners.yaml", "Configuration file holding runner information (YAML format)")
	cmd.Flags().BoolVar(&f.runEvals, "run-evals", false, "Run evals on a subset of configs (in addition to all configs)")
	cmd.Flags().BoolVar(&f.evalsOnly, "evals-only", false, "Run ONLY the eval subset (excludes non-eval configs)")
	cmd.Flags().StringVar(&f.runnerNodeFilter, "runner-node-filter", "", "Filter runner nodes by substring match (e.g., \"amd\"). Expands each config to individual matching nodes")
	if err := cmd.MarkFlagRequired("config-files"); err != nil {
		panic(err)
	}
	cmd.MarkFlagsMutuallyExclusive("run-evals", "evals-only")
}

// loadCatalogs reads the sweep configuration files and the runner inventory.
func loadCatalogs(f *commonFlags) (*matrix.Catalog, *matrix.RunnerCatalog) {
	catalog, err := matrix.LoadConfigFiles(f.configFiles)
	if err != nil {
		logrus.Fatalf("Failed to load config files: %v", err)
	}
	runners, err := matrix.LoadRunnerFile(f.runnerConfig)
	if err != nil {
		logrus.Fatalf("Failed to load runner config: %v", err)
	}
	return catalog, runners
}

// emitMatrix applies the eval options and writes the final matrix as a
// single JSON array to stdout.
func emitMatrix(entries []*matrix.MatrixEntry, f *commonFlags) {
	if f.runEvals || f.evalsOnly {
		matrix.MarkEvalEntries(entries)
		if f.evalsOnly {
			entries = matrix.FilterEvalOnly(entries)
		}
	}
	out, err := json.Marshal(entries)
	if err != nil {
		logrus.Fatalf("Failed to serialize matrix: %v", err)
	}
	fmt.Println(string(out))
}

// intFlagValue returns a pointer to the flag's value when it was set on the
// command line, nil otherwise. Clamp bounds distinguish "absent" from zero.
func intFlagValue(cmd *cobra.Command, name string, value *int) *int {
	if cmd.Flags().Changed(name) {
		return value
	}
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
}
