package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/haofrank/InferenceMAX/matrix"
)

var (
	testConfigCommon commonFlags

	testConfigKeys []string
	testConfigConc []int
)

// testConfigCmd expands explicitly named config keys without any filtering.
var testConfigCmd = &cobra.Command{
	Use:   "test-config",
	Short: "Generate full sweep for specific config keys. Validates that all specified keys exist before generating",
	Run: func(cmd *cobra.Command, args []string) {
		catalog, _ := loadCatalogs(&testConfigCommon)

		entries, err := matrix.GenerateTestConfigSweep(testConfigKeys, testConfigConc, catalog)
		if err != nil {
			logrus.Fatalf("test-config failed: %v", err)
		}
		emitMatrix(entries, &testConfigCommon)
	},
}

func init() {
	addCommonFlags(testConfigCmd, &testConfigCommon)

	testConfigCmd.Flags().StringSliceVar(&testConfigKeys, "config-keys", nil, "One or more config keys to generate sweep for (e.g., dsr1-fp4-b200-sglang)")
	testConfigCmd.Flags().IntSliceVar(&testConfigConc, "conc", nil, "Only include these concurrency values. Values must exist in the config conc-range/list")
	if err := testConfigCmd.MarkFlagRequired("config-keys"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(testConfigCmd)
}
