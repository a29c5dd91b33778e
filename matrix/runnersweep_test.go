package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRunnerModelSweep_SingleNode_PicksHighestTPPerNode(t *testing.T) {
	catalog := loadCatalogFromYAML(t, singleNodeCatalogYAML)
	runners := loadRunnersFromYAML(t, runnersYAML)

	entries, err := GenerateRunnerModelSweep(RunnerModelSweepOptions{
		RunnerType: "h200",
	}, catalog, runners)
	require.NoError(t, err)

	// One matching config, fanned across all three h200 nodes.
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, runners.Nodes("h200")[i], e.Runner)
		assert.Equal(t, 8, e.Single.TP, "must select the highest-TP point")
		assert.Equal(t, 4, e.Single.Conc, "concurrency defaults to the point's range start")
		assert.Equal(t, 1024, e.ISL)
		assert.Equal(t, 1024, e.OSL)
		assert.Equal(t, 2048, e.MaxModelLen)
		assert.Equal(t, "dsr1_test", e.ExpName)
	}
}

func TestGenerateRunnerModelSweep_ConcOverrideAppliesToAllNodes(t *testing.T) {
	catalog := loadCatalogFromYAML(t, singleNodeCatalogYAML)
	runners := loadRunnersFromYAML(t, runnersYAML)

	entries, err := GenerateRunnerModelSweep(RunnerModelSweepOptions{
		RunnerType: "h200",
		Conc:       intPtr(32),
	}, catalog, runners)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, 32, e.Single.Conc)
	}
}

func TestGenerateRunnerModelSweep_UnknownRunnerTypeIsHardError(t *testing.T) {
	catalog := loadCatalogFromYAML(t, singleNodeCatalogYAML)
	runners := loadRunnersFromYAML(t, runnersYAML)

	_, err := GenerateRunnerModelSweep(RunnerModelSweepOptions{RunnerType: "mi300x"}, catalog, runners)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mi300x")
	assert.Contains(t, err.Error(), "h200")
}

func TestGenerateRunnerModelSweep_NodeFilterWithoutMatchIsHardError(t *testing.T) {
	catalog := loadCatalogFromYAML(t, singleNodeCatalogYAML)
	runners := loadRunnersFromYAML(t, runnersYAML)

	_, err := GenerateRunnerModelSweep(RunnerModelSweepOptions{
		RunnerType:       "h200",
		RunnerNodeFilter: "nosuchnode",
	}, catalog, runners)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nosuchnode")
}

func TestGenerateRunnerModelSweep_NodeFilterRestrictsFanOut(t *testing.T) {
	catalog := loadCatalogFromYAML(t, singleNodeCatalogYAML)
	runners := loadRunnersFromYAML(t, runnersYAML)

	entries, err := GenerateRunnerModelSweep(RunnerModelSweepOptions{
		RunnerType:       "h200",
		RunnerNodeFilter: "amd",
	}, catalog, runners)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "h200-amd-roci-0", entries[0].Runner)
}

func TestGenerateRunnerModelSweep_ConfigWithout1k1kProfileIsSkipped(t *testing.T) {
	catalog := loadCatalogFromYAML(t, singleNodeCatalogYAML)
	runners := loadRunnersFromYAML(t, runnersYAML)

	// The gptoss config only has an 8k1k profile.
	entries, err := GenerateRunnerModelSweep(RunnerModelSweepOptions{RunnerType: "b200"}, catalog, runners)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateRunnerModelSweep_MultiNode_PicksLowestConcurrencyPoint(t *testing.T) {
	yamlText := `
dsr1-fp8-gb200-dynamo:
  image: ghcr.io/infmax/dynamo:latest
  model: deepseek-ai/DeepSeek-R1
  model_prefix: dsr1
  precision: fp8
  framework: dynamo
  runner: gb200
  multinode: true
  seq_len_configs:
    - isl: 1024
      osl: 1024
      search_space:
        - prefill: {num_worker: 4, tp: 8, ep: 8, dp_attention: true}
          decode: {num_worker: 8, tp: 8, ep: 8, dp_attention: true}
          conc_list: [64, 128]
        - prefill: {num_worker: 1, tp: 4, ep: 4, dp_attention: false}
          decode: {num_worker: 2, tp: 4, ep: 4, dp_attention: false}
          conc_list: [4, 16]
`
	catalog := loadCatalogFromYAML(t, yamlText)
	runners := loadRunnersFromYAML(t, runnersYAML)

	entries, err := GenerateRunnerModelSweep(RunnerModelSweepOptions{
		RunnerType: "gb200",
		MultiNode:  true,
	}, catalog, runners)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, e := range entries {
		require.NotNil(t, e.Multi)
		assert.Equal(t, 1, e.Multi.Prefill.NumWorker, "must select the lowest-concurrency point")
		assert.Equal(t, []int{4}, e.Multi.Conc, "concurrency defaults to the minimum of the point's list")
	}
}

func TestGenerateRunnerModelSweep_ModeGateSkipsMismatchedConfigs(t *testing.T) {
	catalog := loadCatalogFromYAML(t, multiNodeCatalogYAML)
	runners := loadRunnersFromYAML(t, runnersYAML)

	entries, err := GenerateRunnerModelSweep(RunnerModelSweepOptions{
		RunnerType: "gb200",
		MultiNode:  false,
	}, catalog, runners)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
