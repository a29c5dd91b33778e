package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTestConfigSweep_MissingKeyAbortsNamingAllAvailableKeys(t *testing.T) {
	catalog := loadCatalogFromYAML(t, singleNodeCatalogYAML)

	_, err := GenerateTestConfigSweep([]string{"dsr1-fp8-h200-vllm", "no-such-key"}, nil, catalog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-key")
	assert.Contains(t, err.Error(), "dsr1-fp8-h200-vllm")
	assert.Contains(t, err.Error(), "gptoss-fp4-b200-trt")
}

func TestGenerateTestConfigSweep_ExpandsAllProfilesUnfiltered(t *testing.T) {
	catalog := loadCatalogFromYAML(t, singleNodeCatalogYAML)

	entries, err := GenerateTestConfigSweep([]string{"dsr1-fp8-h200-vllm"}, nil, catalog)
	require.NoError(t, err)

	// Both profiles expand, fixed step 2: [1 2 4 8] + [4 8 16 32 64] + [1 2 4 8 16].
	require.Len(t, entries, 14)
	for _, e := range entries {
		assert.Equal(t, "h200", e.Runner, "test-config never resolves runner nodes")
	}
}

func TestGenerateTestConfigSweep_ConcAllowListRestrictsByMembership(t *testing.T) {
	catalog := loadCatalogFromYAML(t, singleNodeCatalogYAML)

	entries, err := GenerateTestConfigSweep([]string{"dsr1-fp8-h200-vllm"}, []int{4, 16}, catalog)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Contains(t, []int{4, 16}, e.Single.Conc)
	}
	// tp=4 point keeps only conc 4; tp=8 point keeps 4 and 16; 1k8k keeps 4 and 16.
	assert.Len(t, entries, 5)
}

func TestGenerateTestConfigSweep_EmptyIntersectionDropsPoint(t *testing.T) {
	catalog := loadCatalogFromYAML(t, singleNodeCatalogYAML)

	entries, err := GenerateTestConfigSweep([]string{"gptoss-fp4-b200-trt"}, []int{1000}, catalog)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateTestConfigSweep_MultiNodeKeepsConcList(t *testing.T) {
	catalog := loadCatalogFromYAML(t, multiNodeCatalogYAML)

	entries, err := GenerateTestConfigSweep([]string{"dsr1-fp8-gb200-dynamo"}, nil, catalog)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []int{8, 16, 32}, entries[0].Multi.Conc)
	assert.Equal(t, "gb200", entries[0].Runner)
}
