package matrix

import (
	"os"
	"path/filepath"
	"testing"
)

// loadCatalogFromYAML writes the YAML to a temp file and loads it through
// the real file-loading path.
func loadCatalogFromYAML(t *testing.T, yamlText string) *Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "configs.yaml")
	if err := os.WriteFile(path, []byte(yamlText), 0o644); err != nil {
		t.Fatal(err)
	}
	catalog, err := LoadConfigFiles([]string{path})
	if err != nil {
		t.Fatalf("unexpected config load error: %v", err)
	}
	return catalog
}

func loadRunnersFromYAML(t *testing.T, yamlText string) *RunnerCatalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runners.yaml")
	if err := os.WriteFile(path, []byte(yamlText), 0o644); err != nil {
		t.Fatal(err)
	}
	runners, err := LoadRunnerFile(path)
	if err != nil {
		t.Fatalf("unexpected runner load error: %v", err)
	}
	return runners
}

func intPtr(v int) *int { return &v }

// singleNodeCatalogYAML is a small catalog with two single-node configs on
// different runner types and precisions.
const singleNodeCatalogYAML = `
dsr1-fp8-h200-vllm:
  image: ghcr.io/infmax/vllm:latest
  model: deepseek-ai/DeepSeek-R1
  model_prefix: dsr1
  precision: fp8
  framework: vllm
  runner: h200
  seq_len_configs:
    - isl: 1024
      osl: 1024
      search_space:
        - tp: 4
          conc_start: 1
          conc_end: 8
        - tp: 8
          conc_start: 4
          conc_end: 64
          ep: 8
          dp_attention: true
          spec_decoding: mtp
    - isl: 1024
      osl: 8192
      search_space:
        - tp: 8
          conc_start: 1
          conc_end: 16
gptoss-fp4-b200-trt:
  image: ghcr.io/infmax/trt:latest
  model: openai/gpt-oss-120b
  model_prefix: gptoss
  precision: fp4
  framework: trt
  runner: b200
  seq_len_configs:
    - isl: 8192
      osl: 1024
      search_space:
        - tp: 2
          conc_start: 1
          conc_end: 4
`

// multiNodeCatalogYAML holds one disaggregated config.
const multiNodeCatalogYAML = `
dsr1-fp8-gb200-dynamo:
  image: ghcr.io/infmax/dynamo:latest
  model: deepseek-ai/DeepSeek-R1
  model_prefix: dsr1
  precision: fp8
  framework: dynamo
  runner: gb200
  multinode: true
  disagg: true
  seq_len_configs:
    - isl: 1024
      osl: 1024
      search_space:
        - prefill:
            num_worker: 2
            tp: 4
            ep: 4
            dp_attention: true
          decode:
            num_worker: 4
            tp: 8
            ep: 8
            dp_attention: true
          conc_list: [8, 16, 32]
          spec_decoding: mtp
`

const runnersYAML = `
h200:
  - h200-nv-oci-0
  - h200-nv-oci-1
  - h200-amd-roci-0
b200:
  - b200-nv-0
gb200:
  - gb200-rack-0
  - gb200-rack-1
`
