// Package report renders previously produced benchmark result files as
// sorted github-markdown summary tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
)

const disclaimer = "Only [InferenceMAX/InferenceMAX](https://github.com/InferenceMAX/InferenceMAX) repo contains the Official InferenceMAX™ result, all other forks & repos are Unofficial. The benchmark setup & quality of machines/clouds in unofficial repos may be differ leading to subpar benchmarking. Unofficial must be explicitly labelled as Unofficial. Forks may not remove this disclaimer."

// Result is one benchmark result file. Files without an is_multinode field
// are not benchmark results and are skipped during loading.
type Result struct {
	IsMultinode *bool  `json:"is_multinode"`
	ModelPrefix string `json:"infmax_model_prefix"`
	Model       string `json:"model"`
	Hardware    string `json:"hw"`
	Framework   string `json:"framework"`
	Precision   string `json:"precision"`
	ISL         int    `json:"isl"`
	OSL         int    `json:"osl"`
	Conc        int    `json:"conc"`

	// Single-node parallelism layout.
	TP          int  `json:"tp"`
	EP          int  `json:"ep"`
	DPAttention bool `json:"dp_attention"`

	// Multinode phase layouts.
	PrefillTP          int  `json:"prefill_tp"`
	PrefillEP          int  `json:"prefill_ep"`
	PrefillDPAttention bool `json:"prefill_dp_attention"`
	PrefillNumWorkers  int  `json:"prefill_num_workers"`
	NumPrefillGPU      int  `json:"num_prefill_gpu"`
	DecodeTP           int  `json:"decode_tp"`
	DecodeEP           int  `json:"decode_ep"`
	DecodeDPAttention  bool `json:"decode_dp_attention"`
	DecodeNumWorkers   int  `json:"decode_num_workers"`
	NumDecodeGPU       int  `json:"num_decode_gpu"`

	MedianTTFT       float64 `json:"median_ttft"`
	MedianTPOT       float64 `json:"median_tpot"`
	MedianIntvty     float64 `json:"median_intvty"`
	MedianE2EL       float64 `json:"median_e2el"`
	TputPerGPU       float64 `json:"tput_per_gpu"`
	OutputTputPerGPU float64 `json:"output_tput_per_gpu"`
	InputTputPerGPU  float64 `json:"input_tput_per_gpu"`
}

// LoadResults walks a results directory recursively, collecting every JSON
// file that parses as a benchmark result. Unreadable or unrelated JSON files
// are skipped.
func LoadResults(dir string) ([]Result, error) {
	var results []Result
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			logrus.Debugf("skipping unreadable result %s: %v", path, err)
			return nil
		}
		var r Result
		if err := json.Unmarshal(data, &r); err != nil || r.IsMultinode == nil {
			return nil
		}
		results = append(results, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking results dir: %w", err)
	}
	return results, nil
}

// WriteSummary prints the single-node and multinode result tables to w.
func WriteSummary(w io.Writer, results []Result) {
	var single, multi []Result
	for _, r := range results {
		if *r.IsMultinode {
			multi = append(multi, r)
		} else {
			single = append(single, r)
		}
	}
	if len(single) > 0 {
		writeSingleNodeTable(w, single)
	}
	if len(multi) > 0 {
		writeMultiNodeTable(w, multi)
	}
}

func writeSingleNodeTable(w io.Writer, results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		return lessBy(
			cmpStr(a.ModelPrefix, b.ModelPrefix),
			cmpStr(a.Hardware, b.Hardware),
			cmpStr(a.Framework, b.Framework),
			cmpStr(a.Precision, b.Precision),
			cmpInt(a.ISL, b.ISL),
			cmpInt(a.OSL, b.OSL),
			cmpInt(a.TP, b.TP),
			cmpInt(a.EP, b.EP),
			cmpInt(a.Conc, b.Conc),
		)
	})

	headers := []string{
		"Model", "Served Model", "Hardware", "Framework", "Precision", "ISL", "OSL",
		"TP", "EP", "DP Attention", "Conc", "TTFT (ms)", "TPOT (ms)",
		"Interactivity (tok/s/user)", "E2EL (s)", "TPUT per GPU",
		"Output TPUT per GPU", "Input TPUT per GPU",
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		row := append(resultIdentityCells(r), []string{
			fmt.Sprint(r.TP),
			fmt.Sprint(r.EP),
			fmt.Sprint(r.DPAttention),
			fmt.Sprint(r.Conc),
		}...)
		rows = append(rows, append(row, resultMetricCells(r)...))
	}

	fmt.Fprintf(w, "## Single-Node Results\n\n%s\n\n", disclaimer)
	renderMarkdown(w, headers, rows)
	fmt.Fprint(w, "\n\n")
}

func writeMultiNodeTable(w io.Writer, results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		return lessBy(
			cmpStr(a.ModelPrefix, b.ModelPrefix),
			cmpStr(a.Hardware, b.Hardware),
			cmpStr(a.Framework, b.Framework),
			cmpStr(a.Precision, b.Precision),
			cmpInt(a.ISL, b.ISL),
			cmpInt(a.OSL, b.OSL),
			cmpInt(a.PrefillTP, b.PrefillTP),
			cmpInt(a.PrefillEP, b.PrefillEP),
			cmpInt(a.DecodeTP, b.DecodeTP),
			cmpInt(a.DecodeEP, b.DecodeEP),
			cmpInt(a.Conc, b.Conc),
		)
	})

	headers := []string{
		"Model", "Served Model", "Hardware", "Framework", "Precision", "ISL", "OSL",
		"Prefill TP", "Prefill EP", "Prefill DP Attn", "Prefill Workers", "Prefill GPUs",
		"Decode TP", "Decode EP", "Decode DP Attn", "Decode Workers", "Decode GPUs",
		"Conc", "TTFT (ms)", "TPOT (ms)", "Interactivity (tok/s/user)", "E2EL (s)",
		"TPUT per GPU", "Output TPUT per GPU", "Input TPUT per GPU",
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		row := append(resultIdentityCells(r), []string{
			fmt.Sprint(r.PrefillTP),
			fmt.Sprint(r.PrefillEP),
			fmt.Sprint(r.PrefillDPAttention),
			fmt.Sprint(r.PrefillNumWorkers),
			fmt.Sprint(r.NumPrefillGPU),
			fmt.Sprint(r.DecodeTP),
			fmt.Sprint(r.DecodeEP),
			fmt.Sprint(r.DecodeDPAttention),
			fmt.Sprint(r.DecodeNumWorkers),
			fmt.Sprint(r.NumDecodeGPU),
			fmt.Sprint(r.Conc),
		}...)
		rows = append(rows, append(row, resultMetricCells(r)...))
	}

	fmt.Fprintf(w, "## Multi-Node Results\n\n%s\n\n", disclaimer)
	renderMarkdown(w, headers, rows)
	fmt.Fprint(w, "\n")
}

func resultIdentityCells(r Result) []string {
	return []string{
		r.ModelPrefix,
		r.Model,
		strings.ToUpper(r.Hardware),
		strings.ToUpper(r.Framework),
		strings.ToUpper(r.Precision),
		fmt.Sprint(r.ISL),
		fmt.Sprint(r.OSL),
	}
}

func resultMetricCells(r Result) []string {
	return []string{
		fmt.Sprintf("%.4f", r.MedianTTFT*1000),
		fmt.Sprintf("%.4f", r.MedianTPOT*1000),
		fmt.Sprintf("%.4f", r.MedianIntvty),
		fmt.Sprintf("%.4f", r.MedianE2EL),
		fmt.Sprintf("%.4f", r.TputPerGPU),
		fmt.Sprintf("%.4f", r.OutputTputPerGPU),
		fmt.Sprintf("%.4f", r.InputTputPerGPU),
	}
}

// renderMarkdown prints a github-flavored markdown table.
func renderMarkdown(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("|")
	table.SetColumnSeparator("|")
	table.SetRowSeparator("-")
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.AppendBulk(rows)
	table.Render()
}

func lessBy(cmps ...int) bool {
	for _, c := range cmps {
		if c != 0 {
			return c < 0
		}
	}
	return false
}

func cmpStr(a, b string) int { return strings.Compare(a, b) }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
