package matrix

import "github.com/samber/lo"

// Accuracy evals only run on the 1k8k profile.
var evalSeqLen = SeqLen{ISL: 1024, OSL: 8192}

type evalGroupKey struct {
	Model        string
	Runner       string
	Framework    string
	Precision    string
	ISL          int
	OSL          int
	SpecDecoding string
}

// MarkEvalEntries selects the subset of an expanded matrix eligible for
// accuracy evaluation and sets run_eval on every entry accordingly.
//
// Only single-node entries at 1k8k are eligible. Within each
// (model, runner, framework, precision, isl, osl, spec_decoding) group the
// highest-TP entries with the highest concurrency are marked, and — when the
// group spans more than one TP value — so are the lowest-TP entries with the
// highest concurrency. Concurrency ties mark all tied entries.
func MarkEvalEntries(entries []*MatrixEntry) {
	eligible := lo.Filter(entries, func(e *MatrixEntry, _ int) bool {
		return e.Single != nil && e.ISL == evalSeqLen.ISL && e.OSL == evalSeqLen.OSL
	})
	groups := lo.GroupBy(eligible, func(e *MatrixEntry) evalGroupKey {
		return evalGroupKey{
			Model:        e.Model,
			Runner:       e.Runner,
			Framework:    e.Framework,
			Precision:    e.Precision,
			ISL:          e.ISL,
			OSL:          e.OSL,
			SpecDecoding: e.SpecDecoding,
		}
	})

	selected := make(map[*MatrixEntry]bool)
	for _, group := range groups {
		tps := lo.Map(group, func(e *MatrixEntry, _ int) int { return e.Single.TP })
		minTP, maxTP := lo.Min(tps), lo.Max(tps)

		markHighestConcAtTP(group, maxTP, selected)
		if minTP != maxTP {
			markHighestConcAtTP(group, minTP, selected)
		}
	}

	for _, e := range entries {
		e.RunEval = selected[e]
	}
}

// markHighestConcAtTP marks every entry at the given TP whose concurrency
// equals the maximum concurrency among same-TP entries.
func markHighestConcAtTP(group []*MatrixEntry, tp int, selected map[*MatrixEntry]bool) {
	atTP := lo.Filter(group, func(e *MatrixEntry, _ int) bool { return e.Single.TP == tp })
	if len(atTP) == 0 {
		return
	}
	maxConc := lo.Max(lo.Map(atTP, func(e *MatrixEntry, _ int) int { return e.Single.Conc }))
	for _, e := range atTP {
		if e.Single.Conc == maxConc {
			selected[e] = true
		}
	}
}

// FilterEvalOnly returns only the entries marked for accuracy evaluation.
func FilterEvalOnly(entries []*MatrixEntry) []*MatrixEntry {
	return lo.Filter(entries, func(e *MatrixEntry, _ int) bool { return e.RunEval })
}
