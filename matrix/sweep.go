package matrix

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// SweepFilter holds the optional catalog predicates shared by the sweep
// commands. An empty field matches everything; all present filters are ANDed.
type SweepFilter struct {
	ModelPrefixes []string // prefix match against the config key
	Precisions    []string
	Frameworks    []string
	RunnerTypes   []string // full-sweep only; validated against the runner catalog
	SeqLens       []string // short names like "1k8k"
}

// MatchKey reports whether a config key passes the model-prefix filter.
func (f SweepFilter) MatchKey(key string) bool {
	if len(f.ModelPrefixes) == 0 {
		return true
	}
	return lo.SomeBy(f.ModelPrefixes, func(prefix string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

// MatchConfig reports whether a config passes the precision, framework and
// runner-type filters.
func (f SweepFilter) MatchConfig(cfg *ConfigEntry) bool {
	if len(f.Precisions) > 0 && !lo.Contains(f.Precisions, cfg.Precision) {
		return false
	}
	if len(f.Frameworks) > 0 && !lo.Contains(f.Frameworks, cfg.Framework) {
		return false
	}
	if len(f.RunnerTypes) > 0 && !lo.Contains(f.RunnerTypes, cfg.Runner) {
		return false
	}
	return true
}

// seqLenSet resolves the filter's short names to an (isl, osl) set, nil when
// no sequence-length filter is present.
func (f SweepFilter) seqLenSet() (map[SeqLen]bool, error) {
	if len(f.SeqLens) == 0 {
		return nil, nil
	}
	set := make(map[SeqLen]bool, len(f.SeqLens))
	for _, name := range f.SeqLens {
		sl, ok := LookupSeqLen(name)
		if !ok {
			return nil, fmt.Errorf("unknown sequence length %q; valid values are: %s", name, strings.Join(SeqLenNames(), ", "))
		}
		set[sl] = true
	}
	return set, nil
}

// FullSweepOptions configures the full-sweep expansion.
type FullSweepOptions struct {
	Filter           SweepFilter
	MultiNode        bool // false expands single-node configs, true multinode
	StepSize         int  // geometric step for concurrency ranges, caller default 2
	Bounds           ConcurrencyBounds
	MaxTP            *int
	MaxEP            *int
	RunnerNodeFilter string
}

// GenerateFullSweep fans every surviving (config, profile, point) triple out
// into matrix entries: one per concurrency value and runner node for
// single-node configs, one per runner node carrying the whole concurrency
// list for multinode configs.
func GenerateFullSweep(opts FullSweepOptions, catalog *Catalog, runners *RunnerCatalog) ([]*MatrixEntry, error) {
	if len(opts.Filter.RunnerTypes) > 0 {
		invalid := lo.Reject(opts.Filter.RunnerTypes, func(t string, _ int) bool { return runners.Has(t) })
		if len(invalid) > 0 {
			return nil, fmt.Errorf("invalid runner type(s): %s; valid runner types are: %s",
				strings.Join(invalid, ", "), strings.Join(runners.SortedTypes(), ", "))
		}
	}
	seqLens, err := opts.Filter.seqLenSet()
	if err != nil {
		return nil, err
	}

	entries := make([]*MatrixEntry, 0)
	for _, key := range catalog.Keys() {
		cfg, _ := catalog.Get(key)
		if !opts.Filter.MatchKey(key) || !opts.Filter.MatchConfig(cfg) {
			continue
		}

		// Resolve runner fan-out up front: with a node filter each entry is
		// pinned to a concrete node; without one the declared runner type is
		// carried through unchanged as a single "node".
		nodes := []string{cfg.Runner}
		if opts.RunnerNodeFilter != "" {
			nodes = filterNodes(runners.Nodes(cfg.Runner), opts.RunnerNodeFilter)
			if len(nodes) == 0 {
				logrus.Debugf("config %q: no %q nodes match filter %q, skipping", key, cfg.Runner, opts.RunnerNodeFilter)
				continue
			}
		}

		for _, profile := range cfg.SeqLenConfigs {
			if seqLens != nil && !seqLens[SeqLen{ISL: profile.ISL, OSL: profile.OSL}] {
				continue
			}
			for pi, point := range profile.SearchSpace {
				var err error
				if cfg.Multinode {
					if !opts.MultiNode {
						continue
					}
					err = expandMultiNodePoint(&entries, opts, cfg, profile, point.Multi, nodes)
				} else {
					if opts.MultiNode {
						continue
					}
					err = expandSingleNodePoint(&entries, opts, cfg, profile, point.Single, nodes)
				}
				if err != nil {
					return nil, fmt.Errorf("config %q, seq len %s, point %d: %w", key, SeqLenString(profile.ISL, profile.OSL), pi, err)
				}
			}
		}
	}
	return entries, nil
}

func expandMultiNodePoint(entries *[]*MatrixEntry, opts FullSweepOptions, cfg *ConfigEntry, profile SeqLenProfile, point *MultiNodePoint, nodes []string) error {
	concValues := point.ConcList
	if len(concValues) == 0 {
		if point.ConcStart == nil || point.ConcEnd == nil {
			return fmt.Errorf("multinode point needs %s or a %s/%s range", FieldConcList, FieldConcStart, FieldConcEnd)
		}
		concValues = ExpandConcurrencyRange(*point.ConcStart, *point.ConcEnd, opts.StepSize)
	}
	concValues, ok := opts.Bounds.FilterList(concValues)
	if !ok {
		return nil
	}

	seqLenStr := SeqLenString(profile.ISL, profile.OSL)
	for _, node := range nodes {
		entry := &MatrixEntry{
			Image:        cfg.Image,
			Model:        cfg.Model,
			ModelPrefix:  cfg.ModelPrefix,
			Precision:    cfg.Precision,
			Framework:    cfg.Framework,
			Runner:       node,
			ISL:          profile.ISL,
			OSL:          profile.OSL,
			SpecDecoding: specDecodingOrDefault(point.SpecDecoding),
			MaxModelLen:  profile.ISL + profile.OSL + 200,
			ExpName:      fmt.Sprintf("%s_%s", cfg.ModelPrefix, seqLenStr),
			Disagg:       cfg.Disagg,
			Multi: &MultiNodeFields{
				Prefill: point.Prefill,
				Decode:  point.Decode,
				Conc:    concValues,
			},
		}
		if err := ValidateEntry(entry, true); err != nil {
			return err
		}
		*entries = append(*entries, entry)
	}
	return nil
}

func expandSingleNodePoint(entries *[]*MatrixEntry, opts FullSweepOptions, cfg *ConfigEntry, profile SeqLenProfile, point *SingleNodePoint, nodes []string) error {
	if point.ConcStart == nil || point.ConcEnd == nil {
		return fmt.Errorf("single-node point needs a %s/%s range", FieldConcStart, FieldConcEnd)
	}

	tp, ok := clampParallelism(point.TP, opts.MaxTP)
	if !ok {
		return nil
	}
	ep := 1
	if point.EP != nil {
		ep, ok = clampParallelism(*point.EP, opts.MaxEP)
		if !ok {
			return nil
		}
	} else if opts.MaxEP != nil && *opts.MaxEP <= 0 {
		return nil
	}
	dpAttention := point.DPAttention != nil && *point.DPAttention

	start, end, ok := opts.Bounds.NarrowRange(*point.ConcStart, *point.ConcEnd)
	if !ok {
		return nil
	}

	seqLenStr := SeqLenString(profile.ISL, profile.OSL)
	for _, conc := range ExpandConcurrencyRange(start, end, opts.StepSize) {
		for _, node := range nodes {
			entry := &MatrixEntry{
				Image:        cfg.Image,
				Model:        cfg.Model,
				ModelPrefix:  cfg.ModelPrefix,
				Precision:    cfg.Precision,
				Framework:    cfg.Framework,
				Runner:       node,
				ISL:          profile.ISL,
				OSL:          profile.OSL,
				SpecDecoding: specDecodingOrDefault(point.SpecDecoding),
				MaxModelLen:  profile.ISL + profile.OSL + 200,
				ExpName:      fmt.Sprintf("%s_%s", cfg.ModelPrefix, seqLenStr),
				Disagg:       cfg.Disagg,
				Single: &SingleNodeFields{
					TP:          tp,
					EP:          ep,
					DPAttention: dpAttention,
					Conc:        conc,
				},
			}
			if err := ValidateEntry(entry, false); err != nil {
				return err
			}
			*entries = append(*entries, entry)
		}
	}
	return nil
}
