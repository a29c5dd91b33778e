package matrix

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// RunnerModelSweepOptions configures the runner-model sweep: one
// representative benchmark point per matching config, fanned across every
// physical node of the requested runner type.
type RunnerModelSweepOptions struct {
	RunnerType       string
	MultiNode        bool
	Filter           SweepFilter // model-prefix/precision/framework only
	Conc             *int        // overrides the config-derived concurrency
	RunnerNodeFilter string
}

// GenerateRunnerModelSweep builds the node-validation matrix for a runner
// type. For every config declared on that runner type (after filtering), the
// 1k1k profile's representative point is emitted once per physical node.
// Configs without a 1k1k profile are skipped.
func GenerateRunnerModelSweep(opts RunnerModelSweepOptions, catalog *Catalog, runners *RunnerCatalog) ([]*MatrixEntry, error) {
	nodes := runners.Nodes(opts.RunnerType)
	if len(nodes) == 0 {
		return nil, fmt.Errorf("runner %q does not exist in the runner config; must choose from existing runner types: %s",
			opts.RunnerType, strings.Join(runners.Types(), ", "))
	}
	if opts.RunnerNodeFilter != "" {
		nodes = filterNodes(nodes, opts.RunnerNodeFilter)
		if len(nodes) == 0 {
			return nil, fmt.Errorf("no runner nodes found matching filter %q for runner type %q", opts.RunnerNodeFilter, opts.RunnerType)
		}
	}

	entries := make([]*MatrixEntry, 0)
	for _, key := range catalog.Keys() {
		cfg, _ := catalog.Get(key)
		if cfg.Runner != opts.RunnerType {
			continue
		}
		if !opts.Filter.MatchKey(key) || !opts.Filter.MatchConfig(cfg) {
			continue
		}
		if cfg.Multinode != opts.MultiNode {
			continue
		}

		profile, found := lo.Find(cfg.SeqLenConfigs, func(p SeqLenProfile) bool {
			return p.ISL == 1024 && p.OSL == 1024
		})
		if !found {
			logrus.Debugf("config %q has no 1k1k profile, skipping", key)
			continue
		}

		var err error
		if cfg.Multinode {
			err = appendMultiNodeValidation(&entries, opts, cfg, profile, nodes)
		} else {
			err = appendSingleNodeValidation(&entries, opts, cfg, profile, nodes)
		}
		if err != nil {
			return nil, fmt.Errorf("config %q: %w", key, err)
		}
	}
	return entries, nil
}

// appendMultiNodeValidation picks the search-space point with the lowest
// concurrency (points without a list sort last) and emits it per node with a
// single-element concurrency list.
func appendMultiNodeValidation(entries *[]*MatrixEntry, opts RunnerModelSweepOptions, cfg *ConfigEntry, profile SeqLenProfile, nodes []string) error {
	point := lo.MinBy(profile.SearchSpace, func(a, b BenchmarkPoint) bool {
		return lowestConc(a.Multi) < lowestConc(b.Multi)
	}).Multi

	var conc int
	switch {
	case opts.Conc != nil:
		conc = *opts.Conc
	case len(point.ConcList) > 0:
		conc = lo.Min(point.ConcList)
	case point.ConcStart != nil:
		conc = *point.ConcStart
	default:
		conc = 1
	}

	for _, node := range nodes {
		entry := &MatrixEntry{
			Image:        cfg.Image,
			Model:        cfg.Model,
			ModelPrefix:  cfg.ModelPrefix,
			Precision:    cfg.Precision,
			Framework:    cfg.Framework,
			Runner:       node,
			ISL:          1024,
			OSL:          1024,
			SpecDecoding: specDecodingOrDefault(point.SpecDecoding),
			MaxModelLen:  2048,
			ExpName:      fmt.Sprintf("%s_test", cfg.ModelPrefix),
			Disagg:       cfg.Disagg,
			Multi: &MultiNodeFields{
				Prefill: point.Prefill,
				Decode:  point.Decode,
				Conc:    []int{conc},
			},
		}
		if err := ValidateEntry(entry, true); err != nil {
			return err
		}
		*entries = append(*entries, entry)
	}
	return nil
}

// lowestConc is the sort key for representative-point selection: the minimum
// of the point's concurrency list, +Inf when it has none.
func lowestConc(point *MultiNodePoint) float64 {
	if point == nil || len(point.ConcList) == 0 {
		return math.Inf(1)
	}
	return float64(lo.Min(point.ConcList))
}

// appendSingleNodeValidation picks the search-space point with the highest
// TP and emits it per node at the resolved concurrency.
func appendSingleNodeValidation(entries *[]*MatrixEntry, opts RunnerModelSweepOptions, cfg *ConfigEntry, profile SeqLenProfile, nodes []string) error {
	point := lo.MaxBy(profile.SearchSpace, func(a, b BenchmarkPoint) bool {
		return a.Single.TP > b.Single.TP
	}).Single

	conc := 1
	switch {
	case opts.Conc != nil:
		conc = *opts.Conc
	case point.ConcStart != nil && *point.ConcStart != 0:
		conc = *point.ConcStart
	case len(point.ConcList) > 0:
		conc = lo.Min(point.ConcList)
	}

	ep := 1
	if point.EP != nil {
		ep = *point.EP
	}
	dpAttention := point.DPAttention != nil && *point.DPAttention

	for _, node := range nodes {
		entry := &MatrixEntry{
			Image:        cfg.Image,
			Model:        cfg.Model,
			ModelPrefix:  cfg.ModelPrefix,
			Precision:    cfg.Precision,
			Framework:    cfg.Framework,
			Runner:       node,
			ISL:          1024,
			OSL:          1024,
			SpecDecoding: specDecodingOrDefault(point.SpecDecoding),
			MaxModelLen:  2048,
			ExpName:      fmt.Sprintf("%s_test", cfg.ModelPrefix),
			Disagg:       cfg.Disagg,
			Single: &SingleNodeFields{
				TP:          point.TP,
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
	return nil
}
