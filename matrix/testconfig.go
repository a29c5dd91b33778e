package matrix

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// testConfigStepSize is the fixed geometric step used by test-config
// expansion. The --step-size flag only applies to full-sweep.
const testConfigStepSize = 2

// GenerateTestConfigSweep fully expands the named config keys without any
// filtering. Unknown keys abort before any expansion, naming every missing
// key and the full set of available keys. A non-empty concAllow list
// restricts expanded concurrency values to exact membership; points whose
// intersection is empty are dropped.
func GenerateTestConfigSweep(configKeys []string, concAllow []int, catalog *Catalog) ([]*MatrixEntry, error) {
	missing := lo.Reject(configKeys, func(key string, _ int) bool {
		_, ok := catalog.Get(key)
		return ok
	})
	if len(missing) > 0 {
		available := make([]string, len(catalog.Keys()))
		copy(available, catalog.Keys())
		sort.Strings(available)
		return nil, fmt.Errorf("config key(s) not found: %s; available keys: %s",
			strings.Join(missing, ", "), strings.Join(available, ", "))
	}

	entries := make([]*MatrixEntry, 0)
	for _, key := range configKeys {
		cfg, _ := catalog.Get(key)
		for _, profile := range cfg.SeqLenConfigs {
			seqLenStr := SeqLenString(profile.ISL, profile.OSL)
			for pi, point := range profile.SearchSpace {
				var err error
				if cfg.Multinode {
					err = appendTestMultiNode(&entries, cfg, profile, point.Multi, concAllow, seqLenStr)
				} else {
					err = appendTestSingleNode(&entries, cfg, profile, point.Single, concAllow, seqLenStr)
				}
				if err != nil {
					return nil, fmt.Errorf("config %q, seq len %s, point %d: %w", key, seqLenStr, pi, err)
				}
			}
		}
	}
	return entries, nil
}

func pointConcValues(concList []int, concStart, concEnd *int) ([]int, error) {
	if len(concList) > 0 {
		return concList, nil
	}
	if concStart == nil || concEnd == nil {
		return nil, fmt.Errorf("point needs %s or a %s/%s range", FieldConcList, FieldConcStart, FieldConcEnd)
	}
	return ExpandConcurrencyRange(*concStart, *concEnd, testConfigStepSize), nil
}

func restrictConcValues(values, allow []int) []int {
	if len(allow) == 0 {
		return values
	}
	return lo.Filter(values, func(c int, _ int) bool { return lo.Contains(allow, c) })
}

func appendTestMultiNode(entries *[]*MatrixEntry, cfg *ConfigEntry, profile SeqLenProfile, point *MultiNodePoint, concAllow []int, seqLenStr string) error {
	concValues, err := pointConcValues(point.ConcList, point.ConcStart, point.ConcEnd)
	if err != nil {
		return err
	}
	concValues = restrictConcValues(concValues, concAllow)
	if len(concValues) == 0 {
		return nil
	}
	entry := &MatrixEntry{
		Image:        cfg.Image,
		Model:        cfg.Model,
		ModelPrefix:  cfg.ModelPrefix,
		Precision:    cfg.Precision,
		Framework:    cfg.Framework,
		Runner:       cfg.Runner,
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
	return nil
}

func appendTestSingleNode(entries *[]*MatrixEntry, cfg *ConfigEntry, profile SeqLenProfile, point *SingleNodePoint, concAllow []int, seqLenStr string) error {
	concValues, err := pointConcValues(point.ConcList, point.ConcStart, point.ConcEnd)
	if err != nil {
		return err
	}
	concValues = restrictConcValues(concValues, concAllow)
	if len(concValues) == 0 {
		return nil
	}
	ep := 1
	if point.EP != nil {
		ep = *point.EP
	}
	dpAttention := point.DPAttention != nil && *point.DPAttention
	for _, conc := range concValues {
		entry := &MatrixEntry{
			Image:        cfg.Image,
			Model:        cfg.Model,
			ModelPrefix:  cfg.ModelPrefix,
			Precision:    cfg.Precision,
			Framework:    cfg.Framework,
			Runner:       cfg.Runner,
			ISL:          profile.ISL,
			OSL:          profile.OSL,
			SpecDecoding: specDecodingOrDefault(point.SpecDecoding),
			MaxModelLen:  profile.ISL + profile.OSL + 200,
			ExpName:      fmt.Sprintf("%s_%s", cfg.ModelPrefix, seqLenStr),
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
