package matrix

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigEntry is one named benchmark configuration from the sweep catalog:
// a (model, hardware, framework, precision) combination with one or more
// sequence-length profiles, each carrying a parallelism search space.
type ConfigEntry struct {
	Image         string
	Model         string
	ModelPrefix   string
	Precision     string
	Framework     string
	Runner        string
	Multinode     bool
	Disagg        bool
	SeqLenConfigs []SeqLenProfile
}

// SeqLenProfile is an (isl, osl) pair plus its benchmark search space.
type SeqLenProfile struct {
	ISL         int
	OSL         int
	SearchSpace []BenchmarkPoint
}

// BenchmarkPoint is a discriminated union over the two search-space shapes.
// Exactly one of Single / Multi is set, matching the owning config's
// multinode flag.
type BenchmarkPoint struct {
	Single *SingleNodePoint
	Multi  *MultiNodePoint
}

// SingleNodePoint is one single-node search-space point. Concurrency is
// given either as a geometric range (ConcStart/ConcEnd) or an explicit list.
type SingleNodePoint struct {
	TP           int
	ConcStart    *int
	ConcEnd      *int
	ConcList     []int
	EP           *int
	DPAttention  *bool
	SpecDecoding string
}

// MultiNodePoint is one disaggregated prefill/decode search-space point.
// Its concurrency values are benchmarked together as one launch, so they
// stay a list throughout expansion.
type MultiNodePoint struct {
	Prefill      PhaseConfig
	Decode       PhaseConfig
	ConcStart    *int
	ConcEnd      *int
	ConcList     []int
	SpecDecoding string
}

// PhaseConfig is the parallelism layout of one disaggregated phase.
type PhaseConfig struct {
	NumWorker          int      `yaml:"num_worker" json:"num_worker"`
	TP                 int      `yaml:"tp" json:"tp"`
	EP                 int      `yaml:"ep" json:"ep"`
	DPAttention        bool     `yaml:"dp_attention" json:"dp_attention"`
	AdditionalSettings []string `yaml:"additional_settings" json:"additional_settings"`
}

// Catalog holds the merged configuration mapping in file declaration order.
// Go maps do not preserve insertion order, and expansion order must follow
// it, so the key sequence is tracked explicitly.
type Catalog struct {
	keys    []string
	entries map[string]*ConfigEntry
}

// Keys returns the config keys in declaration order.
func (c *Catalog) Keys() []string { return c.keys }

// Get returns the entry for a config key.
func (c *Catalog) Get(key string) (*ConfigEntry, bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Len returns the number of configs in the catalog.
func (c *Catalog) Len() int { return len(c.keys) }

func (c *Catalog) put(key string, entry *ConfigEntry) {
	if c.entries == nil {
		c.entries = make(map[string]*ConfigEntry)
	}
	if _, exists := c.entries[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.entries[key] = entry
}

// LoadConfigFiles reads one or more sweep configuration files and merges them
// into a single catalog. Later files override duplicate keys but keep the
// original key position. Every entry is structurally validated on load.
func LoadConfigFiles(paths []string) (*Catalog, error) {
	catalog := &Catalog{}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		mapping := documentMapping(&root)
		if mapping == nil {
			return nil, fmt.Errorf("config file %s: top level must be a mapping of config keys", path)
		}
		for i := 0; i < len(mapping.Content); i += 2 {
			keyNode, valNode := mapping.Content[i], mapping.Content[i+1]
			entry, err := decodeConfigEntry(valNode)
			if err != nil {
				return nil, fmt.Errorf("config %q in %s: %w", keyNode.Value, path, err)
			}
			if err := entry.validate(); err != nil {
				return nil, fmt.Errorf("config %q in %s: %w", keyNode.Value, path, err)
			}
			catalog.put(keyNode.Value, entry)
		}
	}
	return catalog, nil
}

func documentMapping(root *yaml.Node) *yaml.Node {
	node := root
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	return node
}

// Valid key registries, one per mapping shape.
var (
	validConfigKeys = fieldSet(FieldImage, FieldModel, FieldModelPrefix,
		FieldPrecision, FieldFramework, FieldRunner, FieldMultinode,
		FieldDisagg, FieldSeqLenConfigs)
	validProfileKeys = fieldSet(FieldISL, FieldOSL, FieldSearchSpace)
	validSingleKeys  = fieldSet(FieldTP, FieldConcStart, FieldConcEnd,
		FieldConcList, FieldEP, FieldDPAttention, FieldSpecDecoding)
	validMultiKeys = fieldSet(FieldPrefill, FieldDecode, FieldConcStart,
		FieldConcEnd, FieldConcList, FieldSpecDecoding)
	validPhaseKeys = fieldSet(FieldNumWorker, FieldTP, FieldEP,
		FieldDPAttention, FieldAdditionalSettings)
)

func fieldSet(fields ...Field) map[string]bool {
	m := make(map[string]bool, len(fields))
	for _, f := range fields {
		m[string(f)] = true
	}
	return m
}

// checkKnownKeys rejects unrecognized mapping keys so typos fail loudly
// instead of silently dropping a setting.
func checkKnownKeys(node *yaml.Node, valid map[string]bool, context string) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%s: expected a mapping, got %s", context, node.Tag)
	}
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if !valid[key] {
			names := make([]string, 0, len(valid))
			for k := range valid {
				names = append(names, k)
			}
			sort.Strings(names)
			return fmt.Errorf("%s: unknown key %q; valid keys: %s", context, key, strings.Join(names, ", "))
		}
	}
	return nil
}

func decodeConfigEntry(node *yaml.Node) (*ConfigEntry, error) {
	if err := checkKnownKeys(node, validConfigKeys, "config entry"); err != nil {
		return nil, err
	}
	var raw struct {
		Image         string      `yaml:"image"`
		Model         string      `yaml:"model"`
		ModelPrefix   string      `yaml:"model_prefix"`
		Precision     string      `yaml:"precision"`
		Framework     string      `yaml:"framework"`
		Runner        string      `yaml:"runner"`
		Multinode     bool        `yaml:"multinode"`
		Disagg        bool        `yaml:"disagg"`
		SeqLenConfigs []yaml.Node `yaml:"seq_len_configs"`
	}
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	entry := &ConfigEntry{
		Image:       raw.Image,
		Model:       raw.Model,
		ModelPrefix: raw.ModelPrefix,
		Precision:   raw.Precision,
		Framework:   raw.Framework,
		Runner:      raw.Runner,
		Multinode:   raw.Multinode,
		Disagg:      raw.Disagg,
	}
	for i := range raw.SeqLenConfigs {
		profile, err := decodeSeqLenProfile(&raw.SeqLenConfigs[i], raw.Multinode)
		if err != nil {
			return nil, fmt.Errorf("seq_len_configs[%d]: %w", i, err)
		}
		entry.SeqLenConfigs = append(entry.SeqLenConfigs, *profile)
	}
	return entry, nil
}

func decodeSeqLenProfile(node *yaml.Node, multinode bool) (*SeqLenProfile, error) {
	if err := checkKnownKeys(node, validProfileKeys, "seq len profile"); err != nil {
		return nil, err
	}
	var raw struct {
		ISL         int         `yaml:"isl"`
		OSL         int         `yaml:"osl"`
		SearchSpace []yaml.Node `yaml:"search_space"`
	}
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	profile := &SeqLenProfile{ISL: raw.ISL, OSL: raw.OSL}
	for i := range raw.SearchSpace {
		point, err := decodeBenchmarkPoint(&raw.SearchSpace[i], multinode)
		if err != nil {
			return nil, fmt.Errorf("search_space[%d]: %w", i, err)
		}
		profile.SearchSpace = append(profile.SearchSpace, *point)
	}
	return profile, nil
}

func decodeBenchmarkPoint(node *yaml.Node, multinode bool) (*BenchmarkPoint, error) {
	if multinode {
		if err := checkKnownKeys(node, validMultiKeys, "multinode point"); err != nil {
			return nil, err
		}
		var raw struct {
			Prefill      yaml.Node `yaml:"prefill"`
			Decode       yaml.Node `yaml:"decode"`
			ConcStart    *int      `yaml:"conc_start"`
			ConcEnd      *int      `yaml:"conc_end"`
			ConcList     []int     `yaml:"conc_list"`
			SpecDecoding string    `yaml:"spec_decoding"`
		}
		if err := node.Decode(&raw); err != nil {
			return nil, err
		}
		point := &MultiNodePoint{
			ConcStart:    raw.ConcStart,
			ConcEnd:      raw.ConcEnd,
			ConcList:     raw.ConcList,
			SpecDecoding: raw.SpecDecoding,
		}
		if err := decodePhaseConfig(&raw.Prefill, &point.Prefill, string(FieldPrefill)); err != nil {
			return nil, err
		}
		if err := decodePhaseConfig(&raw.Decode, &point.Decode, string(FieldDecode)); err != nil {
			return nil, err
		}
		return &BenchmarkPoint{Multi: point}, nil
	}

	if err := checkKnownKeys(node, validSingleKeys, "single-node point"); err != nil {
		return nil, err
	}
	var point SingleNodePoint
	var raw struct {
		TP           int    `yaml:"tp"`
		ConcStart    *int   `yaml:"conc_start"`
		ConcEnd      *int   `yaml:"conc_end"`
		ConcList     []int  `yaml:"conc_list"`
		EP           *int   `yaml:"ep"`
		DPAttention  *bool  `yaml:"dp_attention"`
		SpecDecoding string `yaml:"spec_decoding"`
	}
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	point = SingleNodePoint{
		TP:           raw.TP,
		ConcStart:    raw.ConcStart,
		ConcEnd:      raw.ConcEnd,
		ConcList:     raw.ConcList,
		EP:           raw.EP,
		DPAttention:  raw.DPAttention,
		SpecDecoding: raw.SpecDecoding,
	}
	return &BenchmarkPoint{Single: &point}, nil
}

func decodePhaseConfig(node *yaml.Node, phase *PhaseConfig, name string) error {
	if node.Kind == 0 {
		return fmt.Errorf("missing required %s section", name)
	}
	if err := checkKnownKeys(node, validPhaseKeys, name+" phase"); err != nil {
		return err
	}
	if err := node.Decode(phase); err != nil {
		return err
	}
	if phase.AdditionalSettings == nil {
		phase.AdditionalSettings = []string{}
	}
	return nil
}

// validate checks structural invariants of one loaded config entry.
func (c *ConfigEntry) validate() error {
	for _, f := range []struct {
		field Field
		value string
	}{
		{FieldImage, c.Image},
		{FieldModel, c.Model},
		{FieldModelPrefix, c.ModelPrefix},
		{FieldPrecision, c.Precision},
		{FieldFramework, c.Framework},
		{FieldRunner, c.Runner},
	} {
		if f.value == "" {
			return fmt.Errorf("missing required field %q", f.field)
		}
	}
	if len(c.SeqLenConfigs) == 0 {
		return fmt.Errorf("at least one seq len profile required")
	}
	for i, profile := range c.SeqLenConfigs {
		if profile.ISL <= 0 || profile.OSL <= 0 {
			return fmt.Errorf("seq_len_configs[%d]: isl and osl must be positive, got (%d, %d)", i, profile.ISL, profile.OSL)
		}
		if len(profile.SearchSpace) == 0 {
			return fmt.Errorf("seq_len_configs[%d]: search space must be non-empty", i)
		}
		for j, point := range profile.SearchSpace {
			if err := point.validate(c.Multinode); err != nil {
				return fmt.Errorf("seq_len_configs[%d].search_space[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

func (p *BenchmarkPoint) validate(multinode bool) error {
	if multinode {
		if p.Multi == nil {
			return fmt.Errorf("multinode config requires prefill/decode points")
		}
		if p.Multi.Prefill.NumWorker <= 0 || p.Multi.Decode.NumWorker <= 0 {
			return fmt.Errorf("%s must be positive for both phases", FieldNumWorker)
		}
		if p.Multi.Prefill.TP <= 0 || p.Multi.Decode.TP <= 0 {
			return fmt.Errorf("%s must be positive for both phases", FieldTP)
		}
		return nil
	}
	if p.Single == nil {
		return fmt.Errorf("single-node config cannot carry prefill/decode points")
	}
	if p.Single.TP <= 0 {
		return fmt.Errorf("%s must be positive, got %d", FieldTP, p.Single.TP)
	}
	hasRange := p.Single.ConcStart != nil && p.Single.ConcEnd != nil
	if !hasRange && len(p.Single.ConcList) == 0 {
		return fmt.Errorf("either %s/%s or %s required", FieldConcStart, FieldConcEnd, FieldConcList)
	}
	return nil
}

// specDecodingOrDefault returns the point's spec-decoding mode, "none" when unset.
func specDecodingOrDefault(mode string) string {
	if mode == "" {
		return "none"
	}
	return mode
}
