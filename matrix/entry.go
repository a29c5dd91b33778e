package matrix

import (
	"encoding/json"
	"fmt"
)

// MatrixEntry is one fully-resolved, launchable benchmark descriptor.
// Exactly one of Single / Multi is set; the shape must match the disagg
// topology the entry was expanded from.
type MatrixEntry struct {
	Image        string
	Model        string
	ModelPrefix  string
	Precision    string
	Framework    string
	Runner       string
	ISL          int
	OSL          int
	SpecDecoding string
	MaxModelLen  int
	ExpName      string
	Disagg       bool
	RunEval      bool

	Single *SingleNodeFields
	Multi  *MultiNodeFields
}

// SingleNodeFields carries the single-node parallelism layout and one
// concrete concurrency value.
type SingleNodeFields struct {
	TP          int
	EP          int
	DPAttention bool
	Conc        int
}

// MultiNodeFields carries the disaggregated phase layouts and the full list
// of concurrencies to run together in one launch.
type MultiNodeFields struct {
	Prefill PhaseConfig
	Decode  PhaseConfig
	Conc    []int
}

// IsMultinode reports whether the entry uses the multinode schema.
func (e *MatrixEntry) IsMultinode() bool { return e.Multi != nil }

type singleNodeJSON struct {
	Image        string `json:"image"`
	Model        string `json:"model"`
	ModelPrefix  string `json:"model_prefix"`
	Precision    string `json:"precision"`
	Framework    string `json:"framework"`
	Runner       string `json:"runner"`
	ISL          int    `json:"isl"`
	OSL          int    `json:"osl"`
	TP           int    `json:"tp"`
	Conc         int    `json:"conc"`
	MaxModelLen  int    `json:"max_model_len"`
	EP           int    `json:"ep"`
	DPAttention  bool   `json:"dp_attention"`
	SpecDecoding string `json:"spec_decoding"`
	ExpName      string `json:"exp_name"`
	Disagg       bool   `json:"disagg"`
	RunEval      bool   `json:"run_eval"`
}

type multiNodeJSON struct {
	Image        string      `json:"image"`
	Model        string      `json:"model"`
	ModelPrefix  string      `json:"model_prefix"`
	Precision    string      `json:"precision"`
	Framework    string      `json:"framework"`
	Runner       string      `json:"runner"`
	ISL          int         `json:"isl"`
	OSL          int         `json:"osl"`
	SpecDecoding string      `json:"spec_decoding"`
	Prefill      PhaseConfig `json:"prefill"`
	Decode       PhaseConfig `json:"decode"`
	Conc         []int       `json:"conc"`
	MaxModelLen  int         `json:"max_model_len"`
	ExpName      string      `json:"exp_name"`
	Disagg       bool        `json:"disagg"`
	RunEval      bool        `json:"run_eval"`
}

// MarshalJSON emits the schema matching the entry's topology: flat
// parallelism fields with a scalar conc for single-node, prefill/decode
// sub-records with a conc list for multinode.
func (e *MatrixEntry) MarshalJSON() ([]byte, error) {
	if e.Multi != nil {
		return json.Marshal(multiNodeJSON{
			Image:        e.Image,
			Model:        e.Model,
			ModelPrefix:  e.ModelPrefix,
			Precision:    e.Precision,
			Framework:    e.Framework,
			Runner:       e.Runner,
			ISL:          e.ISL,
			OSL:          e.OSL,
			SpecDecoding: e.SpecDecoding,
			Prefill:      e.Multi.Prefill,
			Decode:       e.Multi.Decode,
			Conc:         e.Multi.Conc,
			MaxModelLen:  e.MaxModelLen,
			ExpName:      e.ExpName,
			Disagg:       e.Disagg,
			RunEval:      e.RunEval,
		})
	}
	return json.Marshal(singleNodeJSON{
		Image:        e.Image,
		Model:        e.Model,
		ModelPrefix:  e.ModelPrefix,
		Precision:    e.Precision,
		Framework:    e.Framework,
		Runner:       e.Runner,
		ISL:          e.ISL,
		OSL:          e.OSL,
		TP:           e.Single.TP,
		Conc:         e.Single.Conc,
		MaxModelLen:  e.MaxModelLen,
		EP:           e.Single.EP,
		DPAttention:  e.Single.DPAttention,
		SpecDecoding: e.SpecDecoding,
		ExpName:      e.ExpName,
		Disagg:       e.Disagg,
		RunEval:      e.RunEval,
	})
}

// ValidateEntry is the precondition check run on every entry before it is
// appended to the output matrix. A violation aborts the whole run.
func ValidateEntry(e *MatrixEntry, isMultinode bool) error {
	describe := func(field Field, format string, args ...any) error {
		return fmt.Errorf("invalid matrix entry %q (runner %q): field %q: %s",
			e.ExpName, e.Runner, field, fmt.Sprintf(format, args...))
	}
	for _, f := range []struct {
		field Field
		value string
	}{
		{FieldImage, e.Image},
		{FieldModel, e.Model},
		{FieldModelPrefix, e.ModelPrefix},
		{FieldPrecision, e.Precision},
		{FieldFramework, e.Framework},
		{FieldRunner, e.Runner},
		{FieldSpecDecoding, e.SpecDecoding},
		{FieldExpName, e.ExpName},
	} {
		if f.value == "" {
			return describe(f.field, "must be non-empty")
		}
	}
	if e.ISL <= 0 {
		return describe(FieldISL, "must be positive, got %d", e.ISL)
	}
	if e.OSL <= 0 {
		return describe(FieldOSL, "must be positive, got %d", e.OSL)
	}
	if e.MaxModelLen <= 0 {
		return describe(FieldMaxModelLen, "must be positive, got %d", e.MaxModelLen)
	}
	if isMultinode {
		if e.Multi == nil || e.Single != nil {
			return describe(FieldMultinode, "expected multinode schema")
		}
		if len(e.Multi.Conc) == 0 {
			return describe(FieldConc, "must be a non-empty list")
		}
		for _, phase := range []struct {
			field Field
			cfg   PhaseConfig
		}{
			{FieldPrefill, e.Multi.Prefill},
			{FieldDecode, e.Multi.Decode},
		} {
			if phase.cfg.NumWorker <= 0 {
				return describe(phase.field, "%s must be positive, got %d", FieldNumWorker, phase.cfg.NumWorker)
			}
			if phase.cfg.TP <= 0 {
				return describe(phase.field, "%s must be positive, got %d", FieldTP, phase.cfg.TP)
			}
		}
		return nil
	}
	if e.Single == nil || e.Multi != nil {
		return describe(FieldMultinode, "expected single-node schema")
	}
	if e.Single.TP <= 0 {
		return describe(FieldTP, "must be positive, got %d", e.Single.TP)
	}
	if e.Single.EP <= 0 {
		return describe(FieldEP, "must be positive, got %d", e.Single.EP)
	}
	if e.Single.Conc <= 0 {
		return describe(FieldConc, "must be positive, got %d", e.Single.Conc)
	}
	return nil
}
