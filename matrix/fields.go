package matrix

// Field enumerates every key that can appear in a sweep configuration or an
// emitted matrix entry. Config parsing and entry validation go through these
// constants so a typo'd key is a compile error, not a silent mismatch.
type Field string

const (
	FieldImage              Field = "image"
	FieldModel              Field = "model"
	FieldModelPrefix        Field = "model_prefix"
	FieldPrecision          Field = "precision"
	FieldFramework          Field = "framework"
	FieldRunner             Field = "runner"
	FieldMultinode          Field = "multinode"
	FieldDisagg             Field = "disagg"
	FieldSeqLenConfigs      Field = "seq_len_configs"
	FieldISL                Field = "isl"
	FieldOSL                Field = "osl"
	FieldSearchSpace        Field = "search_space"
	FieldTP                 Field = "tp"
	FieldEP                 Field = "ep"
	FieldDPAttention        Field = "dp_attention"
	FieldSpecDecoding       Field = "spec_decoding"
	FieldConcStart          Field = "conc_start"
	FieldConcEnd            Field = "conc_end"
	FieldConcList           Field = "conc_list"
	FieldConc               Field = "conc"
	FieldPrefill            Field = "prefill"
	FieldDecode             Field = "decode"
	FieldNumWorker          Field = "num_worker"
	FieldAdditionalSettings Field = "additional_settings"
	FieldMaxModelLen        Field = "max_model_len"
	FieldExpName            Field = "exp_name"
	FieldRunEval            Field = "run_eval"
)

func (f Field) String() string { return string(f) }
