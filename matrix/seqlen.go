package matrix

import "fmt"

// SeqLen is an (input, output) sequence length pair.
type SeqLen struct {
	ISL int
	OSL int
}

// seqLenByName maps the short sequence-length names accepted on the CLI to
// concrete (isl, osl) pairs. Read-only after init; never mutate.
var seqLenByName = map[string]SeqLen{
	"1k1k": {ISL: 1024, OSL: 1024},
	"1k8k": {ISL: 1024, OSL: 8192},
	"8k1k": {ISL: 8192, OSL: 1024},
}

// seqLenNames keeps a stable name order for help text and error messages.
var seqLenNames = []string{"1k1k", "1k8k", "8k1k"}

// seqLenToName is the reverse mapping, used for experiment-name generation.
var seqLenToName = func() map[SeqLen]string {
	m := make(map[SeqLen]string, len(seqLenByName))
	for name, sl := range seqLenByName {
		m[sl] = name
	}
	return m
}()

// SeqLenNames returns the short names accepted by LookupSeqLen, in a fixed order.
func SeqLenNames() []string {
	out := make([]string, len(seqLenNames))
	copy(out, seqLenNames)
	return out
}

// LookupSeqLen resolves a short name like "1k8k" to its (isl, osl) pair.
func LookupSeqLen(name string) (SeqLen, bool) {
	sl, ok := seqLenByName[name]
	return sl, ok
}

// SeqLenString returns the short name for an (isl, osl) pair, or the
// "isl_osl" fallback when the pair has no registered short name.
func SeqLenString(isl, osl int) string {
	if name, ok := seqLenToName[SeqLen{ISL: isl, OSL: osl}]; ok {
		return name
	}
	return fmt.Sprintf("%d_%d", isl, osl)
}
