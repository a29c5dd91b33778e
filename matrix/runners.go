package matrix

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// RunnerCatalog maps runner types (hardware classes like "h200") to the
// physical runner nodes of that type, preserving declaration order of both
// the types and the node lists.
type RunnerCatalog struct {
	types []string
	nodes map[string][]string
}

// Types returns the runner types in declaration order.
func (r *RunnerCatalog) Types() []string { return r.types }

// Has reports whether a runner type exists in the catalog.
func (r *RunnerCatalog) Has(runnerType string) bool {
	_, ok := r.nodes[runnerType]
	return ok
}

// Nodes returns the node identifiers for a runner type, nil if unknown.
func (r *RunnerCatalog) Nodes(runnerType string) []string {
	return r.nodes[runnerType]
}

// SortedTypes returns the runner types sorted, for error messages.
func (r *RunnerCatalog) SortedTypes() []string {
	out := make([]string, len(r.types))
	copy(out, r.types)
	sort.Strings(out)
	return out
}

// LoadRunnerFile reads the runner inventory: a mapping from runner type to a
// list of node identifiers.
func LoadRunnerFile(path string) (*RunnerCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading runner config: %w", err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing runner config %s: %w", path, err)
	}
	mapping := documentMapping(&root)
	if mapping == nil {
		return nil, fmt.Errorf("runner config %s: top level must be a mapping of runner types", path)
	}
	catalog := &RunnerCatalog{nodes: make(map[string][]string)}
	for i := 0; i < len(mapping.Content); i += 2 {
		keyNode, valNode := mapping.Content[i], mapping.Content[i+1]
		var nodes []string
		if err := valNode.Decode(&nodes); err != nil {
			return nil, fmt.Errorf("runner config %s: runner type %q: expected a list of node names: %w", path, keyNode.Value, err)
		}
		if _, exists := catalog.nodes[keyNode.Value]; !exists {
			catalog.types = append(catalog.types, keyNode.Value)
		}
		catalog.nodes[keyNode.Value] = nodes
	}
	return catalog, nil
}

// filterNodes returns the nodes whose identifier contains the substring.
func filterNodes(nodes []string, substr string) []string {
	var out []string
	for _, node := range nodes {
		if strings.Contains(node, substr) {
			out = append(out, node)
		}
	}
	return out
}
