package source

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quarrylabs/quarry/internal/drill"
)

// TreeProvider serves drill-down levels from children embedded in an
// in-memory node tree. Used for datasets that arrive whole (file loads,
// API responses carrying the full hierarchy).
//
// The level name is ignored: depth is implied by the path.
type TreeProvider struct {
	root []drill.Node
}

// NewTreeProvider creates a provider over a normalized root node set.
func NewTreeProvider(root []drill.Node) *TreeProvider {
	return &TreeProvider{root: drill.CloneNodes(root)}
}

// NodesFor implements drill.Provider by walking the tree along path,
// matching each segment against node names. An unknown segment yields an
// empty level, not an error: the navigator treats it like any other leaf.
func (p *TreeProvider) NodesFor(_ context.Context, path []string, _ string) ([]drill.Node, error) {
	current := p.root
	for _, seg := range path {
		var next []drill.Node
		for _, n := range current {
			if n.Name == seg {
				next = n.Children
				break
			}
		}
		current = next
		if current == nil {
			return []drill.Node{}, nil
		}
	}
	return drill.CloneNodes(current), nil
}

// LoadYAML reads a record tree from a YAML document of the form:
//
//	records:
//	  - name: EMEA
//	    value: 120
//	    children:
//	      - name: Germany
//	        value: 70
func LoadYAML(path string) ([]drill.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	var doc struct {
		Records []drill.Record `yaml:"records"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	if len(doc.Records) == 0 {
		return nil, fmt.Errorf("dataset %s contains no records", path)
	}
	return doc.Records, nil
}
