package drill

import (
	"fmt"
	"time"
)

// Record is a raw aggregate row as delivered by an upstream data source.
// Fields are loosely typed on purpose: upstream payloads routinely omit
// name, value, or category, and normalization fills the gaps.
type Record struct {
	ID        string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string            `json:"name,omitempty" yaml:"name,omitempty"`
	Category  string            `json:"category,omitempty" yaml:"category,omitempty"`
	Value     *float64          `json:"value,omitempty" yaml:"value,omitempty"`
	Timestamp time.Time         `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Children  []Record          `json:"children,omitempty" yaml:"children,omitempty"`
}

// Node is a normalized drill-down data point. Unlike Record, every Node has
// a non-empty ID, Name, and Category, and a concrete Value.
type Node struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Category  string            `json:"category"`
	Timestamp time.Time         `json:"timestamp,omitzero"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Children  []Node            `json:"children,omitempty"`
}

// DefaultCategory is assigned to records that carry no category.
const DefaultCategory = "General"

// Normalize converts raw records into nodes, defaulting missing fields:
// name falls back to category, then to a positional "Item N" label; a
// missing value becomes 0; a missing category becomes DefaultCategory.
// Children are normalized recursively. The input is never mutated.
func Normalize(records []Record) []Node {
	nodes := make([]Node, 0, len(records))
	for i, rec := range records {
		nodes = append(nodes, normalizeOne(rec, i))
	}
	return nodes
}

func normalizeOne(rec Record, pos int) Node {
	name := rec.Name
	if name == "" {
		name = rec.Category
	}
	if name == "" {
		name = fmt.Sprintf("Item %d", pos+1)
	}

	category := rec.Category
	if category == "" {
		category = DefaultCategory
	}

	var value float64
	if rec.Value != nil {
		value = *rec.Value
	}

	id := rec.ID
	if id == "" {
		id = fmt.Sprintf("%s-%d", name, pos)
	}

	node := Node{
		ID:        id,
		Name:      name,
		Value:     value,
		Category:  category,
		Timestamp: rec.Timestamp,
		Metadata:  rec.Metadata,
	}
	if len(rec.Children) > 0 {
		node.Children = Normalize(rec.Children)
	}
	return node
}

// CloneNodes returns a shallow copy of the slice. Node values themselves are
// copied by value; Metadata and Children remain shared, which is acceptable
// because consumers treat nodes as read-only.
func CloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}
