package transform

import "github.com/quarrylabs/quarry/internal/drill"

// PerfConfig controls downsampling of oversized datasets.
type PerfConfig struct {
	VirtualizeDataPoints bool `json:"virtualizeDataPoints"`
	MaxDataPoints        int  `json:"maxDataPoints"`
}

// Virtualize stride-samples the input down to at most cfg.MaxDataPoints
// elements: step = ceil(len/max), keeping indices where i % step == 0.
// Inactive (returns the input unchanged) when virtualization is disabled,
// MaxDataPoints is non-positive, or the input already fits.
//
// Stride sampling preserves visual shape, not statistics: aggregates over
// the sampled set (sum, average) do not match the full set.
func Virtualize(nodes []drill.Node, cfg PerfConfig) []drill.Node {
	if !cfg.VirtualizeDataPoints || cfg.MaxDataPoints <= 0 || len(nodes) <= cfg.MaxDataPoints {
		return nodes
	}

	step := (len(nodes) + cfg.MaxDataPoints - 1) / cfg.MaxDataPoints
	out := make([]drill.Node, 0, cfg.MaxDataPoints)
	for i := 0; i < len(nodes); i += step {
		out = append(out, nodes[i])
	}
	return out
}
