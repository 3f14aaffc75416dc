// Package transform holds the pure data-shaping pipeline applied to the
// current drill level before rendering: value-range filtering, statistical
// outlier rejection, stride downsampling, and summary aggregation.
//
// Every function here is a pure function of its inputs. No hidden state,
// no mutation of the input slices.
package transform

import (
	"math"
	"sort"

	"github.com/quarrylabs/quarry/internal/drill"
)

// Aggregation selects how grouped values are combined.
type Aggregation string

const (
	AggSum   Aggregation = "sum"
	AggAvg   Aggregation = "avg"
	AggCount Aggregation = "count"
	AggMax   Aggregation = "max"
	AggMin   Aggregation = "min"
)

// Grouping selects the time bucket used by GroupByPeriod.
type Grouping string

const (
	GroupDay     Grouping = "day"
	GroupWeek    Grouping = "week"
	GroupMonth   Grouping = "month"
	GroupQuarter Grouping = "quarter"
)

// FilterConfig controls the filtering pipeline.
type FilterConfig struct {
	// ValueRangePercent maps onto the observed [min, max] value interval.
	// [0, 100] means no range restriction.
	ValueRangePercent [2]float64 `json:"valueRangePercent"`

	// Aggregation is used by grouped views; it does not affect filtering.
	Aggregation Aggregation `json:"aggregation"`

	// ShowOutliers, when false, drops values outside the 1.5*IQR fences.
	ShowOutliers bool `json:"showOutliers"`

	// GroupBy is used by grouped views; it does not affect filtering.
	GroupBy Grouping `json:"groupBy"`
}

// DefaultFilterConfig returns the identity configuration: full value range,
// outliers shown, sum aggregation, monthly grouping.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		ValueRangePercent: [2]float64{0, 100},
		Aggregation:       AggSum,
		ShowOutliers:      true,
		GroupBy:           GroupMonth,
	}
}

// Apply runs the filter pipeline in its contractual order:
//
//  1. value-range filter (identity when the range is [0, 100])
//  2. IQR outlier rejection (skipped when ShowOutliers is true)
//
// The order is part of the contract: the quartiles in step 2 are computed
// over the survivors of step 1, not over the raw input.
func Apply(nodes []drill.Node, cfg FilterConfig) []drill.Node {
	out := applyValueRange(nodes, cfg.ValueRangePercent)
	if !cfg.ShowOutliers {
		out = rejectOutliers(out)
	}
	return out
}

// applyValueRange maps the percent window onto the observed value interval
// and keeps nodes inside it.
func applyValueRange(nodes []drill.Node, rangePct [2]float64) []drill.Node {
	if rangePct[0] <= 0 && rangePct[1] >= 100 {
		return nodes
	}
	if len(nodes) == 0 {
		return nodes
	}

	actualMin, actualMax := nodes[0].Value, nodes[0].Value
	for _, n := range nodes[1:] {
		if n.Value < actualMin {
			actualMin = n.Value
		}
		if n.Value > actualMax {
			actualMax = n.Value
		}
	}

	span := actualMax - actualMin
	lo := actualMin + span*rangePct[0]/100
	hi := actualMin + span*rangePct[1]/100

	out := make([]drill.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Value >= lo && n.Value <= hi {
			out = append(out, n)
		}
	}
	return out
}

// rejectOutliers drops nodes outside the Tukey fences [Q1-1.5*IQR, Q3+1.5*IQR].
// Quartiles use the floor-index convention: Q1 = sorted[floor(n*0.25)],
// Q3 = sorted[floor(n*0.75)].
func rejectOutliers(nodes []drill.Node) []drill.Node {
	if len(nodes) == 0 {
		return nodes
	}

	values := make([]float64, len(nodes))
	for i, n := range nodes {
		values[i] = n.Value
	}
	sort.Float64s(values)

	q1 := values[int(math.Floor(float64(len(values))*0.25))]
	q3 := values[int(math.Floor(float64(len(values))*0.75))]
	iqr := q3 - q1
	lo := q1 - 1.5*iqr
	hi := q3 + 1.5*iqr

	out := make([]drill.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Value >= lo && n.Value <= hi {
			out = append(out, n)
		}
	}
	return out
}
