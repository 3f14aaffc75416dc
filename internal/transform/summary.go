package transform

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/quarrylabs/quarry/internal/drill"
)

// Summary holds the headline statistics exposed alongside processed data.
// Computed over the post-filter, post-virtualization node set.
type Summary struct {
	Count   int     `json:"count"`
	Sum     float64 `json:"sum"`
	Average float64 `json:"average"`
}

// Summarize computes count, sum, and average over a node set.
func Summarize(nodes []drill.Node) Summary {
	s := Summary{Count: len(nodes)}
	for _, n := range nodes {
		s.Sum += n.Value
	}
	if s.Count > 0 {
		s.Average = s.Sum / float64(s.Count)
	}
	return s
}

// AggregateValue combines node values per the given aggregation.
// An empty input yields 0 for every aggregation.
func AggregateValue(nodes []drill.Node, agg Aggregation) float64 {
	if len(nodes) == 0 {
		return 0
	}
	switch agg {
	case AggCount:
		return float64(len(nodes))
	case AggAvg:
		return Summarize(nodes).Sum / float64(len(nodes))
	case AggMax:
		m := math.Inf(-1)
		for _, n := range nodes {
			if n.Value > m {
				m = n.Value
			}
		}
		return m
	case AggMin:
		m := math.Inf(1)
		for _, n := range nodes {
			if n.Value < m {
				m = n.Value
			}
		}
		return m
	default: // AggSum and anything unrecognized
		return Summarize(nodes).Sum
	}
}

// Bucket is one time-grouped aggregate produced by GroupByPeriod.
type Bucket struct {
	Label string       `json:"label"`
	Start time.Time    `json:"start"`
	Value float64      `json:"value"`
	Nodes []drill.Node `json:"-"`
}

// GroupByPeriod buckets nodes by their timestamp's day, ISO week, month, or
// quarter, aggregating each bucket's values per agg. Nodes with a zero
// timestamp are skipped. Buckets are returned in chronological order.
func GroupByPeriod(nodes []drill.Node, g Grouping, agg Aggregation) []Bucket {
	byStart := make(map[time.Time][]drill.Node)
	for _, n := range nodes {
		if n.Timestamp.IsZero() {
			continue
		}
		start := bucketStart(n.Timestamp, g)
		byStart[start] = append(byStart[start], n)
	}

	buckets := make([]Bucket, 0, len(byStart))
	for start, members := range byStart {
		buckets = append(buckets, Bucket{
			Label: bucketLabel(start, g),
			Start: start,
			Value: AggregateValue(members, agg),
			Nodes: members,
		})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Start.Before(buckets[j].Start) })
	return buckets
}

func bucketStart(t time.Time, g Grouping) time.Time {
	t = t.UTC()
	switch g {
	case GroupDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case GroupWeek:
		// ISO week: roll back to Monday.
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case GroupQuarter:
		q := (int(t.Month()) - 1) / 3
		return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	default: // GroupMonth
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

func bucketLabel(start time.Time, g Grouping) string {
	switch g {
	case GroupDay:
		return start.Format("2006-01-02")
	case GroupWeek:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GroupQuarter:
		return fmt.Sprintf("%d-Q%d", start.Year(), (int(start.Month())-1)/3+1)
	default:
		return start.Format("Jan-2006")
	}
}
