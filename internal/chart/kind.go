// Package chart orchestrates the exploration pipeline into a ready-to-render
// dataset: it normalizes upstream records, forwards navigation commands to
// the drill state machine, runs the filter and virtualization pipeline on
// every state change, and exposes the result as an immutable snapshot.
package chart

import "fmt"

// Kind tags the chart family. The set is closed: every Style maps to
// exactly one Kind and dispatch is an exhaustive type switch, never
// property probing.
type Kind string

const (
	KindLine    Kind = "line"
	KindArea    Kind = "area"
	KindBar     Kind = "bar"
	KindPie     Kind = "pie"
	KindScatter Kind = "scatter"
)

// Style is the per-kind rendering configuration. The interface is sealed;
// the five concrete styles below are the only implementations.
type Style interface {
	Kind() Kind
}

// LineStyle configures line charts.
type LineStyle struct {
	Smooth      bool `json:"smooth"`
	StrokeWidth int  `json:"strokeWidth"`
	ShowPoints  bool `json:"showPoints"`
}

// AreaStyle configures area charts.
type AreaStyle struct {
	Stacked bool    `json:"stacked"`
	Opacity float64 `json:"opacity"`
}

// BarStyle configures bar charts.
type BarStyle struct {
	Horizontal bool `json:"horizontal"`
	BarGap     int  `json:"barGap"`
}

// PieStyle configures pie and donut charts.
type PieStyle struct {
	InnerRadius float64 `json:"innerRadius"`
	ShowLabels  bool    `json:"showLabels"`
}

// ScatterStyle configures scatter plots.
type ScatterStyle struct {
	PointSize     int  `json:"pointSize"`
	ShowTrendline bool `json:"showTrendline"`
}

func (LineStyle) Kind() Kind    { return KindLine }
func (AreaStyle) Kind() Kind    { return KindArea }
func (BarStyle) Kind() Kind     { return KindBar }
func (PieStyle) Kind() Kind     { return KindPie }
func (ScatterStyle) Kind() Kind { return KindScatter }

// ValidateStyle checks kind-specific constraints. The switch is exhaustive
// over the sealed style set.
func ValidateStyle(s Style) error {
	switch v := s.(type) {
	case LineStyle:
		if v.StrokeWidth < 0 {
			return fmt.Errorf("line: strokeWidth must be >= 0, got %d", v.StrokeWidth)
		}
	case AreaStyle:
		if v.Opacity < 0 || v.Opacity > 1 {
			return fmt.Errorf("area: opacity must be in [0,1], got %v", v.Opacity)
		}
	case BarStyle:
		if v.BarGap < 0 {
			return fmt.Errorf("bar: barGap must be >= 0, got %d", v.BarGap)
		}
	case PieStyle:
		if v.InnerRadius < 0 || v.InnerRadius >= 1 {
			return fmt.Errorf("pie: innerRadius must be in [0,1), got %v", v.InnerRadius)
		}
	case ScatterStyle:
		if v.PointSize < 0 {
			return fmt.Errorf("scatter: pointSize must be >= 0, got %d", v.PointSize)
		}
	case nil:
		return fmt.Errorf("style is required")
	default:
		return fmt.Errorf("unknown style type %T", s)
	}
	return nil
}

// StyleFor returns the zero style for a kind tag, used when decoding
// configuration files.
func StyleFor(kind Kind) (Style, error) {
	switch kind {
	case KindLine:
		return LineStyle{}, nil
	case KindArea:
		return AreaStyle{}, nil
	case KindBar:
		return BarStyle{}, nil
	case KindPie:
		return PieStyle{}, nil
	case KindScatter:
		return ScatterStyle{}, nil
	default:
		return nil, fmt.Errorf("unknown chart kind %q", kind)
	}
}
