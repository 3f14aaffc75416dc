package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/quarrylabs/quarry/internal/chart"
	"github.com/quarrylabs/quarry/internal/transform"
)

// Error codes reported in JSON output.
const (
	ErrCodeNotFound = "E001" // file or directory missing
	ErrCodeBadSpec  = "E002" // dashboard spec failed validation
	ErrCodeBadData  = "E003" // dataset unreadable or empty
	ErrCodeSession  = "E004" // session script invalid
)

// checkExists reports a missing input file as a command error before any
// parsing is attempted, so missing-file and invalid-content failures carry
// distinct codes.
func checkExists(f *Formatter, path, what string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("%s not found: %s", what, path), nil)
		}
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("%s unreadable: %v", what, err), nil)
	}
	return nil
}

// dashboardSchema constrains dashboard spec files. Specs are unified with
// this schema before decoding, so defaults apply and violations carry CUE
// positions.
const dashboardSchema = `
#Dashboard: {
	name: string & !=""

	chart: {
		kind: "line" | "area" | "bar" | "pie" | "scatter"
		line?: {
			smooth:      bool | *false
			strokeWidth: int & >=0 | *2
			showPoints:  bool | *false
		}
		area?: {
			stacked: bool | *false
			opacity: number & >=0 & <=1 | *0.6
		}
		bar?: {
			horizontal: bool | *false
			barGap:     int & >=0 | *4
		}
		pie?: {
			innerRadius: number & >=0 & <1 | *0
			showLabels:  bool | *true
		}
		scatter?: {
			pointSize:     int & >=0 | *4
			showTrendline: bool | *false
		}
	}

	levels: [...string] | *[]
	interactive:   bool | *true
	virtualize:    bool | *false
	maxDataPoints: int & >0 | *1000

	filter: {
		valueRange:   [number & >=0 & <=100, number & >=0 & <=100] | *[0, 100]
		aggregation:  "sum" | "avg" | "count" | "max" | "min" | *"sum"
		showOutliers: bool | *true
		groupBy:      "day" | "week" | "month" | "quarter" | *"month"
	}
}

dashboard: #Dashboard
`

// Dashboard is a fully resolved dashboard spec: the chart configuration,
// the initial filter, and the dataset identity.
type Dashboard struct {
	Name   string
	Config chart.Config
	Filter transform.FilterConfig
}

// dashboardDoc mirrors the CUE shape for decoding.
type dashboardDoc struct {
	Name  string `json:"name"`
	Chart struct {
		Kind    string              `json:"kind"`
		Line    *chart.LineStyle    `json:"line"`
		Area    *chart.AreaStyle    `json:"area"`
		Bar     *chart.BarStyle     `json:"bar"`
		Pie     *chart.PieStyle     `json:"pie"`
		Scatter *chart.ScatterStyle `json:"scatter"`
	} `json:"chart"`
	Levels        []string `json:"levels"`
	Interactive   bool     `json:"interactive"`
	Virtualize    bool     `json:"virtualize"`
	MaxDataPoints int      `json:"maxDataPoints"`
	Filter        struct {
		ValueRange   [2]float64 `json:"valueRange"`
		Aggregation  string     `json:"aggregation"`
		ShowOutliers bool       `json:"showOutliers"`
		GroupBy      string     `json:"groupBy"`
	} `json:"filter"`
}

// LoadDashboard reads, validates, and resolves a dashboard spec file.
// Validation errors are returned as a list so callers can report all of
// them at once.
func LoadDashboard(path string) (*Dashboard, []error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, []error{fmt.Errorf("dashboard spec not found: %s", path)}
		}
		return nil, []error{fmt.Errorf("read dashboard spec: %w", err)}
	}

	cuectx := cuecontext.New()
	schema := cuectx.CompileString(dashboardSchema)
	if err := schema.Err(); err != nil {
		return nil, []error{fmt.Errorf("internal schema error: %w", err)}
	}

	value := cuectx.CompileBytes(raw, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, cueErrList(err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueErrList(err)
	}

	var doc dashboardDoc
	if err := unified.LookupPath(cue.ParsePath("dashboard")).Decode(&doc); err != nil {
		return nil, cueErrList(err)
	}

	return resolveDashboard(doc)
}

// cueErrList flattens a CUE error into one error per position.
func cueErrList(err error) []error {
	var errs []error
	for _, e := range cueerrors.Errors(err) {
		errs = append(errs, fmt.Errorf("%s", cueerrors.Details(e, nil)))
	}
	if len(errs) == 0 {
		errs = []error{err}
	}
	return errs
}

// resolveDashboard converts the decoded document into runtime config.
// The style block must match the declared kind; a mismatch (kind: "bar"
// with only a pie block) is a spec error, not a silent default.
func resolveDashboard(doc dashboardDoc) (*Dashboard, []error) {
	kind := chart.Kind(doc.Chart.Kind)
	style, err := chart.StyleFor(kind)
	if err != nil {
		return nil, []error{err}
	}

	blocks := map[chart.Kind]bool{
		chart.KindLine:    doc.Chart.Line != nil,
		chart.KindArea:    doc.Chart.Area != nil,
		chart.KindBar:     doc.Chart.Bar != nil,
		chart.KindPie:     doc.Chart.Pie != nil,
		chart.KindScatter: doc.Chart.Scatter != nil,
	}
	for k, present := range blocks {
		if present && k != kind {
			return nil, []error{fmt.Errorf("style block %q does not match chart kind %q", k, kind)}
		}
	}

	switch kind {
	case chart.KindLine:
		if doc.Chart.Line != nil {
			style = *doc.Chart.Line
		}
	case chart.KindArea:
		if doc.Chart.Area != nil {
			style = *doc.Chart.Area
		}
	case chart.KindBar:
		if doc.Chart.Bar != nil {
			style = *doc.Chart.Bar
		}
	case chart.KindPie:
		if doc.Chart.Pie != nil {
			style = *doc.Chart.Pie
		}
	case chart.KindScatter:
		if doc.Chart.Scatter != nil {
			style = *doc.Chart.Scatter
		}
	}

	if err := chart.ValidateStyle(style); err != nil {
		return nil, []error{err}
	}

	d := &Dashboard{
		Name: doc.Name,
		Config: chart.Config{
			Style:                style,
			NonInteractive:       !doc.Interactive,
			DrillDownLevels:      doc.Levels,
			MaxDataPoints:        doc.MaxDataPoints,
			VirtualizeDataPoints: doc.Virtualize,
		},
		Filter: transform.FilterConfig{
			ValueRangePercent: doc.Filter.ValueRange,
			Aggregation:       transform.Aggregation(doc.Filter.Aggregation),
			ShowOutliers:      doc.Filter.ShowOutliers,
			GroupBy:           transform.Grouping(doc.Filter.GroupBy),
		},
	}
	return d, nil
}
