package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/quarrylabs/quarry/internal/chart"
	"github.com/quarrylabs/quarry/internal/drill"
	"github.com/quarrylabs/quarry/internal/transform"
)

// sessionStep is one scripted exploration action. Exactly one directive
// must be set per step.
type sessionStep struct {
	// Drill descends into the node with this display name at the current level.
	Drill string `yaml:"drill,omitempty"`

	// Breadcrumb jumps back to the crumb with this path. A present-but-empty
	// list is the overview, so the field is a pointer to distinguish "jump to
	// overview" from "not set".
	Breadcrumb *[]string `yaml:"breadcrumb,omitempty"`

	// Reset returns to the overview level.
	Reset bool `yaml:"reset,omitempty"`

	// Filter replaces the filter configuration. Omitted fields fall back to
	// the dashboard's initial filter.
	Filter *filterStep `yaml:"filter,omitempty"`
}

type filterStep struct {
	ValueRange   *[2]float64 `yaml:"valueRange,omitempty"`
	Aggregation  *string     `yaml:"aggregation,omitempty"`
	ShowOutliers *bool       `yaml:"showOutliers,omitempty"`
	GroupBy      *string     `yaml:"groupBy,omitempty"`
}

type sessionScript struct {
	Steps []sessionStep `yaml:"steps"`
}

// NewExploreCommand creates the explore command.
func NewExploreCommand(rootOpts *RootOptions) *cobra.Command {
	var dashboardPath, dataPath, sessionPath string

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Replay a scripted exploration session",
		Long: `Replay a YAML session script against a dashboard and dataset,
then print the resulting snapshot.

Steps drill into nodes by display name, jump back along the breadcrumb
trail, reset to the overview, or change the filter. Navigation that is
not possible at the current position is ignored, matching interactive
behavior.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplore(rootOpts, dashboardPath, dataPath, sessionPath, cmd)
		},
	}

	cmd.Flags().StringVar(&dashboardPath, "dashboard", "", "dashboard spec file (.cue)")
	cmd.Flags().StringVar(&dataPath, "data", "", "dataset file (.yaml or .db)")
	cmd.Flags().StringVar(&sessionPath, "session", "", "session script file (.yaml)")
	cmd.MarkFlagRequired("dashboard")
	cmd.MarkFlagRequired("data")
	cmd.MarkFlagRequired("session")

	return cmd
}

func runExplore(opts *RootOptions, dashboardPath, dataPath, sessionPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if err := checkExists(formatter, dashboardPath, "dashboard spec"); err != nil {
		return err
	}
	if err := checkExists(formatter, dataPath, "dataset"); err != nil {
		return err
	}
	if err := checkExists(formatter, sessionPath, "session script"); err != nil {
		return err
	}

	dash, errs := LoadDashboard(dashboardPath)
	if len(errs) > 0 {
		return formatter.Fail(ExitFailure, ErrCodeBadSpec, "dashboard spec invalid", errStrings(errs))
	}

	script, err := loadSession(sessionPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSession, err.Error(), nil)
	}

	ctrl, cleanup, err := buildController(cmd.Context(), dash, dataPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadData, err.Error(), nil)
	}
	defer cleanup()

	for i, step := range script.Steps {
		if err := applyStep(cmd.Context(), ctrl, dash.Filter, step); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeSession,
				fmt.Sprintf("step %d: %v", i+1, err), nil)
		}
		formatter.VerboseLog("step %d applied: level=%d", i+1, ctrl.Snapshot().Level)
	}

	snap := ctrl.Snapshot()
	return formatter.Success(snap, func(w io.Writer) {
		writeSnapshotText(w, dash.Name, snap)
	})
}

func loadSession(path string) (*sessionScript, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session script not found: %s", path)
		}
		return nil, fmt.Errorf("read session script: %w", err)
	}

	var script sessionScript
	if err := yaml.Unmarshal(raw, &script); err != nil {
		return nil, fmt.Errorf("parse session script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("session script has no steps: %s", path)
	}
	for i, step := range script.Steps {
		if n := step.directives(); n != 1 {
			return nil, fmt.Errorf("step %d: want exactly one directive, got %d", i+1, n)
		}
	}
	return &script, nil
}

func (s sessionStep) directives() int {
	n := 0
	if s.Drill != "" {
		n++
	}
	if s.Breadcrumb != nil {
		n++
	}
	if s.Reset {
		n++
	}
	if s.Filter != nil {
		n++
	}
	return n
}

// applyStep translates one script step into a controller action. Drill steps
// address nodes by display name and resolve the ID against the current
// snapshot; an unknown name is an error (unlike an unknown ID inside the
// navigator, which is a silent no-op, a typo in a script should not pass).
func applyStep(ctx context.Context, ctrl *chart.Controller, base transform.FilterConfig, step sessionStep) error {
	switch {
	case step.Drill != "":
		id, ok := nodeIDByName(ctrl.Snapshot().Data, step.Drill)
		if !ok {
			return fmt.Errorf("no node named %q at current level", step.Drill)
		}
		return ctrl.Handle(ctx, drill.DrillInto{NodeID: id})

	case step.Breadcrumb != nil:
		return ctrl.Handle(ctx, drill.NavigateToBreadcrumb{Path: *step.Breadcrumb})

	case step.Reset:
		return ctrl.Handle(ctx, drill.Reset{})

	case step.Filter != nil:
		ctrl.SetFilter(mergeFilter(base, *step.Filter))
		return nil
	}
	return fmt.Errorf("empty step")
}

func nodeIDByName(nodes []drill.Node, name string) (string, bool) {
	for _, n := range nodes {
		if n.Name == name {
			return n.ID, true
		}
	}
	return "", false
}

func mergeFilter(base transform.FilterConfig, step filterStep) transform.FilterConfig {
	out := base
	if step.ValueRange != nil {
		out.ValueRangePercent = *step.ValueRange
	}
	if step.Aggregation != nil {
		out.Aggregation = transform.Aggregation(*step.Aggregation)
	}
	if step.ShowOutliers != nil {
		out.ShowOutliers = *step.ShowOutliers
	}
	if step.GroupBy != nil {
		out.GroupBy = transform.Grouping(*step.GroupBy)
	}
	return out
}
