package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/chart"
)

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	var dashboardPath, dataPath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a dashboard snapshot",
		Long: `Render the overview snapshot of a dashboard over a dataset.

The dataset may be a YAML file with inline hierarchy or a SQLite database
produced by quarry ingestion. Output is the processed snapshot: filtered,
downsampled, and summarized.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(rootOpts, dashboardPath, dataPath, cmd)
		},
	}

	cmd.Flags().StringVar(&dashboardPath, "dashboard", "", "dashboard spec file (.cue)")
	cmd.Flags().StringVar(&dataPath, "data", "", "dataset file (.yaml or .db)")
	cmd.MarkFlagRequired("dashboard")
	cmd.MarkFlagRequired("data")

	return cmd
}

func runRender(opts *RootOptions, dashboardPath, dataPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if err := checkExists(formatter, dashboardPath, "dashboard spec"); err != nil {
		return err
	}
	if err := checkExists(formatter, dataPath, "dataset"); err != nil {
		return err
	}

	dash, errs := LoadDashboard(dashboardPath)
	if len(errs) > 0 {
		return formatter.Fail(ExitFailure, ErrCodeBadSpec, "dashboard spec invalid", errStrings(errs))
	}

	ctrl, cleanup, err := buildController(cmd.Context(), dash, dataPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadData, err.Error(), nil)
	}
	defer cleanup()

	snap := ctrl.Snapshot()
	formatter.VerboseLog("rendered %q: %d points at level %d", dash.Name, len(snap.Data), snap.Level)

	return formatter.Success(snap, func(w io.Writer) {
		writeSnapshotText(w, dash.Name, snap)
	})
}

func errStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

// writeSnapshotText renders a snapshot as a plain-text table with a
// breadcrumb trail header and a summary footer.
func writeSnapshotText(w io.Writer, title string, snap chart.Snapshot) {
	trail := make([]string, len(snap.Breadcrumbs))
	for i, crumb := range snap.Breadcrumbs {
		trail[i] = crumb.Name
	}
	fmt.Fprintf(w, "%s [%s] %s\n", title, snap.Kind, strings.Join(trail, " > "))

	if snap.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", snap.Error)
	}
	if snap.Loading {
		fmt.Fprintln(w, "  loading...")
	}

	for _, node := range snap.Data {
		fmt.Fprintf(w, "  %-24s %12.2f  %s\n", node.Name, node.Value, node.Category)
	}
	fmt.Fprintf(w, "  count=%d sum=%.2f avg=%.2f\n",
		snap.Summary.Count, snap.Summary.Sum, snap.Summary.Average)
}
