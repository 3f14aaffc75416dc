package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// validationResult is the JSON payload of the validate command.
type validationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dashboard.cue>",
		Short: "Validate a dashboard spec",
		Long: `Validate a CUE dashboard spec without rendering anything.

Checks syntax, schema conformance (chart kind, filter enums, value ranges),
and kind/style consistency. Fast feedback while editing specs.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if err := checkExists(formatter, path, "dashboard spec"); err != nil {
		return err
	}

	dashboard, errs := LoadDashboard(path)
	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		if formatter.Format == "json" {
			if err := formatter.emit(Response{
				Status: "error",
				Error:  &ResponseError{Code: ErrCodeBadSpec, Message: "dashboard spec invalid", Details: validationResult{Errors: msgs}},
			}); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(formatter.Writer, "✗ %d validation error(s)\n", len(msgs))
			for _, m := range msgs {
				fmt.Fprintf(formatter.Writer, "  - %s\n", m)
			}
		}
		return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("%s: dashboard spec invalid", ErrCodeBadSpec)}
	}

	formatter.VerboseLog("loaded dashboard %q (kind=%s, levels=%d)",
		dashboard.Name, dashboard.Config.Style.Kind(), len(dashboard.Config.DrillDownLevels))

	return formatter.Success(validationResult{Valid: true}, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s is valid\n", path)
	})
}
