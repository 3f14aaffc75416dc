// Package cli implements the quarry command line: loading dashboard specs,
// rendering snapshots, and replaying scripted exploration sessions.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// formatFlag validates at flag-parse time, so an unknown format fails
// before any command logic runs and shows up as a usage error.
type formatFlag string

func (f *formatFlag) String() string { return string(*f) }

func (f *formatFlag) Type() string { return "format" }

func (f *formatFlag) Set(v string) error {
	if !slices.Contains(ValidFormats, v) {
		return fmt.Errorf("must be one of %v", ValidFormats)
	}
	*f = formatFlag(v)
	return nil
}

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  formatFlag
}

// NewRootCommand creates the root command for the quarry CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Format: "text"}

	cmd := &cobra.Command{
		Use:   "quarry",
		Short: "Quarry - interactive data exploration",
		Long:  "Drill-down exploration of aggregated datasets: filter, downsample, and navigate hierarchical aggregates from the terminal.",
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().Var(&opts.Format, "format", "output format (json|text)")
	cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return ValidFormats, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewExploreCommand(opts))

	return cmd
}
