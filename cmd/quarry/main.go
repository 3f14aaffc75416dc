// Command quarry explores aggregated datasets from the terminal: validate
// dashboard specs, render snapshots, and replay scripted drill-down sessions.
package main

import (
	"os"

	"github.com/quarrylabs/quarry/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
