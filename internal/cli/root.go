// Package cli provides the command-line interface for weft.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for weft.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "weft",
		Short: "Stream-oriented build task orchestrator",
		Long: `weft orchestrates named, interdependent build tasks declared in a
taskfile (weft.toml or weft.yaml). Independent tasks run concurrently,
dependents wait for their dependencies, and the resolved dependency
graph can be rendered as a diagram.

Task bodies are either shell scripts or file pipelines (source globs
flowing through named transforms into a destination). Tasks can be
re-triggered by file watches or cron schedules.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
	}

	root.AddCommand(
		newRunCommand(),
		newListCommand(),
		newGraphCommand(),
	)
	return root
}
