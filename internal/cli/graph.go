package cli

import (
	"github.com/spf13/cobra"
	"github.com/weftlabs/weft/internal/app"
	"github.com/weftlabs/weft/internal/graph"
)

// newGraphCommand creates the graph command.
func newGraphCommand() *cobra.Command {
	var opts struct {
		File string
		Out  string
	}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the dependency graph without running tasks",
		Long: `Resolve the task graph and render it to a file. The output format is
derived from the file extension: .dot and .gv write Graphviz text
directly, anything else is passed to the dot renderer (-Tsvg, -Tpng, ...).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := app.New(app.Options{ConfigPath: opts.File, NoReport: true})
			if err != nil {
				return err
			}
			defer func() { _ = c.Logger.Close() }()

			if err := c.Registry.ResolveAll(); err != nil {
				return err
			}

			emitter := &graph.Emitter{OutPath: opts.Out}
			return emitter.Emit(c.Registry.Snapshots())
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "taskfile path (default weft.toml)")
	cmd.Flags().StringVarP(&opts.Out, "output", "o", "graph.svg", "output path; extension selects the format")
	return cmd
}
