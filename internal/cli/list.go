package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/weftlabs/weft/internal/app"
	"github.com/weftlabs/weft/internal/task"
)

// newListCommand creates the list command.
func newListCommand() *cobra.Command {
	var opts struct {
		File string
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List declared tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := app.New(app.Options{ConfigPath: opts.File, NoReport: true})
			if err != nil {
				return err
			}
			defer func() { _ = c.Logger.Close() }()

			if err := c.Registry.ResolveAll(); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDEPS\tBODY\tOPTIONS")
			for _, t := range c.Registry.Tasks() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					t.Name,
					strings.Join(t.DepNames(), ", "),
					bodyKind(t),
					optionsColumn(t),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "taskfile path (default weft.toml)")
	return cmd
}

func bodyKind(t *task.Task) string {
	if t.IsBarrier() {
		return "barrier"
	}
	return "body"
}

func optionsColumn(t *task.Task) string {
	var parts []string
	if t.RunOnce {
		parts = append(parts, "run-once")
	}
	if len(t.WatchGlobs) > 0 {
		parts = append(parts, "watch")
	}
	if t.Schedule != "" {
		parts = append(parts, "cron")
	}
	return strings.Join(parts, ", ")
}
