package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/weftlabs/weft/internal/app"
	"github.com/weftlabs/weft/internal/trigger"
)

// newRunCommand creates the run command.
func newRunCommand() *cobra.Command {
	var opts struct {
		File     string
		Graph    string
		Watch    bool
		NoReport bool
	}

	cmd := &cobra.Command{
		Use:   "run [task...]",
		Short: "Run tasks and their dependencies",
		Long: `Run the named tasks after their dependencies, in parallel where the
graph allows. With no arguments the task named "default" runs if it
exists, otherwise every declared task runs.

With --watch, weft keeps running after the first pass and re-triggers
tasks whose watch globs or cron schedules fire.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.New(app.Options{
				ConfigPath:  opts.File,
				GraphPath:   opts.Graph,
				NoReport:    opts.NoReport,
				ReporterOut: cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			defer func() { _ = c.Logger.Close() }()

			targets := args
			if len(targets) == 0 {
				if _, ok := c.Registry.Get("default"); ok {
					targets = []string{"default"}
				}
			}

			if c.Reporter != nil {
				c.Reporter.Start()
				defer c.Reporter.Stop()
			}

			if !opts.Watch {
				return c.Engine.Start(cmd.Context(), targets...)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := c.Engine.Start(ctx, targets...); err != nil {
				return err
			}

			watcher, cron, err := setupTriggers(c)
			if err != nil {
				return err
			}
			if watcher != nil {
				defer func() { _ = watcher.Close() }()
				go func() { _ = watcher.Run(ctx) }()
			}
			if cron != nil {
				cron.Start()
				defer cron.Stop()
			}

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "taskfile path (default weft.toml)")
	cmd.Flags().StringVarP(&opts.Graph, "graph", "g", "", "write the dependency graph to this path before running")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "keep running and re-trigger tasks on changes")
	cmd.Flags().BoolVar(&opts.NoReport, "no-report", false, "disable the live console reporter")
	return cmd
}

// setupTriggers wires watch globs and cron schedules from the resolved
// registry. Returns nils when no task declares any.
func setupTriggers(c *app.Container) (*trigger.Watcher, *trigger.Cron, error) {
	var watcher *trigger.Watcher
	var cron *trigger.Cron

	for _, t := range c.Registry.Tasks() {
		if len(t.WatchGlobs) > 0 {
			if watcher == nil {
				w, err := trigger.NewWatcher(c.Engine, c.Logger)
				if err != nil {
					return nil, nil, fmt.Errorf("create watcher: %w", err)
				}
				watcher = w
			}
			if err := watcher.Add(t.Name, t.WatchGlobs); err != nil {
				return nil, nil, fmt.Errorf("watch %q: %w", t.Name, err)
			}
		}
		if t.Schedule != "" {
			if cron == nil {
				cron = trigger.NewCron(c.Engine, c.Logger)
			}
			if err := cron.Add(t.Name, t.Schedule); err != nil {
				return nil, nil, fmt.Errorf("schedule %q: %w", t.Name, err)
			}
		}
	}
	return watcher, cron, nil
}
