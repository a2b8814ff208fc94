// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/engine"
	"github.com/weftlabs/weft/internal/graph"
	"github.com/weftlabs/weft/internal/logging"
	"github.com/weftlabs/weft/internal/reporter"
	"github.com/weftlabs/weft/internal/scheduler"
	"github.com/weftlabs/weft/internal/shell"
	"github.com/weftlabs/weft/internal/task"
)

// ScriptRunner executes a shell task body.
type ScriptRunner interface {
	Run(ctx context.Context, script string) error
}

// Options configures container construction.
type Options struct {
	// ConfigPath is the taskfile to load.
	ConfigPath string
	// GraphPath overrides the taskfile's graph output path.
	GraphPath string
	// NoReport disables the live console reporter.
	NoReport bool
	// OnFinish is invoked, debounced, whenever no task is running.
	OnFinish func()
	// ReporterOut is where the reporter draws; defaults to stdout.
	ReporterOut io.Writer
}

// Container wires the registry, engine, reporter, and logger together.
type Container struct {
	Config   *config.File
	Registry *task.Registry
	Engine   *engine.Engine
	Reporter *reporter.Reporter
	Logger   *logging.Logger
	// Dir is the taskfile's directory; relative paths resolve against it.
	Dir string
}

// New loads the taskfile and builds the full object graph.
func New(opts Options) (*Container, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultFileName
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(abs)

	logger := logging.New(filepath.Join(dir, ".weft"), logging.ParseLevel(cfg.LogLevel))

	registry := task.NewRegistry()
	runner := &shell.Runner{Dir: dir}
	if err := declareAll(registry, cfg.Tasks, runner, dir); err != nil {
		return nil, err
	}

	quiet, err := cfg.Quiet(engine.DefaultQuietPeriod)
	if err != nil {
		return nil, err
	}

	engOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithQuietPeriod(quiet),
	}

	graphPath := opts.GraphPath
	if graphPath == "" {
		graphPath = cfg.Graph
	}
	if graphPath != "" {
		engOpts = append(engOpts, engine.WithGraphEmitter(&graph.Emitter{OutPath: resolve(dir, graphPath)}))
	}

	var rep *reporter.Reporter
	if !opts.NoReport {
		out := opts.ReporterOut
		if out == nil {
			out = os.Stdout
		}
		rep = reporter.New(out, task.SystemClock{})
		engOpts = append(engOpts, engine.WithReporter(rep))
	}

	onFinish := opts.OnFinish
	engOpts = append(engOpts, engine.WithOnFinish(func() {
		logger.Info("", "engine", "all tasks finished")
		if onFinish != nil {
			onFinish()
		}
	}))

	eng := engine.New(registry, scheduler.New(), engOpts...)

	return &Container{
		Config:   cfg,
		Registry: registry,
		Engine:   eng,
		Reporter: rep,
		Logger:   logger,
		Dir:      dir,
	}, nil
}

// resolve joins a taskfile-relative path against the taskfile directory.
func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
