package app

import (
	"context"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/stream"
	"github.com/weftlabs/weft/internal/task"
)

// declareAll records every taskfile definition in the registry, in
// declaration order. Nested sub-task definitions become sub-task dependency
// objects, so they pick up the "<parent>." prefix from the registry.
func declareAll(registry *task.Registry, defs []config.TaskDef, runner ScriptRunner, dir string) error {
	for i := range defs {
		opts, err := taskOptions(&defs[i], runner, dir)
		if err != nil {
			return err
		}
		if _, err := registry.Declare(defs[i].Name, opts...); err != nil {
			return err
		}
	}
	return nil
}

func taskOptions(def *config.TaskDef, runner ScriptRunner, dir string) ([]task.Option, error) {
	var refs []task.Ref
	for _, d := range def.Deps {
		refs = append(refs, task.Dep(d))
	}
	for i := range def.Tasks {
		subOpts, err := taskOptions(&def.Tasks[i], runner, dir)
		if err != nil {
			return nil, err
		}
		refs = append(refs, task.Sub(task.New(def.Tasks[i].Name, subOpts...)))
	}

	var opts []task.Option
	if len(refs) > 0 {
		opts = append(opts, task.WithDeps(refs...))
	}

	body, err := buildBody(def, runner, dir)
	if err != nil {
		return nil, err
	}
	if body != nil {
		opts = append(opts, task.WithBody(body))
	}

	if def.RunOnce {
		opts = append(opts, task.WithRunOnce())
	}
	if len(def.Watch) > 0 {
		opts = append(opts, task.WithWatch(resolveAll(dir, def.Watch)...))
	}
	if def.Schedule != "" {
		opts = append(opts, task.WithSchedule(def.Schedule))
	}
	return opts, nil
}

// buildBody constructs the task body from its definition: a shell script
// surfaces as a deferred result, a pipeline as a stream the wrapper picks up
// from the task. Transform names are resolved here, at startup, so a bad
// taskfile fails before anything runs.
func buildBody(def *config.TaskDef, runner ScriptRunner, dir string) (task.Body, error) {
	switch {
	case def.Run != "":
		script := def.Run
		return func(_ context.Context, _ *task.Task) (task.Result, error) {
			return task.DeferredResult(func(ctx context.Context) error {
				return runner.Run(ctx, script)
			}), nil
		}, nil

	case def.Pipeline != nil:
		tfs, err := stream.LookupAll(def.Pipeline.Transforms)
		if err != nil {
			return nil, err
		}
		src := resolveAll(dir, def.Pipeline.Src)
		dest := def.Pipeline.Dest
		if dest != "" {
			dest = resolve(dir, dest)
		}
		return func(_ context.Context, t *task.Task) (task.Result, error) {
			t.Read(src...)
			for _, tf := range tfs {
				t.Pipe(tf)
			}
			if dest != "" {
				t.Write(dest)
			}
			return task.NoResult(), nil
		}, nil

	default:
		return nil, nil // barrier task
	}
}

func resolveAll(dir string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, resolve(dir, p))
	}
	return out
}
