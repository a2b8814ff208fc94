// Package trigger re-activates tasks from external events: filesystem
// changes and cron schedules. Both are pass-throughs into the engine's
// re-activation path.
package trigger

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/weftlabs/weft/internal/task"
)

// Activator re-runs a single task's completion wrapper.
type Activator interface {
	Reactivate(ctx context.Context, name string) error
}

type watchRule struct {
	pattern  string
	taskName string
}

// Watcher maps filesystem events onto task re-activations.
type Watcher struct {
	fw     *fsnotify.Watcher
	act    Activator
	logger task.Logger
	rules  []watchRule
	dirs   map[string]bool
}

// NewWatcher creates a Watcher delivering re-activations to act.
func NewWatcher(act Activator, logger task.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fw: fw, act: act, logger: logger, dirs: make(map[string]bool)}, nil
}

// Add registers glob patterns that re-trigger the named task. The pattern's
// directory is watched; events are matched against the full pattern.
func (w *Watcher) Add(taskName string, globs []string) error {
	for _, pattern := range globs {
		dir := filepath.Dir(pattern)
		if !w.dirs[dir] {
			if err := w.fw.Add(dir); err != nil {
				return err
			}
			w.dirs[dir] = true
		}
		w.rules = append(w.rules, watchRule{pattern: pattern, taskName: taskName})
	}
	return nil
}

// Run consumes filesystem events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.dispatch(ctx, ev.Name)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("", "watch", err.Error())
		}
	}
}

func (w *Watcher) dispatch(ctx context.Context, path string) {
	for _, name := range matchRules(w.rules, path) {
		w.logger.Info(name, "watch", "change detected: "+path)
		go func(name string) {
			if err := w.act.Reactivate(ctx, name); err != nil {
				w.logger.Error(name, "watch", err.Error())
			}
		}(name)
	}
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

// matchRules returns the task names whose patterns match path, each at most
// once, in rule registration order.
func matchRules(rules []watchRule, path string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, r := range rules {
		if seen[r.taskName] {
			continue
		}
		if matchPattern(r.pattern, path) {
			seen[r.taskName] = true
			names = append(names, r.taskName)
		}
	}
	return names
}

// matchPattern matches path against the glob, falling back to base-name
// matching so that events carrying absolute paths still hit relative globs.
func matchPattern(pattern, path string) bool {
	if ok, err := filepath.Match(pattern, path); err == nil && ok {
		return true
	}
	ok, err := filepath.Match(filepath.Base(pattern), filepath.Base(path))
	return err == nil && ok
}
