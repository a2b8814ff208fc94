// Package engine bridges the task registry to the scheduler: it resolves the
// graph, emits the diagram, forwards lifecycle events into state transitions,
// and debounces the finish notification.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/weftlabs/weft/internal/task"
)

// Reporter renders a snapshot of all task states on every transition.
type Reporter interface {
	Report(snapshot []task.Snapshot)
}

// GraphEmitter writes the resolved dependency graph somewhere visible.
type GraphEmitter interface {
	Emit(snapshot []task.Snapshot) error
}

// DefaultQuietPeriod is the debounce window for the finish callback.
const DefaultQuietPeriod = 250 * time.Millisecond

// Option configures an Engine.
type Option func(*Engine)

// WithReporter attaches a console reporter.
func WithReporter(r Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// WithGraphEmitter attaches a graph emitter, invoked once at start.
func WithGraphEmitter(g GraphEmitter) Option {
	return func(e *Engine) { e.graph = g }
}

// WithOnFinish registers a callback fired, debounced by the quiet period,
// whenever no task in the registry is running. It may fire multiple times
// across the process lifetime as triggers re-activate tasks.
func WithOnFinish(fn func()) Option {
	return func(e *Engine) { e.onFinish = fn }
}

// WithQuietPeriod overrides the finish debounce window.
func WithQuietPeriod(d time.Duration) Option {
	return func(e *Engine) { e.quiet = d }
}

// WithClock injects a clock for tests.
func WithClock(c task.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger injects a logger.
func WithLogger(l task.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine drives a registry through a scheduler and tracks lifecycle state.
type Engine struct {
	registry *task.Registry
	sched    task.Scheduler
	reporter Reporter
	graph    GraphEmitter
	onFinish func()
	clock    task.Clock
	logger   task.Logger
	quiet    time.Duration

	mu          sync.Mutex
	started     bool
	finishTimer *time.Timer
}

var _ task.Listener = (*Engine)(nil)

// New creates an Engine over the given registry and scheduler.
func New(registry *task.Registry, sched task.Scheduler, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		sched:    sched,
		clock:    task.SystemClock{},
		logger:   nopLogger{},
		quiet:    DefaultQuietPeriod,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start resolves the registry, emits the graph if configured, hands every
// resolved task to the scheduler, and runs the graph reachable from targets
// (all tasks if empty). It returns once every scheduled task has reached a
// terminal state. Start is one-shot.
func (e *Engine) Start(ctx context.Context, targets ...string) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return task.ErrAlreadyStarted
	}
	e.started = true
	e.mu.Unlock()

	if err := e.registry.ResolveAll(); err != nil {
		return err
	}
	e.logger.Info("", "engine", fmt.Sprintf("resolved %d tasks", e.registry.Len()))

	if e.graph != nil {
		if err := e.graph.Emit(e.registry.Snapshots()); err != nil {
			return err
		}
	}

	for _, t := range e.registry.Tasks() {
		if err := e.sched.Add(t.Name, t.DepNames(), t.Runner()); err != nil {
			return err
		}
	}

	e.report()
	return e.sched.Run(ctx, targets, e)
}

// Reactivate re-runs a single task's completion wrapper outside the dependency
// graph. Watch and cron triggers go through here; dependency precedence is
// established once, at start, and is not re-validated per activation.
func (e *Engine) Reactivate(ctx context.Context, name string) error {
	t, ok := e.registry.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", task.ErrUnknownTask, name)
	}

	e.TaskStarted(name)
	res, err := t.Runner()(ctx)
	if err == nil {
		err = res.Await(ctx)
	}
	if err != nil {
		e.TaskErrored(name, err)
		return err
	}
	e.TaskStopped(name)
	return nil
}

// TaskStarted marks the task running and stamps its start time.
func (e *Engine) TaskStarted(name string) {
	t, ok := e.registry.Get(name)
	if !ok {
		return
	}
	t.MarkStarted(e.clock.Now())
	e.logger.Info(name, "lifecycle", "started")
	e.report()
}

// TaskStopped marks the task done. A stop for a task that is already done is
// ignored; the scheduler can fire completion twice for the same activation.
func (e *Engine) TaskStopped(name string) {
	t, ok := e.registry.Get(name)
	if !ok {
		return
	}
	if !t.MarkDone(e.clock.Now()) {
		return
	}
	e.logger.Info(name, "lifecycle", "done")
	e.report()
	e.scheduleFinishCheck()
}

// TaskErrored marks the task failed. No retry happens here; propagation
// beyond state marking is the caller's responsibility.
func (e *Engine) TaskErrored(name string, err error) {
	t, ok := e.registry.Get(name)
	if !ok {
		return
	}
	t.MarkError(e.clock.Now())
	e.logger.Error(name, "lifecycle", err.Error())
	e.report()
	e.scheduleFinishCheck()
}

func (e *Engine) report() {
	if e.reporter != nil {
		e.reporter.Report(e.registry.Snapshots())
	}
}

// scheduleFinishCheck arms (or re-arms) the quiet-period timer so that rapid
// bursts of stop events collapse into a single finish notification.
func (e *Engine) scheduleFinishCheck() {
	if e.onFinish == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.finishTimer != nil {
		e.finishTimer.Stop()
	}
	e.finishTimer = time.AfterFunc(e.quiet, func() {
		if e.registry.AnyRunning() {
			return
		}
		e.onFinish()
	})
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, string) {}
func (nopLogger) Info(string, string, string)  {}
func (nopLogger) Warn(string, string, string)  {}
func (nopLogger) Error(string, string, string) {}
