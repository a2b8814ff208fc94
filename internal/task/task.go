// Package task contains the core task graph model: tasks, their lifecycle
// state machine, the registry that resolves dependency references, and the
// ports the orchestration engine drives them through.
package task

import (
	"context"
	"sync"
	"time"

	"github.com/weftlabs/weft/internal/stream"
)

// Body is the user-supplied work of a task. It may build a pipeline through
// the task's fluent ops (in which case the returned Result is ignored in
// favor of the live stream) or return a deferred result of its own.
type Body func(ctx context.Context, t *Task) (Result, error)

// Ref refers to a dependency either by name or as a nested sub-task object.
// The zero Ref is silently dropped during declaration.
type Ref struct {
	name string
	task *Task
}

// Dep refers to a dependency by its declared name.
func Dep(name string) Ref { return Ref{name: name} }

// Sub declares a nested sub-task as a dependency. Its name is prefixed with
// "<parent>." when the parent is declared.
func Sub(t *Task) Ref { return Ref{task: t} }

type dep struct {
	name string
	task *Task
}

// Task is a named unit of work with a dependency list, an optional body, and
// a mutable stream handle for the in-flight activation.
type Task struct {
	Name       string
	Body       Body
	RunOnce    bool
	WatchGlobs []string
	Schedule   string

	pendingRefs []Ref
	deps        []dep

	mu            sync.Mutex
	state         State
	stream        *stream.Pipeline
	startedAt     time.Time
	endedAt       time.Time
	completedOnce bool
}

// New creates an unregistered task. Standalone tasks are usually declared
// straight on a Registry; New exists for building sub-tasks passed via Sub.
func New(name string, opts ...Option) *Task {
	var d declaration
	for _, opt := range opts {
		opt(&d)
	}
	return &Task{
		Name:        name,
		Body:        d.body,
		RunOnce:     d.runOnce,
		WatchGlobs:  d.watch,
		Schedule:    d.schedule,
		pendingRefs: d.refs,
		state:       StateNotStarted,
	}
}

// Option configures a task at declaration time.
type Option func(*declaration)

type declaration struct {
	refs     []Ref
	body     Body
	watch    []string
	schedule string
	runOnce  bool
}

// WithDeps declares the task's dependencies in order.
func WithDeps(refs ...Ref) Option {
	return func(d *declaration) { d.refs = append(d.refs, refs...) }
}

// WithBody sets the task's body. A task without a body is a barrier that only
// groups its dependencies.
func WithBody(b Body) Option {
	return func(d *declaration) { d.body = b }
}

// WithRunOnce makes the body execute only on the task's first activation for
// the life of the process.
func WithRunOnce() Option {
	return func(d *declaration) { d.runOnce = true }
}

// WithWatch registers glob patterns whose changes re-trigger the task.
func WithWatch(globs ...string) Option {
	return func(d *declaration) { d.watch = append(d.watch, globs...) }
}

// WithSchedule registers a cron expression that re-triggers the task.
func WithSchedule(expr string) Option {
	return func(d *declaration) { d.schedule = expr }
}

// Read replaces the task's stream with a new source over the given globs.
// If a previous activation's stream has not signaled completion yet, the new
// source is held paused until it does, so only one input stream per task is
// ever active.
func (t *Task) Read(globs ...string) *Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	var opts []stream.SourceOption
	if t.stream != nil {
		opts = append(opts, stream.HoldUntil(t.stream.Done()))
	}
	t.stream = stream.Source(globs, opts...)
	return t
}

// ReadFrom is Read over an in-memory file set.
func (t *Task) ReadFrom(files []*stream.File) *Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	var opts []stream.SourceOption
	if t.stream != nil {
		opts = append(opts, stream.HoldUntil(t.stream.Done()))
	}
	t.stream = stream.FromFiles(files, opts...)
	return t
}

// Pipe chains a transform onto the task's current stream.
func (t *Task) Pipe(tf stream.Transform) *Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stream != nil {
		t.stream = t.stream.Pipe(tf)
	}
	return t
}

// Write chains a destination sink onto the task's current stream.
func (t *Task) Write(dest string) *Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stream != nil {
		t.stream = t.stream.To(dest)
	}
	return t
}

// On registers a handler on the task's current stream. Recognized events are
// "done" (handler receives nil) and "error".
func (t *Task) On(event string, fn func(error)) *Task {
	t.mu.Lock()
	s := t.stream
	t.mu.Unlock()
	if s == nil {
		return t
	}
	switch event {
	case "done", "end":
		s.OnDone(func() { fn(nil) })
	case "error":
		s.OnError(fn)
	}
	return t
}

// Stream returns the in-flight pipeline of the current activation, if any.
func (t *Task) Stream() *stream.Pipeline {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stream
}

// Runner returns the task's completion wrapper, the unit the scheduler
// invokes once all dependencies have completed.
func (t *Task) Runner() RunFunc {
	return t.runActivation
}

func (t *Task) runActivation(ctx context.Context) (Result, error) {
	t.mu.Lock()
	skip := t.RunOnce && t.completedOnce
	t.mu.Unlock()
	if skip || t.Body == nil {
		return NoResult(), nil
	}

	res, err := t.Body(ctx, t)
	if err != nil {
		return NoResult(), err
	}

	// Prefer the live stream over any other body return value: the scheduler
	// needs a handle it can wait on. Completion clears the stream so the
	// task can be re-activated cleanly.
	if s := t.Stream(); s != nil {
		s.OnDone(func() { t.clearStream(s) })
		s.OnError(func(error) { t.clearStream(s) })
		return StreamResult(s), nil
	}
	return res, nil
}

func (t *Task) clearStream(s *stream.Pipeline) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stream == s {
		t.stream = nil
	}
}

// MarkStarted records the start of an activation.
func (t *Task) MarkStarted(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateStarted
	t.startedAt = now
	t.endedAt = time.Time{}
}

// MarkDone records the completion of the current activation. It returns false
// if the task is already done, so duplicate stop signals are ignored.
func (t *Task) MarkDone(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateDone {
		return false
	}
	t.state = StateDone
	t.endedAt = now
	t.completedOnce = true
	return true
}

// MarkError records the failure of the current activation.
func (t *Task) MarkError(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateError
	t.endedAt = now
}

// State returns the task's current lifecycle state.
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// StartedAt returns the start timestamp of the current or most recent activation.
func (t *Task) StartedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startedAt
}

// EndedAt returns the end timestamp of the most recent activation, or zero if
// the task never finished one.
func (t *Task) EndedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.endedAt
}

// DepNames returns the task's dependency names in declaration order.
func (t *Task) DepNames() []string {
	names := make([]string, 0, len(t.deps))
	for _, d := range t.deps {
		names = append(names, d.name)
	}
	return names
}

// Dependencies returns the resolved dependency tasks in declaration order.
// Entries are nil until the registry has resolved.
func (t *Task) Dependencies() []*Task {
	tasks := make([]*Task, 0, len(t.deps))
	for _, d := range t.deps {
		tasks = append(tasks, d.task)
	}
	return tasks
}

// IsBarrier returns true if the task has no body.
func (t *Task) IsBarrier() bool {
	return t.Body == nil
}

// Snapshot is an immutable view of a task, consumed by the reporter and the
// graph builder.
type Snapshot struct {
	StartedAt time.Time
	EndedAt   time.Time
	Name      string
	State     State
	Deps      []string
	HasBody   bool
}

// Snapshot captures the task's current observable state.
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		Name:      t.Name,
		State:     t.state,
		Deps:      t.depNamesLocked(),
		HasBody:   t.Body != nil,
		StartedAt: t.startedAt,
		EndedAt:   t.endedAt,
	}
}

func (t *Task) depNamesLocked() []string {
	names := make([]string, 0, len(t.deps))
	for _, d := range t.deps {
		names = append(names, d.name)
	}
	return names
}
