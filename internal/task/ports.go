package task

import (
	"context"
	"time"
)

// RunFunc is a task's completion wrapper as handed to the scheduler. It must
// not be invoked until all of the task's dependencies have signaled
// completion.
type RunFunc func(ctx context.Context) (Result, error)

// Listener receives per-task lifecycle events from the scheduler. Events for
// different tasks may arrive concurrently.
type Listener interface {
	// TaskStarted fires when a task's wrapper begins executing.
	TaskStarted(name string)

	// TaskStopped fires when a task's activation has fully completed,
	// including draining any stream it produced. It may fire more than once
	// for the same activation; listeners must tolerate duplicates.
	TaskStopped(name string)

	// TaskErrored fires when a task's body or stream failed.
	TaskErrored(name string, err error)
}

// Scheduler executes a resolved task graph, running independent tasks
// concurrently and sequencing dependents after their dependencies complete.
type Scheduler interface {
	// Add registers a task by name, dependency names, and completion wrapper.
	Add(name string, deps []string, run RunFunc) error

	// Run executes the graph reachable from targets (all tasks if empty),
	// reporting lifecycle events to l. It returns after every scheduled task
	// has reached a terminal state.
	Run(ctx context.Context, targets []string, l Listener) error
}

// Logger records orchestration events, keyed by task name ("" for global).
type Logger interface {
	Debug(taskName, category, msg string)
	Info(taskName, category, msg string)
	Warn(taskName, category, msg string)
	Error(taskName, category, msg string)
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation of Clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }
