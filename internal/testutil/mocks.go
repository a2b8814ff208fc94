// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/weftlabs/weft/internal/task"
)

// MockClock is a test double for task.Clock.
type MockClock struct {
	mu      sync.Mutex
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.NowTime
}

// Advance moves the clock forward.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NowTime = m.NowTime.Add(d)
}

// MockScheduler is a test double for task.Scheduler. It records Add calls and
// either runs a scripted function or executes tasks serially in Add order.
type MockScheduler struct {
	Added   []AddedTask
	RunFunc func(ctx context.Context, targets []string, l task.Listener) error
	RunErr  error
}

// AddedTask records one Add call.
type AddedTask struct {
	Name string
	Deps []string
	Run  task.RunFunc
}

// Add records the task.
func (m *MockScheduler) Add(name string, deps []string, run task.RunFunc) error {
	m.Added = append(m.Added, AddedTask{Name: name, Deps: deps, Run: run})
	return nil
}

// Run invokes RunFunc if scripted, else runs every added task serially with
// full lifecycle events.
func (m *MockScheduler) Run(ctx context.Context, targets []string, l task.Listener) error {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, targets, l)
	}
	for _, a := range m.Added {
		l.TaskStarted(a.Name)
		res, err := a.Run(ctx)
		if err == nil {
			err = res.Await(ctx)
		}
		if err != nil {
			l.TaskErrored(a.Name, err)
			return err
		}
		l.TaskStopped(a.Name)
	}
	return m.RunErr
}

// MockReporter is a test double for engine.Reporter that records snapshots.
type MockReporter struct {
	mu        sync.Mutex
	Snapshots [][]task.Snapshot
}

// Report records the snapshot.
func (m *MockReporter) Report(snapshot []task.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshots = append(m.Snapshots, snapshot)
}

// Last returns the most recent snapshot, or nil.
func (m *MockReporter) Last() []task.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Snapshots) == 0 {
		return nil
	}
	return m.Snapshots[len(m.Snapshots)-1]
}

// MockScriptRunner is a test double for app.ScriptRunner.
type MockScriptRunner struct {
	mu      sync.Mutex
	Scripts []string
	Err     error
}

// Run records the script.
func (m *MockScriptRunner) Run(_ context.Context, script string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Scripts = append(m.Scripts, script)
	return m.Err
}

// Ran returns the scripts run so far.
func (m *MockScriptRunner) Ran() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Scripts))
	copy(out, m.Scripts)
	return out
}

// MockGraphEmitter records graph emissions.
type MockGraphEmitter struct {
	Emitted [][]task.Snapshot
	Err     error
}

// Emit records the snapshot.
func (m *MockGraphEmitter) Emit(snapshot []task.Snapshot) error {
	if m.Err != nil {
		return m.Err
	}
	m.Emitted = append(m.Emitted, snapshot)
	return nil
}
