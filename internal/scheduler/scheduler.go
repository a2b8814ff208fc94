// Package scheduler provides the concurrent execution engine behind the
// task.Scheduler port. Independent tasks run in parallel; a dependent task's
// wrapper is not invoked until every dependency has signaled completion.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/weftlabs/weft/internal/task"
)

type entry struct {
	name string
	deps []string
	run  task.RunFunc
}

// Scheduler executes a registered task graph. Add all tasks first, then Run
// once; per-run bookkeeping is local to each Run call.
type Scheduler struct {
	entries map[string]*entry
	order   []string
}

var _ task.Scheduler = (*Scheduler)(nil)

// New creates an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{entries: make(map[string]*entry)}
}

// Add registers a task by name, dependency names, and completion wrapper.
func (s *Scheduler) Add(name string, deps []string, run task.RunFunc) error {
	if name == "" {
		return task.ErrEmptyName
	}
	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("%w: %q", task.ErrTaskExists, name)
	}
	s.entries[name] = &entry{name: name, deps: deps, run: run}
	s.order = append(s.order, name)
	return nil
}

type runState struct {
	done   chan struct{}
	failed bool // written before done is closed
}

// Run executes the graph reachable from targets, or every registered task if
// targets is empty. Each task gets its own goroutine gated on its
// dependencies' completion channels. On failure, downstream dependents are
// skipped without events; Run returns the first failure.
func (s *Scheduler) Run(ctx context.Context, targets []string, l task.Listener) error {
	need, err := s.collect(targets)
	if err != nil {
		return err
	}

	states := make(map[string]*runState, len(need))
	for _, name := range need {
		states[name] = &runState{done: make(chan struct{})}
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for _, name := range need {
		e := s.entries[name]
		st := states[name]
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer close(st.done)

			for _, depName := range e.deps {
				depState := states[depName]
				select {
				case <-ctx.Done():
					st.failed = true
					fail(ctx.Err())
					return
				case <-depState.done:
					if depState.failed {
						st.failed = true
						return
					}
				}
			}

			l.TaskStarted(e.name)
			res, err := e.run(ctx)
			if err == nil {
				err = res.Await(ctx)
			}
			if err != nil {
				st.failed = true
				fail(fmt.Errorf("task %q: %w", e.name, err))
				l.TaskErrored(e.name, err)
				return
			}
			l.TaskStopped(e.name)
		}()
	}

	wg.Wait()
	return firstErr
}

// collect returns the transitive dependency closure of targets in registration
// order. Every dependency name must itself be registered.
func (s *Scheduler) collect(targets []string) ([]string, error) {
	if len(targets) == 0 {
		if err := s.validateDeps(s.order); err != nil {
			return nil, err
		}
		out := make([]string, len(s.order))
		copy(out, s.order)
		return out, nil
	}

	need := make(map[string]bool)
	var visit func(name string) error
	visit = func(name string) error {
		if need[name] {
			return nil
		}
		e, ok := s.entries[name]
		if !ok {
			return fmt.Errorf("%w: %q", task.ErrUnknownTask, name)
		}
		need[name] = true
		for _, d := range e.deps {
			if err := visit(d); err != nil {
				return err
			}
		}
		return nil
	}
	for _, t := range targets {
		if err := visit(t); err != nil {
			return nil, err
		}
	}

	out := make([]string, 0, len(need))
	for _, name := range s.order {
		if need[name] {
			out = append(out, name)
		}
	}
	return out, nil
}

func (s *Scheduler) validateDeps(names []string) error {
	for _, name := range names {
		for _, d := range s.entries[name].deps {
			if _, ok := s.entries[d]; !ok {
				return fmt.Errorf("%w: %q (required by task %q)", task.ErrUnknownTask, d, name)
			}
		}
	}
	return nil
}
