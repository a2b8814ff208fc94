package task

import "fmt"

// Registry owns every declared task for the life of the process. Declaration
// and resolution are single-writer phases; after ResolveAll the collection is
// read-only and only per-task fields mutate.
type Registry struct {
	tasks    map[string]*Task
	order    []*Task
	resolved bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]*Task)}
}

// Declare creates and records a task. Dependencies declared as sub-task
// objects are registered too, with their names prefixed "<parent>.".
func (r *Registry) Declare(name string, opts ...Option) (*Task, error) {
	t := New(name, opts...)
	if err := r.register(t, ""); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *Registry) register(t *Task, prefix string) error {
	if t.Name == "" {
		return ErrEmptyName
	}
	if prefix != "" {
		t.Name = prefix + "." + t.Name
	}
	if _, exists := r.tasks[t.Name]; exists {
		return fmt.Errorf("%w: %q", ErrTaskExists, t.Name)
	}
	r.tasks[t.Name] = t
	r.order = append(r.order, t)

	for _, ref := range t.pendingRefs {
		switch {
		case ref.task != nil:
			if err := r.register(ref.task, t.Name); err != nil {
				return err
			}
			t.deps = append(t.deps, dep{name: ref.task.Name, task: ref.task})
		case ref.name != "":
			t.deps = append(t.deps, dep{name: ref.name})
		default:
			// Empty refs are silently dropped.
		}
	}
	t.pendingRefs = nil
	return nil
}

// ResolveAll replaces every string dependency reference with the concrete
// task, in place. A reference to an undeclared name is fatal. Resolution is
// idempotent and also rejects dependency cycles, since behavior on a cyclic
// graph would otherwise be scheduler-defined.
func (r *Registry) ResolveAll() error {
	for _, t := range r.order {
		for i := range t.deps {
			if t.deps[i].task != nil {
				continue
			}
			d, ok := r.tasks[t.deps[i].name]
			if !ok {
				return fmt.Errorf("%w: %q (required by task %q)", ErrDependencyNotFound, t.deps[i].name, t.Name)
			}
			t.deps[i].task = d
		}
	}
	if err := r.checkAcyclic(); err != nil {
		return err
	}
	r.resolved = true
	return nil
}

// checkAcyclic detects cycles with Kahn's algorithm.
func (r *Registry) checkAcyclic() error {
	indegree := make(map[string]int, len(r.order))
	dependents := make(map[string][]string, len(r.order))
	for _, t := range r.order {
		if _, ok := indegree[t.Name]; !ok {
			indegree[t.Name] = 0
		}
		for _, d := range t.deps {
			indegree[t.Name]++
			dependents[d.name] = append(dependents[d.name], t.Name)
		}
	}

	queue := make([]string, 0, len(indegree))
	for _, t := range r.order {
		if indegree[t.Name] == 0 {
			queue = append(queue, t.Name)
		}
	}

	processed := 0
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		processed++
		for _, name := range dependents[current] {
			indegree[name]--
			if indegree[name] == 0 {
				queue = append(queue, name)
			}
		}
	}

	if processed != len(r.order) {
		return ErrCyclicDependency
	}
	return nil
}

// Resolved reports whether ResolveAll has completed successfully.
func (r *Registry) Resolved() bool { return r.resolved }

// Get returns a task by its fully-namespaced name.
func (r *Registry) Get(name string) (*Task, bool) {
	t, ok := r.tasks[name]
	return t, ok
}

// Tasks returns all tasks in declaration order.
func (r *Registry) Tasks() []*Task {
	out := make([]*Task, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of declared tasks.
func (r *Registry) Len() int { return len(r.order) }

// Snapshots captures every task's observable state in declaration order.
func (r *Registry) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, t.Snapshot())
	}
	return out
}

// AnyRunning reports whether any task is currently in the started state.
func (r *Registry) AnyRunning() bool {
	for _, t := range r.order {
		if t.State().IsRunning() {
			return true
		}
	}
	return false
}
