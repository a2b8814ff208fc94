package task

// State represents the lifecycle state of a task for its current activation.
type State string

const (
	StateNotStarted State = "not_started" // Declared, never activated
	StateStarted    State = "started"     // Body (or barrier) running
	StateDone       State = "done"        // Activation completed
	StateError      State = "error"       // Activation failed
)

// AllStates returns all valid state values.
func AllStates() []State {
	return []State{StateNotStarted, StateStarted, StateDone, StateError}
}

// transitions defines the allowed state transitions.
// Flow: not_started → started → done, with started → error on failure.
// done and error may cycle back to started on a later activation
// (watch or cron re-trigger).
var transitions = map[State][]State{
	StateNotStarted: {StateStarted},
	StateStarted:    {StateDone, StateError},
	StateDone:       {StateStarted},
	StateError:      {StateStarted},
}

// CanTransitionTo returns true if the state can transition to the target state.
func (s State) CanTransitionTo(target State) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsRunning returns true if a task in this state is currently executing.
func (s State) IsRunning() bool {
	return s == StateStarted
}

// Display returns a human-readable representation of the state.
func (s State) Display() string {
	switch s {
	case StateNotStarted:
		return "Not Started"
	case StateStarted:
		return "Running"
	case StateDone:
		return "Done"
	case StateError:
		return "Error"
	default:
		return string(s)
	}
}
