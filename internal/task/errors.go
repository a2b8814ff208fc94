package task

import "errors"

// Domain errors.
var (
	ErrDependencyNotFound = errors.New("dependency not found")
	ErrCyclicDependency   = errors.New("cyclic dependency detected")
	ErrTaskExists         = errors.New("task already declared")
	ErrEmptyName          = errors.New("task name cannot be empty")
	ErrUnknownTask        = errors.New("unknown task")
	ErrAlreadyStarted     = errors.New("orchestration already started")
)
