// Package config loads the declarative taskfile (weft.toml or weft.yaml).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultFileName is the taskfile looked up when none is specified.
const DefaultFileName = "weft.toml"

// Config errors.
var (
	ErrUnknownFormat = errors.New("unknown taskfile format")
	ErrBodyConflict  = errors.New("task declares both run and pipeline")
	ErrEmptyTaskName = errors.New("task name cannot be empty")
)

// File is the parsed taskfile. Task order is declaration order and is
// preserved through graph emission.
type File struct {
	// Graph is the optional diagram output path; format follows its extension.
	Graph string `toml:"graph" yaml:"graph"`
	// QuietPeriod is the finish-callback debounce window (e.g. "250ms").
	QuietPeriod string `toml:"quiet_period" yaml:"quiet_period"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" yaml:"log_level"`
	// Tasks are the declared tasks in order.
	Tasks []TaskDef `toml:"task" yaml:"tasks"`
}

// TaskDef declares one task.
type TaskDef struct {
	Name     string       `toml:"name" yaml:"name"`
	Deps     []string     `toml:"deps" yaml:"deps"`
	RunOnce  bool         `toml:"run_once" yaml:"run_once"`
	Run      string       `toml:"run" yaml:"run"`
	Pipeline *PipelineDef `toml:"pipeline" yaml:"pipeline"`
	Watch    []string     `toml:"watch" yaml:"watch"`
	Schedule string       `toml:"schedule" yaml:"schedule"`
	// Tasks are nested sub-tasks; they become dependencies of this task and
	// their names are prefixed "<parent>.".
	Tasks []TaskDef `toml:"tasks" yaml:"tasks"`
}

// PipelineDef declares a stream body: src globs through transforms into dest.
type PipelineDef struct {
	Src        []string `toml:"src" yaml:"src"`
	Transforms []string `toml:"transforms" yaml:"transforms"`
	Dest       string   `toml:"dest" yaml:"dest"`
}

// Quiet returns the parsed quiet period, or fallback when unset.
func (f *File) Quiet(fallback time.Duration) (time.Duration, error) {
	if f.QuietPeriod == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(f.QuietPeriod)
	if err != nil {
		return 0, fmt.Errorf("bad quiet_period %q: %w", f.QuietPeriod, err)
	}
	return d, nil
}

// validate checks structural constraints that do not require resolution:
// names present and bodies unambiguous. Unknown dependency or transform names
// surface later, at resolution.
func (f *File) validate() error {
	return validateDefs(f.Tasks)
}

func validateDefs(defs []TaskDef) error {
	for i := range defs {
		def := &defs[i]
		if def.Name == "" {
			return ErrEmptyTaskName
		}
		if def.Run != "" && def.Pipeline != nil {
			return fmt.Errorf("%w: %q", ErrBodyConflict, def.Name)
		}
		if def.Pipeline != nil && len(def.Pipeline.Src) == 0 {
			return fmt.Errorf("task %q: pipeline needs src globs", def.Name)
		}
		// A pipeline without a dest has no consumer; the source would block
		// forever on its first emit.
		if def.Pipeline != nil && def.Pipeline.Dest == "" {
			return fmt.Errorf("task %q: pipeline needs dest", def.Name)
		}
		// Watch matching uses filepath.Match, which has no recursive form.
		for _, pattern := range def.Watch {
			if strings.Contains(pattern, "**") {
				return fmt.Errorf("task %q: recursive watch glob %q not supported", def.Name, pattern)
			}
		}
		if err := validateDefs(def.Tasks); err != nil {
			return err
		}
	}
	return nil
}
