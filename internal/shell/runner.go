// Package shell provides script execution for shell task bodies.
package shell

import (
	"context"
	"fmt"
	"os/exec"
)

// Runner executes scripts through sh in a fixed working directory.
type Runner struct {
	Dir string
}

// Run executes a script and folds its combined output into the error.
func (r *Runner) Run(ctx context.Context, script string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", script)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("run script: %w: %s", err, string(out))
	}
	return nil
}
