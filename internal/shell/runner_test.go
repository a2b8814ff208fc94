package shell

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	r := &Runner{Dir: dir}

	require.NoError(t, r.Run(context.Background(), "echo hello > out.txt"))

	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestRunner_Run_FailureIncludesOutput(t *testing.T) {
	r := &Runner{}
	err := r.Run(context.Background(), "echo oops >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oops")
}

func TestRunner_Run_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Runner{}
	assert.Error(t, r.Run(ctx, "sleep 5"))
}
