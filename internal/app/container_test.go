package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/task"
)

func writeTaskfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weft.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNew_BuildsContainer(t *testing.T) {
	path := writeTaskfile(t, `
[[task]]
name = "hello"
run = "true"
`)

	c, err := New(Options{ConfigPath: path, NoReport: true})
	require.NoError(t, err)
	defer func() { _ = c.Logger.Close() }()

	assert.Equal(t, filepath.Dir(path), c.Dir)
	assert.Nil(t, c.Reporter)
	assert.Equal(t, 1, c.Registry.Len())

	require.NoError(t, c.Engine.Start(context.Background()))
	tk, _ := c.Registry.Get("hello")
	assert.Equal(t, task.StateDone, tk.State())
}

func TestNew_MissingTaskfile(t *testing.T) {
	_, err := New(Options{ConfigPath: filepath.Join(t.TempDir(), "weft.toml"), NoReport: true})
	assert.Error(t, err)
}

func TestNew_BadQuietPeriod(t *testing.T) {
	path := writeTaskfile(t, `
quiet_period = "eventually"

[[task]]
name = "a"
`)
	_, err := New(Options{ConfigPath: path, NoReport: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quiet_period")
}

func TestNew_BadTransformFailsEarly(t *testing.T) {
	path := writeTaskfile(t, `
[[task]]
name = "styles"

[task.pipeline]
src = ["src/*.css"]
transforms = ["minify"]
dest = "dist"
`)
	_, err := New(Options{ConfigPath: path, NoReport: true})
	assert.Error(t, err)
}

func TestNew_GraphOverrideAndEmission(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weft.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
graph = "from-config.dot"

[[task]]
name = "a"
run = "true"
`), 0o644))

	c, err := New(Options{ConfigPath: path, NoReport: true, GraphPath: "override.dot"})
	require.NoError(t, err)
	defer func() { _ = c.Logger.Close() }()

	require.NoError(t, c.Engine.Start(context.Background()))

	_, err = os.Stat(filepath.Join(dir, "override.dot"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "from-config.dot"))
	assert.True(t, os.IsNotExist(err))
}
