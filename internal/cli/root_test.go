package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTaskfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weft.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand("1.2.3")
	assert.Equal(t, "weft", root.Use)
	assert.Equal(t, "1.2.3", root.Version)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "list")
	assert.Contains(t, names, "graph")
}

func TestListCommand(t *testing.T) {
	path := writeTaskfile(t, `
[[task]]
name = "styles"
run_once = true
watch = ["src/*.css"]

[task.pipeline]
src = ["src/*.css"]
dest = "dist"

[[task]]
name = "default"
deps = ["styles"]
`)

	root := NewRootCommand("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"list", "-f", path})

	require.NoError(t, root.Execute())

	got := out.String()
	assert.Contains(t, got, "NAME")
	assert.Contains(t, got, "styles")
	assert.Contains(t, got, "run-once, watch")
	assert.Contains(t, got, "barrier")
}

func TestGraphCommand(t *testing.T) {
	path := writeTaskfile(t, `
[[task]]
name = "a"
run = "true"

[[task]]
name = "b"
deps = ["a"]
`)

	outPath := filepath.Join(t.TempDir(), "deps.dot")
	root := NewRootCommand("test")
	root.SetArgs([]string{"graph", "-f", path, "-o", outPath})

	require.NoError(t, root.Execute())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"b" -> "a";`)
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weft.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[task]]
name = "write"
run = "echo ran > marker.txt"

[[task]]
name = "default"
deps = ["write"]
`), 0o644))

	root := NewRootCommand("test")
	root.SetArgs([]string{"run", "-f", path, "--no-report"})

	require.NoError(t, root.Execute())

	data, err := os.ReadFile(filepath.Join(dir, "marker.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ran\n", string(data))
}

func TestRunCommand_ExplicitTargetSkipsOthers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weft.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[task]]
name = "wanted"
run = "touch wanted.txt"

[[task]]
name = "unwanted"
run = "touch unwanted.txt"
`), 0o644))

	root := NewRootCommand("test")
	root.SetArgs([]string{"run", "-f", path, "--no-report", "wanted"})

	require.NoError(t, root.Execute())

	_, err := os.Stat(filepath.Join(dir, "wanted.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "unwanted.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunCommand_FailurePropagates(t *testing.T) {
	path := writeTaskfile(t, `
[[task]]
name = "default"
run = "exit 7"
`)

	root := NewRootCommand("test")
	root.SetArgs([]string{"run", "-f", path, "--no-report"})

	assert.Error(t, root.Execute())
}
