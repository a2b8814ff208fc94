package graph

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/weftlabs/weft/internal/engine"
	"github.com/weftlabs/weft/internal/task"
)

// ErrNoFormat is returned when the output path has no usable extension.
var ErrNoFormat = errors.New("graph output path has no format extension")

// rawFormats are written as dot text directly, without invoking the renderer.
var rawFormats = map[string]bool{"dot": true, "gv": true}

// Emitter renders the graph to a file once, at the moment execution starts.
// The output format is derived from the path's extension and passed through
// to the external dot renderer; render failures propagate to the caller.
type Emitter struct {
	OutPath string
	DotBin  string // renderer binary, "dot" if empty
}

// Ensure Emitter implements engine.GraphEmitter.
var _ engine.GraphEmitter = (*Emitter)(nil)

// Emit builds the dot description and writes the rendered bytes to OutPath.
func (e *Emitter) Emit(snapshot []task.Snapshot) error {
	return e.emit(context.Background(), snapshot)
}

func (e *Emitter) emit(ctx context.Context, snapshot []task.Snapshot) error {
	format, err := FormatFor(e.OutPath)
	if err != nil {
		return err
	}

	src := Build(snapshot)
	if rawFormats[format] {
		return os.WriteFile(e.OutPath, []byte(src), 0o644) //nolint:gosec // graph files are world-readable
	}

	bin := e.DotBin
	if bin == "" {
		bin = "dot"
	}
	// #nosec G204 -- bin and format come from configuration, not user data paths
	cmd := exec.CommandContext(ctx, bin, "-T"+format, "-o", e.OutPath)
	cmd.Stdin = strings.NewReader(src)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("render graph: %w: %s", err, string(out))
	}
	return nil
}

// FormatFor derives the renderer format from the output path's extension.
func FormatFor(path string) (string, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %q", ErrNoFormat, path)
	}
	return strings.ToLower(ext), nil
}
