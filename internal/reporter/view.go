// Package reporter renders a live snapshot of all task states: one line per
// task with a status glyph, the fully-namespaced name, and an elapsed-time
// suffix. It is a pure projection of registry state.
package reporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/weftlabs/weft/internal/task"
)

// Status glyphs.
const (
	GlyphNotStarted = "○"
	GlyphDone       = "✓"
	GlyphError      = "✗"
)

// Styles contains the lipgloss styles for the reporter.
type Styles struct {
	Pending lipgloss.Style
	Running lipgloss.Style
	Done    lipgloss.Style
	Error   lipgloss.Style
	Name    lipgloss.Style
	Elapsed lipgloss.Style
}

// DefaultStyles returns the default color palette.
func DefaultStyles() Styles {
	return Styles{
		Pending: lipgloss.NewStyle().Foreground(lipgloss.Color("#636E72")), // Gray
		Running: lipgloss.NewStyle().Foreground(lipgloss.Color("#FDCB6E")), // Yellow
		Done:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00B894")), // Green
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#D63031")), // Red
		Name:    lipgloss.NewStyle().Foreground(lipgloss.Color("#DFE6E9")), // Light gray
		Elapsed: lipgloss.NewStyle().Foreground(lipgloss.Color("#636E72")), // Gray
	}
}

// Frame renders the full snapshot as one redrawable block. runningGlyph is
// the current spinner frame for tasks in the started state.
func Frame(snapshot []task.Snapshot, now time.Time, runningGlyph string, styles Styles) string {
	var b strings.Builder
	for _, t := range snapshot {
		b.WriteString(glyph(t.State, runningGlyph, styles))
		b.WriteString(" ")
		b.WriteString(styles.Name.Render(t.Name))
		if suffix := elapsedSuffix(t, now); suffix != "" {
			b.WriteString(" ")
			b.WriteString(styles.Elapsed.Render(suffix))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func glyph(s task.State, runningGlyph string, styles Styles) string {
	switch s {
	case task.StateStarted:
		return styles.Running.Render(runningGlyph)
	case task.StateDone:
		return styles.Done.Render(GlyphDone)
	case task.StateError:
		return styles.Error.Render(GlyphError)
	default:
		return styles.Pending.Render(GlyphNotStarted)
	}
}

// elapsedSuffix returns the elapsed time for a task that has ever started,
// measured against its end time if finished, else now.
func elapsedSuffix(t task.Snapshot, now time.Time) string {
	if t.StartedAt.IsZero() {
		return ""
	}
	end := t.EndedAt
	if end.IsZero() {
		end = now
	}
	return FormatElapsed(end.Sub(t.StartedAt))
}

// FormatElapsed renders a duration as milliseconds while under one second,
// and as seconds with one decimal place from there on.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
