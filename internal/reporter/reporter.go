package reporter

import (
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/weftlabs/weft/internal/engine"
	"github.com/weftlabs/weft/internal/task"
)

// snapshotMsg carries a fresh registry snapshot into the program.
type snapshotMsg []task.Snapshot

// model is the bubbletea model behind the live reporter.
type model struct {
	tasks   []task.Snapshot
	spinner spinner.Model
	clock   task.Clock
	styles  Styles
}

func newModel(clock task.Clock) model {
	styles := DefaultStyles()
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Running
	return model{spinner: sp, clock: clock, styles: styles}
}

// Init starts the spinner ticker.
func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles snapshot refreshes, spinner ticks, and interrupt keys.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.tasks = msg
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the current snapshot as a full redraw.
func (m model) View() string {
	return Frame(m.tasks, m.clock.Now(), m.spinner.View(), m.styles)
}

// Reporter runs the live console view as a bubbletea program and feeds it
// registry snapshots from the engine's lifecycle callbacks.
type Reporter struct {
	prog *tea.Program
	done chan struct{}
}

// Ensure Reporter implements engine.Reporter.
var _ engine.Reporter = (*Reporter)(nil)

// New creates a Reporter writing to out.
func New(out io.Writer, clock task.Clock) *Reporter {
	prog := tea.NewProgram(newModel(clock), tea.WithOutput(out))
	return &Reporter{prog: prog, done: make(chan struct{})}
}

// Start runs the program in the background.
func (r *Reporter) Start() {
	go func() {
		_, _ = r.prog.Run()
		close(r.done)
	}()
}

// Report redraws the view with a fresh snapshot.
func (r *Reporter) Report(snapshot []task.Snapshot) {
	r.prog.Send(snapshotMsg(snapshot))
}

// Stop quits the program and waits for its final frame.
func (r *Reporter) Stop() {
	r.prog.Quit()
	<-r.done
}
