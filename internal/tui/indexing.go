// Package tui renders the CLI's indexing progress view, adapted from
// the teacher's chat TUI spinner and style conventions but decoupled from
// its single big-program/chat-screen structure: each command that needs a
// view runs its own small Bubble Tea program.
package tui

import (
	"fmt"

	"repoknowledge/internal/index"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type progressMsg struct {
	phase          string
	current, total int
}

type doneMsg struct {
	stats *index.Stats
	err   error
}

type indexModel struct {
	root    string
	spinner spinner.Model
	phase   string
	current int
	total   int
	done    bool
	stats   *index.Stats
	err     error
	updates chan progressMsg
	result  chan doneMsg
}

func newIndexModel(root string) indexModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle
	return indexModel{
		root:    root,
		spinner: sp,
		phase:   "discover",
		updates: make(chan progressMsg, 64),
		result:  make(chan doneMsg, 1),
	}
}

func waitForUpdate(ch chan progressMsg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

func waitForResult(ch chan doneMsg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

func (m indexModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForUpdate(m.updates), waitForResult(m.result))
}

func (m indexModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.phase = msg.phase
		m.current = msg.current
		m.total = msg.total
		return m, waitForUpdate(m.updates)
	case doneMsg:
		m.done = true
		m.stats = msg.stats
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m indexModel) View() string {
	s := titleStyle.Render("Indexing") + "\n"
	s += subtitleStyle.Render(m.root) + "\n\n"

	if m.done {
		if m.err != nil {
			s += errorStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n"
			return s
		}
		s += successStyle.Render("done") + "\n\n"
		if m.stats != nil {
			st := m.stats
			s += fmt.Sprintf("files:   %d total (%d added, %d modified, %d unchanged, %d removed)\n",
				st.FilesTotal, st.FilesAdded, st.FilesModified, st.FilesUnchanged, st.FilesRemoved)
			s += fmt.Sprintf("symbols: %d\n", st.SymbolsTotal)
			s += fmt.Sprintf("chunks:  %d\n", st.ChunksTotal)
			s += fmt.Sprintf("edges:   %d\n", st.EdgesTotal)
			if st.FilesRemoved > 0 {
				s += "\n" + warnStyle.Render(fmt.Sprintf("%d removed files evicted from the index", st.FilesRemoved)) + "\n"
			}
		}
		return s
	}

	s += fmt.Sprintf("%s %s\n", m.spinner.View(), m.phase)
	if m.total > 0 {
		s += fmt.Sprintf("%d / %d\n", m.current, m.total)
	}
	s += "\n" + dimStyle.Render("this may take a while for large codebases...") + "\n"
	return s
}

// RunIndexing drives one pipeline run under a Bubble Tea progress display.
// run is called with a progress callback to wire into the pipeline's
// OnProgress field;
// RunIndexing returns whatever run returns once the program exits.
func RunIndexing(root string, run func(index.ProgressFunc) (*index.Stats, error)) (*index.Stats, error) {
	m := newIndexModel(root)
	p := tea.NewProgram(m)

	go func() {
		stats, err := run(func(phase string, current, total int) {
			select {
			case m.updates <- progressMsg{phase: phase, current: current, total: total}:
			default:
			}
		})
		m.result <- doneMsg{stats: stats, err: err}
	}()

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	fm := finalModel.(indexModel)
	return fm.stats, fm.err
}
