package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"brei/internal/brei"
)

// progressSupported reports whether stdout is a terminal capable of
// rendering the live bubbletea view, the same isatty gate a CLI already
// uses to decide whether to emit color.
func progressSupported() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

var (
	styleDone   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleFailed = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleSkip   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// progressModel is a bubbletea model driven entirely by brei.Event
// values received over a channel; it never touches the Database itself.
type progressModel struct {
	spin     spinner.Model
	bar      progress.Model
	events   <-chan brei.Event
	done     bool
	started  int
	finished int
	lines    []string
}

type eventMsg brei.Event
type eventsClosedMsg struct{}

func waitForEvent(ch <-chan brei.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func newProgressModel(ch <-chan brei.Event) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return progressModel{
		spin:   s,
		bar:    progress.New(progress.WithDefaultGradient()),
		events: ch,
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForEvent(m.events))
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case eventMsg:
		ev := brei.Event(msg)
		switch ev.Phase {
		case brei.PhaseStart:
			m.started++
		case brei.PhaseDone:
			m.finished++
			m.lines = append(m.lines, styleDone.Render("done  ")+" "+ev.Target.String())
		case brei.PhaseSkip:
			m.finished++
			m.lines = append(m.lines, styleSkip.Render("skip  ")+" "+ev.Target.String())
		case brei.PhaseFailed:
			m.finished++
			m.lines = append(m.lines, styleFailed.Render("failed")+" "+ev.Target.String()+": "+ev.Err.Error())
		}
		return m, waitForEvent(m.events)
	case eventsClosedMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	var pct float64
	if m.started > 0 {
		pct = float64(m.finished) / float64(m.started)
	}
	out := ""
	for _, l := range m.lines {
		out += l + "\n"
	}
	out += fmt.Sprintf("%s %s %d/%d\n", m.spin.View(), m.bar.ViewAs(pct), m.finished, m.started)
	return out
}

// runWithProgress subscribes to db's lifecycle events and renders a
// bubbletea live view while fn runs the requested goals on another
// goroutine. Delivery is best-effort (events.go's eventBus drops rather
// than blocks), so a dropped tick only costs a stale progress bar, never
// a stuck run.
func runWithProgress(db *brei.Database, fn func()) {
	ch := make(chan brei.Event, 64)
	db.Subscribe(ch)

	p := tea.NewProgram(newProgressModel(ch))

	go func() {
		fn()
		close(ch)
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "progress view error:", err)
	}
}
