package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/riff/internal/cli/formatter"
	"github.com/alexanderramin/riff/internal/domain"
	"github.com/alexanderramin/riff/internal/session"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// sessionTickMsg is one beat of the shared session clock.
type sessionTickMsg time.Time

// libraryChangedMsg carries the aggregate after a committed change, local or
// from another device.
type libraryChangedMsg domain.AppData

type practiceKeys struct {
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Complete key.Binding
	Reset    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newPracticeKeys() practiceKeys {
	return practiceKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "s"), key.WithHelp("space", "start/pause")),
		Complete: key.NewBinding(key.WithKeys("x", "enter"), key.WithHelp("x", "check off")),
		Reset:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "end session")),
	}
}

func (k practiceKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Complete, k.Reset, k.Quit, k.Help}
}

func (k practiceKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Toggle, k.Complete}, {k.Reset, k.Quit, k.Help}}
}

// practiceView is the live session screen. The engine is driven only from
// Update, so every transition runs on the bubbletea loop.
type practiceView struct {
	ctx      context.Context
	engine   *session.Engine
	interval time.Duration
	offline  func() bool

	keys     practiceKeys
	help     help.Model
	progress progress.Model

	cursor int
	width  int
	status string
	err    error
	done   bool
}

func newPracticeView(ctx context.Context, engine *session.Engine, interval time.Duration, offline func() bool) *practiceView {
	if interval <= 0 {
		interval = session.TickInterval
	}
	if offline == nil {
		offline = func() bool { return false }
	}
	v := &practiceView{
		ctx:      ctx,
		engine:   engine,
		interval: interval,
		offline:  offline,
		keys:     newPracticeKeys(),
		help:     help.New(),
		progress: progress.New(progress.WithSolidFill(string(formatter.ColorGreen)), progress.WithoutPercentage()),
		width:    80,
	}
	v.progress.Width = 40
	if i := engine.Running(); i >= 0 {
		v.cursor = i
	}
	return v
}

func (v *practiceView) tick() tea.Cmd {
	return tea.Tick(v.interval, func(t time.Time) tea.Msg { return sessionTickMsg(t) })
}

func (v *practiceView) Init() tea.Cmd {
	return v.tick()
}

func (v *practiceView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionTickMsg:
		v.report(v.engine.Tick(v.ctx))
		return v, v.tick()

	case libraryChangedMsg:
		v.redefine(domain.AppData(msg))
		return v, nil

	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.help.Width = msg.Width
		v.progress.Width = max(min(msg.Width-4, 60), 10)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *practiceView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.status = ""
	switch {
	case key.Matches(msg, v.keys.Quit):
		v.done = true
		return v, tea.Quit
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor < v.engine.Len()-1 {
			v.cursor++
		}
	case key.Matches(msg, v.keys.Toggle):
		err := v.engine.Toggle(v.ctx, v.cursor)
		if errors.Is(err, session.ErrCannotStart) {
			v.status = "Nothing left to time on this exercise."
			return v, nil
		}
		v.report(err)
	case key.Matches(msg, v.keys.Complete):
		v.report(v.engine.ToggleComplete(v.ctx, v.cursor))
	case key.Matches(msg, v.keys.Reset):
		v.report(v.engine.Reset(v.ctx))
		v.status = "Progress reset."
	case key.Matches(msg, v.keys.Help):
		v.help.ShowAll = !v.help.ShowAll
	}
	return v, nil
}

func (v *practiceView) redefine(data domain.AppData) {
	r, ok := data.FindRoutine(v.engine.Routine().ID)
	if !ok {
		v.status = "This routine was deleted on another device."
		return
	}
	if v.engine.Redefine(r, data.Exercises) {
		v.status = "Routine changed on another device. Press r to start over with it."
	}
}

func (v *practiceView) report(err error) {
	if err != nil && !errors.Is(err, session.ErrNoSuchExercise) {
		v.err = err
	}
}

var flashStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(formatter.ColorGreen).
	Background(formatter.ColorFlash).
	Padding(0, 2)

func (v *practiceView) View() string {
	var b strings.Builder
	e := v.engine

	title := formatter.StyleHeader.Render(e.Routine().Name)
	if v.offline() {
		title += " " + formatter.Dim("(offline)")
	}
	b.WriteString(title + "\n")
	fmt.Fprintf(&b, "%d of %d completed\n", e.CompletedCount(), e.Len())
	b.WriteString(formatter.StyleBlue.Bold(true).Render("Total time remaining: "+formatter.Clock(e.TotalRemainingSeconds())) + "\n")
	b.WriteString(v.progress.ViewAs(e.Progress()) + "\n\n")

	if name, ok := e.Flash(); ok {
		b.WriteString(flashStyle.Render("✔ Time's up: "+name) + "\n\n")
	}

	if e.Len() == 0 {
		b.WriteString(formatter.Dim("This routine has no exercises.") + "\n")
	}
	for i, ex := range e.Exercises() {
		marker := "  "
		if i == v.cursor {
			marker = formatter.StyleHeader.Render("› ")
		}
		b.WriteString(marker + formatter.SessionLine(ex) + "\n")
	}

	if e.AllCompleted() {
		b.WriteString("\n" + formatter.StyleGreen.Render("All exercises completed. Nice work!") + "\n")
	}
	if v.status != "" {
		b.WriteString("\n" + formatter.Dim(v.status) + "\n")
	}
	if v.err != nil {
		b.WriteString("\n" + formatter.StyleRed.Render("Error: "+v.err.Error()) + "\n")
	}
	b.WriteString("\n" + v.help.View(v.keys))
	return b.String()
}
