package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/zaguiini/create-sandbox/internal/sandbox"
)

// ErrInterrupted is returned by Progress.Run when the user pressed ctrl+c.
var ErrInterrupted = errors.New("interrupted")

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	elapsedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type lineState int

const (
	lineRunning lineState = iota
	lineDone
	lineFailed
)

type stepLine struct {
	step      sandbox.Step
	state     lineState
	startedAt time.Time
	elapsed   time.Duration
}

// Internal messages
type stepStartedMsg struct {
	step sandbox.Step
	at   time.Time
}

type stepFinishedMsg struct {
	step sandbox.Step
	err  error
	at   time.Time
}

type warningMsg string

type finishedMsg struct {
	err error
}

// Model is the bubbletea model of the provisioning progress view.
type Model struct {
	title       string
	spinner     spinner.Model
	lines       []stepLine
	warnings    []string
	finished    bool
	err         error
	interrupted bool
}

// NewModel creates a progress model with the given heading.
func NewModel(title string) Model {
	return Model{
		title:   title,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.interrupted = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stepStartedMsg:
		m.lines = append(m.lines, stepLine{step: msg.step, state: lineRunning, startedAt: msg.at})

	case stepFinishedMsg:
		for i := len(m.lines) - 1; i >= 0; i-- {
			if m.lines[i].step != msg.step || m.lines[i].state != lineRunning {
				continue
			}
			m.lines[i].elapsed = msg.at.Sub(m.lines[i].startedAt)
			m.lines[i].state = lineDone
			if msg.err != nil {
				m.lines[i].state = lineFailed
			}
			break
		}

	case warningMsg:
		m.warnings = append(m.warnings, string(msg))

	case finishedMsg:
		m.finished = true
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	if m.title != "" {
		b.WriteString(titleStyle.Render(m.title))
		b.WriteString("\n")
	}

	for _, line := range m.lines {
		switch line.state {
		case lineRunning:
			if m.finished || m.interrupted {
				fmt.Fprintf(&b, "- %s\n", line.step.Title())
			} else {
				fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), line.step.Title())
			}
		case lineDone:
			fmt.Fprintf(&b, "%s %s %s\n", doneStyle.Render("✓"), line.step.Title(),
				elapsedStyle.Render("("+line.elapsed.Round(time.Millisecond).String()+")"))
		case lineFailed:
			fmt.Fprintf(&b, "%s %s\n", failedStyle.Render("✗"), line.step.Title())
		}
	}

	for _, w := range m.warnings {
		fmt.Fprintf(&b, "%s\n", warningStyle.Render("⚠ "+w))
	}

	return b.String()
}

// Interrupted reports whether the user asked to quit.
func (m Model) Interrupted() bool {
	return m.interrupted
}

// Progress shows workflow steps with a spinner. It implements
// sandbox.Observer.
type Progress struct {
	program *tea.Program
}

var _ sandbox.Observer = (*Progress)(nil)

// NewProgress creates a progress view writing to w.
func NewProgress(title string, w io.Writer, opts ...tea.ProgramOption) *Progress {
	opts = append([]tea.ProgramOption{tea.WithOutput(w)}, opts...)
	return &Progress{program: tea.NewProgram(NewModel(title), opts...)}
}

// Run runs fn while the progress view is displayed. fn's context is
// cancelled when the user interrupts the view.
func (p *Progress) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		final, err := p.program.Run()
		if err != nil {
			return fmt.Errorf("progress view failed: %w", err)
		}
		if m, ok := final.(Model); ok && m.Interrupted() {
			return ErrInterrupted
		}
		return nil
	})

	g.Go(func() error {
		err := fn(gctx)
		p.program.Send(finishedMsg{err: err})
		return err
	})

	return g.Wait()
}

func (p *Progress) StepStarted(step sandbox.Step) {
	p.program.Send(stepStartedMsg{step: step, at: time.Now()})
}

func (p *Progress) StepFinished(step sandbox.Step, err error) {
	p.program.Send(stepFinishedMsg{step: step, err: err, at: time.Now()})
}

func (p *Progress) Warning(msg string) {
	p.program.Send(warningMsg(msg))
}
