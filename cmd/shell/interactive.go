package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const scrollback = 200

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#1DB954")).
			Padding(0, 1)

	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	ctx     context.Context
	sh      *shell
	lines   []string
	input   textinput.Model
	spinner spinner.Model
	status  string
	height  int
	busy    bool
}

type resultMsg struct {
	err    error
	result string
}

type noticeMsg string

func newInteractiveModel(ctx context.Context, sh *shell) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "search daft punk"
	ti.Prompt = "> "
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = noticeStyle

	return &interactiveModel{ctx: ctx, sh: sh, input: ti, spinner: sp, height: 24}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.refreshStatus)
}

func (m *interactiveModel) refreshStatus() tea.Msg {
	out, err := m.sh.whoami(m.ctx, nil)
	if err != nil {
		return noticeMsg(err.Error())
	}
	return statusMsg(out)
}

type statusMsg string

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if m.busy {
				return m, nil
			}
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "" {
				return m, nil
			}
			if line == "quit" || line == "exit" {
				return m, tea.Quit
			}
			m.push(commandStyle.Render("> " + line))
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, m.exec(line))
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)

	case resultMsg:
		m.busy = false
		if msg.err != nil {
			m.push(errorStyle.Render(fmt.Sprintf("Error: %v", msg.err)))
		} else if msg.result != "" {
			m.push(resultStyle.Render(msg.result))
		}
		return m, m.refreshStatus

	case noticeMsg:
		m.push(noticeStyle.Render("* " + string(msg)))
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) exec(line string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.sh.exec(m.ctx, line)
		return resultMsg{result: out, err: err}
	}
}

func (m *interactiveModel) push(block string) {
	m.lines = append(m.lines, strings.Split(block, "\n")...)
	if over := len(m.lines) - scrollback; over > 0 {
		m.lines = m.lines[over:]
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("libspot"))
	b.WriteString(" ")
	b.WriteString(m.status)
	b.WriteString("\n\n")

	visible := max(m.height-6, 1)
	start := max(len(m.lines)-visible, 0)
	for _, l := range m.lines[start:] {
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.busy {
		b.WriteString(m.spinner.View())
		b.WriteString(" working...\n")
	} else {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("enter run • help lists commands • esc quit"))
	return b.String()
}

func runInteractive(ctx context.Context, sh *shell) error {
	p := tea.NewProgram(newInteractiveModel(ctx, sh), tea.WithAltScreen(), tea.WithContext(ctx))
	sh.setNotify(func(msg string) { p.Send(noticeMsg(msg)) })
	defer sh.setNotify(nil)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
