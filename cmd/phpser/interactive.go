package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/phpser/phpser/wire"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	canonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// interactiveModel re-parses the input line on every keystroke, so the
// tree, the canonical form and any error track what is typed.
type interactiveModel struct {
	parseErr error
	value    *wire.Value
	input    textinput.Model
	maxDepth int
}

func newInteractiveModel(maxDepth int) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = `a:1:{s:4:"name";s:5:"alice";}`
	ti.Prompt = "> "
	ti.Width = 72
	ti.Focus()

	return &interactiveModel{
		input:    ti,
		maxDepth: maxDepth,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.reparse()
	return m, cmd
}

func (m *interactiveModel) reparse() {
	text := m.input.Value()
	if text == "" {
		m.value = nil
		m.parseErr = nil
		return
	}
	m.value, m.parseErr = wire.Parse([]byte(text), wire.WithMaxDepth(m.maxDepth))
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Serialized Data Inspector"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.parseErr != nil:
		b.WriteString(errorStyle.Render(describeErr(m.parseErr).Error()))
		b.WriteString("\n")

	case m.value != nil:
		b.WriteString(renderTree(m.value, 0, true))
		if canon, err := wire.Encode(m.value); err == nil {
			b.WriteString("\n")
			b.WriteString(canonStyle.Render("canonical: " + string(canon)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("type serialized data • esc quit"))
	b.WriteString("\n")

	return b.String()
}

func runInteractive(maxDepth int) error {
	p := tea.NewProgram(newInteractiveModel(maxDepth), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
