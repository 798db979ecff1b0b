package components

import (
	"strings"

	"github.com/allbin/go-fedsync/internal/tui/colors"
	"github.com/allbin/go-fedsync/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Input edits the recording output path
type Input struct {
	textInput     textinput.Model
	history       []string
	terminalWidth int
}

func NewInput(placeholder string) *Input {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 4096
	ti.Prompt = "" // We handle prompt styling separately
	ti.ShowSuggestions = true

	return &Input{
		textInput: ti,
		history:   make([]string, 0),
	}
}

func (i *Input) SetWidth(width int) {
	i.terminalWidth = width
	// Account for: border(2) + padding(2) + prompt(1) + space(1) = 6 characters
	usableWidth := width - 6
	if usableWidth < 20 {
		usableWidth = 20
	}
	i.textInput.Width = usableWidth
}

func (i *Input) Focus() tea.Cmd {
	return i.textInput.Focus()
}

func (i *Input) Blur() {
	i.textInput.Blur()
}

func (i *Input) Focused() bool {
	return i.textInput.Focused()
}

func (i *Input) Value() string {
	return strings.TrimSpace(i.textInput.Value())
}

func (i *Input) SetValue(value string) {
	i.textInput.SetValue(value)
	i.textInput.CursorEnd()
}

// AddToHistory remembers an accepted path and offers it as a completion
func (i *Input) AddToHistory(path string) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}
	for _, p := range i.history {
		if p == path {
			return
		}
	}

	i.history = append(i.history, path)
	if len(i.history) > 20 {
		i.history = i.history[1:]
	}
	i.textInput.SetSuggestions(i.history)
}

func (i *Input) History() []string {
	return i.history
}

func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return i, cmd
}

// View renders the field while editing, or the current path otherwise
func (i *Input) View(current string) string {
	prompt := lipgloss.NewStyle().
		Foreground(colors.Green).
		Bold(true).
		Render(">")

	var content string
	if i.textInput.Focused() {
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", i.textInput.View())
	} else {
		if current == "" {
			current = "current directory"
		}
		instruction := lipgloss.NewStyle().
			Foreground(colors.Muted).
			Render("Output: " + current + "  (press 'o' to change)")
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", instruction)
	}

	// RoundedBorder adds 2 characters and padding adds 2 more
	adjustedWidth := i.terminalWidth - 4
	if adjustedWidth < 10 {
		adjustedWidth = 10
	}

	inputStyle := styles.InputStyle.
		Width(adjustedWidth).
		AlignHorizontal(lipgloss.Left)
	if i.textInput.Focused() {
		inputStyle = inputStyle.BorderForeground(colors.Green)
	}

	return inputStyle.Render(content)
}
