package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Terminal shows the operator log. It follows new lines unless the user
// has scrolled up.
type Terminal struct {
	viewport viewport.Model
	lines    []string
}

func NewTerminal(width, height int) *Terminal {
	return &Terminal{viewport: viewport.New(width, height)}
}

func (t *Terminal) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
}

func (t *Terminal) GetViewport() viewport.Model {
	return t.viewport
}

// SetLines replaces the content. Returns false when nothing changed.
func (t *Terminal) SetLines(lines []string) bool {
	if equalLines(t.lines, lines) {
		return false
	}

	follow := t.viewport.AtBottom() || len(t.lines) == 0
	t.lines = lines
	t.viewport.SetContent(strings.Join(lines, "\n"))
	if follow {
		t.viewport.GotoBottom()
	}
	return true
}

func (t *Terminal) Lines() []string {
	return t.lines
}

func (t *Terminal) ScrollUp() {
	t.viewport.LineUp(1)
}

func (t *Terminal) ScrollDown() {
	t.viewport.LineDown(1)
}

func (t *Terminal) Update(msg tea.Msg) (viewport.Model, tea.Cmd) {
	// Only pass window resizes to the viewport so it does not consume our key bindings
	switch msg.(type) {
	case tea.WindowSizeMsg:
		return t.viewport.Update(msg)
	default:
		return t.viewport, nil
	}
}

func (t *Terminal) View() string {
	return t.viewport.View()
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
