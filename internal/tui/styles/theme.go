package styles

import (
	"github.com/allbin/go-fedsync/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Header styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	// Status styles
	StatusConnectedStyle = lipgloss.NewStyle().
				Foreground(colors.Connected).
				Bold(true)

	StatusDisconnectedStyle = lipgloss.NewStyle().
				Foreground(colors.Disconnected).
				Bold(true)

	// Recording badge, shown in the status bar
	RecordingStyle = lipgloss.NewStyle().
			Foreground(colors.Base).
			Background(colors.Recording).
			Bold(true).
			Padding(0, 1)

	IdleStyle = lipgloss.NewStyle().
			Foreground(colors.Base).
			Background(colors.Idle).
			Bold(true).
			Padding(0, 1)

	// Port selector styles
	PortStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0).
			Padding(0, 1)

	PortSelectedStyle = lipgloss.NewStyle().
				Foreground(colors.Base).
				Background(colors.Selected).
				Bold(true).
				Padding(0, 1)

	// Content area styles
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	// Input styles
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	// Info styles
	InfoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Align(lipgloss.Center)
)

type StatusType int

const (
	StatusConnected StatusType = iota
	StatusDisconnected
)

func GetStatusStyle(status StatusType) lipgloss.Style {
	switch status {
	case StatusConnected:
		return StatusConnectedStyle
	default:
		return StatusDisconnectedStyle
	}
}

// RecordingBadge returns the style for the recording indicator
func RecordingBadge(recording bool) lipgloss.Style {
	if recording {
		return RecordingStyle
	}
	return IdleStyle
}
