package components

import (
	"fmt"
	"time"

	"github.com/allbin/go-fedsync"
	"github.com/allbin/go-fedsync/internal/tui/colors"
	"github.com/allbin/go-fedsync/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// ConnectionInfo is the port configuration shown on the right of the bar
type ConnectionInfo struct {
	BaudRate    int
	DataBits    int
	StopBits    int
	Parity      fedsync.Parity
	ReadTimeout time.Duration
}

func NewConnectionInfo(config fedsync.Config) *ConnectionInfo {
	return &ConnectionInfo{
		BaudRate:    config.BaudRate,
		DataBits:    config.DataBits,
		StopBits:    config.StopBits,
		Parity:      config.Parity,
		ReadTimeout: config.ReadTimeout,
	}
}

// Status is what the bar shows on each render
type Status struct {
	Port          string
	Connected     bool
	Recording     bool
	RecordingPath string
	Timestamp     string
}

type StatusBar struct {
	title          string
	width          int
	connectionInfo *ConnectionInfo
}

func NewStatusBar(title string) *StatusBar {
	return &StatusBar{title: title}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetConnectionInfo(info *ConnectionInfo) {
	sb.connectionInfo = info
}

func parityToString(p fedsync.Parity) string {
	switch p {
	case fedsync.ParityEven:
		return "E"
	case fedsync.ParityOdd:
		return "O"
	default:
		return "N"
	}
}

// Header renders the title line above the log
func (sb *StatusBar) Header() string {
	return styles.TitleStyle.Render(sb.title)
}

// Render draws the bottom bar: recording badge, port with a connection
// indicator, the recording file, then port settings and the clock.
func (sb *StatusBar) Render(s Status) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	// Section 1: recording badge (like NORMAL in nvim)
	badgeText := "IDLE"
	if s.Recording {
		badgeText = "REC"
	}
	badge := styles.RecordingBadge(s.Recording).Render(badgeText)

	// Section 2: port path
	portName := s.Port
	if portName == "" {
		portName = "no port"
	}
	port := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(portName)

	// Section 3: single character connection indicator
	indicator := "○"
	status := styles.StatusDisconnected
	if s.Connected {
		indicator = "●"
		status = styles.StatusConnected
	}
	connectionIndicator := styles.GetStatusStyle(status).Render(indicator)

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	leftParts := []string{badge, port, connectionIndicator, divider}
	if s.Recording && s.RecordingPath != "" {
		file := lipgloss.NewStyle().
			Foreground(colors.Peach).
			Render(s.RecordingPath)
		leftParts = append(leftParts, file)
	}
	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, leftParts...)

	// Section 4: port settings
	connInfo := "⚡ serial"
	if sb.connectionInfo != nil {
		connInfo = fmt.Sprintf("⚡ %d baud %d%s%d timeout %v",
			sb.connectionInfo.BaudRate,
			sb.connectionInfo.DataBits,
			parityToString(sb.connectionInfo.Parity),
			sb.connectionInfo.StopBits,
			sb.connectionInfo.ReadTimeout)
	}
	connectionDetails := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(connInfo)

	// Section 5: clock
	clock := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(s.Timestamp)

	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, connectionDetails, divider, clock)

	spacerWidth := terminalWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	statusBarStyle := lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth)

	return statusBarStyle.Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}
