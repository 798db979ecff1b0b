/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/allbin/go-fedsync"
	"github.com/allbin/go-fedsync/internal/tui/components"
	"github.com/allbin/go-fedsync/internal/tui/keys"
	"github.com/allbin/go-fedsync/internal/tui/models"
	"github.com/allbin/go-fedsync/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const refreshInterval = 100 * time.Millisecond

// uiCmd represents the ui command
var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Interactive operator interface",
	Long: `Open the operator interface for a FED3 device.

The first available serial port is connected on start. The interface shows
the operator log (device output and status messages), the selected port and
whether a recording is running. Features include:
- Sync the device clock to the host time (s)
- Start and stop recording to a new run file (r)
- Switch between ports (tab / shift+tab)
- Change the recording output path (o)

Diagnostic logs are only written when --log-file is set, since the
interface owns the terminal.

Example usage:
  fedsync ui
  fedsync ui --output data/ --log-file fedsync.log`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runUI(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

// uiModel represents the Bubble Tea model for the ui command
type uiModel struct {
	*models.AppModel
	terminal  *components.Terminal
	statusBar *components.StatusBar
	ports     *components.PortList
	input     *components.Input
	help      help.Model
	keys      keys.UIKeys
}

func runUI() error {
	endpoint, err := fedsync.NewEndpoint("", portOptions()...)
	if err != nil {
		return err
	}

	state := fedsync.NewSystemState(fedsync.EndpointDialer(portOptions()...), afero.NewOsFs())
	state.SetOutputPath(viper.GetString("output"), true)

	ports, err := fedsync.AvailablePorts()
	if err != nil {
		log.Warn().Err(err).Msg("port discovery failed")
	}
	// A failed first connect is already in the operator log
	if err := state.SetPorts(ports); err != nil {
		log.Warn().Err(err).Msg("initial connect failed")
	}

	statusBar := components.NewStatusBar("FED3 Sync")
	statusBar.SetConnectionInfo(components.NewConnectionInfo(endpoint.Config))

	portList := components.NewPortList()
	portList.SetPorts(state.Ports())

	m := uiModel{
		AppModel:  models.NewAppModel(state),
		terminal:  components.NewTerminal(0, 0), // Will be properly sized by WindowSizeMsg
		statusBar: statusBar,
		ports:     portList,
		input:     components.NewInput("directory ending in / or a file name, e.g. data/cage4.csv"),
		help:      help.New(),
		keys:      keys.NewUIKeys(),
	}

	poller := fedsync.NewPoller(state, viper.GetDuration("poll-interval"))
	done := make(chan error, 1)
	go func() {
		done <- poller.Run(m.GetContext())
	}()

	_, runErr := tea.NewProgram(&m, tea.WithAltScreen()).Run()

	m.Cancel()
	pollErr := <-done
	closeErr := m.Cleanup()

	switch {
	case runErr != nil:
		return runErr
	case pollErr != nil:
		return pollErr
	default:
		return closeErr
	}
}

func (m *uiModel) Init() tea.Cmd {
	return models.Tick(refreshInterval)
}

func (m *uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Header, port selector, input (with border) and status bar
		verticalMarginHeight := 1 + 1 + 3 + 1 + 1
		if m.help.ShowAll {
			verticalMarginHeight += 3
		}

		m.terminal.SetSize(msg.Width, msg.Height-verticalMarginHeight)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.SetReady(true)

	case models.TickMsg:
		m.terminal.SetLines(m.State().Logs().Lines())
		cmds = append(cmds, models.Tick(refreshInterval))

	case models.SyncDoneMsg, models.RecordDoneMsg:
		// results are already in the operator log
		m.terminal.SetLines(m.State().Logs().Lines())

	case models.PortSelectedMsg:
		// the state keeps the chosen port even when connecting failed
		m.ports.Select(msg.Index)
		m.terminal.SetLines(m.State().Logs().Lines())

	case tea.KeyMsg:
		if m.IsEditingPath() {
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				return m, nil
			case key.Matches(msg, m.keys.Enter):
				path := m.input.Value()
				m.State().SetOutputPath(path, false)
				m.input.AddToHistory(path)
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				m.terminal.SetLines(m.State().Logs().Lines())
				return m, nil
			}

			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Cancel()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.keys.Sync):
			cmds = append(cmds, m.Sync())

		case key.Matches(msg, m.keys.Record):
			cmds = append(cmds, m.ToggleRecording())

		case key.Matches(msg, m.keys.NextPort):
			if len(m.ports.Ports()) > 1 {
				cmds = append(cmds, m.SelectPort(m.ports.Next()))
			}

		case key.Matches(msg, m.keys.PrevPort):
			if len(m.ports.Ports()) > 1 {
				cmds = append(cmds, m.SelectPort(m.ports.Prev()))
			}

		case key.Matches(msg, m.keys.Output):
			m.SetInputMode(models.InputModePath)
			m.input.SetValue(m.State().OutputPath())
			cmds = append(cmds, m.input.Focus())

		case key.Matches(msg, m.keys.Up):
			m.terminal.ScrollUp()

		case key.Matches(msg, m.keys.Down):
			m.terminal.ScrollDown()
		}
	}

	// Update terminal viewport for window resize messages
	if _, ok := msg.(tea.WindowSizeMsg); ok {
		_, cmd := m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *uiModel) View() string {
	var content string
	if m.IsReady() {
		content = m.terminal.View()
	} else {
		content = styles.InfoStyle.Render("Initializing...")
	}

	state := m.State()
	statusBar := m.statusBar.Render(components.Status{
		Port:          state.Port(),
		Connected:     m.IsConnected(),
		Recording:     state.Recording(),
		RecordingPath: state.RecordingPath(),
		Timestamp:     time.Now().Format("15:04:05"),
	})

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.statusBar.Header(),
		m.ports.View(),
		styles.ContentBorderStyle.Render(content),
		m.input.View(state.OutputPath()),
		statusBar,
		m.help.View(m.keys),
	)
}
