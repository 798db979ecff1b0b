package models

import (
	"context"
	"sync"
	"time"

	"github.com/allbin/go-fedsync"
	tea "github.com/charmbracelet/bubbletea"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModePath
)

func (m InputMode) String() string {
	switch m {
	case InputModePath:
		return "PATH"
	default:
		return "NORMAL"
	}
}

// TickMsg asks the view to refresh from the SystemState
type TickMsg time.Time

// SyncDoneMsg carries the result of a time sync
type SyncDoneMsg struct {
	Echoed string
	Err    error
}

// RecordDoneMsg carries the result of a recording toggle
type RecordDoneMsg struct {
	Recording bool
	Err       error
}

// PortSelectedMsg reports that a port switch finished
type PortSelectedMsg struct {
	Index int
	Err   error
}

// AppModel wraps the SystemState for the operator interface. Device
// operations block on the serial link, so they run as tea.Cmds and report
// back through the messages above.
type AppModel struct {
	state *fedsync.SystemState

	ready     bool
	busy      bool
	inputMode InputMode

	// Cancellation and synchronization
	cancel context.CancelFunc
	ctx    context.Context
	mu     sync.RWMutex
}

func NewAppModel(state *fedsync.SystemState) *AppModel {
	ctx, cancel := context.WithCancel(context.Background())

	return &AppModel{
		state:     state,
		inputMode: InputModeNormal,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *AppModel) State() *fedsync.SystemState {
	return m.state
}

func (m *AppModel) IsConnected() bool {
	return m.state.Manager() != nil
}

func (m *AppModel) IsReady() bool {
	return m.ready
}

func (m *AppModel) SetReady(ready bool) {
	m.ready = ready
}

// IsBusy reports whether a device operation is still running
func (m *AppModel) IsBusy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.busy
}

func (m *AppModel) setBusy(busy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = busy
}

func (m *AppModel) GetInputMode() InputMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode
}

func (m *AppModel) SetInputMode(mode InputMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputMode = mode
}

func (m *AppModel) IsEditingPath() bool {
	return m.GetInputMode() == InputModePath
}

func (m *AppModel) GetContext() context.Context {
	return m.ctx
}

// Sync returns a command that syncs the device clock. Nil while another
// device operation is running.
func (m *AppModel) Sync() tea.Cmd {
	if m.IsBusy() {
		return nil
	}
	m.setBusy(true)
	return func() tea.Msg {
		defer m.setBusy(false)
		echoed, err := m.state.Sync(time.Now())
		return SyncDoneMsg{Echoed: echoed, Err: err}
	}
}

// ToggleRecording returns a command that starts or stops the recording
func (m *AppModel) ToggleRecording() tea.Cmd {
	if m.IsBusy() {
		return nil
	}
	m.setBusy(true)
	return func() tea.Msg {
		defer m.setBusy(false)
		recording, err := m.state.ToggleRecording(time.Now())
		return RecordDoneMsg{Recording: recording, Err: err}
	}
}

// SelectPort returns a command that switches the connection
func (m *AppModel) SelectPort(index int) tea.Cmd {
	if m.IsBusy() {
		return nil
	}
	m.setBusy(true)
	return func() tea.Msg {
		defer m.setBusy(false)
		return PortSelectedMsg{Index: index, Err: m.state.SelectPort(index)}
	}
}

// Tick schedules the next view refresh
func Tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *AppModel) Cancel() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Cleanup stops the poll loop and closes the recording and connection
func (m *AppModel) Cleanup() error {
	m.Cancel()
	return m.state.Close()
}
