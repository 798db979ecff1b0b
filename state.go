package fedsync

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"go.uber.org/atomic"
)

// Dialer builds a Manager for a device path
type Dialer func(path string) (*Manager, error)

// EndpointDialer returns a Dialer that opens real ports with opts applied
func EndpointDialer(opts ...Option) Dialer {
	return func(path string) (*Manager, error) {
		endpoint, err := NewEndpoint(path, opts...)
		if err != nil {
			return nil, err
		}
		return Dial(endpoint)
	}
}

// SystemState is what the operator interface and the poll loop share: the
// current connection, the recording session and the log buffer. It is
// created at startup and torn down with Close.
type SystemState struct {
	dial    Dialer
	logs    *LogBuffer
	session *RecordingSession
	manager atomic.Pointer[Manager]

	// selectMu serializes port switches; mu guards the fields below
	selectMu   sync.Mutex
	mu         sync.Mutex
	ports      []string
	port       string
	outputPath string
}

// NewSystemState returns a disconnected state recording to fs
func NewSystemState(dial Dialer, fs afero.Fs) *SystemState {
	return &SystemState{
		dial:    dial,
		logs:    NewLogBuffer(),
		session: NewRecordingSession(fs),
	}
}

// Logs returns the operator log buffer
func (s *SystemState) Logs() *LogBuffer {
	return s.logs
}

// LogText renders the operator log
func (s *SystemState) LogText() string {
	return s.logs.Text()
}

// Manager returns the current connection, or nil
func (s *SystemState) Manager() *Manager {
	return s.manager.Load()
}

// Recording reports whether a recording is open
func (s *SystemState) Recording() bool {
	return s.session.Recording()
}

// RecordingPath returns the open recording file, or ""
func (s *SystemState) RecordingPath() string {
	return s.session.Path()
}

// Ports returns the discovered port list
func (s *SystemState) Ports() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ports...)
}

// Port returns the selected port path
func (s *SystemState) Port() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// SetPorts stores the discovered ports and connects to the first one
func (s *SystemState) SetPorts(ports []string) error {
	s.mu.Lock()
	s.ports = append([]string(nil), ports...)
	s.mu.Unlock()

	if len(ports) == 0 {
		return nil
	}
	return s.SelectPort(0)
}

// SelectPort switches the connection to ports[index]. Selecting the port
// already connected does nothing. The state lock is not held while the old
// connection drains and the new one opens, so readers are never blocked on
// the device.
func (s *SystemState) SelectPort(index int) error {
	s.selectMu.Lock()
	defer s.selectMu.Unlock()

	s.mu.Lock()
	if index < 0 || index >= len(s.ports) {
		n := len(s.ports)
		s.mu.Unlock()
		return fmt.Errorf("port index %d out of range (%d ports)", index, n)
	}
	path := s.ports[index]
	s.mu.Unlock()

	if current := s.manager.Load(); current != nil && current.Path() == path {
		s.setPort(path)
		return nil
	}

	s.Shutdown()
	m, err := s.dial(path)
	s.setPort(path)
	if err != nil {
		s.logs.Log("Failed to Connect")
		s.logs.Log(fmt.Sprintf("Error: %v", err))
		log.Error().Err(err).Str("port", path).Msg("connect failed")
		return fmt.Errorf("connect %s: %w", path, err)
	}
	s.manager.Store(m)
	return nil
}

func (s *SystemState) setPort(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.port = path
}

// OutputPath returns the base path recordings are named from
func (s *SystemState) OutputPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputPath
}

// SetOutputPath sets the base path for new recordings
func (s *SystemState) SetOutputPath(path string, quiet bool) {
	if runtime.GOOS == "windows" {
		path = strings.TrimLeft(path, "/")
	}

	s.mu.Lock()
	s.outputPath = path
	s.mu.Unlock()

	if !quiet {
		s.logs.Append("file path set")
		s.logs.Log(path)
	}
}

// Sync sends the host time to the device and logs the echoed timestamp
func (s *SystemState) Sync(now time.Time) (string, error) {
	m := s.manager.Load()
	if m == nil {
		s.logs.Append("Failed to Sync")
		s.logs.Log("Error: No Connection")
		return "", ErrNoConnection
	}

	echoed, err := m.SyncTime(now)
	if err != nil {
		s.logs.Log("Failed to Sync")
		log.Warn().Err(err).Str("port", m.Path()).Msg("sync failed")
		return "", err
	}

	s.logs.Append("Synced time to")
	s.logs.Log(echoed)
	return echoed, nil
}

// ToggleRecording starts or stops the recording and returns the new state
func (s *SystemState) ToggleRecording(now time.Time) (bool, error) {
	m := s.manager.Load()
	if m == nil {
		s.logs.Append("Failed to Record")
		s.logs.Log("Error: No Connection")
		return s.session.Recording(), ErrNoConnection
	}

	recording, err := s.session.Toggle(m, s.OutputPath(), now)
	if err != nil {
		s.logs.Log("Failed to Record")
		s.logs.Log(fmt.Sprintf("Error: %v", err))
		log.Error().Err(err).Msg("recording toggle failed")
		return s.session.Recording(), err
	}

	if recording {
		s.logs.Log("Recording Started")
	} else {
		s.logs.Log("Recording Stopped")
	}
	return recording, nil
}

// deliver sends a received frame to the log and, when recording, the file
func (s *SystemState) deliver(frame string) {
	s.logs.Log(frame)
	if err := s.session.Append(frame); err != nil && !errors.Is(err, ErrNotRecording) {
		s.logs.Log(fmt.Sprintf("Write failed: %v", err))
		log.Error().Err(err).Msg("recording append failed")
	}
}

// readFailed records a failed read. Errors that leave the link usable
// (timeout, bad frame) only log; anything else ends an open recording.
func (s *SystemState) readFailed(m *Manager, err error) {
	s.logs.Log(fmt.Sprintf("Read failed: %v", err))
	log.Warn().Err(err).Str("port", m.Path()).Msg("read failed")

	if errors.Is(err, ErrReadTimeout) || errors.Is(err, ErrFrameDecode) {
		return
	}
	s.stopRecording("Recording Stopped (connection lost)")
}

// connectionLost drops a manager whose device no longer answers status
// queries, so the poll loop stops hammering a dead descriptor.
func (s *SystemState) connectionLost(m *Manager, err error) {
	if s.manager.Load() != m {
		// already replaced by a port switch or shutdown
		return
	}
	s.logs.Log(fmt.Sprintf("Connection lost: %v", err))
	log.Error().Err(err).Str("port", m.Path()).Msg("connection lost")

	s.stopRecording("Recording Stopped (connection lost)")
	if s.manager.CompareAndSwap(m, nil) {
		m.Shutdown()
	}
}

func (s *SystemState) stopRecording(msg string) {
	if !s.session.Recording() {
		return
	}
	if err := s.session.Stop(); err != nil && !errors.Is(err, ErrNotRecording) {
		s.logs.Log(fmt.Sprintf("Error: %v", err))
		log.Error().Err(err).Msg("recording stop failed")
		return
	}
	s.logs.Log(msg)
}

// Shutdown detaches the current connection and shuts it down
func (s *SystemState) Shutdown() error {
	m := s.manager.Swap(nil)
	if m == nil {
		return nil
	}
	return m.Shutdown()
}

// Close force-stops an open recording and shuts the connection down
func (s *SystemState) Close() error {
	var stopErr error
	if s.session.Recording() {
		if err := s.session.Stop(); err != nil && !errors.Is(err, ErrNotRecording) {
			stopErr = err
		} else {
			s.logs.Log("Recording Stopped")
		}
	}
	return errors.Join(stopErr, s.Shutdown())
}
