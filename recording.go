package fedsync

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// CSVHeader is the first line of every recording
const CSVHeader = "MM:DD:YYYY hh:mm:ss,LibaryVersion_Sketch,Device_Number,Battery_Voltage,Motor_Turns,Trial_Info,FR,Event,Active_Poke,Left_Poke_Count,Right_Poke_Count,Pellet_Count,Block_Pellet_Count,Retrieval_Time,Poke_Time\n"

// CounterResetter is the device operation a recording starts with
type CounterResetter interface {
	ResetCounters() error
}

// RecordingSession owns the open output file. A file is open exactly when
// Recording reports true.
type RecordingSession struct {
	mu        sync.Mutex
	fs        afero.Fs
	file      afero.File
	w         *bufio.Writer
	path      string
	id        uuid.UUID
	recording bool
}

// NewRecordingSession returns a stopped session writing to fs
func NewRecordingSession(fs afero.Fs) *RecordingSession {
	return &RecordingSession{fs: fs}
}

// Recording reports whether a file is open
func (s *RecordingSession) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Path returns the open file name, or "" when stopped
func (s *RecordingSession) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Start resets the device counters, creates a new run file derived from
// base and writes the header. It returns the file name.
func (s *RecordingSession) Start(dev CounterResetter, base string, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.start(dev, base, now)
}

func (s *RecordingSession) start(dev CounterResetter, base string, now time.Time) (string, error) {
	if s.recording {
		return "", ErrAlreadyRecording
	}
	if dev == nil {
		return "", ErrNoConnection
	}
	if err := dev.ResetCounters(); err != nil {
		return "", fmt.Errorf("reset counters: %w", err)
	}

	file, name, err := s.create(base, now)
	if err != nil {
		return "", err
	}

	w := bufio.NewWriter(file)
	if _, err := w.WriteString(CSVHeader); err != nil {
		file.Close()
		return "", fmt.Errorf("write header to %s: %w", name, err)
	}

	s.file = file
	s.w = w
	s.path = name
	s.id = uuid.New()
	s.recording = true

	log.Info().Str("session", s.id.String()).Str("file", name).Msg("recording started")
	return name, nil
}

// create opens a fresh run file. O_EXCL keeps a file that appeared after
// the name was chosen from being overwritten; the next free name is tried.
func (s *RecordingSession) create(base string, now time.Time) (afero.File, string, error) {
	for {
		name, err := NextRunFile(s.fs, base, now)
		if err != nil {
			return nil, "", err
		}
		file, err := s.fs.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("create %s: %w", name, err)
		}
		return file, name, nil
	}
}

// Stop flushes and closes the file
func (s *RecordingSession) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop()
}

func (s *RecordingSession) stop() error {
	if !s.recording {
		return ErrNotRecording
	}

	flushErr := s.w.Flush()
	closeErr := s.file.Close()

	log.Info().Str("session", s.id.String()).Str("file", s.path).Msg("recording stopped")

	s.file = nil
	s.w = nil
	s.path = ""
	s.id = uuid.Nil
	s.recording = false

	if flushErr != nil {
		return fmt.Errorf("flush recording: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close recording: %w", closeErr)
	}
	return nil
}

// Toggle starts a stopped session or stops a running one and returns the
// new recording state.
func (s *RecordingSession) Toggle(dev CounterResetter, base string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recording {
		return false, s.stop()
	}
	if _, err := s.start(dev, base, now); err != nil {
		return false, err
	}
	return true, nil
}

// Append writes a device frame verbatim, stray terminators removed
func (s *RecordingSession) Append(frame string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording {
		return ErrNotRecording
	}
	if _, err := s.w.WriteString(strings.Trim(frame, "\x00")); err != nil {
		return fmt.Errorf("append to %s: %w", s.path, err)
	}
	return nil
}
