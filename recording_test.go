package fedsync

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
)

type countingResetter struct {
	calls int
	err   error
}

func (r *countingResetter) ResetCounters() error {
	r.calls++
	return r.err
}

var recordingTime = time.Date(2024, 4, 2, 9, 30, 0, 0, time.Local)

func TestRecordingStartWritesHeader(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewRecordingSession(fs)
	dev := &countingResetter{}

	name, err := s.Start(dev, "/runs/cage.csv", recordingTime)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if name != "/runs/cage-2024-04-02_run-1.csv" {
		t.Errorf("Start() file = %q", name)
	}
	if dev.calls != 1 {
		t.Errorf("ResetCounters called %d times, want 1", dev.calls)
	}
	if !s.Recording() || s.Path() != name {
		t.Errorf("Recording() = %v, Path() = %q after start", s.Recording(), s.Path())
	}

	if err := s.Append("04/02/2024 09:30:01,6.2,1,4.1,0,FR1,1,Left,Left,1,0,0,0,NaN,0.12\r\n"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Append("\x00tail\x00"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	data, err := afero.ReadFile(fs, name)
	if err != nil {
		t.Fatal(err)
	}
	want := CSVHeader + "04/02/2024 09:30:01,6.2,1,4.1,0,FR1,1,Left,Left,1,0,0,0,NaN,0.12\r\n" + "tail"
	if string(data) != want {
		t.Errorf("file contents = %q, want %q", data, want)
	}
}

func TestRecordingToggleTwice(t *testing.T) {
	s := NewRecordingSession(afero.NewMemMapFs())
	dev := &countingResetter{}

	on, err := s.Toggle(dev, "/runs/", recordingTime)
	if err != nil || !on {
		t.Fatalf("first Toggle() = %v, %v; want true, nil", on, err)
	}
	on, err = s.Toggle(dev, "/runs/", recordingTime)
	if err != nil || on {
		t.Fatalf("second Toggle() = %v, %v; want false, nil", on, err)
	}

	if s.Recording() {
		t.Error("Recording() = true after two toggles")
	}
	if s.file != nil || s.w != nil {
		t.Error("file handle still held after stop")
	}
}

func TestRecordingSequencingErrors(t *testing.T) {
	s := NewRecordingSession(afero.NewMemMapFs())

	if err := s.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Stop() while stopped error = %v, want ErrNotRecording", err)
	}
	if err := s.Append("x"); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Append() while stopped error = %v, want ErrNotRecording", err)
	}
	if _, err := s.Start(nil, "/runs/", recordingTime); !errors.Is(err, ErrNoConnection) {
		t.Errorf("Start(nil) error = %v, want ErrNoConnection", err)
	}

	if _, err := s.Start(&countingResetter{}, "/runs/", recordingTime); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := s.Start(&countingResetter{}, "/runs/", recordingTime); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("Start() while recording error = %v, want ErrAlreadyRecording", err)
	}
}

func TestRecordingResetFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewRecordingSession(fs)

	_, err := s.Start(&countingResetter{err: ErrDisabled}, "/runs/", recordingTime)
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("Start() error = %v, want ErrDisabled", err)
	}
	if s.Recording() {
		t.Error("Recording() = true after failed start")
	}
	if exists, _ := afero.DirExists(fs, "/runs"); exists {
		t.Error("a file was created although the reset failed")
	}
}

func TestRecordingNeverOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	existing := "/runs/2024-14-2_run-1.csv"
	if err := afero.WriteFile(fs, existing, []byte("earlier run"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewRecordingSession(fs)
	name, err := s.Start(&countingResetter{}, "/runs/", recordingTime)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if name != "/runs/2024-14-2_run-2.csv" {
		t.Errorf("Start() file = %q, want run-2", name)
	}
	data, _ := afero.ReadFile(fs, existing)
	if string(data) != "earlier run" {
		t.Errorf("existing run modified: %q", data)
	}
}

func TestRecordingToggleRacingStop(t *testing.T) {
	s := NewRecordingSession(afero.NewMemMapFs())
	dev := &countingResetter{}

	for i := 0; i < 50; i++ {
		if _, err := s.Start(dev, "/runs/", recordingTime); err != nil {
			t.Fatalf("Start() error = %v", err)
		}

		var wg sync.WaitGroup
		var toggleErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Stop()
		}()
		go func() {
			defer wg.Done()
			_, toggleErr = s.Toggle(dev, "/runs/", recordingTime)
		}()
		wg.Wait()

		if toggleErr != nil {
			t.Fatalf("Toggle() racing Stop() error = %v", toggleErr)
		}
		if s.Recording() {
			s.Stop()
		}
	}
}
