package models

import (
	"errors"
	"testing"

	"github.com/allbin/go-fedsync"
	"github.com/spf13/afero"
)

func noDevice(path string) (*fedsync.Manager, error) {
	return nil, fedsync.ErrDeviceNotFound
}

func TestSyncWithoutConnection(t *testing.T) {
	m := NewAppModel(fedsync.NewSystemState(noDevice, afero.NewMemMapFs()))

	cmd := m.Sync()
	if cmd == nil {
		t.Fatal("Sync() returned no command")
	}
	if !m.IsBusy() {
		t.Error("IsBusy() = false while a sync is pending")
	}
	if m.Sync() != nil {
		t.Error("second Sync() while busy returned a command")
	}

	msg, ok := cmd().(SyncDoneMsg)
	if !ok {
		t.Fatalf("command returned %T, want SyncDoneMsg", msg)
	}
	if !errors.Is(msg.Err, fedsync.ErrNoConnection) {
		t.Errorf("SyncDoneMsg.Err = %v, want ErrNoConnection", msg.Err)
	}
	if m.IsBusy() {
		t.Error("IsBusy() = true after the command finished")
	}
}

func TestToggleRecordingWithoutConnection(t *testing.T) {
	m := NewAppModel(fedsync.NewSystemState(noDevice, afero.NewMemMapFs()))

	msg, ok := m.ToggleRecording()().(RecordDoneMsg)
	if !ok {
		t.Fatal("command did not return RecordDoneMsg")
	}
	if msg.Recording || !errors.Is(msg.Err, fedsync.ErrNoConnection) {
		t.Errorf("RecordDoneMsg = %+v", msg)
	}
}

func TestSelectPortReportsDialFailure(t *testing.T) {
	state := fedsync.NewSystemState(noDevice, afero.NewMemMapFs())
	state.SetPorts([]string{"/dev/ttyACM0", "/dev/ttyACM1"})
	m := NewAppModel(state)

	msg := m.SelectPort(1)().(PortSelectedMsg)
	if msg.Index != 1 || !errors.Is(msg.Err, fedsync.ErrDeviceNotFound) {
		t.Errorf("PortSelectedMsg = %+v", msg)
	}
	if m.IsConnected() {
		t.Error("IsConnected() = true without a device")
	}
}

func TestInputMode(t *testing.T) {
	m := NewAppModel(fedsync.NewSystemState(noDevice, afero.NewMemMapFs()))
	if m.IsEditingPath() {
		t.Error("new model starts in path mode")
	}
	m.SetInputMode(InputModePath)
	if !m.IsEditingPath() || m.GetInputMode().String() != "PATH" {
		t.Errorf("mode = %v", m.GetInputMode())
	}
}

func TestCleanupCancelsContext(t *testing.T) {
	m := NewAppModel(fedsync.NewSystemState(noDevice, afero.NewMemMapFs()))
	if err := m.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	select {
	case <-m.GetContext().Done():
	default:
		t.Error("context not cancelled by Cleanup")
	}
}
