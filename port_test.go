package fedsync

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.BaudRate != 57600 {
		t.Errorf("Expected BaudRate 57600, got %d", config.BaudRate)
	}

	if config.DataBits != 8 {
		t.Errorf("Expected DataBits 8, got %d", config.DataBits)
	}

	if config.StopBits != 1 {
		t.Errorf("Expected StopBits 1, got %d", config.StopBits)
	}

	if config.Parity != ParityNone {
		t.Errorf("Expected Parity None, got %v", config.Parity)
	}

	if config.ReadTimeout != 2*time.Second {
		t.Errorf("Expected ReadTimeout 2s, got %v", config.ReadTimeout)
	}

	if config.WriteMode != WriteModeBuffered {
		t.Errorf("Expected buffered writes, got %v", config.WriteMode)
	}
}

func TestFunctionalOptions(t *testing.T) {
	config := DefaultConfig()

	err := WithBaudRate(9600)(&config)
	if err != nil {
		t.Errorf("WithBaudRate failed: %v", err)
	}
	if config.BaudRate != 9600 {
		t.Errorf("Expected BaudRate 9600, got %d", config.BaudRate)
	}

	err = WithDataBits(7)(&config)
	if err != nil {
		t.Errorf("WithDataBits failed: %v", err)
	}
	if config.DataBits != 7 {
		t.Errorf("Expected DataBits 7, got %d", config.DataBits)
	}

	err = WithStopBits(2)(&config)
	if err != nil {
		t.Errorf("WithStopBits failed: %v", err)
	}
	if config.StopBits != 2 {
		t.Errorf("Expected StopBits 2, got %d", config.StopBits)
	}

	err = WithParity(ParityEven)(&config)
	if err != nil {
		t.Errorf("WithParity failed: %v", err)
	}
	if config.Parity != ParityEven {
		t.Errorf("Expected Parity Even, got %v", config.Parity)
	}
}

func TestInvalidBaudRate(t *testing.T) {
	config := DefaultConfig()
	err := WithBaudRate(123456)(&config)
	if err != ErrInvalidBaudRate {
		t.Errorf("Expected ErrInvalidBaudRate, got %v", err)
	}
}

func TestInvalidDataBits(t *testing.T) {
	config := DefaultConfig()
	err := WithDataBits(9)(&config)
	if err != ErrInvalidConfig {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestInvalidStopBits(t *testing.T) {
	config := DefaultConfig()
	err := WithStopBits(3)(&config)
	if err != ErrInvalidConfig {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestGetBaudRate(t *testing.T) {
	tests := []struct {
		input    int
		hasError bool
	}{
		{115200, false},
		{9600, false},
		{57600, false},
		{123456, true},
	}

	for _, test := range tests {
		result, err := getBaudRate(test.input)
		if test.hasError {
			if err != ErrInvalidBaudRate {
				t.Errorf("Expected ErrInvalidBaudRate for %d, got %v", test.input, err)
			}
		} else {
			if err != nil {
				t.Errorf("Unexpected error for baud rate %d: %v", test.input, err)
			}
			if result == 0 {
				t.Errorf("Got zero result for valid baud rate %d", test.input)
			}
		}
	}
}

func TestOpenError(t *testing.T) {
	tests := []struct {
		errno error
		want  error
	}{
		{unix.ENOENT, ErrDeviceNotFound},
		{unix.ENXIO, ErrDeviceNotFound},
		{unix.EACCES, ErrPermissionDenied},
		{unix.EPERM, ErrPermissionDenied},
		{unix.EBUSY, ErrDeviceInUse},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.errno), func(t *testing.T) {
			if err := openError("/dev/ttyACM0", tt.errno); !errors.Is(err, tt.want) {
				t.Errorf("openError(%v) = %v, want %v", tt.errno, err, tt.want)
			}
		})
	}

	err := openError("/dev/ttyACM0", unix.EIO)
	if !errors.Is(err, unix.EIO) {
		t.Errorf("openError(EIO) = %v, want wrapped EIO", err)
	}
}

func TestOpenNonExistentDevice(t *testing.T) {
	_, err := Open("/dev/nonexistent")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
}

func TestOpenRejectsBadOptions(t *testing.T) {
	_, err := Open("/dev/null", WithBaudRate(123456))
	if !errors.Is(err, ErrInvalidBaudRate) {
		t.Errorf("Expected ErrInvalidBaudRate, got %v", err)
	}
}
