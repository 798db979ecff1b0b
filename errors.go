package fedsync

import "errors"

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")
	ErrInvalidBaudRate  = errors.New("invalid baud rate")
	ErrInvalidConfig    = errors.New("invalid serial configuration")
	ErrPortClosed       = errors.New("serial port is closed")
	ErrReadTimeout      = errors.New("read operation timed out")

	// Framing errors
	ErrFrameDecode = errors.New("frame is not valid UTF-8")

	// Caller-sequencing errors
	ErrDisabled     = errors.New("connection is shut down")
	ErrNoConnection = errors.New("no active connection")

	// Recording errors
	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
)
