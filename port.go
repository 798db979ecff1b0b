package fedsync

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Port is a raw byte stream over a serial device
type Port interface {
	io.ReadWriteCloser

	// Buffered reports how many received bytes are waiting to be read
	Buffered() (int, error)
	Drain() error
	FlushInput() error
}

// port is the concrete implementation of the Port interface
type port struct {
	mu     sync.RWMutex
	fd     int
	config Config
	closed bool
}

// Ensure port implements Port interface at compile time
var _ Port = (*port)(nil)

// getBaudRate converts an integer baud rate to the unix constant
func getBaudRate(rate int) (uint32, error) {
	switch rate {
	case 1200:
		return unix.B1200, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 921600:
		return unix.B921600, nil
	default:
		return 0, ErrInvalidBaudRate
	}
}

// vtime converts a read timeout to termios deciseconds
func vtime(timeout time.Duration) uint8 {
	return uint8(timeout / (100 * time.Millisecond))
}

// openError maps errno values from open(2) to package errors
func openError(device string, err error) error {
	switch {
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENXIO):
		return ErrDeviceNotFound
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return ErrPermissionDenied
	case errors.Is(err, unix.EBUSY):
		return ErrDeviceInUse
	default:
		return fmt.Errorf("failed to open %s: %w", device, err)
	}
}

// Open opens a serial port with the given device path and options
func Open(device string, opts ...Option) (Port, error) {
	endpoint, err := NewEndpoint(device, opts...)
	if err != nil {
		return nil, err
	}
	return OpenEndpoint(endpoint)
}

// OpenEndpoint opens the device described by endpoint
func OpenEndpoint(endpoint Endpoint) (Port, error) {
	config := endpoint.Config

	flags := unix.O_RDWR | unix.O_NOCTTY
	if config.WriteMode == WriteModeSynced {
		flags |= unix.O_SYNC
	}

	fd, err := unix.Open(endpoint.Path, flags, 0)
	if err != nil {
		return nil, openError(endpoint.Path, err)
	}

	if err := configurePort(fd, config); err != nil {
		unix.Close(fd)
		return nil, err
	}

	p := &port{
		fd:     fd,
		config: config,
	}

	// Start from a clean input queue so the first frame is not a stale tail
	if err := p.FlushInput(); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to flush input: %w", err)
	}
	return p, nil
}

// configurePort puts the terminal in raw mode with the configured line settings
func configurePort(fd int, config Config) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("failed to get termios: %w", err)
	}

	termios.Cflag = unix.CS8 | unix.CREAD | unix.CLOCAL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	// VMIN=0: a read returns as soon as any byte arrives or VTIME expires
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = vtime(config.ReadTimeout)

	baudRate, err := getBaudRate(config.BaudRate)
	if err != nil {
		return err
	}
	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | baudRate
	termios.Ispeed = baudRate
	termios.Ospeed = baudRate

	if config.DataBits != 8 {
		termios.Cflag &^= unix.CSIZE
		switch config.DataBits {
		case 5:
			termios.Cflag |= unix.CS5
		case 6:
			termios.Cflag |= unix.CS6
		case 7:
			termios.Cflag |= unix.CS7
		}
	}

	if config.StopBits == 2 {
		termios.Cflag |= unix.CSTOPB
	}

	switch config.Parity {
	case ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
	case ParityEven:
		termios.Cflag |= unix.PARENB
	}

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("failed to set termios: %w", err)
	}
	return nil
}

// Close closes the serial port
func (p *port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}

	err := unix.Close(p.fd)
	p.closed = true
	return err
}

// Read reads data from the serial port. A read that sees no byte before the
// configured timeout returns ErrReadTimeout.
func (p *port) Read(buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	n, err := unix.Read(p.fd, buf)
	if err != nil {
		return 0, err
	}
	if n == 0 && len(buf) > 0 && p.config.ReadTimeout > 0 {
		return 0, ErrReadTimeout
	}
	return n, nil
}

// Write writes data to the serial port
func (p *port) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	return unix.Write(p.fd, data)
}

// Buffered returns the number of bytes in the kernel input queue
func (p *port) Buffered() (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	return unix.IoctlGetInt(p.fd, unix.TIOCINQ)
}

// Drain waits until all output written to the port has been transmitted
func (p *port) Drain() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}

	return unix.IoctlSetInt(p.fd, unix.TCSBRK, 1)
}

// FlushInput discards any unread input data
func (p *port) FlushInput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}

	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIFLUSH)
}
