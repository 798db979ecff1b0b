package fedsync

import "time"

// WriteMode represents the write synchronization mode
type WriteMode int

const (
	WriteModeBuffered WriteMode = iota // Default: kernel buffers writes
	WriteModeSynced                    // O_SYNC: writes block until hardware transmission
)

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

// maxReadTimeout is the largest value VTIME can express (255 tenths).
const maxReadTimeout = 25500 * time.Millisecond

// Config holds the configuration for a serial port
type Config struct {
	BaudRate    int
	DataBits    int
	StopBits    int
	Parity      Parity
	ReadTimeout time.Duration // VTIME, 100ms granularity; 0 means non-blocking
	WriteMode   WriteMode     // Controls write synchronization behavior
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns the configuration FED3 firmware expects:
// 57600 8N1 with a two second read timeout.
func DefaultConfig() Config {
	return Config{
		BaudRate:    57600,
		DataBits:    8,
		StopBits:    1,
		Parity:      ParityNone,
		ReadTimeout: 2 * time.Second,
		WriteMode:   WriteModeBuffered,
	}
}

// Endpoint identifies a physical serial path and its fixed transfer
// parameters. It is never mutated after a Manager is built from it.
type Endpoint struct {
	Path   string
	Config Config
}

// NewEndpoint applies opts on top of DefaultConfig.
func NewEndpoint(path string, opts ...Option) (Endpoint, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return Endpoint{}, err
		}
	}
	return Endpoint{Path: path, Config: config}, nil
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if _, err := getBaudRate(rate); err != nil {
			return err
		}
		c.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidConfig
		}
		c.DataBits = bits
		return nil
	}
}

// WithStopBits sets the number of stop bits (1 or 2)
func WithStopBits(bits int) Option {
	return func(c *Config) error {
		if bits != 1 && bits != 2 {
			return ErrInvalidConfig
		}
		c.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		c.Parity = parity
		return nil
	}
}

// WithReadTimeout sets how long a read waits for the first byte. The
// terminal driver counts in tenths of a second, so the timeout must be a
// multiple of 100ms no larger than 25.5s.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout < 0 || timeout > maxReadTimeout || timeout%(100*time.Millisecond) != 0 {
			return ErrInvalidConfig
		}
		c.ReadTimeout = timeout
		return nil
	}
}

// WithWriteMode sets the write synchronization mode
func WithWriteMode(mode WriteMode) Option {
	return func(c *Config) error {
		c.WriteMode = mode
		return nil
	}
}

// WithSyncWrite enables synchronous writes (O_SYNC) for guaranteed transmission
func WithSyncWrite() Option {
	return func(c *Config) error {
		c.WriteMode = WriteModeSynced
		return nil
	}
}
