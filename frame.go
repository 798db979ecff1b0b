package fedsync

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"go.uber.org/atomic"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Terminator ends every frame in both directions.
const Terminator byte = 0

const readChunkSize = 256

// FramedChannel layers null-terminated text frames over a Port.
//
// ReadFrame and WriteFrame are not safe for concurrent use; the Manager
// serializes them through its FairQueue. BytesAvailable may be called at
// any time.
type FramedChannel struct {
	port Port

	// pending holds bytes read past the last terminator
	pending  []byte
	buffered atomic.Int64
}

// NewFramedChannel wraps an open port
func NewFramedChannel(p Port) *FramedChannel {
	return &FramedChannel{port: p}
}

// ReadFrame blocks until a terminator arrives and returns the text before it.
// The terminator is consumed and not returned. Bytes after the terminator
// stay buffered for the next call.
func (c *FramedChannel) ReadFrame() (string, error) {
	for {
		if i := bytes.IndexByte(c.pending, Terminator); i >= 0 {
			raw := c.pending[:i]
			c.pending = c.pending[i+1:]
			c.buffered.Store(int64(len(c.pending)))
			return decodeFrame(raw)
		}

		chunk := make([]byte, readChunkSize)
		n, err := c.port.Read(chunk)
		if n > 0 {
			c.pending = append(c.pending, chunk[:n]...)
			c.buffered.Store(int64(len(c.pending)))
		}
		if err != nil {
			return "", fmt.Errorf("read frame: %w", err)
		}
		if n == 0 {
			// Non-blocking port with nothing queued: no terminator in time
			return "", fmt.Errorf("read frame: %w", ErrReadTimeout)
		}
	}
}

// decodeFrame validates the frame as UTF-8 text
func decodeFrame(raw []byte) (string, error) {
	out, _, err := transform.Bytes(encoding.UTF8Validator, raw)
	if err != nil {
		if errors.Is(err, encoding.ErrInvalidUTF8) {
			return "", fmt.Errorf("%w: %q", ErrFrameDecode, raw)
		}
		return "", err
	}
	return string(out), nil
}

// WriteFrame writes data followed by the terminator
func (c *FramedChannel) WriteFrame(data []byte) error {
	frame := make([]byte, 0, len(data)+1)
	frame = append(frame, data...)
	frame = append(frame, Terminator)

	for len(frame) > 0 {
		n, err := c.port.Write(frame)
		if err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("write frame: %w", io.ErrShortWrite)
		}
		frame = frame[n:]
	}
	return nil
}

// BytesAvailable reports unread input, both already buffered here and still
// queued in the port, without consuming it.
func (c *FramedChannel) BytesAvailable() (int, error) {
	queued, err := c.port.Buffered()
	if err != nil {
		return 0, err
	}
	return int(c.buffered.Load()) + queued, nil
}

// Drain blocks until everything written has left the port
func (c *FramedChannel) Drain() error {
	if err := c.port.Drain(); err != nil {
		return fmt.Errorf("drain: %w", err)
	}
	return nil
}

// Close releases the underlying port
func (c *FramedChannel) Close() error {
	return c.port.Close()
}
