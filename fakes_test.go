package fedsync

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// scriptedPort returns one scripted chunk per Read and records writes
type scriptedPort struct {
	mu        sync.Mutex
	chunks    [][]byte
	written   bytes.Buffer
	maxWrite  int
	reads     int
	closed    bool
	readErr   error
	closeCall int
}

var _ Port = (*scriptedPort)(nil)

func newScriptedPort(chunks ...string) *scriptedPort {
	p := &scriptedPort{readErr: ErrReadTimeout}
	for _, c := range chunks {
		p.chunks = append(p.chunks, []byte(c))
	}
	return p
}

func (p *scriptedPort) Read(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	p.reads++
	if len(p.chunks) == 0 {
		return 0, p.readErr
	}
	n := copy(buf, p.chunks[0])
	p.chunks[0] = p.chunks[0][n:]
	if len(p.chunks[0]) == 0 {
		p.chunks = p.chunks[1:]
	}
	return n, nil
}

func (p *scriptedPort) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	if p.maxWrite > 0 && len(data) > p.maxWrite {
		data = data[:p.maxWrite]
	}
	return p.written.Write(data)
}

func (p *scriptedPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closeCall++
	if p.closed {
		return ErrPortClosed
	}
	p.closed = true
	return nil
}

func (p *scriptedPort) Buffered() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	n := 0
	for _, c := range p.chunks {
		n += len(c)
	}
	return n, nil
}

func (p *scriptedPort) Drain() error      { return nil }
func (p *scriptedPort) FlushInput() error { return nil }

// fakeDevice emulates FED3 firmware: it echoes the timestamp that follows a
// Time command, counts Reset commands and can stream event frames.
type fakeDevice struct {
	mu         sync.Mutex
	inbound    []byte
	outbound   [][]byte
	expectTime bool
	resets     int
	ops        int
	closes     int
	closed     bool
	trace      []string

	streamEvents bool
	nextEvent    int
	phantom      bool  // Buffered claims input that never arrives
	bufferedErr  error // Buffered fails, as on an unplugged device
	drains       int
	drainErr     error

	active  atomic.Int32
	overlap atomic.Bool
}

var _ Port = (*fakeDevice)(nil)

func newFakeDevice(frames ...string) *fakeDevice {
	d := &fakeDevice{}
	for _, f := range frames {
		d.outbound = append(d.outbound, append([]byte(f), Terminator))
	}
	return d
}

// enter flags any overlapping access to the wire
func (d *fakeDevice) enter() func() {
	if d.active.Add(1) > 1 {
		d.overlap.Store(true)
	}
	time.Sleep(50 * time.Microsecond)
	return func() { d.active.Add(-1) }
}

func (d *fakeDevice) Write(data []byte) (int, error) {
	defer d.enter()()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrPortClosed
	}
	d.ops++
	d.inbound = append(d.inbound, data...)
	for {
		i := bytes.IndexByte(d.inbound, Terminator)
		if i < 0 {
			break
		}
		frame := string(d.inbound[:i])
		d.inbound = d.inbound[i+1:]
		d.trace = append(d.trace, "W:"+frame)

		switch {
		case d.expectTime:
			d.expectTime = false
			reply := append([]byte(frame), Terminator)
			d.outbound = append([][]byte{reply}, d.outbound...)
		case frame == CommandTime:
			d.expectTime = true
		case frame == CommandReset:
			d.resets++
		}
	}
	return len(data), nil
}

func (d *fakeDevice) Read(buf []byte) (int, error) {
	defer d.enter()()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrPortClosed
	}
	d.ops++
	if len(d.outbound) == 0 {
		if !d.streamEvents {
			return 0, ErrReadTimeout
		}
		d.outbound = append(d.outbound, append([]byte(fmt.Sprintf("event-%d", d.nextEvent)), Terminator))
		d.nextEvent++
	}
	frame := d.outbound[0]
	d.outbound = d.outbound[1:]
	n := copy(buf, frame)
	d.trace = append(d.trace, "R:"+string(frame[:n-1]))
	return n, nil
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closes++
	if d.closed {
		return ErrPortClosed
	}
	d.closed = true
	return nil
}

func (d *fakeDevice) Buffered() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrPortClosed
	}
	if d.bufferedErr != nil {
		return 0, d.bufferedErr
	}
	if d.streamEvents || d.phantom {
		return 1, nil
	}
	n := 0
	for _, f := range d.outbound {
		n += len(f)
	}
	return n, nil
}

func (d *fakeDevice) Drain() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrPortClosed
	}
	d.drains++
	return d.drainErr
}

func (d *fakeDevice) FlushInput() error { return nil }

func (d *fakeDevice) snapshot() (trace []string, ops, resets, closes int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.trace...), d.ops, d.resets, d.closes
}

func (d *fakeDevice) push(frame string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.outbound = append(d.outbound, append([]byte(frame), Terminator))
}

func newTestManager(d *fakeDevice) *Manager {
	return NewManager(Endpoint{Path: "/dev/ttyFAKE0", Config: DefaultConfig()}, d)
}

// eventually polls cond until it holds or the deadline passes
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
