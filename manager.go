package fedsync

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"
)

// Command tags understood by the device
const (
	CommandTime  = "Time"
	CommandReset = "Reset"
)

// TimestampLayout is the ISO-8601 form sent with CommandTime
const TimestampLayout = "2006-01-02T15:04:05.000000"

// ManagerState tracks the one-way Open -> Closing -> Closed lifecycle
type ManagerState int32

const (
	StateOpen ManagerState = iota
	StateClosing
	StateClosed
)

func (s ManagerState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Manager owns one physical connection. Every operation takes a FairQueue
// ticket before touching the FramedChannel, so exactly one operation is on
// the wire at a time and operations reach the wire in ticket order.
type Manager struct {
	endpoint Endpoint
	queue    *FairQueue
	channel  *FramedChannel

	shutdown  atomic.Bool
	state     atomic.Int32
	closeOnce sync.Once
	closeErr  error
}

// Dial opens the endpoint and returns a Manager for it
func Dial(endpoint Endpoint) (*Manager, error) {
	p, err := OpenEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	log.Info().Str("port", endpoint.Path).Int("baud", endpoint.Config.BaudRate).Msg("connection opened")
	return NewManager(endpoint, p), nil
}

// NewManager wraps an already open port
func NewManager(endpoint Endpoint, p Port) *Manager {
	return &Manager{
		endpoint: endpoint,
		queue:    NewFairQueue(),
		channel:  NewFramedChannel(p),
	}
}

// Endpoint returns the endpoint this manager was built for
func (m *Manager) Endpoint() Endpoint {
	return m.endpoint
}

// Path returns the device path
func (m *Manager) Path() string {
	return m.endpoint.Path
}

// State returns the lifecycle state
func (m *Manager) State() ManagerState {
	return ManagerState(m.state.Load())
}

// Disabled reports whether shutdown has begun
func (m *Manager) Disabled() bool {
	return m.shutdown.Load()
}

// admit takes a ticket unless shutdown has begun. A caller that raced with
// Shutdown and was queued behind it finds the channel closed and is turned
// away.
func (m *Manager) admit() (Ticket, error) {
	if m.shutdown.Load() {
		return 0, ErrDisabled
	}
	ticket := m.queue.Acquire()
	if m.State() == StateClosed {
		m.queue.Release()
		return 0, ErrDisabled
	}
	return ticket, nil
}

// SyncTime sends the time command followed by now and returns the
// timestamp the device echoes back.
func (m *Manager) SyncTime(now time.Time) (string, error) {
	ticket, err := m.admit()
	if err != nil {
		return "", err
	}
	defer m.queue.Release()

	stamp := now.Format(TimestampLayout)
	log.Debug().Str("port", m.endpoint.Path).Uint64("ticket", uint64(ticket)).Str("time", stamp).Msg("sync time")

	if err := m.channel.WriteFrame([]byte(CommandTime)); err != nil {
		return "", err
	}
	if err := m.channel.WriteFrame([]byte(stamp)); err != nil {
		return "", err
	}
	// the read timeout starts once the stamp is on the wire
	if err := m.channel.Drain(); err != nil {
		return "", err
	}
	return m.channel.ReadFrame()
}

// ResetCounters tells the device to zero its counters. No reply is read.
func (m *Manager) ResetCounters() error {
	ticket, err := m.admit()
	if err != nil {
		return err
	}
	defer m.queue.Release()

	log.Debug().Str("port", m.endpoint.Path).Uint64("ticket", uint64(ticket)).Msg("reset counters")
	return m.channel.WriteFrame([]byte(CommandReset))
}

// PollRead reads one frame
func (m *Manager) PollRead() (string, error) {
	ticket, err := m.admit()
	if err != nil {
		return "", err
	}
	defer m.queue.Release()

	frame, err := m.channel.ReadFrame()
	if err != nil {
		return "", err
	}
	log.Trace().Str("port", m.endpoint.Path).Uint64("ticket", uint64(ticket)).Str("frame", frame).Msg("frame received")
	return frame, nil
}

// Available reports unread input without taking a ticket
func (m *Manager) Available() (int, error) {
	if m.shutdown.Load() {
		return 0, ErrDisabled
	}
	return m.channel.BytesAvailable()
}

// Shutdown stops admitting new operations, waits for every admitted one to
// finish, then closes the channel. It runs once; later calls wait for the
// first to complete and return its result.
func (m *Manager) Shutdown() error {
	m.closeOnce.Do(func() {
		m.shutdown.Store(true)
		m.state.Store(int32(StateClosing))

		m.queue.Acquire()
		m.closeErr = m.channel.Close()
		m.state.Store(int32(StateClosed))
		m.queue.Release()

		if m.closeErr != nil {
			log.Warn().Err(m.closeErr).Str("port", m.endpoint.Path).Msg("connection closed with error")
			return
		}
		log.Info().Str("port", m.endpoint.Path).Msg("connection closed")
	})
	return m.closeErr
}
