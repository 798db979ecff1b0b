package fedsync

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultPollInterval is how often the poll loop checks for input
const DefaultPollInterval = 20 * time.Millisecond

// Poller drains frames from the current connection into the SystemState
type Poller struct {
	state    *SystemState
	interval time.Duration
}

// NewPoller returns a poll loop for state. A non-positive interval selects
// DefaultPollInterval.
func NewPoller(state *SystemState, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{state: state, interval: interval}
}

// Run polls until ctx is cancelled, then shuts the current connection down
// before returning.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Debug().Dur("interval", p.interval).Msg("poll loop started")
	for {
		select {
		case <-ctx.Done():
			err := p.state.Shutdown()
			log.Debug().Err(err).Msg("poll loop stopped")
			return err
		case <-ticker.C:
			p.drain(ctx)
		}
	}
}

// drain reads frames while input is waiting
func (p *Poller) drain(ctx context.Context) {
	for ctx.Err() == nil {
		m := p.state.Manager()
		if m == nil {
			return
		}

		n, err := m.Available()
		if err != nil {
			// a manager shut down under us was switched away, not unplugged
			if !errors.Is(err, ErrDisabled) && !errors.Is(err, ErrPortClosed) && !m.Disabled() {
				p.state.connectionLost(m, err)
			}
			return
		}
		if n == 0 {
			return
		}

		frame, err := m.PollRead()
		if err != nil {
			if !errors.Is(err, ErrDisabled) {
				p.state.readFailed(m, err)
			}
			return
		}
		p.state.deliver(frame)
	}
}
