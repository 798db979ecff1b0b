package fedsync

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// LogCapacity is the number of status lines kept for the operator
const LogCapacity = 100

// LogTimeLayout is the time-of-day suffix on every formatted line
const LogTimeLayout = "15:04:05.000"

// FormatLogLine pads msg to 45 columns and appends the local time of day
func FormatLogLine(msg string, t time.Time) string {
	return fmt.Sprintf("%-45s%s", msg, t.Format(LogTimeLayout))
}

// LogBuffer keeps the most recent operator-facing status lines
type LogBuffer struct {
	mu       sync.RWMutex
	lines    []string
	capacity int
	now      func() time.Time
}

// NewLogBuffer returns an empty buffer holding at most LogCapacity lines
func NewLogBuffer() *LogBuffer {
	return &LogBuffer{
		lines:    make([]string, 0, LogCapacity),
		capacity: LogCapacity,
		now:      time.Now,
	}
}

// Log appends msg formatted with the current time
func (b *LogBuffer) Log(msg string) {
	b.Append(FormatLogLine(msg, b.now()))
}

// Append adds a line verbatim, evicting the oldest lines on overflow
func (b *LogBuffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append(b.lines, line)
	if over := len(b.lines) - b.capacity; over > 0 {
		copy(b.lines, b.lines[over:])
		b.lines = b.lines[:b.capacity]
	}
}

// Lines returns a copy of the buffered lines, oldest first
func (b *LogBuffer) Lines() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Len returns the number of buffered lines
func (b *LogBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// Text renders the buffer for display, followed by two blank lines
func (b *LogBuffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(append(append([]string(nil), b.lines...), "", ""), "\n")
}
