package clock

import (
	"sync"
	"time"
)

// Clock provides the current time for signing timestamps and cache expiry.
type Clock interface {
	Now() time.Time
}

// System uses the system time.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

type fixed struct {
	t time.Time
}

func (c fixed) Now() time.Time {
	return c.t
}

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock {
	return fixed{t: t}
}

// Manual is a Clock that only moves when told to.
type Manual struct {
	mu sync.Mutex
	t  time.Time
}

func NewManual(t time.Time) *Manual {
	return &Manual{t: t}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t = m.t.Add(d)
}

func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t = t
}
