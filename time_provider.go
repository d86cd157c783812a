package reloop

import (
	"sync"
	"time"
)

// TimeProvider is the clock seen by the get_current_time tool and by system prompt
// templates, where it is available as .Time:
//
//	Today is {{.Time.Weekday}}, {{.Time.Today}}.
//	It is {{.Time.Format "15:04 MST"}}.
type TimeProvider interface {
	Now() time.Time

	// Today returns the current date as YYYY-MM-DD.
	Today() string

	// Format formats the current time with a Go time layout.
	Format(layout string) string

	// Weekday returns the English name of the current day, e.g. "Tuesday".
	Weekday() string
}

// clock derives the TimeProvider helpers from a single now function.
type clock struct {
	now func() time.Time
}

func (c clock) Now() time.Time              { return c.now() }
func (c clock) Today() string               { return c.now().Format(time.DateOnly) }
func (c clock) Format(layout string) string { return c.now().Format(layout) }
func (c clock) Weekday() string             { return c.now().Weekday().String() }

// DefaultTimeProvider reads the system clock in the local time zone.
type DefaultTimeProvider struct {
	clock
}

func NewDefaultTimeProvider() *DefaultTimeProvider {
	return &DefaultTimeProvider{clock: clock{now: time.Now}}
}

// MockTimeProvider is a stopped clock for tests. It only moves through SetTime and Advance,
// which are safe to call while an invocation is running.
type MockTimeProvider struct {
	clock

	mu  sync.RWMutex
	now time.Time
}

// NewMockTimeProvider creates a MockTimeProvider stopped at t. The location of t is the
// time zone reported to the model.
func NewMockTimeProvider(t time.Time) *MockTimeProvider {
	m := &MockTimeProvider{now: t}
	m.clock = clock{now: m.current}
	return m
}

func (m *MockTimeProvider) current() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// SetTime stops the clock at t.
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the clock forward by d.
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

var (
	_ TimeProvider = (*DefaultTimeProvider)(nil)
	_ TimeProvider = (*MockTimeProvider)(nil)
)
