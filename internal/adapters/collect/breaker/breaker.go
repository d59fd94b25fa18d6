// Package breaker keeps one circuit breaker per upstream so a failing API is
// skipped quickly instead of eating every run's timeout
package breaker

import (
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// Settings tune every breaker the Manager creates
type Settings struct {
	// Interval clears closed-state counts; zero never clears
	Interval time.Duration
	// Timeout is how long a breaker stays open before probing
	Timeout time.Duration
	// Trip opens the breaker after this many consecutive failures
	Trip uint32
	// HalfOpenMax is the number of probes allowed while half-open
	HalfOpenMax uint32
}

// DefaultSettings suits hourly pipeline runs
var DefaultSettings = Settings{
	Interval:    10 * time.Minute,
	Timeout:     2 * time.Minute,
	Trip:        3,
	HalfOpenMax: 1,
}

// Status is one breaker's state as reported on the health endpoint
type Status struct {
	Name                string `json:"name"`
	State               string `json:"state"`
	Requests            uint32 `json:"requests"`
	TotalFailures       uint32 `json:"total_failures"`
	ConsecutiveFailures uint32 `json:"consecutive_failures"`
}

// Manager lazily creates breakers by upstream name
type Manager struct {
	mu       sync.RWMutex
	set      Settings
	breakers map[string]*gobreaker.CircuitBreaker
	onState  func(name string, state gobreaker.State)
}

// Option configures a Manager
type Option func(*Manager)

// OnStateChange registers a hook run on every transition and when a breaker
// is first created
func OnStateChange(fn func(name string, state gobreaker.State)) Option {
	return func(m *Manager) { m.onState = fn }
}

// New returns a Manager. Zero fields in s take DefaultSettings values
func New(s Settings, opts ...Option) *Manager {
	if s.Timeout <= 0 {
		s.Timeout = DefaultSettings.Timeout
	}
	if s.Trip == 0 {
		s.Trip = DefaultSettings.Trip
	}
	if s.HalfOpenMax == 0 {
		s.HalfOpenMax = DefaultSettings.HalfOpenMax
	}
	m := &Manager{set: s, breakers: map[string]*gobreaker.CircuitBreaker{}}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) get(name string) *gobreaker.CircuitBreaker {
	m.mu.RLock()
	cb, ok := m.breakers[name]
	m.mu.RUnlock()
	if ok {
		return cb
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cb, ok = m.breakers[name]; ok {
		return cb
	}
	trip := m.set.Trip
	cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: m.set.HalfOpenMax,
		Interval:    m.set.Interval,
		Timeout:     m.set.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= trip },
		OnStateChange: func(name string, _, to gobreaker.State) {
			if m.onState != nil {
				m.onState(name, to)
			}
		},
	})
	m.breakers[name] = cb
	if m.onState != nil {
		m.onState(name, gobreaker.StateClosed)
	}
	return cb
}

// Execute runs fn through the named breaker. An open breaker returns
// gobreaker.ErrOpenState without calling fn
func (m *Manager) Execute(name string, fn func() (any, error)) (any, error) {
	return m.get(name).Execute(fn)
}

// Do is Execute with a typed result
func Do[T any](m *Manager, name string, fn func() (T, error)) (T, error) {
	if m == nil {
		return fn()
	}
	out, err := m.Execute(name, func() (any, error) { return fn() })
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}

// Status reports every breaker created so far, sorted by name
func (m *Manager) Status() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Status, 0, len(m.breakers))
	for name, cb := range m.breakers {
		c := cb.Counts()
		out = append(out, Status{
			Name:                name,
			State:               cb.State().String(),
			Requests:            c.Requests,
			TotalFailures:       c.TotalFailures,
			ConsecutiveFailures: c.ConsecutiveFailures,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsOpen reports whether err came from a breaker refusing the call
func IsOpen(err error) bool {
	return err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests
}
