// Package breaker implements a per-host circuit breaker: CLOSED allows
// traffic, OPEN rejects it immediately for a cooldown window, and
// HALF_OPEN admits every call until successThreshold successes close the
// breaker again or a single failure re-opens it. Calls made while
// HALF_OPEN are not limited to one probe at a time.
package breaker

import (
	"sync"
	"time"

	"akamai-mcp-gateway/internal/metrics"
	"akamai-mcp-gateway/pkg/logging"
)

type State string

const (
	StateClosed   State = "CLOSED"
	StateOpen     State = "OPEN"
	StateHalfOpen State = "HALF_OPEN"
)

const (
	failureThreshold = 5
	successThreshold = 2
	openTimeout      = 60 * time.Second
	windowSize       = 10 * time.Second
)

// Breaker is a single host's circuit breaker. Zero value is not usable;
// construct with New.
type Breaker struct {
	mu sync.Mutex

	host  string
	state State

	failuresInWindow int
	windowStart       time.Time

	successesSinceHalfOpen int
	openedAt               time.Time

	now     func() time.Time
	metrics *metrics.Collector
}

// New builds a Breaker for host. coll may be nil to skip metrics recording.
func New(host string, coll *metrics.Collector) *Breaker {
	return &Breaker{host: host, state: StateClosed, now: time.Now, metrics: coll}
}

// Allow reports whether a request may proceed, transitioning OPEN ->
// HALF_OPEN once the cooldown window has elapsed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.now().Sub(b.openedAt) >= openTimeout {
			b.state = StateHalfOpen
			b.successesSinceHalfOpen = 0
			logging.Audit(logging.AuditEvent{
				Action:  "circuit_breaker_transition",
				Outcome: "half_open",
				Target:  b.host,
				Details: string(StateOpen) + " -> " + string(StateHalfOpen),
			})
			return true
		}
		return false
	case StateHalfOpen:
		return true
	default:
		return true
	}
}

// Success records a successful call.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.successesSinceHalfOpen++
		if b.successesSinceHalfOpen >= successThreshold {
			b.reset()
		}
	case StateClosed:
		b.rollWindow()
	}
}

// Failure records a failed call, opening the breaker once
// failureThreshold failures have landed within windowSize, or immediately
// on any failure while HALF_OPEN.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.open()
	case StateClosed:
		b.rollWindow()
		b.failuresInWindow++
		if b.failuresInWindow >= failureThreshold {
			b.open()
		}
	}
}

func (b *Breaker) rollWindow() {
	now := b.now()
	if b.windowStart.IsZero() || now.Sub(b.windowStart) > windowSize {
		b.windowStart = now
		b.failuresInWindow = 0
	}
}

func (b *Breaker) open() {
	from := b.state
	b.state = StateOpen
	b.openedAt = b.now()
	b.failuresInWindow = 0
	logging.Audit(logging.AuditEvent{
		Action:  "circuit_breaker_transition",
		Outcome: "opened",
		Target:  b.host,
		Details: string(from) + " -> " + string(StateOpen),
	})
	if b.metrics != nil {
		b.metrics.BreakerOpensTotal.WithLabelValues(b.host).Inc()
	}
}

func (b *Breaker) reset() {
	from := b.state
	b.state = StateClosed
	b.failuresInWindow = 0
	b.windowStart = time.Time{}
	b.successesSinceHalfOpen = 0
	logging.Audit(logging.AuditEvent{
		Action:  "circuit_breaker_transition",
		Outcome: "closed",
		Target:  b.host,
		Details: string(from) + " -> " + string(StateClosed),
	})
}

// State returns the breaker's current state, for metrics/diagnostics.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
