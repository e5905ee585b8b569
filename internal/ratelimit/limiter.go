// Package ratelimit provides a blocking token-bucket limiter shared by all
// outbound calls to a single Akamai host, wrapping golang.org/x/time/rate
// rather than hand-rolling bucket refill arithmetic — the blocking Wait
// semantics required by the gateway's fairness guarantee are easy to get
// subtly wrong by hand (lost wakeups, drift under concurrent contention).
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

const (
	defaultCapacity   = 20
	defaultRefillRate = 2 // tokens per second
)

// Limiter gates outbound requests to at most defaultRefillRate per second,
// with a burst allowance of defaultCapacity.
type Limiter struct {
	inner *rate.Limiter
}

func New() *Limiter {
	return &Limiter{inner: rate.NewLimiter(rate.Limit(defaultRefillRate), defaultCapacity)}
}

// NewWithRate builds a limiter with a custom rate/burst, for tests that
// need to observe throttling without waiting tens of seconds.
func NewWithRate(ratePerSecond float64, burst int) *Limiter {
	return &Limiter{inner: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Wait blocks until a token is available or ctx is done, whichever comes
// first (spec invariant: the k-th call to Wait on an otherwise idle
// limiter completes no sooner than (k-1)/rate seconds after the first).
func (l *Limiter) Wait(ctx context.Context) error {
	return l.inner.Wait(ctx)
}
