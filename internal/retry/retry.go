// Package retry drives bounded exponential-backoff retries for outbound
// calls, honoring an upstream Retry-After header when present instead of
// the computed backoff.
package retry

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"net/http"
	"strconv"
	"time"
)

const defaultBaseDelay = 100 * time.Millisecond

// Policy configures a retry run. MaxRetries is the number of retries after
// the first attempt, so a call makes at most MaxRetries+1 attempts.
// BaseDelay seeds the exponential backoff (doubling each attempt before
// jitter); zero selects defaultBaseDelay.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	// OnAttempt, if set, is called once per attempt with the zero-based
	// attempt index and whether Do is about to retry again.
	OnAttempt func(attempt int, retrying bool)
}

func (p Policy) baseDelay() time.Duration {
	if p.BaseDelay <= 0 {
		return defaultBaseDelay
	}
	return p.BaseDelay
}

// Classifier decides, from a response and/or error, whether the attempt
// should be retried at all.
type Classifier func(resp *http.Response, err error) bool

// Do runs attempt up to p.MaxRetries+1 times, sleeping between attempts
// according to exponential backoff with jitter, or the upstream's
// Retry-After header when the response carries one. It stops retrying as
// soon as shouldRetry returns false or ctx is done.
func Do(ctx context.Context, p Policy, shouldRetry Classifier, attempt func(ctx context.Context) (*http.Response, error)) (*http.Response, error) {
	var lastResp *http.Response
	var lastErr error

	for i := 0; i <= p.MaxRetries; i++ {
		resp, err := attempt(ctx)
		lastResp, lastErr = resp, err

		retrying := shouldRetry(resp, err) && i < p.MaxRetries
		if p.OnAttempt != nil {
			p.OnAttempt(i, retrying)
		}
		if !shouldRetry(resp, err) {
			return resp, err
		}
		if i == p.MaxRetries {
			break
		}

		delay := backoffDelay(i, resp, p.baseDelay())
		select {
		case <-ctx.Done():
			return resp, ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastResp, lastErr
}

func backoffDelay(attempt int, resp *http.Response, base time.Duration) time.Duration {
	if resp != nil {
		if d, ok := retryAfterDelay(resp); ok {
			return d
		}
	}
	exp := time.Duration(math.Pow(2, float64(attempt))) * base
	return exp + jitter(exp)
}

// retryAfterDelay parses a Retry-After header as either an integer number
// of seconds or an HTTP-date, per RFC 9110 §10.2.3.
func retryAfterDelay(resp *http.Response) (time.Duration, bool) {
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(raw); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

// jitter returns a uniform random duration in [0, d/2), using crypto/rand
// since this package has no other source of entropy wired in and the
// amount at stake (avoiding thundering-herd retries) doesn't warrant
// pulling in a second PRNG dependency.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	max := big.NewInt(int64(d) / 2)
	if max.Sign() <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0
	}
	return time.Duration(n.Int64())
}
