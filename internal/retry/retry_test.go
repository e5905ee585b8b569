package retry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDo_StopsAfterMaxRetriesAttempts(t *testing.T) {
	calls := 0
	attempt := func(ctx context.Context) (*http.Response, error) {
		calls++
		return httptest.NewRecorder().Result(), nil
	}
	alwaysRetry := func(resp *http.Response, err error) bool { return true }

	_, _ = Do(context.Background(), Policy{MaxRetries: 3}, alwaysRetry, attempt)

	assert.Equal(t, 4, calls) // first attempt + 3 retries
}

func TestDo_StopsEarlyWhenClassifierSaysDone(t *testing.T) {
	calls := 0
	attempt := func(ctx context.Context) (*http.Response, error) {
		calls++
		rec := httptest.NewRecorder()
		rec.Code = 200
		return rec.Result(), nil
	}
	neverRetry := func(resp *http.Response, err error) bool { return false }

	_, _ = Do(context.Background(), Policy{MaxRetries: 5}, neverRetry, attempt)

	assert.Equal(t, 1, calls)
}

func TestDo_HonorsRetryAfterSeconds(t *testing.T) {
	calls := 0
	attempt := func(ctx context.Context) (*http.Response, error) {
		calls++
		rec := httptest.NewRecorder()
		if calls == 1 {
			rec.Header().Set("Retry-After", "0")
			rec.Code = 429
		} else {
			rec.Code = 200
		}
		return rec.Result(), nil
	}
	retryOn429 := func(resp *http.Response, err error) bool {
		return resp != nil && resp.StatusCode == 429
	}

	start := time.Now()
	_, _ = Do(context.Background(), Policy{MaxRetries: 2}, retryOn429, attempt)

	assert.Equal(t, 2, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDo_ContextCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	attempt := func(ctx context.Context) (*http.Response, error) {
		calls++
		return httptest.NewRecorder().Result(), nil
	}
	alwaysRetry := func(resp *http.Response, err error) bool { return true }

	_, err := Do(ctx, Policy{MaxRetries: 5}, alwaysRetry, attempt)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_UsesPolicyBaseDelayForBackoff(t *testing.T) {
	calls := 0
	attempt := func(ctx context.Context) (*http.Response, error) {
		calls++
		rec := httptest.NewRecorder()
		rec.Code = 500
		return rec.Result(), nil
	}
	retryOn500 := func(resp *http.Response, err error) bool {
		return resp != nil && resp.StatusCode == 500
	}

	start := time.Now()
	_, _ = Do(context.Background(), Policy{MaxRetries: 1, BaseDelay: 5 * time.Millisecond}, retryOn500, attempt)
	elapsed := time.Since(start)

	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, elapsed, 5*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestDo_InvokesOnAttemptPerAttempt(t *testing.T) {
	var attempts []int
	attempt := func(ctx context.Context) (*http.Response, error) {
		rec := httptest.NewRecorder()
		rec.Code = 200
		return rec.Result(), nil
	}
	neverRetry := func(resp *http.Response, err error) bool { return false }

	_, _ = Do(context.Background(), Policy{
		MaxRetries: 3,
		OnAttempt:  func(attempt int, retrying bool) { attempts = append(attempts, attempt) },
	}, neverRetry, attempt)

	assert.Equal(t, []int{0}, attempts)
}
