package breaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_OpensAfterFailureThreshold(t *testing.T) {
	b := New("api.example.com", nil)
	for i := 0; i < failureThreshold-1; i++ {
		assert.True(t, b.Allow())
		b.Failure()
	}
	assert.Equal(t, StateClosed, b.State())

	assert.True(t, b.Allow())
	b.Failure()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreaker_HalfOpenAfterCooldownThenCloses(t *testing.T) {
	b := New("api.example.com", nil)
	current := time.Now()
	b.now = func() time.Time { return current }

	for i := 0; i < failureThreshold; i++ {
		b.Failure()
	}
	assert.Equal(t, StateOpen, b.State())

	current = current.Add(openTimeout + time.Second)
	assert.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())

	for i := 0; i < successThreshold; i++ {
		b.Success()
	}
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := New("api.example.com", nil)
	current := time.Now()
	b.now = func() time.Time { return current }

	for i := 0; i < failureThreshold; i++ {
		b.Failure()
	}
	current = current.Add(openTimeout + time.Second)
	assert.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())

	b.Failure()
	assert.Equal(t, StateOpen, b.State())
}

func TestManager_IsolatesBreakersPerHost(t *testing.T) {
	m := NewManager(nil)
	a := m.For("host-a")
	bHost := m.For("host-b")

	for i := 0; i < failureThreshold; i++ {
		a.Failure()
	}
	assert.Equal(t, StateOpen, a.State())
	assert.Equal(t, StateClosed, bHost.State())
}
