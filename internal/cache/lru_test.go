package cache

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetThenGetRoundTrips(t *testing.T) {
	c := New(10, time.Minute)
	c.Set("k1", []byte("v1"))

	v, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), v)
}

func TestCache_EvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	c := New(2, time.Minute)
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Get("a") // touch a, making b the LRU entry
	c.Set("c", []byte("3"))

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestCache_EntryExpiresAfterTTL(t *testing.T) {
	c := New(10, time.Minute)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set("k", []byte("v"))
	current = current.Add(2 * time.Minute)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_InvalidatePatternRemovesMatches(t *testing.T) {
	c := New(10, time.Minute)
	c.Set("papi-prop-1", []byte("a"))
	c.Set("papi-prop-2", []byte("b"))
	c.Set("ccu-invalidation-1", []byte("c"))

	removed := c.InvalidatePattern(regexp.MustCompile(`^papi-`))
	assert.Equal(t, 2, removed)

	_, ok := c.Get("ccu-invalidation-1")
	assert.True(t, ok)
}

func TestCache_StatsTracksHitsAndMisses(t *testing.T) {
	c := New(10, time.Minute)
	c.Set("k", []byte("v"))
	c.Get("k")
	c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate(), 0.001)
}

func TestCache_StatsTracksEvictions(t *testing.T) {
	c := New(2, time.Minute)
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Set("c", []byte("3")) // evicts "a", the LRU entry

	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestStats_HealthyBelowSampleSizeRegardlessOfHitRate(t *testing.T) {
	stats := Stats{Hits: 1, Misses: 40}
	assert.True(t, stats.Healthy())
}

func TestStats_HealthyRequiresTwentyPercentHitRateOnceSampled(t *testing.T) {
	healthy := Stats{Hits: 20, Misses: 80}
	assert.True(t, healthy.Healthy())

	unhealthy := Stats{Hits: 5, Misses: 95}
	assert.False(t, unhealthy.Healthy())
}
