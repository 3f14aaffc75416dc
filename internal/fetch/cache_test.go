package fetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/drill"
	"github.com/quarrylabs/quarry/internal/testutil"
)

func someRecords(name string) []drill.Record {
	return []drill.Record{{Name: name}}
}

// TestCache_TTLBoundary verifies the entry is present at exactly set+ttl
// and absent strictly after it.
func TestCache_TTLBoundary(t *testing.T) {
	clock := testutil.NewManualClock(time.Unix(1000, 0))
	c := NewCache(time.Minute, WithClock(clock.Now))

	c.Set("k", someRecords("v"))

	// Any time t <= set_time + ttl hits.
	clock.Advance(time.Minute)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, someRecords("v"), got)

	// Strictly past the TTL: absent.
	clock.Advance(time.Nanosecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

// TestCache_LazyEviction verifies expired entries are removed by the read
// that observes them, not by any sweeper.
func TestCache_LazyEviction(t *testing.T) {
	clock := testutil.NewManualClock(time.Unix(1000, 0))
	c := NewCache(time.Second, WithClock(clock.Now))

	c.Set("k", someRecords("v"))
	clock.Advance(time.Hour)

	// Still stored: nothing sweeps in the background.
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry evicted on access")
}

// TestCache_SetRestartsTTL verifies overwriting a key restarts its clock.
func TestCache_SetRestartsTTL(t *testing.T) {
	clock := testutil.NewManualClock(time.Unix(1000, 0))
	c := NewCache(time.Minute, WithClock(clock.Now))

	c.Set("k", someRecords("old"))
	clock.Advance(50 * time.Second)
	c.Set("k", someRecords("new"))
	clock.Advance(50 * time.Second)

	got, ok := c.Get("k")
	require.True(t, ok, "entry refreshed by second Set must still be live")
	assert.Equal(t, someRecords("new"), got, "last set wins")
}

// TestCache_MissingKey verifies absent keys are a quiet miss.
func TestCache_MissingKey(t *testing.T) {
	c := NewCache(time.Minute)
	_, ok := c.Get("never-set")
	assert.False(t, ok)
}

// TestCache_DeleteAndClear covers the remaining mutations.
func TestCache_DeleteAndClear(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("a", someRecords("a"))
	c.Set("b", someRecords("b"))

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}
