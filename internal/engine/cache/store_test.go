package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/thingsgate/internal/engine/cache"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newStore(ttl time.Duration, maxSize int) (*cache.Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := cache.NewStore(ttl, maxSize)
	s.SetClock(clock.Now)
	return s, clock
}

func TestStore_LRUEviction(t *testing.T) {
	s, _ := newStore(time.Hour, 3)

	s.Put("op:1", 1)
	s.Put("op:2", 2)
	s.Put("op:3", 3)

	// Refresh key 1 so key 2 becomes the least recently used.
	_, ok := s.Get("op:1")
	require.True(t, ok)

	s.Put("op:4", 4)

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains("op:1"))
	assert.False(t, s.Contains("op:2"))
	assert.True(t, s.Contains("op:3"))
	assert.True(t, s.Contains("op:4"))
}

func TestStore_PutReplacesAndRefreshes(t *testing.T) {
	s, clock := newStore(10*time.Second, 2)

	s.Put("op:a", "old")
	clock.Advance(8 * time.Second)
	s.Put("op:a", "new")
	clock.Advance(8 * time.Second)

	v, ok := s.Get("op:a")
	require.True(t, ok)
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, s.Len())
}

func TestStore_ZeroMaxSizeRetainsNothing(t *testing.T) {
	s, _ := newStore(time.Hour, 0)

	s.Put("op:a", 1)

	assert.Equal(t, 0, s.Len())
	_, ok := s.Get("op:a")
	assert.False(t, ok)
}

func TestStore_TTLBoundaryIsStrict(t *testing.T) {
	s, clock := newStore(time.Second, 10)

	s.Put("op:a", 1)
	clock.Advance(999 * time.Millisecond)
	_, ok := s.Get("op:a")
	assert.True(t, ok, "entry younger than ttl must hit")

	clock.Advance(time.Millisecond)
	_, ok = s.Get("op:a")
	assert.False(t, ok, "entry aged exactly ttl must miss")
	assert.Equal(t, 0, s.Len(), "expired entry is removed on read")

	hits, misses := s.Counters()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestStore_ZeroTTLIsAlwaysStale(t *testing.T) {
	s, _ := newStore(0, 10)

	s.Put("op:a", 1)
	_, ok := s.Get("op:a")
	assert.False(t, ok)
}

func TestStore_SetTTLAppliesToStoredEntries(t *testing.T) {
	s, clock := newStore(time.Minute, 10)

	s.Put("op:a", 1)
	clock.Advance(5 * time.Second)

	s.SetTTL(5 * time.Second)
	_, ok := s.Get("op:a")
	assert.False(t, ok, "new ttl is measured from the original timestamp")

	s.Put("op:b", 2)
	s.SetTTL(time.Hour)
	clock.Advance(30 * time.Minute)
	_, ok = s.Get("op:b")
	assert.True(t, ok)
}

func TestStore_DeleteByPrefix(t *testing.T) {
	s, _ := newStore(time.Hour, 10)

	s.Put("list_devices:aaa", 1)
	s.Put("list_devices:bbb", 2)
	s.Put("list_devices_extra:ccc", 3)
	s.Put("get_device:ddd", 4)

	removed := s.DeleteByPrefix("list_devices")

	assert.Equal(t, 2, removed)
	assert.True(t, s.Contains("list_devices_extra:ccc"))
	assert.True(t, s.Contains("get_device:ddd"))
	assert.Equal(t, 0, s.DeleteByPrefix("missing"))
}

func TestStore_ClearResetsCountersPurgeKeepsThem(t *testing.T) {
	s, _ := newStore(time.Hour, 10)

	s.Put("op:a", 1)
	s.Get("op:a")
	s.Get("op:b")

	assert.Equal(t, 1, s.Purge())
	hits, misses := s.Counters()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)

	s.Put("op:a", 1)
	assert.Equal(t, 1, s.Clear())
	hits, misses = s.Counters()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
	assert.Equal(t, 0, s.Len())
}

func TestStore_ResizeEvictsOldest(t *testing.T) {
	s, _ := newStore(time.Hour, 5)
	for _, k := range []string{"op:1", "op:2", "op:3", "op:4"} {
		s.Put(k, k)
	}

	s.Resize(2)

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("op:3"))
	assert.True(t, s.Contains("op:4"))
}

func TestHitRate(t *testing.T) {
	assert.InDelta(t, 0.0, cache.HitRate(0, 0), 0)
	assert.InDelta(t, 66.67, cache.HitRate(2, 1), 0.0001)
	assert.InDelta(t, 33.33, cache.HitRate(1, 2), 0.0001)
	assert.InDelta(t, 100.0, cache.HitRate(5, 0), 0)
}
