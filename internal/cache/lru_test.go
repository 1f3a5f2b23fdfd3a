package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClockedCache(t *testing.T, size int, ttl time.Duration) (*LRUCache[string], *time.Time) {
	t.Helper()
	now := time.Date(2025, 3, 24, 9, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](size, ttl)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newClockedCache(t, 2, time.Minute)

	_, ok := c.Get("daily@1")
	assert.False(t, ok)

	c.Set("daily@1", "rows")
	got, ok := c.Get("daily@1")
	require.True(t, ok)
	assert.Equal(t, "rows", got)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newClockedCache(t, 2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	_, _ = c.Get("a")
	c.Set("c", "3")

	_, ok := c.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCache_Expiry(t *testing.T) {
	c, now := newClockedCache(t, 10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	*now = now.Add(2 * time.Minute)
	c.Set("c", "3")

	assert.Equal(t, 2, c.CleanExpired())
	assert.Equal(t, 1, c.Size())
	_, ok := c.Get("c")
	assert.True(t, ok)
}

func TestLRUCache_DeleteAndPurge(t *testing.T) {
	c, _ := newClockedCache(t, 10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Delete("a")
	assert.Equal(t, 1, c.Size())

	c.Purge()
	assert.Equal(t, 0, c.Size())
	_, ok := c.Get("b")
	assert.False(t, ok)
}

func TestManager_Sweep(t *testing.T) {
	c, now := newClockedCache(t, 10, time.Minute)
	c.Set("a", "1")
	*now = now.Add(time.Hour)

	m := NewManager()
	m.Register(c)
	assert.Equal(t, 1, m.Sweep())

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}

func TestVersionKey(t *testing.T) {
	assert.Equal(t, "weekly@7", VersionKey("weekly", 7))
	assert.NotEqual(t, VersionKey("weekly", 7), VersionKey("weekly", 8))
}
