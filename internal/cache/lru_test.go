package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRUCache_TTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](4, 30*time.Second, WithClock(clock.Now))

	c.Set("snapshot", "v1")
	got, ok := c.Get("snapshot")
	assert.True(t, ok)
	assert.Equal(t, "v1", got)

	clock.Advance(29 * time.Second)
	_, ok = c.Get("snapshot")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("snapshot")
	assert.False(t, ok, "entries expire exactly at ttl")
	assert.Zero(t, c.Size())
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCache_UpdateDeletePurge(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)
	c.Set("a", 1)
	c.Set("a", 2)
	v, _ := c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Size())

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("x", 1)
	c.Set("y", 2)
	c.Purge()
	assert.Zero(t, c.Size())
}

func TestJanitor_Sweep(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	a := NewLRUCache[int](10, time.Second, WithClock(clock.Now))
	b := NewLRUCache[int](10, time.Hour, WithClock(clock.Now))
	a.Set("1", 1)
	a.Set("2", 2)
	b.Set("3", 3)

	clock.Advance(2 * time.Second)
	assert.Equal(t, 2, NewJanitor(a, b).Sweep())
	assert.Zero(t, a.Size())
	assert.Equal(t, 1, b.Size())
}
