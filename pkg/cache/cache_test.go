package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetGet(t *testing.T) {
	c := NewCache(time.Minute, 0, 0)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestExpiration(t *testing.T) {
	c := NewCache(time.Minute, 0, 0)

	c.SetWithExpiration("short", "x", time.Millisecond)
	c.SetWithExpiration("forever", "y", 0)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("short")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Count())

	c.DeleteExpired()
	assert.Equal(t, 1, c.Count())

	v, ok := c.Get("forever")
	assert.True(t, ok)
	assert.Equal(t, "y", v)
}

func TestEvictsOldestWhenFull(t *testing.T) {
	c := NewCache(time.Minute, 0, 2)

	var evicted []string
	c.SetOnEvicted(func(k string, _ interface{}) { evicted = append(evicted, k) })

	c.Set("first", 1)
	time.Sleep(time.Millisecond)
	c.Set("second", 2)
	time.Sleep(time.Millisecond)
	c.Set("second", 22) // overwrite does not evict
	c.Set("third", 3)

	assert.Equal(t, []string{"first"}, evicted)
	assert.Equal(t, 2, c.Count())
	_, ok := c.Get("first")
	assert.False(t, ok)
}

func TestDeleteAndFlush(t *testing.T) {
	c := NewCache(time.Minute, 0, 0)
	var evicted int
	c.SetOnEvicted(func(string, interface{}) { evicted++ })

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Delete("a")
	c.Flush()

	assert.Equal(t, 0, c.Count())
	assert.Equal(t, 3, evicted)
}

func TestCleanupLoopStops(t *testing.T) {
	c := NewCache(time.Millisecond, time.Millisecond, 0)
	c.Set("a", 1)

	assert.Eventually(t, func() bool { return c.Count() == 0 }, time.Second, 5*time.Millisecond)
	c.Close()
	c.Close()
}
