package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCacheSetGetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	c.Set("report:sales:a", 1, 0)
	c.Set("report:sales:b", 2, time.Minute)
	c.Set("session:coupon:u1", "x", time.Minute)

	v, ok := c.Get("report:sales:a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.DeletePrefix("report:")
	_, ok = c.Get("report:sales:a")
	assert.False(t, ok)
	_, ok = c.Get("report:sales:b")
	assert.False(t, ok)

	_, ok = c.Get("session:coupon:u1")
	assert.True(t, ok)

	c.Delete("session:coupon:u1")
	_, ok = c.Get("session:coupon:u1")
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	c.Set("short", "v", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("short")
	assert.False(t, ok)
}
