package cache_test

import (
	"testing"
	"time"

	"github.com/jhoicas/printshop-api/internal/cache"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func TestTTL_ExpiresAfterDuration(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	c := cache.NewTTL[string, int](time.Minute, clk.Now)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	clk.Advance(59 * time.Second)
	_, ok = c.Get("a")
	assert.True(t, ok)

	clk.Advance(time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTL_InvalidateAndPurge(t *testing.T) {
	c := cache.NewTTL[string, string](time.Hour, nil)
	c.Set("a", "x")
	c.Set("b", "y")

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestTTL_SweepAndDisabled(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := cache.NewTTL[int, int](time.Second, clk.Now)
	c.Set(1, 1)
	c.Set(2, 2)
	clk.Advance(2 * time.Second)
	c.Set(3, 3)
	assert.Equal(t, 2, c.Sweep())
	assert.Equal(t, 1, c.Len())

	off := cache.NewTTL[int, int](0, nil)
	off.Set(1, 1)
	_, ok := off.Get(1)
	assert.False(t, ok)
}
