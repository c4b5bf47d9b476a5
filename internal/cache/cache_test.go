package cache

import (
	"strconv"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

// size counts the stored entries, expired or not.
func size[V any](c *Cache[V]) int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func TestGetAfterPut(t *testing.T) {
	c := New[int](time.Minute)
	c.Put("a", 1)

	got, ok := c.Get("a")
	if !ok || got != 1 {
		t.Errorf("Get() = %v, %v, want 1, true", got, ok)
	}
	if _, ok := c.Get("b"); ok {
		t.Errorf("Get() of a missing key reported a hit")
	}
}

func TestEntriesExpire(t *testing.T) {
	clk := &clock{t: time.Unix(1710000000, 0)}
	c := New[string](time.Minute)
	c.now = clk.now

	c.Put("k", "v")
	clk.t = clk.t.Add(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("entry expired early")
	}

	clk.t = clk.t.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Errorf("entry still live after ttl")
	}
	if size(c) != 0 {
		t.Errorf("expired entry not removed on read")
	}
}

func TestSweepOnWrites(t *testing.T) {
	clk := &clock{t: time.Unix(1710000000, 0)}
	c := New[int](time.Second)
	c.now = clk.now

	for i := 0; i < sweepEvery-1; i++ {
		c.Put(strconv.Itoa(i), i)
	}
	clk.t = clk.t.Add(time.Hour)
	c.Put("fresh", 1)

	if n := size(c); n != 1 {
		t.Errorf("size = %d after sweep, want 1", n)
	}
}

func TestDefaultTTL(t *testing.T) {
	if c := New[int](0); c.ttl != 10*time.Minute {
		t.Errorf("ttl = %v, want 10m", c.ttl)
	}
}
