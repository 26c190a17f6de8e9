package feed

import (
	"testing"
	"time"
)

func TestCacheFreshStaleMissWindows(t *testing.T) {
	clock := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	c := NewCache(5*time.Minute, 30*time.Minute)
	c.now = func() time.Time { return clock }

	c.Set("k", "v")

	if _, state := c.Get("k"); state != CacheFresh {
		t.Errorf("state just after set = %v, want CacheFresh", state)
	}

	clock = clock.Add(6 * time.Minute)
	data, state := c.Get("k")
	if state != CacheStale {
		t.Errorf("state at 6m = %v, want CacheStale", state)
	}
	if data != "v" {
		t.Errorf("stale data = %v, want v", data)
	}

	clock = clock.Add(25 * time.Minute)
	if _, state := c.Get("k"); state != CacheMiss {
		t.Errorf("state at 31m = %v, want CacheMiss", state)
	}
	if c.Len() != 0 {
		t.Errorf("expired entry was not evicted, len = %d", c.Len())
	}
}

func TestCacheMissOnUnknownKey(t *testing.T) {
	c := NewCache(time.Minute, time.Hour)

	if data, state := c.Get("nope"); state != CacheMiss || data != nil {
		t.Errorf("Get(unknown) = (%v, %v), want (nil, CacheMiss)", data, state)
	}
}

func TestCacheSetRefreshesTimestamp(t *testing.T) {
	clock := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	c := NewCache(5*time.Minute, 30*time.Minute)
	c.now = func() time.Time { return clock }

	c.Set("k", "old")
	clock = clock.Add(10 * time.Minute)
	c.Set("k", "new")

	data, state := c.Get("k")
	if state != CacheFresh {
		t.Errorf("state after re-set = %v, want CacheFresh", state)
	}
	if data != "new" {
		t.Errorf("data = %v, want new", data)
	}
}
