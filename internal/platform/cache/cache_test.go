package cache

import (
	"testing"
	"time"

	"infrascope/internal/testutil"
)

func TestTTLCache_SetGet(t *testing.T) {
	c := New[string](10)

	c.Set("a.example.com", "1.2.3.4", 0)
	got, ok := c.Get("a.example.com")
	testutil.AssertTrue(t, ok, "entry should exist")
	testutil.AssertEqual(t, got, "1.2.3.4", "value should match")

	_, ok = c.Get("missing.example.com")
	testutil.AssertFalse(t, ok, "missing key should not hit")
}

func TestTTLCache_Expiry(t *testing.T) {
	c := New[int](10)

	c.Set("short", 42, 30*time.Millisecond)
	_, ok := c.Get("short")
	testutil.AssertTrue(t, ok, "entry should be alive before TTL")

	time.Sleep(50 * time.Millisecond)
	_, ok = c.Get("short")
	testutil.AssertFalse(t, ok, "entry should expire after TTL")
	testutil.AssertEqual(t, c.Size(), 0, "expired entry removed on read")
}

func TestTTLCache_LRUEviction(t *testing.T) {
	c := New[int](3)

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Set("c", 3, 0)

	// Touch "a" so "b" becomes the LRU candidate.
	c.Get("a")
	c.Set("d", 4, 0)

	_, ok := c.Get("b")
	testutil.AssertFalse(t, ok, "LRU entry should be evicted")
	_, ok = c.Get("a")
	testutil.AssertTrue(t, ok, "recently used entry should survive")
	testutil.AssertEqual(t, c.Size(), 3, "size bounded by capacity")
}

func TestTTLCache_UpdateExisting(t *testing.T) {
	c := New[string](2)

	c.Set("k", "v1", 0)
	c.Set("k", "v2", 0)

	got, _ := c.Get("k")
	testutil.AssertEqual(t, got, "v2", "update should replace value")
	testutil.AssertEqual(t, c.Size(), 1, "update should not grow cache")
}

func TestTTLCache_Clear(t *testing.T) {
	c := New[int](5)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)

	c.Clear()
	testutil.AssertEqual(t, c.Size(), 0, "clear should empty the cache")
}
