package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	// Miss before set
	_, hit, err := c.Get(ctx, "layout:abc")
	if err != nil || hit {
		t.Fatalf("expected clean miss, hit=%v err=%v", hit, err)
	}

	// Round-trip
	if err := c.Set(ctx, "layout:abc", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:abc")
	if err != nil || !hit {
		t.Fatalf("expected hit, hit=%v err=%v", hit, err)
	}
	if string(data) != "payload" {
		t.Errorf("Get = %q, want %q", data, "payload")
	}

	// Expired entries are treated as misses
	if err := c.Set(ctx, "layout:old", []byte("stale"), -time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_, hit, _ = c.Get(ctx, "layout:old")
	if hit {
		t.Error("expired entry should miss")
	}

	// Delete
	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, hit, _ = c.Get(ctx, "layout:abc")
	if hit {
		t.Error("deleted entry should miss")
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "layout:missing"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// MovieKey
	if got := k.MovieKey("abc123"); got != "movie:abc123" {
		t.Errorf("MovieKey unexpected: %s", got)
	}

	// LayoutKey should include every facet in the hash
	base := LayoutKeyOpts{TreeIndex: 3, Transform: "none", AngleExtentDeg: 350, ContainerWidth: 800, ContainerHeight: 600, NodeSize: 3}
	lk1 := k.LayoutKey("hash", base)

	rotated := base
	rotated.RotationDeg = 90
	if k.LayoutKey("hash", rotated) == lk1 {
		t.Error("different rotation should produce a different layout key")
	}

	logScaled := base
	logScaled.Transform = "log"
	if k.LayoutKey("hash", logScaled) == lk1 {
		t.Error("different transform should produce a different layout key")
	}

	// Same options are deterministic
	if k.LayoutKey("hash", base) != lk1 {
		t.Error("identical options should produce identical keys")
	}

	// FrameKey distinguishes t values
	fk1 := k.FrameKey("hash", FrameKeyOpts{FromIndex: 0, ToIndex: 1, T: 0.25, Layout: base})
	fk2 := k.FrameKey("hash", FrameKeyOpts{FromIndex: 0, ToIndex: 1, T: 0.5, Layout: base})
	if fk1 == fk2 {
		t.Error("different t should produce different frame keys")
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRU(2, "layout")

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3) // evicts "a"

	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if v, ok := c.Get("b"); !ok || v.(int) != 2 {
		t.Errorf("b = %v, %v; want 2, true", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestLRURecency(t *testing.T) {
	c := NewLRU(2, "layout")

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")    // refresh "a"
	c.Put("c", 3) // evicts "b", not "a"

	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry should survive eviction")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry should be evicted")
	}
}

func TestLRUUpdateExisting(t *testing.T) {
	c := NewLRU(2, "layout")

	c.Put("a", 1)
	c.Put("a", 10)
	if v, _ := c.Get("a"); v.(int) != 10 {
		t.Errorf("a = %v, want 10", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestLRUClear(t *testing.T) {
	c := NewLRU(4, "layout")
	c.Put("a", 1)
	c.Put("b", 2)
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("cleared entry should miss")
	}
}

func TestLRUDefaultCapacity(t *testing.T) {
	c := NewLRU(0, "layout")
	if c.Capacity() != DefaultLRUCapacity {
		t.Errorf("Capacity = %d, want %d", c.Capacity(), DefaultLRUCapacity)
	}
}
