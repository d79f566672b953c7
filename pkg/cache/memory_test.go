package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(&Options{
		DefaultTTL: time.Minute,
		MaxEntries: 100,
	})
	defer c.Close()

	ctx := context.Background()
	key := BuildSolveKey("3f9a1c")
	value := []byte(`{"revenue":22}`)

	if err := c.Set(ctx, key, value, 0); err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	got, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if string(got) != string(value) {
		t.Errorf("expected %s, got %s", value, got)
	}
}

func TestMemoryCache_GetCopiesValue(t *testing.T) {
	c := NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()
	key := BuildSolveKey("3f9a1c")

	c.Set(ctx, key, []byte("original"), 0)

	got, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	got[0] = 'X'

	again, _ := c.Get(ctx, key)
	if string(again) != "original" {
		t.Errorf("cached value was mutated through the returned slice: %s", again)
	}
}

func TestMemoryCache_GetNotFound(t *testing.T) {
	c := NewMemoryCache(nil)
	defer c.Close()

	_, err := c.Get(context.Background(), BuildSolveKey("unknown"))
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()
	key := BuildSolveKey("3f9a1c")

	c.Set(ctx, key, []byte("value"), 0)

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}

	if _, err := c.Get(ctx, key); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
	}

	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, key); err != nil {
		t.Errorf("delete of missing key should not error: %v", err)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	c := NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()
	key := BuildSolveKey("3f9a1c")

	exists, err := c.Exists(ctx, key)
	if err != nil {
		t.Fatalf("failed to check exists: %v", err)
	}
	if exists {
		t.Error("expected key to not exist")
	}

	c.Set(ctx, key, []byte("value"), 0)

	exists, err = c.Exists(ctx, key)
	if err != nil {
		t.Fatalf("failed to check exists: %v", err)
	}
	if !exists {
		t.Error("expected key to exist")
	}
}

func TestMemoryCache_TTL(t *testing.T) {
	c := NewMemoryCache(&Options{
		DefaultTTL:      100 * time.Millisecond,
		CleanupInterval: 50 * time.Millisecond,
	})
	defer c.Close()

	ctx := context.Background()
	key := BuildSolveKey("3f9a1c")

	c.Set(ctx, key, []byte("value"), 100*time.Millisecond)

	if _, err := c.Get(ctx, key); err != nil {
		t.Fatalf("expected key to exist: %v", err)
	}

	time.Sleep(150 * time.Millisecond)

	if _, err := c.Get(ctx, key); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after TTL, got %v", err)
	}
}

func TestMemoryCache_DeleteByPattern(t *testing.T) {
	c := NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()

	c.Set(ctx, BuildSolveKey("aaa111"), []byte("v1"), 0)
	c.Set(ctx, BuildSolveKey("bbb222"), []byte("v2"), 0)
	c.Set(ctx, "session:user-1", []byte("v3"), 0)

	count, err := c.DeleteByPattern(ctx, "solve:*")
	if err != nil {
		t.Fatalf("failed to delete by pattern: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 deleted, got %d", count)
	}

	if exists, _ := c.Exists(ctx, "session:user-1"); !exists {
		t.Error("session:user-1 should survive a solve:* invalidation")
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	c := NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()

	c.Set(ctx, BuildSolveKey("aaa111"), []byte("v1"), 0)
	c.Set(ctx, BuildSolveKey("bbb222"), []byte("v2"), 0)

	c.Get(ctx, BuildSolveKey("aaa111"))
	c.Get(ctx, BuildSolveKey("aaa111"))
	c.Get(ctx, BuildSolveKey("missing"))

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}

	if stats.TotalKeys != 2 {
		t.Errorf("expected 2 total keys, got %d", stats.TotalKeys)
	}
	if stats.Hits != 2 {
		t.Errorf("expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
	if stats.Backend != BackendMemory {
		t.Errorf("expected backend 'memory', got %s", stats.Backend)
	}
	if stats.KeysByPrefix["solve"] != 2 {
		t.Errorf("expected 2 keys under 'solve' prefix, got %d", stats.KeysByPrefix["solve"])
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()

	c.Set(ctx, BuildSolveKey("aaa111"), []byte("v1"), 0)
	c.Set(ctx, BuildSolveKey("bbb222"), []byte("v2"), 0)

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}

	stats, _ := c.Stats(ctx)
	if stats.TotalKeys != 0 {
		t.Errorf("expected 0 keys after clear, got %d", stats.TotalKeys)
	}
}

func TestMemoryCache_EvictsOldest(t *testing.T) {
	c := NewMemoryCache(&Options{
		MaxEntries: 3,
		DefaultTTL: time.Minute,
	})
	defer c.Close()

	ctx := context.Background()

	c.Set(ctx, BuildSolveKey("plan-a"), []byte("v1"), 0)
	time.Sleep(10 * time.Millisecond)
	c.Set(ctx, BuildSolveKey("plan-b"), []byte("v2"), 0)
	time.Sleep(10 * time.Millisecond)
	c.Set(ctx, BuildSolveKey("plan-c"), []byte("v3"), 0)

	// Touch plan-a so plan-b becomes the oldest.
	c.Get(ctx, BuildSolveKey("plan-a"))

	c.Set(ctx, BuildSolveKey("plan-d"), []byte("v4"), 0)

	if _, err := c.Get(ctx, BuildSolveKey("plan-b")); !errors.Is(err, ErrKeyNotFound) {
		t.Error("expected plan-b to be evicted")
	}
	if _, err := c.Get(ctx, BuildSolveKey("plan-a")); err != nil {
		t.Error("expected plan-a to survive eviction")
	}
}

func TestMemoryCache_Close(t *testing.T) {
	c := NewMemoryCache(nil)

	ctx := context.Background()
	c.Set(ctx, BuildSolveKey("3f9a1c"), []byte("value"), 0)

	if err := c.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	if _, err := c.Get(ctx, BuildSolveKey("3f9a1c")); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("expected ErrCacheClosed, got %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("expected ErrCacheClosed on set, got %v", err)
	}

	if err := c.Close(); err != nil {
		t.Errorf("double close should not error: %v", err)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(&Options{MaxEntries: 1000, DefaultTTL: time.Minute})
	defer c.Close()

	ctx := context.Background()
	done := make(chan struct{})

	for g := 0; g < 4; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				key := BuildSolveKey(fmt.Sprintf("g%d-%d", g, i))
				c.Set(ctx, key, []byte("v"), 0)
				c.Get(ctx, key)
			}
		}(g)
	}
	for g := 0; g < 4; g++ {
		<-done
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if stats.Hits == 0 {
		t.Error("expected some hits after concurrent access")
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		key     string
		want    bool
	}{
		{"wildcard matches anything", "*", "anything", true},
		{"solve prefix matches", "solve:*", "solve:3f9a1c", true},
		{"solve prefix rejects other", "solve:*", "session:user-1", false},
		{"suffix match", "*:3f9a1c", "solve:3f9a1c", true},
		{"suffix mismatch", "*:3f9a1c", "solve:bbb222", false},
		{"exact match", "solve:3f9a1c", "solve:3f9a1c", true},
		{"exact mismatch", "solve:3f9a1c", "solve:bbb222", false},
		{"middle wildcard match", "solve:*:v1", "solve:3f9a1c:v1", true},
		{"middle wildcard prefix mismatch", "solve:*:v1", "other:3f9a1c:v1", false},
		{"middle wildcard suffix mismatch", "solve:*:v1", "solve:3f9a1c:v2", false},
		{"middle wildcard empty middle", "solve:*:v1", "solve::v1", true},
		{"key shorter than pattern parts", "prefix*suffix", "presuf", false},
		{"adjacent prefix suffix", "a*b", "ab", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchPattern(tt.pattern, tt.key); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.key, got, tt.want)
			}
		})
	}
}

func TestKeyPrefix(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"solve:3f9a1c", "solve"},
		{"bare-key", "other"},
		{"a:b:c", "a"},
		{":leading", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := keyPrefix(tt.key); got != tt.want {
				t.Errorf("keyPrefix(%s) = %s, want %s", tt.key, got, tt.want)
			}
		})
	}
}
