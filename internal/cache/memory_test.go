package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheSetGetDelete(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("get = %q, %v", got, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func TestMemoryCacheGetOrSet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	calls := 0
	fn := func() ([]byte, error) {
		calls++
		return []byte("computed"), nil
	}

	got, err := c.GetOrSet(ctx, "k", time.Minute, fn)
	if err != nil || string(got) != "computed" {
		t.Fatalf("GetOrSet = %q, %v", got, err)
	}
	got, err = c.GetOrSet(ctx, "k", time.Minute, fn)
	if err != nil || string(got) != "computed" {
		t.Fatalf("GetOrSet on hit = %q, %v", got, err)
	}
	if calls != 1 {
		t.Fatalf("expected single compute, got %d", calls)
	}
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	original := []byte("stable")
	if err := c.Set(ctx, "k", original, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	original[0] = 'X'

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	got[0] = 'Y'

	again, _ := c.Get(ctx, "k")
	if string(again) != "stable" {
		t.Fatalf("cache must hand out copies, got %q", again)
	}
}
