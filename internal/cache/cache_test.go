package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/campushub/registrar/internal/cache"
	"github.com/campushub/registrar/internal/domain/course"
)

func TestCacheExpiry(t *testing.T) {
	c := cache.New(20 * time.Millisecond)

	c.Set("k", "v")

	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("expected fresh value, got %v ok=%v", v, ok)
	}

	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expired entry to be gone")
	}
}

func TestCacheDelete(t *testing.T) {
	c := cache.New(time.Minute)

	c.Set("k", 1)
	c.Delete("k")

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected deleted entry to be gone")
	}
}

func TestMemoryCatalogRoundTrip(t *testing.T) {
	ctx := context.Background()
	cat := cache.NewMemoryCatalog(time.Minute)

	if _, ok := cat.Get(ctx); ok {
		t.Fatal("expected empty catalog to miss")
	}

	in := []course.Course{{ID: 1, Code: "CS101", Name: "Intro", Credits: 3, Capacity: 30}}
	cat.Set(ctx, in)

	out, ok := cat.Get(ctx)
	if !ok || len(out) != 1 || out[0].Code != "CS101" {
		t.Fatalf("unexpected catalog contents: %v ok=%v", out, ok)
	}

	cat.Invalidate(ctx)

	if _, ok := cat.Get(ctx); ok {
		t.Fatal("expected invalidated catalog to miss")
	}
}
