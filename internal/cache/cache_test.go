package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCache_GetOrFetch_CachesResult(t *testing.T) {
	c := New[[]string]()

	calls := 0
	fetch := func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrFetch(context.Background(), "example.com.", fetch)
		if err != nil {
			t.Fatalf("GetOrFetch error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len(got) = %d, want 2", len(got))
		}
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
	if !c.Has("example.com.") {
		t.Error("expected entry to be cached")
	}
}

func TestCache_GetOrFetch_ErrorNotCached(t *testing.T) {
	c := New[int]()
	want := errors.New("boom")

	_, err := c.GetOrFetch(context.Background(), "k", func(context.Context) (int, error) {
		return 0, want
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if c.Has("k") {
		t.Fatal("failed fetch should not be cached")
	}

	got, err := c.GetOrFetch(context.Background(), "k", func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch error: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := New[string]()
	c.Set("k", "old")

	c.Invalidate("k")
	if c.Has("k") {
		t.Fatal("expected entry to be removed")
	}

	got, err := c.GetOrFetch(context.Background(), "k", func(context.Context) (string, error) {
		return "new", nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch error: %v", err)
	}
	if got != "new" {
		t.Errorf("got %q, want %q", got, "new")
	}
}

func TestCache_InvalidateMissingKey(t *testing.T) {
	c := New[string]()
	c.Invalidate("missing")
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestCache_InvalidateDuringFetchDropsResult(t *testing.T) {
	c := New[string]()

	_, err := c.GetOrFetch(context.Background(), "k", func(context.Context) (string, error) {
		c.Invalidate("k")
		return "stale", nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch error: %v", err)
	}
	if c.Has("k") {
		t.Error("result of a fetch overtaken by Invalidate should not be stored")
	}
}

func TestCache_Clear(t *testing.T) {
	c := New[int]()
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be cleared")
	}
}

func TestCache_EmptyKeyNormalized(t *testing.T) {
	c := New[int]()
	c.Set("  ", 7)
	if got, ok := c.Get(""); !ok || got != 7 {
		t.Errorf("Get(\"\") = %d, %v; want 7, true", got, ok)
	}
}

func TestCache_ConcurrentMissesShareFetch(t *testing.T) {
	c := New[int]()

	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 1, nil
	}

	const n = 8
	var started, done sync.WaitGroup
	started.Add(n)
	done.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer done.Done()
			started.Done()
			if _, err := c.GetOrFetch(context.Background(), "k", fetch); err != nil {
				t.Errorf("GetOrFetch error: %v", err)
			}
		}()
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
}
