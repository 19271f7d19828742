package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, "course:"), s
}

func TestCacheHelper_GetSet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	type payload struct {
		ID    uint   `json:"id"`
		Title string `json:"title"`
	}

	if err := helper.Set(ctx, "42", payload{ID: 42, Title: "cached"}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "42", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != 42 || got.Title != "cached" {
		t.Errorf("Unexpected payload: %+v", got)
	}

	if err := helper.Get(ctx, "missing", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Expected cache miss, got %v", err)
	}

	if err := helper.Delete(ctx, "42"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := helper.Get(ctx, "42", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Expected miss after delete, got %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	t.Run("miss falls through to fetch", func(t *testing.T) {
		calls := 0
		var dest string
		err := helper.CacheOrExecute(ctx, "fetched", &dest, time.Minute, func() (interface{}, error) {
			calls++
			return "from-source", nil
		})
		if err != nil {
			t.Fatalf("CacheOrExecute failed: %v", err)
		}
		if dest != "from-source" || calls != 1 {
			t.Errorf("Expected one fetch, got dest=%q calls=%d", dest, calls)
		}
	})

	t.Run("fetch errors pass through wrapped", func(t *testing.T) {
		sentinel := errors.New("source unavailable")
		var dest string
		err := helper.CacheOrExecute(ctx, "broken", &dest, time.Minute, func() (interface{}, error) {
			return nil, sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Errorf("Expected wrapped sentinel, got %v", err)
		}
	})

	t.Run("hit skips the fetch", func(t *testing.T) {
		if err := helper.Set(ctx, "warm", "cached-value", time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		var dest string
		err := helper.CacheOrExecute(ctx, "warm", &dest, time.Minute, func() (interface{}, error) {
			t.Error("Fetch must not run on a cache hit")
			return nil, nil
		})
		if err != nil {
			t.Fatalf("CacheOrExecute failed: %v", err)
		}
		if dest != "cached-value" {
			t.Errorf("Expected cached value, got %q", dest)
		}
	})
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := helper.Set(ctx, fmt.Sprintf("stats:%d", i), i, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := helper.Set(ctx, "other:1", 1, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := helper.InvalidatePattern(ctx, "stats:*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	var dest int
	if err := helper.Get(ctx, "stats:0", &dest); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Expected invalidated key, got %v", err)
	}
	if err := helper.Get(ctx, "other:1", &dest); err != nil {
		t.Errorf("Expected unrelated key to survive, got %v", err)
	}
}

func TestCacheHelper_NilClient(t *testing.T) {
	helper := NewCacheHelper(nil, "course:")
	ctx := context.Background()

	var dest string
	if err := helper.Get(ctx, "anything", &dest); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Expected cache not available, got %v", err)
	}
	if err := helper.Set(ctx, "anything", "value", time.Minute); err != nil {
		t.Errorf("Expected degraded Set to succeed, got %v", err)
	}
	if err := helper.Delete(ctx, "anything"); err != nil {
		t.Errorf("Expected degraded Delete to succeed, got %v", err)
	}

	// The fetch path still serves data without a cache behind it.
	err := helper.CacheOrExecute(ctx, "anything", &dest, time.Minute, func() (interface{}, error) {
		return "direct", nil
	})
	if err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if dest != "direct" {
		t.Errorf("Expected direct value, got %q", dest)
	}
}
