package metadata

import (
	"context"
	"errors"
	"testing"
	"time"

	"catalog-gateway/internal/model"
)

func TestColumnCacheGetSet(t *testing.T) {
	cache := NewColumnCache(time.Minute)
	key := ColumnKey("ds-1", "app", "", "user")

	if _, ok := cache.Get(key); ok {
		t.Error("expected a miss on an empty cache")
	}

	columns := []model.TableColumn{{Name: "id", Type: "bigint"}}
	cache.Set(key, columns)

	got, ok := cache.Get(key)
	if !ok || len(got) != 1 || got[0].Name != "id" {
		t.Errorf("expected cached columns back, got %v (hit=%v)", got, ok)
	}
}

func TestColumnCacheExpiry(t *testing.T) {
	cache := NewColumnCache(10 * time.Millisecond)
	key := ColumnKey("ds-1", "app", "", "user")
	cache.Set(key, []model.TableColumn{{Name: "id"}})

	time.Sleep(20 * time.Millisecond)
	if _, ok := cache.Get(key); ok {
		t.Error("expected an expired entry to miss")
	}
}

func TestColumnCacheGetOrLoad(t *testing.T) {
	cache := NewColumnCache(time.Minute)
	key := ColumnKey("ds-1", "app", "", "user")
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) ([]model.TableColumn, error) {
		calls++
		return []model.TableColumn{{Name: "id"}}, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := cache.GetOrLoad(ctx, key, false, loader); err != nil {
			t.Fatalf("GetOrLoad failed: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected one load, got %d", calls)
	}

	if _, err := cache.GetOrLoad(ctx, key, true, loader); err != nil {
		t.Fatalf("refresh GetOrLoad failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected refresh to bypass the cache, got %d loads", calls)
	}
}

func TestColumnCacheGetOrLoadErrorNotCached(t *testing.T) {
	cache := NewColumnCache(time.Minute)
	key := ColumnKey("ds-1", "app", "", "user")
	ctx := context.Background()

	wantErr := errors.New("connection lost")
	_, err := cache.GetOrLoad(ctx, key, false, func(ctx context.Context) ([]model.TableColumn, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected loader error, got %v", err)
	}

	if _, ok := cache.Get(key); ok {
		t.Error("a failed load must not populate the cache")
	}
}

func TestColumnCacheInvalidate(t *testing.T) {
	cache := NewColumnCache(time.Minute)
	key := ColumnKey("ds-1", "app", "", "user")
	cache.Set(key, []model.TableColumn{{Name: "id"}})

	cache.Invalidate(key)
	if _, ok := cache.Get(key); ok {
		t.Error("expected invalidated entry to miss")
	}
}

func TestColumnCacheStats(t *testing.T) {
	cache := NewColumnCache(time.Minute)
	cache.Set(ColumnKey("ds-1", "app", "", "a"), nil)
	cache.Set(ColumnKey("ds-1", "app", "", "b"), nil)

	stats := cache.Stats()
	if stats.TotalEntries != 2 || stats.ActiveEntries != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
