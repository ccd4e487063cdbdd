package metadata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"catalog-gateway/internal/model"
)

// ColumnCache memoizes per-table column lists to avoid repeated expensive
// introspection queries. Entries expire by TTL and callers can force a
// refresh past a still-valid entry.
type ColumnCache struct {
	cache      map[string]*cachedColumns
	mutex      sync.RWMutex
	ttl        time.Duration
	cleanupInt time.Duration
	stopChan   chan struct{}
}

type cachedColumns struct {
	Columns   []model.TableColumn
	ExpiresAt time.Time
}

// NewColumnCache creates a new column cache
func NewColumnCache(ttl time.Duration) *ColumnCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &ColumnCache{
		cache:      make(map[string]*cachedColumns),
		ttl:        ttl,
		cleanupInt: 10 * time.Minute,
		stopChan:   make(chan struct{}),
	}
}

// ColumnKey builds the memoization key for one table's column list
func ColumnKey(dataSourceID, databaseName, schemaName, tableName string) string {
	return fmt.Sprintf("%s|%s|%s|%s", dataSourceID, databaseName, schemaName, tableName)
}

// Start begins the background cleanup process
func (cc *ColumnCache) Start(ctx context.Context) {
	ticker := time.NewTicker(cc.cleanupInt)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cc.stopChan:
			return
		case <-ticker.C:
			cc.cleanupExpired()
		}
	}
}

// Stop stops the background cleanup process
func (cc *ColumnCache) Stop() {
	close(cc.stopChan)
}

// Get retrieves a cached column list
func (cc *ColumnCache) Get(key string) ([]model.TableColumn, bool) {
	cc.mutex.RLock()
	defer cc.mutex.RUnlock()

	cached, exists := cc.cache[key]
	if !exists {
		return nil, false
	}

	if time.Now().After(cached.ExpiresAt) {
		return nil, false
	}

	return cached.Columns, true
}

// Set stores a column list in the cache
func (cc *ColumnCache) Set(key string, columns []model.TableColumn) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	cc.cache[key] = &cachedColumns{
		Columns:   columns,
		ExpiresAt: time.Now().Add(cc.ttl),
	}
}

// Invalidate removes one cached column list
func (cc *ColumnCache) Invalidate(key string) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	delete(cc.cache, key)
}

// GetOrLoad returns the cached column list or loads and caches a fresh one.
// With refresh true the cached entry is bypassed and replaced.
func (cc *ColumnCache) GetOrLoad(ctx context.Context, key string, refresh bool, loader func(context.Context) ([]model.TableColumn, error)) ([]model.TableColumn, error) {
	if !refresh {
		if columns, ok := cc.Get(key); ok {
			return columns, nil
		}
	}

	columns, err := loader(ctx)
	if err != nil {
		return nil, err
	}

	cc.Set(key, columns)
	return columns, nil
}

// cleanupExpired removes all expired entries from the cache
func (cc *ColumnCache) cleanupExpired() {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	now := time.Now()
	for key, cached := range cc.cache {
		if now.After(cached.ExpiresAt) {
			delete(cc.cache, key)
		}
	}
}

// Stats returns cache statistics
func (cc *ColumnCache) Stats() ColumnCacheStats {
	cc.mutex.RLock()
	defer cc.mutex.RUnlock()

	total := len(cc.cache)
	expired := 0
	now := time.Now()
	for _, cached := range cc.cache {
		if now.After(cached.ExpiresAt) {
			expired++
		}
	}

	return ColumnCacheStats{
		TotalEntries:   total,
		ActiveEntries:  total - expired,
		ExpiredEntries: expired,
		TTL:            cc.ttl,
	}
}

// ColumnCacheStats represents cache statistics
type ColumnCacheStats struct {
	TotalEntries   int           `json:"totalEntries"`
	ActiveEntries  int           `json:"activeEntries"`
	ExpiredEntries int           `json:"expiredEntries"`
	TTL            time.Duration `json:"ttl"`
}
