package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"catalog-gateway/internal/metadata"
	"catalog-gateway/internal/middleware"
	"catalog-gateway/internal/model"
	"catalog-gateway/internal/repository"
)

// DefaultSyncBatchSize is the number of cached table rows per bulk insert
const DefaultSyncBatchSize = 500

// DefaultSyncStaleAfter is how long a SYNCING version may sit untouched before
// it is treated as abandoned and a fresh attempt is allowed.
const DefaultSyncStaleAfter = 10 * time.Minute

// SyncScope identifies one catalog scope to synchronize
type SyncScope struct {
	DataSourceID string
	DatabaseName string
	SchemaName   string
}

// ScopeKey returns the scope's unique cache key
func (s SyncScope) ScopeKey() string {
	return model.BuildScopeKey(s.DataSourceID, s.DatabaseName, s.SchemaName)
}

func (s SyncScope) filter() repository.TableCacheFilter {
	return repository.TableCacheFilter{
		DataSourceID: s.DataSourceID,
		DatabaseName: s.DatabaseName,
		SchemaName:   s.SchemaName,
	}
}

// TableStreamer enumerates the live tables of one scope, invoking fn once per
// table. Implementations wrap a remote connection plus a MetaData driver.
type TableStreamer func(ctx context.Context, fn func(metadata.TableRow) error) error

// CatalogSyncService drives the versioned table catalog cache. Each refresh
// runs under a per-scope lock, bumps the scope's version with status SYNCING,
// bulk inserts the streamed tables in batches, finalizes the version as READY
// with the authoritative table count, and only then evicts older generations.
type CatalogSyncService struct {
	store      repository.CatalogCacheRepository
	batchSize  int
	staleAfter time.Duration
	stats      *SyncStatsCollector

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCatalogSyncService creates a new CatalogSyncService. Zero batchSize and
// staleAfter fall back to the defaults.
func NewCatalogSyncService(store repository.CatalogCacheRepository, batchSize int, staleAfter time.Duration) *CatalogSyncService {
	if batchSize <= 0 {
		batchSize = DefaultSyncBatchSize
	}
	if staleAfter <= 0 {
		staleAfter = DefaultSyncStaleAfter
	}
	return &CatalogSyncService{
		store:      store,
		batchSize:  batchSize,
		staleAfter: staleAfter,
		locks:      make(map[string]*sync.Mutex),
	}
}

// SetStatsCollector attaches an optional sync stats collector
func (s *CatalogSyncService) SetStatsCollector(stats *SyncStatsCollector) {
	s.stats = stats
}

// EnsureFresh returns the scope's current version record, synchronizing first
// when the scope has never been cached, when force is set, or when a previous
// attempt was abandoned mid-flight. Without force an existing READY version is
// returned as-is with no remote call.
func (s *CatalogSyncService) EnsureFresh(ctx context.Context, scope SyncScope, force bool, stream TableStreamer) (*model.TableCacheVersion, error) {
	scopeKey := scope.ScopeKey()

	lock := s.lockFor(scopeKey)
	lock.Lock()
	defer lock.Unlock()

	version, err := s.store.GetVersion(ctx, scopeKey)
	if err != nil && !errors.Is(err, repository.ErrVersionNotFound) {
		return nil, fmt.Errorf("failed to read cache version: %w", err)
	}

	if version != nil && !force {
		if version.Status == model.CacheStatusReady {
			return version, nil
		}
		// SYNCING: another instance may still be streaming; only take over
		// once the record has gone quiet past the stale threshold.
		if time.Since(version.UpdatedAt) < s.staleAfter {
			return version, nil
		}
		log.Printf("Catalog sync: taking over stale SYNCING version for scope %s", scopeKey)
	}

	return s.synchronize(ctx, scope, scopeKey, version, stream)
}

// synchronize runs one full refresh under the caller-held scope lock
func (s *CatalogSyncService) synchronize(ctx context.Context, scope SyncScope, scopeKey string, version *model.TableCacheVersion, stream TableStreamer) (*model.TableCacheVersion, error) {
	start := time.Now()

	if version == nil {
		version = &model.TableCacheVersion{
			ScopeKey:     scopeKey,
			DataSourceID: scope.DataSourceID,
			DatabaseName: scope.DatabaseName,
			SchemaName:   scope.SchemaName,
			Version:      0,
			ReadyVersion: -1,
			Status:       model.CacheStatusSyncing,
		}
		if err := s.store.CreateVersion(ctx, version); err != nil {
			return nil, fmt.Errorf("failed to create cache version: %w", err)
		}
	} else {
		version.Version++
		version.Status = model.CacheStatusSyncing
		if err := s.store.UpdateVersion(ctx, version); err != nil {
			return nil, fmt.Errorf("failed to stage cache version: %w", err)
		}
	}

	count, err := s.streamIntoCache(ctx, scope, scopeKey, version.Version, stream)
	if err != nil {
		// Version stays SYNCING; older generations remain readable and the
		// stale watchdog will allow a retry.
		s.recordOutcome(scope, scopeKey, false, time.Since(start), count, err)
		return nil, fmt.Errorf("catalog sync failed for scope %s: %w", scopeKey, err)
	}

	// ReadyVersion advances only here. Until this write lands, readers keep
	// paging at the previous finalized generation no matter how many staged
	// attempts failed in between.
	version.Status = model.CacheStatusReady
	version.ReadyVersion = version.Version
	version.TableCount = count
	if err := s.store.UpdateVersion(ctx, version); err != nil {
		s.recordOutcome(scope, scopeKey, false, time.Since(start), count, err)
		return nil, fmt.Errorf("failed to finalize cache version: %w", err)
	}

	// Eviction after finalize. A failure here leaves stale rows behind but
	// never a wrong read, so it does not fail the sync.
	if err := s.store.DeleteTablesBefore(ctx, scope.filter(), version.Version); err != nil {
		log.Printf("Catalog sync: failed to evict stale rows for scope %s: %v", scopeKey, err)
	}

	s.recordOutcome(scope, scopeKey, true, time.Since(start), count, nil)
	log.Printf("Catalog sync: scope %s at version %d with %d tables", scopeKey, version.Version, count)
	return version, nil
}

// recordOutcome feeds both the Prometheus counters and the stats collector
func (s *CatalogSyncService) recordOutcome(scope SyncScope, scopeKey string, success bool, duration time.Duration, count int64, err error) {
	status := "success"
	if !success {
		status = "failure"
	}
	middleware.RecordSyncMetrics(scope.DataSourceID, status, duration, count)

	if s.stats == nil {
		return
	}
	outcome := &SyncOutcome{
		ScopeKey:     scopeKey,
		DataSourceID: scope.DataSourceID,
		Success:      success,
		Duration:     duration,
		TablesCached: count,
		Timestamp:    time.Now(),
	}
	if err != nil {
		outcome.Error = err.Error()
	}
	s.stats.RecordSync(outcome)
}

// streamIntoCache consumes the table stream, bulk inserting a batch whenever
// batchSize rows accumulate, and returns the total row count.
func (s *CatalogSyncService) streamIntoCache(ctx context.Context, scope SyncScope, scopeKey string, cacheVersion int64, stream TableStreamer) (int64, error) {
	batch := make([]model.TableCache, 0, s.batchSize)
	var count int64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.store.BatchInsertTables(ctx, batch); err != nil {
			return fmt.Errorf("failed to insert table batch: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	err := stream(ctx, func(row metadata.TableRow) error {
		databaseName := scope.DatabaseName
		if databaseName == "" {
			databaseName = row.DatabaseName
		}
		schemaName := scope.SchemaName
		if schemaName == "" {
			schemaName = row.SchemaName
		}

		batch = append(batch, model.TableCache{
			ScopeKey:     scopeKey,
			DataSourceID: scope.DataSourceID,
			DatabaseName: databaseName,
			SchemaName:   schemaName,
			TableName_:   row.TableName,
			ExtendInfo:   row.Remarks,
			Version:      cacheVersion,
		})
		count++

		if len(batch) >= s.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return count, err
	}

	if err := flush(); err != nil {
		return count, err
	}
	return count, nil
}

// lockFor returns the mutex serializing syncs of one scope. Locks are kept
// for the process lifetime; the map is bounded by the number of scopes.
func (s *CatalogSyncService) lockFor(scopeKey string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[scopeKey]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[scopeKey] = lock
	}
	return lock
}
