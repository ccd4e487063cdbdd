package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"catalog-gateway/internal/metadata"
	"catalog-gateway/internal/model"
	"catalog-gateway/internal/repository"
)

// fakeCatalogStore is an in-memory CatalogCacheRepository that records the
// size of every bulk insert.
type fakeCatalogStore struct {
	versions    map[string]*model.TableCacheVersion
	rows        []model.TableCache
	batchSizes  []int
	insertErrAt int // fail the Nth insert call (1-based), 0 disables
	nextID      uint64
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{versions: make(map[string]*model.TableCacheVersion)}
}

func (f *fakeCatalogStore) GetVersion(ctx context.Context, scopeKey string) (*model.TableCacheVersion, error) {
	v, ok := f.versions[scopeKey]
	if !ok {
		return nil, repository.ErrVersionNotFound
	}
	copy := *v
	return &copy, nil
}

func (f *fakeCatalogStore) CreateVersion(ctx context.Context, version *model.TableCacheVersion) error {
	f.nextID++
	version.ID = f.nextID
	version.UpdatedAt = time.Now()
	copy := *version
	f.versions[version.ScopeKey] = &copy
	return nil
}

func (f *fakeCatalogStore) UpdateVersion(ctx context.Context, version *model.TableCacheVersion) error {
	version.UpdatedAt = time.Now()
	copy := *version
	f.versions[version.ScopeKey] = &copy
	return nil
}

func (f *fakeCatalogStore) BatchInsertTables(ctx context.Context, rows []model.TableCache) error {
	f.batchSizes = append(f.batchSizes, len(rows))
	if f.insertErrAt > 0 && len(f.batchSizes) == f.insertErrAt {
		return errors.New("insert failed")
	}
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeCatalogStore) PageTables(ctx context.Context, filter repository.TableCacheFilter, version int64, nameSearch string, offset, limit int) ([]model.TableCache, error) {
	var matched []model.TableCache
	for _, row := range f.rows {
		if row.DataSourceID != filter.DataSourceID || row.Version != version {
			continue
		}
		if nameSearch != "" && !strings.Contains(row.TableName_, nameSearch) {
			continue
		}
		matched = append(matched, row)
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (f *fakeCatalogStore) DeleteTablesBefore(ctx context.Context, filter repository.TableCacheFilter, version int64) error {
	kept := f.rows[:0]
	for _, row := range f.rows {
		if row.DataSourceID == filter.DataSourceID && row.Version < version {
			continue
		}
		kept = append(kept, row)
	}
	f.rows = kept
	return nil
}

// streamerOf returns a streamer yielding n synthetic tables and counts calls
func streamerOf(n int, calls *int) TableStreamer {
	return func(ctx context.Context, fn func(metadata.TableRow) error) error {
		if calls != nil {
			*calls++
		}
		for i := 0; i < n; i++ {
			if err := fn(metadata.TableRow{TableName: fmt.Sprintf("table_%04d", i)}); err != nil {
				return err
			}
		}
		return nil
	}
}

func testScope() SyncScope {
	return SyncScope{DataSourceID: "ds-1", DatabaseName: "app"}
}

func TestEnsureFreshFirstSync(t *testing.T) {
	store := newFakeCatalogStore()
	svc := NewCatalogSyncService(store, 500, time.Minute)

	version, err := svc.EnsureFresh(context.Background(), testScope(), false, streamerOf(3, nil))
	if err != nil {
		t.Fatalf("EnsureFresh failed: %v", err)
	}

	if version.Version != 0 {
		t.Errorf("expected first version 0, got %d", version.Version)
	}
	if version.Status != model.CacheStatusReady {
		t.Errorf("expected READY, got %s", version.Status)
	}
	if version.TableCount != 3 {
		t.Errorf("expected tableCount 3, got %d", version.TableCount)
	}
	if len(store.rows) != 3 {
		t.Errorf("expected 3 cached rows, got %d", len(store.rows))
	}
}

func TestEnsureFreshReturnsExistingWithoutRemoteCall(t *testing.T) {
	store := newFakeCatalogStore()
	svc := NewCatalogSyncService(store, 500, time.Minute)
	ctx := context.Background()

	if _, err := svc.EnsureFresh(ctx, testScope(), false, streamerOf(3, nil)); err != nil {
		t.Fatalf("initial sync failed: %v", err)
	}

	calls := 0
	version, err := svc.EnsureFresh(ctx, testScope(), false, streamerOf(3, &calls))
	if err != nil {
		t.Fatalf("EnsureFresh failed: %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no remote enumeration, streamer called %d times", calls)
	}
	if version.Version != 0 {
		t.Errorf("expected version 0 unchanged, got %d", version.Version)
	}
}

func TestEnsureFreshForcedRefreshBumpsVersion(t *testing.T) {
	store := newFakeCatalogStore()
	svc := NewCatalogSyncService(store, 500, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		force := i > 0
		version, err := svc.EnsureFresh(ctx, testScope(), force, streamerOf(5, nil))
		if err != nil {
			t.Fatalf("sync %d failed: %v", i, err)
		}
		if version.Version != int64(i) {
			t.Errorf("sync %d: expected version %d, got %d", i, i, version.Version)
		}
	}

	// Only the latest generation's rows survive
	for _, row := range store.rows {
		if row.Version != 2 {
			t.Errorf("found stale row at version %d after eviction", row.Version)
		}
	}
	if len(store.rows) != 5 {
		t.Errorf("expected 5 rows at latest version, got %d", len(store.rows))
	}
}

func TestSyncBatchBoundaries(t *testing.T) {
	tests := []struct {
		tables  int
		batches []int
	}{
		{499, []int{499}},
		{500, []int{500}},
		{501, []int{500, 1}},
		{1499, []int{500, 500, 499}},
	}

	for _, tt := range tests {
		store := newFakeCatalogStore()
		svc := NewCatalogSyncService(store, 500, time.Minute)

		version, err := svc.EnsureFresh(context.Background(), testScope(), false, streamerOf(tt.tables, nil))
		if err != nil {
			t.Fatalf("%d tables: sync failed: %v", tt.tables, err)
		}
		if version.TableCount != int64(tt.tables) {
			t.Errorf("%d tables: tableCount = %d", tt.tables, version.TableCount)
		}
		if len(store.batchSizes) != len(tt.batches) {
			t.Fatalf("%d tables: expected %d insert calls, got %d", tt.tables, len(tt.batches), len(store.batchSizes))
		}
		for i, want := range tt.batches {
			if store.batchSizes[i] != want {
				t.Errorf("%d tables: batch %d size = %d, want %d", tt.tables, i, store.batchSizes[i], want)
			}
		}
	}
}

func TestSyncEmptyScopeFinalizes(t *testing.T) {
	store := newFakeCatalogStore()
	svc := NewCatalogSyncService(store, 500, time.Minute)
	ctx := context.Background()

	// Seed a generation, then resync against an empty remote
	if _, err := svc.EnsureFresh(ctx, testScope(), false, streamerOf(4, nil)); err != nil {
		t.Fatalf("seed sync failed: %v", err)
	}
	version, err := svc.EnsureFresh(ctx, testScope(), true, streamerOf(0, nil))
	if err != nil {
		t.Fatalf("empty sync failed: %v", err)
	}

	if version.Status != model.CacheStatusReady {
		t.Errorf("expected READY after empty stream, got %s", version.Status)
	}
	if version.TableCount != 0 {
		t.Errorf("expected tableCount 0, got %d", version.TableCount)
	}
	if len(store.rows) != 0 {
		t.Errorf("expected old rows evicted, %d remain", len(store.rows))
	}
}

func TestSyncFailureLeavesOldGenerationReadable(t *testing.T) {
	store := newFakeCatalogStore()
	svc := NewCatalogSyncService(store, 500, time.Minute)
	ctx := context.Background()

	if _, err := svc.EnsureFresh(ctx, testScope(), false, streamerOf(4, nil)); err != nil {
		t.Fatalf("seed sync failed: %v", err)
	}

	store.insertErrAt = len(store.batchSizes) + 1
	if _, err := svc.EnsureFresh(ctx, testScope(), true, streamerOf(600, nil)); err == nil {
		t.Fatal("expected sync failure")
	}

	stored := store.versions[testScope().ScopeKey()]
	if stored.Status != model.CacheStatusSyncing {
		t.Errorf("expected version left SYNCING, got %s", stored.Status)
	}
	if stored.ReadVersion() != 0 {
		t.Errorf("expected readers pointed at version 0, got %d", stored.ReadVersion())
	}

	// The previous generation's rows are untouched
	old := 0
	for _, row := range store.rows {
		if row.Version == 0 {
			old++
		}
	}
	if old != 4 {
		t.Errorf("expected 4 rows of the old generation, got %d", old)
	}
}

func TestReadDuringRefreshSeesPriorGeneration(t *testing.T) {
	store := newFakeCatalogStore()
	svc := NewCatalogSyncService(store, 500, time.Minute)
	ctx := context.Background()

	if _, err := svc.EnsureFresh(ctx, testScope(), false, streamerOf(5, nil)); err != nil {
		t.Fatalf("seed sync failed: %v", err)
	}

	// Another instance staged a refresh: version bumped, status back to
	// SYNCING, rows still streaming in.
	staged := store.versions[testScope().ScopeKey()]
	staged.Version++
	staged.Status = model.CacheStatusSyncing
	staged.UpdatedAt = time.Now()

	calls := 0
	version, err := svc.EnsureFresh(ctx, testScope(), false, streamerOf(5, &calls))
	if err != nil {
		t.Fatalf("EnsureFresh failed: %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no second enumeration while a refresh is in flight")
	}

	readVersion := version.ReadVersion()
	if readVersion != 0 {
		t.Fatalf("expected readers on finalized generation 0, got %d", readVersion)
	}
	rows, err := store.PageTables(ctx, testScope().filter(), readVersion, "", 0, 10)
	if err != nil {
		t.Fatalf("PageTables failed: %v", err)
	}
	if len(rows) != 5 {
		t.Errorf("expected all 5 prior-generation rows mid-refresh, got %d", len(rows))
	}
}

func TestRepeatedFailuresKeepReadersOnFinalizedGeneration(t *testing.T) {
	store := newFakeCatalogStore()
	svc := NewCatalogSyncService(store, 2, time.Minute)
	ctx := context.Background()

	if _, err := svc.EnsureFresh(ctx, testScope(), false, streamerOf(3, nil)); err != nil {
		t.Fatalf("seed sync failed: %v", err)
	}

	// A forced refresh dies after flushing one partial batch at the staged
	// version, leaving incomplete rows behind.
	store.insertErrAt = len(store.batchSizes) + 2
	if _, err := svc.EnsureFresh(ctx, testScope(), true, streamerOf(3, nil)); err == nil {
		t.Fatal("expected first refresh to fail")
	}

	// The abandoned attempt goes quiet past the stale threshold and the
	// takeover fails as well.
	store.versions[testScope().ScopeKey()].UpdatedAt = time.Now().Add(-time.Hour)
	store.insertErrAt = len(store.batchSizes) + 1
	if _, err := svc.EnsureFresh(ctx, testScope(), false, streamerOf(3, nil)); err == nil {
		t.Fatal("expected takeover to fail")
	}

	stored := store.versions[testScope().ScopeKey()]
	readVersion := stored.ReadVersion()
	if readVersion != 0 {
		t.Fatalf("expected readers on finalized generation 0, got %d", readVersion)
	}

	rows, err := store.PageTables(ctx, testScope().filter(), readVersion, "", 0, 10)
	if err != nil {
		t.Fatalf("PageTables failed: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("expected the 3 finalized rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Version != 0 {
			t.Errorf("reader got a row from unfinalized generation %d", row.Version)
		}
	}
}

func TestSyncInFlightNotTakenOverWhileFresh(t *testing.T) {
	store := newFakeCatalogStore()
	svc := NewCatalogSyncService(store, 500, time.Minute)
	ctx := context.Background()

	// Simulate another instance mid-sync
	store.versions["ds-1_app"] = &model.TableCacheVersion{
		ScopeKey:     "ds-1_app",
		DataSourceID: "ds-1",
		Version:      3,
		ReadyVersion: 2,
		Status:       model.CacheStatusSyncing,
		UpdatedAt:    time.Now(),
	}

	calls := 0
	version, err := svc.EnsureFresh(ctx, testScope(), false, streamerOf(2, &calls))
	if err != nil {
		t.Fatalf("EnsureFresh failed: %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no takeover of a fresh SYNCING version")
	}
	if version.Version != 3 || version.Status != model.CacheStatusSyncing {
		t.Errorf("expected in-flight version returned as-is, got v%d %s", version.Version, version.Status)
	}
}

func TestSyncStaleInFlightTakenOver(t *testing.T) {
	store := newFakeCatalogStore()
	svc := NewCatalogSyncService(store, 500, time.Minute)
	ctx := context.Background()

	store.versions["ds-1_app"] = &model.TableCacheVersion{
		ScopeKey:     "ds-1_app",
		DataSourceID: "ds-1",
		Version:      3,
		ReadyVersion: 2,
		Status:       model.CacheStatusSyncing,
		UpdatedAt:    time.Now().Add(-time.Hour),
	}

	version, err := svc.EnsureFresh(ctx, testScope(), false, streamerOf(2, nil))
	if err != nil {
		t.Fatalf("EnsureFresh failed: %v", err)
	}
	if version.Version != 4 {
		t.Errorf("expected takeover to bump to version 4, got %d", version.Version)
	}
	if version.Status != model.CacheStatusReady {
		t.Errorf("expected READY after takeover, got %s", version.Status)
	}
}

func TestSyncStatsRecorded(t *testing.T) {
	store := newFakeCatalogStore()
	svc := NewCatalogSyncService(store, 500, time.Minute)
	stats := NewSyncStatsCollector(time.Hour)
	svc.SetStatsCollector(stats)

	if _, err := svc.EnsureFresh(context.Background(), testScope(), false, streamerOf(7, nil)); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	scopeStats, err := stats.GetScopeStats(testScope().ScopeKey())
	if err != nil {
		t.Fatalf("expected stats for scope: %v", err)
	}
	if scopeStats.SuccessfulSyncs != 1 || scopeStats.TablesCached != 7 {
		t.Errorf("unexpected stats: %+v", scopeStats)
	}
}
