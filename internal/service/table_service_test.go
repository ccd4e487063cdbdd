package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"catalog-gateway/internal/metadata"
	"catalog-gateway/internal/model"
	"catalog-gateway/internal/repository"
)

const testDataSourceID = "123e4567-e89b-12d3-a456-426614174000"

// fakeDataSourceRepo returns one registered MySQL data source
type fakeDataSourceRepo struct {
	dataSource *model.DataSource
}

func (f *fakeDataSourceRepo) Create(ctx context.Context, ds *model.DataSource) error { return nil }
func (f *fakeDataSourceRepo) GetByID(ctx context.Context, id string) (*model.DataSource, error) {
	if f.dataSource == nil || f.dataSource.ID != id {
		return nil, repository.ErrDataSourceNotFound
	}
	return f.dataSource, nil
}
func (f *fakeDataSourceRepo) GetByName(ctx context.Context, name string) (*model.DataSource, error) {
	return nil, repository.ErrDataSourceNotFound
}
func (f *fakeDataSourceRepo) GetAll(ctx context.Context, status model.DataSourceStatus, limit, offset int) ([]*model.DataSource, int64, error) {
	return nil, 0, nil
}
func (f *fakeDataSourceRepo) Update(ctx context.Context, ds *model.DataSource) error { return nil }
func (f *fakeDataSourceRepo) Delete(ctx context.Context, id string) error            { return nil }
func (f *fakeDataSourceRepo) Activate(ctx context.Context, id string) error          { return nil }
func (f *fakeDataSourceRepo) Deactivate(ctx context.Context, id string) error        { return nil }
func (f *fakeDataSourceRepo) SetError(ctx context.Context, id string) error          { return nil }
func (f *fakeDataSourceRepo) CountByStatus(ctx context.Context) (map[model.DataSourceStatus]int64, error) {
	return nil, nil
}

// fakePinRepo stores pinned names in memory
type fakePinRepo struct {
	pinned []string
}

func (f *fakePinRepo) Pin(ctx context.Context, pin *model.PinnedTable) error {
	for _, name := range f.pinned {
		if name == pin.TableName_ {
			return nil
		}
	}
	f.pinned = append(f.pinned, pin.TableName_)
	return nil
}
func (f *fakePinRepo) Unpin(ctx context.Context, filter repository.TableCacheFilter, tableName string) error {
	kept := f.pinned[:0]
	for _, name := range f.pinned {
		if name != tableName {
			kept = append(kept, name)
		}
	}
	f.pinned = kept
	return nil
}
func (f *fakePinRepo) ListPinned(ctx context.Context, filter repository.TableCacheFilter) ([]string, error) {
	return f.pinned, nil
}

// fakePool hands out a nil connection; the fake driver never touches it
type fakePool struct{}

func (f *fakePool) GetConnection(ctx context.Context, ds *model.DataSource) (*sql.DB, error) {
	return nil, nil
}

// fakeMetaData serves a fixed table list and canned detail
type fakeMetaData struct {
	tables      []string
	columns     []model.TableColumn
	columnCalls int
}

func (f *fakeMetaData) StreamTables(ctx context.Context, db *sql.DB, databaseName, schemaName, pattern string, fn func(metadata.TableRow) error) error {
	for _, name := range f.tables {
		if err := fn(metadata.TableRow{DatabaseName: databaseName, TableName: name}); err != nil {
			return err
		}
	}
	return nil
}
func (f *fakeMetaData) Tables(ctx context.Context, db *sql.DB, databaseName, schemaName, tableName string) ([]model.Table, error) {
	for _, name := range f.tables {
		if name == tableName {
			return []model.Table{{Name: name, DatabaseName: databaseName}}, nil
		}
	}
	return nil, nil
}
func (f *fakeMetaData) Columns(ctx context.Context, db *sql.DB, databaseName, schemaName, tableName string) ([]model.TableColumn, error) {
	f.columnCalls++
	return f.columns, nil
}
func (f *fakeMetaData) Indexes(ctx context.Context, db *sql.DB, databaseName, schemaName, tableName string) ([]model.TableIndex, error) {
	return nil, nil
}
func (f *fakeMetaData) Types(ctx context.Context, db *sql.DB) ([]model.Type, error) {
	return []model.Type{{Name: "int"}, {Name: "varchar"}}, nil
}
func (f *fakeMetaData) TableDDL(ctx context.Context, db *sql.DB, databaseName, schemaName, tableName string) (string, error) {
	return "CREATE TABLE `" + tableName + "` (`id` bigint);", nil
}
func (f *fakeMetaData) DropTable(ctx context.Context, db *sql.DB, databaseName, schemaName, tableName string) error {
	return nil
}
func (f *fakeMetaData) TableMeta() model.TableMeta {
	return model.TableMeta{SupportsComments: true, SupportsIndexes: true}
}

func newTestTableService(t *testing.T, tableCount int) (TableService, *fakeMetaData, *fakePinRepo) {
	t.Helper()

	names := make([]string, tableCount)
	for i := range names {
		names[i] = fmt.Sprintf("table_%04d", i)
	}
	meta := &fakeMetaData{
		tables:  names,
		columns: []model.TableColumn{{Name: "id", Type: "bigint"}},
	}

	dsRepo := &fakeDataSourceRepo{dataSource: &model.DataSource{
		ID:   testDataSourceID,
		Name: "primary",
		Type: model.DatabaseTypeMySQL,
	}}
	pins := &fakePinRepo{}
	store := newFakeCatalogStore()
	syncService := NewCatalogSyncService(store, 500, time.Minute)
	columnCache := metadata.NewColumnCache(time.Minute)

	svc := NewTableService(dsRepo, store, pins, syncService, &fakePool{}, columnCache,
		func(model.DatabaseType) metadata.MetaData { return meta })
	return svc, meta, pins
}

func TestPageQueryTotalStableAcrossPages(t *testing.T) {
	svc, _, _ := newTestTableService(t, 95)
	ctx := context.Background()

	seen := 0
	for pageNo := 1; pageNo <= 10; pageNo++ {
		result, err := svc.PageQuery(ctx, &model.TablePageQueryParam{
			DataSourceID: testDataSourceID,
			DatabaseName: "app",
			PageNo:       pageNo,
			PageSize:     10,
		})
		if err != nil {
			t.Fatalf("page %d failed: %v", pageNo, err)
		}
		if result.Total != 95 {
			t.Errorf("page %d: total = %d, want 95", pageNo, result.Total)
		}
		want := 10
		if pageNo == 10 {
			want = 5
		}
		if len(result.Tables) != want {
			t.Errorf("page %d: got %d tables, want %d", pageNo, len(result.Tables), want)
		}
		seen += len(result.Tables)
	}
	if seen != 95 {
		t.Errorf("paged through %d tables, want 95", seen)
	}
}

func TestPageQuerySearchKeepsAuthoritativeTotal(t *testing.T) {
	svc, _, _ := newTestTableService(t, 95)

	result, err := svc.PageQuery(context.Background(), &model.TablePageQueryParam{
		DataSourceID: testDataSourceID,
		DatabaseName: "app",
		SearchKey:    "table_000",
		PageNo:       1,
		PageSize:     20,
	})
	if err != nil {
		t.Fatalf("PageQuery failed: %v", err)
	}

	// table_0000 .. table_0009 match
	if len(result.Tables) != 10 {
		t.Errorf("got %d matches, want 10", len(result.Tables))
	}
	// Total stays the scope's full table count, not the filtered count
	if result.Total != 95 {
		t.Errorf("total = %d, want the unfiltered 95", result.Total)
	}
}

func TestPageQueryFloatsPinnedTables(t *testing.T) {
	svc, _, _ := newTestTableService(t, 30)
	ctx := context.Background()

	err := svc.PinTable(ctx, &model.TableQueryParam{
		DataSourceID: testDataSourceID,
		DatabaseName: "app",
		TableName:    "table_0005",
	})
	if err != nil {
		t.Fatalf("PinTable failed: %v", err)
	}

	result, err := svc.PageQuery(ctx, &model.TablePageQueryParam{
		DataSourceID: testDataSourceID,
		DatabaseName: "app",
		PageNo:       1,
		PageSize:     10,
	})
	if err != nil {
		t.Fatalf("PageQuery failed: %v", err)
	}

	if result.Tables[0].Name != "table_0005" || !result.Tables[0].Pinned {
		t.Errorf("expected pinned table_0005 at the head, got %s (pinned=%v)",
			result.Tables[0].Name, result.Tables[0].Pinned)
	}
	if len(result.Tables) != 10 {
		t.Errorf("pinning changed the page size: %d", len(result.Tables))
	}
}

func TestPageQueryForcedRefreshReloads(t *testing.T) {
	svc, meta, _ := newTestTableService(t, 5)
	ctx := context.Background()
	param := &model.TablePageQueryParam{DataSourceID: testDataSourceID, DatabaseName: "app", PageNo: 1, PageSize: 10}

	if _, err := svc.PageQuery(ctx, param); err != nil {
		t.Fatalf("initial PageQuery failed: %v", err)
	}

	// The remote gained a table; a plain query keeps serving the cache
	meta.tables = append(meta.tables, "table_9999")
	result, err := svc.PageQuery(ctx, param)
	if err != nil {
		t.Fatalf("cached PageQuery failed: %v", err)
	}
	if result.Total != 5 {
		t.Errorf("expected cached total 5, got %d", result.Total)
	}

	param.Refresh = true
	result, err = svc.PageQuery(ctx, param)
	if err != nil {
		t.Fatalf("refreshed PageQuery failed: %v", err)
	}
	if result.Total != 6 {
		t.Errorf("expected refreshed total 6, got %d", result.Total)
	}
}

func TestQueryReturnsNilForMissingTable(t *testing.T) {
	svc, _, _ := newTestTableService(t, 5)

	table, err := svc.Query(context.Background(), &model.TableQueryParam{
		DataSourceID: testDataSourceID,
		DatabaseName: "app",
		TableName:    "nope",
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if table != nil {
		t.Errorf("expected nil for a missing table, got %+v", table)
	}
}

func TestQueryColumnsMemoized(t *testing.T) {
	svc, meta, _ := newTestTableService(t, 5)
	ctx := context.Background()
	param := &model.TableQueryParam{DataSourceID: testDataSourceID, DatabaseName: "app", TableName: "table_0001"}

	for i := 0; i < 3; i++ {
		if _, err := svc.QueryColumns(ctx, param); err != nil {
			t.Fatalf("QueryColumns failed: %v", err)
		}
	}
	if meta.columnCalls != 1 {
		t.Errorf("expected one introspection call, got %d", meta.columnCalls)
	}

	param.Refresh = true
	if _, err := svc.QueryColumns(ctx, param); err != nil {
		t.Fatalf("refreshed QueryColumns failed: %v", err)
	}
	if meta.columnCalls != 2 {
		t.Errorf("expected refresh to bypass the memo, got %d calls", meta.columnCalls)
	}
}

func TestBuildSqlCreateMode(t *testing.T) {
	svc, _, _ := newTestTableService(t, 0)

	sqls, err := svc.BuildSql(context.Background(), testDataSourceID, nil, &model.Table{
		Name: "user",
		Columns: []model.TableColumn{
			{Name: "id", Type: "bigint", AutoIncrement: true},
			{Name: "name", Type: "varchar(64)", Nullable: true},
		},
	})
	if err != nil {
		t.Fatalf("BuildSql failed: %v", err)
	}
	if len(sqls) != 1 {
		t.Fatalf("expected exactly one statement, got %d", len(sqls))
	}
	if !strings.HasPrefix(sqls[0].Sql, "CREATE TABLE") {
		t.Errorf("expected a CREATE statement, got: %s", sqls[0].Sql)
	}
	if strings.Contains(sqls[0].Sql, "ALTER TABLE") {
		t.Errorf("create mode must not emit ALTER clauses: %s", sqls[0].Sql)
	}
}

func TestBuildSqlModifyMode(t *testing.T) {
	svc, _, _ := newTestTableService(t, 0)

	oldTable := &model.Table{
		Name: "user",
		Columns: []model.TableColumn{
			{Name: "id", Type: "bigint"},
			{Name: "name", Type: "varchar(64)"},
		},
	}
	newTable := &model.Table{
		Name: "user",
		Columns: []model.TableColumn{
			{Name: "id", Type: "bigint"},
			{Name: "name", Type: "varchar(128)"},
			{Name: "email", Type: "varchar(128)", Nullable: true},
		},
	}

	sqls, err := svc.BuildSql(context.Background(), testDataSourceID, oldTable, newTable)
	if err != nil {
		t.Fatalf("BuildSql failed: %v", err)
	}
	if len(sqls) != 1 {
		t.Fatalf("expected exactly one statement, got %d", len(sqls))
	}

	stmt := sqls[0].Sql
	if !strings.HasPrefix(stmt, "ALTER TABLE") {
		t.Errorf("expected an ALTER statement, got: %s", stmt)
	}
	if !strings.Contains(stmt, "MODIFY COLUMN `name` varchar(128)") {
		t.Errorf("expected name modified in place: %s", stmt)
	}
	if !strings.Contains(stmt, "ADD COLUMN `email`") {
		t.Errorf("expected email added: %s", stmt)
	}
	if strings.Contains(stmt, "`id`") {
		t.Errorf("unchanged column must not appear in the ALTER: %s", stmt)
	}
}

func TestBuildSqlInvalidDataSourceID(t *testing.T) {
	svc, _, _ := newTestTableService(t, 0)

	_, err := svc.BuildSql(context.Background(), "not-a-uuid", nil, &model.Table{Name: "t"})
	if err != repository.ErrInvalidUUID {
		t.Errorf("expected ErrInvalidUUID, got %v", err)
	}
}

func TestExamplesPerDialect(t *testing.T) {
	svc, _, _ := newTestTableService(t, 0)

	create, err := svc.CreateTableExample(model.DatabaseTypePostgreSQL)
	if err != nil || !strings.Contains(create, "CREATE TABLE") {
		t.Errorf("unexpected postgres create example: %q, %v", create, err)
	}
	alter, err := svc.AlterTableExample(model.DatabaseTypeMySQL)
	if err != nil || !strings.Contains(alter, "ALTER TABLE") {
		t.Errorf("unexpected mysql alter example: %q, %v", alter, err)
	}
	// Protocol compatible types share the family's sample
	tidb, err := svc.CreateTableExample(model.DatabaseTypeTiDB)
	if err != nil || !strings.Contains(tidb, "`user`") {
		t.Errorf("expected tidb to get the mysql sample: %q, %v", tidb, err)
	}
}
