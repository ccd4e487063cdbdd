package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"catalog-gateway/internal/metadata"
	"catalog-gateway/internal/model"
	"catalog-gateway/internal/repository"
	"catalog-gateway/internal/sqlbuilder"
)

// DefaultPageSize applies when a page query does not set one
const DefaultPageSize = 20

// MaxPageSize caps a single page read
const MaxPageSize = 1000

// ConnectionProvider supplies live connections for registered data sources
type ConnectionProvider interface {
	GetConnection(ctx context.Context, dataSource *model.DataSource) (*sql.DB, error)
}

// MetaDataFactory resolves the introspection driver for a database type
type MetaDataFactory func(dbType model.DatabaseType) metadata.MetaData

// TableService exposes table catalog operations: cached paginated listing,
// live single-table detail, DDL generation, and dialect capability queries.
type TableService interface {
	PageQuery(ctx context.Context, param *model.TablePageQueryParam) (*model.TablePageResult, error)
	Query(ctx context.Context, param *model.TableQueryParam) (*model.Table, error)
	ShowCreateTable(ctx context.Context, param *model.TableQueryParam) (string, error)
	Drop(ctx context.Context, param *model.TableQueryParam) error
	QueryColumns(ctx context.Context, param *model.TableQueryParam) ([]model.TableColumn, error)
	QueryIndexes(ctx context.Context, param *model.TableQueryParam) ([]model.TableIndex, error)
	QueryTypes(ctx context.Context, param *model.TypeQueryParam) ([]model.Type, error)
	QueryTableMeta(ctx context.Context, param *model.TypeQueryParam) (*model.TableMeta, error)
	BuildSql(ctx context.Context, dataSourceID string, oldTable, newTable *model.Table) ([]model.Sql, error)
	CreateTableExample(dbType model.DatabaseType) (string, error)
	AlterTableExample(dbType model.DatabaseType) (string, error)
	PinTable(ctx context.Context, param *model.TableQueryParam) error
	UnpinTable(ctx context.Context, param *model.TableQueryParam) error
}

type tableService struct {
	dataSources repository.DataSourceRepository
	cache       repository.CatalogCacheRepository
	pins        repository.PinRepository
	sync        *CatalogSyncService
	pool        ConnectionProvider
	columns     *metadata.ColumnCache
	meta        MetaDataFactory
}

// NewTableService creates a new instance of TableService. A nil meta factory
// falls back to the SQL introspector.
func NewTableService(
	dataSources repository.DataSourceRepository,
	cache repository.CatalogCacheRepository,
	pins repository.PinRepository,
	syncService *CatalogSyncService,
	pool ConnectionProvider,
	columns *metadata.ColumnCache,
	meta MetaDataFactory,
) TableService {
	if meta == nil {
		meta = func(dbType model.DatabaseType) metadata.MetaData {
			return metadata.ForDataSource(dbType)
		}
	}
	return &tableService{
		dataSources: dataSources,
		cache:       cache,
		pins:        pins,
		sync:        syncService,
		pool:        pool,
		columns:     columns,
		meta:        meta,
	}
}

// PageQuery returns one page of the scope's cached table catalog, refreshing
// the cache first when the scope is cold or a refresh was requested. Total is
// the scope's authoritative table count, not the size of a searched subset.
func (s *tableService) PageQuery(ctx context.Context, param *model.TablePageQueryParam) (*model.TablePageResult, error) {
	dataSource, err := s.resolveDataSource(ctx, param.DataSourceID)
	if err != nil {
		return nil, err
	}

	scope := SyncScope{
		DataSourceID: param.DataSourceID,
		DatabaseName: param.DatabaseName,
		SchemaName:   param.SchemaName,
	}

	version, err := s.sync.EnsureFresh(ctx, scope, param.Refresh, s.streamerFor(dataSource, param.DatabaseName, param.SchemaName))
	if err != nil {
		return nil, err
	}

	pageNo := param.PageNo
	if pageNo <= 0 {
		pageNo = 1
	}
	pageSize := param.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	result := &model.TablePageResult{
		Tables:   []model.Table{},
		Total:    version.TableCount,
		PageNo:   pageNo,
		PageSize: pageSize,
	}

	readVersion := version.ReadVersion()
	if readVersion < 0 {
		// First sync for the scope is still in flight elsewhere
		return result, nil
	}

	rows, err := s.cache.PageTables(ctx, scope.filter(), readVersion, param.SearchKey, (pageNo-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to page cached tables: %w", err)
	}

	tables := make([]model.Table, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, model.Table{
			Name:         row.TableName_,
			DatabaseName: row.DatabaseName,
			SchemaName:   row.SchemaName,
			Comment:      row.ExtendInfo,
		})
	}
	result.Tables = s.floatPinned(ctx, scope, tables)
	return result, nil
}

// floatPinned marks pinned tables and moves them to the head of the page,
// preserving relative order within each group.
func (s *tableService) floatPinned(ctx context.Context, scope SyncScope, tables []model.Table) []model.Table {
	pinnedNames, err := s.pins.ListPinned(ctx, scope.filter())
	if err != nil || len(pinnedNames) == 0 {
		return tables
	}

	pinned := make(map[string]bool, len(pinnedNames))
	for _, name := range pinnedNames {
		pinned[name] = true
	}

	head := make([]model.Table, 0, len(tables))
	tail := make([]model.Table, 0, len(tables))
	for _, table := range tables {
		if pinned[table.Name] {
			table.Pinned = true
			head = append(head, table)
		} else {
			tail = append(tail, table)
		}
	}
	return append(head, tail...)
}

// Query fetches full live detail for one table: base info, columns, and
// indexes. Returns nil without error when the table does not exist. The
// catalog cache is not consulted or modified.
func (s *tableService) Query(ctx context.Context, param *model.TableQueryParam) (*model.Table, error) {
	_, db, meta, err := s.connect(ctx, param.DataSourceID)
	if err != nil {
		return nil, err
	}

	tables, err := meta.Tables(ctx, db, param.DatabaseName, param.SchemaName, param.TableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query table: %w", err)
	}
	if len(tables) == 0 {
		return nil, nil
	}

	table := tables[0]
	if table.Columns, err = s.loadColumns(ctx, db, meta, param); err != nil {
		return nil, err
	}
	if table.Indexes, err = meta.Indexes(ctx, db, param.DatabaseName, param.SchemaName, param.TableName); err != nil {
		return nil, fmt.Errorf("failed to query indexes: %w", err)
	}
	return &table, nil
}

// ShowCreateTable returns the live CREATE TABLE statement for one table
func (s *tableService) ShowCreateTable(ctx context.Context, param *model.TableQueryParam) (string, error) {
	_, db, meta, err := s.connect(ctx, param.DataSourceID)
	if err != nil {
		return "", err
	}
	return meta.TableDDL(ctx, db, param.DatabaseName, param.SchemaName, param.TableName)
}

// Drop drops one table on the remote data source and invalidates its memoized
// column list.
func (s *tableService) Drop(ctx context.Context, param *model.TableQueryParam) error {
	_, db, meta, err := s.connect(ctx, param.DataSourceID)
	if err != nil {
		return err
	}
	if err := meta.DropTable(ctx, db, param.DatabaseName, param.SchemaName, param.TableName); err != nil {
		return err
	}
	s.columns.Invalidate(metadata.ColumnKey(param.DataSourceID, param.DatabaseName, param.SchemaName, param.TableName))
	return nil
}

// QueryColumns returns a table's column list, memoized per table key.
// Refresh bypasses and replaces a still-valid entry.
func (s *tableService) QueryColumns(ctx context.Context, param *model.TableQueryParam) ([]model.TableColumn, error) {
	_, db, meta, err := s.connect(ctx, param.DataSourceID)
	if err != nil {
		return nil, err
	}

	key := metadata.ColumnKey(param.DataSourceID, param.DatabaseName, param.SchemaName, param.TableName)
	return s.columns.GetOrLoad(ctx, key, param.Refresh, func(ctx context.Context) ([]model.TableColumn, error) {
		return meta.Columns(ctx, db, param.DatabaseName, param.SchemaName, param.TableName)
	})
}

// loadColumns is QueryColumns against an already-open connection
func (s *tableService) loadColumns(ctx context.Context, db *sql.DB, meta metadata.MetaData, param *model.TableQueryParam) ([]model.TableColumn, error) {
	key := metadata.ColumnKey(param.DataSourceID, param.DatabaseName, param.SchemaName, param.TableName)
	return s.columns.GetOrLoad(ctx, key, param.Refresh, func(ctx context.Context) ([]model.TableColumn, error) {
		return meta.Columns(ctx, db, param.DatabaseName, param.SchemaName, param.TableName)
	})
}

// QueryIndexes returns a table's live index definitions
func (s *tableService) QueryIndexes(ctx context.Context, param *model.TableQueryParam) ([]model.TableIndex, error) {
	_, db, meta, err := s.connect(ctx, param.DataSourceID)
	if err != nil {
		return nil, err
	}
	return meta.Indexes(ctx, db, param.DatabaseName, param.SchemaName, param.TableName)
}

// QueryTypes returns the column data types the data source's dialect supports
func (s *tableService) QueryTypes(ctx context.Context, param *model.TypeQueryParam) ([]model.Type, error) {
	_, db, meta, err := s.connect(ctx, param.DataSourceID)
	if err != nil {
		return nil, err
	}
	return meta.Types(ctx, db)
}

// QueryTableMeta returns dialect level table capabilities
func (s *tableService) QueryTableMeta(ctx context.Context, param *model.TypeQueryParam) (*model.TableMeta, error) {
	dataSource, err := s.resolveDataSource(ctx, param.DataSourceID)
	if err != nil {
		return nil, err
	}
	meta := s.meta(dataSource.Type).TableMeta()
	return &meta, nil
}

// BuildSql generates DDL from a pair of table definitions: exactly one CREATE
// statement when oldTable is nil, otherwise exactly one ALTER statement after
// linking each new column to its prior state by name.
func (s *tableService) BuildSql(ctx context.Context, dataSourceID string, oldTable, newTable *model.Table) ([]model.Sql, error) {
	if newTable == nil {
		return nil, fmt.Errorf("new table definition is required")
	}

	dataSource, err := s.resolveDataSource(ctx, dataSourceID)
	if err != nil {
		return nil, err
	}

	builder, err := sqlbuilder.ForDatabaseType(dataSource.Type)
	if err != nil {
		return nil, err
	}

	if oldTable == nil {
		return []model.Sql{{Sql: builder.BuildCreateTable(newTable)}}, nil
	}

	LinkColumns(oldTable, newTable)
	return []model.Sql{{Sql: builder.BuildModifyTable(oldTable, newTable)}}, nil
}

// PinTable pins a table so paginated listings float it to the top
func (s *tableService) PinTable(ctx context.Context, param *model.TableQueryParam) error {
	if _, err := s.resolveDataSource(ctx, param.DataSourceID); err != nil {
		return err
	}
	return s.pins.Pin(ctx, &model.PinnedTable{
		DataSourceID: param.DataSourceID,
		DatabaseName: param.DatabaseName,
		SchemaName:   param.SchemaName,
		TableName_:   param.TableName,
	})
}

// UnpinTable removes a table's pin
func (s *tableService) UnpinTable(ctx context.Context, param *model.TableQueryParam) error {
	filter := repository.TableCacheFilter{
		DataSourceID: param.DataSourceID,
		DatabaseName: param.DatabaseName,
		SchemaName:   param.SchemaName,
	}
	return s.pins.Unpin(ctx, filter, param.TableName)
}

// resolveDataSource validates the ID and loads the data source record
func (s *tableService) resolveDataSource(ctx context.Context, dataSourceID string) (*model.DataSource, error) {
	if _, err := uuid.Parse(dataSourceID); err != nil {
		return nil, repository.ErrInvalidUUID
	}
	dataSource, err := s.dataSources.GetByID(ctx, dataSourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get data source: %w", err)
	}
	return dataSource, nil
}

// connect resolves the data source and opens its pooled connection plus the
// matching introspection driver.
func (s *tableService) connect(ctx context.Context, dataSourceID string) (*model.DataSource, *sql.DB, metadata.MetaData, error) {
	dataSource, err := s.resolveDataSource(ctx, dataSourceID)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := s.pool.GetConnection(ctx, dataSource)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to data source: %w", err)
	}
	return dataSource, db, s.meta(dataSource.Type), nil
}

// streamerFor builds the table streamer the sync engine pulls from
func (s *tableService) streamerFor(dataSource *model.DataSource, databaseName, schemaName string) TableStreamer {
	return func(ctx context.Context, fn func(metadata.TableRow) error) error {
		db, err := s.pool.GetConnection(ctx, dataSource)
		if err != nil {
			return fmt.Errorf("failed to connect to data source: %w", err)
		}
		return s.meta(dataSource.Type).StreamTables(ctx, db, databaseName, schemaName, "", fn)
	}
}
