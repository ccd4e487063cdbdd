package repository

import (
	"context"

	"catalog-gateway/internal/model"
)

// DataSourceRepository defines the interface for data source registry operations
type DataSourceRepository interface {
	// Create a new data source
	Create(ctx context.Context, dataSource *model.DataSource) error

	// GetByID retrieves a data source by its UUID
	GetByID(ctx context.Context, id string) (*model.DataSource, error)

	// GetByName retrieves a data source by its name
	GetByName(ctx context.Context, name string) (*model.DataSource, error)

	// GetAll retrieves all data sources with optional filtering
	GetAll(ctx context.Context, status model.DataSourceStatus, limit, offset int) ([]*model.DataSource, int64, error)

	// Update updates an existing data source
	Update(ctx context.Context, dataSource *model.DataSource) error

	// Delete removes a data source
	Delete(ctx context.Context, id string) error

	// Activate sets a data source status to active
	Activate(ctx context.Context, id string) error

	// Deactivate sets a data source status to inactive
	Deactivate(ctx context.Context, id string) error

	// SetError sets a data source status to error
	SetError(ctx context.Context, id string) error

	// CountByStatus returns the count of data sources by status
	CountByStatus(ctx context.Context) (map[model.DataSourceStatus]int64, error)
}

// TableCacheFilter narrows cached table reads and deletes to one scope.
// DatabaseName and SchemaName are equality filters applied only when set.
type TableCacheFilter struct {
	DataSourceID string
	DatabaseName string
	SchemaName   string
}

// CatalogCacheRepository persists the versioned table catalog cache.
type CatalogCacheRepository interface {
	// GetVersion returns the version record for a scope key, or
	// ErrVersionNotFound when the scope has never been synchronized.
	GetVersion(ctx context.Context, scopeKey string) (*model.TableCacheVersion, error)

	// CreateVersion inserts the first version record for a scope
	CreateVersion(ctx context.Context, version *model.TableCacheVersion) error

	// UpdateVersion persists version/status/tableCount changes by primary key
	UpdateVersion(ctx context.Context, version *model.TableCacheVersion) error

	// BatchInsertTables bulk inserts one batch of cached table rows
	BatchInsertTables(ctx context.Context, rows []model.TableCache) error

	// PageTables reads one page of cached rows at the given version, with an
	// optional case-sensitive substring match on the table name.
	PageTables(ctx context.Context, filter TableCacheFilter, version int64, nameSearch string, offset, limit int) ([]model.TableCache, error)

	// DeleteTablesBefore removes all cached rows for the scope whose version
	// is strictly less than the given version.
	DeleteTablesBefore(ctx context.Context, filter TableCacheFilter, version int64) error
}

// PinRepository persists pinned table names per scope
type PinRepository interface {
	// Pin marks a table as pinned; already pinned is not an error
	Pin(ctx context.Context, pin *model.PinnedTable) error

	// Unpin removes a pinned table mark
	Unpin(ctx context.Context, filter TableCacheFilter, tableName string) error

	// ListPinned returns the pinned table names for a scope in pin order
	ListPinned(ctx context.Context, filter TableCacheFilter) ([]string, error)
}
