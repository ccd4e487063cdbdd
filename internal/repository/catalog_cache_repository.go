package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"catalog-gateway/internal/model"
)

type catalogCacheRepository struct {
	db *gorm.DB
}

// NewCatalogCacheRepository creates a new instance of CatalogCacheRepository
func NewCatalogCacheRepository(db *gorm.DB) CatalogCacheRepository {
	return &catalogCacheRepository{db: db}
}

// GetVersion returns the version record for a scope key
func (r *catalogCacheRepository) GetVersion(ctx context.Context, scopeKey string) (*model.TableCacheVersion, error) {
	var version model.TableCacheVersion
	result := r.db.WithContext(ctx).Where("scope_key = ?", scopeKey).First(&version)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, result.Error
	}
	return &version, nil
}

// CreateVersion inserts the first version record for a scope
func (r *catalogCacheRepository) CreateVersion(ctx context.Context, version *model.TableCacheVersion) error {
	return r.db.WithContext(ctx).Create(version).Error
}

// UpdateVersion persists version changes by primary key
func (r *catalogCacheRepository) UpdateVersion(ctx context.Context, version *model.TableCacheVersion) error {
	return r.db.WithContext(ctx).Save(version).Error
}

// BatchInsertTables bulk inserts one batch of cached table rows
func (r *catalogCacheRepository) BatchInsertTables(ctx context.Context, rows []model.TableCache) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// PageTables reads one page of cached rows at the given version
func (r *catalogCacheRepository) PageTables(ctx context.Context, filter TableCacheFilter, version int64, nameSearch string, offset, limit int) ([]model.TableCache, error) {
	var rows []model.TableCache

	query := r.scoped(ctx, filter).Where("version = ?", version)
	if nameSearch != "" {
		query = query.Where("table_name LIKE ?", "%"+escapeLike(nameSearch)+"%")
	}

	result := query.Order("table_name ASC").Offset(offset).Limit(limit).Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return rows, nil
}

// DeleteTablesBefore removes all cached rows for the scope older than version
func (r *catalogCacheRepository) DeleteTablesBefore(ctx context.Context, filter TableCacheFilter, version int64) error {
	return r.scoped(ctx, filter).Where("version < ?", version).Delete(&model.TableCache{}).Error
}

// scoped applies the scope equality filters shared by reads and deletes
func (r *catalogCacheRepository) scoped(ctx context.Context, filter TableCacheFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.TableCache{}).Where("data_source_id = ?", filter.DataSourceID)
	if filter.DatabaseName != "" {
		query = query.Where("database_name = ?", filter.DatabaseName)
	}
	if filter.SchemaName != "" {
		query = query.Where("schema_name = ?", filter.SchemaName)
	}
	return query
}

// escapeLike escapes LIKE metacharacters so a search key matches literally
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
