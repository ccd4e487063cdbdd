package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"catalog-gateway/internal/model"
)

type pinRepository struct {
	db *gorm.DB
}

// NewPinRepository creates a new instance of PinRepository
func NewPinRepository(db *gorm.DB) PinRepository {
	return &pinRepository{db: db}
}

// Pin marks a table as pinned; re-pinning an existing table is a no-op
func (r *pinRepository) Pin(ctx context.Context, pin *model.PinnedTable) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(pin).Error
}

// Unpin removes a pinned table mark
func (r *pinRepository) Unpin(ctx context.Context, filter TableCacheFilter, tableName string) error {
	return r.scoped(ctx, filter).Where("table_name = ?", tableName).Delete(&model.PinnedTable{}).Error
}

// ListPinned returns the pinned table names for a scope in pin order
func (r *pinRepository) ListPinned(ctx context.Context, filter TableCacheFilter) ([]string, error) {
	var names []string
	result := r.scoped(ctx, filter).Order("created_at ASC").Pluck("table_name", &names)
	if result.Error != nil {
		return nil, result.Error
	}
	return names, nil
}

func (r *pinRepository) scoped(ctx context.Context, filter TableCacheFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.PinnedTable{}).Where("data_source_id = ?", filter.DataSourceID)
	if filter.DatabaseName != "" {
		query = query.Where("database_name = ?", filter.DatabaseName)
	}
	if filter.SchemaName != "" {
		query = query.Where("schema_name = ?", filter.SchemaName)
	}
	return query
}
