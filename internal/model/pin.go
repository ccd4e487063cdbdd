package model

import "time"

// PinnedTable marks a table as pinned within a scope so paginated listings
// can float it to the top of the page.
type PinnedTable struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	DataSourceID string    `gorm:"type:char(36);not null;uniqueIndex:idx_pin_scope_table" json:"dataSourceId"`
	DatabaseName string    `gorm:"size:255;uniqueIndex:idx_pin_scope_table" json:"databaseName,omitempty"`
	SchemaName   string    `gorm:"size:255;uniqueIndex:idx_pin_scope_table" json:"schemaName,omitempty"`
	TableName_   string    `gorm:"column:table_name;size:255;not null;uniqueIndex:idx_pin_scope_table" json:"tableName"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the table name for the PinnedTable model
func (PinnedTable) TableName() string {
	return "pinned_tables"
}
