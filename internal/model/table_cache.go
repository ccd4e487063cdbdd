package model

import (
	"strings"
	"time"
)

// Catalog cache version states. A version stays SYNCING while a refresh is in
// flight and becomes READY once the table count is finalized.
const (
	CacheStatusSyncing = "SYNCING"
	CacheStatusReady   = "READY"
)

// TableCacheVersion tracks the current generation of a scope's cached table
// catalog. Exactly one row exists per scope key.
type TableCacheVersion struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ScopeKey     string    `gorm:"size:512;not null;uniqueIndex" json:"scopeKey"`
	DataSourceID string    `gorm:"type:char(36);not null;index" json:"dataSourceId"`
	DatabaseName string    `gorm:"size:255" json:"databaseName,omitempty"`
	SchemaName   string    `gorm:"size:255" json:"schemaName,omitempty"`
	Version      int64     `gorm:"not null" json:"version"`
	ReadyVersion int64     `gorm:"not null;default:-1" json:"readyVersion"`
	Status       string    `gorm:"size:16;not null" json:"status"`
	TableCount   int64     `gorm:"not null" json:"tableCount"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the table name for the TableCacheVersion model
func (TableCacheVersion) TableName() string {
	return "table_cache_versions"
}

// ReadVersion returns the generation readers should page at. While a refresh
// is in flight the staged generation may be incomplete, or a partial leftover
// of an abandoned attempt, so a SYNCING record exposes ReadyVersion: the last
// generation a sync actually finalized. Its rows are still present because
// eviction only happens after a later finalize. Negative means no generation
// has ever finalized.
func (v *TableCacheVersion) ReadVersion() int64 {
	if v.Status == CacheStatusSyncing {
		return v.ReadyVersion
	}
	return v.Version
}

// TableCache is one cached table row, stamped with the catalog version it
// belongs to. Rows are inserted in bulk per version and never updated; stale
// versions are deleted in bulk after a newer version finalizes.
type TableCache struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ScopeKey     string    `gorm:"size:512;not null;index:idx_scope_version" json:"scopeKey"`
	DataSourceID string    `gorm:"type:char(36);not null" json:"dataSourceId"`
	DatabaseName string    `gorm:"size:255" json:"databaseName,omitempty"`
	SchemaName   string    `gorm:"size:255" json:"schemaName,omitempty"`
	TableName_   string    `gorm:"column:table_name;size:512;not null" json:"tableName"`
	ExtendInfo   string    `gorm:"type:text" json:"extendInfo,omitempty"`
	Version      int64     `gorm:"not null;index:idx_scope_version" json:"version"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the table name for the TableCache model
func (TableCache) TableName() string {
	return "table_caches"
}

// BuildScopeKey derives the unique identity of a catalog scope from the data
// source ID plus the optional database and schema qualifiers.
func BuildScopeKey(dataSourceID, databaseName, schemaName string) string {
	var sb strings.Builder
	sb.WriteString(dataSourceID)
	if strings.TrimSpace(databaseName) != "" {
		sb.WriteString("_")
		sb.WriteString(databaseName)
	}
	if strings.TrimSpace(schemaName) != "" {
		sb.WriteString("_")
		sb.WriteString(schemaName)
	}
	return sb.String()
}
