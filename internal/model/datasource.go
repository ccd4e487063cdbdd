package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DatabaseType string

const (
	DatabaseTypeMySQL      DatabaseType = "mysql"
	DatabaseTypeMariaDB    DatabaseType = "mariadb"
	DatabaseTypePostgreSQL DatabaseType = "postgresql"
	DatabaseTypeOracle     DatabaseType = "oracle"
	DatabaseTypeClickHouse DatabaseType = "clickhouse"

	// MySQL protocol compatible
	DatabaseTypeTiDB           DatabaseType = "tidb"
	DatabaseTypeOceanBaseMySQL DatabaseType = "oceanbase_mysql"
	DatabaseTypeDoris          DatabaseType = "doris"
	DatabaseTypeStarRocks      DatabaseType = "starrocks"

	// PostgreSQL protocol compatible
	DatabaseTypeOpenGauss  DatabaseType = "opengauss"
	DatabaseTypeKingbaseES DatabaseType = "kingbasees"
)

type DataSourceStatus string

const (
	DataSourceStatusActive   DataSourceStatus = "active"
	DataSourceStatusInactive DataSourceStatus = "inactive"
	DataSourceStatusError    DataSourceStatus = "error"
)

// DataSource represents a remote database connection configuration
type DataSource struct {
	ID        string           `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string           `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Type      DatabaseType     `gorm:"size:32;not null" json:"type"`
	Config    DataSourceConfig `gorm:"type:json;not null" json:"config"`
	Status    DataSourceStatus `gorm:"type:enum('active','inactive','error');default:'active'" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// DataSourceConfig holds the connection configuration for a data source
type DataSourceConfig struct {
	Host            string                 `json:"host" validate:"required"`
	Port            int                    `json:"port" validate:"required,min=1,max=65535"`
	Database        string                 `json:"database"`
	Username        string                 `json:"username" validate:"required"`
	Password        string                 `json:"password" validate:"required"`
	SSL             bool                   `json:"ssl"`
	Timeout         int                    `json:"timeout"`     // Connection timeout in seconds, default 30
	MaxPoolSize     int                    `json:"maxPoolSize"` // Maximum pool size, default 10
	IdleTimeout     int                    `json:"idleTimeout"` // Idle timeout in seconds, default 600
	MaxLifetime     int                    `json:"maxLifetime"` // Max connection lifetime in seconds, default 1800
	Timezone        string                 `json:"timezone"`
	AdditionalProps map[string]interface{} `json:"additionalProps,omitempty"`
}

// Value implements driver.Valuer interface for GORM
func (dsc DataSourceConfig) Value() (driver.Value, error) {
	return json.Marshal(dsc)
}

// Scan implements sql.Scanner interface for GORM
func (dsc *DataSourceConfig) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return json.Unmarshal([]byte(v.(string)), dsc)
	}

	return json.Unmarshal(bytes, dsc)
}

// TableName returns the table name for the DataSource model
func (DataSource) TableName() string {
	return "data_sources"
}

// BeforeCreate generates a new UUID if ID is empty
func (ds *DataSource) BeforeCreate(tx *gorm.DB) error {
	if ds.ID == "" {
		ds.ID = uuid.New().String()
	}
	return nil
}

// IsValidDatabaseType checks if a database type is valid
func IsValidDatabaseType(dbType string) bool {
	switch DatabaseType(dbType) {
	case DatabaseTypeMySQL, DatabaseTypeMariaDB, DatabaseTypePostgreSQL, DatabaseTypeOracle,
		DatabaseTypeClickHouse, DatabaseTypeTiDB, DatabaseTypeOceanBaseMySQL,
		DatabaseTypeDoris, DatabaseTypeStarRocks, DatabaseTypeOpenGauss, DatabaseTypeKingbaseES:
		return true
	default:
		return false
	}
}

// Protocol identifies the wire protocol / SQL family a database type speaks.
type Protocol string

const (
	ProtocolMySQL      Protocol = "mysql"
	ProtocolPostgreSQL Protocol = "postgresql"
	ProtocolOracle     Protocol = "oracle"
	ProtocolClickHouse Protocol = "clickhouse"
)

// GetProtocol returns the wire protocol for a database type
func GetProtocol(dbType DatabaseType) Protocol {
	switch dbType {
	case DatabaseTypePostgreSQL, DatabaseTypeOpenGauss, DatabaseTypeKingbaseES:
		return ProtocolPostgreSQL
	case DatabaseTypeOracle:
		return ProtocolOracle
	case DatabaseTypeClickHouse:
		return ProtocolClickHouse
	default:
		return ProtocolMySQL
	}
}
