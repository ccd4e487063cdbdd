package database

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/sijms/go-ora/v2"

	"catalog-gateway/internal/model"
)

// Driver adapts one wire protocol family to database/sql
type Driver interface {
	// Open opens a database connection pool
	Open(dsn string) (*sql.DB, error)

	// BuildDSN builds a connection string from configuration
	BuildDSN(config *model.DataSourceConfig) string

	// GetDefaultPort returns the default port for the database
	GetDefaultPort() int

	// GetDriverName returns the underlying SQL driver name
	GetDriverName() string

	// GetProtocol returns the SQL protocol family the driver speaks
	GetProtocol() model.Protocol
}

// =============================================================================
// MySQL protocol (MySQL, MariaDB, TiDB, OceanBase, Doris, StarRocks)
// =============================================================================

type MySQLDriver struct{}

func (d *MySQLDriver) Open(dsn string) (*sql.DB, error) {
	return sql.Open("mysql", dsn)
}

func (d *MySQLDriver) BuildDSN(config *model.DataSourceConfig) string {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True",
		config.Username, config.Password, config.Host, config.Port, config.Database)
	if config.SSL {
		dsn += "&tls=true"
	}
	if config.Timezone != "" {
		dsn += "&loc=" + url.QueryEscape(config.Timezone)
	}
	return dsn
}

func (d *MySQLDriver) GetDefaultPort() int { return 3306 }
func (d *MySQLDriver) GetDriverName() string { return "mysql" }
func (d *MySQLDriver) GetProtocol() model.Protocol { return model.ProtocolMySQL }

// =============================================================================
// PostgreSQL protocol (PostgreSQL, openGauss, KingbaseES)
// =============================================================================

type PostgreSQLDriver struct{}

func (d *PostgreSQLDriver) Open(dsn string) (*sql.DB, error) {
	return sql.Open("postgres", dsn)
}

func (d *PostgreSQLDriver) BuildDSN(config *model.DataSourceConfig) string {
	sslMode := "disable"
	if config.SSL {
		sslMode = "require"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.Username, config.Password, config.Database, sslMode)
}

func (d *PostgreSQLDriver) GetDefaultPort() int { return 5432 }
func (d *PostgreSQLDriver) GetDriverName() string { return "postgres" }
func (d *PostgreSQLDriver) GetProtocol() model.Protocol { return model.ProtocolPostgreSQL }

// =============================================================================
// Oracle
// =============================================================================

type OracleDriver struct{}

func (d *OracleDriver) Open(dsn string) (*sql.DB, error) {
	return sql.Open("oracle", dsn)
}

func (d *OracleDriver) BuildDSN(config *model.DataSourceConfig) string {
	return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
		url.PathEscape(config.Username), url.PathEscape(config.Password),
		config.Host, config.Port, config.Database)
}

func (d *OracleDriver) GetDefaultPort() int { return 1521 }
func (d *OracleDriver) GetDriverName() string { return "oracle" }
func (d *OracleDriver) GetProtocol() model.Protocol { return model.ProtocolOracle }

// =============================================================================
// ClickHouse
// =============================================================================

type ClickHouseDriver struct{}

func (d *ClickHouseDriver) Open(dsn string) (*sql.DB, error) {
	return sql.Open("clickhouse", dsn)
}

func (d *ClickHouseDriver) BuildDSN(config *model.DataSourceConfig) string {
	dsn := fmt.Sprintf("clickhouse://%s:%s@%s:%d/%s",
		url.PathEscape(config.Username), url.PathEscape(config.Password),
		config.Host, config.Port, config.Database)
	if config.SSL {
		dsn += "?secure=true"
	}
	return dsn
}

func (d *ClickHouseDriver) GetDefaultPort() int { return 9000 }
func (d *ClickHouseDriver) GetDriverName() string { return "clickhouse" }
func (d *ClickHouseDriver) GetProtocol() model.Protocol { return model.ProtocolClickHouse }
