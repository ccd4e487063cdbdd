package metadata

import (
	"context"
	"database/sql"

	"catalog-gateway/internal/model"
)

// TableRow is one table entry streamed from a remote catalog enumeration
type TableRow struct {
	DatabaseName string
	SchemaName   string
	TableName    string
	Remarks      string
}

// MetaData introspects schema metadata on a live remote connection. All
// methods take the connection as a collaborator-supplied handle; callers must
// assume every call may take catalog-proportional time.
type MetaData interface {
	// StreamTables enumerates the tables visible under the given filters,
	// invoking fn once per table in enumeration order. Returning an error from
	// fn aborts the stream.
	StreamTables(ctx context.Context, db *sql.DB, databaseName, schemaName, tableNamePattern string, fn func(TableRow) error) error

	// Tables fetches base info for tables matching an exact name
	Tables(ctx context.Context, db *sql.DB, databaseName, schemaName, tableName string) ([]model.Table, error)

	// Columns fetches the full column list of one table
	Columns(ctx context.Context, db *sql.DB, databaseName, schemaName, tableName string) ([]model.TableColumn, error)

	// Indexes fetches the index definitions of one table
	Indexes(ctx context.Context, db *sql.DB, databaseName, schemaName, tableName string) ([]model.TableIndex, error)

	// Types returns the column data types the dialect supports
	Types(ctx context.Context, db *sql.DB) ([]model.Type, error)

	// TableDDL returns the CREATE TABLE statement for one table
	TableDDL(ctx context.Context, db *sql.DB, databaseName, schemaName, tableName string) (string, error)

	// DropTable drops one table
	DropTable(ctx context.Context, db *sql.DB, databaseName, schemaName, tableName string) error

	// TableMeta describes dialect level table capabilities
	TableMeta() model.TableMeta
}
