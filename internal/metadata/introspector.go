package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"catalog-gateway/internal/model"
	"catalog-gateway/internal/sqlbuilder"
)

// SQLIntrospector implements MetaData over database/sql for one protocol family
type SQLIntrospector struct {
	protocol model.Protocol
}

// NewSQLIntrospector creates an introspector for the given protocol family
func NewSQLIntrospector(protocol model.Protocol) *SQLIntrospector {
	return &SQLIntrospector{protocol: protocol}
}

// ForDataSource creates an introspector matching a data source's database type
func ForDataSource(dbType model.DatabaseType) *SQLIntrospector {
	return NewSQLIntrospector(model.GetProtocol(dbType))
}

// StreamTables enumerates tables under the given filters
func (in *SQLIntrospector) StreamTables(ctx context.Context, db *sql.DB, databaseName, schemaName, tableNamePattern string, fn func(TableRow) error) error {
	query := in.tableListQuery(databaseName, schemaName, tableNamePattern)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to enumerate tables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dbName, schName, remarks sql.NullString
		var tableName string
		if err := rows.Scan(&dbName, &schName, &tableName, &remarks); err != nil {
			return fmt.Errorf("failed to scan table row: %w", err)
		}
		row := TableRow{
			DatabaseName: dbName.String,
			SchemaName:   schName.String,
			TableName:    tableName,
			Remarks:      remarks.String,
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Tables fetches base info for tables matching an exact name
func (in *SQLIntrospector) Tables(ctx context.Context, db *sql.DB, databaseName, schemaName, tableName string) ([]model.Table, error) {
	var tables []model.Table
	err := in.StreamTables(ctx, db, databaseName, schemaName, tableName, func(row TableRow) error {
		tables = append(tables, model.Table{
			Name:         row.TableName,
			DatabaseName: row.DatabaseName,
			SchemaName:   row.SchemaName,
			Comment:      row.Remarks,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// Columns fetches the full column list of one table
func (in *SQLIntrospector) Columns(ctx context.Context, db *sql.DB, databaseName, schemaName, tableName string) ([]model.TableColumn, error) {
	query := in.columnQuery(databaseName, schemaName, tableName)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []model.TableColumn
	for rows.Next() {
		var name, colType, nullable string
		var defaultValue, comment, extra sql.NullString
		var length, scale sql.NullInt64

		if err := rows.Scan(&name, &colType, &nullable, &defaultValue, &comment, &extra, &length, &scale); err != nil {
			return nil, fmt.Errorf("failed to scan column row: %w", err)
		}

		column := model.TableColumn{
			Name:          name,
			Type:          colType,
			Nullable:      strings.EqualFold(nullable, "YES"),
			Comment:       comment.String,
			AutoIncrement: strings.Contains(strings.ToLower(extra.String), "auto_increment"),
			Length:        length.Int64,
			Scale:         int(scale.Int64),
		}
		if defaultValue.Valid {
			v := defaultValue.String
			column.DefaultValue = &v
		}
		columns = append(columns, column)
	}
	return columns, rows.Err()
}

// Indexes fetches the index definitions of one table
func (in *SQLIntrospector) Indexes(ctx context.Context, db *sql.DB, databaseName, schemaName, tableName string) ([]model.TableIndex, error) {
	query := in.indexQuery(databaseName, schemaName, tableName)
	if query == "" {
		// Dialect has no conventional secondary indexes
		return nil, nil
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query indexes: %w", err)
	}
	defer rows.Close()

	var order []string
	indexMap := make(map[string]*model.TableIndex)

	for rows.Next() {
		var indexName, columnName string
		var unique bool
		if err := rows.Scan(&indexName, &columnName, &unique); err != nil {
			return nil, fmt.Errorf("failed to scan index row: %w", err)
		}

		if idx, exists := indexMap[indexName]; exists {
			idx.Columns = append(idx.Columns, columnName)
			continue
		}

		idxType := model.IndexTypeNormal
		if indexName == "PRIMARY" || strings.HasSuffix(indexName, "_pkey") {
			idxType = model.IndexTypePrimary
		} else if unique {
			idxType = model.IndexTypeUnique
		}
		indexMap[indexName] = &model.TableIndex{
			Name:    indexName,
			Type:    idxType,
			Unique:  unique,
			Columns: []string{columnName},
		}
		order = append(order, indexName)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	indexes := make([]model.TableIndex, 0, len(order))
	for _, name := range order {
		indexes = append(indexes, *indexMap[name])
	}
	return indexes, nil
}

// Types returns the column data types the dialect supports
func (in *SQLIntrospector) Types(ctx context.Context, db *sql.DB) ([]model.Type, error) {
	var names []string
	switch in.protocol {
	case model.ProtocolPostgreSQL:
		names = []string{"smallint", "integer", "bigint", "numeric", "real", "double precision",
			"serial", "bigserial", "money", "varchar", "char", "text", "bytea", "timestamp",
			"timestamptz", "date", "time", "interval", "boolean", "uuid", "json", "jsonb", "inet"}
	case model.ProtocolOracle:
		names = []string{"VARCHAR2", "NVARCHAR2", "NUMBER", "FLOAT", "DATE", "TIMESTAMP",
			"CHAR", "NCHAR", "CLOB", "NCLOB", "BLOB", "RAW", "LONG"}
	case model.ProtocolClickHouse:
		names = []string{"UInt8", "UInt16", "UInt32", "UInt64", "Int8", "Int16", "Int32", "Int64",
			"Float32", "Float64", "Decimal", "String", "FixedString", "Date", "DateTime",
			"DateTime64", "UUID", "Enum8", "Enum16", "Array", "Nullable", "LowCardinality"}
	default:
		names = []string{"tinyint", "smallint", "mediumint", "int", "bigint", "decimal", "float",
			"double", "bit", "char", "varchar", "tinytext", "text", "mediumtext", "longtext",
			"binary", "varbinary", "tinyblob", "blob", "mediumblob", "longblob", "date",
			"datetime", "timestamp", "time", "year", "enum", "set", "json"}
	}

	types := make([]model.Type, 0, len(names))
	for _, name := range names {
		types = append(types, model.Type{Name: name})
	}
	return types, nil
}

// TableDDL returns the CREATE TABLE statement for one table
func (in *SQLIntrospector) TableDDL(ctx context.Context, db *sql.DB, databaseName, schemaName, tableName string) (string, error) {
	switch in.protocol {
	case model.ProtocolMySQL, model.ProtocolClickHouse:
		var name, ddl string
		query := fmt.Sprintf("SHOW CREATE TABLE %s", in.qualify(databaseName, schemaName, tableName))
		if err := db.QueryRowContext(ctx, query).Scan(&name, &ddl); err != nil {
			return "", fmt.Errorf("failed to read table DDL: %w", err)
		}
		return ddl, nil

	case model.ProtocolOracle:
		var ddl string
		query := fmt.Sprintf("SELECT DBMS_METADATA.GET_DDL('TABLE', '%s') FROM dual", escape(tableName))
		if err := db.QueryRowContext(ctx, query).Scan(&ddl); err != nil {
			return "", fmt.Errorf("failed to read table DDL: %w", err)
		}
		return ddl, nil

	default:
		// No SHOW CREATE TABLE equivalent; assemble from introspected metadata
		return in.assembleDDL(ctx, db, databaseName, schemaName, tableName)
	}
}

// assembleDDL rebuilds a CREATE TABLE statement from live metadata
func (in *SQLIntrospector) assembleDDL(ctx context.Context, db *sql.DB, databaseName, schemaName, tableName string) (string, error) {
	tables, err := in.Tables(ctx, db, databaseName, schemaName, tableName)
	if err != nil {
		return "", err
	}
	if len(tables) == 0 {
		return "", fmt.Errorf("table %s not found", tableName)
	}

	table := tables[0]
	if table.Columns, err = in.Columns(ctx, db, databaseName, schemaName, tableName); err != nil {
		return "", err
	}
	if table.Indexes, err = in.Indexes(ctx, db, databaseName, schemaName, tableName); err != nil {
		return "", err
	}

	builder, err := sqlbuilder.ForProtocol(in.protocol)
	if err != nil {
		return "", err
	}
	return builder.BuildCreateTable(&table), nil
}

// DropTable drops one table
func (in *SQLIntrospector) DropTable(ctx context.Context, db *sql.DB, databaseName, schemaName, tableName string) error {
	query := fmt.Sprintf("DROP TABLE %s", in.qualify(databaseName, schemaName, tableName))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	return nil
}

// TableMeta describes dialect level table capabilities
func (in *SQLIntrospector) TableMeta() model.TableMeta {
	return model.TableMeta{
		SupportsComments:   true,
		SupportsIndexes:    in.protocol != model.ProtocolClickHouse,
		SupportsAutoIncr:   in.protocol == model.ProtocolMySQL,
		SupportsDefaultVal: true,
	}
}

// =============================================================================
// Dialect-specific queries
// =============================================================================

func (in *SQLIntrospector) tableListQuery(databaseName, schemaName, tableName string) string {
	switch in.protocol {
	case model.ProtocolPostgreSQL:
		schema := schemaName
		if schema == "" {
			schema = "public"
		}
		query := fmt.Sprintf(
			"SELECT current_database(), n.nspname, c.relname, obj_description(c.oid) "+
				"FROM pg_class c JOIN pg_namespace n ON n.oid = c.relnamespace "+
				"WHERE c.relkind = 'r' AND n.nspname = '%s'", escape(schema))
		if tableName != "" {
			query += fmt.Sprintf(" AND c.relname = '%s'", escape(tableName))
		}
		return query + " ORDER BY c.relname"

	case model.ProtocolOracle:
		query := "SELECT NULL, t.owner, t.table_name, c.comments FROM all_tables t " +
			"LEFT JOIN all_tab_comments c ON c.owner = t.owner AND c.table_name = t.table_name " +
			"WHERE t.owner NOT IN ('SYS', 'SYSTEM')"
		if schemaName != "" {
			query += fmt.Sprintf(" AND t.owner = '%s'", escape(schemaName))
		}
		if tableName != "" {
			query += fmt.Sprintf(" AND t.table_name = '%s'", escape(tableName))
		}
		return query + " ORDER BY t.table_name"

	case model.ProtocolClickHouse:
		query := "SELECT database, NULL, name, comment FROM system.tables WHERE engine NOT LIKE 'System%'"
		if databaseName != "" {
			query += fmt.Sprintf(" AND database = '%s'", escape(databaseName))
		} else {
			query += " AND database = currentDatabase()"
		}
		if tableName != "" {
			query += fmt.Sprintf(" AND name = '%s'", escape(tableName))
		}
		return query + " ORDER BY name"

	default:
		query := "SELECT table_schema, NULL, table_name, table_comment FROM information_schema.tables " +
			"WHERE table_type = 'BASE TABLE'"
		if databaseName != "" {
			query += fmt.Sprintf(" AND table_schema = '%s'", escape(databaseName))
		} else {
			query += " AND table_schema = DATABASE()"
		}
		if tableName != "" {
			query += fmt.Sprintf(" AND table_name = '%s'", escape(tableName))
		}
		return query + " ORDER BY table_name"
	}
}

func (in *SQLIntrospector) columnQuery(databaseName, schemaName, tableName string) string {
	switch in.protocol {
	case model.ProtocolPostgreSQL:
		schema := schemaName
		if schema == "" {
			schema = "public"
		}
		return fmt.Sprintf(
			"SELECT column_name, data_type, is_nullable, column_default, "+
				"col_description(format('%%I.%%I', table_schema, table_name)::regclass::oid, ordinal_position), "+
				"'', character_maximum_length, numeric_scale "+
				"FROM information_schema.columns WHERE table_schema = '%s' AND table_name = '%s' "+
				"ORDER BY ordinal_position", escape(schema), escape(tableName))

	case model.ProtocolOracle:
		return fmt.Sprintf(
			"SELECT c.column_name, c.data_type, c.nullable, c.data_default, cc.comments, NULL, c.data_length, c.data_scale "+
				"FROM all_tab_columns c "+
				"LEFT JOIN all_col_comments cc ON cc.owner = c.owner AND cc.table_name = c.table_name AND cc.column_name = c.column_name "+
				"WHERE c.table_name = '%s' ORDER BY c.column_id", escape(tableName))

	case model.ProtocolClickHouse:
		query := fmt.Sprintf(
			"SELECT name, type, if(type LIKE 'Nullable%%', 'YES', 'NO'), default_expression, comment, NULL, NULL, NULL "+
				"FROM system.columns WHERE table = '%s'", escape(tableName))
		if databaseName != "" {
			query += fmt.Sprintf(" AND database = '%s'", escape(databaseName))
		}
		return query + " ORDER BY position"

	default:
		query := fmt.Sprintf(
			"SELECT column_name, column_type, is_nullable, column_default, column_comment, extra, "+
				"character_maximum_length, numeric_scale "+
				"FROM information_schema.columns WHERE table_name = '%s'", escape(tableName))
		if databaseName != "" {
			query += fmt.Sprintf(" AND table_schema = '%s'", escape(databaseName))
		} else {
			query += " AND table_schema = DATABASE()"
		}
		return query + " ORDER BY ordinal_position"
	}
}

func (in *SQLIntrospector) indexQuery(databaseName, schemaName, tableName string) string {
	switch in.protocol {
	case model.ProtocolPostgreSQL:
		schema := schemaName
		if schema == "" {
			schema = "public"
		}
		return fmt.Sprintf(
			"SELECT i.relname, a.attname, ix.indisunique "+
				"FROM pg_index ix "+
				"JOIN pg_class i ON i.oid = ix.indexrelid "+
				"JOIN pg_class t ON t.oid = ix.indrelid "+
				"JOIN pg_namespace n ON n.oid = t.relnamespace "+
				"JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey) "+
				"WHERE t.relname = '%s' AND n.nspname = '%s' "+
				"ORDER BY i.relname, a.attnum", escape(tableName), escape(schema))

	case model.ProtocolOracle:
		return fmt.Sprintf(
			"SELECT i.index_name, ic.column_name, CASE i.uniqueness WHEN 'UNIQUE' THEN 1 ELSE 0 END "+
				"FROM all_indexes i "+
				"JOIN all_ind_columns ic ON ic.index_name = i.index_name AND ic.index_owner = i.owner "+
				"WHERE i.table_name = '%s' ORDER BY i.index_name, ic.column_position", escape(tableName))

	case model.ProtocolClickHouse:
		return ""

	default:
		query := fmt.Sprintf(
			"SELECT index_name, column_name, NOT non_unique "+
				"FROM information_schema.statistics WHERE table_name = '%s'", escape(tableName))
		if databaseName != "" {
			query += fmt.Sprintf(" AND table_schema = '%s'", escape(databaseName))
		} else {
			query += " AND table_schema = DATABASE()"
		}
		return query + " ORDER BY index_name, seq_in_index"
	}
}

// qualify builds a quoted, optionally qualified table reference
func (in *SQLIntrospector) qualify(databaseName, schemaName, tableName string) string {
	var parts []string
	switch in.protocol {
	case model.ProtocolPostgreSQL:
		if schemaName != "" {
			parts = append(parts, `"`+schemaName+`"`)
		}
		parts = append(parts, `"`+tableName+`"`)
	case model.ProtocolOracle:
		if schemaName != "" {
			parts = append(parts, `"`+schemaName+`"`)
		}
		parts = append(parts, `"`+tableName+`"`)
	default:
		if databaseName != "" {
			parts = append(parts, "`"+databaseName+"`")
		}
		parts = append(parts, "`"+tableName+"`")
	}
	return strings.Join(parts, ".")
}

// escape doubles single quotes for safe literal embedding
func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
