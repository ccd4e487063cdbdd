package model

// Table is the dialect independent description of a table, used both for
// query results and as input to DDL building.
type Table struct {
	Name         string        `json:"name"`
	DatabaseName string        `json:"databaseName,omitempty"`
	SchemaName   string        `json:"schemaName,omitempty"`
	Comment      string        `json:"comment,omitempty"`
	Columns      []TableColumn `json:"columnList,omitempty"`
	Indexes      []TableIndex  `json:"indexList,omitempty"`
	Pinned       bool          `json:"pinned,omitempty"`
}

// TableColumn describes a single column. Old carries the prior state of a
// column with the same name when diffing two table definitions; a nil Old on
// a column handed to a DDL builder means the column is newly added.
type TableColumn struct {
	Name          string       `json:"name"`
	Type          string       `json:"columnType"`
	Nullable      bool         `json:"nullable"`
	DefaultValue  *string      `json:"defaultValue,omitempty"`
	Comment       string       `json:"comment,omitempty"`
	AutoIncrement bool         `json:"autoIncrement,omitempty"`
	Length        int64        `json:"columnSize,omitempty"`
	Scale         int          `json:"decimalDigits,omitempty"`
	Old           *TableColumn `json:"oldColumn,omitempty"`
}

// TableIndex describes an index definition
type TableIndex struct {
	Name    string   `json:"name"`
	Type    string   `json:"type,omitempty"` // PRIMARY, UNIQUE, NORMAL
	Unique  bool     `json:"unique"`
	Columns []string `json:"columnList"`
	Comment string   `json:"comment,omitempty"`
}

// Index type constants
const (
	IndexTypePrimary = "PRIMARY"
	IndexTypeUnique  = "UNIQUE"
	IndexTypeNormal  = "NORMAL"
)

// Type is a column data type supported by a dialect
type Type struct {
	Name string `json:"typeName"`
}

// TableMeta describes dialect level table capabilities
type TableMeta struct {
	SupportsComments   bool `json:"supportsComments"`
	SupportsIndexes    bool `json:"supportsIndexes"`
	SupportsAutoIncr   bool `json:"supportsAutoIncrement"`
	SupportsDefaultVal bool `json:"supportsDefaultValue"`
}

// Sql wraps one generated DDL statement
type Sql struct {
	Sql string `json:"sql"`
}

// TableQueryParam identifies one table within a data source
type TableQueryParam struct {
	DataSourceID string `json:"dataSourceId"`
	DatabaseName string `json:"databaseName,omitempty"`
	SchemaName   string `json:"schemaName,omitempty"`
	TableName    string `json:"tableName"`
	Refresh      bool   `json:"refresh,omitempty"`
}

// TablePageQueryParam identifies a scope plus pagination and search settings
type TablePageQueryParam struct {
	DataSourceID string `json:"dataSourceId"`
	DatabaseName string `json:"databaseName,omitempty"`
	SchemaName   string `json:"schemaName,omitempty"`
	SearchKey    string `json:"searchKey,omitempty"`
	PageNo       int    `json:"pageNo"`
	PageSize     int    `json:"pageSize"`
	Refresh      bool   `json:"refresh,omitempty"`
}

// TablePageResult carries one page of tables plus the scope's authoritative
// table count. Total reflects the full catalog size for the scope, not the
// size of a searched subset.
type TablePageResult struct {
	Tables   []Table `json:"data"`
	Total    int64   `json:"total"`
	PageNo   int     `json:"pageNo"`
	PageSize int     `json:"pageSize"`
}

// TypeQueryParam identifies a data source for type/meta queries
type TypeQueryParam struct {
	DataSourceID string `json:"dataSourceId"`
}
