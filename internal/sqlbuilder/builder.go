// Package sqlbuilder renders dialect-specific DDL from the logical table
// model. Modify rendering relies on the Old back-reference attached to
// columns by the schema diff: a column with Old set is altered in place, a
// column without it is added, and old columns not carried into the new
// definition are dropped.
package sqlbuilder

import (
	"fmt"
	"strings"

	"catalog-gateway/internal/model"
)

// Builder renders CREATE and ALTER statements for one dialect
type Builder interface {
	// BuildCreateTable renders one CREATE TABLE statement
	BuildCreateTable(table *model.Table) string

	// BuildModifyTable renders one ALTER TABLE statement covering every
	// column and index difference between the two definitions
	BuildModifyTable(oldTable, newTable *model.Table) string
}

// ForProtocol returns the DDL builder for a protocol family
func ForProtocol(protocol model.Protocol) (Builder, error) {
	switch protocol {
	case model.ProtocolMySQL:
		return &MySQLBuilder{}, nil
	case model.ProtocolPostgreSQL:
		return &PostgreSQLBuilder{}, nil
	default:
		return nil, fmt.Errorf("no DDL builder for protocol: %s", protocol)
	}
}

// ForDatabaseType returns the DDL builder for a database type
func ForDatabaseType(dbType model.DatabaseType) (Builder, error) {
	return ForProtocol(model.GetProtocol(dbType))
}

// droppedColumns returns old columns that neither survive by name nor are
// carried forward as the prior state of a renamed column.
func droppedColumns(oldTable, newTable *model.Table) []model.TableColumn {
	carried := make(map[string]bool, len(newTable.Columns))
	for _, column := range newTable.Columns {
		carried[column.Name] = true
		if column.Old != nil {
			carried[column.Old.Name] = true
		}
	}

	var dropped []model.TableColumn
	for _, column := range oldTable.Columns {
		if !carried[column.Name] {
			dropped = append(dropped, column)
		}
	}
	return dropped
}

// columnChanged reports whether a column's definition differs from its prior state
func columnChanged(column *model.TableColumn) bool {
	old := column.Old
	if old == nil {
		return false
	}
	if old.Name != column.Name || old.Type != column.Type || old.Nullable != column.Nullable {
		return true
	}
	if old.Comment != column.Comment || old.AutoIncrement != column.AutoIncrement {
		return true
	}
	return !equalDefault(old.DefaultValue, column.DefaultValue)
}

func equalDefault(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// indexesByName builds a name lookup over index definitions
func indexesByName(indexes []model.TableIndex) map[string]model.TableIndex {
	m := make(map[string]model.TableIndex, len(indexes))
	for _, idx := range indexes {
		m[idx.Name] = idx
	}
	return m
}

// escapeLiteral doubles single quotes for safe literal embedding
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// defaultLiteral renders a default value, quoting unless it is a number,
// NULL, or an expression like CURRENT_TIMESTAMP.
func defaultLiteral(value string) string {
	trimmed := strings.TrimSpace(value)
	upper := strings.ToUpper(trimmed)
	if upper == "NULL" || upper == "CURRENT_TIMESTAMP" || upper == "CURRENT_DATE" ||
		upper == "CURRENT_TIME" || upper == "NOW()" || strings.HasPrefix(upper, "CURRENT_TIMESTAMP(") {
		return trimmed
	}
	if isNumericLiteral(trimmed) {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'") && len(trimmed) >= 2 {
		return trimmed
	}
	return "'" + escapeLiteral(trimmed) + "'"
}

func isNumericLiteral(s string) bool {
	if s == "" {
		return false
	}
	dot := false
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '-' && i == 0:
		case r == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return s != "-" && s != "."
}

// sameIndex reports whether two index definitions are equivalent
func sameIndex(a, b model.TableIndex) bool {
	if a.Unique != b.Unique || a.Type != b.Type || len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if a.Columns[i] != b.Columns[i] {
			return false
		}
	}
	return true
}
