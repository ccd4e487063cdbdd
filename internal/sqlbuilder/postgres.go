package sqlbuilder

import (
	"fmt"
	"strings"

	"catalog-gateway/internal/model"
)

// PostgreSQLBuilder renders DDL for the PostgreSQL protocol family
type PostgreSQLBuilder struct{}

// BuildCreateTable renders one CREATE TABLE statement. Secondary indexes and
// comments have no inline syntax in PostgreSQL, so they follow the CREATE in
// the same returned text.
func (b *PostgreSQLBuilder) BuildCreateTable(table *model.Table) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("CREATE TABLE %s (\n", b.qualify(table)))

	var lines []string
	for i := range table.Columns {
		lines = append(lines, "    "+b.columnDefinition(&table.Columns[i]))
	}
	for _, idx := range table.Indexes {
		if idx.Type == model.IndexTypePrimary {
			lines = append(lines, fmt.Sprintf("    PRIMARY KEY (%s)", b.quoteList(idx.Columns)))
		}
	}
	sb.WriteString(strings.Join(lines, ",\n"))
	sb.WriteString("\n);")

	for _, idx := range table.Indexes {
		if idx.Type == model.IndexTypePrimary {
			continue
		}
		unique := ""
		if idx.Unique {
			unique = "UNIQUE "
		}
		sb.WriteString(fmt.Sprintf("\nCREATE %sINDEX \"%s\" ON %s (%s);",
			unique, idx.Name, b.qualify(table), b.quoteList(idx.Columns)))
	}

	if table.Comment != "" {
		sb.WriteString(fmt.Sprintf("\nCOMMENT ON TABLE %s IS '%s';", b.qualify(table), escapeLiteral(table.Comment)))
	}
	for i := range table.Columns {
		column := &table.Columns[i]
		if column.Comment != "" {
			sb.WriteString(fmt.Sprintf("\nCOMMENT ON COLUMN %s.\"%s\" IS '%s';",
				b.qualify(table), column.Name, escapeLiteral(column.Comment)))
		}
	}
	return sb.String()
}

// BuildModifyTable renders one ALTER TABLE statement covering all differences
func (b *PostgreSQLBuilder) BuildModifyTable(oldTable, newTable *model.Table) string {
	var clauses []string

	for i := range newTable.Columns {
		column := &newTable.Columns[i]
		if column.Old == nil {
			clauses = append(clauses, fmt.Sprintf("ADD COLUMN %s", b.columnDefinition(column)))
			continue
		}
		if column.Old.Name != column.Name {
			clauses = append(clauses, fmt.Sprintf("RENAME COLUMN \"%s\" TO \"%s\"", column.Old.Name, column.Name))
		}
		if column.Old.Type != column.Type {
			clauses = append(clauses, fmt.Sprintf("ALTER COLUMN \"%s\" TYPE %s", column.Name, b.columnType(column)))
		}
		if column.Old.Nullable != column.Nullable {
			action := "SET NOT NULL"
			if column.Nullable {
				action = "DROP NOT NULL"
			}
			clauses = append(clauses, fmt.Sprintf("ALTER COLUMN \"%s\" %s", column.Name, action))
		}
		if !equalDefault(column.Old.DefaultValue, column.DefaultValue) {
			if column.DefaultValue == nil {
				clauses = append(clauses, fmt.Sprintf("ALTER COLUMN \"%s\" DROP DEFAULT", column.Name))
			} else {
				clauses = append(clauses, fmt.Sprintf("ALTER COLUMN \"%s\" SET DEFAULT %s",
					column.Name, defaultLiteral(*column.DefaultValue)))
			}
		}
	}

	for _, column := range droppedColumns(oldTable, newTable) {
		clauses = append(clauses, fmt.Sprintf("DROP COLUMN \"%s\"", column.Name))
	}

	if len(clauses) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ALTER TABLE %s\n    ", b.qualify(newTable)))
	sb.WriteString(strings.Join(clauses, ",\n    "))
	sb.WriteString(";")
	return sb.String()
}

func (b *PostgreSQLBuilder) columnDefinition(column *model.TableColumn) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\"%s\" %s", column.Name, b.columnType(column)))

	if !column.Nullable {
		sb.WriteString(" NOT NULL")
	}
	if column.DefaultValue != nil {
		sb.WriteString(fmt.Sprintf(" DEFAULT %s", defaultLiteral(*column.DefaultValue)))
	}
	return sb.String()
}

func (b *PostgreSQLBuilder) columnType(column *model.TableColumn) string {
	if column.AutoIncrement {
		return "bigserial"
	}
	lower := strings.ToLower(column.Type)
	if strings.Contains(column.Type, "(") || column.Length <= 0 {
		return column.Type
	}
	switch lower {
	case "varchar", "character varying", "char", "character":
		return fmt.Sprintf("%s(%d)", column.Type, column.Length)
	case "numeric", "decimal":
		if column.Scale > 0 {
			return fmt.Sprintf("%s(%d,%d)", column.Type, column.Length, column.Scale)
		}
		return fmt.Sprintf("%s(%d)", column.Type, column.Length)
	}
	return column.Type
}

func (b *PostgreSQLBuilder) quoteList(columns []string) string {
	return "\"" + strings.Join(columns, "\", \"") + "\""
}

func (b *PostgreSQLBuilder) qualify(table *model.Table) string {
	if table.SchemaName != "" {
		return fmt.Sprintf("\"%s\".\"%s\"", table.SchemaName, table.Name)
	}
	return fmt.Sprintf("\"%s\"", table.Name)
}
