package sqlbuilder

import (
	"fmt"
	"strings"

	"catalog-gateway/internal/model"
)

// MySQLBuilder renders DDL for the MySQL protocol family
type MySQLBuilder struct{}

// BuildCreateTable renders one CREATE TABLE statement
func (b *MySQLBuilder) BuildCreateTable(table *model.Table) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("CREATE TABLE %s (\n", b.qualify(table)))

	var lines []string
	for i := range table.Columns {
		lines = append(lines, "    "+b.columnDefinition(&table.Columns[i]))
	}
	for _, idx := range table.Indexes {
		lines = append(lines, "    "+b.indexDefinition(idx))
	}
	sb.WriteString(strings.Join(lines, ",\n"))
	sb.WriteString("\n)")

	if table.Comment != "" {
		sb.WriteString(fmt.Sprintf(" COMMENT='%s'", escapeLiteral(table.Comment)))
	}
	sb.WriteString(";")
	return sb.String()
}

// BuildModifyTable renders one ALTER TABLE statement covering all differences
func (b *MySQLBuilder) BuildModifyTable(oldTable, newTable *model.Table) string {
	var clauses []string

	for i := range newTable.Columns {
		column := &newTable.Columns[i]
		switch {
		case column.Old == nil:
			clauses = append(clauses, fmt.Sprintf("ADD COLUMN %s", b.columnDefinition(column)))
		case column.Old.Name != column.Name:
			clauses = append(clauses, fmt.Sprintf("CHANGE COLUMN `%s` %s", column.Old.Name, b.columnDefinition(column)))
		case columnChanged(column):
			clauses = append(clauses, fmt.Sprintf("MODIFY COLUMN %s", b.columnDefinition(column)))
		}
	}

	for _, column := range droppedColumns(oldTable, newTable) {
		clauses = append(clauses, fmt.Sprintf("DROP COLUMN `%s`", column.Name))
	}

	oldIndexes := indexesByName(oldTable.Indexes)
	newIndexes := indexesByName(newTable.Indexes)
	for _, idx := range newTable.Indexes {
		prior, existed := oldIndexes[idx.Name]
		if existed && sameIndex(prior, idx) {
			continue
		}
		if existed {
			clauses = append(clauses, b.dropIndexClause(prior))
		}
		clauses = append(clauses, fmt.Sprintf("ADD %s", b.indexDefinition(idx)))
	}
	for _, idx := range oldTable.Indexes {
		if _, kept := newIndexes[idx.Name]; !kept {
			clauses = append(clauses, b.dropIndexClause(idx))
		}
	}

	if newTable.Comment != oldTable.Comment {
		clauses = append(clauses, fmt.Sprintf("COMMENT='%s'", escapeLiteral(newTable.Comment)))
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

func (b *MySQLBuilder) columnDefinition(column *model.TableColumn) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("`%s` %s", column.Name, b.columnType(column)))

	if !column.Nullable {
		sb.WriteString(" NOT NULL")
	}
	if column.DefaultValue != nil {
		sb.WriteString(fmt.Sprintf(" DEFAULT %s", defaultLiteral(*column.DefaultValue)))
	}
	if column.AutoIncrement {
		sb.WriteString(" AUTO_INCREMENT")
	}
	if column.Comment != "" {
		sb.WriteString(fmt.Sprintf(" COMMENT '%s'", escapeLiteral(column.Comment)))
	}
	return sb.String()
}

// columnType appends length/scale when the introspected type lacks them
func (b *MySQLBuilder) columnType(column *model.TableColumn) string {
	if strings.Contains(column.Type, "(") || column.Length <= 0 {
		return column.Type
	}
	if column.Scale > 0 {
		return fmt.Sprintf("%s(%d,%d)", column.Type, column.Length, column.Scale)
	}
	return fmt.Sprintf("%s(%d)", column.Type, column.Length)
}

func (b *MySQLBuilder) indexDefinition(idx model.TableIndex) string {
	columns := "`" + strings.Join(idx.Columns, "`, `") + "`"
	switch idx.Type {
	case model.IndexTypePrimary:
		return fmt.Sprintf("PRIMARY KEY (%s)", columns)
	case model.IndexTypeUnique:
		return fmt.Sprintf("UNIQUE KEY `%s` (%s)", idx.Name, columns)
	default:
		if idx.Unique {
			return fmt.Sprintf("UNIQUE KEY `%s` (%s)", idx.Name, columns)
		}
		return fmt.Sprintf("KEY `%s` (%s)", idx.Name, columns)
	}
}

func (b *MySQLBuilder) dropIndexClause(idx model.TableIndex) string {
	if idx.Type == model.IndexTypePrimary {
		return "DROP PRIMARY KEY"
	}
	return fmt.Sprintf("DROP INDEX `%s`", idx.Name)
}

func (b *MySQLBuilder) qualify(table *model.Table) string {
	if table.DatabaseName != "" {
		return fmt.Sprintf("`%s`.`%s`", table.DatabaseName, table.Name)
	}
	return fmt.Sprintf("`%s`", table.Name)
}
