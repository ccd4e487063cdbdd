package service

import (
	"catalog-gateway/internal/model"
)

// LinkColumns attaches each column's prior state from the old table definition
// onto the matching column of the new definition, matching strictly by name.
// Columns with no match in the old definition keep a nil Old and are treated
// as additions by the DDL builders. A nil old table means create mode and the
// new definition is returned untouched.
func LinkColumns(oldTable, newTable *model.Table) *model.Table {
	if oldTable == nil || newTable == nil {
		return newTable
	}

	oldByName := make(map[string]*model.TableColumn, len(oldTable.Columns))
	for i := range oldTable.Columns {
		oldByName[oldTable.Columns[i].Name] = &oldTable.Columns[i]
	}

	for i := range newTable.Columns {
		column := &newTable.Columns[i]
		if column.Old != nil {
			// Caller already supplied the prior state (e.g. a rename)
			continue
		}
		if prior, ok := oldByName[column.Name]; ok {
			column.Old = prior
		}
	}
	return newTable
}
