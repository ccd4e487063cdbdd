package service

import (
	"testing"

	"catalog-gateway/internal/model"
)

func TestLinkColumnsAttachesPriorState(t *testing.T) {
	oldTable := &model.Table{
		Name: "user",
		Columns: []model.TableColumn{
			{Name: "id", Type: "bigint"},
			{Name: "name", Type: "varchar(64)"},
			{Name: "legacy", Type: "text"},
		},
	}
	newTable := &model.Table{
		Name: "user",
		Columns: []model.TableColumn{
			{Name: "id", Type: "bigint"},
			{Name: "name", Type: "varchar(128)"},
			{Name: "email", Type: "varchar(128)"},
		},
	}

	LinkColumns(oldTable, newTable)

	if newTable.Columns[0].Old == nil || newTable.Columns[0].Old.Type != "bigint" {
		t.Error("expected id linked to its prior state")
	}
	if newTable.Columns[1].Old == nil || newTable.Columns[1].Old.Type != "varchar(64)" {
		t.Error("expected name linked to its prior state")
	}
	if newTable.Columns[2].Old != nil {
		t.Error("expected added column email to have nil prior state")
	}
}

func TestLinkColumnsNilOldTableIsCreateMode(t *testing.T) {
	newTable := &model.Table{
		Name:    "user",
		Columns: []model.TableColumn{{Name: "id", Type: "bigint"}},
	}

	result := LinkColumns(nil, newTable)

	if result != newTable {
		t.Fatal("expected the new definition returned unchanged")
	}
	if newTable.Columns[0].Old != nil {
		t.Error("expected no prior state in create mode")
	}
}

func TestLinkColumnsKeepsCallerSuppliedPriorState(t *testing.T) {
	oldTable := &model.Table{
		Name: "user",
		Columns: []model.TableColumn{
			{Name: "full_name", Type: "varchar(64)"},
		},
	}
	// Caller declared a rename by supplying the prior state directly
	newTable := &model.Table{
		Name: "user",
		Columns: []model.TableColumn{
			{Name: "display_name", Type: "varchar(64)", Old: &model.TableColumn{Name: "full_name", Type: "varchar(64)"}},
		},
	}

	LinkColumns(oldTable, newTable)

	if newTable.Columns[0].Old == nil || newTable.Columns[0].Old.Name != "full_name" {
		t.Error("expected caller-supplied prior state preserved")
	}
}
