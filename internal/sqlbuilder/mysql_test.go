package sqlbuilder

import (
	"strings"
	"testing"

	"catalog-gateway/internal/model"
)

func strptr(s string) *string { return &s }

func TestMySQLBuildCreateTable(t *testing.T) {
	b := &MySQLBuilder{}
	table := &model.Table{
		Name:    "user",
		Comment: "user table",
		Columns: []model.TableColumn{
			{Name: "id", Type: "bigint", AutoIncrement: true, Comment: "primary key"},
			{Name: "name", Type: "varchar", Length: 64},
			{Name: "email", Type: "varchar(128)", Nullable: true, DefaultValue: strptr("NULL")},
			{Name: "created_at", Type: "datetime", DefaultValue: strptr("CURRENT_TIMESTAMP")},
		},
		Indexes: []model.TableIndex{
			{Name: "PRIMARY", Type: model.IndexTypePrimary, Columns: []string{"id"}},
			{Name: "uk_name", Type: model.IndexTypeUnique, Unique: true, Columns: []string{"name"}},
		},
	}

	got := b.BuildCreateTable(table)

	for _, want := range []string{
		"CREATE TABLE `user` (",
		"`id` bigint NOT NULL AUTO_INCREMENT COMMENT 'primary key'",
		"`name` varchar(64) NOT NULL",
		"`email` varchar(128) DEFAULT NULL",
		"`created_at` datetime NOT NULL DEFAULT CURRENT_TIMESTAMP",
		"PRIMARY KEY (`id`)",
		"UNIQUE KEY `uk_name` (`name`)",
		"COMMENT='user table';",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Count(got, ";") != 1 {
		t.Errorf("expected a single statement, got:\n%s", got)
	}
}

func TestMySQLBuildModifyTableAllClauseKinds(t *testing.T) {
	b := &MySQLBuilder{}
	oldTable := &model.Table{
		Name: "user",
		Columns: []model.TableColumn{
			{Name: "id", Type: "bigint"},
			{Name: "full_name", Type: "varchar(64)"},
			{Name: "age", Type: "int", Nullable: true},
			{Name: "legacy", Type: "text", Nullable: true},
		},
	}
	newTable := &model.Table{
		Name: "user",
		Columns: []model.TableColumn{
			{Name: "id", Type: "bigint", Old: &model.TableColumn{Name: "id", Type: "bigint"}},
			{Name: "display_name", Type: "varchar(64)", Old: &model.TableColumn{Name: "full_name", Type: "varchar(64)"}},
			{Name: "age", Type: "smallint", Nullable: true, Old: &model.TableColumn{Name: "age", Type: "int", Nullable: true}},
			{Name: "email", Type: "varchar(128)", Nullable: true},
		},
	}

	got := b.BuildModifyTable(oldTable, newTable)

	for _, want := range []string{
		"ALTER TABLE `user`",
		"CHANGE COLUMN `full_name` `display_name` varchar(64)",
		"MODIFY COLUMN `age` smallint",
		"ADD COLUMN `email` varchar(128)",
		"DROP COLUMN `legacy`",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "MODIFY COLUMN `id`") {
		t.Errorf("unchanged column altered:\n%s", got)
	}
	if strings.Count(got, ";") != 1 || !strings.HasSuffix(got, ";") {
		t.Errorf("expected a single terminated statement:\n%s", got)
	}
}

func TestMySQLBuildModifyTableRenameCarryForwardNotDropped(t *testing.T) {
	b := &MySQLBuilder{}
	oldTable := &model.Table{
		Name:    "user",
		Columns: []model.TableColumn{{Name: "full_name", Type: "varchar(64)"}},
	}
	newTable := &model.Table{
		Name: "user",
		Columns: []model.TableColumn{
			{Name: "display_name", Type: "varchar(64)", Old: &model.TableColumn{Name: "full_name", Type: "varchar(64)"}},
		},
	}

	got := b.BuildModifyTable(oldTable, newTable)
	if strings.Contains(got, "DROP COLUMN") {
		t.Errorf("renamed column must not also be dropped:\n%s", got)
	}
}

func TestMySQLBuildModifyTableIndexes(t *testing.T) {
	b := &MySQLBuilder{}
	oldTable := &model.Table{
		Name: "user",
		Columns: []model.TableColumn{
			{Name: "id", Type: "bigint"},
		},
		Indexes: []model.TableIndex{
			{Name: "idx_a", Columns: []string{"a"}},
			{Name: "idx_b", Columns: []string{"b"}},
			{Name: "idx_gone", Columns: []string{"c"}},
		},
	}
	newTable := &model.Table{
		Name: "user",
		Columns: []model.TableColumn{
			{Name: "id", Type: "bigint", Old: &model.TableColumn{Name: "id", Type: "bigint"}},
		},
		Indexes: []model.TableIndex{
			{Name: "idx_a", Columns: []string{"a"}},                         // unchanged
			{Name: "idx_b", Unique: true, Columns: []string{"b"}},           // redefined
			{Name: "idx_new", Columns: []string{"d"}},                       // added
		},
	}

	got := b.BuildModifyTable(oldTable, newTable)

	if strings.Contains(got, "`idx_a`") {
		t.Errorf("unchanged index touched:\n%s", got)
	}
	for _, want := range []string{
		"DROP INDEX `idx_b`",
		"ADD UNIQUE KEY `idx_b` (`b`)",
		"ADD KEY `idx_new` (`d`)",
		"DROP INDEX `idx_gone`",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestMySQLBuildModifyTableNoChanges(t *testing.T) {
	b := &MySQLBuilder{}
	table := &model.Table{
		Name: "user",
		Columns: []model.TableColumn{
			{Name: "id", Type: "bigint", Old: &model.TableColumn{Name: "id", Type: "bigint"}},
		},
	}

	if got := b.BuildModifyTable(table, table); got != "" {
		t.Errorf("expected no statement for identical definitions, got:\n%s", got)
	}
}

func TestDefaultLiteral(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"NULL", "NULL"},
		{"CURRENT_TIMESTAMP", "CURRENT_TIMESTAMP"},
		{"CURRENT_TIMESTAMP(6)", "CURRENT_TIMESTAMP(6)"},
		{"0", "0"},
		{"-1.5", "-1.5"},
		{"active", "'active'"},
		{"'quoted'", "'quoted'"},
		{"it's", "'it''s'"},
	}
	for _, tt := range tests {
		if got := defaultLiteral(tt.in); got != tt.want {
			t.Errorf("defaultLiteral(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestForDatabaseType(t *testing.T) {
	if _, err := ForDatabaseType(model.DatabaseTypeTiDB); err != nil {
		t.Errorf("expected a builder for the mysql family: %v", err)
	}
	if _, err := ForDatabaseType(model.DatabaseTypeOpenGauss); err != nil {
		t.Errorf("expected a builder for the postgresql family: %v", err)
	}
	if _, err := ForDatabaseType(model.DatabaseTypeOracle); err == nil {
		t.Error("expected no builder for the oracle family")
	}
}
