package sqlbuilder

import (
	"strings"
	"testing"

	"catalog-gateway/internal/model"
)

func TestPostgreSQLBuildCreateTable(t *testing.T) {
	b := &PostgreSQLBuilder{}
	table := &model.Table{
		Name:       "user",
		SchemaName: "public",
		Comment:    "user table",
		Columns: []model.TableColumn{
			{Name: "id", Type: "bigint", AutoIncrement: true},
			{Name: "name", Type: "varchar", Length: 64, Comment: "user name"},
			{Name: "email", Type: "varchar(128)", Nullable: true},
		},
		Indexes: []model.TableIndex{
			{Name: "user_pkey", Type: model.IndexTypePrimary, Columns: []string{"id"}},
			{Name: "uk_name", Unique: true, Columns: []string{"name"}},
		},
	}

	got := b.BuildCreateTable(table)

	for _, want := range []string{
		"CREATE TABLE \"public\".\"user\" (",
		"\"id\" bigserial NOT NULL",
		"\"name\" varchar(64) NOT NULL",
		"\"email\" varchar(128)",
		"PRIMARY KEY (\"id\")",
		"CREATE UNIQUE INDEX \"uk_name\" ON \"public\".\"user\" (\"name\");",
		"COMMENT ON TABLE \"public\".\"user\" IS 'user table';",
		"COMMENT ON COLUMN \"public\".\"user\".\"name\" IS 'user name';",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "\"email\" varchar(128) NOT NULL") {
		t.Errorf("nullable column rendered NOT NULL:\n%s", got)
	}
}

func TestPostgreSQLBuildModifyTable(t *testing.T) {
	b := &PostgreSQLBuilder{}
	oldTable := &model.Table{
		Name: "user",
		Columns: []model.TableColumn{
			{Name: "id", Type: "bigint"},
			{Name: "full_name", Type: "varchar(64)"},
			{Name: "age", Type: "integer", Nullable: true},
			{Name: "legacy", Type: "text", Nullable: true},
		},
	}
	newTable := &model.Table{
		Name: "user",
		Columns: []model.TableColumn{
			{Name: "id", Type: "bigint", Old: &model.TableColumn{Name: "id", Type: "bigint"}},
			{Name: "display_name", Type: "varchar(64)", Old: &model.TableColumn{Name: "full_name", Type: "varchar(64)"}},
			{Name: "age", Type: "integer", Old: &model.TableColumn{Name: "age", Type: "integer", Nullable: true}},
			{Name: "email", Type: "varchar(128)", Nullable: true, DefaultValue: strptr("nobody@example.com")},
		},
	}

	got := b.BuildModifyTable(oldTable, newTable)

	for _, want := range []string{
		"ALTER TABLE \"user\"",
		"RENAME COLUMN \"full_name\" TO \"display_name\"",
		"ALTER COLUMN \"age\" SET NOT NULL",
		"ADD COLUMN \"email\" varchar(128) DEFAULT 'nobody@example.com'",
		"DROP COLUMN \"legacy\"",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "\"id\"") {
		t.Errorf("unchanged column touched:\n%s", got)
	}
}

func TestPostgreSQLBuildModifyTableDefaultTransitions(t *testing.T) {
	b := &PostgreSQLBuilder{}
	oldTable := &model.Table{
		Name: "settings",
		Columns: []model.TableColumn{
			{Name: "retries", Type: "integer", DefaultValue: strptr("3")},
			{Name: "mode", Type: "varchar(16)"},
		},
	}
	newTable := &model.Table{
		Name: "settings",
		Columns: []model.TableColumn{
			{Name: "retries", Type: "integer", Old: &model.TableColumn{Name: "retries", Type: "integer", DefaultValue: strptr("3")}},
			{Name: "mode", Type: "varchar(16)", DefaultValue: strptr("auto"), Old: &model.TableColumn{Name: "mode", Type: "varchar(16)"}},
		},
	}

	got := b.BuildModifyTable(oldTable, newTable)

	if !strings.Contains(got, "ALTER COLUMN \"retries\" DROP DEFAULT") {
		t.Errorf("missing DROP DEFAULT in:\n%s", got)
	}
	if !strings.Contains(got, "ALTER COLUMN \"mode\" SET DEFAULT 'auto'") {
		t.Errorf("missing SET DEFAULT in:\n%s", got)
	}
	if strings.Contains(got, "NOT NULL") {
		t.Errorf("unexpected nullability clause:\n%s", got)
	}
}
