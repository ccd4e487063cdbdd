package service

import (
	"fmt"

	"catalog-gateway/internal/model"
)

// Per-dialect DDL samples surfaced in the table editor as starting templates.

var createTableExamples = map[model.Protocol]string{
	model.ProtocolMySQL: "CREATE TABLE `user` (\n" +
		"    `id` bigint NOT NULL AUTO_INCREMENT COMMENT 'primary key',\n" +
		"    `name` varchar(64) NOT NULL COMMENT 'user name',\n" +
		"    `email` varchar(128) DEFAULT NULL COMMENT 'email address',\n" +
		"    `created_at` datetime NOT NULL DEFAULT CURRENT_TIMESTAMP,\n" +
		"    PRIMARY KEY (`id`),\n" +
		"    UNIQUE KEY `uk_name` (`name`)\n" +
		") COMMENT='user table';",
	model.ProtocolPostgreSQL: "CREATE TABLE \"user\" (\n" +
		"    \"id\" bigserial NOT NULL,\n" +
		"    \"name\" varchar(64) NOT NULL,\n" +
		"    \"email\" varchar(128),\n" +
		"    \"created_at\" timestamp NOT NULL DEFAULT CURRENT_TIMESTAMP,\n" +
		"    PRIMARY KEY (\"id\")\n" +
		");\n" +
		"CREATE UNIQUE INDEX \"uk_name\" ON \"user\" (\"name\");\n" +
		"COMMENT ON TABLE \"user\" IS 'user table';",
	model.ProtocolOracle: "CREATE TABLE \"USER\" (\n" +
		"    \"ID\" NUMBER NOT NULL,\n" +
		"    \"NAME\" VARCHAR2(64) NOT NULL,\n" +
		"    \"EMAIL\" VARCHAR2(128),\n" +
		"    \"CREATED_AT\" DATE DEFAULT SYSDATE NOT NULL,\n" +
		"    PRIMARY KEY (\"ID\")\n" +
		");",
	model.ProtocolClickHouse: "CREATE TABLE user (\n" +
		"    id UInt64,\n" +
		"    name String,\n" +
		"    email Nullable(String),\n" +
		"    created_at DateTime DEFAULT now()\n" +
		") ENGINE = MergeTree()\n" +
		"ORDER BY id;",
}

var alterTableExamples = map[model.Protocol]string{
	model.ProtocolMySQL: "ALTER TABLE `user`\n" +
		"    ADD COLUMN `age` int DEFAULT NULL COMMENT 'age',\n" +
		"    MODIFY COLUMN `name` varchar(128) NOT NULL COMMENT 'user name',\n" +
		"    DROP COLUMN `email`;",
	model.ProtocolPostgreSQL: "ALTER TABLE \"user\"\n" +
		"    ADD COLUMN \"age\" integer,\n" +
		"    ALTER COLUMN \"name\" TYPE varchar(128),\n" +
		"    DROP COLUMN \"email\";",
	model.ProtocolOracle: "ALTER TABLE \"USER\"\n" +
		"    ADD (\"AGE\" NUMBER)\n" +
		"    MODIFY (\"NAME\" VARCHAR2(128));",
	model.ProtocolClickHouse: "ALTER TABLE user\n" +
		"    ADD COLUMN age Nullable(Int32),\n" +
		"    MODIFY COLUMN name String;",
}

// CreateTableExample returns a canned CREATE TABLE sample for a dialect
func (s *tableService) CreateTableExample(dbType model.DatabaseType) (string, error) {
	if example, ok := createTableExamples[model.GetProtocol(dbType)]; ok {
		return example, nil
	}
	return "", fmt.Errorf("no create table example for database type: %s", dbType)
}

// AlterTableExample returns a canned ALTER TABLE sample for a dialect
func (s *tableService) AlterTableExample(dbType model.DatabaseType) (string, error) {
	if example, ok := alterTableExamples[model.GetProtocol(dbType)]; ok {
		return example, nil
	}
	return "", fmt.Errorf("no alter table example for database type: %s", dbType)
}
