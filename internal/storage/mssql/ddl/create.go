// Package ddl provides MSSQL-specific helpers for the statements used by the
// full-replace load.
//
// Identifiers use SQL Server bracket quoting: [schema].[table], [col].
// T-SQL has no CREATE TABLE IF NOT EXISTS, so existence checks go through
// OBJECT_ID.
package ddl

import (
	"fmt"
	"strings"

	gddl "cleanload/internal/ddl"
)

// BuildCreateTableSQL returns a CREATE TABLE statement for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	sql, err := gddl.BuildCreateTableSQL(t, QuoteIdent)
	if err != nil {
		return "", fmt.Errorf("mssql %w", err)
	}
	return sql, nil
}

// DropTableSQL drops fqn when it exists as a user table.
//
//	IF OBJECT_ID(N'[dbo].[t]', N'U') IS NOT NULL DROP TABLE [dbo].[t]
func DropTableSQL(fqn string) string {
	q := QuoteFQN(fqn)
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL DROP TABLE %s", strings.ReplaceAll(q, "'", "''"), q)
}

// RenameTable returns an sp_rename call and its arguments moving from to the
// table part of to. sp_rename keeps the object in its schema.
func RenameTable(from, to string) (string, []any) {
	_, name := gddl.SplitFQN(to)
	return "EXEC sp_rename @p1, @p2", []any{QuoteFQN(from), name}
}

// QuoteIdent quotes a single identifier segment, escaping closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// QuoteFQN quotes a possibly schema-qualified table name:
//
//	"dbo.Users"   -> [dbo].[Users]
//	"Users"       -> [Users]
func QuoteFQN(fqn string) string { return gddl.QuoteFQN(fqn, QuoteIdent) }
