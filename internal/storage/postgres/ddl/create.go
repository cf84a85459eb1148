// Package ddl contains Postgres-specific helpers for generating DDL.
//
// Identifiers are double-quoted with embedded quotes doubled; a dotted FQN
// is quoted segment by segment.
package ddl

import (
	"fmt"
	"strings"

	gddl "cleanload/internal/ddl"
)

// BuildCreateTableSQL builds a Postgres CREATE TABLE statement for t.
// Primary-key columns are always NOT NULL.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	sql, err := gddl.BuildCreateTableSQL(t, QuoteIdent)
	if err != nil {
		return "", fmt.Errorf("postgres %w", err)
	}
	return sql, nil
}

// DropTableSQL drops fqn when it exists.
func DropTableSQL(fqn string) string {
	return "DROP TABLE IF EXISTS " + gddl.QuoteFQN(fqn, QuoteIdent)
}

// RenameTableSQL renames from to the table part of to. Postgres keeps the
// table in its schema on RENAME, so from must live in the schema of to.
func RenameTableSQL(from, to string) string {
	_, name := gddl.SplitFQN(to)
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", gddl.QuoteFQN(from, QuoteIdent), QuoteIdent(name))
}

// QuoteIdent quotes a single identifier segment.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
