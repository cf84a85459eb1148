// Package ddl renders the SQLite statements used by the full-replace load:
// CREATE TABLE for the staging copy, DROP of the old table, RENAME of the
// staging copy into place, and the row INSERT.
//
// Identifiers are double-quoted with embedded quotes doubled. A dotted FQN
// such as "main.events" is quoted segment by segment.
package ddl

import (
	"fmt"
	"strings"

	gddl "cleanload/internal/ddl"
)

// BuildCreateTableSQL returns a CREATE TABLE statement for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	sql, err := gddl.BuildCreateTableSQL(t, quoteIdent)
	if err != nil {
		return "", fmt.Errorf("sqlite %w", err)
	}
	return sql, nil
}

// DropTableSQL drops fqn when it exists.
func DropTableSQL(fqn string) string {
	return "DROP TABLE IF EXISTS " + gddl.QuoteFQN(fqn, quoteIdent)
}

// RenameTableSQL renames from to the table part of to. SQLite cannot move a
// table across schemas, so only the last segment of to is used.
func RenameTableSQL(from, to string) string {
	_, name := gddl.SplitFQN(to)
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", gddl.QuoteFQN(from, quoteIdent), quoteIdent(name))
}

// InsertSQL returns INSERT INTO fqn (cols...) VALUES (?, ...).
func InsertSQL(fqn string, cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		gddl.QuoteFQN(fqn, quoteIdent),
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
	)
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
