// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to render it.
//
// The package does not assume a dialect. Renderers take an identifier quoting
// function; backend packages (internal/storage/<backend>/ddl) supply their own
// quoting and type mapping and wrap the helpers here.
//
// ColumnDef.Default is emitted as raw SQL; the caller is responsible for its
// dialect correctness.
package ddl

import (
	"fmt"
	"strings"
)

// QuoteFunc quotes a single identifier segment.
type QuoteFunc func(string) string

// Verbatim leaves identifiers untouched.
func Verbatim(id string) string { return id }

// QuoteFQN quotes a possibly schema-qualified name segment by segment.
// Empty segments are dropped, so "public..t" renders like "public.t".
func QuoteFQN(fqn string, quote QuoteFunc) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}

// BuildCreateTableSQL renders a CREATE TABLE statement from a TableDef.
//
// Rules:
//
//   - t.FQN must be non-empty.
//
//   - Each column must have a non-empty Name and SQLType.
//
//   - A column is rendered as:
//
//     <Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//
//     where NOT NULL is added when Nullable == false or the column is part of
//     the primary key.
//
//   - Primary-key columns are rendered as a separate PRIMARY KEY (...) clause
//     in column order.
//
// The statement never carries IF NOT EXISTS: callers that create a table
// expect it to be new.
func BuildCreateTableSQL(t TableDef, quote QuoteFunc) (string, error) {
	if quote == nil {
		quote = Verbatim
	}
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}

		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}

		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, quote(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n)",
		QuoteFQN(fqn, quote),
		strings.Join(cols, ",\n  "),
	), nil
}
