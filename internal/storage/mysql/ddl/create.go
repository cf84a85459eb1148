// Package ddl renders the MySQL statements used by the full-replace load.
//
// Identifiers are backtick-quoted with embedded backticks doubled. MySQL
// commits implicitly around DDL, so the swap relies on RENAME TABLE, which
// renames several tables in one atomic statement.
package ddl

import (
	"fmt"
	"strings"

	"cleanload/internal/dataset"
	gddl "cleanload/internal/ddl"
)

// MaxPlaceholders is the server limit on bind parameters per statement.
const MaxPlaceholders = 65535

// MapType maps a logical type into a MySQL column type.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", gddl.TypeInt:
		return "BIGINT"
	case gddl.TypeBool, "boolean":
		return "BOOLEAN"
	case gddl.TypeDouble, "float", "real":
		return "DOUBLE"
	case "numeric", "decimal":
		return "DECIMAL(38, 10)"
	case gddl.TypeDate:
		return "DATE"
	case gddl.TypeTimestamp, "datetime", "timestamptz":
		return "DATETIME(6)"
	default:
		return "LONGTEXT"
	}
}

// FromDataset infers a MySQL table definition for ds.
func FromDataset(fqn string, ds *dataset.Dataset) (gddl.TableDef, error) {
	return gddl.FromDataset(fqn, ds, MapType)
}

// BuildCreateTableSQL returns a CREATE TABLE statement for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	sql, err := gddl.BuildCreateTableSQL(t, QuoteIdent)
	if err != nil {
		return "", fmt.Errorf("mysql %w", err)
	}
	return sql, nil
}

// DropTableSQL drops fqn when it exists.
func DropTableSQL(fqn string) string {
	return "DROP TABLE IF EXISTS " + gddl.QuoteFQN(fqn, QuoteIdent)
}

// SwapSQL moves table aside to old and staging into its place in one
// statement.
func SwapSQL(table, staging, old string) string {
	return fmt.Sprintf("RENAME TABLE %s TO %s, %s TO %s",
		gddl.QuoteFQN(table, QuoteIdent), gddl.QuoteFQN(old, QuoteIdent),
		gddl.QuoteFQN(staging, QuoteIdent), gddl.QuoteFQN(table, QuoteIdent),
	)
}

// RenameSQL renames from to to.
func RenameSQL(from, to string) string {
	return fmt.Sprintf("RENAME TABLE %s TO %s", gddl.QuoteFQN(from, QuoteIdent), gddl.QuoteFQN(to, QuoteIdent))
}

// InsertSQL returns a multi-row INSERT for rows rows of cols.
func InsertSQL(fqn string, cols []string, rows int) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = QuoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", gddl.QuoteFQN(fqn, QuoteIdent), strings.Join(quoted, ", "))
	for i := 0; i < rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
	}
	return sb.String()
}

// QuoteIdent quotes a single identifier segment.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}
