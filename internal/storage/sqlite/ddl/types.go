package ddl

import (
	"strings"

	gddl "cleanload/internal/ddl"
)

// MapType maps a logical type into a SQLite column type.
//
// SQLite is dynamically typed, so the mapping picks affinities:
//   - integer-ish types -> INTEGER
//   - boolean          -> INTEGER (0/1)
//   - float/double     -> REAL
//   - date/time        -> TEXT (ISO-8601)
//   - others           -> TEXT
//
// Decimal data maps to REAL rather than NUMERIC: NUMERIC affinity would store
// 50000.0 as the integer 50000.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", gddl.TypeInt:
		return "INTEGER"
	case gddl.TypeBool, "boolean":
		return "INTEGER"
	case "float", gddl.TypeDouble, "real", "numeric", "decimal":
		return "REAL"
	case gddl.TypeDate, gddl.TypeTimestamp, "datetime", "timestamptz":
		return "TEXT"
	case "blob", "bytes":
		return "BLOB"
	default:
		return "TEXT"
	}
}
