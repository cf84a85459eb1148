package ddl

import (
	"strings"

	"cleanload/internal/dataset"
	gddl "cleanload/internal/ddl"
)

// MapType normalizes a loosely-specified logical type into a Postgres SQL type.
//
//	"int"/"integer"/"bigint"   -> BIGINT
//	"bool"/"boolean"           -> BOOLEAN
//	"double"/"float"/"real"    -> DOUBLE PRECISION
//	"numeric"/"decimal"        -> NUMERIC
//	"date"                     -> DATE
//	"timestamp"/"timestamptz"  -> TIMESTAMPTZ
//	everything else            -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", gddl.TypeInt:
		return "BIGINT"
	case gddl.TypeBool, "boolean":
		return "BOOLEAN"
	case gddl.TypeDouble, "float", "real":
		return "DOUBLE PRECISION"
	case "numeric", "decimal":
		return "NUMERIC"
	case gddl.TypeDate:
		return "DATE"
	case gddl.TypeTimestamp, "timestamptz":
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

// FromDataset infers a Postgres table definition for ds.
func FromDataset(fqn string, ds *dataset.Dataset) (gddl.TableDef, error) {
	return gddl.FromDataset(fqn, ds, MapType)
}
