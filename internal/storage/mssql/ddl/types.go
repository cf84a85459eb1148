package ddl

import (
	"strings"

	"cleanload/internal/dataset"
	gddl "cleanload/internal/ddl"
)

// MapType maps a logical type string into a SQL Server column type. Unknown
// or empty kinds fall back to NVARCHAR(MAX).
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", gddl.TypeInt:
		return "BIGINT"
	case gddl.TypeBool, "boolean":
		return "BIT"
	case gddl.TypeDate:
		return "DATE"
	case gddl.TypeTimestamp, "datetime", "timestamptz":
		return "DATETIME2"
	case gddl.TypeDouble, "float":
		return "FLOAT"
	case "numeric", "decimal":
		return "DECIMAL(38, 10)"
	case "uuid":
		return "UNIQUEIDENTIFIER"
	default:
		return "NVARCHAR(MAX)"
	}
}

// FromDataset infers a SQL Server table definition for ds.
func FromDataset(fqn string, ds *dataset.Dataset) (gddl.TableDef, error) {
	return gddl.FromDataset(fqn, ds, MapType)
}
