package ddl

import (
	"fmt"
	"strings"

	"cleanload/internal/dataset"
)

// Logical type names shared by the backend MapType functions.
const (
	TypeText      = "text"
	TypeInt       = "bigint"
	TypeDouble    = "double"
	TypeDate      = "date"
	TypeTimestamp = "timestamp"
	TypeBool      = "bool"
)

// LogicalType names the storage type for a dataset column. Date columns whose
// values all sit on midnight are calendar dates; any time of day makes the
// column a timestamp.
func LogicalType(c *dataset.Column) string {
	switch c.Kind {
	case dataset.Integer:
		return TypeInt
	case dataset.Decimal:
		return TypeDouble
	case dataset.Boolean:
		return TypeBool
	case dataset.Date:
		for _, v := range c.Cells {
			if v.IsMissing() {
				continue
			}
			t := v.Time()
			if h, m, s := t.Clock(); h != 0 || m != 0 || s != 0 || t.Nanosecond() != 0 {
				return TypeTimestamp
			}
		}
		return TypeDate
	default:
		return TypeText
	}
}

// FromDataset infers a table definition for ds. Column order follows the
// dataset; a column is nullable only when it still holds Missing cells.
func FromDataset(fqn string, ds *dataset.Dataset, mapType func(string) string) (TableDef, error) {
	if strings.TrimSpace(fqn) == "" {
		return TableDef{}, fmt.Errorf("ddl: table name is required")
	}
	if ds.Width() == 0 {
		return TableDef{}, fmt.Errorf("ddl: dataset has no columns")
	}
	cols := ds.Columns()
	defs := make([]ColumnDef, 0, len(cols))
	for _, c := range cols {
		defs = append(defs, ColumnDef{
			Name:     c.Name,
			SQLType:  mapType(LogicalType(c)),
			Nullable: c.MissingCount() > 0,
		})
	}
	return TableDef{FQN: fqn, Columns: defs}, nil
}
