package ddl

import (
	"cleanload/internal/dataset"
	gddl "cleanload/internal/ddl"
)

// FromDataset infers a SQLite table definition for ds.
func FromDataset(fqn string, ds *dataset.Dataset) (gddl.TableDef, error) {
	return gddl.FromDataset(fqn, ds, MapType)
}
