package builtin

import (
	"context"
	"strings"

	"cleanload/internal/dataset"
)

// Standardize lower-cases and trims the named columns. Columns that are not
// text, or that the dataset lacks, are left alone. Applying it twice changes
// nothing the second time.
type Standardize struct {
	Columns []string
}

func (Standardize) Name() string { return "standardize" }

func (s Standardize) Apply(_ context.Context, ds *dataset.Dataset) (Result, error) {
	var res Result
	for _, name := range s.Columns {
		col, ok := ds.Column(name)
		if !ok || col.Kind != dataset.Text {
			continue
		}
		for i, v := range col.Cells {
			if v.IsMissing() {
				continue
			}
			col.Cells[i] = dataset.TextValue(strings.TrimSpace(strings.ToLower(v.Str())))
		}
		res.ColumnsStandardized = append(res.ColumnsStandardized, name)
	}
	return res, nil
}
