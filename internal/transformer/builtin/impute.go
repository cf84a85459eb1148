package builtin

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"cleanload/internal/dataset"
	"cleanload/internal/stats"
)

// Impute fills missing cells and then drops every row that still has one.
//
// The Numeric column is coerced to numbers first: text that does not parse
// becomes Missing, booleans become 1 or 0, dates become Missing. Its Missing
// cells are then filled with the median of the present values, computed once
// before any fill. The column ends up integer only if every value is integral
// and nothing was filled; otherwise it is decimal.
//
// Each Categorical column is filled with its mode. Ties go to the value that
// appears first. A column with no present value gets a warning and stays as it
// is.
//
// Named columns that the dataset lacks are skipped.
type Impute struct {
	Numeric     string
	Categorical []string
}

func (Impute) Name() string { return "impute" }

func (m Impute) Apply(_ context.Context, ds *dataset.Dataset) (Result, error) {
	var res Result

	if m.Numeric != "" {
		if col, ok := ds.Column(m.Numeric); ok {
			filled, err := imputeMedian(ds, col)
			if err != nil {
				return res, err
			}
			res.CellsImputed += filled
		}
	}

	for _, name := range m.Categorical {
		col, ok := ds.Column(name)
		if !ok || col.MissingCount() == 0 {
			continue
		}
		filled, ok := imputeMode(col)
		if !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: no mode available, %d missing cells left", name, col.MissingCount()))
			continue
		}
		res.CellsImputed += filled
	}

	keep := make([]bool, ds.Len())
	for i := range keep {
		keep[i] = !ds.RowHasMissing(i)
	}
	res.RowsRemoved = ds.KeepRows(keep)
	return res, nil
}

// imputeMedian replaces col with its numeric, median-filled version and
// returns the number of cells filled.
func imputeMedian(ds *dataset.Dataset, col *dataset.Column) (int, error) {
	cells := make([]dataset.Value, len(col.Cells))
	present := make([]float64, 0, len(col.Cells))
	integral := true
	for i, v := range col.Cells {
		f, ok := toNumber(v)
		if !ok {
			continue
		}
		if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			integral = false
		}
		cells[i] = dataset.DecimalValue(f)
		present = append(present, f)
	}

	filled := 0
	if median, ok := stats.Median(present); ok {
		for i := range cells {
			if cells[i].IsMissing() {
				cells[i] = dataset.DecimalValue(median)
				filled++
			}
		}
	}

	kind := dataset.Decimal
	if integral && filled == 0 && len(present) == len(cells) && len(cells) > 0 {
		kind = dataset.Integer
		for i, v := range cells {
			cells[i] = dataset.IntValue(int64(v.Float()))
		}
	}
	if err := ds.Replace(dataset.Column{Name: col.Name, Kind: kind, Cells: cells}); err != nil {
		return 0, fmt.Errorf("impute %s: %w", col.Name, err)
	}
	return filled, nil
}

// toNumber coerces one cell. ok is false for cells that become Missing.
func toNumber(v dataset.Value) (float64, bool) {
	switch v.Kind() {
	case dataset.Integer, dataset.Decimal:
		return v.Number()
	case dataset.Boolean:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	case dataset.Text:
		s := strings.TrimSpace(v.Str())
		if strings.ContainsAny(s, "xXpP") {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// imputeMode fills col's Missing cells in place with the most frequent
// present value. ok is false when the column has no present value.
func imputeMode(col *dataset.Column) (filled int, ok bool) {
	keys := make([]string, 0, len(col.Cells))
	pos := make([]int, 0, len(col.Cells))
	var buf []byte
	for i, v := range col.Cells {
		if v.IsMissing() {
			continue
		}
		buf = v.AppendKey(buf[:0])
		keys = append(keys, string(buf))
		pos = append(pos, i)
	}
	idx, ok := stats.Mode(keys)
	if !ok {
		return 0, false
	}
	mode := col.Cells[pos[idx]]
	for i, v := range col.Cells {
		if v.IsMissing() {
			col.Cells[i] = mode
			filled++
		}
	}
	return filled, true
}
