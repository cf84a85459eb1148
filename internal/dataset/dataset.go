// Package dataset holds the in-memory table passed between pipeline stages.
//
// A Dataset is an ordered list of named, typed columns of equal length. Each
// cell is either a value of its column's Kind or Missing. The package enforces
// the rectangular and homogeneous invariants at construction time and on every
// column replacement; stages never see a ragged table.
package dataset

import (
	"fmt"
	"slices"
)

// Column is one named, typed column. Cells holds one entry per row.
type Column struct {
	Name  string
	Kind  Kind
	Cells []Value
}

// MissingCount reports how many cells of the column are Missing.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Cells {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

func (c Column) validate() error {
	if c.Name == "" {
		return fmt.Errorf("dataset: column with empty name")
	}
	if c.Kind == Missing {
		return fmt.Errorf("dataset: column %q has no kind", c.Name)
	}
	for i, v := range c.Cells {
		if !v.IsMissing() && v.Kind() != c.Kind {
			return fmt.Errorf("dataset: column %q row %d: %s cell in %s column", c.Name, i, v.Kind(), c.Kind)
		}
	}
	return nil
}

// Dataset is a rectangular table. The zero value is an empty table with no
// columns.
type Dataset struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New builds a Dataset from columns. It rejects duplicate or empty names,
// cells whose kind disagrees with their column, and columns of unequal length.
// The cell slices are copied.
func New(columns ...Column) (*Dataset, error) {
	d := &Dataset{index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if _, dup := d.index[c.Name]; dup {
			return nil, fmt.Errorf("dataset: duplicate column %q", c.Name)
		}
		if i == 0 {
			d.rows = len(c.Cells)
		} else if len(c.Cells) != d.rows {
			return nil, fmt.Errorf("dataset: column %q has %d rows, want %d", c.Name, len(c.Cells), d.rows)
		}
		d.index[c.Name] = i
		d.cols = append(d.cols, &Column{Name: c.Name, Kind: c.Kind, Cells: slices.Clone(c.Cells)})
	}
	return d, nil
}

// Len reports the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return d.rows
}

// Width reports the number of columns.
func (d *Dataset) Width() int {
	if d == nil {
		return 0
	}
	return len(d.cols)
}

// Empty reports whether the dataset has no rows or no columns.
func (d *Dataset) Empty() bool { return d.Len() == 0 || d.Width() == 0 }

// Names returns the column names in order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name
	}
	return out
}

// Kinds returns the column kinds in order.
func (d *Dataset) Kinds() []Kind {
	out := make([]Kind, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Kind
	}
	return out
}

// Columns returns the columns in order. The returned pointers alias the
// dataset; callers that mutate cells must own the dataset (see Clone).
func (d *Dataset) Columns() []*Column { return slices.Clone(d.cols) }

// Column looks a column up by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

// Row returns a copy of row i in column order.
func (d *Dataset) Row(i int) []Value {
	out := make([]Value, len(d.cols))
	for j, c := range d.cols {
		out[j] = c.Cells[i]
	}
	return out
}

// RowHasMissing reports whether any cell of row i is Missing.
func (d *Dataset) RowHasMissing(i int) bool {
	for _, c := range d.cols {
		if c.Cells[i].IsMissing() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy that shares no cell storage with d.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{index: make(map[string]int, len(d.cols)), rows: d.rows}
	for i, c := range d.cols {
		out.index[c.Name] = i
		out.cols = append(out.cols, &Column{Name: c.Name, Kind: c.Kind, Cells: slices.Clone(c.Cells)})
	}
	return out
}

// Replace swaps the named column for c, which must keep the name and the row
// count. It is how stages change a column's kind (for example integer to
// decimal after imputation).
func (d *Dataset) Replace(c Column) error {
	i, ok := d.index[c.Name]
	if !ok {
		return fmt.Errorf("dataset: no column %q", c.Name)
	}
	if err := c.validate(); err != nil {
		return err
	}
	if len(c.Cells) != d.rows {
		return fmt.Errorf("dataset: column %q has %d rows, want %d", c.Name, len(c.Cells), d.rows)
	}
	d.cols[i] = &Column{Name: c.Name, Kind: c.Kind, Cells: c.Cells}
	return nil
}

// KeepRows retains the rows whose keep entry is true, preserving order, and
// returns the number of rows removed. keep must have Len entries.
func (d *Dataset) KeepRows(keep []bool) int {
	if len(keep) != d.rows {
		panic(fmt.Sprintf("dataset: KeepRows mask has %d entries, want %d", len(keep), d.rows))
	}
	kept := 0
	for _, k := range keep {
		if k {
			kept++
		}
	}
	if kept == d.rows {
		return 0
	}
	for _, c := range d.cols {
		out := c.Cells[:0]
		for i, v := range c.Cells {
			if keep[i] {
				out = append(out, v)
			}
		}
		clear(c.Cells[len(out):])
		c.Cells = out
	}
	removed := d.rows - kept
	d.rows = kept
	return removed
}

// MissingCount reports the number of Missing cells across the table.
func (d *Dataset) MissingCount() int {
	n := 0
	for _, c := range d.cols {
		n += c.MissingCount()
	}
	return n
}

// Equal reports whether both tables have the same columns (names, kinds and
// order) and equal cells row by row.
func (d *Dataset) Equal(o *Dataset) bool {
	if d.Len() != o.Len() || d.Width() != o.Width() {
		return false
	}
	for i, c := range d.cols {
		oc := o.cols[i]
		if c.Name != oc.Name || c.Kind != oc.Kind {
			return false
		}
		for r := range c.Cells {
			if !c.Cells[r].Equal(oc.Cells[r]) {
				return false
			}
		}
	}
	return true
}
