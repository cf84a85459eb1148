package builtin

import (
	"context"
	"fmt"

	"github.com/zeebo/xxh3"

	"cleanload/internal/dataset"
)

// DeDup removes duplicate rows and keeps the earliest occurrence of each.
//
// Two rows are duplicates when every key cell is equal, kind included, so the
// integer 1 and the text "1" differ. With no Keys the whole row is the key,
// which is the pipeline's policy. Rows are fingerprinted with xxh3 and
// fingerprint matches are confirmed cell by cell, so a hash collision never
// drops a distinct row.
type DeDup struct {
	// Keys restricts the comparison to these columns. Empty means all.
	Keys []string
}

func (DeDup) Name() string { return "dedup" }

func (d DeDup) Apply(_ context.Context, ds *dataset.Dataset) (Result, error) {
	cols, err := d.keyColumns(ds)
	if err != nil {
		return Result{}, err
	}

	n := ds.Len()
	keep := make([]bool, n)
	// fingerprint -> indexes of kept rows carrying it
	firsts := make(map[xxh3.Uint128][]int, n)
	var buf []byte
	for i := 0; i < n; i++ {
		buf = buf[:0]
		for _, c := range cols {
			buf = c.Cells[i].AppendKey(buf)
		}
		h := xxh3.Hash128(buf)

		dup := false
		for _, j := range firsts[h] {
			if sameRow(cols, i, j) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		keep[i] = true
		firsts[h] = append(firsts[h], i)
	}
	return Result{RowsRemoved: ds.KeepRows(keep)}, nil
}

func (d DeDup) keyColumns(ds *dataset.Dataset) ([]*dataset.Column, error) {
	if len(d.Keys) == 0 {
		return ds.Columns(), nil
	}
	cols := make([]*dataset.Column, 0, len(d.Keys))
	for _, k := range d.Keys {
		c, ok := ds.Column(k)
		if !ok {
			return nil, fmt.Errorf("dedup: key column %q not in dataset", k)
		}
		cols = append(cols, c)
	}
	return cols, nil
}

func sameRow(cols []*dataset.Column, i, j int) bool {
	for _, c := range cols {
		if !c.Cells[i].Equal(c.Cells[j]) {
			return false
		}
	}
	return true
}
