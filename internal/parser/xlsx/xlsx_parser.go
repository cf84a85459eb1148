// Package xlsx reads the first worksheet of an Excel workbook into a
// parser.Table.
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"cleanload/internal/parser"
)

// Options configures the parser.
type Options struct {
	// Sheet selects a worksheet by name. Empty means the first sheet.
	Sheet string
}

type Parser struct{ opt Options }

func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads the selected sheet. The first row is the header. Trailing empty
// cells that Excel omits are padded back to the header width; a row wider
// than the header is rejected.
func (p *Parser) Parse(r io.Reader) (*parser.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open: %v: %w", err, parser.ErrNotTabular)
	}
	defer f.Close()

	sheet := p.opt.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("xlsx: workbook has no sheets: %w", parser.ErrNotTabular)
		}
		sheet = sheets[0]
	}
	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: read sheet %q: %w", sheet, err)
	}

	// Skip leading blank rows, as the csv reader skips blank lines.
	for len(all) > 0 && blank(all[0]) {
		all = all[1:]
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("xlsx: sheet %q has no header row: %w", sheet, parser.ErrNotTabular)
	}

	header := make([]string, len(all[0]))
	for i, h := range all[0] {
		header[i] = strings.TrimSpace(h)
		if header[i] == "" {
			header[i] = fmt.Sprintf("col_%d", i)
		}
	}
	rows := make([][]string, 0, len(all)-1)
	for i, row := range all[1:] {
		if blank(row) {
			continue
		}
		if len(row) > len(header) {
			return nil, fmt.Errorf("xlsx: sheet %q row %d has %d cells, header has %d: %w",
				sheet, i+2, len(row), len(header), parser.ErrNotTabular)
		}
		full := make([]string, len(header))
		copy(full, row)
		rows = append(rows, full)
	}
	return &parser.Table{Header: header, Rows: rows}, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
