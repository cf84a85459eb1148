// Package csv parses delimited text with a header row into a parser.Table.
//
// Parsing is strict: a malformed quote or a row whose width differs from the
// header fails the whole input with parser.ErrNotTabular. The extractor relies
// on that to reject a candidate encoding and try the next one.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cleanload/internal/parser"
)

// Options configures the parser. The zero value reads comma-separated input
// and keeps header names as written (minus surrounding space and BOM).
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// NormalizeHeaders lower-cases header names and replaces spaces with
	// underscores.
	NormalizeHeaders bool

	// HeaderMap renames source headers (after trimming) to canonical names.
	// It wins over NormalizeHeaders.
	HeaderMap map[string]string
}

// Parser parses CSV input according to Options. It holds no per-input state.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads the whole input. Blank lines are skipped.
func (p *Parser) Parse(r io.Reader) (*parser.Table, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.ReuseRecord = false

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: no header row: %w", parser.ErrNotTabular)
	}
	if err != nil {
		return nil, fmt.Errorf("csv: header: %v: %w", err, parser.ErrNotTabular)
	}
	header := p.normalizeHeaders(StripHeaderBOM(h))

	var rows [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Width mismatches surface here too since FieldsPerRecord is
			// pinned to the header width after the first Read.
			return nil, fmt.Errorf("csv: %v: %w", err, parser.ErrNotTabular)
		}
		rows = append(rows, row)
	}
	return &parser.Table{Header: header, Rows: rows}, nil
}

// normalizeHeaders trims names, applies HeaderMap or NormalizeHeaders, names
// blank headers col_N and suffixes repeats with .1, .2 and so on.
func (p *Parser) normalizeHeaders(h []string) []string {
	res := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if m, ok := p.opt.HeaderMap[c]; ok {
			c = m
		} else if p.opt.NormalizeHeaders {
			c = strings.ReplaceAll(strings.ToLower(c), " ", "_")
		}
		if c == "" {
			c = "col_" + strconv.Itoa(i)
		}
		if n, dup := seen[c]; dup {
			base := c
			for {
				n++
				c = base + "." + strconv.Itoa(n)
				if _, taken := seen[c]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[c] = 0
		res[i] = c
	}
	return res
}
