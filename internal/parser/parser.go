// Package parser turns decoded source bytes into a header and string rows.
package parser

import (
	"errors"
	"io"
)

// ErrNotTabular is returned (wrapped) when the input has no header row or its
// rows do not line up with the header.
var ErrNotTabular = errors.New("not tabular")

// Table is a parsed header plus rows of raw cell text. Every row has exactly
// len(Header) fields.
type Table struct {
	Header []string
	Rows   [][]string
}

type Parser interface {
	Parse(r io.Reader) (*Table, error)
}
