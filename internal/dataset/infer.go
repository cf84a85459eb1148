package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// missingTokens are the raw strings read as Missing. Matching is done on the
// whitespace-trimmed cell, so a blank cell is Missing too.
var missingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"-NaN": {},
	"-nan": {},
	"null": {},
	"NULL": {},
	"None": {},
	"#N/A": {},
	"#NA":  {},
	"<NA>": {},
}

// IsMissingToken reports whether raw denotes an absent value.
func IsMissingToken(raw string) bool {
	_, ok := missingTokens[strings.TrimSpace(raw)]
	return ok
}

// dateLayouts hold calendar dates without a time of day. Slash-separated
// day/month orders are left out on purpose: they are ambiguous per cell.
var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"02.01.2006",
	"2 Jan 2006",
	"02-Jan-2006",
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02 15:04:05 -0700",
}

// InferKind picks the narrowest kind that every non-missing value satisfies,
// in the order integer, boolean, decimal, date, text. A column with no
// non-missing values is text. For date columns the chosen layout is returned.
func InferKind(raw []string) (Kind, string) {
	vals := make([]string, 0, len(raw))
	for _, v := range raw {
		if !IsMissingToken(v) {
			vals = append(vals, strings.TrimSpace(v))
		}
	}
	if len(vals) == 0 {
		return Text, ""
	}
	if allMatch(vals, isInt) {
		return Integer, ""
	}
	if allMatch(vals, isBool) {
		return Boolean, ""
	}
	if allMatch(vals, isDecimal) {
		return Decimal, ""
	}
	if layout := commonLayout(vals); layout != "" {
		return Date, layout
	}
	return Text, ""
}

// ParseCell converts raw into a Value of kind k. Missing tokens always yield
// Missing. ok is false when raw is present but does not parse as k; the
// returned Value is then Missing.
func ParseCell(k Kind, layout, raw string) (v Value, ok bool) {
	if IsMissingToken(raw) {
		return Null(), true
	}
	s := strings.TrimSpace(raw)
	switch k {
	case Text:
		return TextValue(raw), true
	case Integer:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Null(), false
		}
		return IntValue(i), true
	case Decimal:
		f, err := parseFinite(s)
		if err != nil {
			return Null(), false
		}
		return DecimalValue(f), true
	case Boolean:
		b, err := parseBool(s)
		if err != nil {
			return Null(), false
		}
		return BoolValue(b), true
	case Date:
		if layout == "" {
			layout = time.DateOnly
		}
		t, err := time.Parse(layout, s)
		if err != nil {
			return Null(), false
		}
		return DateValue(t), true
	default:
		return Null(), false
	}
}

// FromRecords builds a Dataset from a header and string rows. Every row must
// have exactly len(header) fields. Column kinds are inferred per column.
func FromRecords(header []string, rows [][]string) (*Dataset, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("dataset: empty header")
	}
	for i, r := range rows {
		if len(r) != len(header) {
			return nil, fmt.Errorf("dataset: row %d has %d fields, want %d", i+1, len(r), len(header))
		}
	}
	cols := make([]Column, len(header))
	raw := make([]string, len(rows))
	for c, name := range header {
		for r, row := range rows {
			raw[r] = row[c]
		}
		kind, layout := InferKind(raw)
		cells := make([]Value, len(rows))
		for r, s := range raw {
			// Inference guarantees every present cell parses.
			cells[r], _ = ParseCell(kind, layout, s)
		}
		cols[c] = Column{Name: name, Kind: kind, Cells: cells}
	}
	return New(cols...)
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isBool(s string) bool {
	_, err := parseBool(s)
	return err == nil
}

func isDecimal(s string) bool {
	_, err := parseFinite(s)
	return err == nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes":
		return true, nil
	case "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

// parseFinite accepts decimal and scientific notation and rejects NaN, Inf
// and hex floats.
func parseFinite(s string) (float64, error) {
	if strings.ContainsAny(s, "xXpP") {
		return 0, fmt.Errorf("not a decimal: %q", s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite decimal: %q", s)
	}
	return f, nil
}

// commonLayout returns the first layout that parses every value, trying
// timestamps before dates.
func commonLayout(vals []string) string {
	for _, layouts := range [][]string{timestampLayouts, dateLayouts} {
	next:
		for _, layout := range layouts {
			for _, v := range vals {
				if _, err := time.Parse(layout, v); err != nil {
					continue next
				}
			}
			return layout
		}
	}
	return ""
}
