package dataset

import (
	"encoding/binary"
	"math"
	"strconv"
	"time"
)

// Kind is the type of a column or of a single cell.
type Kind uint8

const (
	// Missing tags an absent cell. It is never a column kind.
	Missing Kind = iota
	Text
	Integer
	Decimal
	Date
	Boolean
)

// String returns the lower-case name used in logs and profiles.
func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Text:
		return "text"
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case Date:
		return "date"
	case Boolean:
		return "boolean"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single cell. The zero Value is Missing.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	t    time.Time
	b    bool
}

// Null returns a Missing cell.
func Null() Value { return Value{} }

// TextValue returns a text cell.
func TextValue(s string) Value { return Value{kind: Text, s: s} }

// IntValue returns an integer cell.
func IntValue(i int64) Value { return Value{kind: Integer, i: i} }

// DecimalValue returns a decimal cell. NaN is stored as Missing.
func DecimalValue(f float64) Value {
	if math.IsNaN(f) {
		return Null()
	}
	return Value{kind: Decimal, f: f}
}

// DateValue returns a date cell.
func DateValue(t time.Time) Value { return Value{kind: Date, t: t} }

// BoolValue returns a boolean cell.
func BoolValue(b bool) Value { return Value{kind: Boolean, b: b} }

// Kind reports the cell kind.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the cell is Missing.
func (v Value) IsMissing() bool { return v.kind == Missing }

// Str returns the text payload ("" for other kinds).
func (v Value) Str() string { return v.s }

// Int returns the integer payload (0 for other kinds).
func (v Value) Int() int64 { return v.i }

// Float returns the decimal payload (0 for other kinds).
func (v Value) Float() float64 { return v.f }

// Time returns the date payload (zero time for other kinds).
func (v Value) Time() time.Time { return v.t }

// Bool returns the boolean payload (false for other kinds).
func (v Value) Bool() bool { return v.b }

// Number returns the numeric payload of integer and decimal cells.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case Integer:
		return float64(v.i), true
	case Decimal:
		return v.f, true
	default:
		return 0, false
	}
}

// Any returns the payload as a plain Go value suitable for database drivers:
// string, int64, float64, time.Time, bool, or nil for Missing.
func (v Value) Any() any {
	switch v.kind {
	case Text:
		return v.s
	case Integer:
		return v.i
	case Decimal:
		return v.f
	case Date:
		return v.t
	case Boolean:
		return v.b
	default:
		return nil
	}
}

// String renders the cell for display. Missing renders as "<missing>".
func (v Value) String() string {
	switch v.kind {
	case Text:
		return v.s
	case Integer:
		return strconv.FormatInt(v.i, 10)
	case Decimal:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case Date:
		if h, m, s := v.t.Clock(); h == 0 && m == 0 && s == 0 && v.t.Nanosecond() == 0 {
			return v.t.Format(time.DateOnly)
		}
		return v.t.Format(time.RFC3339Nano)
	case Boolean:
		return strconv.FormatBool(v.b)
	default:
		return "<missing>"
	}
}

// Equal reports whether two cells have the same kind and payload. Two Missing
// cells are equal to each other.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Text:
		return v.s == o.s
	case Integer:
		return v.i == o.i
	case Decimal:
		return v.f == o.f
	case Date:
		return v.t.Equal(o.t)
	case Boolean:
		return v.b == o.b
	default:
		return true
	}
}

// AppendKey appends an unambiguous binary encoding of the cell to b. Equal
// cells produce equal encodings, which makes the output usable as a hash input.
func (v Value) AppendKey(b []byte) []byte {
	b = append(b, byte(v.kind))
	switch v.kind {
	case Text:
		b = binary.AppendUvarint(b, uint64(len(v.s)))
		b = append(b, v.s...)
	case Integer:
		b = binary.BigEndian.AppendUint64(b, uint64(v.i))
	case Decimal:
		f := v.f
		if f == 0 {
			f = 0 // fold -0 into +0 so Equal and AppendKey agree
		}
		b = binary.BigEndian.AppendUint64(b, math.Float64bits(f))
	case Date:
		b = binary.BigEndian.AppendUint64(b, uint64(v.t.UnixNano()))
	case Boolean:
		if v.b {
			b = append(b, 1)
		} else {
			b = append(b, 0)
		}
	}
	return b
}
