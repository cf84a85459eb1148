package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *Dataset {
	t.Helper()
	d, err := New(
		Column{Name: "id", Kind: Integer, Cells: []Value{IntValue(1), IntValue(2), IntValue(3)}},
		Column{Name: "name", Kind: Text, Cells: []Value{TextValue("a"), Null(), TextValue("c")}},
	)
	require.NoError(t, err)
	return d
}

func TestNewRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cols []Column
	}{
		{
			name: "ragged",
			cols: []Column{
				{Name: "a", Kind: Integer, Cells: []Value{IntValue(1)}},
				{Name: "b", Kind: Integer, Cells: []Value{IntValue(1), IntValue(2)}},
			},
		},
		{
			name: "duplicate name",
			cols: []Column{
				{Name: "a", Kind: Integer},
				{Name: "a", Kind: Text},
			},
		},
		{
			name: "heterogeneous",
			cols: []Column{{Name: "a", Kind: Integer, Cells: []Value{TextValue("x")}}},
		},
		{
			name: "missing kind",
			cols: []Column{{Name: "a", Kind: Missing}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.cols...)
			require.Error(t, err)
		})
	}
}

func TestKeepRowsPreservesOrder(t *testing.T) {
	t.Parallel()

	d := sample(t)
	removed := d.KeepRows([]bool{true, false, true})

	assert.Equal(t, 1, removed)
	require.Equal(t, 2, d.Len())
	assert.Equal(t, []Value{IntValue(1), TextValue("a")}, d.Row(0))
	assert.Equal(t, []Value{IntValue(3), TextValue("c")}, d.Row(1))
	assert.Zero(t, d.MissingCount())
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	d := sample(t)
	c := d.Clone()
	require.True(t, d.Equal(c))

	col, ok := c.Column("name")
	require.True(t, ok)
	col.Cells[1] = TextValue("b")

	assert.False(t, d.Equal(c))
	assert.Equal(t, 1, d.MissingCount())
}

func TestReplaceChecksShape(t *testing.T) {
	t.Parallel()

	d := sample(t)
	err := d.Replace(Column{Name: "id", Kind: Decimal, Cells: []Value{DecimalValue(1)}})
	require.Error(t, err)

	err = d.Replace(Column{Name: "id", Kind: Decimal, Cells: []Value{DecimalValue(1), DecimalValue(2.5), Null()}})
	require.NoError(t, err)
	assert.Equal(t, []Kind{Decimal, Text}, d.Kinds())
}

func TestFromRecordsInfersKinds(t *testing.T) {
	t.Parallel()

	header := []string{"i", "b", "f", "d", "ts", "s", "empty"}
	rows := [][]string{
		{"1", "true", "1.5", "2024-01-02", "2024-01-02 10:00:00", "x", ""},
		{"NA", "False", "2", "", "2024-01-03 11:30:00", " y ", "null"},
		{" 3 ", "yes", "nan", "2024-02-29", "", "7", "N/A"},
	}
	d, err := FromRecords(header, rows)
	require.NoError(t, err)

	assert.Equal(t, []Kind{Integer, Boolean, Decimal, Date, Date, Text, Text}, d.Kinds())

	i, _ := d.Column("i")
	assert.Equal(t, []Value{IntValue(1), Null(), IntValue(3)}, i.Cells)

	f, _ := d.Column("f")
	assert.Equal(t, []Value{DecimalValue(1.5), DecimalValue(2), Null()}, f.Cells)

	dt, _ := d.Column("d")
	assert.True(t, dt.Cells[2].Equal(DateValue(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC))))

	s, _ := d.Column("s")
	assert.Equal(t, " y ", s.Cells[1].Str(), "text cells keep their raw form")

	assert.Equal(t, 7, d.MissingCount())
}

func TestFromRecordsRejectsRaggedRows(t *testing.T) {
	t.Parallel()

	_, err := FromRecords([]string{"a", "b"}, [][]string{{"1", "2"}, {"3"}})
	require.Error(t, err)
}

func TestAppendKeyMatchesEqual(t *testing.T) {
	t.Parallel()

	pairs := [][2]Value{
		{TextValue("ab"), TextValue("ab")},
		{DecimalValue(0), DecimalValue(-0.0)},
		{Null(), Null()},
	}
	for _, p := range pairs {
		require.True(t, p[0].Equal(p[1]))
		assert.Equal(t, p[0].AppendKey(nil), p[1].AppendKey(nil))
	}
	// Length prefix keeps ("a","bc") and ("ab","c") apart.
	k1 := TextValue("bc").AppendKey(TextValue("a").AppendKey(nil))
	k2 := TextValue("c").AppendKey(TextValue("ab").AppendKey(nil))
	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, IntValue(1).AppendKey(nil), DecimalValue(1).AppendKey(nil))
}

func TestProfile(t *testing.T) {
	t.Parallel()

	p := sample(t).Profile()
	require.Len(t, p, 2)
	assert.Equal(t, ColumnProfile{Name: "name", Kind: "text", Rows: 3, Missing: 1, Distinct: 2}, p[1])
}
