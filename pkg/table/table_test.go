package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw      string
		expected Value
	}{
		{raw: "", expected: MissingValue()},
		{raw: "NA", expected: MissingValue()},
		{raw: "NaN", expected: MissingValue()},
		{raw: "None", expected: MissingValue()},
		{raw: "True", expected: StringValue("True")},
		{raw: "42", expected: StringValue("42")},
		{raw: "007", expected: StringValue("007")},
		{raw: "7", expected: StringValue("7")},
		{raw: "1.50", expected: StringValue("1.50")},
		{raw: "12345678901234567891", expected: StringValue("12345678901234567891")},
		{raw: " 7(a)", expected: StringValue(" 7(a)")},
	}

	for _, tt := range tests {
		require.Equal(t, tt.expected, Parse(tt.raw), tt.raw)
	}
}

func TestValueEquality(t *testing.T) {
	require.Equal(t, MissingValue(), FloatValue(math.NaN()))
	require.Equal(t, FloatValue(0), FloatValue(math.Copysign(0, -1)))
	require.NotEqual(t, IntValue(1), FloatValue(1))
	require.NotEqual(t, IntValue(1), BoolValue(true))
	require.NotEqual(t, StringValue(""), MissingValue())

	groups := map[Value]int{}
	for _, v := range []Value{StringValue("A"), StringValue("A"), MissingValue(), FloatValue(math.NaN()), IntValue(3)} {
		groups[v]++
	}
	require.Equal(t, 2, groups[StringValue("A")])
	require.Equal(t, 2, groups[MissingValue()])
	require.Equal(t, 1, groups[IntValue(3)])
}

func TestParseAsRoundTrip(t *testing.T) {
	values := []Value{MissingValue(), BoolValue(true), IntValue(-3), FloatValue(0.25), StringValue("Retail")}
	for _, v := range values {
		kind, err := ParseKind(v.Kind().String())
		require.NoError(t, err)
		parsed, err := ParseAs(kind, v.Text())
		require.NoError(t, err)
		require.Equal(t, v, parsed)
	}

	_, err := ParseAs(Int, "x")
	require.Error(t, err)
	_, err = ParseKind("complex")
	require.Error(t, err)
}

func TestValueLess(t *testing.T) {
	require.True(t, MissingValue().Less(IntValue(0)))
	require.True(t, IntValue(2).Less(IntValue(3)))
	require.True(t, IntValue(9).Less(StringValue("a")))
	require.True(t, StringValue("a").Less(StringValue("b")))
	require.False(t, StringValue("b").Less(StringValue("b")))
}

func newTestTable(t *testing.T) *Table {
	tbl, err := New("id", "category")
	require.NoError(t, err)
	for i, c := range []string{"A", "B", "C"} {
		require.NoError(t, tbl.AppendRow([]Value{IntValue(int64(i)), StringValue(c)}))
	}
	return tbl
}

func TestTable(t *testing.T) {
	tbl := newTestTable(t)
	require.Equal(t, 3, tbl.NumRows())
	require.Equal(t, 2, tbl.NumColumns())
	require.Equal(t, []string{"id", "category"}, tbl.Names())

	col, err := tbl.Column("category")
	require.NoError(t, err)
	require.Equal(t, StringValue("B"), col[1])

	_, err = tbl.Column("missing")
	require.ErrorIs(t, err, ErrColumnNotFound)

	require.Error(t, tbl.AppendRow([]Value{IntValue(1)}))

	_, err = New("a", "a")
	require.Error(t, err)
}

func TestTakeWithColumnConcat(t *testing.T) {
	tbl := newTestTable(t)

	taken := tbl.Take([]int{2, 0})
	require.Equal(t, 2, taken.NumRows())
	require.Equal(t, []Value{IntValue(2), StringValue("C")}, taken.Row(0))
	require.Equal(t, 3, tbl.NumRows())

	extended, err := taken.WithColumn("score", []Value{FloatValue(0.5), MissingValue()})
	require.NoError(t, err)
	require.Equal(t, []string{"id", "category", "score"}, extended.Names())
	require.Equal(t, 2, taken.NumColumns())

	_, err = taken.WithColumn("id", []Value{IntValue(1), IntValue(2)})
	require.Error(t, err)
	_, err = taken.WithColumn("score", []Value{IntValue(1)})
	require.Error(t, err)

	rest, err := tbl.Take([]int{1}).WithColumn("score", []Value{FloatValue(1)})
	require.NoError(t, err)
	merged, err := Concat(extended, rest)
	require.NoError(t, err)
	require.Equal(t, 3, merged.NumRows())
	scores, err := merged.Column("score")
	require.NoError(t, err)
	require.Equal(t, []Value{FloatValue(0.5), MissingValue(), FloatValue(1)}, scores)

	_, err = Concat(extended, tbl)
	require.Error(t, err)
}
