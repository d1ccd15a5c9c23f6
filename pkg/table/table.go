// Package table holds the in-memory tabular data the encoders work on.
package table

import (
	"errors"
	"fmt"
)

var ErrColumnNotFound = errors.New("column not found")

// Table is a column-major table with uniquely named columns. None of its
// methods mutate the receiver; derived tables may share column storage, so
// callers must treat returned columns as read-only.
type Table struct {
	columns NameMap
	data    [][]Value
	rows    int
}

// New creates an empty table with the given header.
func New(names ...string) (*Table, error) {
	t := &Table{columns: NewNameMap(), data: make([][]Value, len(names))}
	for i, name := range names {
		if _, ok := t.columns.ContainsName(name); ok {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		t.columns.Set(name, i)
	}
	return t, nil
}

// FromColumns builds a table from equally sized columns.
func FromColumns(names []string, columns [][]Value) (*Table, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("%d column names for %d columns", len(names), len(columns))
	}
	t, err := New(names...)
	if err != nil {
		return nil, err
	}
	for i, col := range columns {
		if i > 0 && len(col) != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", names[i], len(col), t.rows)
		}
		t.rows = len(col)
		t.data[i] = col
	}
	return t, nil
}

// AppendRow adds a row in place. It is meant for building a table before it
// is shared.
func (t *Table) AppendRow(row []Value) error {
	if len(row) != len(t.data) {
		return fmt.Errorf("row has %d values, expected %d", len(row), len(t.data))
	}
	for i, v := range row {
		t.data[i] = append(t.data[i], v)
	}
	t.rows++
	return nil
}

func (t *Table) NumRows() int { return t.rows }

func (t *Table) NumColumns() int { return t.columns.Size() }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.data))
	for i := range names {
		names[i] = t.columns.IndexToName[i]
	}
	return names
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns.ContainsName(name)
	return ok
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]Value, error) {
	index, ok := t.columns.ContainsName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	return t.data[index], nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.data))
	for c := range t.data {
		row[c] = t.data[c][i]
	}
	return row
}

// Take returns a new table holding the given rows, in the given order.
func (t *Table) Take(rows []int) *Table {
	result := &Table{columns: t.columns, data: make([][]Value, len(t.data)), rows: len(rows)}
	for c, col := range t.data {
		taken := make([]Value, len(rows))
		for i, r := range rows {
			taken[i] = col[r]
		}
		result.data[c] = taken
	}
	return result
}

// WithColumn returns a new table with values appended as the last column.
func (t *Table) WithColumn(name string, values []Value) (*Table, error) {
	if t.HasColumn(name) {
		return nil, fmt.Errorf("column %q already exists", name)
	}
	if len(values) != t.rows {
		return nil, fmt.Errorf("column %q has %d rows, expected %d", name, len(values), t.rows)
	}
	names := append(t.Names(), name)
	data := make([][]Value, 0, len(t.data)+1)
	data = append(data, t.data...)
	data = append(data, values)
	return FromColumns(names, data)
}

// Concat stacks b below a. Both tables must have the same columns in the same order.
func Concat(a, b *Table) (*Table, error) {
	an, bn := a.Names(), b.Names()
	if len(an) != len(bn) {
		return nil, fmt.Errorf("cannot concatenate tables with %d and %d columns", len(an), len(bn))
	}
	data := make([][]Value, len(an))
	for i := range an {
		if an[i] != bn[i] {
			return nil, fmt.Errorf("column %d differs: %q vs %q", i, an[i], bn[i])
		}
		col := make([]Value, 0, a.rows+b.rows)
		col = append(col, a.data[i]...)
		col = append(col, b.data[i]...)
		data[i] = col
	}
	return FromColumns(an, data)
}
