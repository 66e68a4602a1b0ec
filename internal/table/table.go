package table

import (
	"fmt"
	"math"
)

// Value is a single cell. nil means missing, string is text, anything else is
// a non-text scalar.
type Value = any

// Row maps column names to cell values
type Row map[string]Value

// Table is an ordered sequence of rows with a column schema
type Table struct {
	Columns []string
	Rows    []Row
}

// New creates an empty table with the given columns
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Append adds a row to the end of the table
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// HasColumn reports whether the schema contains the column
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// RequireColumns returns an error naming the first column missing from the schema
func (t *Table) RequireColumns(names []string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return fmt.Errorf("column %q not found in table (columns: %v)", name, t.Columns)
		}
	}
	return nil
}

// Column returns the values of one column in row order
func (t *Table) Column(name string) []Value {
	values := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[name]
	}
	return values
}

// Clone returns a deep copy of the row map
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IsMissing reports whether a value counts as missing
func IsMissing(v Value) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// Text returns the value as text if it is a non-missing string
func Text(v Value) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Format renders a value for text based formats. Missing values render empty.
func Format(v Value) string {
	if IsMissing(v) {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
