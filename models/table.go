package models

// Row is anything that can render a named column as CSV text.
type Row interface {
	Field(column string) string
}

// Table is an ordered set of columns and the rows read or produced under them.
// A table with zero rows is valid and is not an error state.
type Table[T any] struct {
	Columns []string
	Rows    []T
}

// NewTable copies columns so callers can keep mutating their schema slices.
func NewTable[T any](columns []string, rows []T) *Table[T] {
	cols := make([]string, len(columns))
	copy(cols, columns)
	if rows == nil {
		rows = []T{}
	}
	return &Table[T]{Columns: cols, Rows: rows}
}

func (t *Table[T]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table[T]) Empty() bool {
	return t.Len() == 0
}

// HasColumn reports whether the column is part of the table schema.
func (t *Table[T]) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}
