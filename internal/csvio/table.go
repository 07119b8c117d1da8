package csvio

import (
	"errors"
	"io"
)

// Table is a fully loaded CSV file. Reference tables (genres, climate,
// economy, geo) are small enough to hold in memory.
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// NewTable builds a table over header and rows.
func NewTable(header []string, rows [][]string) *Table {
	t := &Table{Header: header, Rows: rows, index: make(map[string]int, len(header))}
	for i, h := range header {
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	return t
}

// Load reads a whole file.
func Load(path string, opts ...Option) (*Table, error) {
	r, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadAll(r, 0)
}

// ReadAll drains r. A positive limit stops after that many records.
func ReadAll(r *Reader, limit int) (*Table, error) {
	rows := make([][]string, 0)
	for limit <= 0 || len(rows) < limit {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return NewTable(append([]string(nil), r.Header()...), rows), nil
}

// Col returns the index of name, or -1.
func (t *Table) Col(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Require is Reader.Require for a loaded table.
func (t *Table) Require(cols ...string) ([]int, error) {
	return requireColumns(t.index, cols)
}

// Column copies the values of one column.
func (t *Table) Column(name string) []string {
	i := t.Col(name)
	if i < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Len is the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }
