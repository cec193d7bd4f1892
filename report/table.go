// Package report holds tabular results and writes them as spreadsheets or
// plain text.
package report

import (
	"fmt"
	"strconv"
)

// Table is a named sheet of rows. Cells are strings, integers, floats or nil
// for an empty cell.
type Table struct {
	Name   string   `json:"name" yaml:"name"`
	Header []string `json:"header" yaml:"header"`
	Rows   [][]any  `json:"rows" yaml:"rows"`
}

// NewTable returns an empty table with the given column headers.
func NewTable(name string, header ...string) *Table {
	return &Table{Name: name, Header: header}
}

// Append adds a row and returns its index.
func (t *Table) Append(cells ...any) int {
	row := make([]any, len(t.Header))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
	return len(t.Rows) - 1
}

// Set stores v at (row, col), growing the table with empty rows as needed.
func (t *Table) Set(row, col int, v any) {
	for len(t.Rows) <= row {
		t.Rows = append(t.Rows, make([]any, len(t.Header)))
	}
	for len(t.Rows[row]) <= col {
		t.Rows[row] = append(t.Rows[row], nil)
	}
	t.Rows[row][col] = v
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// cellString renders a cell for text formats.
func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case float64:
		return strconv.FormatFloat(c, 'g', -1, 64)
	case fmt.Stringer:
		return c.String()
	default:
		return fmt.Sprint(c)
	}
}
