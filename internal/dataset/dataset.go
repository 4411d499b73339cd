// Package dataset holds the in-memory table a query cycle works against.
//
// A Dataset is a value: it is built from the raw 2-D string array returned by
// a source, used for one answer, and discarded. Nothing in it is mutated after
// construction.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Row is one data row. Cells are aligned with the dataset header.
type Row []string

// Dataset is an ordered header plus ordered rows of exactly header width.
type Dataset struct {
	header []string
	rows   []Row
}

// New builds a Dataset from raw values where values[0] is the header.
//
// No values yields an empty dataset. Rows shorter than the header are padded
// with empty cells (Sheets omits trailing blanks) and longer rows are cut to
// the header width. Blank header cells are named "Column <n>" and repeated
// names get a " (2)", " (3)" ... suffix.
func New(values [][]string) Dataset {
	if len(values) == 0 {
		return Dataset{}
	}

	header := normalizeHeader(values[0])
	rows := make([]Row, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := make(Row, len(header))
		copy(row, raw)
		rows = append(rows, row)
	}

	return Dataset{header: header, rows: rows}
}

// normalizeHeader returns a copy of raw with blank and duplicate names fixed.
func normalizeHeader(raw []string) []string {
	header := make([]string, len(raw))
	seen := make(map[string]int, len(raw))

	for i, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "Column " + strconv.Itoa(i+1)
		}

		seen[name]++
		if n := seen[name]; n > 1 {
			candidate := fmt.Sprintf("%s (%d)", name, n)
			for seen[candidate] > 0 {
				n++
				candidate = fmt.Sprintf("%s (%d)", name, n)
			}
			seen[candidate]++
			name = candidate
		}
		header[i] = name
	}

	return header
}

// Header returns the column names in order.
func (d Dataset) Header() []string {
	return d.header
}

// Rows returns the data rows in source order.
func (d Dataset) Rows() []Row {
	return d.rows
}

// Len returns the number of data rows.
func (d Dataset) Len() int {
	return len(d.rows)
}

// Width returns the number of columns.
func (d Dataset) Width() int {
	return len(d.header)
}

// Empty reports whether the dataset has no data rows. A header-only sheet is empty.
func (d Dataset) Empty() bool {
	return len(d.rows) == 0
}

// IsBlank reports whether a cell value counts as absent.
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
