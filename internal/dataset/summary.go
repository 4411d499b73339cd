package dataset

// ColumnCount is the number of non-blank values in one column.
type ColumnCount struct {
	Name     string
	NonBlank int
}

// Summary describes a dataset. It is derived on demand and never cached.
type Summary struct {
	Rows    int
	Columns int
	Counts  []ColumnCount
}

// Summarize counts rows, columns and non-blank values per column in header order.
func Summarize(d Dataset) Summary {
	counts := make([]ColumnCount, len(d.header))
	for i, name := range d.header {
		counts[i].Name = name
	}

	for _, row := range d.rows {
		for i, value := range row {
			if !IsBlank(value) {
				counts[i].NonBlank++
			}
		}
	}

	return Summary{
		Rows:    len(d.rows),
		Columns: len(d.header),
		Counts:  counts,
	}
}
