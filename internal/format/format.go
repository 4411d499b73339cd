// Package format renders match results and dataset summaries as plain text
// replies. Every function is pure and total.
package format

import (
	"fmt"
	"strings"

	"github.com/zoheirhassoun/Telegram-bot/internal/dataset"
)

// MaxListed is how many rows Many renders before the truncation line.
const MaxListed = 5

// None reports that query matched nothing.
func None(query string) string {
	return fmt.Sprintf("No results found for '%s'", query)
}

// One renders each non-blank cell of row as "<column>: <value>" in header order.
func One(header []string, row dataset.Row) string {
	var b strings.Builder
	writeCells(&b, header, row, "")
	return b.String()
}

// Many renders a count line, at most MaxListed numbered row blocks and, when
// rows were left out, how many.
func Many(header []string, rows []dataset.Row) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d results:\n\n", len(rows))

	for i, row := range rows {
		if i == MaxListed {
			break
		}
		fmt.Fprintf(&b, "Result %d:\n", i+1)
		writeCells(&b, header, row, "  ")
		b.WriteString("\n")
	}

	if len(rows) > MaxListed {
		fmt.Fprintf(&b, "... and %d more results", len(rows)-MaxListed)
	}

	return b.String()
}

// Summary renders row and column totals and the non-blank count of every column.
func Summary(d dataset.Dataset) string {
	s := dataset.Summarize(d)

	var b strings.Builder
	b.WriteString("Data Summary:\n\n")
	fmt.Fprintf(&b, "Total Records: %d\n", s.Rows)
	fmt.Fprintf(&b, "Total Columns: %d\n\n", s.Columns)
	b.WriteString("Columns:\n")
	for _, c := range s.Counts {
		fmt.Fprintf(&b, "  • %s (%d values)\n", c.Name, c.NonBlank)
	}

	return b.String()
}

func writeCells(b *strings.Builder, header []string, row dataset.Row, indent string) {
	for i, column := range header {
		if i >= len(row) || dataset.IsBlank(row[i]) {
			continue
		}
		fmt.Fprintf(b, "%s%s: %s\n", indent, column, row[i])
	}
}
