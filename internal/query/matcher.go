// Package query finds the dataset rows that mention a query string.
package query

import (
	"strings"
	"unicode"

	"github.com/zoheirhassoun/Telegram-bot/internal/dataset"
)

// Match returns the rows where at least one cell contains query, ignoring case.
//
// Matching is a literal substring test on simply folded text: each rune maps
// to one rune, so ß never matches "ss". Rows come back in dataset order and
// the dataset is scanned in full on every call.
func Match(d dataset.Dataset, query string) []dataset.Row {
	if d.Empty() {
		return nil
	}

	needle := fold(query)

	var matches []dataset.Row
	for _, row := range d.Rows() {
		if rowContains(row, needle) {
			matches = append(matches, row)
		}
	}
	return matches
}

func rowContains(row dataset.Row, needle string) bool {
	for _, cell := range row {
		if strings.Contains(fold(cell), needle) {
			return true
		}
	}
	return false
}

// fold replaces every rune with the smallest member of its simple case
// folding orbit.
func fold(s string) string {
	return strings.Map(foldRune, s)
}

func foldRune(r rune) rune {
	least := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < least {
			least = f
		}
	}
	return least
}
