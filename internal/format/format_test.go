package format

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zoheirhassoun/Telegram-bot/internal/dataset"
)

var header = []string{"Name", "City"}

func TestNone(t *testing.T) {
	assert.Equal(t, "No results found for 'zz'", None("zz"))
}

func TestOne(t *testing.T) {
	tests := []struct {
		name string
		row  dataset.Row
		want string
	}{
		{"all cells", dataset.Row{"Ann", "NY"}, "Name: Ann\nCity: NY\n"},
		{"blank cell omitted", dataset.Row{"Ann", "  "}, "Name: Ann\n"},
		{"empty cell omitted", dataset.Row{"", "LA"}, "City: LA\n"},
		{"all blank renders nothing", dataset.Row{"", ""}, ""},
		{"short row", dataset.Row{"Ann"}, "Name: Ann\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, One(header, tt.row))
		})
	}
}

func TestMany_Two(t *testing.T) {
	got := Many(header, []dataset.Row{{"Ann", "NY"}, {"Bob", ""}})

	want := "Found 2 results:\n\n" +
		"Result 1:\n  Name: Ann\n  City: NY\n\n" +
		"Result 2:\n  Name: Bob\n\n"
	assert.Equal(t, want, got)
}

func TestMany_Truncates(t *testing.T) {
	var rows []dataset.Row
	for i := 1; i <= 7; i++ {
		rows = append(rows, dataset.Row{fmt.Sprintf("n%d", i), "x"})
	}

	got := Many(header, rows)

	assert.True(t, strings.HasPrefix(got, "Found 7 results:\n\n"))
	assert.Equal(t, MaxListed, strings.Count(got, "Result "))
	assert.Contains(t, got, "Result 5:\n  Name: n5\n")
	assert.NotContains(t, got, "n6")
	assert.True(t, strings.HasSuffix(got, "... and 2 more results"))
}

func TestMany_ExactlyCap(t *testing.T) {
	rows := make([]dataset.Row, MaxListed)
	for i := range rows {
		rows[i] = dataset.Row{"a", "b"}
	}

	got := Many(header, rows)
	assert.Equal(t, MaxListed, strings.Count(got, "Result "))
	assert.NotContains(t, got, "more results")
}

func TestSummary(t *testing.T) {
	d := dataset.New([][]string{
		{"Name", "City"},
		{"Ann", "NY"},
		{"Bob", "LA"},
		{"", ""},
	})

	want := "Data Summary:\n\n" +
		"Total Records: 3\n" +
		"Total Columns: 2\n\n" +
		"Columns:\n" +
		"  • Name (2 values)\n" +
		"  • City (2 values)\n"
	assert.Equal(t, want, Summary(d))
}

func TestSummary_Empty(t *testing.T) {
	got := Summary(dataset.New(nil))

	assert.Contains(t, got, "Total Records: 0")
	assert.Contains(t, got, "Total Columns: 0")
	assert.NotContains(t, got, "•")
}
