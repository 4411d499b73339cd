package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

var _ Source = (*CSV)(nil)

// CSV reads a local CSV file. The file is read again on every Fetch so edits
// show up on the next query. The range is ignored.
type CSV struct {
	path string
}

// NewCSV returns a source backed by the CSV file at path.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Name is used in refresh replies.
func (c *CSV) Name() string {
	return "the CSV file"
}

func (c *CSV) Fetch(ctx context.Context, _ string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportError("read csv", err)
	}

	f, err := os.Open(c.path)
	if err != nil {
		return nil, transportError("read csv", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, transportError("read csv", fmt.Errorf("invalid csv %s: %w", c.path, err))
	}

	// Strip a UTF-8 BOM left by spreadsheet exports.
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}

	return records, nil
}
