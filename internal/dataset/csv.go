package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// readRecords reads a whole CSV file, stripping a UTF-8 BOM if present so
// Excel-exported files parse cleanly.
func readRecords(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s: empty file", path)
	}
	return records, nil
}

// findColumn locates a header column by any of its accepted names,
// case-insensitively. Returns -1 when absent.
func findColumn(header []string, names ...string) int {
	for i, col := range header {
		clean := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\uFEFF")))
		for _, name := range names {
			if clean == name {
				return i
			}
		}
	}
	return -1
}

// requireColumns checks that every listed column resolved to an index.
// A missing required column is the one structural failure surfaced to the
// caller before any aggregation begins.
func requireColumns(path string, cols map[string]int) error {
	var missing []string
	for name, idx := range cols {
		if idx == -1 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: required columns not found: %v", path, missing)
	}
	return nil
}

// cell returns the trimmed value at the column index, empty when the row
// is short.
func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// parseNullableFloat maps empty and NA-ish cells to nil instead of zero so
// the core can tell "no score" from "scored zero".
func parseNullableFloat(s string) *float64 {
	switch strings.ToLower(s) {
	case "", "na", "n/a", "null", "none":
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseBool accepts the truthy spellings seen in marketplace exports.
func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "t", "true", "1", "yes", "y":
		return true
	}
	return false
}
