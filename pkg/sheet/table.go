// Package sheet turns spreadsheet exports into header/row tables and
// projects away administratively ignored columns.
package sheet

import (
	"strings"
)

// Table is a parsed spreadsheet: an ordered header list and ragged rows.
// A row may be shorter or longer than Headers; missing cells read as "".
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Empty reports whether the table has neither headers nor rows.
func (t Table) Empty() bool {
	return len(t.Headers) == 0 && len(t.Rows) == 0
}

// String serializes the table back to comma separated text. Cells holding a
// comma, quote or newline are quoted with embedded quotes doubled.
func (t Table) String() string {
	lines := make([]string, 0, len(t.Rows)+1)
	lines = append(lines, joinRecord(t.Headers))
	for _, r := range t.Rows {
		lines = append(lines, joinRecord(r))
	}
	return strings.Join(lines, "\n")
}

func joinRecord(values []string) string {
	out := make([]string, len(values))
	for i, v := range values {
		if strings.ContainsAny(v, ",\"\n") {
			v = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		}
		out[i] = v
	}
	return strings.Join(out, ",")
}

// Cell returns values[i], or "" when i is out of range.
func Cell(values []string, i int) string {
	if i < 0 || i >= len(values) {
		return ""
	}
	return values[i]
}

// FindColumn returns the index of the first header accepted by match, or -1.
func FindColumn(headers []string, match func(header string) bool) int {
	for i, h := range headers {
		if match(h) {
			return i
		}
	}
	return -1
}

// ContainsAny returns a matcher accepting headers that contain any keyword.
// Matching is case-insensitive.
func ContainsAny(keywords ...string) func(string) bool {
	return func(header string) bool {
		lower := strings.ToLower(header)
		for _, k := range keywords {
			if strings.Contains(lower, strings.ToLower(k)) {
				return true
			}
		}
		return false
	}
}
