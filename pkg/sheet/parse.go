package sheet

import (
	"strings"
)

const bom = "\uFEFF"

// Parse reads comma separated text. The first logical line becomes the
// headers, every following line a row. Quoted fields may hold commas and
// newlines; a doubled quote inside a quoted field is a literal quote. Lines
// that are blank and hold no comma are skipped. Parse never fails: empty
// input yields an empty Table.
func Parse(text string) Table {
	text = strings.TrimPrefix(text, bom)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := splitLines(text)
	if len(lines) == 0 {
		return Table{Headers: []string{}, Rows: [][]string{}}
	}

	t := Table{
		Headers: splitFields(lines[0]),
		Rows:    make([][]string, 0, len(lines)-1),
	}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" && !strings.Contains(line, ",") {
			continue
		}
		t.Rows = append(t.Rows, splitFields(line))
	}
	return t
}

// splitLines breaks text on newlines that sit outside quotes. Quote
// characters are kept so splitFields can see field boundaries.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	var (
		lines    []string
		current  strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				current.WriteString(`""`)
				i++
				continue
			}
			inQuotes = !inQuotes
			current.WriteByte(c)
		case c == '\n' && !inQuotes:
			lines = append(lines, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	return append(lines, current.String())
}

func splitFields(line string) []string {
	var (
		values  []string
		current strings.Builder
		quoted  bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if quoted && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
				continue
			}
			quoted = !quoted
		case c == ',' && !quoted:
			values = append(values, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	return append(values, current.String())
}
