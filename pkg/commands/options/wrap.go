package options

import "github.com/muesli/reflow/wordwrap"

// Wrap80 wraps help text for an 80 column terminal.
func Wrap80(text string) string {
	return Wrap(text, 80)
}

// Wrap word-wraps text at width.
func Wrap(text string, width int) string {
	return wordwrap.String(text, width)
}
