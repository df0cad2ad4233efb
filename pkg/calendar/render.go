package calendar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"
)

// Options controls grid styling.
type Options struct {
	TitleStyle    lipgloss.Style
	HeaderStyle   lipgloss.Style
	EmptyStyle    lipgloss.Style
	EntryStyle    lipgloss.Style
	TodayStyle    lipgloss.Style
	SundayStyle   lipgloss.Style
	SaturdayStyle lipgloss.Style
	ShowHeader    bool
	// ShowTasks lists the titles below the grid, one line per day.
	ShowTasks bool
	// TaskWidth truncates listed titles when positive.
	TaskWidth int
}

// DefaultOptions returns the styling used by the terminal views.
func DefaultOptions() Options {
	return Options{
		TitleStyle:    lipgloss.NewStyle().Bold(true),
		HeaderStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true),
		EmptyStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		EntryStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
		TodayStyle:    lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("212")),
		SundayStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		SaturdayStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		ShowHeader:    true,
		ShowTasks:     true,
		TaskWidth:     48,
	}
}

const cellWidth = 6

// Render draws the grid as four week rows. Days carrying tasks show a marker
// with the task count.
func Render(g Grid, opts Options) string {
	if len(g.Cells) == 0 {
		return ""
	}

	lines := []string{opts.TitleStyle.Render(g.Title())}
	if opts.ShowHeader {
		var head []string
		for _, d := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
			head = append(head, fmt.Sprintf("%-*s", cellWidth, d))
		}
		lines = append(lines, opts.HeaderStyle.Render(strings.TrimRight(strings.Join(head, " "), " ")))
	}

	for _, week := range g.Weeks() {
		cells := make([]string, 0, len(week))
		for _, c := range week {
			cells = append(cells, renderCell(c, opts))
		}
		lines = append(lines, strings.Join(cells, " "))
	}

	if opts.ShowTasks {
		for _, c := range g.Cells {
			if len(c.Titles) == 0 {
				continue
			}
			text := fmt.Sprintf("%s %s: %s", c.Date.Format("01/02"), c.Date.Format("Mon"), strings.Join(c.Titles, ", "))
			if opts.TaskWidth > 0 {
				text = truncate.StringWithTail(text, uint(opts.TaskWidth), "…")
			}
			style := opts.EmptyStyle
			if c.IsToday {
				style = opts.TodayStyle
			}
			lines = append(lines, style.Render(text))
		}
	}

	return strings.Join(lines, "\n")
}

func renderCell(c Cell, opts Options) string {
	text := c.Label()
	if n := len(c.Titles); n > 0 {
		text = fmt.Sprintf("%s*%d", text, n)
	}
	text = fmt.Sprintf("%-*s", cellWidth, text)

	style := opts.EmptyStyle
	switch c.Class {
	case Sunday:
		style = opts.SundayStyle
	case Saturday:
		style = opts.SaturdayStyle
	}
	if len(c.Titles) > 0 {
		style = style.Inherit(opts.EntryStyle)
	}
	if c.IsToday {
		style = opts.TodayStyle.Inherit(style)
	}
	return style.Render(text)
}
