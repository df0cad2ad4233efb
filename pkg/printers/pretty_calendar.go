package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/duedeck/pkg/app"
	"tableflip.dev/duedeck/pkg/calendar"
)

const cellWidth = len("Jan 1*") // widest label plus the marker

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Calendar prints the four week grid followed by the dated titles.
func (pp *PrettyPrint) Calendar(g *calendar.Grid) {
	if g == nil || len(g.Cells) == 0 {
		pp.none("no date column found")
		return
	}
	width := 7*(cellWidth+1) - 1

	title := g.Title()
	mid := (width - len(title)) / 2
	if mid < 0 {
		mid = 0
	}
	_, _ = pp.color(color.FgWhite, color.Italic).Fprintf(pp.out(), "%s%s\n", strings.Repeat(" ", mid), title)

	head := pp.color(color.Faint, color.Bold)
	for i, d := range weekdays {
		if i > 0 {
			_, _ = fmt.Fprint(pp.out(), " ")
		}
		_, _ = head.Fprintf(pp.out(), "%-*s", cellWidth, d)
	}
	_, _ = fmt.Fprintln(pp.out())

	for _, week := range g.Weeks() {
		for i, c := range week {
			if i > 0 {
				_, _ = fmt.Fprint(pp.out(), " ")
			}
			pp.cell(c)
		}
		_, _ = fmt.Fprintln(pp.out())
	}
	_, _ = fmt.Fprintln(pp.out())

	entry := pp.color()
	today := pp.color(color.Bold, color.Underline)
	for _, c := range g.Cells {
		if len(c.Titles) == 0 {
			continue
		}
		p := entry
		if c.IsToday {
			p = today
		}
		line := fmt.Sprintf("%s %s  %s", c.Date.Format("01/02"), c.Date.Format("Mon"), strings.Join(c.Titles, ", "))
		_, _ = p.Fprintln(pp.out(), truncate.StringWithTail(line, uint(pp.width()), "…"))
	}
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) cell(c calendar.Cell) {
	attrs := []color.Attribute{color.Faint}
	switch c.Class {
	case calendar.Sunday:
		attrs = []color.Attribute{color.FgRed}
	case calendar.Saturday:
		attrs = []color.Attribute{color.FgBlue}
	}
	if len(c.Titles) > 0 {
		attrs = append(attrs, color.Bold)
	}
	if c.IsToday {
		attrs = append(attrs, color.Underline)
	}

	text := c.Label()
	if len(c.Titles) > 0 {
		text += "*"
	}
	_, _ = pp.color(attrs...).Fprintf(pp.out(), "%-*s", cellWidth, text)
}

// Agenda prints the dated tasks grouped by day.
func (pp *PrettyPrint) Agenda(a app.AgendaResult) {
	pp.TitleWithCount(fmt.Sprintf("%s ~ %s", a.Since.Format("01/02"), a.Until.Format("01/02")), a.Total)
	if len(a.Sections) == 0 {
		pp.none("nothing due")
		return
	}
	day := pp.color(color.Bold)
	for _, s := range a.Sections {
		_, _ = day.Fprintln(pp.out(), s.Date.Format("Mon 01/02"))
		for _, c := range s.Cards {
			head := pp.levelColor(c.Level)
			_, _ = head.Fprintf(pp.out(), "  %s %s", c.Emoji, truncate.StringWithTail(c.Title, uint(pp.width()), "…"))
			if badge := c.Badge(); badge != "" {
				_, _ = head.Fprintf(pp.out(), "  %s", badge)
			}
			_, _ = fmt.Fprintln(pp.out())
		}
	}
	_, _ = fmt.Fprintln(pp.out())
}
