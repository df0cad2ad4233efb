package printers

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/mattn/go-isatty"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/duedeck/pkg/card"
	"tableflip.dev/duedeck/pkg/timeutil"
	"tableflip.dev/duedeck/pkg/urgency"
)

// PrettyPrint writes human readable views of a refresh.
type PrettyPrint struct {
	Out io.Writer
	// Width caps detail columns and list lines. Zero means 72.
	Width int
	// Plain disables colour. NewPrettyPrint sets it for non terminals.
	Plain bool
}

// NewPrettyPrint writes to w, or color.Output when w is nil.
func NewPrettyPrint(w io.Writer) *PrettyPrint {
	if w == nil {
		w = color.Output
	}
	return &PrettyPrint{Out: w, Plain: !IsTerminal(w)}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) width() int {
	if pp.Width > 0 {
		return pp.Width
	}
	return 72
}

func (pp *PrettyPrint) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if pp.Plain {
		c.DisableColor()
	}
	return c
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	_, _ = pp.color(color.Bold, color.Underline).Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := pp.color(color.Bold, color.Underline)
	c := pp.color(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " task")
	default:
		_, _ = c.Fprintln(pp.out(), " tasks")
	}
}

func (pp *PrettyPrint) none(msg string) {
	_, _ = pp.color(color.Faint, color.Italic).Fprintf(pp.out(), " %s\n\n", msg)
}

func (pp *PrettyPrint) levelColor(l urgency.Level) *color.Color {
	switch l {
	case urgency.Overdue:
		return pp.color(color.FgRed, color.Bold)
	case urgency.DueSoon:
		return pp.color(color.FgYellow, color.Bold)
	default:
		return pp.color(color.Bold)
	}
}

// Cards prints every card with its details.
func (pp *PrettyPrint) Cards(cards ...card.Card) {
	if len(cards) == 0 {
		pp.none("no assignments")
		return
	}
	for _, c := range cards {
		pp.Card(c)
	}
}

// Card prints the front line of c followed by its back.
func (pp *PrettyPrint) Card(c card.Card) {
	head := pp.levelColor(c.Level)
	_, _ = head.Fprintf(pp.out(), "%s %s", c.Emoji, c.Title)
	if badge := c.Badge(); badge != "" {
		_, _ = head.Fprintf(pp.out(), "  %s", badge)
	}
	if c.Deadline != "" {
		_, _ = pp.color(color.Faint).Fprintf(pp.out(), "  (%s)", c.Deadline)
	}
	_, _ = fmt.Fprintln(pp.out())

	if len(c.Details) > 0 {
		label := pp.color(color.Faint)
		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.MaxColWidth = uint(pp.width())
		tbl.Wrap = true
		for _, d := range c.Details {
			tbl.AddRow("   "+label.Sprint(d.Label), d.Value)
		}
		_, _ = fmt.Fprintln(pp.out(), tbl)
	}
	if c.HasLink() {
		_, _ = pp.color(color.FgCyan, color.Underline).Fprintf(pp.out(), "   %s\n", c.Link)
	}
	_, _ = fmt.Fprintln(pp.out())
}

// Urgent prints the due-today and due-tomorrow list.
func (pp *PrettyPrint) Urgent(items ...urgency.Item) {
	pp.TitleWithCount("Due soon", len(items))
	if len(items) == 0 {
		pp.none("nothing due today or tomorrow")
		return
	}
	label := pp.color(color.FgYellow, color.Bold)
	for _, it := range items {
		line := truncate.StringWithTail(it.Title, uint(pp.width()), "…")
		_, _ = label.Fprintf(pp.out(), " [%s]", it.Label)
		_, _ = fmt.Fprintf(pp.out(), " %s", line)
		_, _ = pp.color(color.Faint).Fprintf(pp.out(), " (%s)\n", it.Deadline)
	}
	_, _ = fmt.Fprintln(pp.out())
}

// Countdown prints the end-of-day timer line. remaining replaces the
// planned remaining time when non-negative.
func (pp *PrettyPrint) Countdown(cd urgency.Countdown, remaining time.Duration) {
	if !cd.Active {
		pp.none("no countdown running")
		return
	}
	if remaining < 0 {
		remaining = cd.Remaining
	}
	clock := pp.color(color.FgRed, color.Bold)
	if remaining > time.Hour {
		clock = pp.color(color.FgYellow, color.Bold)
	}
	_, _ = fmt.Fprintf(pp.out(), "⏰ %s ", truncate.StringWithTail(cd.Label(), uint(pp.width()), "…"))
	_, _ = clock.Fprintln(pp.out(), timeutil.FormatClock(remaining))
}

// Line prints a single status line.
func (pp *PrettyPrint) Line(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(pp.out(), strings.TrimRight(format, "\n")+"\n", args...)
}
