package teaui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/duedeck/pkg/calendar"
	"tableflip.dev/duedeck/pkg/card"
	"tableflip.dev/duedeck/pkg/timeutil"
)

const defaultWidth = 80

// View renders the header, the urgent strip, the card row and the calendar.
func (m *Model) View() string {
	sections := []string{m.headerView()}

	switch {
	case m.mode == modeHelp:
		sections = append(sections, m.helpView())
	case m.err != nil:
		sections = append(sections, m.theme.Error.Render("⚠ "+m.err.Error()))
	case m.res == nil:
		sections = append(sections, m.theme.Empty.Render("loading tasks…"))
	case m.res.Empty():
		sections = append(sections, m.theme.Empty.Render("no assignments"))
	default:
		if v := m.urgentView(); v != "" {
			sections = append(sections, v)
		}
		if v := m.countdownView(); v != "" {
			sections = append(sections, v)
		}
		sections = append(sections, m.deckView())
		if m.showCalendar && m.res.Calendar != nil {
			sections = append(sections, calendar.Render(*m.res.Calendar, m.theme.Calendar))
		}
	}

	sections = append(sections, m.theme.Status.Render(m.status))
	return strings.Join(sections, "\n\n")
}

func (m *Model) width() int {
	if m.termWidth > 0 {
		return m.termWidth
	}
	return defaultWidth
}

func (m *Model) headerView() string {
	title := fmt.Sprintf("duedeck · class %d", m.class)
	if m.res != nil && m.res.Source != "" {
		title += " · " + m.res.Source
	}
	title = truncate.StringWithTail(title, uint(m.width()-2), "…")
	head := m.theme.Header.Render(title)
	if m.loading {
		head += " " + m.spin.View()
	}
	return head
}

func (m *Model) helpView() string {
	lines := []string{
		"←/→ h/l   move between cards",
		"enter     flip the centered card",
		"u         jump to the next task due soon",
		fmt.Sprintf("1-%d       switch class", MaxClass),
		"c         toggle the calendar",
		"r         refresh now",
		"q         quit",
	}
	return m.theme.Help.Render(strings.Join(lines, "\n"))
}

func (m *Model) urgentView() string {
	items := m.res.Urgency.Urgent
	if len(items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.String())
	}
	line := "⚠️ " + strings.Join(parts, " · ")
	return m.theme.Urgent.Render(truncate.StringWithTail(line, uint(m.width()), "…"))
}

func (m *Model) countdownView() string {
	cd := m.res.Urgency.Countdown
	if !cd.Active || m.expired {
		return ""
	}
	left := m.remaining
	if left < 0 {
		left = cd.Remaining
	}
	label := truncate.StringWithTail(cd.Label(), uint(max(m.width()-14, 8)), "…")
	return m.theme.Countdown.Render(fmt.Sprintf("⏰ %s %s", label, timeutil.FormatClock(left)))
}

// deckView lays out the cards around the centered one. The terminal shows
// whole cards only, so the offset picks the middle card and its neighbours
// fill the remaining width.
func (m *Model) deckView() string {
	ctrl := m.session.Controller()
	if ctrl == nil || !ctrl.Bound() {
		return ""
	}
	cfg := ctrl.Config()
	pitch := cfg.Pitch()
	if pitch <= 0 {
		return ""
	}

	center := m.sink.centered
	if center < 0 {
		center = int(math.Round((m.sink.offset + float64(m.width())/2 - cfg.CardWidth/2) / pitch))
	}
	visible := int(float64(m.width()) / pitch)
	if visible < 1 {
		visible = 1
	}
	if visible%2 == 0 {
		visible--
	}

	gap := strings.Repeat(" ", int(cfg.Gap))
	var cards []string
	for v := center - visible/2; v <= center+visible/2; v++ {
		if v < 0 || v >= ctrl.CardCount() {
			continue
		}
		if len(cards) > 0 && gap != "" {
			cards = append(cards, gap)
		}
		cards = append(cards, m.cardView(v, int(cfg.CardWidth)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m *Model) cardView(virtual, width int) string {
	i := m.session.Controller().LogicalIndex(virtual)
	c := m.res.Cards[i]

	style := m.theme.Card.Frame
	switch {
	case m.sink.emphasis[virtual]:
		style = m.theme.Card.Emphasis
	case virtual == m.sink.centered:
		style = m.theme.Card.Centered
	}
	if c.DiffDays != nil && !m.sink.emphasis[virtual] {
		style = style.BorderForeground(m.theme.Urgency(*c.DiffDays))
	}

	inner := width - style.GetHorizontalFrameSize()
	if inner < 4 {
		inner = 4
	}
	var body string
	if m.flipped[i] {
		body = m.cardBack(c, inner)
	} else {
		body = m.cardFront(c, inner)
	}
	return style.Width(width).Render(body)
}

func (m *Model) cardFront(c card.Card, width int) string {
	lines := []string{
		c.Emoji,
		m.theme.Card.Title.Render(wordwrap.String(c.Title, width)),
	}
	if c.Deadline != "" {
		lines = append(lines, m.theme.Card.Deadline.Render(c.Deadline))
	}
	if badge := c.Badge(); badge != "" {
		b := m.theme.Card.Badge
		if c.DiffDays != nil {
			b = b.Foreground(m.theme.Urgency(*c.DiffDays))
		}
		lines = append(lines, b.Render(badge))
	}
	lines = append(lines, m.theme.Card.Hint.Render("enter: details"))
	return strings.Join(lines, "\n")
}

func (m *Model) cardBack(c card.Card, width int) string {
	lines := []string{m.theme.Card.Title.Render(truncate.StringWithTail(c.Title, uint(width), "…"))}
	for _, d := range c.Details {
		lines = append(lines,
			m.theme.Card.Label.Render(truncate.StringWithTail(d.Label, uint(width), "…")),
			m.theme.Card.Value.Render(wordwrap.String(d.Value, width)))
	}
	if c.HasLink() {
		lines = append(lines, m.theme.Card.Link.Render(truncate.StringWithTail(c.Link, uint(width), "…")))
	}
	return strings.Join(lines, "\n")
}
