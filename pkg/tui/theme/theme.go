package theme

import (
	"image/color"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	"tableflip.dev/duedeck/pkg/calendar"
)

// RampDays is how many days ahead the urgency colour keeps fading.
const RampDays = 7

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Dark bool

	Header    lipgloss.Style
	Status    lipgloss.Style
	Help      lipgloss.Style
	Error     lipgloss.Style
	Urgent    lipgloss.Style
	Countdown lipgloss.Style
	Empty     lipgloss.Style

	Card     CardTheme
	Calendar calendar.Options

	overdue colorful.Color
	soon    colorful.Color
	calm    colorful.Color
}

// CardTheme styles the carousel cards.
type CardTheme struct {
	Frame    lipgloss.Style
	Centered lipgloss.Style
	Emphasis lipgloss.Style
	Title    lipgloss.Style
	Deadline lipgloss.Style
	Badge    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Link     lipgloss.Style
	Hint     lipgloss.Style
}

// Detect picks the palette matching the terminal background.
func Detect() Theme {
	return New(termenv.HasDarkBackground())
}

// New returns the theme for a dark or light background.
func New(dark bool) Theme {
	fg, faint, accent := lipgloss.Color("252"), lipgloss.Color("244"), lipgloss.Color("212")
	overdue, soon, calm := "#ff5f5f", "#ffaf00", "#5fd787"
	if !dark {
		fg, faint, accent = lipgloss.Color("235"), lipgloss.Color("243"), lipgloss.Color("162")
		overdue, soon, calm = "#d70000", "#d75f00", "#008700"
	}

	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(faint).
		Padding(0, 1)

	cal := calendar.DefaultOptions()
	cal.TodayStyle = cal.TodayStyle.Foreground(accent)

	return Theme{
		Dark:      dark,
		Header:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		Status:    lipgloss.NewStyle().Foreground(faint),
		Help:      lipgloss.NewStyle().Foreground(faint).Italic(true),
		Error:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(overdue)),
		Urgent:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(soon)),
		Countdown: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(overdue)),
		Empty:     lipgloss.NewStyle().Foreground(faint).Italic(true),
		Card: CardTheme{
			Frame:    frame,
			Centered: frame.Border(lipgloss.ThickBorder()).BorderForeground(fg),
			Emphasis: frame.Border(lipgloss.DoubleBorder()).BorderForeground(accent),
			Title:    lipgloss.NewStyle().Bold(true).Foreground(fg),
			Deadline: lipgloss.NewStyle().Foreground(faint),
			Badge:    lipgloss.NewStyle().Bold(true),
			Label:    lipgloss.NewStyle().Foreground(faint),
			Value:    lipgloss.NewStyle().Foreground(fg),
			Link:     lipgloss.NewStyle().Underline(true).Foreground(accent),
			Hint:     lipgloss.NewStyle().Foreground(faint).Italic(true),
		},
		Calendar: cal,
		overdue:  mustHex(overdue),
		soon:     mustHex(soon),
		calm:     mustHex(calm),
	}
}

// Urgency is the accent for a task diffDays away. Overdue tasks get the
// alarm colour, today the warning colour, fading to calm over RampDays.
func (t Theme) Urgency(diffDays int) color.Color {
	switch {
	case diffDays < 0:
		return t.overdue
	case diffDays >= RampDays:
		return t.calm
	}
	return t.soon.BlendLab(t.calm, float64(diffDays)/RampDays).Clamped()
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
