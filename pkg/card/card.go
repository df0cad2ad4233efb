// Package card builds the per-row view models shown in the carousel.
package card

import (
	"strings"

	"tableflip.dev/duedeck/pkg/sheet"
	"tableflip.dev/duedeck/pkg/urgency"
)

const (
	untitled = "Untitled"
	blank    = "-"

	overdueEmoji = "💀"
	defaultEmoji = "📝"
)

// LinkKeywords mark a header as the link column (Korean "link", link, url).
var LinkKeywords = []string{"링크", "link", "url"}

// Detail is one label/value line on the back of a card.
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Card is the view model of one row.
type Card struct {
	OriginalIndex int           `json:"originalIndex"`
	Title         string        `json:"title"`
	Emoji         string        `json:"emoji"`
	Deadline      string        `json:"deadline,omitempty"`
	Level         urgency.Level `json:"level"`
	DiffDays      *int          `json:"diffDays,omitempty"`
	Details       []Detail      `json:"details"`
	Link          string        `json:"link,omitempty"`
}

// Overdue reports whether the card's deadline has passed.
func (c Card) Overdue() bool { return c.Level == urgency.Overdue }

// Urgent reports whether the card is due today or tomorrow.
func (c Card) Urgent() bool { return c.Level == urgency.DueSoon }

// Badge is the short status line under the deadline, or "".
func (c Card) Badge() string {
	switch c.Level {
	case urgency.Overdue:
		return overdueEmoji + " overdue"
	case urgency.DueSoon:
		return "⚠️ due soon"
	default:
		return ""
	}
}

// HasLink reports whether the card carries a usable link.
func (c Card) HasLink() bool { return c.Link != "" }

// IsLinkHeader reports whether header names a link column.
func IsLinkHeader(header string) bool {
	return sheet.ContainsAny(LinkKeywords...)(header)
}

// FindLinkColumn returns the first raw header naming a link column, or -1.
func FindLinkColumn(rawHeaders []string) int {
	return sheet.FindColumn(rawHeaders, IsLinkHeader)
}

// Build turns projected rows into cards. headers are the filtered headers,
// rawHeaders the unfiltered ones. Urgency comes from res; rows without a tag
// render as normal cards.
func Build(headers, rawHeaders []string, rows []sheet.Row, res urgency.Result) []Card {
	linkCol := FindLinkColumn(rawHeaders)
	cards := make([]Card, 0, len(rows))
	for _, row := range rows {
		c := Card{
			OriginalIndex: row.OriginalIndex,
			Title:         row.Title(),
			Details:       details(headers, row.Filtered),
			Link:          link(row.Raw(linkCol)),
		}
		if c.Title == "" {
			c.Title = untitled
		}
		if res.Enabled() {
			c.Deadline = row.Raw(res.DateColumn)
		}
		if tag, ok := res.TagFor(row.OriginalIndex); ok {
			c.Level = tag.Level
			diff := tag.DiffDays
			c.DiffDays = &diff
		}
		c.Emoji = Emoji(row.Title())
		if c.Overdue() {
			c.Emoji = overdueEmoji
		}
		cards = append(cards, c)
	}
	return cards
}

func details(headers, values []string) []Detail {
	out := make([]Detail, 0, len(headers))
	for i, h := range headers {
		if i == 0 || IsLinkHeader(h) {
			continue
		}
		v := sheet.Cell(values, i)
		if v == "" {
			v = blank
		}
		out = append(out, Detail{Label: h, Value: v})
	}
	return out
}

func link(value string) string {
	v := strings.TrimSpace(value)
	if v == "" || strings.EqualFold(v, "x") {
		return ""
	}
	return v
}

var emojiRules = []struct {
	emoji    string
	keywords []string
}{
	{"📐", []string{"수학", "math"}},
	{"📚", []string{"r&e", "r & e"}},
	{"A", []string{"영어", "english"}},
	{"가", []string{"국어", "korean", "문학", "독서"}},
	{"🧬", []string{"생명"}},
	{"🧪", []string{"과학", "science", "물리", "화학", "지학"}},
	{"🌍", []string{"사회", "역사", "history", "윤리", "지리"}},
	{"🎵", []string{"음악", "music"}},
	{"🎨", []string{"미술", "art"}},
	{"⚽️", []string{"체육", "pe", "운동"}},
	{"💻", []string{"정보", "tech", "코딩", "컴퓨터"}},
	{"🔧", []string{"가정", "기술"}},
}

// Subject is one emoji rule.
type Subject struct {
	Emoji    string
	Keywords []string
}

// Subjects lists the emoji rules in match order, ending with the default.
func Subjects() []Subject {
	out := make([]Subject, 0, len(emojiRules)+1)
	for _, r := range emojiRules {
		out = append(out, Subject{Emoji: r.emoji, Keywords: append([]string(nil), r.keywords...)})
	}
	return append(out, Subject{Emoji: defaultEmoji})
}

// Emoji guesses a subject icon from a card title. Rules are checked in
// order, so "생명과학" (life science) wins over the general science rule.
func Emoji(subject string) string {
	if subject == "" {
		return defaultEmoji
	}
	s := strings.ToLower(subject)
	for _, r := range emojiRules {
		for _, k := range r.keywords {
			if strings.Contains(s, k) {
				return r.emoji
			}
		}
	}
	return defaultEmoji
}
