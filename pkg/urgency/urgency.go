// Package urgency tags rows by how close their deadline is and decides
// whether the end-of-day countdown should run.
package urgency

import (
	"fmt"
	"strings"
	"time"

	"tableflip.dev/duedeck/pkg/logging"
	"tableflip.dev/duedeck/pkg/sheet"
	"tableflip.dev/duedeck/pkg/timeutil"
)

// DateKeywords mark a header as the deadline column (date, deadline,
// due, schedule, submission).
var DateKeywords = []string{"날짜", "기한", "마감", "일정", "제출"}

const (
	// DefaultWindow is how close to midnight the countdown may start.
	DefaultWindow = 4 * time.Hour

	LabelToday    = "due today"
	LabelTomorrow = "due tomorrow"

	untitled   = "Untitled"
	assignment = "Assignment"
)

// FindDateColumn returns the index of the first raw header containing one
// of DateKeywords, or -1.
func FindDateColumn(rawHeaders []string) int {
	return sheet.FindColumn(rawHeaders, sheet.ContainsAny(DateKeywords...))
}

// Level is the urgency class of a row.
type Level int

const (
	Normal Level = iota
	DueSoon
	Overdue
)

func (l Level) String() string {
	switch l {
	case DueSoon:
		return "due-soon"
	case Overdue:
		return "overdue"
	default:
		return "normal"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	switch string(text) {
	case "normal":
		*l = Normal
	case "due-soon":
		*l = DueSoon
	case "overdue":
		*l = Overdue
	default:
		return fmt.Errorf("urgency: unknown level %q", text)
	}
	return nil
}

// LevelFor maps a day difference onto a Level.
func LevelFor(diffDays int) Level {
	switch {
	case diffDays < 0:
		return Overdue
	case diffDays <= 1:
		return DueSoon
	default:
		return Normal
	}
}

// Tag is the classification of one row with a resolvable date.
type Tag struct {
	Level    Level     `json:"level"`
	DiffDays int       `json:"diffDays"`
	Date     time.Time `json:"date"`
}

// Item is an entry of the urgent list.
type Item struct {
	OriginalIndex int    `json:"originalIndex"`
	Title         string `json:"title"`
	Deadline      string `json:"deadline"`
	Label         string `json:"label"`
	DiffDays      int    `json:"diffDays"`
}

// Countdown describes the end-of-day timer for tasks due today.
type Countdown struct {
	Active    bool          `json:"active"`
	Titles    []string      `json:"titles,omitempty"`
	Deadline  time.Time     `json:"deadline"`
	Remaining time.Duration `json:"remaining"`
}

// Label joins the countdown titles for display.
func (c Countdown) Label() string {
	return strings.Join(c.Titles, ", ")
}

// Result is the outcome of Classify.
type Result struct {
	DateColumn int         `json:"dateColumn"`
	Tags       map[int]Tag `json:"tags,omitempty"`
	Urgent     []Item      `json:"urgent"`
	Countdown  Countdown   `json:"countdown"`
}

// Enabled reports whether a date column was found.
func (r Result) Enabled() bool {
	return r.DateColumn >= 0
}

// TagFor returns the tag of the row with the given original index.
func (r Result) TagFor(originalIndex int) (Tag, bool) {
	t, ok := r.Tags[originalIndex]
	return t, ok
}

// Classifier tags rows against a clock reading.
type Classifier struct {
	Resolver timeutil.Resolver
	// Window overrides DefaultWindow when positive.
	Window time.Duration
}

func (c Classifier) window() time.Duration {
	if c.Window > 0 {
		return c.Window
	}
	return DefaultWindow
}

// Classify reads each row's raw dateColumn cell. Rows with an empty or
// unresolvable date are left untagged. The urgent list keeps row order.
// A negative dateColumn disables classification.
func (c Classifier) Classify(rows []sheet.Row, dateColumn int, now time.Time) Result {
	res := Result{DateColumn: dateColumn, Urgent: []Item{}}
	if dateColumn < 0 {
		return res
	}
	res.Tags = make(map[int]Tag, len(rows))

	var dueToday []string
	for _, row := range rows {
		raw := row.Raw(dateColumn)
		if raw == "" {
			continue
		}
		date, ok := c.Resolver.Resolve(raw, now)
		if !ok {
			logging.Logger().Debug("urgency: unresolved date", "row", row.OriginalIndex, "value", raw)
			continue
		}

		diff := timeutil.DiffDays(date, now)
		tag := Tag{Level: LevelFor(diff), DiffDays: diff, Date: date}
		res.Tags[row.OriginalIndex] = tag

		if tag.Level == DueSoon {
			label := LabelTomorrow
			if diff == 0 {
				label = LabelToday
			}
			res.Urgent = append(res.Urgent, Item{
				OriginalIndex: row.OriginalIndex,
				Title:         titleOr(row, untitled),
				Deadline:      raw,
				Label:         label,
				DiffDays:      diff,
			})
		}
		if timeutil.SameDay(date, now) {
			dueToday = append(dueToday, titleOr(row, assignment))
		}
	}

	res.Countdown = c.countdown(dueToday, now)
	return res
}

func (c Classifier) countdown(titles []string, now time.Time) Countdown {
	left := timeutil.UntilMidnight(now)
	cd := Countdown{
		Deadline:  timeutil.Midnight(now).AddDate(0, 0, 1),
		Remaining: left,
	}
	if len(titles) == 0 || left > c.window() {
		return cd
	}
	cd.Active = true
	cd.Titles = titles
	return cd
}

func titleOr(row sheet.Row, fallback string) string {
	if t := row.Title(); t != "" {
		return t
	}
	return fallback
}

// String renders the urgent item as a single line.
func (i Item) String() string {
	return fmt.Sprintf("[%s] %s (%s)", i.Label, i.Title, i.Deadline)
}
