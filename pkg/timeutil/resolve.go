// Package timeutil resolves loosely written deadline strings into calendar
// dates and provides the day arithmetic the urgency and calendar views share.
package timeutil

import (
	"regexp"
	"strconv"
	"time"
)

// DefaultRollover is how far in the past a month/day date may fall before
// it is read as next year's date.
const DefaultRollover = 180 * day

var digitRuns = regexp.MustCompile(`\d+`)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// Resolver turns free text like "2025.03.10", "3/10 (Mon)" or "1.5" into a
// calendar date.
type Resolver struct {
	// Rollover overrides DefaultRollover when positive.
	Rollover time.Duration
}

func (r Resolver) rollover() time.Duration {
	if r.Rollover > 0 {
		return r.Rollover
	}
	return DefaultRollover
}

// Resolve extracts digit runs from text:
//
//   - fewer than two runs fail;
//   - three or more runs whose first run has four digits read as year, month, day;
//   - otherwise the first two runs read as month, day in now's year.
//
// With exactly two runs, a date more than the rollover span before now moves
// to the following year. The returned date is midnight in now's location.
// Out of range months or days fail rather than overflow.
func (r Resolver) Resolve(text string, now time.Time) (time.Time, bool) {
	runs := digitRuns.FindAllString(text, -1)
	if len(runs) < 2 {
		return time.Time{}, false
	}

	first, err1 := strconv.Atoi(runs[0])
	second, err2 := strconv.Atoi(runs[1])
	if err1 != nil || err2 != nil {
		return time.Time{}, false
	}

	year, month, dd := now.Year(), first, second
	if len(runs) >= 3 && len(runs[0]) == 4 {
		third, err := strconv.Atoi(runs[2])
		if err != nil {
			return time.Time{}, false
		}
		year, month, dd = first, second, third
	}

	loc := now.Location()
	candidate, ok := date(year, month, dd, loc)
	if !ok {
		return time.Time{}, false
	}
	if len(runs) == 2 && now.Sub(candidate) > r.rollover() {
		return date(year+1, month, dd, loc)
	}
	return candidate, true
}

func date(year, month, dd int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || dd < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), dd, 0, 0, 0, 0, loc)
	if t.Year() != year || int(t.Month()) != month || t.Day() != dd {
		return time.Time{}, false
	}
	return t, true
}

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DiffDays is the whole number of calendar days from now's day to task's
// day: 0 for today, 1 for tomorrow, -1 for yesterday.
func DiffDays(task, now time.Time) int {
	ty, tm, td := task.Date()
	ny, nm, nd := now.Date()
	a := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	b := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b) / day)
}

// UntilMidnight is the time left before the next midnight after now.
func UntilMidnight(now time.Time) time.Duration {
	return Midnight(now).AddDate(0, 0, 1).Sub(now)
}

// FormatClock renders d as HH:MM:SS, clamping negatives to zero.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	return pad2(h) + ":" + pad2(m) + ":" + pad2(s)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
