// Package calendar buckets dated rows into a fixed four week window that
// starts on the Sunday of the previous week.
package calendar

import (
	"fmt"
	"strconv"
	"time"

	"tableflip.dev/duedeck/pkg/sheet"
	"tableflip.dev/duedeck/pkg/timeutil"
)

const (
	// Days is the number of cells in a Grid.
	Days = 28

	fallbackTitle = "Assignment"
)

// WeekdayClass groups days for styling.
type WeekdayClass int

const (
	Weekday WeekdayClass = iota
	Sunday
	Saturday
)

func (w WeekdayClass) String() string {
	switch w {
	case Sunday:
		return "sunday"
	case Saturday:
		return "saturday"
	default:
		return "weekday"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (w WeekdayClass) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// ClassOf returns the WeekdayClass of d.
func ClassOf(d time.Weekday) WeekdayClass {
	switch d {
	case time.Sunday:
		return Sunday
	case time.Saturday:
		return Saturday
	default:
		return Weekday
	}
}

// Cell is one day of the grid.
type Cell struct {
	Date    time.Time    `json:"date"`
	IsToday bool         `json:"isToday"`
	Class   WeekdayClass `json:"class"`
	Titles  []string     `json:"titles"`
}

// Label is the day number, or "Jan 1" style on the first of a month.
func (c Cell) Label() string {
	if c.Date.Day() == 1 {
		return c.Date.Format("Jan 2")
	}
	return strconv.Itoa(c.Date.Day())
}

// Grid is the four week window.
type Grid struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Cells []Cell    `json:"cells"`
}

// Title describes the window, e.g. "3/2 ~ 3/29 (4 weeks)".
func (g Grid) Title() string {
	return fmt.Sprintf("%d/%d ~ %d/%d (4 weeks)",
		int(g.Start.Month()), g.Start.Day(), int(g.End.Month()), g.End.Day())
}

// Weeks splits the cells into rows of seven.
func (g Grid) Weeks() [][]Cell {
	out := make([][]Cell, 0, len(g.Cells)/7)
	for i := 0; i+7 <= len(g.Cells); i += 7 {
		out = append(out, g.Cells[i:i+7])
	}
	return out
}

// TaskCount is the number of titles placed on the grid.
func (g Grid) TaskCount() int {
	n := 0
	for _, c := range g.Cells {
		n += len(c.Titles)
	}
	return n
}

// WindowStart returns the Sunday one week before the Sunday of now's week,
// at midnight in now's location.
func WindowStart(now time.Time) time.Time {
	today := timeutil.Midnight(now)
	return today.AddDate(0, 0, -int(today.Weekday())-7)
}

type dayKey struct {
	y int
	m time.Month
	d int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{y, m, d}
}

// Build places every row whose dateColumn cell resolves inside the window
// into its day's cell. Rows outside the window or without a date are left
// out. A negative dateColumn yields an empty grid of 28 days.
func Build(rows []sheet.Row, dateColumn int, now time.Time, resolver timeutil.Resolver) Grid {
	start := WindowStart(now)
	g := Grid{
		Start: start,
		End:   start.AddDate(0, 0, Days-1),
		Cells: make([]Cell, Days),
	}

	index := make(map[dayKey]int, Days)
	for i := range g.Cells {
		d := start.AddDate(0, 0, i)
		g.Cells[i] = Cell{
			Date:    d,
			IsToday: timeutil.SameDay(d, now),
			Class:   ClassOf(d.Weekday()),
			Titles:  []string{},
		}
		index[keyOf(d)] = i
	}

	if dateColumn < 0 {
		return g
	}
	for _, row := range rows {
		raw := row.Raw(dateColumn)
		if raw == "" {
			continue
		}
		date, ok := resolver.Resolve(raw, now)
		if !ok {
			continue
		}
		i, ok := index[keyOf(date)]
		if !ok {
			continue
		}
		title := row.Title()
		if title == "" {
			title = fallbackTitle
		}
		g.Cells[i].Titles = append(g.Cells[i].Titles, title)
	}
	return g
}
