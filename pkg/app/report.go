package app

import (
	"sort"
	"time"

	"tableflip.dev/duedeck/pkg/card"
	"tableflip.dev/duedeck/pkg/timeutil"
)

// AgendaSection groups the cards due on one day.
type AgendaSection struct {
	Date  time.Time   `json:"date"`
	Cards []card.Card `json:"cards"`
}

// AgendaResult lists dated tasks between two days, inclusive.
type AgendaResult struct {
	Since    time.Time       `json:"since"`
	Until    time.Time       `json:"until"`
	Sections []AgendaSection `json:"sections"`
	Total    int             `json:"total"`
}

// Agenda groups the dated cards of res by day between since and until.
// Bounds are compared by calendar day and swapped when reversed. Cards
// without a resolved date are left out.
func Agenda(res *PipelineResult, since, until time.Time) AgendaResult {
	since, until = timeutil.Midnight(since), timeutil.Midnight(until)
	if since.After(until) {
		since, until = until, since
	}
	out := AgendaResult{Since: since, Until: until}
	if res == nil {
		return out
	}

	byDay := make(map[time.Time][]card.Card)
	for _, c := range res.Cards {
		tag, ok := res.Urgency.TagFor(c.OriginalIndex)
		if !ok {
			continue
		}
		day := timeutil.Midnight(tag.Date)
		if day.Before(since) || day.After(until) {
			continue
		}
		byDay[day] = append(byDay[day], c)
		out.Total++
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	for _, d := range days {
		out.Sections = append(out.Sections, AgendaSection{Date: d, Cards: byDay[d]})
	}
	return out
}
