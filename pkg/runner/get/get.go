// Package get prints one refresh of the task sheet.
package get

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/duedeck/pkg/app"
	"tableflip.dev/duedeck/pkg/card"
	"tableflip.dev/duedeck/pkg/printers"
	"tableflip.dev/duedeck/pkg/urgency"
)

// View selects what Get prints.
type View string

const (
	ViewAll      View = "all"
	ViewCards    View = "cards"
	ViewUrgent   View = "urgent"
	ViewCalendar View = "calendar"
)

// Refresher produces pipeline results. *app.Service implements it.
type Refresher interface {
	Refresh(ctx context.Context) (*app.PipelineResult, error)
}

type Get struct {
	Service Refresher
	View    View
	// Level keeps only cards at this level when set.
	Level *urgency.Level
	Class int
	JSON  bool
	Out   io.Writer
}

func (n *Get) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not get, no task source")
	}
	res, err := n.Service.Refresh(ctx)
	if err != nil {
		return err
	}
	if n.JSON {
		return n.writeJSON(res)
	}
	Render(printers.NewPrettyPrint(n.Out), res, n.View, n.Level, n.Class)
	return nil
}

func (n *Get) cards(res *app.PipelineResult) []card.Card {
	return Filter(res.Cards, n.Level)
}

func (n *Get) writeJSON(res *app.PipelineResult) error {
	var v interface{}
	switch n.View {
	case ViewCards:
		v = map[string]interface{}{"cards": n.cards(res)}
	case ViewUrgent:
		v = map[string]interface{}{
			"urgent":    res.Urgency.Urgent,
			"countdown": res.Urgency.Countdown,
		}
	case ViewCalendar:
		if res.Calendar == nil {
			return errors.New("sheet has no date column")
		}
		v = res.Calendar
	default:
		v = res
	}
	enc := json.NewEncoder(n.out())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (n *Get) out() io.Writer {
	if n.Out != nil {
		return n.Out
	}
	return color.Output
}

// Filter keeps the cards at level; a nil level keeps everything.
func Filter(cards []card.Card, level *urgency.Level) []card.Card {
	if level == nil {
		return cards
	}
	out := make([]card.Card, 0, len(cards))
	for _, c := range cards {
		if c.Level == *level {
			out = append(out, c)
		}
	}
	return out
}

// Render prints view of res with pp. It is shared with watch, which
// reprints after every change.
func Render(pp *printers.PrettyPrint, res *app.PipelineResult, view View, level *urgency.Level, class int) {
	if view == "" {
		view = ViewAll
	}
	if view == ViewAll {
		title := "duedeck"
		if class > 0 {
			title = fmt.Sprintf("duedeck · class %d", class)
		}
		pp.Title(fmt.Sprintf("%s · %s · %s", title, res.Source, res.FetchedAt.Format("15:04:05")))
		pp.NewLine()
	}

	if view == ViewAll || view == ViewUrgent {
		if res.Urgency.Enabled() {
			pp.Urgent(res.Urgency.Urgent...)
			pp.Countdown(res.Urgency.Countdown, -1)
			pp.NewLine()
		} else if view == ViewUrgent {
			pp.Line("no date column found")
		}
	}

	if view == ViewAll || view == ViewCards {
		cards := Filter(res.Cards, level)
		pp.TitleWithCount("Assignments", len(cards))
		pp.Cards(cards...)
	}

	if view == ViewAll || view == ViewCalendar {
		pp.Calendar(res.Calendar)
	}
}
