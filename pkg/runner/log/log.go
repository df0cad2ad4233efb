// Package log prints the day by day agenda of upcoming deadlines.
package log

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/duedeck/pkg/app"
	"tableflip.dev/duedeck/pkg/printers"
	"tableflip.dev/duedeck/pkg/timeutil"
)

// Refresher produces pipeline results. *app.Service implements it.
type Refresher interface {
	Refresh(ctx context.Context) (*app.PipelineResult, error)
}

type Log struct {
	Service Refresher
	// Span is how far ahead of today the agenda reaches.
	Span time.Duration
	// Past also includes the same span before today.
	Past bool
	Now  timeutil.Clock
	JSON bool
	Out  io.Writer
}

func (n *Log) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

func (n *Log) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not log, no task source")
	}
	res, err := n.Service.Refresh(ctx)
	if err != nil {
		return err
	}
	if !res.Urgency.Enabled() {
		return errors.New("sheet has no date column")
	}

	now := n.now()
	since := now
	if n.Past {
		since = now.Add(-n.Span)
	}
	agenda := app.Agenda(res, since, now.Add(n.Span))

	if n.JSON {
		w := n.Out
		if w == nil {
			w = color.Output
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(agenda)
	}
	printers.NewPrettyPrint(n.Out).Agenda(agenda)
	return nil
}
