// Package track follows the end-of-day countdown in the terminal.
package track

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/duedeck/pkg/app"
	"tableflip.dev/duedeck/pkg/countdown"
	"tableflip.dev/duedeck/pkg/printers"
	"tableflip.dev/duedeck/pkg/timeutil"
)

// Refresher produces pipeline results. *app.Service implements it.
type Refresher interface {
	Refresh(ctx context.Context) (*app.PipelineResult, error)
}

// Track prints the countdown for tasks due today.
type Track struct {
	Service Refresher
	// Live redraws the line every Interval until the deadline. Otherwise
	// the time left is printed once.
	Live     bool
	Interval time.Duration
	Now      timeutil.Clock
	Out      io.Writer
}

func (n *Track) out() io.Writer {
	if n.Out != nil {
		return n.Out
	}
	return color.Output
}

// Do refreshes once and follows the countdown it plans.
func (n *Track) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not track, no task source")
	}
	res, err := n.Service.Refresh(ctx)
	if err != nil {
		return err
	}

	pp := printers.NewPrettyPrint(n.Out)
	cd := res.Urgency.Countdown
	if !n.Live || !cd.Active {
		pp.Countdown(cd, -1)
		return nil
	}

	timer := &countdown.Timer{Now: n.Now, Interval: n.Interval}
	expired := make(chan struct{})
	timer.Arm(ctx, cd.Deadline, func(remaining time.Duration) {
		_, _ = fmt.Fprintf(n.out(), "\r\033[K⏰ %s %s", cd.Label(), timeutil.FormatClock(remaining))
		if remaining <= 0 {
			close(expired)
		}
	})

	select {
	case <-ctx.Done():
		timer.Stop()
		_, _ = fmt.Fprintln(n.out())
	case <-expired:
		timer.Stop()
		_, _ = fmt.Fprintln(n.out())
		pp.Line("Time is up for today's tasks")
	}
	return nil
}
