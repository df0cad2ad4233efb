// Package watch reprints the deck whenever its local source file changes.
package watch

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/duedeck/pkg/app"
	"tableflip.dev/duedeck/pkg/logging"
	"tableflip.dev/duedeck/pkg/printers"
	"tableflip.dev/duedeck/pkg/runner/get"
	"tableflip.dev/duedeck/pkg/store"
)

// ErrNotWatchable is returned for sources that are not local files.
var ErrNotWatchable = errors.New("watch: only a local file source can be watched")

// Refresher refreshes and reports source changes. *app.Service implements it.
type Refresher interface {
	Refresh(ctx context.Context) (*app.PipelineResult, error)
	Watch(ctx context.Context) (<-chan store.Event, error)
}

type Watch struct {
	Service Refresher
	View    get.View
	Class   int
	Out     io.Writer
	// OnRender is called after every render. Optional.
	OnRender func(res *app.PipelineResult, err error)
}

// Do renders once, then again after every change, until ctx is done.
func (n *Watch) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not watch, no task source")
	}
	ch, err := n.Service.Watch(ctx)
	if err != nil {
		return err
	}
	if ch == nil {
		return ErrNotWatchable
	}

	pp := printers.NewPrettyPrint(n.Out)
	if err := n.render(ctx, pp); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if ev.Removed {
				pp.Line("%s was removed, waiting for it to come back", ev.Path)
				continue
			}
			logging.Logger().Debug("watch: source changed", "path", ev.Path)
			// A failed refresh after a change keeps watching; the file is
			// often mid-write.
			if err := n.render(ctx, pp); err != nil {
				pp.Line("refresh failed: %v", err)
			}
		}
	}
}

func (n *Watch) render(ctx context.Context, pp *printers.PrettyPrint) error {
	res, err := n.Service.Refresh(ctx)
	if n.OnRender != nil {
		n.OnRender(res, err)
	}
	if err != nil {
		return err
	}
	get.Render(pp, res, n.View, nil, n.Class)
	return nil
}
