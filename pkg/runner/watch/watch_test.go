package watch

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tableflip.dev/duedeck/pkg/app"
	"tableflip.dev/duedeck/pkg/runner/get"
	"tableflip.dev/duedeck/pkg/sheet"
	"tableflip.dev/duedeck/pkg/store"
	"tableflip.dev/duedeck/pkg/timeutil"
)

var fixedNow = time.Date(2025, time.March, 12, 21, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu     sync.Mutex
	texts  []string
	events chan store.Event
}

func (f *fakeSource) Refresh(context.Context) (*app.PipelineResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		return nil, errors.New("mid-write")
	}
	text := f.texts[0]
	f.texts = f.texts[1:]
	p := app.Pipeline{Ignored: sheet.NewIgnoreSet(0), Resolver: timeutil.Resolver{}}
	return p.RunText(text, fixedNow), nil
}

func (f *fakeSource) Watch(context.Context) (<-chan store.Event, error) {
	if f.events == nil {
		return nil, nil
	}
	return f.events, nil
}

func TestWatchRerenders(t *testing.T) {
	src := &fakeSource{
		texts: []string{
			"번호,과제,마감일\n1,essay,3/13\n",
			"번호,과제,마감일\n1,essay,3/13\n2,poster,3/20\n",
		},
		events: make(chan store.Event),
	}
	renders := make(chan int, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := &Watch{
		Service: src,
		View:    get.ViewCards,
		Out:     &bytes.Buffer{},
		OnRender: func(res *app.PipelineResult, err error) {
			if err != nil {
				renders <- -1
				return
			}
			renders <- len(res.Cards)
		},
	}
	done := make(chan error, 1)
	go func() { done <- w.Do(ctx) }()

	expect := func(want int) {
		t.Helper()
		select {
		case got := <-renders:
			if got != want {
				t.Fatalf("expected render with %d cards, got %d", want, got)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for render")
		}
	}
	expect(1)
	src.events <- store.Event{Path: "tasks.csv"}
	expect(2)
	// A failing refresh after a change keeps the watch going.
	src.events <- store.Event{Path: "tasks.csv"}
	expect(-1)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Do: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watch did not stop")
	}
}

func TestWatchNeedsFileSource(t *testing.T) {
	w := &Watch{Service: &fakeSource{texts: []string{"a\n"}}, Out: &bytes.Buffer{}}
	if err := w.Do(context.Background()); !errors.Is(err, ErrNotWatchable) {
		t.Fatalf("expected ErrNotWatchable, got %v", err)
	}
}

func TestWatchInitialFailure(t *testing.T) {
	w := &Watch{Service: &fakeSource{events: make(chan store.Event)}, Out: &bytes.Buffer{}}
	if err := w.Do(context.Background()); err == nil {
		t.Fatalf("expected the first refresh error")
	}
}
