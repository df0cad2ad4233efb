package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"tableflip.dev/duedeck/pkg/carousel"
	"tableflip.dev/duedeck/pkg/countdown"
	"tableflip.dev/duedeck/pkg/store"
)

type nopSink struct {
	scrolls atomic.Int32
}

func (s *nopSink) ScrollTo(float64, bool) { s.scrolls.Add(1) }
func (s *nopSink) SetSmooth(bool)         {}
func (s *nopSink) SetCentered(int)        {}
func (s *nopSink) Emphasize(int, bool)    {}

func testSession() *Session {
	s := NewSession(carousel.Config{CardWidth: 28, Gap: 2, Viewport: 80})
	s.Timer = &countdown.Timer{
		Now:      func() time.Time { return fixedNow },
		Interval: 2 * time.Millisecond,
	}
	return s
}

func counter() (*atomic.Int32, countdown.Tick) {
	n := &atomic.Int32{}
	return n, func(time.Duration) { n.Add(1) }
}

func waitFor(t *testing.T, n *atomic.Int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for n.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("tick never arrived")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSessionApplyReplacesTimerAndCarousel(t *testing.T) {
	res := testPipeline().RunText(tasksCSV, fixedNow)
	s := testSession()
	defer s.Close()

	first, tick1 := counter()
	sink1 := &nopSink{}
	ctrl1 := s.Apply(context.Background(), res, sink1, tick1)
	if !ctrl1.Bound() || sink1.scrolls.Load() == 0 {
		t.Fatalf("expected first carousel bound and initialized")
	}
	waitFor(t, first)

	second, tick2 := counter()
	ctrl2 := s.Apply(context.Background(), res, &nopSink{}, tick2)
	if ctrl1.Bound() {
		t.Fatalf("previous carousel still bound")
	}
	if !ctrl2.Bound() || s.Controller() != ctrl2 {
		t.Fatalf("expected new carousel installed")
	}
	waitFor(t, second)

	// The first countdown was stopped before Apply returned.
	stale := first.Load()
	time.Sleep(20 * time.Millisecond)
	if first.Load() != stale {
		t.Fatalf("first countdown still ticking")
	}
	if !s.Timer.Active() {
		t.Fatalf("expected one active countdown")
	}

	s.Close()
	if s.Timer.Active() || ctrl2.Bound() {
		t.Fatalf("close should stop everything")
	}
}

func TestSessionApplyWithoutCountdown(t *testing.T) {
	s := testSession()
	defer s.Close()

	// Nothing due today.
	res := testPipeline().RunText("번호,과제,마감일\n1,essay,3/20\n", fixedNow)
	_, tick := counter()
	s.Apply(context.Background(), res, &nopSink{}, tick)
	if s.Timer.Active() {
		t.Fatalf("no countdown expected")
	}
	if s.Current() != res {
		t.Fatalf("expected result to be current")
	}
}

func TestSessionApplyEmptyLeavesCarouselUnbound(t *testing.T) {
	s := testSession()
	defer s.Close()

	res := testPipeline().RunText("", fixedNow)
	sink := &nopSink{}
	ctrl := s.Apply(context.Background(), res, sink, nil)
	if ctrl.Bound() || sink.scrolls.Load() != 0 {
		t.Fatalf("empty results must not drive the carousel")
	}
}

func TestCarouselFor(t *testing.T) {
	cfg := CarouselFor(&store.Settings{
		CardWidth:      30,
		CardGap:        4,
		FocusThreshold: 150,
		Highlight:      800 * time.Millisecond,
	})
	if cfg.Pitch() != 34 {
		t.Errorf("expected pitch 34, got %v", cfg.Pitch())
	}
	if cfg.Threshold != 150 || cfg.Highlight != 800*time.Millisecond {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Viewport != 0 {
		t.Errorf("viewport belongs to the view, got %v", cfg.Viewport)
	}
}
