package app

import (
	"context"
	"sync"

	"tableflip.dev/duedeck/pkg/carousel"
	"tableflip.dev/duedeck/pkg/countdown"
	"tableflip.dev/duedeck/pkg/logging"
	"tableflip.dev/duedeck/pkg/store"
)

// Session owns the recurring work attached to the latest refresh: one
// countdown timer and one carousel controller. Applying a new result tears
// both down before installing their replacements.
type Session struct {
	Timer    *countdown.Timer
	Carousel carousel.Config

	mu      sync.Mutex
	current *PipelineResult
	ctrl    *carousel.Controller
}

// NewSession returns a session whose carousel uses cfg.
func NewSession(cfg carousel.Config) *Session {
	return &Session{Timer: &countdown.Timer{}, Carousel: cfg}
}

// CarouselFor reads the carousel geometry out of settings. The viewport is
// left for the view to set.
func CarouselFor(s *store.Settings) carousel.Config {
	return carousel.Config{
		CardWidth: float64(s.CardWidth),
		Gap:       float64(s.CardGap),
		Threshold: s.FocusThreshold,
		Highlight: s.Highlight,
	}
}

// Apply installs res. The previous countdown is stopped and the previous
// controller detached before anything new starts. sink may be nil for
// views without a carousel, tick may be nil for views without a countdown.
// The returned controller is only valid until the next Apply.
func (s *Session) Apply(ctx context.Context, res *PipelineResult, sink carousel.Sink, tick countdown.Tick) *carousel.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Timer == nil {
		s.Timer = &countdown.Timer{}
	}
	s.Timer.Stop()
	if s.ctrl != nil {
		s.ctrl.Detach()
	}

	s.current = res
	s.ctrl = carousel.New(s.Carousel, res.SetSize())
	if sink != nil && !res.Empty() {
		s.ctrl.Bind(sink)
		s.ctrl.Initialize(s.ctrl.SetWidth())
	}

	if res != nil && res.Urgency.Countdown.Active && tick != nil {
		s.Timer.Arm(ctx, res.Urgency.Countdown.Deadline, tick)
	}
	logging.Logger().Debug("app: session applied",
		"cards", res.SetSize(),
		"countdown", s.Timer.Active())
	return s.ctrl
}

// Current is the result installed by the last Apply.
func (s *Session) Current() *PipelineResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Controller is the carousel installed by the last Apply.
func (s *Session) Controller() *carousel.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl
}

// Close stops the countdown and detaches the carousel.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Timer != nil {
		s.Timer.Stop()
	}
	if s.ctrl != nil {
		s.ctrl.Detach()
	}
}
