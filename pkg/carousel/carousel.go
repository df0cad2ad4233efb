// Package carousel fakes an endless horizontal strip of cards by laying out
// five copies of the card set and jumping between equivalent positions when
// the scroll offset drifts towards either end.
//
// The Controller holds no presentation state of its own. It reacts to scroll
// offsets reported by a view and drives that view through a Sink. It is not
// safe for concurrent use; views call it from their event loop.
package carousel

import (
	"math"
	"time"

	"tableflip.dev/duedeck/pkg/logging"
)

const (
	// SetCount is the number of copies of the card set that are laid out.
	SetCount = 5

	// DefaultThreshold is the focus distance in view units.
	DefaultThreshold = 150
	// DefaultHighlight is how long ScrollToOriginalIndex emphasizes a card.
	DefaultHighlight = 800 * time.Millisecond
)

// Sink is the view side of the carousel.
type Sink interface {
	// ScrollTo moves the view. smooth is false for wraparound jumps.
	ScrollTo(offset float64, smooth bool)
	// SetSmooth toggles animated scrolling.
	SetSmooth(on bool)
	// SetCentered marks the card at virtual index as centered, or clears
	// the mark when index is -1.
	SetCentered(index int)
	// Emphasize toggles the temporary scroll-to emphasis of a card. It is
	// independent of any urgency styling the card carries.
	Emphasize(index int, on bool)
}

// Config is the card geometry in view units (pixels, terminal cells).
type Config struct {
	CardWidth float64
	Gap       float64
	Viewport  float64
	// Threshold is the largest distance between a card's center and the
	// viewport's center that still counts as centered. It is capped at half
	// the card pitch so at most one card can match.
	Threshold float64
	Highlight time.Duration
}

// Pitch is the distance between the left edges of neighbouring cards.
func (c Config) Pitch() float64 {
	return c.CardWidth + c.Gap
}

func (c Config) threshold() float64 {
	t := c.Threshold
	if t <= 0 {
		t = DefaultThreshold
	}
	if half := c.Pitch() / 2; half > 0 && t > half {
		t = half
	}
	return t
}

func (c Config) highlight() time.Duration {
	if c.Highlight > 0 {
		return c.Highlight
	}
	return DefaultHighlight
}

type emphasis struct {
	index int
	until time.Time
}

// Controller tracks the scroll offset of one carousel.
type Controller struct {
	cfg     Config
	setSize int

	sink      Sink
	offset    float64
	width     float64
	centered  int
	resetting bool
	emphasis  *emphasis
}

// New returns a controller for setSize cards per copy.
func New(cfg Config, setSize int) *Controller {
	if setSize < 0 {
		setSize = 0
	}
	return &Controller{cfg: cfg, setSize: setSize, centered: -1}
}

// Bind attaches sink, replacing any previously bound sink.
func (c *Controller) Bind(sink Sink) {
	c.Detach()
	c.sink = sink
}

// Detach drops the sink. Later events are ignored until Bind is called.
func (c *Controller) Detach() {
	c.sink = nil
	c.emphasis = nil
	c.centered = -1
	c.resetting = false
}

// Bound reports whether a sink is attached.
func (c *Controller) Bound() bool { return c.sink != nil }

// Config returns the geometry.
func (c *Controller) Config() Config { return c.cfg }

// SetViewport updates the viewport width and refreshes focus.
func (c *Controller) SetViewport(width float64) {
	c.cfg.Viewport = width
	if c.sink != nil {
		c.UpdateFocus(c.offset)
	}
}

// SetSize is the number of cards in one copy.
func (c *Controller) SetSize() int { return c.setSize }

// CardCount is the number of laid out cards across all copies.
func (c *Controller) CardCount() int { return c.setSize * SetCount }

// SetWidth is the width of one copy of the card set.
func (c *Controller) SetWidth() float64 {
	return float64(c.setSize) * c.cfg.Pitch()
}

// Offset is the last known scroll offset.
func (c *Controller) Offset() float64 { return c.offset }

// Centered is the virtual index of the centered card, or -1.
func (c *Controller) Centered() int { return c.centered }

// LogicalIndex maps a virtual card index back onto its row.
func (c *Controller) LogicalIndex(virtual int) int {
	if c.setSize == 0 || virtual < 0 {
		return -1
	}
	return virtual % c.setSize
}

// Initialize places the view at the start of the middle copy.
func (c *Controller) Initialize(setWidth float64) {
	c.width = setWidth
	if c.sink == nil || setWidth <= 0 {
		return
	}
	c.offset = 2 * setWidth
	c.sink.ScrollTo(c.offset, false)
	c.UpdateFocus(c.offset)
}

// OnScroll handles a scroll offset reported by the view. An offset before
// the second copy or past the fourth moves by two copies without animation.
// It reports whether a correction happened. Calls made while a correction
// is in progress are ignored.
func (c *Controller) OnScroll(offset float64) bool {
	if c.sink == nil || c.resetting {
		return false
	}
	c.offset = offset

	corrected := false
	if w := c.width; w > 0 {
		switch {
		case offset < w:
			c.jump(2 * w)
			corrected = true
		case offset > 4*w:
			c.jump(-2 * w)
			corrected = true
		}
	}

	c.UpdateFocus(c.offset)
	return corrected
}

func (c *Controller) jump(delta float64) {
	c.resetting = true
	defer func() { c.resetting = false }()

	from := c.offset
	c.offset += delta
	c.sink.SetSmooth(false)
	c.sink.ScrollTo(c.offset, false)
	c.sink.SetSmooth(true)
	logging.Logger().Debug("carousel: wrapped", "from", from, "to", c.offset)
}

// UpdateFocus marks the first card whose center lies within the threshold
// of the viewport's center. It returns the card's virtual index or -1.
func (c *Controller) UpdateFocus(offset float64) int {
	idx := c.focusAt(offset)
	if idx != c.centered {
		c.centered = idx
		if c.sink != nil {
			c.sink.SetCentered(idx)
		}
	}
	return idx
}

func (c *Controller) focusAt(offset float64) int {
	pitch := c.cfg.Pitch()
	if pitch <= 0 {
		return -1
	}
	center := offset + c.cfg.Viewport/2
	limit := c.cfg.threshold()
	for i := 0; i < c.CardCount(); i++ {
		cardCenter := float64(i)*pitch + c.cfg.CardWidth/2
		if math.Abs(center-cardCenter) < limit {
			return i
		}
	}
	return -1
}

// OffsetFor is the offset that centers the card at virtual index.
func (c *Controller) OffsetFor(virtual int) float64 {
	return float64(virtual)*c.cfg.Pitch() + c.cfg.CardWidth/2 - c.cfg.Viewport/2
}

// Step scrolls smoothly by n cards from the centered card, or from the
// current offset when no card is centered.
func (c *Controller) Step(n int) int {
	if c.sink == nil || c.setSize == 0 {
		return -1
	}
	target := c.offset + float64(n)*c.cfg.Pitch()
	if c.centered >= 0 {
		target = c.OffsetFor(c.centered + n)
	}
	c.sink.ScrollTo(target, true)
	c.OnScroll(target)
	return c.centered
}

// ScrollToOriginalIndex centers the middle copy of row i and emphasizes it
// until Expire is called at or after now plus the highlight duration. Any
// emphasis still running is ended first. It returns the virtual index.
func (c *Controller) ScrollToOriginalIndex(i int, now time.Time) (int, bool) {
	if c.sink == nil || i < 0 || i >= c.setSize {
		return -1, false
	}
	target := i + 2*c.setSize

	c.endEmphasis()
	c.offset = c.OffsetFor(target)
	c.sink.ScrollTo(c.offset, true)
	c.UpdateFocus(c.offset)

	c.sink.Emphasize(target, true)
	c.emphasis = &emphasis{index: target, until: now.Add(c.cfg.highlight())}
	return target, true
}

// Emphasized returns the emphasized virtual index, if any.
func (c *Controller) Emphasized() (int, bool) {
	if c.emphasis == nil {
		return -1, false
	}
	return c.emphasis.index, true
}

// Expire ends the emphasis once its duration has elapsed. It reports
// whether anything changed.
func (c *Controller) Expire(now time.Time) bool {
	if c.emphasis == nil || now.Before(c.emphasis.until) {
		return false
	}
	c.endEmphasis()
	return true
}

func (c *Controller) endEmphasis() {
	if c.emphasis == nil {
		return
	}
	if c.sink != nil {
		c.sink.Emphasize(c.emphasis.index, false)
	}
	c.emphasis = nil
}
