package teaui

import "tableflip.dev/duedeck/pkg/carousel"

// deckSink records what the carousel controller asks of the view. The
// terminal has no scroll animation, so smooth only shows up in the status
// line.
type deckSink struct {
	offset   float64
	smooth   bool
	centered int
	emphasis map[int]bool
}

var _ carousel.Sink = (*deckSink)(nil)

func newDeckSink() *deckSink {
	return &deckSink{centered: -1, smooth: true, emphasis: map[int]bool{}}
}

func (s *deckSink) ScrollTo(offset float64, smooth bool) {
	s.offset = offset
}

func (s *deckSink) SetSmooth(on bool) { s.smooth = on }

func (s *deckSink) SetCentered(index int) { s.centered = index }

func (s *deckSink) Emphasize(index int, on bool) {
	if on {
		s.emphasis[index] = true
		return
	}
	delete(s.emphasis, index)
}
