package teaui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/reflow/ansi"

	"tableflip.dev/duedeck/pkg/app"
	"tableflip.dev/duedeck/pkg/carousel"
	"tableflip.dev/duedeck/pkg/sheet"
	"tableflip.dev/duedeck/pkg/store"
	"tableflip.dev/duedeck/pkg/timeutil"
	"tableflip.dev/duedeck/pkg/tui/theme"
)

const tasksCSV = "번호,과제,과목,마감일,링크\n" +
	"1,essay,English,3/13,https://example.test/essay\n" +
	"2,lab report,Science,3/12,x\n" +
	"3,poster,,3/20,\n" +
	"4,old quiz,Math,3/1,\n"

var fixedNow = time.Date(2025, time.March, 12, 21, 0, 0, 0, time.UTC)

type fakeRefresher struct{ class int }

func (f *fakeRefresher) Refresh(context.Context) (*app.PipelineResult, error) {
	return result(), nil
}

func (f *fakeRefresher) Watch(context.Context) (<-chan store.Event, error) {
	return nil, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func result() *app.PipelineResult {
	p := app.Pipeline{Ignored: sheet.NewIgnoreSet(0), Resolver: timeutil.Resolver{}}
	res := p.RunText(tasksCSV, fixedNow)
	res.Source = "fake"
	return res
}

func stripANSI(s string) string {
	var b strings.Builder
	ansiSeq := false
	for _, r := range s {
		if r == ansi.Marker {
			ansiSeq = true
			continue
		}
		if ansiSeq {
			if ansi.IsTerminator(r) {
				ansiSeq = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type harness struct {
	m          *Model
	clock      *clock
	requested  []int
	remembered []int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{clock: &clock{now: fixedNow}}
	h.m = New(Options{
		ServiceFor: func(class int) (Refresher, error) {
			h.requested = append(h.requested, class)
			if class == 3 {
				return nil, errors.New("gid not configured")
			}
			return &fakeRefresher{class: class}, nil
		},
		Remember: func(class int) error {
			h.remembered = append(h.remembered, class)
			return nil
		},
		Class:    1,
		Carousel: carousel.Config{CardWidth: 20, Gap: 2, Threshold: 150, Highlight: time.Second},
		Theme:    theme.New(true),
		Now:      h.clock.Now,
	})
	t.Cleanup(h.m.Close)
	h.m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return h
}

func (h *harness) load() {
	h.m.Update(refreshMsg{res: result(), class: h.m.class})
}

func (h *harness) key(msg tea.KeyPressMsg) tea.Cmd {
	_, cmd := h.m.Update(msg)
	return cmd
}

func TestViewBeforeFirstRefresh(t *testing.T) {
	h := newHarness(t)
	view := stripANSI(h.m.View())
	if !strings.Contains(view, "duedeck · class 1") || !strings.Contains(view, "loading tasks") {
		t.Fatalf("unexpected initial view %q", view)
	}
}

func TestViewAfterRefresh(t *testing.T) {
	h := newHarness(t)
	h.load()

	view := stripANSI(h.m.View())
	for _, want := range []string{
		"duedeck · class 1 · fake",
		"[due tomorrow] essay (3/13)",
		"[due today] lab report (3/12)",
		"⏰ lab report 03:00:00",
		"3/2 ~ 3/29 (4 weeks)",
		"essay",
		"⚠️ due soon",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("missing %q in view:\n%s", want, view)
		}
	}
	if got := h.m.focusedCard(); got != 0 {
		t.Fatalf("expected the first card centered, got %d", got)
	}
}

func TestNavigateAndFlip(t *testing.T) {
	h := newHarness(t)
	h.load()

	h.key(tea.KeyPressMsg{Code: tea.KeyRight})
	if got := h.m.focusedCard(); got != 1 {
		t.Fatalf("expected card 1 after right, got %d", got)
	}
	h.key(tea.KeyPressMsg{Code: tea.KeyLeft})
	h.key(tea.KeyPressMsg{Code: tea.KeyLeft})
	if got := h.m.focusedCard(); got != 3 {
		t.Fatalf("expected wraparound to card 3, got %d", got)
	}

	if strings.Contains(stripANSI(h.m.View()), "Math") {
		t.Fatalf("details should be hidden before flipping")
	}
	h.key(tea.KeyPressMsg{Code: tea.KeyEnter})
	view := stripANSI(h.m.View())
	if !strings.Contains(view, "과목") || !strings.Contains(view, "Math") {
		t.Fatalf("expected card back in view:\n%s", view)
	}
}

func TestJumpToUrgentEmphasizes(t *testing.T) {
	h := newHarness(t)
	h.load()
	h.key(tea.KeyPressMsg{Code: tea.KeyRight})
	h.key(tea.KeyPressMsg{Code: tea.KeyRight})

	cmd := h.key(tea.KeyPressMsg{Text: "u", Code: 'u'})
	if cmd == nil {
		t.Fatalf("expected an expiry tick")
	}
	if got := h.m.focusedCard(); got != 0 {
		t.Fatalf("expected the first urgent card centered, got %d", got)
	}
	ctrl := h.m.session.Controller()
	idx, ok := ctrl.Emphasized()
	if !ok || !h.m.sink.emphasis[idx] {
		t.Fatalf("expected emphasis on %d", idx)
	}

	h.m.Update(expireMsg{})
	if _, ok := ctrl.Emphasized(); !ok {
		t.Fatalf("emphasis ended early")
	}
	h.clock.Advance(time.Second)
	h.m.Update(expireMsg{})
	if _, ok := ctrl.Emphasized(); ok || len(h.m.sink.emphasis) != 0 {
		t.Fatalf("expected emphasis to end")
	}

	// The next press moves on to the second urgent task.
	h.key(tea.KeyPressMsg{Text: "u", Code: 'u'})
	if got := h.m.focusedCard(); got != 1 {
		t.Fatalf("expected the second urgent card, got %d", got)
	}
}

func TestRefreshFailureClearsCards(t *testing.T) {
	h := newHarness(t)
	h.load()
	h.m.Update(refreshMsg{err: errors.New("offline"), class: 1})

	view := stripANSI(h.m.View())
	if !strings.Contains(view, "offline") || strings.Contains(view, "essay") {
		t.Fatalf("expected error state without cards:\n%s", view)
	}
	if h.m.session.Timer.Active() {
		t.Fatalf("countdown should stop on failure")
	}
}

func TestSwitchClass(t *testing.T) {
	h := newHarness(t)
	h.load()

	if cmd := h.key(tea.KeyPressMsg{Text: "2", Code: '2'}); cmd == nil {
		t.Fatalf("expected a refresh for class 2")
	}
	if h.m.class != 2 || len(h.remembered) != 1 || h.remembered[0] != 2 {
		t.Fatalf("expected class 2 remembered, got %d %v", h.m.class, h.remembered)
	}
	// A late result for the old class is dropped.
	h.m.Update(refreshMsg{res: result(), class: 1})
	if h.m.res != nil {
		t.Fatalf("stale refresh applied")
	}

	h.key(tea.KeyPressMsg{Text: "3", Code: '3'})
	if h.m.class != 2 || !strings.Contains(h.m.status, "Class 3") {
		t.Fatalf("expected class 3 to be refused, status %q", h.m.status)
	}
}

func TestCountdownMessages(t *testing.T) {
	h := newHarness(t)
	h.load()
	h.m.Update(countdownMsg{remaining: 90 * time.Second})
	if view := stripANSI(h.m.View()); !strings.Contains(view, "⏰ lab report 00:01:30") {
		t.Fatalf("expected ticking countdown:\n%s", view)
	}
	h.m.Update(countdownMsg{remaining: 0})
	if !strings.Contains(h.m.status, "Time is up") {
		t.Fatalf("unexpected status %q", h.m.status)
	}
	if view := stripANSI(h.m.View()); strings.Contains(view, "⏰") {
		t.Fatalf("expected the countdown to hide once it reaches zero:\n%s", view)
	}

	// The next refresh shows it again.
	h.load()
	if view := stripANSI(h.m.View()); !strings.Contains(view, "⏰ lab report") {
		t.Fatalf("expected countdown after refresh:\n%s", view)
	}
}

func TestPushTickKeepsLatest(t *testing.T) {
	h := newHarness(t)
	h.m.pushTick(3 * time.Second)
	h.m.pushTick(2 * time.Second)
	msg := h.m.waitTick()()
	if got, ok := msg.(countdownMsg); !ok || got.remaining != 2*time.Second {
		t.Fatalf("expected latest tick, got %#v", msg)
	}
}

func TestHelpAndQuit(t *testing.T) {
	h := newHarness(t)
	h.load()
	h.key(tea.KeyPressMsg{Text: "?", Code: '?'})
	if !strings.Contains(stripANSI(h.m.View()), "switch class") {
		t.Fatalf("expected help view")
	}
	h.key(tea.KeyPressMsg{Code: tea.KeyEscape})
	if h.m.mode != modeNormal {
		t.Fatalf("expected help closed")
	}
	cmd := h.key(tea.KeyPressMsg{Text: "q", Code: 'q'})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
}
