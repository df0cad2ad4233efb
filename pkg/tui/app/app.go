// Package teaui hosts the Bubble Tea program for the duedeck TUI.
package teaui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/v2/spinner"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/duedeck/pkg/app"
	"tableflip.dev/duedeck/pkg/carousel"
	"tableflip.dev/duedeck/pkg/logging"
	"tableflip.dev/duedeck/pkg/store"
	"tableflip.dev/duedeck/pkg/timeutil"
	"tableflip.dev/duedeck/pkg/tui/theme"
)

// Model states
type mode int

const (
	modeNormal mode = iota
	modeHelp
)

// MaxClass is the highest class reachable with the number keys.
const MaxClass = 5

// Refresher produces pipeline results. *app.Service implements it.
type Refresher interface {
	Refresh(ctx context.Context) (*app.PipelineResult, error)
	Watch(ctx context.Context) (<-chan store.Event, error)
}

// Options configures New.
type Options struct {
	// ServiceFor builds the refresher for a class. Required.
	ServiceFor func(class int) (Refresher, error)
	// Class is the class shown first.
	Class int
	// Remember stores the class after a switch. Optional.
	Remember func(class int) error
	Carousel carousel.Config
	Theme    theme.Theme
	Now      timeutil.Clock
}

var errNoServiceFactory = errors.New("tui: no service factory")

// Model contains UI state
type Model struct {
	opts    Options
	ctx     context.Context
	cancel  context.CancelFunc
	mode    mode
	theme   theme.Theme
	session *app.Session
	sink    *deckSink
	spin    spinner.Model

	svc     Refresher
	class   int
	res     *app.PipelineResult
	err     error
	loading bool
	status  string

	remaining time.Duration
	expired   bool
	ticks     chan time.Duration
	watching  bool

	flipped      map[int]bool
	showCalendar bool
	urgentCursor int

	termWidth  int
	termHeight int
}

// messages
type refreshMsg struct {
	res   *app.PipelineResult
	err   error
	class int
}
type countdownMsg struct{ remaining time.Duration }
type watchMsg struct {
	ev store.Event
	ch <-chan store.Event
}
type expireMsg struct{}

// New creates a UI model. Call Close when the program has exited.
func New(opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	if opts.Class <= 0 {
		opts.Class = 1
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = opts.Theme.Header

	m := &Model{
		opts:         opts,
		ctx:          ctx,
		cancel:       cancel,
		theme:        opts.Theme,
		session:      app.NewSession(opts.Carousel),
		sink:         newDeckSink(),
		spin:         s,
		class:        opts.Class,
		remaining:    -1,
		ticks:        make(chan time.Duration, 1),
		flipped:      map[int]bool{},
		showCalendar: true,
		status:       "←/→ move · enter flip · u next urgent · 1-5 class · r refresh · ? help · q quit",
	}
	if opts.Now != nil {
		m.session.Timer.Now = opts.Now
	}
	svc, err := m.serviceFor(opts.Class)
	m.svc, m.err = svc, err
	return m
}

func (m *Model) serviceFor(class int) (Refresher, error) {
	if m.opts.ServiceFor == nil {
		return nil, errNoServiceFactory
	}
	return m.opts.ServiceFor(class)
}

func (m *Model) now() time.Time {
	if m.opts.Now != nil {
		return m.opts.Now()
	}
	return time.Now()
}

// Close stops the countdown and anything waiting on the model.
func (m *Model) Close() {
	m.session.Close()
	m.cancel()
}

// Init starts the first refresh.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.waitTick())
}

func (m *Model) refresh() tea.Cmd {
	if m.svc == nil {
		return nil
	}
	svc, class, ctx := m.svc, m.class, m.ctx
	m.loading = true
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		res, err := svc.Refresh(ctx)
		return refreshMsg{res: res, err: err, class: class}
	})
}

// pushTick runs on the countdown goroutine. It never blocks: a stale
// value waiting in the channel is replaced by the newest one.
func (m *Model) pushTick(remaining time.Duration) {
	select {
	case <-m.ticks:
	default:
	}
	select {
	case m.ticks <- remaining:
	default:
	}
}

func (m *Model) waitTick() tea.Cmd {
	ticks, ctx := m.ticks, m.ctx
	return func() tea.Msg {
		select {
		case d := <-ticks:
			return countdownMsg{remaining: d}
		case <-ctx.Done():
			return nil
		}
	}
}

func waitWatch(ctx context.Context, ch <-chan store.Event) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			return watchMsg{ev: ev, ch: ch}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) startWatch() tea.Cmd {
	if m.watching || m.svc == nil {
		return nil
	}
	ch, err := m.svc.Watch(m.ctx)
	if err != nil {
		logging.Logger().Warn("tui: watch", "err", err)
		return nil
	}
	if ch == nil {
		return nil
	}
	m.watching = true
	return waitWatch(m.ctx, ch)
}

// Update handles messages and keybindings
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.session.Carousel.Viewport = float64(msg.Width)
		if ctrl := m.session.Controller(); ctrl != nil {
			ctrl.SetViewport(float64(msg.Width))
		}
	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		}
	case refreshMsg:
		m.applyRefresh(msg)
		if cmd := m.startWatch(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case countdownMsg:
		m.remaining = msg.remaining
		if msg.remaining <= 0 {
			m.expired = true
			m.status = "Time is up for today's tasks"
		}
		cmds = append(cmds, m.waitTick())
	case watchMsg:
		logging.Logger().Debug("tui: source changed", "path", msg.ev.Path, "removed", msg.ev.Removed)
		cmds = append(cmds, m.refresh(), waitWatch(m.ctx, msg.ch))
	case expireMsg:
		if ctrl := m.session.Controller(); ctrl != nil {
			ctrl.Expire(m.now())
		}
	case tea.KeyPressMsg:
		if cmd := m.handleKey(msg.String()); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	switch len(cmds) {
	case 0:
		return m, nil
	case 1:
		return m, cmds[0]
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) applyRefresh(msg refreshMsg) {
	m.loading = false
	if msg.class != m.class {
		// A refresh for a class the user already left.
		return
	}
	m.flipped = map[int]bool{}
	m.urgentCursor = 0
	m.remaining = -1
	m.expired = false
	if msg.err != nil {
		m.err = msg.err
		m.res = nil
		m.session.Close()
		m.status = "Refresh failed, press r to retry"
		return
	}
	m.err = nil
	m.res = msg.res
	m.sink = newDeckSink()
	ctrl := m.session.Apply(m.ctx, msg.res, m.sink, m.pushTick)
	if m.termWidth > 0 {
		ctrl.SetViewport(float64(m.termWidth))
	}
	if ctrl.Bound() {
		// Start with the first card of the middle copy centered.
		start := ctrl.OffsetFor(2 * ctrl.SetSize())
		m.sink.ScrollTo(start, false)
		ctrl.OnScroll(start)
	}
	m.status = fmt.Sprintf("Refreshed %s", msg.res.FetchedAt.Format("15:04:05"))
}

func (m *Model) handleKey(key string) tea.Cmd {
	if m.mode == modeHelp {
		switch key {
		case "q", "esc", "?":
			m.mode = modeNormal
		case "ctrl+c":
			return tea.Quit
		}
		return nil
	}

	ctrl := m.session.Controller()
	switch key {
	case "q", "esc", "ctrl+c":
		return tea.Quit
	case "?":
		m.mode = modeHelp
	case "left", "h":
		if ctrl != nil {
			ctrl.Step(-1)
		}
	case "right", "l":
		if ctrl != nil {
			ctrl.Step(1)
		}
	case "enter", "space", " ":
		if i := m.focusedCard(); i >= 0 {
			m.flipped[i] = !m.flipped[i]
		}
	case "c":
		m.showCalendar = !m.showCalendar
	case "r":
		return m.refresh()
	case "u":
		return m.nextUrgent()
	case "1", "2", "3", "4", "5":
		return m.switchClass(int(key[0] - '0'))
	}
	return nil
}

// focusedCard is the logical index of the centered card, or -1.
func (m *Model) focusedCard() int {
	ctrl := m.session.Controller()
	if ctrl == nil || m.res.Empty() {
		return -1
	}
	return ctrl.LogicalIndex(m.sink.centered)
}

func (m *Model) nextUrgent() tea.Cmd {
	ctrl := m.session.Controller()
	if ctrl == nil || m.res == nil || len(m.res.Urgency.Urgent) == 0 {
		m.status = "Nothing due today or tomorrow"
		return nil
	}
	items := m.res.Urgency.Urgent
	item := items[m.urgentCursor%len(items)]
	m.urgentCursor++

	pos, ok := m.res.Position(item.OriginalIndex)
	if !ok {
		return nil
	}
	if _, ok := ctrl.ScrollToOriginalIndex(pos, m.now()); !ok {
		return nil
	}
	m.status = fmt.Sprintf("[%s] %s", item.Label, item.Title)
	d := ctrl.Config().Highlight
	if d <= 0 {
		d = carousel.DefaultHighlight
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return expireMsg{} })
}

func (m *Model) switchClass(class int) tea.Cmd {
	if class == m.class && m.err == nil {
		return nil
	}
	svc, err := m.serviceFor(class)
	if err != nil {
		m.status = fmt.Sprintf("Class %d: %v", class, err)
		return nil
	}
	m.class = class
	m.svc = svc
	m.res = nil
	m.session.Close()
	if m.opts.Remember != nil {
		if err := m.opts.Remember(class); err != nil {
			logging.Logger().Warn("tui: remember class", "class", class, "err", err)
		}
	}
	m.status = fmt.Sprintf("Loading class %d", class)
	return m.refresh()
}

// Run launches the interactive TUI program.
func Run(opts Options) error {
	m := New(opts)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
