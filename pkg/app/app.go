package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tableflip.dev/duedeck/pkg/calendar"
	"tableflip.dev/duedeck/pkg/card"
	"tableflip.dev/duedeck/pkg/logging"
	"tableflip.dev/duedeck/pkg/sheet"
	"tableflip.dev/duedeck/pkg/source"
	"tableflip.dev/duedeck/pkg/store"
	"tableflip.dev/duedeck/pkg/timeutil"
	"tableflip.dev/duedeck/pkg/urgency"
)

// ErrNoSource is returned when neither the settings nor the preference
// store name somewhere to read tasks from.
var ErrNoSource = source.ErrNoSource

// Service runs the refresh pipeline against a source.
// It is shared by the CLI, the TUI and the servers so they agree on what a
// refresh produces.
type Service struct {
	Source   source.Source
	Pipeline Pipeline
	// Timeout bounds a single fetch. Zero means no limit beyond ctx.
	Timeout time.Duration
	Now     timeutil.Clock
}

// NewService builds a service from settings. When settings carry no
// webhook the one saved in prefs is used; prefs may be nil. class picks
// the sheet tab when the source is a sheet id.
func NewService(s *store.Settings, prefs *store.Prefs, class int, client *http.Client) (*Service, error) {
	if s == nil {
		return nil, errors.New("app: no settings")
	}
	opts, err := SourceOptions(s, prefs, class)
	if err != nil {
		return nil, err
	}
	opts.Client = client
	src, err := source.Select(opts)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	logging.Logger().Debug("app: source selected", "source", src.Name(), "class", class)
	return &Service{
		Source:   src,
		Pipeline: PipelineFor(s),
		Timeout:  s.FetchTimeout,
	}, nil
}

// SourceOptions resolves where tasks come from.
func SourceOptions(s *store.Settings, prefs *store.Prefs, class int) (source.Options, error) {
	opts := source.Options{
		Webhook: s.WebhookURL,
		File:    s.File,
		URL:     s.SourceURL,
		SheetID: s.SheetID,
	}
	if opts.Webhook == "" && prefs != nil {
		if v, ok := prefs.Lookup(store.PrefWebhookURL); ok {
			opts.Webhook = v
		}
	}
	if opts.Webhook == "" && opts.File == "" && opts.URL == "" && opts.SheetID != "" {
		gid, err := source.ResolveGID(s.Classes, class)
		if err != nil {
			return source.Options{}, fmt.Errorf("app: %w", err)
		}
		opts.GID = gid
	}
	return opts, nil
}

// ClassFor returns the class to show: explicit when set, else the one
// remembered in prefs, else the configured default.
func ClassFor(s *store.Settings, prefs *store.Prefs, explicit int) int {
	if explicit > 0 {
		return explicit
	}
	if prefs != nil {
		if v, ok := prefs.Lookup(store.PrefClass); ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				return n
			}
		}
	}
	return s.Class
}

// RememberClass stores class as the one to show next time.
func RememberClass(prefs *store.Prefs, class int) error {
	if prefs == nil {
		return nil
	}
	if err := prefs.Set(store.PrefClass, strconv.Itoa(class)); err != nil {
		return fmt.Errorf("app: remember class: %w", err)
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Refresh fetches the table and runs every stage on it. A fetch failure
// aborts the refresh and no partial result is returned.
func (s *Service) Refresh(ctx context.Context) (*PipelineResult, error) {
	if s.Source == nil {
		return nil, ErrNoSource
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	started := time.Now()
	t, err := s.Source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: refresh from %s: %w", s.Source.Name(), err)
	}
	res := s.Pipeline.Run(t, s.now())
	res.Source = s.Source.Name()
	logging.Logger().Debug("app: refreshed",
		"source", res.Source,
		"rows", len(res.Rows),
		"urgent", len(res.Urgency.Urgent),
		"took", time.Since(started))
	return res, nil
}

// Watch streams change events when the source is a local file. Other
// sources return a nil channel, which never fires.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	f, ok := s.Source.(*source.File)
	if !ok {
		return nil, nil
	}
	return store.WatchFile(ctx, f.Path)
}

// Pipeline is the configuration of the stages after the fetch.
type Pipeline struct {
	Ignored  sheet.IgnoreSet
	Resolver timeutil.Resolver
	Window   time.Duration
}

// PipelineFor reads the stage configuration out of settings.
func PipelineFor(s *store.Settings) Pipeline {
	return Pipeline{
		Ignored:  sheet.NewIgnoreSet(s.IgnoredColumns...),
		Resolver: timeutil.Resolver{Rollover: s.Rollover},
		Window:   s.CountdownWindow,
	}
}

// Run projects, classifies and buckets t. It never fails; malformed rows
// simply drop out of the date based views.
func (p Pipeline) Run(t sheet.Table, now time.Time) *PipelineResult {
	headers, rows := sheet.Project(t.Headers, t.Rows, p.Ignored)
	dateCol := urgency.FindDateColumn(t.Headers)
	classifier := urgency.Classifier{Resolver: p.Resolver, Window: p.Window}
	res := classifier.Classify(rows, dateCol, now)

	out := &PipelineResult{
		FetchedAt:  now,
		RawHeaders: t.Headers,
		Headers:    headers,
		Rows:       rows,
		Cards:      card.Build(headers, t.Headers, rows, res),
		Urgency:    res,
	}
	if res.Enabled() {
		grid := calendar.Build(rows, dateCol, now, p.Resolver)
		out.Calendar = &grid
	}
	return out
}

// RunText parses raw comma separated text and runs the pipeline on it.
func (p Pipeline) RunText(text string, now time.Time) *PipelineResult {
	return p.Run(sheet.Parse(text), now)
}

// PipelineResult is everything one refresh produced.
type PipelineResult struct {
	FetchedAt  time.Time      `json:"fetchedAt"`
	Source     string         `json:"source,omitempty"`
	RawHeaders []string       `json:"rawHeaders"`
	Headers    []string       `json:"headers"`
	Rows       []sheet.Row    `json:"-"`
	Cards      []card.Card    `json:"cards"`
	Urgency    urgency.Result `json:"urgency"`
	// Calendar is nil when no date column was found.
	Calendar *calendar.Grid `json:"calendar,omitempty"`
}

// Empty reports whether the refresh found no tasks.
func (r *PipelineResult) Empty() bool {
	return r == nil || len(r.Cards) == 0
}

// SetSize is the number of cards in one carousel copy.
func (r *PipelineResult) SetSize() int {
	if r == nil {
		return 0
	}
	return len(r.Cards)
}

// CardFor returns the card built from the row at originalIndex.
func (r *PipelineResult) CardFor(originalIndex int) (card.Card, bool) {
	if r == nil {
		return card.Card{}, false
	}
	for _, c := range r.Cards {
		if c.OriginalIndex == originalIndex {
			return c, true
		}
	}
	return card.Card{}, false
}

// Position returns the carousel position of the row at originalIndex.
func (r *PipelineResult) Position(originalIndex int) (int, bool) {
	if r == nil {
		return 0, false
	}
	for i, c := range r.Cards {
		if c.OriginalIndex == originalIndex {
			return i, true
		}
	}
	return 0, false
}
