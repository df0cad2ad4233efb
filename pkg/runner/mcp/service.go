// Package mcp provides the Model Context Protocol server integration for duedeck.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/duedeck/pkg/app"
	"tableflip.dev/duedeck/pkg/calendar"
	"tableflip.dev/duedeck/pkg/card"
	"tableflip.dev/duedeck/pkg/timeutil"
	"tableflip.dev/duedeck/pkg/urgency"
)

// Refresher produces pipeline results. *app.Service implements it.
type Refresher interface {
	Refresh(ctx context.Context) (*app.PipelineResult, error)
}

// Service answers read-only questions about the task sheet. Every call
// refreshes, so answers follow the sheet.
type Service struct {
	Source   Refresher
	Resolver timeutil.Resolver
	Now      timeutil.Clock
}

var (
	// ErrCardNotFound is returned when no card has the requested index.
	ErrCardNotFound = errors.New("card not found")
	// ErrNoDateColumn is returned by date based views when the sheet has
	// no recognizable date column.
	ErrNoDateColumn = errors.New("sheet has no date column")
)

// CardDTO is a transport-friendly projection of a card.
type CardDTO struct {
	card.Card
	Badge string `json:"badge,omitempty"`
}

// UrgentDTO lists the tasks due today or tomorrow and the countdown plan.
type UrgentDTO struct {
	Items     []urgency.Item    `json:"items"`
	Count     int               `json:"count"`
	Countdown urgency.Countdown `json:"countdown"`
	Remaining string            `json:"remaining,omitempty"`
}

// ResolvedDate is the answer of ResolveDate.
type ResolvedDate struct {
	Input    string `json:"input"`
	Date     string `json:"date"`
	DiffDays int    `json:"diffDays"`
	Level    string `json:"level"`
}

// NewService builds a service wrapper around r.
func NewService(r Refresher, resolver timeutil.Resolver) *Service {
	return &Service{Source: r, Resolver: resolver}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) refresh(ctx context.Context) (*app.PipelineResult, error) {
	if s.Source == nil {
		return nil, errors.New("source is not configured")
	}
	return s.Source.Refresh(ctx)
}

func toDTO(c card.Card) CardDTO {
	return CardDTO{Card: c, Badge: c.Badge()}
}

// ParseLevel maps user input onto a level filter. Empty and "all" match
// every card.
func ParseLevel(input string) (*urgency.Level, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "all":
		return nil, nil
	case "overdue":
		l := urgency.Overdue
		return &l, nil
	case "due-soon", "due_soon", "soon", "urgent":
		l := urgency.DueSoon
		return &l, nil
	case "normal":
		l := urgency.Normal
		return &l, nil
	default:
		return nil, fmt.Errorf("unknown level %q", input)
	}
}

// ListCards returns every card, optionally only those at level.
func (s *Service) ListCards(ctx context.Context, level *urgency.Level) ([]CardDTO, error) {
	res, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CardDTO, 0, len(res.Cards))
	for _, c := range res.Cards {
		if level != nil && c.Level != *level {
			continue
		}
		out = append(out, toDTO(c))
	}
	return out, nil
}

// CardByIndex returns the card built from the row at index.
func (s *Service) CardByIndex(ctx context.Context, index int) (CardDTO, error) {
	res, err := s.refresh(ctx)
	if err != nil {
		return CardDTO{}, err
	}
	c, ok := res.CardFor(index)
	if !ok {
		return CardDTO{}, fmt.Errorf("%w: %d", ErrCardNotFound, index)
	}
	return toDTO(c), nil
}

// Urgent returns the urgent list and the countdown plan.
func (s *Service) Urgent(ctx context.Context) (UrgentDTO, error) {
	res, err := s.refresh(ctx)
	if err != nil {
		return UrgentDTO{}, err
	}
	out := UrgentDTO{
		Items:     res.Urgency.Urgent,
		Count:     len(res.Urgency.Urgent),
		Countdown: res.Urgency.Countdown,
	}
	if out.Countdown.Active {
		out.Remaining = timeutil.FormatClock(out.Countdown.Remaining)
	}
	return out, nil
}

// Calendar returns the four week grid.
func (s *Service) Calendar(ctx context.Context) (*calendar.Grid, error) {
	res, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}
	if res.Calendar == nil {
		return nil, ErrNoDateColumn
	}
	return res.Calendar, nil
}

// Agenda returns the dated cards from today through days ahead.
func (s *Service) Agenda(ctx context.Context, days int) (app.AgendaResult, error) {
	if days < 0 {
		return app.AgendaResult{}, fmt.Errorf("days must not be negative, got %d", days)
	}
	res, err := s.refresh(ctx)
	if err != nil {
		return app.AgendaResult{}, err
	}
	if !res.Urgency.Enabled() {
		return app.AgendaResult{}, ErrNoDateColumn
	}
	now := s.now()
	return app.Agenda(res, now, now.AddDate(0, 0, days)), nil
}

// ResolveDate runs the date heuristic on text without touching the sheet.
func (s *Service) ResolveDate(text string) (ResolvedDate, error) {
	now := s.now()
	date, ok := s.Resolver.Resolve(text, now)
	if !ok {
		return ResolvedDate{}, fmt.Errorf("cannot read a date from %q", text)
	}
	diff := timeutil.DiffDays(date, now)
	return ResolvedDate{
		Input:    text,
		Date:     date.Format("2006-01-02"),
		DiffDays: diff,
		Level:    urgency.LevelFor(diff).String(),
	}, nil
}
