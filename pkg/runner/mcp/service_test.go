package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"tableflip.dev/duedeck/pkg/app"
	"tableflip.dev/duedeck/pkg/sheet"
	"tableflip.dev/duedeck/pkg/timeutil"
	"tableflip.dev/duedeck/pkg/urgency"
)

const tasksCSV = "번호,과제,과목,마감일,링크\n" +
	"1,essay,English,3/13,https://example.test/essay\n" +
	"2,lab report,Science,3/12,x\n" +
	"3,poster,,3/20,\n" +
	"4,old quiz,Math,3/1,\n"

var fixedNow = time.Date(2025, time.March, 12, 21, 0, 0, 0, time.UTC)

type staticRefresher struct {
	text  string
	err   error
	calls int
}

func (s *staticRefresher) Refresh(context.Context) (*app.PipelineResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	p := app.Pipeline{Ignored: sheet.NewIgnoreSet(0), Resolver: timeutil.Resolver{}}
	return p.RunText(s.text, fixedNow), nil
}

func newTestService(text string) (*Service, *staticRefresher) {
	r := &staticRefresher{text: text}
	svc := NewService(r, timeutil.Resolver{})
	svc.Now = func() time.Time { return fixedNow }
	return svc, r
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want *urgency.Level
		err  bool
	}{
		{in: ""},
		{in: "ALL"},
		{in: "overdue", want: ptr(urgency.Overdue)},
		{in: "due_soon", want: ptr(urgency.DueSoon)},
		{in: " soon ", want: ptr(urgency.DueSoon)},
		{in: "normal", want: ptr(urgency.Normal)},
		{in: "later", err: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.err {
			if err == nil {
				t.Errorf("ParseLevel(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q) unexpected error %v", tt.in, err)
			continue
		}
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func ptr(l urgency.Level) *urgency.Level { return &l }

func TestListCardsFiltersByLevel(t *testing.T) {
	svc, r := newTestService(tasksCSV)
	ctx := context.Background()

	all, err := svc.ListCards(ctx, nil)
	if err != nil {
		t.Fatalf("ListCards: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 cards, got %d", len(all))
	}

	soon, err := svc.ListCards(ctx, ptr(urgency.DueSoon))
	if err != nil {
		t.Fatalf("ListCards: %v", err)
	}
	if len(soon) != 2 || soon[0].Title != "essay" || soon[1].Title != "lab report" {
		t.Fatalf("unexpected due soon cards %+v", soon)
	}
	if soon[0].Badge != "⚠️ due soon" {
		t.Fatalf("unexpected badge %q", soon[0].Badge)
	}
	if r.calls != 2 {
		t.Fatalf("expected a refresh per call, got %d", r.calls)
	}
}

func TestCardByIndex(t *testing.T) {
	svc, _ := newTestService(tasksCSV)
	ctx := context.Background()

	dto, err := svc.CardByIndex(ctx, 3)
	if err != nil {
		t.Fatalf("CardByIndex: %v", err)
	}
	if dto.Title != "old quiz" || dto.Badge != "💀 overdue" {
		t.Fatalf("unexpected card %+v", dto)
	}

	if _, err := svc.CardByIndex(ctx, 9); !errors.Is(err, ErrCardNotFound) {
		t.Fatalf("expected ErrCardNotFound, got %v", err)
	}
}

func TestUrgent(t *testing.T) {
	svc, _ := newTestService(tasksCSV)
	dto, err := svc.Urgent(context.Background())
	if err != nil {
		t.Fatalf("Urgent: %v", err)
	}
	if dto.Count != 2 || !dto.Countdown.Active {
		t.Fatalf("unexpected urgent view %+v", dto)
	}
	if dto.Remaining != "03:00:00" {
		t.Fatalf("expected three hours left, got %q", dto.Remaining)
	}
}

func TestDateViewsNeedDateColumn(t *testing.T) {
	svc, _ := newTestService("번호,과제,비고\n1,essay,none\n")
	ctx := context.Background()

	if _, err := svc.Calendar(ctx); !errors.Is(err, ErrNoDateColumn) {
		t.Fatalf("Calendar: expected ErrNoDateColumn, got %v", err)
	}
	if _, err := svc.Agenda(ctx, 7); !errors.Is(err, ErrNoDateColumn) {
		t.Fatalf("Agenda: expected ErrNoDateColumn, got %v", err)
	}
}

func TestAgenda(t *testing.T) {
	svc, _ := newTestService(tasksCSV)
	ctx := context.Background()

	agenda, err := svc.Agenda(ctx, 7)
	if err != nil {
		t.Fatalf("Agenda: %v", err)
	}
	if agenda.Total != 2 || len(agenda.Sections) != 2 {
		t.Fatalf("unexpected agenda %+v", agenda)
	}
	if got := agenda.Sections[0].Cards[0].Title; got != "lab report" {
		t.Fatalf("expected today first, got %q", got)
	}

	if _, err := svc.Agenda(ctx, -1); err == nil {
		t.Fatalf("expected negative days to fail")
	}
}

func TestRefreshErrorsPropagate(t *testing.T) {
	svc, r := newTestService(tasksCSV)
	r.err = errors.New("offline")
	if _, err := svc.ListCards(context.Background(), nil); err == nil || !strings.Contains(err.Error(), "offline") {
		t.Fatalf("expected refresh error, got %v", err)
	}

	empty := NewService(nil, timeutil.Resolver{})
	if _, err := empty.Urgent(context.Background()); err == nil {
		t.Fatalf("expected error without a source")
	}
}

func TestResolveDate(t *testing.T) {
	svc, r := newTestService(tasksCSV)

	got, err := svc.ResolveDate("3/14 (금)")
	if err != nil {
		t.Fatalf("ResolveDate: %v", err)
	}
	want := ResolvedDate{Input: "3/14 (금)", Date: "2025-03-14", DiffDays: 2, Level: "normal"}
	if got != want {
		t.Fatalf("ResolveDate = %+v, want %+v", got, want)
	}
	if r.calls != 0 {
		t.Fatalf("ResolveDate should not touch the sheet")
	}

	if _, err := svc.ResolveDate("soon"); err == nil {
		t.Fatalf("expected an error for text without a date")
	}
}

func TestServerCallsTool(t *testing.T) {
	svc, _ := newTestService(tasksCSV)
	r := Runner{Source: svc.Source, Resolver: svc.Resolver}
	srv := r.NewServer()

	req := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_urgent","arguments":{}}}`
	resp := srv.HandleMessage(context.Background(), json.RawMessage(req))
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	if !strings.Contains(string(raw), "lab report") {
		t.Fatalf("expected urgent tasks in response, got %s", raw)
	}
}

func TestRunnerNeedsSource(t *testing.T) {
	if _, err := (Runner{}).HTTPHandler(); err == nil {
		t.Fatalf("expected an error without a task source")
	}
	if err := (Runner{}).Do(context.Background()); err == nil {
		t.Fatalf("expected an error without a task source")
	}
}
