package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tableflip.dev/duedeck/pkg/sheet"
	"tableflip.dev/duedeck/pkg/source"
	"tableflip.dev/duedeck/pkg/store"
	"tableflip.dev/duedeck/pkg/timeutil"
	"tableflip.dev/duedeck/pkg/urgency"
)

const tasksCSV = "번호,과제,과목,마감일,링크\n" +
	"1,essay,English,3/13,https://example.test/essay\n" +
	"2,lab report,Science,3/12,x\n" +
	"3,poster,,3/20,\n" +
	"4,old quiz,Math,3/1,\n"

// Wednesday evening, three hours before midnight.
var fixedNow = time.Date(2025, time.March, 12, 21, 0, 0, 0, time.UTC)

type fakeSource struct {
	table sheet.Table
	err   error
	block bool
	calls int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context) (sheet.Table, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return sheet.Table{}, ctx.Err()
	}
	return f.table, f.err
}

func testPipeline() Pipeline {
	return Pipeline{
		Ignored:  sheet.NewIgnoreSet(0),
		Resolver: timeutil.Resolver{},
	}
}

func TestPipelineRun(t *testing.T) {
	res := testPipeline().RunText(tasksCSV, fixedNow)

	if got := strings.Join(res.Headers, ","); got != "과제,과목,마감일,링크" {
		t.Fatalf("unexpected headers %q", got)
	}
	if res.SetSize() != 4 || res.Empty() {
		t.Fatalf("expected 4 cards, got %d", res.SetSize())
	}

	want := []urgency.Level{urgency.DueSoon, urgency.DueSoon, urgency.Normal, urgency.Overdue}
	for i, c := range res.Cards {
		if c.Level != want[i] {
			t.Errorf("card %d (%s): expected %v, got %v", i, c.Title, want[i], c.Level)
		}
	}
	if res.Cards[0].Link != "https://example.test/essay" || res.Cards[1].HasLink() {
		t.Fatalf("unexpected links %q %q", res.Cards[0].Link, res.Cards[1].Link)
	}

	if len(res.Urgency.Urgent) != 2 || res.Urgency.Urgent[0].Title != "essay" || res.Urgency.Urgent[1].Label != urgency.LabelToday {
		t.Fatalf("unexpected urgent list %+v", res.Urgency.Urgent)
	}
	cd := res.Urgency.Countdown
	if !cd.Active || cd.Label() != "lab report" || cd.Remaining != 3*time.Hour {
		t.Fatalf("unexpected countdown %+v", cd)
	}

	if res.Calendar == nil {
		t.Fatalf("expected a calendar")
	}
	if res.Calendar.TaskCount() != 3 {
		t.Fatalf("expected 3 tasks inside the window, got %d", res.Calendar.TaskCount())
	}
}

func TestPipelineRunWithoutDateColumn(t *testing.T) {
	res := testPipeline().RunText("번호,과제,비고\n1,essay,none\n", fixedNow)
	if res.SetSize() != 1 {
		t.Fatalf("expected one card, got %d", res.SetSize())
	}
	if res.Urgency.Enabled() || res.Calendar != nil || res.Urgency.Countdown.Active {
		t.Fatalf("date features should be off: %+v", res.Urgency)
	}
}

func TestPipelineRunEmpty(t *testing.T) {
	res := testPipeline().RunText("", fixedNow)
	if !res.Empty() || res.SetSize() != 0 {
		t.Fatalf("expected empty result")
	}
}

func TestRefresh(t *testing.T) {
	src := &fakeSource{table: sheet.Parse(tasksCSV)}
	svc := &Service{Source: src, Pipeline: testPipeline(), Now: func() time.Time { return fixedNow }}

	res, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if res.Source != "fake" || !res.FetchedAt.Equal(fixedNow) || res.SetSize() != 4 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRefreshFailureIsFatal(t *testing.T) {
	boom := errors.New("boom")
	svc := &Service{Source: &fakeSource{err: boom}, Pipeline: testPipeline()}

	res, err := svc.Refresh(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped fetch error, got %v", err)
	}
	if res != nil {
		t.Fatalf("expected no partial result")
	}
}

func TestRefreshTimeout(t *testing.T) {
	svc := &Service{Source: &fakeSource{block: true}, Timeout: 10 * time.Millisecond}
	if _, err := svc.Refresh(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRefreshWithoutSource(t *testing.T) {
	if _, err := (&Service{}).Refresh(context.Background()); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}

func settings() *store.Settings {
	return &store.Settings{
		Class:           1,
		Classes:         map[int]string{1: "0", 2: "1667344915", 3: "REPLACE_ME"},
		IgnoredColumns:  []int{0},
		CountdownWindow: 4 * time.Hour,
		FetchTimeout:    time.Second,
	}
}

func TestNewServiceSelectsSource(t *testing.T) {
	prefs, err := store.OpenPrefs(filepath.Join(t.TempDir(), "prefs"))
	if err != nil {
		t.Fatal(err)
	}

	s := settings()
	if _, err := NewService(s, prefs, 1, nil); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}

	s.SheetID = "doc"
	svc, err := NewService(s, prefs, 2, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if !strings.Contains(svc.Source.Name(), "gid 1667344915") {
		t.Fatalf("expected class 2 tab, got %s", svc.Source.Name())
	}
	if svc.Timeout != time.Second || !svc.Pipeline.Ignored.Has(0) {
		t.Fatalf("settings not carried over: %+v", svc)
	}

	if _, err := NewService(s, prefs, 3, nil); !errors.Is(err, source.ErrGIDNotConfigured) {
		t.Fatalf("expected unconfigured gid error, got %v", err)
	}

	if err := prefs.Set(store.PrefWebhookURL, "https://hooks.example.test/read"); err != nil {
		t.Fatal(err)
	}
	// The saved webhook wins over the sheet, even for an unconfigured class.
	svc, err = NewService(s, prefs, 3, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if svc.Source.Name() != "webhook" {
		t.Fatalf("expected webhook source, got %s", svc.Source.Name())
	}
}

func TestClassFor(t *testing.T) {
	prefs, err := store.OpenPrefs(filepath.Join(t.TempDir(), "prefs"))
	if err != nil {
		t.Fatal(err)
	}
	s := settings()

	if got := ClassFor(s, prefs, 0); got != 1 {
		t.Fatalf("expected configured class, got %d", got)
	}
	if err := RememberClass(prefs, 4); err != nil {
		t.Fatal(err)
	}
	if got := ClassFor(s, prefs, 0); got != 4 {
		t.Fatalf("expected remembered class, got %d", got)
	}
	if got := ClassFor(s, prefs, 2); got != 2 {
		t.Fatalf("expected explicit class, got %d", got)
	}
	if got := ClassFor(s, nil, 0); got != 1 {
		t.Fatalf("expected configured class without prefs, got %d", got)
	}
}

func TestWatchOnlyForFiles(t *testing.T) {
	svc := &Service{Source: &fakeSource{}}
	ch, err := svc.Watch(context.Background())
	if err != nil || ch != nil {
		t.Fatalf("expected no watch for remote sources, got %v %v", ch, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc = &Service{Source: &source.File{Path: filepath.Join(t.TempDir(), "tasks.csv")}}
	ch, err = svc.Watch(ctx)
	if err != nil || ch == nil {
		t.Fatalf("expected a watch for file sources: %v", err)
	}
}

func TestAgenda(t *testing.T) {
	res := testPipeline().RunText(tasksCSV, fixedNow)

	// Reversed bounds are swapped.
	a := Agenda(res, fixedNow.AddDate(0, 0, 8), fixedNow)
	if a.Total != 3 || len(a.Sections) != 3 {
		t.Fatalf("expected 3 tasks on 3 days, got %+v", a)
	}
	if a.Sections[0].Date.Day() != 12 || a.Sections[0].Cards[0].Title != "lab report" {
		t.Fatalf("unexpected first section %+v", a.Sections[0])
	}
	if a.Sections[2].Date.Day() != 20 {
		t.Fatalf("unexpected last section %+v", a.Sections[2])
	}

	if a := Agenda(nil, fixedNow, fixedNow); a.Total != 0 || a.Sections != nil {
		t.Fatalf("expected empty agenda, got %+v", a)
	}
}
