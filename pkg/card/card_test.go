package card

import (
	"testing"
	"time"

	"tableflip.dev/duedeck/pkg/sheet"
	"tableflip.dev/duedeck/pkg/timeutil"
	"tableflip.dev/duedeck/pkg/urgency"
)

func TestEmoji(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", "📝"},
		{"수학 수행평가", "📐"},
		{"Math worksheet", "📐"},
		{"R&E report", "📚"},
		{"English essay", "A"},
		{"문학 감상문", "가"},
		{"생명과학 실험", "🧬"},
		{"Physics science", "🧪"},
		{"한국사 history", "🌍"},
		{"음악", "🎵"},
		{"Art portfolio", "🎨"},
		{"체육 실기", "⚽️"},
		{"정보 코딩", "💻"},
		{"가정 과제", "🔧"},
		{"field trip", "📝"},
	}
	for _, tc := range cases {
		if got := Emoji(tc.in); got != tc.want {
			t.Errorf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestFindLinkColumn(t *testing.T) {
	if got := FindLinkColumn([]string{"과목", "제출 기한", "Classroom URL"}); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := FindLinkColumn([]string{"과목", "링크"}); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := FindLinkColumn([]string{"과목"}); got != -1 {
		t.Fatalf("expected -1, got %d", got)
	}
}

func TestBuild(t *testing.T) {
	raw := []string{"#", "과목", "내용", "마감", "링크"}
	rows := [][]string{
		{"1", "수학", "p.10", "3/9", "https://classroom.example/a"},
		{"2", "", "", "3/11", "x"},
		{"3", "English", "essay", "", " "},
	}
	headers, projected := sheet.Project(raw, rows, sheet.NewIgnoreSet(0))
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	res := urgency.Classifier{Resolver: timeutil.Resolver{}}.Classify(projected, urgency.FindDateColumn(raw), now)

	cards := Build(headers, raw, projected, res)
	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(cards))
	}

	overdue := cards[0]
	if !overdue.Overdue() || overdue.Emoji != "💀" || overdue.Badge() != "💀 overdue" {
		t.Fatalf("unexpected overdue card %+v", overdue)
	}
	if overdue.Deadline != "3/9" || overdue.DiffDays == nil || *overdue.DiffDays != -1 {
		t.Fatalf("unexpected deadline data %+v", overdue)
	}
	if overdue.Link != "https://classroom.example/a" || !overdue.HasLink() {
		t.Fatalf("expected link, got %q", overdue.Link)
	}
	wantDetails := []Detail{{"내용", "p.10"}, {"마감", "3/9"}}
	if len(overdue.Details) != len(wantDetails) {
		t.Fatalf("unexpected details %+v", overdue.Details)
	}
	for i, d := range wantDetails {
		if overdue.Details[i] != d {
			t.Fatalf("detail %d: expected %+v, got %+v", i, d, overdue.Details[i])
		}
	}

	soon := cards[1]
	if soon.Title != "Untitled" || !soon.Urgent() || soon.HasLink() || soon.Emoji != "📝" {
		t.Fatalf("unexpected urgent card %+v", soon)
	}
	if soon.Details[0].Value != "-" {
		t.Fatalf("expected placeholder for empty value, got %+v", soon.Details)
	}

	plain := cards[2]
	if plain.Level != urgency.Normal || plain.DiffDays != nil || plain.Badge() != "" || plain.Emoji != "A" {
		t.Fatalf("unexpected plain card %+v", plain)
	}
	if plain.HasLink() {
		t.Fatalf("blank link should not count")
	}
}

func TestBuildWithoutDateColumn(t *testing.T) {
	raw := []string{"#", "과목"}
	headers, projected := sheet.Project(raw, [][]string{{"1", "음악"}}, sheet.NewIgnoreSet(0))
	res := urgency.Classifier{}.Classify(projected, -1, time.Now())

	cards := Build(headers, raw, projected, res)
	if len(cards) != 1 || cards[0].Deadline != "" || cards[0].Level != urgency.Normal {
		t.Fatalf("unexpected cards %+v", cards)
	}
	if len(cards[0].Details) != 0 {
		t.Fatalf("title column should not repeat in details: %+v", cards[0].Details)
	}
}
