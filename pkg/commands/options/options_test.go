package options

import (
	"testing"
	"time"

	"tableflip.dev/duedeck/pkg/store"
)

func TestNowClock(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		"minutes": {
			in:   "2025-3-12 21:00",
			want: time.Date(2025, time.March, 12, 21, 0, 0, 0, time.Local),
		},
		"date only": {
			in:   "2025-03-12",
			want: time.Date(2025, time.March, 12, 0, 0, 0, 0, time.Local),
		},
		"rfc3339": {
			in:   "2025-03-12T21:00:00Z",
			want: time.Date(2025, time.March, 12, 21, 0, 0, 0, time.UTC),
		},
		"garbage": {
			in:      "next tuesday",
			wantErr: true,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			o := &NowOptions{NowString: tc.in}
			clock, err := o.Clock()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected an error for %q", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("Clock: %v", err)
			}
			got := clock()
			if d := got.Sub(tc.want); d < 0 || d > time.Minute {
				t.Fatalf("expected about %v, got %v", tc.want, got)
			}
		})
	}
}

func TestNowClockUnset(t *testing.T) {
	clock, err := (&NowOptions{}).Clock()
	if err != nil {
		t.Fatalf("Clock: %v", err)
	}
	if clock != nil {
		t.Fatalf("expected the wall clock when --now is unset")
	}
}

func TestSourceOverrides(t *testing.T) {
	o := &SourceOptions{File: "tasks.csv", Webhook: "https://example.com/hook"}
	got := o.Overrides()
	if len(got) != 2 {
		t.Fatalf("expected 2 overrides, got %v", got)
	}
	if got[store.KeyFile] != "tasks.csv" {
		t.Errorf("file override = %v", got[store.KeyFile])
	}
	if got[store.KeyWebhookURL] != "https://example.com/hook" {
		t.Errorf("webhook override = %v", got[store.KeyWebhookURL])
	}
	if _, ok := got[store.KeySheetID]; ok {
		t.Errorf("unset flags should not override config")
	}
}
