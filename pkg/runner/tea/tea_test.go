package teaui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tableflip.dev/duedeck/pkg/source"
	"tableflip.dev/duedeck/pkg/store"
)

func settings(t *testing.T) (*store.Settings, *store.Prefs) {
	t.Helper()
	dir := t.TempDir()
	prefs, err := store.OpenPrefs(filepath.Join(dir, "state"))
	if err != nil {
		t.Fatalf("OpenPrefs: %v", err)
	}
	return &store.Settings{
		SheetID:        "abc",
		Class:          1,
		Classes:        map[int]string{1: "0", 2: "REPLACE_ME"},
		IgnoredColumns: []int{0},
		Highlight:      time.Second,
		FocusThreshold: 150,
		CardWidth:      28,
		CardGap:        2,
		StatePath:      prefs.BasePath(),
	}, prefs
}

func TestOptions(t *testing.T) {
	s, prefs := settings(t)
	u := &UI{Settings: s, Prefs: prefs, Class: 1}
	opts := u.Options()

	if opts.Carousel.CardWidth != 28 || opts.Carousel.Highlight != time.Second {
		t.Fatalf("unexpected carousel config %+v", opts.Carousel)
	}
	if _, err := opts.ServiceFor(1); err != nil {
		t.Fatalf("ServiceFor(1): %v", err)
	}
	if _, err := opts.ServiceFor(2); !errors.Is(err, source.ErrGIDNotConfigured) {
		t.Fatalf("expected ErrGIDNotConfigured for class 2, got %v", err)
	}

	if err := opts.Remember(2); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if v, ok := prefs.Lookup(store.PrefClass); !ok || v != "2" {
		t.Fatalf("expected class 2 remembered, got %q", v)
	}
}

func TestDoRefusesNonTerminal(t *testing.T) {
	s, prefs := settings(t)
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = orig
		w.Close()
		r.Close()
	}()

	u := &UI{Settings: s, Prefs: prefs}
	if err := u.Do(context.Background()); !errors.Is(err, ErrNotTerminal) {
		t.Fatalf("expected ErrNotTerminal, got %v", err)
	}
}
