package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSetLoggerNilDiscards(t *testing.T) {
	old := Logger()
	defer SetLogger(old)

	SetLogger(nil)
	if Logger().Handler() != slog.DiscardHandler {
		t.Fatalf("expected discard handler after SetLogger(nil)")
	}
}

func TestUseTextVerbose(t *testing.T) {
	old := Logger()
	defer SetLogger(old)

	var buf bytes.Buffer
	UseText(&buf, true)
	Logger().Debug("scroll corrected", "offset", 42)
	if !strings.Contains(buf.String(), "scroll corrected") {
		t.Fatalf("expected debug line, got %q", buf.String())
	}

	buf.Reset()
	UseText(&buf, false)
	Logger().Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug suppressed, got %q", buf.String())
	}
}

func TestBufferedHandler(t *testing.T) {
	h := NewBufferedHandler()
	l := slog.New(h).With("component", "source")
	l.Warn("proxy failed", "proxy", "corsproxy.io")

	out := h.String()
	if !strings.HasPrefix(out, "WARN proxy failed") {
		t.Fatalf("unexpected line %q", out)
	}
	if !h.Contains("component=source") || !h.Contains("proxy=corsproxy.io") {
		t.Fatalf("missing attrs in %q", out)
	}
}
