// Package info describes where duedeck reads its configuration and tasks.
package info

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/duedeck/pkg/app"
	"tableflip.dev/duedeck/pkg/store"
	"tableflip.dev/duedeck/pkg/timeutil"
)

type Info struct {
	Settings *store.Settings
	Prefs    *store.Prefs
	Class    int
	Out      io.Writer
}

func (n *Info) out() io.Writer {
	if n.Out != nil {
		return n.Out
	}
	return color.Output
}

func (n *Info) Do(ctx context.Context) error {
	if n.Settings == nil {
		return fmt.Errorf("no settings loaded")
	}
	w := n.out()
	bold := color.New(color.Bold)

	if override := os.Getenv("DUEDECK_CONFIG_PATH"); override != "" {
		_, _ = fmt.Fprintln(w, "DUEDECK_CONFIG_PATH found on env, using", override)
	} else {
		_, _ = fmt.Fprintln(w, "DUEDECK_CONFIG_PATH env var not set")
	}
	_, _ = fmt.Fprintln(w)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Setting"), bold.Sprint("Value"))
	tbl.AddRow("source", n.source())
	tbl.AddRow("class", n.Class)
	tbl.AddRow("classes", classes(n.Settings))
	tbl.AddRow("ignored columns", fmt.Sprint(n.Settings.IgnoredColumns))
	tbl.AddRow("rollover", timeutil.FormatSpan(n.Settings.Rollover))
	tbl.AddRow("countdown window", timeutil.FormatSpan(n.Settings.CountdownWindow))
	tbl.AddRow("fetch timeout", n.Settings.FetchTimeout.Round(time.Millisecond))
	tbl.AddRow("state path", n.Settings.StatePath)
	_, _ = fmt.Fprintln(w, tbl)
	_, _ = fmt.Fprintln(w)

	_, _ = bold.Fprintln(w, "Preferences:")
	if n.Prefs == nil {
		_, _ = fmt.Fprintln(w, "  no preference store")
		return nil
	}
	all := n.Prefs.All(ctx)
	if len(all) == 0 {
		_, _ = fmt.Fprintln(w, "  none set")
		return nil
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "  %s = %s\n", k, all[k])
	}
	return nil
}

func (n *Info) source() string {
	opts, err := app.SourceOptions(n.Settings, n.Prefs, n.Class)
	if err != nil {
		return err.Error()
	}
	switch {
	case opts.Webhook != "":
		return "webhook " + opts.Webhook
	case opts.File != "":
		return "file " + opts.File
	case opts.URL != "":
		return "url " + opts.URL
	case opts.SheetID != "":
		return fmt.Sprintf("sheet %s (gid %s)", opts.SheetID, opts.GID)
	default:
		return "not configured"
	}
}

func classes(s *store.Settings) string {
	parts := make([]string, 0, len(s.Classes))
	for _, id := range s.ClassIDs() {
		parts = append(parts, fmt.Sprintf("%d=%s", id, s.Classes[id]))
	}
	return strings.Join(parts, ", ")
}
