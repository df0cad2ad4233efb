// Package source fetches the raw sheet payload: a local file, a CSV export
// over HTTP, or a JSON webhook.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tableflip.dev/duedeck/pkg/sheet"
	"tableflip.dev/duedeck/pkg/timeutil"
)

var (
	// ErrNoSource is returned by Select when nothing is configured.
	ErrNoSource = errors.New("source: no data source configured")
	// ErrGIDNotConfigured is returned for a class whose tab id is a placeholder.
	ErrGIDNotConfigured = errors.New("source: sheet gid not configured")
	// ErrUnknownPayload is returned for JSON the decoder does not recognise.
	ErrUnknownPayload = sheet.ErrUnknownPayload
)

// PlaceholderGID prefixes tab ids that still need to be filled in.
const PlaceholderGID = "REPLACE_ME"

// Source yields a table per call.
type Source interface {
	Fetch(ctx context.Context) (sheet.Table, error)
	// Name describes the source for status lines.
	Name() string
}

// SheetURL is the CSV export address of one tab of a Google Sheets
// document. The t parameter defeats caches.
func SheetURL(sheetID, gid string, now time.Time) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s&t=%d",
		url.PathEscape(sheetID), url.QueryEscape(gid), now.UnixMilli())
}

// ResolveGID picks the tab id of class. Unknown classes fall back to the
// first tab ("0").
func ResolveGID(classes map[int]string, class int) (string, error) {
	gid, ok := classes[class]
	if !ok || gid == "" {
		return "0", nil
	}
	if strings.HasPrefix(gid, PlaceholderGID) {
		return "", fmt.Errorf("%w: class %d", ErrGIDNotConfigured, class)
	}
	return gid, nil
}

// Options is the source configuration understood by Select.
type Options struct {
	Webhook string
	File    string
	URL     string
	SheetID string
	GID     string
	Client  *http.Client
	Now     timeutil.Clock
}

// Select builds the configured source. A webhook wins over a file, which
// wins over an explicit CSV URL, which wins over a sheet id.
func Select(o Options) (Source, error) {
	switch {
	case o.Webhook != "":
		return &Webhook{URL: o.Webhook, Client: o.Client}, nil
	case o.File != "":
		return &File{Path: o.File}, nil
	case o.URL != "":
		return NewCSV(o.URL, o.Client), nil
	case o.SheetID != "":
		gid := o.GID
		if gid == "" {
			gid = "0"
		}
		return NewSheet(o.SheetID, gid, o.Now, o.Client), nil
	default:
		return nil, ErrNoSource
	}
}

// Decode reads data as JSON when ext is ".json" or the payload starts with
// a bracket, and as comma separated text otherwise.
func Decode(data []byte, ext string) (sheet.Table, error) {
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))
	trimmed := bytes.TrimSpace(data)
	switch {
	case strings.EqualFold(ext, ".csv"):
		return sheet.Parse(string(data)), nil
	case strings.EqualFold(ext, ".json"):
		return sheet.DecodeJSON(trimmed)
	case len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{'):
		return sheet.DecodeJSON(trimmed)
	default:
		return sheet.Parse(string(data)), nil
	}
}

// File reads a local CSV or JSON export.
type File struct {
	Path string
}

// Name implements Source.
func (f *File) Name() string { return f.Path }

// Fetch implements Source.
func (f *File) Fetch(ctx context.Context) (sheet.Table, error) {
	if err := ctx.Err(); err != nil {
		return sheet.Table{}, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("source: read %s: %w", f.Path, err)
	}
	t, err := Decode(data, filepath.Ext(f.Path))
	if err != nil {
		return sheet.Table{}, fmt.Errorf("source: decode %s: %w", f.Path, err)
	}
	return t, nil
}

func client(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return http.DefaultClient
}

func statusError(res *http.Response) error {
	return fmt.Errorf("HTTP %d", res.StatusCode)
}

func ok(res *http.Response) bool {
	return res.StatusCode >= 200 && res.StatusCode < 300
}
