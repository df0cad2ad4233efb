package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"tableflip.dev/duedeck/pkg/logging"
	"tableflip.dev/duedeck/pkg/sheet"
	"tableflip.dev/duedeck/pkg/timeutil"
)

// Proxy rewrites the export address into the address actually requested.
type Proxy struct {
	Name    string
	Rewrite func(target string) string
}

// DefaultProxies tries the export directly, then two public CORS relays.
var DefaultProxies = []Proxy{
	{Name: "direct", Rewrite: func(target string) string { return target }},
	{Name: "allorigins.win", Rewrite: func(target string) string {
		return "https://api.allorigins.win/raw?url=" + url.QueryEscape(target)
	}},
	{Name: "corsproxy.io", Rewrite: func(target string) string {
		return "https://corsproxy.io/?" + url.QueryEscape(target)
	}},
}

// CSV downloads a comma separated export, falling back through Proxies
// until one answers with a non-empty 2xx body.
type CSV struct {
	// URL returns the export address. It is called once per Fetch.
	URL     func() string
	Client  *http.Client
	Proxies []Proxy
	name    string
}

// NewCSV fetches a fixed address.
func NewCSV(address string, c *http.Client) *CSV {
	return &CSV{
		URL:    func() string { return address },
		Client: c,
		name:   address,
	}
}

// NewSheet fetches one tab of a Google Sheets document.
func NewSheet(sheetID, gid string, now timeutil.Clock, c *http.Client) *CSV {
	if now == nil {
		now = time.Now
	}
	return &CSV{
		URL:    func() string { return SheetURL(sheetID, gid, now()) },
		Client: c,
		name:   fmt.Sprintf("sheet %s (gid %s)", sheetID, gid),
	}
}

// Name implements Source.
func (c *CSV) Name() string { return c.name }

func (c *CSV) proxies() []Proxy {
	if len(c.Proxies) > 0 {
		return c.Proxies
	}
	return DefaultProxies
}

// Fetch implements Source.
func (c *CSV) Fetch(ctx context.Context) (sheet.Table, error) {
	target := c.URL()
	var errs []error
	for _, p := range c.proxies() {
		body, err := c.get(ctx, p.Rewrite(target))
		if err == nil {
			body = bytes.TrimPrefix(body, []byte("\uFEFF"))
			return sheet.Parse(string(body)), nil
		}
		if ctx.Err() != nil {
			return sheet.Table{}, fmt.Errorf("source: csv fetch: %w", ctx.Err())
		}
		logging.Logger().Warn("source: csv attempt failed", "via", p.Name, "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
	}
	return sheet.Table{}, fmt.Errorf("source: csv fetch failed: %w", errors.Join(errs...))
}

func (c *CSV) get(ctx context.Context, address string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")
	req.Header.Set("Cache-Control", "no-cache")

	res, err := client(c.Client).Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if !ok(res) {
		return nil, statusError(res)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}
	return body, nil
}
