package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"tableflip.dev/duedeck/pkg/sheet"
)

// Webhook reads rows from an automation endpoint by posting
// {"action":"read"}.
type Webhook struct {
	URL    string
	Client *http.Client
}

type readRequest struct {
	Action string `json:"action"`
}

// Name implements Source.
func (w *Webhook) Name() string { return "webhook" }

// Fetch implements Source. There is no fallback: a failing webhook fails
// the refresh.
func (w *Webhook) Fetch(ctx context.Context) (sheet.Table, error) {
	payload, err := json.Marshal(readRequest{Action: "read"})
	if err != nil {
		return sheet.Table{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(payload))
	if err != nil {
		return sheet.Table{}, fmt.Errorf("source: webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client(w.Client).Do(req)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("source: webhook: %w", err)
	}
	defer res.Body.Close()

	if !ok(res) {
		return sheet.Table{}, fmt.Errorf("source: webhook: %w", statusError(res))
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("source: webhook read body: %w", err)
	}
	t, err := sheet.DecodeJSON(body)
	if err != nil {
		return sheet.Table{}, fmt.Errorf("source: webhook: %w", err)
	}
	return t, nil
}
