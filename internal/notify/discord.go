package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"screening_notifier/internal/model"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type webhookPayload struct {
	Content string `json:"content"`
}

// Discord posts announcements to a Discord-compatible webhook.
type Discord struct {
	client  HTTPClient
	url     string
	header  string
	timeout time.Duration
}

// NewDiscord creates a webhook notifier for url.
func NewDiscord(client HTTPClient, url, header string) *Discord {
	if header == "" {
		header = DefaultHeader
	}
	return &Discord{
		client:  client,
		url:     url,
		header:  header,
		timeout: 10 * time.Second,
	}
}

// Send posts {"content": message}. Any 2xx response is success.
func (d *Discord) Send(ctx context.Context, dates []model.DateID) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	body, err := json.Marshal(webhookPayload{Content: FormatMessage(d.header, dates)})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
